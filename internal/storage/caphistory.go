package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/camrecon/camrecon/internal/common"
	"github.com/camrecon/camrecon/internal/model"
)

// GetCapHistory loads the full cap history map: tenant id to year to the
// recorded recoverable amount.
func (s *SQLiteStorage) GetCapHistory(ctx context.Context) (model.CapHistory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getCapHistoryTx(ctx, s.db)
}

func (s *SQLiteStorage) getCapHistoryTx(ctx context.Context, q queryable) (model.CapHistory, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT tenant_id, year, amount
		FROM cap_history
		ORDER BY tenant_id, year
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cap history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	history := make(model.CapHistory)
	for rows.Next() {
		var tenantID, year, amount string
		if err := rows.Scan(&tenantID, &year, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan cap history row: %w", err)
		}

		parsed, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("%w: bad cap history amount %q for tenant %s year %s",
				common.ErrDatabaseCorrupted, amount, tenantID, year)
		}
		history.Set(tenantID, year, parsed)
	}

	return history, rows.Err()
}

// SaveCapHistory upserts every entry of the given history map. Entries
// already on disk but absent from the map are left alone; history only
// accumulates.
func (s *SQLiteStorage) SaveCapHistory(ctx context.Context, history model.CapHistory) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.saveCapHistoryTx(ctx, tx, history); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStorage) saveCapHistoryTx(ctx context.Context, tx *sql.Tx, history model.CapHistory) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cap_history (tenant_id, year, amount)
		VALUES (?, ?, ?)
		ON CONFLICT(tenant_id, year) DO UPDATE SET
			amount = excluded.amount,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for tenantID, years := range history {
		for year, amount := range years {
			if _, err := stmt.ExecContext(ctx, tenantID, year, amount.String()); err != nil {
				return fmt.Errorf("failed to upsert cap history for tenant %s year %s: %w", tenantID, year, err)
			}
		}
	}

	return nil
}
