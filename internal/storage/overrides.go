package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/camrecon/camrecon/internal/common"
	"github.com/camrecon/camrecon/internal/model"
)

// SaveOverride upserts a manual billing override for a tenant/property
// pair.
func (s *SQLiteStorage) SaveOverride(ctx context.Context, override model.Override) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateOverride(override); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.saveOverrideTx(ctx, tx, override); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStorage) saveOverrideTx(ctx context.Context, tx *sql.Tx, override model.Override) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO overrides (tenant_id, property_id, amount, description)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(tenant_id, property_id) DO UPDATE SET
			amount = excluded.amount,
			description = excluded.description,
			created_at = CURRENT_TIMESTAMP
	`, override.TenantID, override.PropertyID, override.Amount.String(), override.Description)
	if err != nil {
		return fmt.Errorf("failed to upsert override for tenant %s: %w", override.TenantID, err)
	}
	return nil
}

// GetOverride retrieves the override for a tenant/property pair. No
// stored override is not an error; a zero-value override comes back.
func (s *SQLiteStorage) GetOverride(ctx context.Context, tenantID, propertyID string) (model.Override, error) {
	if err := validateContext(ctx); err != nil {
		return model.Override{}, err
	}
	if err := validateString(tenantID, "tenantID"); err != nil {
		return model.Override{}, err
	}
	if err := validateString(propertyID, "propertyID"); err != nil {
		return model.Override{}, err
	}
	return s.getOverrideTx(ctx, s.db, tenantID, propertyID)
}

func (s *SQLiteStorage) getOverrideTx(ctx context.Context, q queryable, tenantID, propertyID string) (model.Override, error) {
	row := q.QueryRowContext(ctx, `
		SELECT tenant_id, property_id, amount, description
		FROM overrides
		WHERE tenant_id = ? AND property_id = ?
	`, tenantID, propertyID)

	override, err := scanOverride(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Override{}, nil
	}
	return override, err
}

// GetAllOverrides returns every stored override, ordered by property
// then tenant.
func (s *SQLiteStorage) GetAllOverrides(ctx context.Context) ([]model.Override, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT tenant_id, property_id, amount, description
		FROM overrides
		ORDER BY property_id, tenant_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query overrides: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var overrides []model.Override
	for rows.Next() {
		override, err := scanOverride(rows.Scan)
		if err != nil {
			return nil, err
		}
		overrides = append(overrides, override)
	}

	return overrides, rows.Err()
}

func scanOverride(scan func(...any) error) (model.Override, error) {
	var override model.Override
	var amount string
	var description sql.NullString
	if err := scan(&override.TenantID, &override.PropertyID, &amount, &description); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Override{}, err
		}
		return model.Override{}, fmt.Errorf("failed to scan override: %w", err)
	}
	override.Description = description.String

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return model.Override{}, fmt.Errorf("%w: bad override amount %q for tenant %s",
			common.ErrDatabaseCorrupted, amount, override.TenantID)
	}
	override.Amount = parsed
	return override, nil
}
