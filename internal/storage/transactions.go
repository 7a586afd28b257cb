package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/camrecon/camrecon/internal/common"
	"github.com/camrecon/camrecon/internal/model"
)

// queryable abstracts *sql.DB and *sql.Tx for read paths.
type queryable interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SaveTransactions saves GL transactions to the database. Previously
// imported lines are recognized by hash and skipped.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.saveTransactionsTx(ctx, tx, transactions); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStorage) saveTransactionsTx(ctx context.Context, tx *sql.Tx, transactions []model.Transaction) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO gl_transactions (
			hash, property_id, gl_account, description, period, net_amount
		) VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range transactions {
		txn := &transactions[i]
		_, err = stmt.ExecContext(ctx,
			txn.GenerateHash(),
			txn.PropertyID,
			string(txn.Account),
			txn.Description,
			txn.Period,
			txn.NetAmount.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction %d: %w", i, err)
		}
	}

	return nil
}

// GetTransactions retrieves all GL transactions for a property, ordered
// by period then account.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, propertyID string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(propertyID, "propertyID"); err != nil {
		return nil, err
	}
	return s.getTransactionsTx(ctx, s.db, propertyID)
}

func (s *SQLiteStorage) getTransactionsTx(ctx context.Context, q queryable, propertyID string) ([]model.Transaction, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT property_id, gl_account, description, period, net_amount
		FROM gl_transactions
		WHERE property_id = ?
		ORDER BY period, gl_account
	`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		var txn model.Transaction
		var account, description, amount string
		if err := rows.Scan(&txn.PropertyID, &account, &description, &txn.Period, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.Account = model.Account(account)
		txn.Description = description

		parsed, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("%w: bad net_amount %q for account %s", common.ErrDatabaseCorrupted, amount, account)
		}
		txn.NetAmount = parsed

		transactions = append(transactions, txn)
	}

	return transactions, rows.Err()
}

// CountTransactions returns the number of stored GL lines for a property.
func (s *SQLiteStorage) CountTransactions(ctx context.Context, propertyID string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(propertyID, "propertyID"); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM gl_transactions WHERE property_id = ?`, propertyID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}
