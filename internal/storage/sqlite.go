package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/camrecon/camrecon/internal/model"
	"github.com/camrecon/camrecon/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage implements the service.Store interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTransaction{
		tx:      tx,
		storage: s,
	}, nil
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction.
type sqliteTransaction struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

// Transaction methods delegate to the main storage with the transaction.
func (t *sqliteTransaction) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}
	return t.storage.saveTransactionsTx(ctx, t.tx, transactions)
}

func (t *sqliteTransaction) GetTransactions(ctx context.Context, propertyID string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(propertyID, "propertyID"); err != nil {
		return nil, err
	}
	return t.storage.getTransactionsTx(ctx, t.tx, propertyID)
}

func (t *sqliteTransaction) CountTransactions(ctx context.Context, propertyID string) (int, error) {
	return t.storage.CountTransactions(ctx, propertyID)
}

func (t *sqliteTransaction) GetCapHistory(ctx context.Context) (model.CapHistory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getCapHistoryTx(ctx, t.tx)
}

func (t *sqliteTransaction) SaveCapHistory(ctx context.Context, history model.CapHistory) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.saveCapHistoryTx(ctx, t.tx, history)
}

func (t *sqliteTransaction) SaveOverride(ctx context.Context, override model.Override) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateOverride(override); err != nil {
		return err
	}
	return t.storage.saveOverrideTx(ctx, t.tx, override)
}

func (t *sqliteTransaction) GetOverride(ctx context.Context, tenantID, propertyID string) (model.Override, error) {
	if err := validateContext(ctx); err != nil {
		return model.Override{}, err
	}
	return t.storage.getOverrideTx(ctx, t.tx, tenantID, propertyID)
}

func (t *sqliteTransaction) GetAllOverrides(ctx context.Context) ([]model.Override, error) {
	return t.storage.GetAllOverrides(ctx)
}

func (t *sqliteTransaction) SaveTenantRef(ctx context.Context, ref model.TenantRef) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTenantRef(ref); err != nil {
		return err
	}
	return t.storage.saveTenantRefTx(ctx, t.tx, ref)
}

func (t *sqliteTransaction) GetTenantRef(ctx context.Context, tenantID, propertyID string) (model.TenantRef, error) {
	if err := validateContext(ctx); err != nil {
		return model.TenantRef{}, err
	}
	return t.storage.getTenantRefTx(ctx, t.tx, tenantID, propertyID)
}

func (t *sqliteTransaction) Migrate(_ context.Context) error {
	// Migrations should not be run within a transaction
	return fmt.Errorf("migrations cannot be run within a transaction")
}

func (t *sqliteTransaction) BeginTx(_ context.Context) (service.Transaction, error) {
	// Nested transactions not supported
	return nil, fmt.Errorf("nested transactions not supported")
}

func (t *sqliteTransaction) Close() error {
	// Transactions should be committed or rolled back, not closed
	return fmt.Errorf("transactions must be committed or rolled back, not closed")
}
