// Package service defines the interfaces between the reconciliation
// engine and its collaborators.
package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/camrecon/camrecon/internal/model"
)

// Store defines the contract for the persistence layer.
type Store interface {
	// GL transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	GetTransactions(ctx context.Context, propertyID string) ([]model.Transaction, error)
	CountTransactions(ctx context.Context, propertyID string) (int, error)

	// Cap history operations
	GetCapHistory(ctx context.Context) (model.CapHistory, error)
	SaveCapHistory(ctx context.Context, history model.CapHistory) error

	// Manual override operations
	SaveOverride(ctx context.Context, override model.Override) error
	GetOverride(ctx context.Context, tenantID, propertyID string) (model.Override, error)
	GetAllOverrides(ctx context.Context) ([]model.Override, error)

	// Tenant reference operations
	SaveTenantRef(ctx context.Context, ref model.TenantRef) error
	GetTenantRef(ctx context.Context, tenantID, propertyID string) (model.TenantRef, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Store methods for use within transaction
	Store
}

// SettingsSource resolves the hierarchical settings documents.
type SettingsSource interface {
	Resolve(propertyID, tenantID string) *model.Settings
	Tenants(propertyID string) []model.TenantInfo
}

// TenantRefProvider supplies a tenant's previously billed monthly
// amount. Implementations may cache; Reset discards any cached state.
type TenantRefProvider interface {
	OldMonthly(ctx context.Context, tenantID, propertyID string) (decimal.Decimal, error)
	Reset()
}
