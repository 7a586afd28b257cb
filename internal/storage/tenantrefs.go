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

// SaveTenantRef upserts a tenant's prior-billing reference record.
func (s *SQLiteStorage) SaveTenantRef(ctx context.Context, ref model.TenantRef) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTenantRef(ref); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.saveTenantRefTx(ctx, tx, ref); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStorage) saveTenantRefTx(ctx context.Context, tx *sql.Tx, ref model.TenantRef) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO tenant_refs (tenant_id, property_id, tenant_name, old_monthly)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(tenant_id, property_id) DO UPDATE SET
			tenant_name = excluded.tenant_name,
			old_monthly = excluded.old_monthly,
			updated_at = CURRENT_TIMESTAMP
	`, ref.TenantID, ref.PropertyID, ref.TenantName, ref.OldMonthly.String())
	if err != nil {
		return fmt.Errorf("failed to upsert tenant ref for %s: %w", ref.TenantID, err)
	}
	return nil
}

// GetTenantRef retrieves a tenant's reference record. Returns
// common.ErrNotFound when the tenant has no stored reference.
func (s *SQLiteStorage) GetTenantRef(ctx context.Context, tenantID, propertyID string) (model.TenantRef, error) {
	if err := validateContext(ctx); err != nil {
		return model.TenantRef{}, err
	}
	if err := validateString(tenantID, "tenantID"); err != nil {
		return model.TenantRef{}, err
	}
	if err := validateString(propertyID, "propertyID"); err != nil {
		return model.TenantRef{}, err
	}
	return s.getTenantRefTx(ctx, s.db, tenantID, propertyID)
}

func (s *SQLiteStorage) getTenantRefTx(ctx context.Context, q queryable, tenantID, propertyID string) (model.TenantRef, error) {
	var ref model.TenantRef
	var name sql.NullString
	var amount string
	err := q.QueryRowContext(ctx, `
		SELECT tenant_id, property_id, tenant_name, old_monthly
		FROM tenant_refs
		WHERE tenant_id = ? AND property_id = ?
	`, tenantID, propertyID).Scan(&ref.TenantID, &ref.PropertyID, &name, &amount)
	if errors.Is(err, sql.ErrNoRows) {
		return model.TenantRef{}, fmt.Errorf("%w: tenant ref %s/%s", common.ErrNotFound, tenantID, propertyID)
	}
	if err != nil {
		return model.TenantRef{}, fmt.Errorf("failed to query tenant ref: %w", err)
	}
	ref.TenantName = name.String

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return model.TenantRef{}, fmt.Errorf("%w: bad old_monthly %q for tenant %s",
			common.ErrDatabaseCorrupted, amount, tenantID)
	}
	ref.OldMonthly = parsed
	return ref, nil
}
