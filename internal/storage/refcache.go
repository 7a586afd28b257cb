package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/camrecon/camrecon/internal/common"
	"github.com/camrecon/camrecon/internal/service"
)

// TenantRefCache answers old-monthly lookups from an in-memory cache
// backed by the store. A tenant with no reference record is a cache
// entry of zero, not an error; a full property run should hit the
// database at most once per tenant.
type TenantRefCache struct {
	store service.Store
	cache map[string]decimal.Decimal
	mu    sync.RWMutex
}

var _ service.TenantRefProvider = (*TenantRefCache)(nil)

// NewTenantRefCache creates a cache over the given store.
func NewTenantRefCache(store service.Store) *TenantRefCache {
	return &TenantRefCache{
		store: store,
		cache: make(map[string]decimal.Decimal),
	}
}

// OldMonthly returns the previously billed monthly amount for a tenant,
// zero when no reference record exists.
func (c *TenantRefCache) OldMonthly(ctx context.Context, tenantID, propertyID string) (decimal.Decimal, error) {
	key := tenantID + "/" + propertyID

	c.mu.RLock()
	amount, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return amount, nil
	}

	ref, err := c.store.GetTenantRef(ctx, tenantID, propertyID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.put(key, decimal.Zero)
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}

	c.put(key, ref.OldMonthly)
	return ref.OldMonthly, nil
}

// Reset drops all cached entries. Call after importing new tenant
// reference data.
func (c *TenantRefCache) Reset() {
	c.mu.Lock()
	c.cache = make(map[string]decimal.Decimal)
	c.mu.Unlock()
}

func (c *TenantRefCache) put(key string, amount decimal.Decimal) {
	c.mu.Lock()
	c.cache[key] = amount
	c.mu.Unlock()
}
