// Package testutil provides shared helpers for tests that need a real
// database.
package testutil

import (
	"context"
	"testing"

	"github.com/camrecon/camrecon/internal/service"
	"github.com/camrecon/camrecon/internal/storage"
)

// TestDB wraps an in-memory store with automatic migration and cleanup.
type TestDB struct {
	Store service.Store
	t     *testing.T
}

// SetupTestDB creates a migrated in-memory SQLite store. Cleanup is
// registered on the test.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	return &TestDB{Store: store, t: t}
}
