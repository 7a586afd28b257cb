package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/camrecon/camrecon/internal/config"
	"github.com/camrecon/camrecon/internal/service"
	"github.com/camrecon/camrecon/internal/storage"
)

var hundred = decimal.NewFromInt(100)

// initStorage opens the database and brings the schema up to date.
func initStorage(ctx context.Context) (service.Store, error) {
	store, err := storage.NewSQLiteStorage(config.DatabasePath())
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}
