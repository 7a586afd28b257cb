// Package storage provides the data persistence layer for the camrecon application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/camrecon/camrecon/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidOverride    = errors.New("invalid override")
	ErrInvalidTenantRef   = errors.New("invalid tenant reference")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions validates a slice of GL transactions.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	for i := range transactions {
		if err := validateTransaction(&transactions[i]); err != nil {
			return fmt.Errorf("transaction %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single GL transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn.PropertyID == "" {
		return fmt.Errorf("%w: missing property id", ErrInvalidTransaction)
	}
	if txn.Account == "" {
		return fmt.Errorf("%w: missing GL account", ErrInvalidTransaction)
	}
	if txn.Period == "" {
		return fmt.Errorf("%w: missing period", ErrInvalidTransaction)
	}
	return nil
}

func validateOverride(override model.Override) error {
	if override.TenantID == "" {
		return fmt.Errorf("%w: missing tenant id", ErrInvalidOverride)
	}
	if override.PropertyID == "" {
		return fmt.Errorf("%w: missing property id", ErrInvalidOverride)
	}
	return nil
}

func validateTenantRef(ref model.TenantRef) error {
	if ref.TenantID == "" {
		return fmt.Errorf("%w: missing tenant id", ErrInvalidTenantRef)
	}
	if ref.PropertyID == "" {
		return fmt.Errorf("%w: missing property id", ErrInvalidTenantRef)
	}
	return nil
}
