package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camrecon/camrecon/internal/common"
	"github.com/camrecon/camrecon/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func glLine(propertyID, account, period, amount string) model.Transaction {
	d, _ := decimal.NewFromString(amount)
	return model.Transaction{
		PropertyID:  propertyID,
		Account:     model.Account(account),
		Description: "test line",
		Period:      period,
		NetAmount:   d,
	}
}

func TestNewSQLiteStorage_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "camrecon.db")
	store, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Migrate(context.Background()))
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestMigrate_Idempotent(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Migrate(context.Background()))
}

func TestSaveGetTransactions(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	lines := []model.Transaction{
		glLine("P100", "520000", "202402", "2400"),
		glLine("P100", "510100", "202401", "1000.50"),
		glLine("P200", "510100", "202401", "750"),
	}
	require.NoError(t, store.SaveTransactions(ctx, lines))

	got, err := store.GetTransactions(ctx, "P100")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Ordered by period then account.
	assert.Equal(t, model.Account("510100"), got[0].Account)
	assert.Equal(t, "1000.5", got[0].NetAmount.String())
	assert.Equal(t, "202402", got[1].Period)

	count, err := store.CountTransactions(ctx, "P100")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSaveTransactions_DeduplicatesOnReimport(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	lines := []model.Transaction{
		glLine("P100", "510100", "202401", "1000"),
		glLine("P100", "510100", "202402", "1000"),
	}
	require.NoError(t, store.SaveTransactions(ctx, lines))
	require.NoError(t, store.SaveTransactions(ctx, lines))

	count, err := store.CountTransactions(ctx, "P100")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSaveTransactions_Validation(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	err := store.SaveTransactions(ctx, nil)
	assert.ErrorIs(t, err, ErrNilParameter)

	err = store.SaveTransactions(ctx, []model.Transaction{
		{PropertyID: "P100", Period: "202401"},
	})
	assert.ErrorIs(t, err, ErrInvalidTransaction)
}

func TestGetTransactions_Validation(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetTransactions(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyString)

	//nolint:staticcheck // nil context is the case under test
	_, err = store.GetTransactions(nil, "P100")
	assert.ErrorIs(t, err, ErrNilContext)
}

func TestCapHistoryRoundtrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	history := make(model.CapHistory)
	history.Set("1001", "2023", decimal.NewFromInt(7000))
	history.Set("1001", "2024", decimal.NewFromInt(7350))
	history.Set("1002", "2023", decimal.RequireFromString("8123.45"))
	require.NoError(t, store.SaveCapHistory(ctx, history))

	got, err := store.GetCapHistory(ctx)
	require.NoError(t, err)
	amount, ok := got.Amount("1001", "2024")
	require.True(t, ok)
	assert.Equal(t, "7350", amount.String())
	amount, ok = got.Amount("1002", "2023")
	require.True(t, ok)
	assert.Equal(t, "8123.45", amount.String())
}

func TestSaveCapHistory_UpsertsWithoutDeleting(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first := make(model.CapHistory)
	first.Set("1001", "2023", decimal.NewFromInt(7000))
	first.Set("1002", "2023", decimal.NewFromInt(5000))
	require.NoError(t, store.SaveCapHistory(ctx, first))

	// A later save mentioning only one tenant updates that entry and
	// leaves the rest of the history alone.
	second := make(model.CapHistory)
	second.Set("1001", "2023", decimal.NewFromInt(7100))
	require.NoError(t, store.SaveCapHistory(ctx, second))

	got, err := store.GetCapHistory(ctx)
	require.NoError(t, err)
	amount, _ := got.Amount("1001", "2023")
	assert.Equal(t, "7100", amount.String())
	amount, ok := got.Amount("1002", "2023")
	require.True(t, ok)
	assert.Equal(t, "5000", amount.String())
}

func TestOverrides(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	override := model.Override{
		TenantID:    "1001",
		PropertyID:  "P100",
		Amount:      decimal.RequireFromString("150.25"),
		Description: "audit adjustment",
	}
	require.NoError(t, store.SaveOverride(ctx, override))

	got, err := store.GetOverride(ctx, "1001", "P100")
	require.NoError(t, err)
	assert.Equal(t, "150.25", got.Amount.String())
	assert.Equal(t, "audit adjustment", got.Description)

	// Upsert replaces by (tenant, property).
	override.Amount = decimal.NewFromInt(-75)
	override.Description = "credit"
	require.NoError(t, store.SaveOverride(ctx, override))

	got, err = store.GetOverride(ctx, "1001", "P100")
	require.NoError(t, err)
	assert.Equal(t, "-75", got.Amount.String())

	// No stored override is not an error.
	got, err = store.GetOverride(ctx, "9999", "P100")
	require.NoError(t, err)
	assert.True(t, got.Amount.IsZero())
	assert.Empty(t, got.TenantID)
}

func TestGetAllOverrides(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, o := range []model.Override{
		{TenantID: "1002", PropertyID: "P200", Amount: decimal.NewFromInt(10)},
		{TenantID: "1001", PropertyID: "P100", Amount: decimal.NewFromInt(20)},
		{TenantID: "1003", PropertyID: "P100", Amount: decimal.NewFromInt(30)},
	} {
		require.NoError(t, store.SaveOverride(ctx, o))
	}

	all, err := store.GetAllOverrides(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "1001", all[0].TenantID)
	assert.Equal(t, "1003", all[1].TenantID)
	assert.Equal(t, "P200", all[2].PropertyID)
}

func TestSaveOverride_Validation(t *testing.T) {
	store := newTestStore(t)

	err := store.SaveOverride(context.Background(), model.Override{PropertyID: "P100"})
	assert.ErrorIs(t, err, ErrInvalidOverride)
}

func TestTenantRefs(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	ref := model.TenantRef{
		TenantID:   "1001",
		PropertyID: "P100",
		TenantName: "Acme Retail",
		OldMonthly: decimal.RequireFromString("218.33"),
	}
	require.NoError(t, store.SaveTenantRef(ctx, ref))

	got, err := store.GetTenantRef(ctx, "1001", "P100")
	require.NoError(t, err)
	assert.Equal(t, "Acme Retail", got.TenantName)
	assert.Equal(t, "218.33", got.OldMonthly.String())

	ref.OldMonthly = decimal.NewFromInt(250)
	require.NoError(t, store.SaveTenantRef(ctx, ref))
	got, err = store.GetTenantRef(ctx, "1001", "P100")
	require.NoError(t, err)
	assert.Equal(t, "250", got.OldMonthly.String())

	_, err = store.GetTenantRef(ctx, "9999", "P100")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestBeginTx(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.SaveTransactions(ctx, []model.Transaction{
		glLine("P100", "510100", "202401", "1000"),
	}))
	require.NoError(t, tx.Commit())

	count, err := store.CountTransactions(ctx, "P100")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	tx, err = store.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.SaveTransactions(ctx, []model.Transaction{
		glLine("P100", "510100", "202402", "1000"),
	}))
	require.NoError(t, tx.Rollback())

	count, err = store.CountTransactions(ctx, "P100")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
