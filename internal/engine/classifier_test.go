package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camrecon/camrecon/internal/model"
)

func txn(account, period, amount string) model.Transaction {
	d, _ := decimal.NewFromString(amount)
	return model.Transaction{
		PropertyID: "P100",
		Account:    model.Account(account),
		Period:     period,
		NetAmount:  d,
	}
}

func TestClassify_Buckets(t *testing.T) {
	settings := &model.Settings{
		GLInclusions: map[model.Category][]string{
			model.CategoryCAM: {"510000-519999"},
			model.CategoryRET: {"530000"},
		},
	}
	periods := ReconPeriods(2024)

	transactions := []model.Transaction{
		txn("510100", "202401", "1000"),
		txn("MR515000", "202402", "250.50"),
		txn("530000", "202403", "4000"),
		txn("999999", "202404", "75"),
	}

	set := Classify(transactions, settings, periods)
	assert.Len(t, set.CAM, 2)
	assert.Len(t, set.RET, 1)
	assert.Len(t, set.Other, 1)

	// No base or cap exclusions, so every matched line joins both.
	assert.Len(t, set.Base, 3)
	assert.Len(t, set.Cap, 3)

	assert.Equal(t, "1250.5", set.SumBucket(model.CategoryCAM).String())
	assert.Equal(t, "4000", set.SumBucket(model.CategoryRET).String())
}

func TestClassify_RETPrecedence(t *testing.T) {
	// An account matching both categories lands in RET only.
	settings := &model.Settings{
		GLInclusions: map[model.Category][]string{
			model.CategoryCAM: {"500000-599999"},
			model.CategoryRET: {"530000"},
		},
	}

	set := Classify([]model.Transaction{txn("530000", "202401", "100")}, settings, ReconPeriods(2024))
	assert.Len(t, set.RET, 1)
	assert.Empty(t, set.CAM)
}

func TestClassify_Exclusions(t *testing.T) {
	settings := &model.Settings{
		GLInclusions: map[model.Category][]string{
			model.CategoryCAM: {"510000-519999"},
		},
		GLExclusions: map[model.Category][]string{
			model.CategoryCAM:  {"515000"},
			model.CategoryBase: {"510100"},
			model.CategoryCap:  {"510200"},
		},
	}

	transactions := []model.Transaction{
		txn("510100", "202401", "100"),
		txn("510200", "202401", "200"),
		txn("515000", "202401", "300"), // excluded from CAM entirely
	}

	set := Classify(transactions, settings, ReconPeriods(2024))
	require.Len(t, set.CAM, 2)
	assert.Len(t, set.Other, 1)

	// Base drops 510100, cap drops 510200.
	require.Len(t, set.Base, 1)
	assert.Equal(t, model.Account("510200"), set.Base[0].Account)
	require.Len(t, set.Cap, 1)
	assert.Equal(t, model.Account("510100"), set.Cap[0].Account)
}

func TestClassify_EmptyInclusionsMatchAll(t *testing.T) {
	set := Classify([]model.Transaction{txn("777777", "202401", "50")}, &model.Settings{}, ReconPeriods(2024))
	// With no RET rules either, RET's match-all wins on precedence.
	assert.Len(t, set.RET, 1)
	assert.Empty(t, set.Other)
}

func TestClassify_Skips(t *testing.T) {
	settings := &model.Settings{
		GLInclusions: map[model.Category][]string{
			model.CategoryCAM: {"510000-519999"},
		},
	}

	transactions := []model.Transaction{
		txn("510100", "202301", "100"), // outside requested periods
		txn("510100", "202401", "0"),   // zero amount
		txn("", "202401", "100"),       // missing account
		txn("510100", "", "100"),       // missing period
		txn("510100", "202401", "100"),
	}

	set := Classify(transactions, settings, ReconPeriods(2024))
	assert.Len(t, set.CAM, 1)
	assert.Empty(t, set.Other)
}
