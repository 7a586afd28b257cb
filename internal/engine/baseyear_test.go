package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/camrecon/camrecon/internal/model"
)

func aggWithBaseTotal(s string) Aggregates {
	d, _ := decimal.NewFromString(s)
	return Aggregates{BaseYearTotal: d}
}

func TestAdjustBaseYear(t *testing.T) {
	settings := &model.Settings{BaseYear: "2022", BaseYearAmount: "10000"}

	result := AdjustBaseYear(2024, aggWithBaseTotal("18000"), &model.ClassifiedSet{}, settings)
	assert.True(t, result.Applies)
	assert.Equal(t, 2022, result.BaseYear)
	assert.Equal(t, "10000", result.Deduction.String())
	assert.Equal(t, "8000", result.AfterAdjustment.String())
}

func TestAdjustBaseYear_NotAfterBaseYear(t *testing.T) {
	settings := &model.Settings{BaseYear: "2022", BaseYearAmount: "10000"}

	// Reconciling the base year itself leaves the total untouched.
	result := AdjustBaseYear(2022, aggWithBaseTotal("18000"), &model.ClassifiedSet{}, settings)
	assert.False(t, result.Applies)
	assert.Equal(t, "18000", result.AfterAdjustment.String())

	result = AdjustBaseYear(2021, aggWithBaseTotal("18000"), &model.ClassifiedSet{}, settings)
	assert.False(t, result.Applies)
}

func TestAdjustBaseYear_ClampsAtZero(t *testing.T) {
	settings := &model.Settings{BaseYear: "2022", BaseYearAmount: "25000"}

	result := AdjustBaseYear(2024, aggWithBaseTotal("18000"), &model.ClassifiedSet{}, settings)
	assert.True(t, result.Applies)
	assert.True(t, result.AfterAdjustment.IsZero())
}

func TestAdjustBaseYear_InvalidSettings(t *testing.T) {
	result := AdjustBaseYear(2024, aggWithBaseTotal("18000"), &model.ClassifiedSet{}, &model.Settings{BaseYear: "unknown"})
	assert.False(t, result.Applies)
	assert.Equal(t, "18000", result.AfterAdjustment.String())

	// Unparsable amount deducts nothing but still marks the adjustment.
	result = AdjustBaseYear(2024, aggWithBaseTotal("18000"), &model.ClassifiedSet{}, &model.Settings{BaseYear: "2022", BaseYearAmount: "n/a"})
	assert.True(t, result.Applies)
	assert.Equal(t, "18000", result.AfterAdjustment.String())
}

func TestAdjustBaseYear_RecomputesFromBaseBucket(t *testing.T) {
	settings := &model.Settings{
		BaseYear:       "2022",
		BaseYearAmount: "1000",
		GLExclusions: map[model.Category][]string{
			model.CategoryBase: {"518000"},
		},
	}
	set := &model.ClassifiedSet{
		Base: []model.Transaction{
			txn("510100", "202401", "1200"),
			txn("510200", "202401", "800"),
		},
	}

	// The aggregate total is ignored in favor of the base bucket.
	result := AdjustBaseYear(2024, aggWithBaseTotal("5000"), set, settings)
	assert.Equal(t, "2000", result.TotalBefore.String())
	assert.Equal(t, "1000", result.AfterAdjustment.String())
}
