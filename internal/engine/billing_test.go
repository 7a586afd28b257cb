package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/camrecon/camrecon/internal/model"
)

func TestSharePercentage(t *testing.T) {
	tests := []struct {
		name     string
		settings model.Settings
		want     string
	}{
		{
			name: "fixed whole-number percent",
			settings: model.Settings{
				ProrateShareMethod: "Fixed",
				FixedSharePct:      "12.5",
			},
			want: "0.125",
		},
		{
			name: "fixed invalid percent",
			settings: model.Settings{
				ProrateShareMethod: "Fixed",
				FixedSharePct:      "n/a",
			},
			want: "0",
		},
		{
			name: "rsf ratio",
			settings: model.Settings{
				ProrateShareMethod: "RSF",
				SquareFootage:      "2000",
				TotalRSF:           "10000",
			},
			want: "0.2",
		},
		{
			name: "rsf without property total",
			settings: model.Settings{
				ProrateShareMethod: "RSF",
				SquareFootage:      "2000",
			},
			want: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SharePercentage(&tt.settings).String())
		})
	}
}

func TestAssembleBilling(t *testing.T) {
	settings := &model.Settings{
		TenantID:           "1001",
		ProrateShareMethod: "Fixed",
		FixedSharePct:      "10",
	}
	schedule := CalculatePeriods(2024, "")
	agg := Aggregates{
		CAMTotal: decimal.NewFromInt(12000),
		AdminFee: decimal.Zero,
	}

	result := &model.TenantBillingResult{}
	AssembleBilling(result, settings, schedule, agg, model.Override{}, decimal.Zero, decimal.Zero)

	assert.Equal(t, "0.1", result.SharePercentage.String())
	assert.Equal(t, "1200", result.TenantShare.String())
	assert.Equal(t, "1", result.AverageOccupancy.String())
	assert.Equal(t, "1200", result.BaseBilling.String())
	assert.Equal(t, "1200", result.FinalBilling.String())
	assert.Equal(t, "100", result.Payment.NewMonthly.String())
	assert.Equal(t, model.PaymentFirstBilling, result.Payment.ChangeType)
	assert.True(t, result.CatchUp.Base.IsZero())
	assert.Equal(t, "1200", result.TotalOutstanding.String())
}

func TestAssembleBilling_OccupancyProration(t *testing.T) {
	settings := &model.Settings{
		TenantID:           "1001",
		ProrateShareMethod: "Fixed",
		FixedSharePct:      "10",
		LeaseStart:         "2024-07-01",
	}
	schedule := CalculatePeriods(2024, "")
	agg := Aggregates{CAMTotal: decimal.NewFromInt(12000)}

	result := &model.TenantBillingResult{}
	AssembleBilling(result, settings, schedule, agg, model.Override{}, decimal.Zero, decimal.Zero)

	// Six occupied months at 100 each.
	assert.Equal(t, "0.5", result.AverageOccupancy.String())
	assert.Equal(t, "600", result.BaseBilling.String())
	assert.True(t, result.OccupancyFactors["202401"].IsZero())
	assert.Equal(t, "1", result.OccupancyFactors["202407"].String())
}

func TestAssembleBilling_OverrideAndCapEx(t *testing.T) {
	settings := &model.Settings{
		TenantID:           "1001",
		ProrateShareMethod: "Fixed",
		FixedSharePct:      "10",
	}
	schedule := CalculatePeriods(2024, "")
	agg := Aggregates{CAMTotal: decimal.NewFromInt(12000)}
	override := model.Override{Amount: decimal.NewFromInt(90), Description: "settlement"}
	capEx := decimal.NewFromInt(240)

	result := &model.TenantBillingResult{}
	AssembleBilling(result, settings, schedule, agg, override, capEx, decimal.NewFromInt(100))

	assert.Equal(t, "1200", result.BaseBilling.String())
	assert.Equal(t, "1530", result.FinalBilling.String())
	assert.Equal(t, "settlement", result.OverrideDescription)

	// Capex rides the recon segment; base billing stays pre-capex.
	assert.Equal(t, "1440", result.Recon.Base.String())
	assert.Equal(t, "90", result.Recon.Override.String())
	assert.Equal(t, "1530", result.Recon.Final.String())
	assert.Equal(t, "1200", result.Recon.Paid.String())
	assert.Equal(t, "330", result.Recon.Outstanding.String())
	assert.Equal(t, "330", result.TotalOutstanding.String())

	assert.Equal(t, "127.5", result.Payment.NewMonthly.String())
	assert.Equal(t, model.PaymentIncrease, result.Payment.ChangeType)
	assert.Equal(t, "27.5", result.Payment.PercentChange.String())
	assert.True(t, result.Payment.Significant)
}

func TestAssembleBilling_CatchUp(t *testing.T) {
	settings := &model.Settings{
		TenantID:           "1001",
		ProrateShareMethod: "Fixed",
		FixedSharePct:      "10",
	}
	schedule := CalculatePeriods(2024, "202503")
	agg := Aggregates{CAMTotal: decimal.NewFromInt(12000)}
	override := model.Override{Amount: decimal.NewFromInt(90)}
	oldMonthly := decimal.NewFromInt(80)

	result := &model.TenantBillingResult{}
	AssembleBilling(result, settings, schedule, agg, override, decimal.Zero, oldMonthly)

	assert.Equal(t, "1290", result.FinalBilling.String())

	// Override spreads 12:3 across recon and catch-up.
	assert.Equal(t, "72", result.Recon.Override.String())
	assert.Equal(t, "18", result.CatchUp.Override.String())

	// Catch-up replays the new monthly amount for its three periods.
	assert.Equal(t, "107.5", NewMonthlyPayment(result.FinalBilling, 12).String())
	assert.Equal(t, "322.5", result.CatchUp.Base.String())
	assert.Equal(t, "340.5", result.CatchUp.Final.String())

	assert.Equal(t, "960", result.Recon.Paid.String())
	assert.Equal(t, "240", result.CatchUp.Paid.String())
	assert.Equal(t, "1200", result.TotalPaid.String())

	// 1272 - 960 on recon plus 340.5 - 240 on catch-up.
	assert.Equal(t, "412.5", result.TotalOutstanding.String())
}
