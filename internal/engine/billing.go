package engine

import (
	"github.com/shopspring/decimal"

	"github.com/camrecon/camrecon/internal/common"
	"github.com/camrecon/camrecon/internal/model"
)

// SharePercentage computes the tenant's fractional share of property
// expenses. The Fixed method divides the configured whole-number percent
// by 100; every other method uses tenant square footage over property
// rentable square footage, zero when the property figure is unset.
func SharePercentage(settings *model.Settings) decimal.Decimal {
	if settings.ProrateShareMethod == "Fixed" {
		pct, ok := model.ParseDecimal(settings.FixedSharePct)
		if !ok {
			if settings.FixedSharePct != "" {
				common.LogWarn("invalid fixed share percentage, using 0", common.Fields{
					"tenant_id":       settings.TenantID,
					"fixed_pyc_share": settings.FixedSharePct,
				})
			}
			return decimal.Zero
		}
		return pct.Div(decimal.NewFromInt(100))
	}

	tenantSF, _ := model.ParseDecimal(settings.SquareFootage)
	propertySF, _ := model.ParseDecimal(settings.TotalRSF)
	if !propertySF.GreaterThan(decimal.Zero) {
		return decimal.Zero
	}
	return tenantSF.Div(propertySF)
}

// AssembleBilling combines the per-tenant pieces into the final billing
// figures: the tenant's share spread over the reconciliation periods and
// adjusted by occupancy, the override and capital-expense additions, and
// the recon/catch-up split with paid and outstanding amounts.
func AssembleBilling(result *model.TenantBillingResult, settings *model.Settings, schedule PeriodSchedule, agg Aggregates, override model.Override, capEx, oldMonthly decimal.Decimal) {
	result.ShareMethod = settings.ProrateShareMethod
	result.SharePercentage = SharePercentage(settings)

	tenantShare := agg.CAMTotal.Add(agg.AdminFee).Mul(result.SharePercentage)
	result.TenantShare = tenantShare

	reconCount := len(schedule.Recon)
	monthly := decimal.Zero
	if reconCount > 0 {
		monthly = tenantShare.Div(decimal.NewFromInt(int64(reconCount)))
	}

	factors := OccupancyFactors(schedule.Recon, settings.LeaseStart, settings.LeaseEnd)
	result.OccupancyFactors = factors
	result.AverageOccupancy = AverageOccupancy(factors, nil)

	baseBilling := decimal.Zero
	for _, period := range schedule.Recon {
		baseBilling = baseBilling.Add(monthly.Mul(factors[period]))
	}

	result.OverrideAmount = override.Amount
	result.OverrideDescription = override.Description
	result.CapitalExpenses = capEx
	result.BaseBilling = baseBilling
	result.FinalBilling = baseBilling.Add(override.Amount).Add(capEx)

	splitBilling(result, schedule, oldMonthly)

	result.Payment = ComparePayments(oldMonthly, NewMonthlyPayment(result.FinalBilling, reconCount))
}

// splitBilling apportions the final billing across the reconciliation
// year and catch-up periods. Catch-up billing replays the new monthly
// amount implied by the final annual figure; the override is spread
// across the segments proportional to their period counts.
func splitBilling(result *model.TenantBillingResult, schedule PeriodSchedule, oldMonthly decimal.Decimal) {
	reconCount := len(schedule.Recon)
	catchupCount := len(schedule.CatchUp)
	totalCount := reconCount + catchupCount

	// Capital expenses belong to the reconciliation year, so they ride
	// on the recon segment; BaseBilling itself stays pre-capex because
	// it feeds the cap history write.
	recon := model.BillingSegment{
		Periods: schedule.Recon,
		Base:    result.BaseBilling.Add(result.CapitalExpenses),
	}
	catchup := model.BillingSegment{
		Periods: schedule.CatchUp,
		Base:    decimal.Zero,
	}

	if catchupCount > 0 {
		newMonthly := NewMonthlyPayment(result.FinalBilling, reconCount)
		catchup.Base = newMonthly.Mul(decimal.NewFromInt(int64(catchupCount)))
	}

	recon.Override = result.OverrideAmount
	catchup.Override = decimal.Zero
	if totalCount > 0 && catchupCount > 0 {
		total := decimal.NewFromInt(int64(totalCount))
		recon.Override = result.OverrideAmount.Mul(decimal.NewFromInt(int64(reconCount))).Div(total)
		catchup.Override = result.OverrideAmount.Mul(decimal.NewFromInt(int64(catchupCount))).Div(total)
	}

	recon.Final = recon.Base.Add(recon.Override)
	catchup.Final = catchup.Base.Add(catchup.Override)

	recon.Paid = oldMonthly.Mul(decimal.NewFromInt(int64(reconCount)))
	catchup.Paid = oldMonthly.Mul(decimal.NewFromInt(int64(catchupCount)))

	recon.Outstanding = recon.Final.Sub(recon.Paid)
	catchup.Outstanding = catchup.Final.Sub(catchup.Paid)

	result.Recon = recon
	result.CatchUp = catchup
	result.TotalPaid = recon.Paid.Add(catchup.Paid)
	result.TotalOutstanding = recon.Outstanding.Add(catchup.Outstanding)
}
