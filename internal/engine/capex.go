package engine

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/camrecon/camrecon/internal/common"
	"github.com/camrecon/camrecon/internal/model"
)

// AmortizedExpense is one capital item's contribution to a year.
type AmortizedExpense struct {
	Description    string
	AnnualAmount   decimal.Decimal
	ProratedAmount decimal.Decimal
	Applicable     bool
}

// AmortizeCapitalExpense computes a capital item's amortized amount for
// the reconciliation year. The item applies when
// year ≤ reconYear < year + amortization years; amortization periods
// below one year are clamped to one. When periods are supplied the
// annual amount is prorated by the tenant's average occupancy across
// them.
func AmortizeCapitalExpense(item model.CapitalExpenseItem, reconYear int, periods []string, leaseStart, leaseEnd string) AmortizedExpense {
	expense := AmortizedExpense{
		Description:    item.Description,
		AnnualAmount:   decimal.Zero,
		ProratedAmount: decimal.Zero,
	}

	year, err := strconv.Atoi(item.Year)
	if err != nil {
		common.LogWarn("invalid capital expense year, item skipped", common.Fields{
			"id":   item.ID,
			"year": item.Year,
		})
		return expense
	}
	amount, ok := model.ParseDecimal(item.Amount)
	if !ok {
		common.LogWarn("invalid capital expense amount, item skipped", common.Fields{
			"id":     item.ID,
			"amount": item.Amount,
		})
		return expense
	}
	amortYears, err := strconv.Atoi(item.AmortYears)
	if err != nil || amortYears < 1 {
		amortYears = 1
	}

	if year > reconYear || year+amortYears <= reconYear {
		return expense
	}

	expense.Applicable = true
	expense.AnnualAmount = amount.Div(decimal.NewFromInt(int64(amortYears)))
	expense.ProratedAmount = expense.AnnualAmount

	if len(periods) > 0 {
		factors := OccupancyFactors(periods, leaseStart, leaseEnd)
		sum := decimal.Zero
		for _, factor := range factors {
			sum = sum.Add(factor)
		}
		avgOccupancy := sum.Div(decimal.NewFromInt(int64(len(periods))))
		expense.ProratedAmount = expense.AnnualAmount.Mul(avgOccupancy)
	}

	return expense
}

// TotalCapitalExpenses merges the property- and tenant-level schedules
// and sums each applicable item's prorated amount for the year. Only
// positive contributions count toward the total.
func TotalCapitalExpenses(settings *model.Settings, reconYear int, periods []string) decimal.Decimal {
	merged := model.MergeCapitalExpenses(settings.PropertyCapitalExpenses, settings.TenantCapitalExpenses)

	total := decimal.Zero
	for _, item := range merged {
		expense := AmortizeCapitalExpense(item, reconYear, periods, settings.LeaseStart, settings.LeaseEnd)
		if expense.Applicable && expense.ProratedAmount.GreaterThan(decimal.Zero) {
			total = total.Add(expense.ProratedAmount)
		}
	}
	return total
}
