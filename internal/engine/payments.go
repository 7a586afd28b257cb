package engine

import (
	"github.com/shopspring/decimal"

	"github.com/camrecon/camrecon/internal/common"
	"github.com/camrecon/camrecon/internal/model"
)

// NewMonthlyPayment derives the monthly amount implied by a final annual
// figure, rounded to the cent. A non-positive period count falls back to
// twelve months.
func NewMonthlyPayment(finalAmount decimal.Decimal, periodCount int) decimal.Decimal {
	if periodCount <= 0 {
		periodCount = 12
	}
	return finalAmount.Div(decimal.NewFromInt(int64(periodCount))).Round(2)
}

// ComparePayments classifies the move from the previously billed monthly
// amount to the new one. Changes of twenty percent or more in either
// direction are flagged significant.
func ComparePayments(oldMonthly, newMonthly decimal.Decimal) model.PaymentChange {
	change := model.PaymentChange{
		OldMonthly: oldMonthly,
		NewMonthly: newMonthly,
	}

	switch {
	case oldMonthly.IsZero() && newMonthly.IsZero():
		change.PercentChange = decimal.Zero
		change.ChangeType = model.PaymentNoChange
	case oldMonthly.IsZero():
		change.PercentChange = decimal.NewFromInt(100)
		change.ChangeType = model.PaymentFirstBilling
	default:
		diff := newMonthly.Sub(oldMonthly)
		change.PercentChange = diff.Div(oldMonthly).Mul(decimal.NewFromInt(100)).Round(1)
		switch {
		case change.PercentChange.GreaterThan(decimal.Zero):
			change.ChangeType = model.PaymentIncrease
		case change.PercentChange.LessThan(decimal.Zero):
			change.ChangeType = model.PaymentDecrease
		default:
			change.ChangeType = model.PaymentNoChange
		}
	}

	change.Significant = change.PercentChange.Abs().GreaterThanOrEqual(decimal.NewFromInt(20))
	if change.Significant {
		common.LogWarn("significant payment change", common.Fields{
			"old_monthly": oldMonthly.String(),
			"new_monthly": newMonthly.String(),
			"percent":     change.PercentChange.String(),
			"change_type": string(change.ChangeType),
		})
	}
	return change
}
