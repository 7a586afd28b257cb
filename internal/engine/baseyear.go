package engine

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/camrecon/camrecon/internal/common"
	"github.com/camrecon/camrecon/internal/model"
)

// BaseYearResult records the base-year deduction for one tenant.
type BaseYearResult struct {
	Applies         bool
	BaseYear        int
	Deduction       decimal.Decimal
	TotalBefore     decimal.Decimal
	AfterAdjustment decimal.Decimal
}

// AdjustBaseYear applies the base-year deduction when one is configured
// and the reconciliation year falls after it. When base-category GL
// exclusions are configured and the base bucket is populated, the total
// subject to deduction is recomputed from that bucket alone.
func AdjustBaseYear(reconYear int, agg Aggregates, set *model.ClassifiedSet, settings *model.Settings) BaseYearResult {
	total := agg.BaseYearTotal
	if len(settings.Exclusions(model.CategoryBase)) > 0 && len(set.Base) > 0 {
		total = set.SumBucket(model.CategoryBase)
		common.LogInfo("base year total recomputed from base bucket", common.Fields{
			"base_entries":    len(set.Base),
			"base_year_total": total.String(),
		})
	}

	result := BaseYearResult{
		Deduction:       decimal.Zero,
		TotalBefore:     total,
		AfterAdjustment: total,
	}

	baseYearRaw := strings.TrimSpace(settings.BaseYear)
	if baseYearRaw == "" {
		return result
	}
	baseYear, err := strconv.Atoi(baseYearRaw)
	if err != nil {
		common.LogWarn("invalid base year setting, adjustment skipped", common.Fields{
			"base_year": baseYearRaw,
		})
		return result
	}
	if reconYear <= baseYear {
		return result
	}

	deduction, ok := model.ParseDecimal(settings.BaseYearAmount)
	if !ok && settings.BaseYearAmount != "" {
		common.LogWarn("invalid base year amount, using 0", common.Fields{
			"base_year_amount": settings.BaseYearAmount,
		})
	}

	after := total.Sub(deduction)
	if after.IsNegative() {
		after = decimal.Zero
	}

	result.Applies = true
	result.BaseYear = baseYear
	result.Deduction = deduction
	result.AfterAdjustment = after
	return result
}
