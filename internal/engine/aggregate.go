package engine

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/camrecon/camrecon/internal/common"
	"github.com/camrecon/camrecon/internal/model"
)

// Aggregates holds the expense totals for one tenant run.
type Aggregates struct {
	CAMTotal      decimal.Decimal
	RETTotal      decimal.Decimal
	AdminFeeBase  decimal.Decimal
	AdminFeePct   decimal.Decimal
	AdminFee      decimal.Decimal
	CombinedTotal decimal.Decimal
	CapBaseTotal  decimal.Decimal
	BaseYearTotal decimal.Decimal
}

// Aggregate sums the classified buckets for the requested categories and
// computes the admin fee. The admin fee is charged only when a
// percentage is explicitly configured and the CAM category was
// requested; its base is the CAM bucket narrowed by the admin_fee
// inclusion/exclusion rules (none configured means all of CAM).
func Aggregate(set *model.ClassifiedSet, settings *model.Settings, categories []model.Category) Aggregates {
	agg := Aggregates{
		CAMTotal:      decimal.Zero,
		RETTotal:      decimal.Zero,
		AdminFeeBase:  decimal.Zero,
		AdminFeePct:   decimal.Zero,
		AdminFee:      decimal.Zero,
		CombinedTotal: decimal.Zero,
		CapBaseTotal:  decimal.Zero,
		BaseYearTotal: decimal.Zero,
	}

	camRequested := containsCategory(categories, model.CategoryCAM)
	retRequested := containsCategory(categories, model.CategoryRET)

	if camRequested {
		agg.CAMTotal = set.SumBucket(model.CategoryCAM)
	}
	if retRequested {
		agg.RETTotal = set.SumBucket(model.CategoryRET)
	}

	if camRequested {
		agg.AdminFeeBase = adminFeeBase(set.CAM, settings)
		if pct, configured := ParseAdminFeePercentage(settings.AdminFeePercentage); configured {
			agg.AdminFeePct = pct
			agg.AdminFee = agg.AdminFeeBase.Mul(pct)
		}
	}

	agg.CombinedTotal = agg.CAMTotal.Add(agg.RETTotal)
	agg.CapBaseTotal = agg.CombinedTotal
	agg.BaseYearTotal = agg.CombinedTotal
	if settings.AdminFeeBasis.InCap {
		agg.CapBaseTotal = agg.CapBaseTotal.Add(agg.AdminFee)
	}
	if settings.AdminFeeBasis.InBase {
		agg.BaseYearTotal = agg.BaseYearTotal.Add(agg.AdminFee)
	}

	return agg
}

// adminFeeBase sums the CAM transactions that pass the admin_fee rules.
func adminFeeBase(camBucket []model.Transaction, settings *model.Settings) decimal.Decimal {
	inclusions := settings.Inclusions(model.CategoryAdminFee)
	exclusions := settings.Exclusions(model.CategoryAdminFee)

	base := decimal.Zero
	for _, txn := range camBucket {
		if ruleIncluded(txn.Account, inclusions, exclusions) {
			base = base.Add(txn.NetAmount)
		}
	}
	return base
}

// ParseAdminFeePercentage normalizes a configured percentage string into
// a fractional rate. configured is false when the setting is absent:
// absence means "do not charge", which is not the same as zero percent.
func ParseAdminFeePercentage(raw string) (pct decimal.Decimal, configured bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, false
	}

	raw = strings.TrimSuffix(raw, "%")
	if strings.HasPrefix(raw, ".") {
		raw = "0" + raw
	}

	value, err := decimal.NewFromString(raw)
	if err != nil {
		common.LogWarn("invalid admin fee percentage, using 0", common.Fields{"value": raw})
		return decimal.Zero, true
	}

	hundred := decimal.NewFromInt(100)
	switch {
	case value.GreaterThan(hundred):
		common.LogWarn("admin fee percentage unusually high, dividing by 100", common.Fields{
			"value": value.String(),
		})
		return value.Div(hundred), true
	case value.GreaterThanOrEqual(decimal.NewFromInt(1)):
		return value.Div(hundred), true
	case value.GreaterThan(decimal.Zero):
		return value, true
	default:
		return decimal.Zero, true
	}
}

func containsCategory(categories []model.Category, want model.Category) bool {
	for _, c := range categories {
		if c == want {
			return true
		}
	}
	return false
}
