package engine

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/camrecon/camrecon/internal/common"
	"github.com/camrecon/camrecon/internal/model"
)

// ApplyCapOverride writes an explicit per-tenant cap override into the
// cap history before reference lookup, taking precedence over computed
// history. Returns true when an override was recorded.
func ApplyCapOverride(settings *model.Settings, history model.CapHistory) bool {
	year := settings.Cap.OverrideYear
	rawAmount := settings.Cap.OverrideAmount
	if year == "" || rawAmount == "" {
		return false
	}

	amount, ok := model.ParseDecimal(rawAmount)
	if !ok {
		common.LogWarn("invalid cap override amount, override skipped", common.Fields{
			"tenant_id": settings.TenantID,
			"amount":    rawAmount,
		})
		return false
	}

	history.Set(settings.TenantID, year, amount)
	common.LogInfo("cap override applied to history", common.Fields{
		"tenant_id": settings.TenantID,
		"year":      year,
		"amount":    amount.String(),
	})
	return true
}

// EnforceCap separates cap-exempt amounts, computes the effective cap
// limit from history and settings, and applies the limit to the
// cap-subject portion only. adminFee joins whichever side of the split
// the admin-fee basis designates.
func EnforceCap(reconYear int, afterBase, adminFee decimal.Decimal, set *model.ClassifiedSet, settings *model.Settings, history model.CapHistory, categories []model.Category) model.CapResult {
	result := splitCapExclusions(afterBase, adminFee, set, settings, categories)

	limit := capLimit(reconYear, settings, history)
	result.ReferenceAmount = limit.reference
	result.CapPercentage = limit.percentage
	result.CapType = limit.capType
	result.StandardLimit = limit.standard
	result.EffectiveLimit = limit.effective
	result.MinIncreaseApplied = limit.minApplied
	result.MaxIncreaseApplied = limit.maxApplied
	result.StopAmountApplied = limit.stopApplied

	// A cap only binds when history gives a reference amount.
	result.Applies = limit.reference.GreaterThan(decimal.Zero)
	result.CappedSubject = result.SubjectAmount
	if result.Applies && result.SubjectAmount.GreaterThan(limit.effective) {
		result.CappedSubject = limit.effective
		result.Limited = true
		common.LogInfo("cap limit applied", common.Fields{
			"tenant_id": settings.TenantID,
			"subject":   result.SubjectAmount.String(),
			"limit":     limit.effective.String(),
		})
	}
	result.FinalAmount = result.CappedSubject.Add(result.ExcludedAmount)
	return result
}

// splitCapExclusions partitions the post-base-year amount into the
// portion subject to cap limits and the cap-exempt portion. Accounts
// present in the recovery category but absent from the cap bucket are
// exempt. Without usable cap entries the whole amount is treated as
// cap-subject.
func splitCapExclusions(afterBase, adminFee decimal.Decimal, set *model.ClassifiedSet, settings *model.Settings, categories []model.Category) model.CapResult {
	recovery := model.CategoryCAM
	if len(categories) > 0 {
		recovery = categories[0]
	}
	recoveryEntries := set.Bucket(recovery)
	capEntries := set.Cap

	if len(recoveryEntries) == 0 || len(capEntries) == 0 {
		common.LogWarn("missing recovery or cap entries, full amount treated as cap-subject", common.Fields{
			"tenant_id":        settings.TenantID,
			"recovery":         string(recovery),
			"recovery_entries": len(recoveryEntries),
			"cap_entries":      len(capEntries),
		})
		return model.CapResult{
			SubjectAmount:  afterBase,
			ExcludedAmount: decimal.Zero,
		}
	}

	capAccounts := make(map[model.Account]bool, len(capEntries))
	for _, txn := range capEntries {
		capAccounts[txn.Account] = true
	}

	subject, excluded := decimal.Zero, decimal.Zero
	for _, txn := range recoveryEntries {
		if capAccounts[txn.Account] {
			subject = subject.Add(txn.NetAmount)
		} else {
			excluded = excluded.Add(txn.NetAmount)
		}
	}

	if settings.AdminFeeBasis.SubjectToCap() {
		subject = subject.Add(adminFee)
	} else {
		excluded = excluded.Add(adminFee)
	}

	total := subject.Add(excluded)
	if total.Sub(afterBase).Abs().GreaterThan(decimal.NewFromFloat(0.01)) {
		common.LogWarn("cap split total differs from post-base-year amount", common.Fields{
			"tenant_id":  settings.TenantID,
			"split":      total.String(),
			"after_base": afterBase.String(),
		})
	}

	return model.CapResult{
		SubjectAmount:  subject,
		ExcludedAmount: excluded,
	}
}

type capLimitResult struct {
	reference   decimal.Decimal
	percentage  decimal.Decimal
	capType     string
	standard    decimal.Decimal
	effective   decimal.Decimal
	minApplied  bool
	maxApplied  bool
	stopApplied bool
}

func capLimit(reconYear int, settings *model.Settings, history model.CapHistory) capLimitResult {
	percentage, ok := model.ParseDecimal(settings.Cap.Percentage)
	if !ok && settings.Cap.Percentage != "" {
		common.LogWarn("invalid cap percentage, using 0", common.Fields{
			"cap_percentage": settings.Cap.Percentage,
		})
	}

	capType := normalizeCapType(settings.Cap.Type)
	reference := referenceAmount(settings.TenantID, reconYear, capType, history)

	one := decimal.NewFromInt(1)
	standard := reference.Mul(one.Add(percentage))
	limit := capLimitResult{
		reference:  reference,
		percentage: percentage,
		capType:    capType,
		standard:   standard,
		effective:  standard,
	}

	positiveRef := reference.GreaterThan(decimal.Zero)
	if minIncrease, set := model.ParseDecimal(settings.MinIncrease); set && positiveRef {
		minLimit := reference.Mul(one.Add(minIncrease))
		if minLimit.GreaterThan(limit.effective) {
			limit.effective = minLimit
			limit.minApplied = true
		}
	}
	if maxIncrease, set := model.ParseDecimal(settings.MaxIncrease); set && positiveRef {
		maxLimit := reference.Mul(one.Add(maxIncrease))
		if maxLimit.LessThan(limit.effective) {
			limit.effective = maxLimit
			limit.maxApplied = true
		}
	}
	if stopAmount, set := model.ParseDecimal(settings.StopAmount); set {
		squareFootage, _ := model.ParseDecimal(settings.SquareFootage)
		if squareFootage.GreaterThan(decimal.Zero) {
			stopLimit := stopAmount.Mul(squareFootage)
			if stopLimit.LessThan(limit.effective) {
				limit.effective = stopLimit
				limit.stopApplied = true
			}
		}
	}

	return limit
}

func normalizeCapType(capType string) string {
	switch capType {
	case "previous_year", "highest_previous_year":
		return capType
	case "":
		return "previous_year"
	default:
		common.LogWarn("unknown cap type, using previous_year", common.Fields{"cap_type": capType})
		return "previous_year"
	}
}

// referenceAmount reads the cap reference from history: the immediately
// preceding year's amount, or the highest amount among all years
// strictly before the reconciliation year.
func referenceAmount(tenantID string, reconYear int, capType string, history model.CapHistory) decimal.Decimal {
	years := history[tenantID]
	if len(years) == 0 {
		return decimal.Zero
	}

	if capType == "previous_year" {
		amount, ok := years[strconv.Itoa(reconYear-1)]
		if !ok {
			return decimal.Zero
		}
		return amount
	}

	highest := decimal.Zero
	for year, amount := range years {
		y, err := strconv.Atoi(year)
		if err != nil || y >= reconYear {
			continue
		}
		if amount.GreaterThan(highest) {
			highest = amount
		}
	}
	return highest
}
