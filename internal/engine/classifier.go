package engine

import (
	"github.com/camrecon/camrecon/internal/common"
	"github.com/camrecon/camrecon/internal/model"
)

// Classify partitions a property's GL transactions into category buckets
// using the resolved inclusion/exclusion rules, keeping only the
// requested periods. RET matching takes precedence over CAM; anything
// matching neither lands in the other bucket. A matched transaction is
// additionally placed in the base and cap buckets unless those
// categories separately exclude it.
func Classify(transactions []model.Transaction, settings *model.Settings, periods []string) *model.ClassifiedSet {
	wanted := make(map[string]bool, len(periods))
	for _, p := range periods {
		wanted[p] = true
	}

	set := &model.ClassifiedSet{}
	skippedByPeriod, skippedByAmount := 0, 0

	for _, txn := range transactions {
		if txn.Account == "" || txn.Period == "" {
			continue
		}
		if !wanted[txn.Period] {
			skippedByPeriod++
			continue
		}
		if txn.NetAmount.IsZero() {
			skippedByAmount++
			continue
		}

		retIncluded := ruleIncluded(txn.Account, settings.Inclusions(model.CategoryRET), settings.Exclusions(model.CategoryRET))
		camIncluded := ruleIncluded(txn.Account, settings.Inclusions(model.CategoryCAM), settings.Exclusions(model.CategoryCAM))

		switch {
		case retIncluded:
			set.RET = append(set.RET, txn)
		case camIncluded:
			set.CAM = append(set.CAM, txn)
		default:
			set.Other = append(set.Other, txn)
			continue
		}

		if !matchesAny(txn.Account, settings.Exclusions(model.CategoryBase)) {
			set.Base = append(set.Base, txn)
		}
		if !matchesAny(txn.Account, settings.Exclusions(model.CategoryCap)) {
			set.Cap = append(set.Cap, txn)
		}
	}

	common.LogInfo("classified GL transactions", common.Fields{
		"cam":               len(set.CAM),
		"ret":               len(set.RET),
		"base":              len(set.Base),
		"cap":               len(set.Cap),
		"other":             len(set.Other),
		"skipped_by_period": skippedByPeriod,
		"skipped_by_amount": skippedByAmount,
	})
	return set
}

// ruleIncluded applies the inclusion rules (empty list means match-all)
// and then the exclusion rules.
func ruleIncluded(account model.Account, inclusions, exclusions []string) bool {
	included := len(inclusions) == 0
	if !included && matchesAny(account, inclusions) {
		included = true
	}
	if !included {
		return false
	}
	return !matchesAny(account, exclusions)
}

func matchesAny(account model.Account, rules []string) bool {
	for _, rule := range rules {
		matched, lexical := account.MatchesRule(rule)
		if lexical {
			common.LogWarn("non-numeric GL account, range matched lexically", common.Fields{
				"account": string(account),
				"rule":    rule,
			})
		}
		if matched {
			return true
		}
	}
	return false
}
