package model

import (
	"strconv"
	"strings"
)

// Account is a GL account identifier such as "MR510000" or "510000".
type Account string

// Normalized returns the account with the ledger prefix stripped.
func (a Account) Normalized() string {
	return strings.ReplaceAll(string(a), "MR", "")
}

// MatchesRule reports whether the account matches an inclusion/exclusion
// rule. A rule containing "-" is an inclusive range "A-B" compared
// numerically after prefix stripping; any other rule is an exact account
// token. lexical is true when a non-numeric account or bound forced the
// range comparison to fall back to string ordering.
func (a Account) MatchesRule(rule string) (matched, lexical bool) {
	rule = strings.TrimSpace(rule)
	if strings.Contains(rule, "-") {
		return a.inRange(rule)
	}
	return a.Normalized() == Account(rule).Normalized(), false
}

func (a Account) inRange(rangeRule string) (matched, lexical bool) {
	parts := strings.Split(rangeRule, "-")
	if len(parts) != 2 {
		return false, false
	}

	acct := a.Normalized()
	lo := Account(parts[0]).Normalized()
	hi := Account(parts[1]).Normalized()

	nAcct, errA := strconv.ParseInt(acct, 10, 64)
	nLo, errL := strconv.ParseInt(lo, 10, 64)
	nHi, errH := strconv.ParseInt(hi, 10, 64)
	if errA == nil && errL == nil && errH == nil {
		return nLo <= nAcct && nAcct <= nHi, false
	}

	return lo <= acct && acct <= hi, true
}
