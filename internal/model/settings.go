package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AdminFeeBasis records which downstream totals the admin fee joins.
// Configured distinguishes an explicit setting from an absent one: the
// cap-exclusion split defaults an unconfigured fee to the cap-subject
// side, while the cap-base and base-year totals only absorb the fee
// when its token is explicitly present.
type AdminFeeBasis struct {
	Configured bool
	InCap      bool
	InBase     bool
}

// SubjectToCap reports whether the admin fee belongs on the cap-subject
// side of the exclusion split.
func (b AdminFeeBasis) SubjectToCap() bool {
	return !b.Configured || b.InCap
}

// ParseAdminFeeBasis interprets the admin_fee_in_cap_base setting. Word
// matching keeps "capital" from flipping the cap flag.
func ParseAdminFeeBasis(raw string) AdminFeeBasis {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return AdminFeeBasis{}
	}

	basis := AdminFeeBasis{Configured: true}
	for _, word := range strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '_' || r == '+' || r == '/'
	}) {
		switch word {
		case "cap":
			basis.InCap = true
		case "base":
			basis.InBase = true
		}
	}
	return basis
}

// CapSettings groups the cap-enforcement knobs of a resolved settings
// record. All fields keep the source document's string form; parsing
// happens at the point of use so a bad value degrades that one rule
// instead of failing the tenant.
type CapSettings struct {
	Percentage     string
	Type           string // previous_year or highest_previous_year
	OverrideYear   string
	OverrideAmount string
}

// Settings is the fully resolved configuration for one tenant run:
// portfolio defaults, property overrides, and tenant overrides already
// merged.
type Settings struct {
	PropertyID   string
	PropertyName string
	TotalRSF     string

	TenantID   string
	TenantName string
	Suite      string
	LeaseStart string
	LeaseEnd   string

	GLInclusions map[Category][]string
	GLExclusions map[Category][]string

	AdminFeePercentage string
	AdminFeeInCapBase  string
	AdminFeeBasis      AdminFeeBasis

	BaseYear       string
	BaseYearAmount string

	Cap         CapSettings
	MinIncrease string
	MaxIncrease string
	StopAmount  string

	SquareFootage      string
	ProrateShareMethod string // RSF, Fixed, or Custom
	FixedSharePct      string

	PropertyCapitalExpenses []CapitalExpenseItem
	TenantCapitalExpenses   []CapitalExpenseItem
}

// Inclusions returns the inclusion rules for a category, nil when none
// are configured.
func (s *Settings) Inclusions(c Category) []string {
	if s.GLInclusions == nil {
		return nil
	}
	return s.GLInclusions[c]
}

// Exclusions returns the exclusion rules for a category.
func (s *Settings) Exclusions(c Category) []string {
	if s.GLExclusions == nil {
		return nil
	}
	return s.GLExclusions[c]
}

// TenantInfo identifies one tenant discovered under a property.
type TenantInfo struct {
	ID   string
	Name string
}

// ParseDecimal parses a document numeric field. ok is false for empty or
// malformed values so callers can apply their own defaults.
func ParseDecimal(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
