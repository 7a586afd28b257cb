package model

import "github.com/shopspring/decimal"

// CapResult is the cap-enforcement breakdown for one tenant.
type CapResult struct {
	Applies            bool
	ReferenceAmount    decimal.Decimal
	CapPercentage      decimal.Decimal
	CapType            string
	StandardLimit      decimal.Decimal
	EffectiveLimit     decimal.Decimal
	MinIncreaseApplied bool
	MaxIncreaseApplied bool
	StopAmountApplied  bool

	SubjectAmount  decimal.Decimal
	ExcludedAmount decimal.Decimal
	CappedSubject  decimal.Decimal
	FinalAmount    decimal.Decimal
	Limited        bool
}

// PaymentChangeType classifies the move from a tenant's old monthly
// billing to the new one.
type PaymentChangeType string

const (
	PaymentNoChange     PaymentChangeType = "no_change"
	PaymentFirstBilling PaymentChangeType = "first_billing"
	PaymentIncrease     PaymentChangeType = "increase"
	PaymentDecrease     PaymentChangeType = "decrease"
)

// PaymentChange compares a tenant's previously billed monthly amount to
// the amount implied by the new annual figure.
type PaymentChange struct {
	OldMonthly    decimal.Decimal
	NewMonthly    decimal.Decimal
	PercentChange decimal.Decimal
	ChangeType    PaymentChangeType
	Significant   bool
}

// BillingSegment is one half of the recon/catch-up split.
type BillingSegment struct {
	Periods     []string
	Base        decimal.Decimal
	Override    decimal.Decimal
	Final       decimal.Decimal
	Paid        decimal.Decimal
	Outstanding decimal.Decimal
}

// TenantBillingResult is the terminal per-tenant aggregate. Assembled
// once per run and never mutated afterwards; report writers consume it
// as-is.
type TenantBillingResult struct {
	PropertyID   string
	PropertyName string
	TenantID     string
	TenantName   string
	Suite        string
	ReconYear    int
	Categories   []Category

	ShareMethod     string
	SharePercentage decimal.Decimal

	CAMTotal      decimal.Decimal
	RETTotal      decimal.Decimal
	AdminFeeBase  decimal.Decimal
	AdminFee      decimal.Decimal
	CombinedTotal decimal.Decimal
	CapBaseTotal  decimal.Decimal
	BaseYearTotal decimal.Decimal

	BaseYearApplies     bool
	BaseYearDeduction   decimal.Decimal
	AfterBaseAdjustment decimal.Decimal

	Cap CapResult

	OccupancyFactors map[string]decimal.Decimal
	AverageOccupancy decimal.Decimal
	CapitalExpenses  decimal.Decimal

	TenantShare         decimal.Decimal
	OverrideAmount      decimal.Decimal
	OverrideDescription string

	BaseBilling  decimal.Decimal // before override
	FinalBilling decimal.Decimal

	Recon            BillingSegment
	CatchUp          BillingSegment
	TotalPaid        decimal.Decimal
	TotalOutstanding decimal.Decimal

	Payment PaymentChange

	// Property-wide totals computed without tenant-level exclusions,
	// carried for reporting context.
	PropertyCAMTotal decimal.Decimal
	PropertyRETTotal decimal.Decimal
	PropertyAdminFee decimal.Decimal

	Warnings []string
}

// Override is a manual dollar adjustment for a tenant/property pair.
// A zero amount is treated as no override.
type Override struct {
	TenantID    string
	PropertyID  string
	Amount      decimal.Decimal
	Description string
}

// TenantRef is a tenant's prior-billing reference record.
type TenantRef struct {
	TenantID   string
	PropertyID string
	TenantName string
	OldMonthly decimal.Decimal
}

// CapHistory maps tenant id to year to the recorded recoverable amount.
type CapHistory map[string]map[string]decimal.Decimal

// Amount returns the recorded amount for a tenant/year, false if absent.
func (h CapHistory) Amount(tenantID, year string) (decimal.Decimal, bool) {
	years, ok := h[tenantID]
	if !ok {
		return decimal.Zero, false
	}
	amount, ok := years[year]
	return amount, ok
}

// Set records an amount, creating the tenant map as needed.
func (h CapHistory) Set(tenantID, year string, amount decimal.Decimal) {
	if h[tenantID] == nil {
		h[tenantID] = make(map[string]decimal.Decimal)
	}
	h[tenantID][year] = amount
}
