// Package settings loads the hierarchical configuration documents
// (portfolio, property, tenant) and resolves them into one effective
// settings record per tenant.
package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/camrecon/camrecon/internal/model"
)

// FlexString decodes a JSON string or number into a string. The source
// documents are converted from spreadsheet exports, so numeric fields
// arrive in either form.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("value is neither string nor number: %w", err)
	}
	*f = FlexString(n.String())
	return nil
}

// String returns the trimmed value.
func (f FlexString) String() string {
	return strings.TrimSpace(string(f))
}

// capitalExpenseDoc mirrors one capital_expenses entry on disk.
type capitalExpenseDoc struct {
	ID          FlexString `json:"id"`
	Description string     `json:"description"`
	Year        FlexString `json:"year"`
	Amount      FlexString `json:"amount"`
	AmortYears  FlexString `json:"amort_years"`
}

func (d capitalExpenseDoc) toModel() model.CapitalExpenseItem {
	return model.CapitalExpenseItem{
		ID:          d.ID.String(),
		Description: strings.TrimSpace(d.Description),
		Year:        d.Year.String(),
		Amount:      d.Amount.String(),
		AmortYears:  d.AmortYears.String(),
	}
}

// capBlock mirrors the nested cap_settings object.
type capBlock struct {
	CapPercentage     FlexString `json:"cap_percentage"`
	CapType           string     `json:"cap_type"`
	OverrideCapYear   FlexString `json:"override_cap_year"`
	OverrideCapAmount FlexString `json:"override_cap_amount"`
}

// settingsBlock mirrors the shared "settings" object present at every
// level of the hierarchy. Inclusion/exclusion maps stay maps so an
// explicitly supplied empty category is distinguishable from an absent
// one during merging.
type settingsBlock struct {
	GLInclusions map[string][]string `json:"gl_inclusions"`
	GLExclusions map[string][]string `json:"gl_exclusions"`

	SquareFootage      FlexString `json:"square_footage"`
	ProrateShareMethod string     `json:"prorate_share_method"`
	FixedPYCShare      FlexString `json:"fixed_pyc_share"`

	AdminFeePercentage FlexString `json:"admin_fee_percentage"`
	AdminFeeInCapBase  string     `json:"admin_fee_in_cap_base"`

	BaseYear       FlexString `json:"base_year"`
	BaseYearAmount FlexString `json:"base_year_amount"`

	MinIncrease FlexString `json:"min_increase"`
	MaxIncrease FlexString `json:"max_increase"`
	StopAmount  FlexString `json:"stop_amount"`

	CapSettings capBlock `json:"cap_settings"`
}

// PortfolioDoc is the portfolio-level document.
type PortfolioDoc struct {
	Name     string        `json:"name"`
	Settings settingsBlock `json:"settings"`
}

// PropertyDoc is the property-level document.
type PropertyDoc struct {
	PropertyID      FlexString          `json:"property_id"`
	Name            string              `json:"name"`
	TotalRSF        FlexString          `json:"total_rsf"`
	CapitalExpenses []capitalExpenseDoc `json:"capital_expenses"`
	Settings        settingsBlock       `json:"settings"`
}

// TenantDoc is the tenant-level document.
type TenantDoc struct {
	TenantID        FlexString          `json:"tenant_id"`
	Name            string              `json:"name"`
	Suite           FlexString          `json:"suite"`
	LeaseStart      string              `json:"lease_start"`
	LeaseEnd        string              `json:"lease_end"`
	CapitalExpenses []capitalExpenseDoc `json:"capital_expenses"`
	Settings        settingsBlock       `json:"settings"`
}
