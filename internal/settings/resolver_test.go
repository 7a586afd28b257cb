package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camrecon/camrecon/internal/model"
)

func writeDoc(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFlexString(t *testing.T) {
	var doc struct {
		A FlexString `json:"a"`
		B FlexString `json:"b"`
		C FlexString `json:"c"`
		D FlexString `json:"d"`
	}
	input := `{"a": "2000", "b": 2000, "c": 12.5, "d": null}`
	require.NoError(t, json.Unmarshal([]byte(input), &doc))

	assert.Equal(t, "2000", doc.A.String())
	assert.Equal(t, "2000", doc.B.String())
	assert.Equal(t, "12.5", doc.C.String())
	assert.Equal(t, "", doc.D.String())

	assert.Error(t, json.Unmarshal([]byte(`{"a": ["nope"]}`), &doc))
}

func TestResolve_MissingDocuments(t *testing.T) {
	r := NewResolver(t.TempDir())

	resolved := r.Resolve("P100", "1001")
	assert.Equal(t, "P100", resolved.PropertyID)
	assert.Equal(t, "Property P100", resolved.PropertyName)
	assert.Equal(t, "1001", resolved.TenantID)
	assert.Equal(t, "RSF", resolved.ProrateShareMethod)
	assert.Equal(t, "previous_year", resolved.Cap.Type)
	assert.False(t, resolved.AdminFeeBasis.Configured)
}

func TestResolve_LayeredMerge(t *testing.T) {
	dir := t.TempDir()

	writeDoc(t, filepath.Join(dir, "portfolio.json"), `{
		"name": "Portfolio",
		"settings": {
			"gl_inclusions": {
				"cam": ["510000-519999"],
				"ret": ["520000"]
			},
			"gl_exclusions": {
				"cam": ["515000"]
			},
			"admin_fee_percentage": 15,
			"prorate_share_method": "RSF"
		}
	}`)
	writeDoc(t, filepath.Join(dir, "properties", "P100", "property.json"), `{
		"property_id": "P100",
		"name": "Gateway Plaza",
		"total_rsf": 10000,
		"settings": {
			"gl_inclusions": {
				"cam": [],
				"ret": ["520000", "521000"]
			},
			"gl_exclusions": {
				"cam": []
			},
			"admin_fee_in_cap_base": "cap"
		}
	}`)
	writeDoc(t, filepath.Join(dir, "properties", "P100", "tenants", "Acme 1001.json"), `{
		"tenant_id": "1001",
		"name": "Acme Retail",
		"suite": "101",
		"lease_start": "2020-04-01",
		"settings": {
			"square_footage": 2000,
			"gl_exclusions": {
				"cap": ["518000"]
			},
			"cap_settings": {"cap_percentage": 0.05, "cap_type": "highest_previous_year"}
		}
	}`)

	r := NewResolver(dir)
	resolved := r.Resolve("P100", "1001")

	assert.Equal(t, "Gateway Plaza", resolved.PropertyName)
	assert.Equal(t, "10000", resolved.TotalRSF)
	assert.Equal(t, "Acme Retail", resolved.TenantName)
	assert.Equal(t, "101", resolved.Suite)
	assert.Equal(t, "2020-04-01", resolved.LeaseStart)
	assert.Equal(t, "2000", resolved.SquareFootage)

	// An empty property inclusion list leaves the portfolio list alone;
	// a non-empty one replaces it wholesale.
	assert.Equal(t, []string{"510000-519999"}, resolved.Inclusions(model.CategoryCAM))
	assert.Equal(t, []string{"520000", "521000"}, resolved.Inclusions(model.CategoryRET))

	// Property exclusions replace whenever the key is present, even
	// when empty.
	assert.Empty(t, resolved.Exclusions(model.CategoryCAM))
	assert.Equal(t, []string{"518000"}, resolved.Exclusions(model.CategoryCap))

	// Scalars survive from lower layers unless overridden.
	assert.Equal(t, "15", resolved.AdminFeePercentage)
	assert.Equal(t, "0.05", resolved.Cap.Percentage)
	assert.Equal(t, "highest_previous_year", resolved.Cap.Type)

	assert.True(t, resolved.AdminFeeBasis.Configured)
	assert.True(t, resolved.AdminFeeBasis.InCap)
	assert.False(t, resolved.AdminFeeBasis.InBase)
}

func TestResolve_TenantEmptyInclusionsWin(t *testing.T) {
	dir := t.TempDir()

	writeDoc(t, filepath.Join(dir, "portfolio.json"), `{
		"settings": {"gl_inclusions": {"cam": ["510000-519999"]}}
	}`)
	writeDoc(t, filepath.Join(dir, "properties", "P100", "tenants", "1001.json"), `{
		"tenant_id": "1001",
		"name": "Acme Retail",
		"settings": {"gl_inclusions": {"cam": []}}
	}`)

	resolved := NewResolver(dir).Resolve("P100", "1001")

	// An explicit empty tenant list means "include nothing", which with
	// empty-matches-all inclusion semantics reads as match-all.
	rules, present := resolved.GLInclusions[model.CategoryCAM]
	assert.True(t, present)
	assert.Empty(t, rules)
}

func TestResolve_PropertyOnly(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, filepath.Join(dir, "properties", "P100", "property.json"), `{
		"property_id": "P100",
		"name": "Gateway Plaza",
		"total_rsf": "10000"
	}`)

	resolved := NewResolver(dir).Resolve("P100", "")
	assert.Equal(t, "Gateway Plaza", resolved.PropertyName)
	assert.Empty(t, resolved.TenantID)
}

func TestResolve_CapitalExpenses(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, filepath.Join(dir, "properties", "P100", "property.json"), `{
		"property_id": "P100",
		"capital_expenses": [
			{"id": "roof", "description": "Roof", "year": 2022, "amount": 50000, "amort_years": 5}
		]
	}`)
	writeDoc(t, filepath.Join(dir, "properties", "P100", "tenants", "1001.json"), `{
		"tenant_id": "1001",
		"capital_expenses": [
			{"id": "roof", "description": "Roof", "year": "2022", "amount": "25000", "amort_years": "5"}
		]
	}`)

	resolved := NewResolver(dir).Resolve("P100", "1001")
	require.Len(t, resolved.PropertyCapitalExpenses, 1)
	assert.Equal(t, "50000", resolved.PropertyCapitalExpenses[0].Amount)
	require.Len(t, resolved.TenantCapitalExpenses, 1)
	assert.Equal(t, "25000", resolved.TenantCapitalExpenses[0].Amount)
	assert.Equal(t, "5", resolved.TenantCapitalExpenses[0].AmortYears)
}

func TestTenants(t *testing.T) {
	dir := t.TempDir()
	tenantsDir := filepath.Join(dir, "properties", "P100", "tenants")
	writeDoc(t, filepath.Join(tenantsDir, "North Books 1002.json"), `{"tenant_id": "1002", "name": "North Books"}`)
	writeDoc(t, filepath.Join(tenantsDir, "Acme 1001.json"), `{"tenant_id": 1001, "name": "Acme Retail"}`)
	writeDoc(t, filepath.Join(tenantsDir, "broken.json"), `{not json`)
	writeDoc(t, filepath.Join(tenantsDir, "notes.txt"), `ignored`)

	tenants := NewResolver(dir).Tenants("P100")
	require.Len(t, tenants, 2)
	assert.Equal(t, model.TenantInfo{ID: "1001", Name: "Acme Retail"}, tenants[0])
	assert.Equal(t, model.TenantInfo{ID: "1002", Name: "North Books"}, tenants[1])
}

func TestTenants_MissingDirectory(t *testing.T) {
	assert.Nil(t, NewResolver(t.TempDir()).Tenants("P100"))
}
