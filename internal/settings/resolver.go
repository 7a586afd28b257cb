package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/camrecon/camrecon/internal/common"
	"github.com/camrecon/camrecon/internal/model"
)

// Resolver loads and merges the three settings layers from a data
// directory laid out as:
//
//	portfolio.json
//	properties/<propertyID>/property.json
//	properties/<propertyID>/tenants/<...tenantID>.json
type Resolver struct {
	dataDir string
}

// NewResolver creates a Resolver rooted at dataDir.
func NewResolver(dataDir string) *Resolver {
	return &Resolver{dataDir: dataDir}
}

// Resolve merges portfolio, property, and optional tenant settings into
// one effective record. Missing or malformed documents fall back to
// empty defaults with a warning; resolution itself never fails.
func (r *Resolver) Resolve(propertyID, tenantID string) *model.Settings {
	portfolio := r.loadPortfolio()
	property := r.loadProperty(propertyID)

	resolved := &model.Settings{
		PropertyID:   propertyID,
		PropertyName: property.Name,
		TotalRSF:     property.TotalRSF.String(),

		GLInclusions: copyRules(portfolio.Settings.GLInclusions),
		GLExclusions: copyRules(portfolio.Settings.GLExclusions),
	}
	if resolved.PropertyName == "" {
		resolved.PropertyName = "Property " + propertyID
	}
	for _, item := range property.CapitalExpenses {
		resolved.PropertyCapitalExpenses = append(resolved.PropertyCapitalExpenses, item.toModel())
	}

	applyScalars(resolved, portfolio.Settings)

	// Property inclusions replace a portfolio category only when the
	// property explicitly supplies a non-empty list; exclusions replace
	// whenever the category key is present, empty included.
	for category, rules := range property.Settings.GLInclusions {
		if len(rules) > 0 {
			resolved.GLInclusions[model.Category(category)] = append([]string(nil), rules...)
		}
	}
	for category, rules := range property.Settings.GLExclusions {
		resolved.GLExclusions[model.Category(category)] = append([]string(nil), rules...)
	}
	applyScalars(resolved, property.Settings)

	if tenantID != "" {
		tenant, found := r.loadTenant(propertyID, tenantID)
		if found {
			// Tenant rule lists override whenever present, empty
			// included: an explicit "include nothing" must win.
			for category, rules := range tenant.Settings.GLInclusions {
				resolved.GLInclusions[model.Category(category)] = append([]string(nil), rules...)
			}
			for category, rules := range tenant.Settings.GLExclusions {
				resolved.GLExclusions[model.Category(category)] = append([]string(nil), rules...)
			}
			applyScalars(resolved, tenant.Settings)

			resolved.TenantID = tenant.TenantID.String()
			resolved.TenantName = tenant.Name
			resolved.Suite = tenant.Suite.String()
			resolved.LeaseStart = strings.TrimSpace(tenant.LeaseStart)
			resolved.LeaseEnd = strings.TrimSpace(tenant.LeaseEnd)
			for _, item := range tenant.CapitalExpenses {
				resolved.TenantCapitalExpenses = append(resolved.TenantCapitalExpenses, item.toModel())
			}
		}
		if resolved.TenantID == "" {
			resolved.TenantID = tenantID
		}
	}

	if resolved.ProrateShareMethod == "" {
		resolved.ProrateShareMethod = "RSF"
	}
	if resolved.Cap.Type == "" {
		resolved.Cap.Type = "previous_year"
	}
	resolved.AdminFeeBasis = model.ParseAdminFeeBasis(resolved.AdminFeeInCapBase)

	return resolved
}

// Tenants enumerates every tenant with a settings document under the
// property, sorted by tenant id.
func (r *Resolver) Tenants(propertyID string) []model.TenantInfo {
	dir := filepath.Join(r.dataDir, "properties", propertyID, "tenants")
	entries, err := os.ReadDir(dir)
	if err != nil {
		common.LogWarn("tenant settings directory not found", common.Fields{
			"property_id": propertyID,
			"dir":         dir,
		})
		return nil
	}

	var tenants []model.TenantInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		var doc TenantDoc
		if err := readJSON(filepath.Join(dir, entry.Name()), &doc); err != nil {
			common.LogWarn("skipping unreadable tenant document", common.Fields{
				"file":  entry.Name(),
				"error": err.Error(),
			})
			continue
		}
		if id := doc.TenantID.String(); id != "" {
			tenants = append(tenants, model.TenantInfo{ID: id, Name: doc.Name})
		}
	}
	sort.Slice(tenants, func(i, j int) bool { return tenants[i].ID < tenants[j].ID })
	return tenants
}

func (r *Resolver) loadPortfolio() PortfolioDoc {
	var doc PortfolioDoc
	path := filepath.Join(r.dataDir, "portfolio.json")
	if err := readJSON(path, &doc); err != nil {
		common.LogWarn("could not load portfolio settings, using empty default", common.Fields{
			"path":  path,
			"error": err.Error(),
		})
		return PortfolioDoc{Name: "Default Portfolio"}
	}
	return doc
}

func (r *Resolver) loadProperty(propertyID string) PropertyDoc {
	var doc PropertyDoc
	path := filepath.Join(r.dataDir, "properties", propertyID, "property.json")
	if err := readJSON(path, &doc); err != nil {
		common.LogWarn("could not load property settings, using empty default", common.Fields{
			"property_id": propertyID,
			"error":       err.Error(),
		})
		return PropertyDoc{}
	}
	return doc
}

// loadTenant finds the tenant document whose filename ends with
// "<tenantID>.json"; exported source files often carry a name prefix.
func (r *Resolver) loadTenant(propertyID, tenantID string) (TenantDoc, bool) {
	dir := filepath.Join(r.dataDir, "properties", propertyID, "tenants")
	entries, err := os.ReadDir(dir)
	if err != nil {
		common.LogWarn("tenant settings directory not found", common.Fields{
			"property_id": propertyID,
			"tenant_id":   tenantID,
		})
		return TenantDoc{}, false
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), tenantID+".json") {
			continue
		}
		var doc TenantDoc
		if err := readJSON(filepath.Join(dir, entry.Name()), &doc); err != nil {
			common.LogWarn("could not load tenant settings", common.Fields{
				"tenant_id": tenantID,
				"file":      entry.Name(),
				"error":     err.Error(),
			})
			return TenantDoc{}, false
		}
		return doc, true
	}

	common.LogWarn("no tenant settings document found", common.Fields{
		"property_id": propertyID,
		"tenant_id":   tenantID,
	})
	return TenantDoc{}, false
}

// applyScalars overlays the non-empty scalar fields of a settings block.
func applyScalars(dst *model.Settings, src settingsBlock) {
	override(&dst.SquareFootage, src.SquareFootage.String())
	override(&dst.ProrateShareMethod, strings.TrimSpace(src.ProrateShareMethod))
	override(&dst.FixedSharePct, src.FixedPYCShare.String())
	override(&dst.AdminFeePercentage, src.AdminFeePercentage.String())
	override(&dst.AdminFeeInCapBase, strings.TrimSpace(src.AdminFeeInCapBase))
	override(&dst.BaseYear, src.BaseYear.String())
	override(&dst.BaseYearAmount, src.BaseYearAmount.String())
	override(&dst.MinIncrease, src.MinIncrease.String())
	override(&dst.MaxIncrease, src.MaxIncrease.String())
	override(&dst.StopAmount, src.StopAmount.String())

	override(&dst.Cap.Percentage, src.CapSettings.CapPercentage.String())
	override(&dst.Cap.Type, strings.TrimSpace(src.CapSettings.CapType))
	override(&dst.Cap.OverrideYear, src.CapSettings.OverrideCapYear.String())
	override(&dst.Cap.OverrideAmount, src.CapSettings.OverrideCapAmount.String())
}

func override(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

func copyRules(src map[string][]string) map[model.Category][]string {
	dst := make(map[model.Category][]string, len(src))
	for category, rules := range src {
		dst[model.Category(category)] = append([]string(nil), rules...)
	}
	return dst
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
