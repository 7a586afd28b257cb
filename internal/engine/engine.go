package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/camrecon/camrecon/internal/common"
	"github.com/camrecon/camrecon/internal/model"
	"github.com/camrecon/camrecon/internal/service"
)

// ReconciliationEngine orchestrates a property reconciliation run:
// settings resolution, GL classification, the calculation pipeline per
// tenant, and the deferred cap-history write-back.
type ReconciliationEngine struct {
	store    service.Store
	settings service.SettingsSource
	refs     service.TenantRefProvider
	progress func(done, total int)
}

// Config holds configuration options for the reconciliation engine.
type Config struct {
	// Progress is invoked after each tenant completes; nil disables
	// progress reporting.
	Progress func(done, total int)
}

// New creates a reconciliation engine with the given dependencies.
func New(store service.Store, settings service.SettingsSource, refs service.TenantRefProvider) *ReconciliationEngine {
	return NewWithConfig(store, settings, refs, Config{})
}

// NewWithConfig creates a reconciliation engine with custom configuration.
func NewWithConfig(store service.Store, settings service.SettingsSource, refs service.TenantRefProvider, config Config) *ReconciliationEngine {
	return &ReconciliationEngine{
		store:    store,
		settings: settings,
		refs:     refs,
		progress: config.Progress,
	}
}

// RunRequest describes one property reconciliation run.
type RunRequest struct {
	PropertyID    string
	ReconYear     int
	LastBilled    string // optional YYYYMM cutoff for catch-up periods
	TenantID      string // optional, restricts the run to one tenant
	Categories    []model.Category
	SkipCapUpdate bool
}

// FailedTenant records a tenant skipped by a run.
type FailedTenant struct {
	TenantID string
	Err      error
}

// RunResult is the outcome of one property reconciliation run.
type RunResult struct {
	PropertyID        string
	PropertyName      string
	ReconYear         int
	Categories        []model.Category
	Schedule          PeriodSchedule
	Tenants           []model.TenantBillingResult
	Failed            []FailedTenant
	CapHistoryUpdated bool
	Elapsed           time.Duration
}

// ProcessProperty reconciles every tenant of a property (or a single
// tenant when the request names one). A tenant failure is logged and
// recorded without aborting the run; cap history is written back once,
// after all tenants, unless the request skips it.
func (e *ReconciliationEngine) ProcessProperty(ctx context.Context, req RunRequest) (*RunResult, error) {
	started := time.Now()

	if req.PropertyID == "" {
		return nil, fmt.Errorf("%w: property id is required", common.ErrInvalidConfig)
	}
	if req.ReconYear <= 0 {
		return nil, fmt.Errorf("%w: reconciliation year %d", common.ErrInvalidConfig, req.ReconYear)
	}
	categories := req.Categories
	if len(categories) == 0 {
		categories = []model.Category{model.CategoryCAM, model.CategoryRET}
	}
	for _, c := range categories {
		if !model.ValidCategory(c) {
			return nil, fmt.Errorf("%w: unknown category %q", common.ErrInvalidConfig, c)
		}
	}

	schedule := CalculatePeriods(req.ReconYear, req.LastBilled)

	transactions, err := e.store.GetTransactions(ctx, req.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load GL transactions: %w", err)
	}
	if len(transactions) == 0 {
		common.LogWarn("no GL transactions for property", common.Fields{
			"property_id": req.PropertyID,
		})
	}

	history, err := e.store.GetCapHistory(ctx)
	if err != nil {
		// Missing or corrupt history means no caps apply, not a failure.
		common.LogError(err, "could not load cap history, starting empty", common.Fields{
			"property_id": req.PropertyID,
		})
		history = make(model.CapHistory)
	}

	propertySettings := e.settings.Resolve(req.PropertyID, "")
	propertyTotals := e.propertyTotals(transactions, propertySettings, schedule.Recon, categories)

	tenants := e.tenantList(req)
	result := &RunResult{
		PropertyID:   req.PropertyID,
		PropertyName: propertySettings.PropertyName,
		ReconYear:    req.ReconYear,
		Categories:   categories,
		Schedule:     schedule,
	}

	slog.Info("starting property reconciliation",
		"property_id", req.PropertyID,
		"recon_year", req.ReconYear,
		"tenants", len(tenants),
		"transactions", len(transactions),
		"catchup_periods", len(schedule.CatchUp))

	for i, tenant := range tenants {
		billing, tenantErr := e.processTenant(ctx, req, tenant.ID, schedule, transactions, history, categories)
		if tenantErr != nil {
			common.LogError(tenantErr, "tenant reconciliation failed, skipping", common.Fields{
				"property_id": req.PropertyID,
				"tenant_id":   tenant.ID,
			})
			result.Failed = append(result.Failed, FailedTenant{TenantID: tenant.ID, Err: tenantErr})
			continue
		}
		billing.PropertyCAMTotal = propertyTotals.CAMTotal
		billing.PropertyRETTotal = propertyTotals.RETTotal
		billing.PropertyAdminFee = propertyTotals.AdminFee
		result.Tenants = append(result.Tenants, *billing)

		if e.progress != nil {
			e.progress(i+1, len(tenants))
		}
	}

	if !req.SkipCapUpdate {
		e.recordCapHistory(history, result.Tenants, req.ReconYear)
		if err := e.store.SaveCapHistory(ctx, history); err != nil {
			common.LogError(err, "cap history write failed", common.Fields{
				"property_id": req.PropertyID,
			})
		} else {
			result.CapHistoryUpdated = true
		}
	}

	result.Elapsed = time.Since(started)
	slog.Info("property reconciliation complete",
		"property_id", req.PropertyID,
		"tenants_processed", len(result.Tenants),
		"tenants_failed", len(result.Failed),
		"cap_history_updated", result.CapHistoryUpdated,
		"elapsed", result.Elapsed)
	return result, nil
}

// processTenant runs the calculation pipeline for one tenant.
func (e *ReconciliationEngine) processTenant(ctx context.Context, req RunRequest, tenantID string, schedule PeriodSchedule, transactions []model.Transaction, history model.CapHistory, categories []model.Category) (*model.TenantBillingResult, error) {
	settings := e.settings.Resolve(req.PropertyID, tenantID)

	ApplyCapOverride(settings, history)

	// Expenses belong to the reconciliation year only; catch-up periods
	// replay the derived monthly amount and never pick up new GL lines.
	set := Classify(transactions, settings, schedule.Recon)

	agg := Aggregate(set, settings, categories)
	baseYear := AdjustBaseYear(req.ReconYear, agg, set, settings)
	cap := EnforceCap(req.ReconYear, baseYear.AfterAdjustment, agg.AdminFee, set, settings, history, categories)
	capEx := TotalCapitalExpenses(settings, req.ReconYear, schedule.Recon)

	override, err := e.store.GetOverride(ctx, tenantID, req.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("override lookup: %w", err)
	}

	oldMonthly, err := e.refs.OldMonthly(ctx, tenantID, req.PropertyID)
	if err != nil {
		common.LogWarn("tenant reference lookup failed, assuming no prior billing", common.Fields{
			"tenant_id": tenantID,
			"error":     err.Error(),
		})
		oldMonthly = decimal.Zero
	}

	result := &model.TenantBillingResult{
		PropertyID:   req.PropertyID,
		PropertyName: settings.PropertyName,
		TenantID:     tenantID,
		TenantName:   settings.TenantName,
		Suite:        settings.Suite,
		ReconYear:    req.ReconYear,
		Categories:   categories,

		CAMTotal:      agg.CAMTotal,
		RETTotal:      agg.RETTotal,
		AdminFeeBase:  agg.AdminFeeBase,
		AdminFee:      agg.AdminFee,
		CombinedTotal: agg.CombinedTotal,
		CapBaseTotal:  agg.CapBaseTotal,
		BaseYearTotal: baseYear.TotalBefore,

		BaseYearApplies:     baseYear.Applies,
		BaseYearDeduction:   baseYear.Deduction,
		AfterBaseAdjustment: baseYear.AfterAdjustment,

		Cap: cap,
	}

	AssembleBilling(result, settings, schedule, agg, override, capEx, oldMonthly)

	slog.Info("tenant reconciliation complete",
		"tenant_id", tenantID,
		"final_billing", result.FinalBilling.StringFixed(2),
		"outstanding", result.TotalOutstanding.StringFixed(2))
	return result, nil
}

// propertyTotals computes property-wide CAM/RET totals and admin fee
// from property-only settings, without tenant-level exclusions. Carried
// on each tenant result for reporting context.
func (e *ReconciliationEngine) propertyTotals(transactions []model.Transaction, propertySettings *model.Settings, periods []string, categories []model.Category) Aggregates {
	set := Classify(transactions, propertySettings, periods)
	return Aggregate(set, propertySettings, categories)
}

func (e *ReconciliationEngine) tenantList(req RunRequest) []model.TenantInfo {
	if req.TenantID != "" {
		return []model.TenantInfo{{ID: req.TenantID}}
	}
	return e.settings.Tenants(req.PropertyID)
}

// recordCapHistory upserts one entry per tenant for the reconciliation
// year, using the base billing before overrides so manual adjustments
// do not compound into future cap references.
func (e *ReconciliationEngine) recordCapHistory(history model.CapHistory, tenants []model.TenantBillingResult, reconYear int) {
	year := strconv.Itoa(reconYear)
	for _, tenant := range tenants {
		history.Set(tenant.TenantID, year, tenant.BaseBilling)
	}
}
