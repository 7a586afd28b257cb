package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/camrecon/camrecon/internal/cli"
	"github.com/camrecon/camrecon/internal/common"
	"github.com/camrecon/camrecon/internal/config"
	"github.com/camrecon/camrecon/internal/engine"
	"github.com/camrecon/camrecon/internal/model"
	"github.com/camrecon/camrecon/internal/settings"
	"github.com/camrecon/camrecon/internal/storage"
)

func reconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Run a property reconciliation",
		Long: `Reconcile CAM and real estate tax recoveries for a property.

Classifies the property's general-ledger lines for the reconciliation
year, applies each tenant's base year, expense cap, admin fee, and
occupancy proration, and reports the final billing including any
catch-up months since the last billing period.`,
		RunE: runReconcile,
	}

	// Flags
	cmd.Flags().StringP("property", "p", "", "Property ID to reconcile")
	cmd.Flags().IntP("year", "y", 0, "Reconciliation year")
	cmd.Flags().String("last-billed", "", "Last billed period (format: YYYYMM) for catch-up billing")
	cmd.Flags().StringP("tenant", "t", "", "Restrict the run to a single tenant ID")
	cmd.Flags().StringSlice("categories", []string{"cam", "ret"}, "Recovery categories to include (cam, ret)")
	cmd.Flags().Bool("skip-cap-update", false, "Do not write this run's results into cap history")

	// Bind to viper
	_ = viper.BindPFlag("reconcile.property", cmd.Flags().Lookup("property"))
	_ = viper.BindPFlag("reconcile.year", cmd.Flags().Lookup("year"))
	_ = viper.BindPFlag("reconcile.last_billed", cmd.Flags().Lookup("last-billed"))
	_ = viper.BindPFlag("reconcile.tenant", cmd.Flags().Lookup("tenant"))
	_ = viper.BindPFlag("reconcile.categories", cmd.Flags().Lookup("categories"))
	_ = viper.BindPFlag("reconcile.skip_cap_update", cmd.Flags().Lookup("skip-cap-update"))

	return cmd
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	propertyID := viper.GetString("reconcile.property")
	year := viper.GetInt("reconcile.year")

	// Interactive fallback when the required flags are omitted.
	reader := cli.NewReader(os.Stdin)
	if propertyID == "" {
		answer, err := reader.Prompt(ctx, os.Stderr, "Property ID")
		if err != nil {
			return err
		}
		propertyID = answer
	}
	if year == 0 {
		answer, err := reader.Prompt(ctx, os.Stderr, "Reconciliation year")
		if err != nil {
			return err
		}
		parsed, err := strconv.Atoi(answer)
		if err != nil {
			return fmt.Errorf("%w: reconciliation year %q", common.ErrInvalidConfig, answer)
		}
		year = parsed
	}

	categories := make([]model.Category, 0, 2)
	for _, raw := range viper.GetStringSlice("reconcile.categories") {
		categories = append(categories, model.Category(raw))
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	resolver := settings.NewResolver(config.DataDir())
	refs := storage.NewTenantRefCache(store)

	slog.Info(cli.FormatTitle(fmt.Sprintf("Reconciling property %s for %d", propertyID, year)))

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Reconciling tenants...[reset]"),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)

	eng := engine.NewWithConfig(store, resolver, refs, engine.Config{
		Progress: func(done, total int) {
			bar.ChangeMax(total)
			_ = bar.Set(done)
		},
	})

	result, err := eng.ProcessProperty(ctx, engine.RunRequest{
		PropertyID:    propertyID,
		ReconYear:     year,
		LastBilled:    viper.GetString("reconcile.last_billed"),
		TenantID:      viper.GetString("reconcile.tenant"),
		Categories:    categories,
		SkipCapUpdate: viper.GetBool("reconcile.skip_cap_update"),
	})
	if err != nil {
		return err
	}
	_ = bar.Finish()

	displayRunResult(result)

	if len(result.Tenants) == 0 && len(result.Failed) > 0 {
		return fmt.Errorf("%w: all %d tenants failed", common.ErrTenantFailed, len(result.Failed))
	}
	return nil
}

func displayRunResult(result *engine.RunResult) {
	for i := range result.Tenants {
		fmt.Println(renderTenantSummary(&result.Tenants[i]))
	}

	for _, failed := range result.Failed {
		slog.Warn(cli.FormatWarning(fmt.Sprintf("tenant %s failed: %v", failed.TenantID, failed.Err)))
	}

	rows := [][2]string{
		{"Property", fmt.Sprintf("%s (%s)", result.PropertyName, result.PropertyID)},
		{"Recon year", strconv.Itoa(result.ReconYear)},
		{"Recon periods", strconv.Itoa(len(result.Schedule.Recon))},
		{"Catch-up periods", strconv.Itoa(len(result.Schedule.CatchUp))},
		{"Tenants reconciled", strconv.Itoa(len(result.Tenants))},
		{"Tenants failed", strconv.Itoa(len(result.Failed))},
		{"Cap history updated", strconv.FormatBool(result.CapHistoryUpdated)},
		{"Elapsed", result.Elapsed.Round(1e6).String()},
	}
	fmt.Println(cli.RenderBox(cli.LedgerIcon+" Run summary", cli.RenderKeyValues(rows)))
}

func renderTenantSummary(tenant *model.TenantBillingResult) string {
	rows := [][2]string{
		{"Suite", tenant.Suite},
		{"Share", tenant.SharePercentage.Mul(hundred).StringFixed(4) + "% (" + tenant.ShareMethod + ")"},
		{"CAM total", cli.FormatAmount(tenant.CAMTotal)},
		{"RET total", cli.FormatAmount(tenant.RETTotal)},
		{"Admin fee", cli.FormatAmount(tenant.AdminFee)},
	}

	if tenant.BaseYearApplies {
		rows = append(rows, [2]string{"Base year deduction", cli.FormatAmount(tenant.BaseYearDeduction)})
	}
	if tenant.Cap.Applies {
		capValue := cli.FormatAmount(tenant.Cap.EffectiveLimit)
		if tenant.Cap.Limited {
			capValue += " (limited)"
		}
		rows = append(rows, [2]string{"Cap limit", capValue})
	}
	if !tenant.CapitalExpenses.IsZero() {
		rows = append(rows, [2]string{"Capital expenses", cli.FormatAmount(tenant.CapitalExpenses)})
	}
	if !tenant.OverrideAmount.IsZero() {
		rows = append(rows, [2]string{"Override", cli.FormatAmount(tenant.OverrideAmount)})
	}

	rows = append(rows,
		[2]string{"Final billing", cli.FormatAmount(tenant.FinalBilling)},
		[2]string{"Outstanding", cli.FormatAmount(tenant.TotalOutstanding)},
		[2]string{"New monthly", cli.FormatAmount(tenant.Payment.NewMonthly) + " (" + string(tenant.Payment.ChangeType) + ")"},
	)

	title := tenant.TenantName
	if title == "" {
		title = "Tenant " + tenant.TenantID
	}
	return cli.RenderBox(title, cli.RenderKeyValues(rows))
}
