package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/camrecon/camrecon/internal/cli"
	"github.com/camrecon/camrecon/internal/feed"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import legacy JSON feeds into the database",
		Long: `Import the JSON exports that seed reconciliation: the GL master feed
with each property's general-ledger lines, and the tenant CAM feed with
previously billed monthly amounts. Imports are deduplicated, so
re-running on the same file is safe.`,
	}

	cmd.AddCommand(importGLCmd())
	cmd.AddCommand(importTenantsCmd())
	cmd.AddCommand(importOverridesCmd())
	return cmd
}

func importGLCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gl <file>",
		Short: "Import a GL master feed",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportGL,
	}

	cmd.Flags().StringP("property", "p", "", "Only import lines for this property ID")
	cmd.Flags().Bool("dry-run", false, "Parse and report without saving")

	_ = viper.BindPFlag("import.property", cmd.Flags().Lookup("property"))
	_ = viper.BindPFlag("import.dry_run", cmd.Flags().Lookup("dry-run"))

	return cmd
}

func runImportGL(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open GL feed: %w", err)
	}
	defer func() { _ = file.Close() }()

	slog.Info(cli.FormatTitle("Importing GL feed"))
	transactions, err := feed.NewParser().ParseGL(ctx, file, viper.GetString("import.property"))
	if err != nil {
		return err
	}
	slog.Info(cli.FormatSuccess(fmt.Sprintf("Parsed %d GL lines", len(transactions))))

	if viper.GetBool("import.dry_run") {
		slog.Info(cli.FormatWarning("Dry run mode - not saving to database"))
		return nil
	}
	if len(transactions) == 0 {
		slog.Warn(cli.FormatWarning("Nothing to import"))
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.SaveTransactions(ctx, transactions); err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf("Imported %d GL lines", len(transactions))))
	return nil
}

func importTenantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenants <file>",
		Short: "Import a tenant CAM reference feed",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportTenants,
	}

	cmd.Flags().Bool("dry-run", false, "Parse and report without saving")
	_ = viper.BindPFlag("import.tenants_dry_run", cmd.Flags().Lookup("dry-run"))

	return cmd
}

func runImportTenants(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open tenant feed: %w", err)
	}
	defer func() { _ = file.Close() }()

	slog.Info(cli.FormatTitle("Importing tenant CAM feed"))
	refs, err := feed.NewParser().ParseTenantRefs(ctx, file)
	if err != nil {
		return err
	}
	slog.Info(cli.FormatSuccess(fmt.Sprintf("Parsed %d tenant records", len(refs))))

	if viper.GetBool("import.tenants_dry_run") {
		slog.Info(cli.FormatWarning("Dry run mode - not saving to database"))
		return nil
	}
	if len(refs) == 0 {
		slog.Warn(cli.FormatWarning("Nothing to import"))
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	for _, ref := range refs {
		if err := store.SaveTenantRef(ctx, ref); err != nil {
			return fmt.Errorf("failed to save tenant ref %s: %w", ref.TenantID, err)
		}
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf("Imported %d tenant records", len(refs))))
	return nil
}

func importOverridesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "overrides <file>",
		Short: "Import a custom overrides feed",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportOverrides,
	}

	cmd.Flags().Bool("dry-run", false, "Parse and report without saving")
	_ = viper.BindPFlag("import.overrides_dry_run", cmd.Flags().Lookup("dry-run"))

	return cmd
}

func runImportOverrides(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open overrides feed: %w", err)
	}
	defer func() { _ = file.Close() }()

	slog.Info(cli.FormatTitle("Importing custom overrides"))
	overrides, err := feed.NewParser().ParseOverrides(ctx, file)
	if err != nil {
		return err
	}
	slog.Info(cli.FormatSuccess(fmt.Sprintf("Parsed %d overrides", len(overrides))))

	if viper.GetBool("import.overrides_dry_run") {
		slog.Info(cli.FormatWarning("Dry run mode - not saving to database"))
		return nil
	}
	if len(overrides) == 0 {
		slog.Warn(cli.FormatWarning("Nothing to import"))
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	for _, override := range overrides {
		if err := store.SaveOverride(ctx, override); err != nil {
			return fmt.Errorf("failed to save override for tenant %s: %w", override.TenantID, err)
		}
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf("Imported %d overrides", len(overrides))))
	return nil
}
