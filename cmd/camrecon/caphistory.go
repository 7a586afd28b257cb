package main

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"github.com/camrecon/camrecon/internal/cli"
)

func capHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cap-history",
		Short: "Inspect recorded cap history",
		Long: `Show the recoverable amounts recorded for past reconciliation years.
These figures anchor next year's expense cap: a previous_year cap limits
the tenant to last year's amount grown by the cap percentage.`,
	}

	cmd.AddCommand(capHistoryListCmd())
	return cmd
}

func capHistoryListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cap history entries",
		RunE:  runCapHistoryList,
	}

	cmd.Flags().StringP("tenant", "t", "", "Only show entries for this tenant ID")
	return cmd
}

func runCapHistoryList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	tenantFilter, _ := cmd.Flags().GetString("tenant")

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	history, err := store.GetCapHistory(ctx)
	if err != nil {
		return fmt.Errorf("failed to load cap history: %w", err)
	}
	if len(history) == 0 {
		slog.Info("No cap history recorded")
		return nil
	}

	tenantIDs := make([]string, 0, len(history))
	for tenantID := range history {
		if tenantFilter != "" && tenantID != tenantFilter {
			continue
		}
		tenantIDs = append(tenantIDs, tenantID)
	}
	sort.Strings(tenantIDs)

	if len(tenantIDs) == 0 {
		slog.Info("No cap history for tenant", "tenant_id", tenantFilter)
		return nil
	}

	for _, tenantID := range tenantIDs {
		years := make([]string, 0, len(history[tenantID]))
		for year := range history[tenantID] {
			years = append(years, year)
		}
		sort.Strings(years)

		rows := make([][2]string, 0, len(years))
		for _, year := range years {
			rows = append(rows, [2]string{year, cli.FormatAmount(history[tenantID][year])})
		}
		fmt.Println(cli.RenderBox("Tenant "+tenantID, cli.RenderKeyValues(rows)))
	}
	return nil
}
