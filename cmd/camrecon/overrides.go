package main

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/camrecon/camrecon/internal/cli"
	"github.com/camrecon/camrecon/internal/common"
	"github.com/camrecon/camrecon/internal/model"
)

func overridesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "overrides",
		Short: "Manage manual billing overrides",
		Long: `Manage the manual dollar adjustments applied on top of a tenant's
calculated billing. An override is added to the final amount after the
base year, cap, and admin fee calculations.`,
	}

	cmd.AddCommand(overridesSetCmd())
	cmd.AddCommand(overridesListCmd())
	return cmd
}

func overridesSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <tenant-id> <property-id> <amount>",
		Short: "Set the override for a tenant",
		Args:  cobra.ExactArgs(3),
		RunE:  runOverridesSet,
	}

	cmd.Flags().StringP("description", "d", "", "Reason for the adjustment")
	return cmd
}

func runOverridesSet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	amount, err := decimal.NewFromString(args[2])
	if err != nil {
		return fmt.Errorf("%w: override amount %q", common.ErrInvalidConfig, args[2])
	}
	description, _ := cmd.Flags().GetString("description")

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	override := model.Override{
		TenantID:    args[0],
		PropertyID:  args[1],
		Amount:      amount,
		Description: description,
	}
	if err := store.SaveOverride(ctx, override); err != nil {
		return fmt.Errorf("failed to save override: %w", err)
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf("Override for tenant %s set to %s",
		override.TenantID, cli.FormatAmount(override.Amount))))
	return nil
}

func overridesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all stored overrides",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = store.Close() }()

			overrides, err := store.GetAllOverrides(ctx)
			if err != nil {
				return fmt.Errorf("failed to load overrides: %w", err)
			}
			if len(overrides) == 0 {
				slog.Info("No overrides stored")
				return nil
			}

			rows := make([][2]string, 0, len(overrides))
			for _, override := range overrides {
				label := fmt.Sprintf("%s / %s", override.PropertyID, override.TenantID)
				value := cli.FormatAmount(override.Amount)
				if override.Description != "" {
					value += "  " + cli.SubtleStyle.Render(override.Description)
				}
				rows = append(rows, [2]string{label, value})
			}
			fmt.Println(cli.RenderBox("Billing overrides", cli.RenderKeyValues(rows)))
			return nil
		},
	}
}
