package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nextax/nextax/internal/cli"
	"github.com/nextax/nextax/internal/model"
	"github.com/nextax/nextax/internal/tax"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "View and change stored settings",
	}

	cmd.AddCommand(getSettingCmd())
	cmd.AddCommand(setSettingCmd())
	cmd.AddCommand(showSettingsCmd())
	cmd.AddCommand(resetSettingsCmd())

	return cmd
}

func getSettingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			value, ok, err := store.GetSetting(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get setting: %w", err)
			}
			if !ok {
				return fmt.Errorf("setting %q is not set", args[0])
			}
			outln(cmd, value)
			return nil
		},
	}
}

// normalizeSetting validates values for keys with a known format.
func normalizeSetting(key, value string) (string, error) {
	switch key {
	case model.SettingTaxType:
		regime, err := tax.ParseRegime(value)
		if err != nil {
			return "", err
		}
		return string(regime), nil
	case model.SettingTaxID:
		id := model.NormalizeTaxID(value)
		if id != "" && len(id) != model.TaxIDLength {
			return "", fmt.Errorf("tax ID must have %d digits", model.TaxIDLength)
		}
		return id, nil
	case model.SettingAccountingPeriodStart, model.SettingAccountingPeriodEnd:
		d, err := model.ParseDate(value)
		if err != nil {
			return "", err
		}
		return d.Format(model.DateLayout), nil
	case model.SettingFirstRun:
		v := strings.ToLower(value)
		if v != "true" && v != "false" {
			return "", fmt.Errorf("first_run must be true or false")
		}
		return v, nil
	case model.SettingBusinessName:
		if strings.TrimSpace(value) == "" {
			return "", fmt.Errorf("business name cannot be empty")
		}
		return strings.TrimSpace(value), nil
	default:
		return value, nil
	}
}

func setSettingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			value, err := normalizeSetting(args[0], args[1])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			if err := store.SetSetting(ctx, args[0], value); err != nil {
				return fmt.Errorf("failed to save setting: %w", err)
			}
			outln(cmd, cli.FormatSuccess(fmt.Sprintf("%s = %s", args[0], value)))
			return nil
		},
	}
}

func showSettingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the business profile and all settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			firstRun, err := store.IsFirstRun(ctx)
			if err != nil {
				return err
			}
			if firstRun {
				outln(cmd, cli.FormatWarning("No business profile yet. Run 'nextax setup' first."))
			}

			settings, err := store.GetAllSettings(ctx)
			if err != nil {
				return fmt.Errorf("failed to load settings: %w", err)
			}

			keys := lo.Keys(settings)
			slices.Sort(keys)

			var b strings.Builder
			for _, key := range keys {
				fmt.Fprintf(&b, "%s %s\n", cli.SubtleStyle.Render(fmt.Sprintf("%-24s", key)), settings[key])
			}
			fmt.Fprintf(&b, "%s %s", cli.SubtleStyle.Render(fmt.Sprintf("%-24s", "database")), store.Path())

			outln(cmd, cli.RenderBox("Settings", b.String()))
			return nil
		},
	}
}

func resetSettingsCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore default settings",
		Args:  cobra.NoArgs,
		Long:  `Restore every setting to its default and mark setup as not done. A backup is taken first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			ok, err := confirm(cmd, force, "Reset all settings to defaults?")
			if err != nil {
				return err
			}
			if !ok {
				outln(cmd, cli.SubtleStyle.Render("Reset cancelled."))
				return nil
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			if err := autoBackup(ctx, store, "reset"); err != nil {
				return err
			}
			if err := store.ResetSettings(ctx); err != nil {
				return fmt.Errorf("failed to reset settings: %w", err)
			}

			outln(cmd, cli.FormatSuccess("Settings restored to defaults"))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}
