package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/nextax/nextax/internal/cli"
	"github.com/nextax/nextax/internal/model"
	"github.com/nextax/nextax/internal/tax"
	"github.com/spf13/cobra"
)

const (
	periodCalendar = "calendar"
	periodCustom   = "custom"
)

type setupOptions struct {
	businessName string
	taxID        string
	taxType      string
	period       string
	start        string
	end          string
	year         int
}

func setupCmd() *cobra.Command {
	var opts setupOptions

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Save the business profile",
		Args:  cobra.NoArgs,
		Long: `Save the business name, tax ID, tax type and accounting period.

Without --business-name the profile is asked for interactively.

Examples:
  nextax setup --business-name "ร้านกาแฟดี" --tax-id 0105561234567 --tax-type sme
  nextax setup --business-name "Shop" --period custom --start 2025-04-01 --end 2026-03-31`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			if opts.businessName == "" {
				current, err := store.GetBusinessProfile(ctx)
				if err != nil {
					return fmt.Errorf("failed to load business profile: %w", err)
				}
				if err := askSetup(cmd, &opts, current); err != nil {
					return err
				}
			}

			profile, err := opts.profile()
			if err != nil {
				return err
			}
			if err := store.SaveBusinessProfile(ctx, profile); err != nil {
				return fmt.Errorf("failed to save business profile: %w", err)
			}

			outln(cmd, cli.FormatSuccess(fmt.Sprintf("Saved profile for %s", profile.BusinessName)))
			outf(cmd, "  Tax type: %s\n", profile.TaxType.Label())
			outf(cmd, "  Accounting period: %s to %s\n",
				profile.PeriodStart.Format(model.DateLayout), profile.PeriodEnd.Format(model.DateLayout))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.businessName, "business-name", "", "business name")
	cmd.Flags().StringVar(&opts.taxID, "tax-id", "", "13-digit taxpayer identification number")
	cmd.Flags().StringVar(&opts.taxType, "tax-type", string(tax.DefaultRegime), "tax type (personal, sme)")
	cmd.Flags().StringVar(&opts.period, "period", periodCalendar, "accounting period (calendar, custom)")
	cmd.Flags().StringVar(&opts.start, "start", "", "custom period start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.end, "end", "", "custom period end (YYYY-MM-DD)")
	cmd.Flags().IntVar(&opts.year, "year", time.Now().Year(), "calendar year of the accounting period")

	return cmd
}

func askSetup(cmd *cobra.Command, opts *setupOptions, current *model.BusinessProfile) error {
	ctx := cmd.Context()
	p := newPrompter(cmd)
	outln(cmd, cli.FormatTitle("Business profile"))

	var err error
	if opts.businessName, err = p.Ask(ctx, "Business name", current.BusinessName); err != nil {
		return err
	}
	if opts.taxID, err = p.Ask(ctx, "Tax ID (13 digits, optional)", current.TaxID); err != nil {
		return err
	}
	if opts.taxType, err = p.Choose(ctx, "Tax type", []string{string(tax.RegimePersonal), string(tax.RegimeSME)}, string(current.TaxType)); err != nil {
		return err
	}
	if opts.period, err = p.Choose(ctx, "Accounting period", []string{periodCalendar, periodCustom}, periodCalendar); err != nil {
		return err
	}

	if opts.period == periodCalendar {
		answer, err := p.Ask(ctx, "Year", strconv.Itoa(opts.year))
		if err != nil {
			return err
		}
		if opts.year, err = strconv.Atoi(answer); err != nil {
			return fmt.Errorf("invalid year %q", answer)
		}
		return nil
	}

	if opts.start, err = p.Ask(ctx, "Period start (YYYY-MM-DD)", formatOptionalDate(current.PeriodStart)); err != nil {
		return err
	}
	opts.end, err = p.Ask(ctx, "Period end (YYYY-MM-DD)", formatOptionalDate(current.PeriodEnd))
	return err
}

func formatOptionalDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(model.DateLayout)
}

func (o setupOptions) profile() (model.BusinessProfile, error) {
	regime, err := tax.ParseRegime(o.taxType)
	if err != nil {
		return model.BusinessProfile{}, err
	}

	profile := model.BusinessProfile{
		BusinessName: o.businessName,
		TaxID:        model.NormalizeTaxID(o.taxID),
		TaxType:      regime,
	}

	switch o.period {
	case periodCalendar:
		profile.PeriodStart, profile.PeriodEnd = model.CalendarYearPeriod(o.year)
	case periodCustom:
		if o.start == "" || o.end == "" {
			return model.BusinessProfile{}, fmt.Errorf("--start and --end are required for a custom period")
		}
		if profile.PeriodStart, err = model.ParseDate(o.start); err != nil {
			return model.BusinessProfile{}, err
		}
		if profile.PeriodEnd, err = model.ParseDate(o.end); err != nil {
			return model.BusinessProfile{}, err
		}
	default:
		return model.BusinessProfile{}, fmt.Errorf("invalid period %q: must be calendar or custom", o.period)
	}

	return profile, profile.Validate()
}
