package main

import (
	"fmt"
	"time"

	"github.com/nextax/nextax/internal/cli"
	"github.com/nextax/nextax/internal/model"
	"github.com/nextax/nextax/internal/storage"
	"github.com/spf13/cobra"
)

func summaryCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Total income and expenses for a date range",
		Args:  cobra.NoArgs,
		Long: `Total income and expenses between --from and --to, inclusive.
The range defaults to the accounting period saved by setup.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			start, end, err := summaryRange(cmd, store, from, to)
			if err != nil {
				return err
			}

			summary, err := store.GetSummary(ctx, start, end)
			if err != nil {
				return fmt.Errorf("failed to summarize: %w", err)
			}

			outln(cmd, cli.RenderSummary(summary, start, end))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "start date YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "end date YYYY-MM-DD")

	return cmd
}

// summaryRange resolves the flags, falling back to the saved accounting
// period and then to the current calendar year.
func summaryRange(cmd *cobra.Command, store *storage.SQLiteStorage, from, to string) (time.Time, time.Time, error) {
	profile, err := store.GetBusinessProfile(cmd.Context())
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	start, end := profile.PeriodStart, profile.PeriodEnd
	if start.IsZero() || end.IsZero() {
		start, end = model.CalendarYearPeriod(time.Now().Year())
	}

	if from != "" {
		if start, err = model.ParseDate(from); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if to != "" {
		if end, err = model.ParseDate(to); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return start, end, nil
}
