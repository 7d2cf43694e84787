package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ksred/fxjournal/internal/history"
)

var snapshotDate string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Run the monthly snapshot job",
	Long: `Records the previous month's History when the date is the 1st of a month in the
journal zone. Running it again for the same month does nothing.`,
	Args: cobra.NoArgs,
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.Flags().StringVar(&snapshotDate, "date", "", "run as of this date (YYYY-MM-DD), default today")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	journalService, err := e.journal()
	if err != nil {
		return err
	}
	service := history.NewService(e.db, journalService, e.ledger())

	today := journalService.Now()
	if snapshotDate != "" {
		if today, err = service.ParseDate(snapshotDate); err != nil {
			return err
		}
	}

	result, err := service.RunMonthlySnapshot(cmd.Context(), today)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	out := cmd.OutOrStdout()
	if !result.Ran {
		fmt.Fprintf(out, "Snapshot skipped (%s)", result.Reason)
		if result.Month != "" {
			fmt.Fprintf(out, " for %s", result.Month)
		}
		fmt.Fprintln(out)
		return nil
	}

	fmt.Fprintf(out, "Snapshot recorded for %s\n", result.Month)
	fmt.Fprintf(out, "  Max drawdown:   %.2f\n", result.Metrics.MaxDrawdown)
	fmt.Fprintf(out, "  Risk per trade: %.2f\n", result.Metrics.RiskPerTrade)
	fmt.Fprintf(out, "  Last equity:    %.2f\n", result.Metrics.LastEquity)
	return nil
}
