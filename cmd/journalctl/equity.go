package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var seedEquityCmd = &cobra.Command{
	Use:   "seed-equity <amount>",
	Short: "Set the equity balance to an absolute amount",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeedEquity,
}

func init() {
	rootCmd.AddCommand(seedEquityCmd)
}

func runSeedEquity(cmd *cobra.Command, args []string) error {
	amount, err := decimal.NewFromString(args[0])
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", args[0], err)
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.ledger().Seed(cmd.Context(), amount); err != nil {
		return fmt.Errorf("seed equity: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Equity set to %s\n", amount.StringFixed(2))
	return nil
}
