package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ksred/fxjournal/internal/journal"
	"github.com/ksred/fxjournal/internal/types"
)

var importDryRun bool

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import trades from a YAML or JSON file",
	Long: `Imports a list of trades. Each trade credits its P/L to the equity balance.

File layout:
  trades:
    - pair: EUR/USD
      type: Buy
      result: Profit
      pl: 42.5
      lotSize: 0.1
      sl: 20
      createdAt: "2025-09-14 10:30:00"   # optional, defaults to now`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "parse the file and print what would be imported")
}

// importedTrade is one entry of an import file
type importedTrade struct {
	types.TradeInput `yaml:",inline"`
	CreatedAt        string `json:"createdAt" yaml:"createdAt"`
}

type importFile struct {
	Trades []importedTrade `json:"trades" yaml:"trades"`
}

// loadImportFile reads an import file, trying YAML first and JSON second
func loadImportFile(path string) (*importFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}

	file := &importFile{}
	if err := yaml.Unmarshal(data, file); err != nil {
		file = &importFile{}
		if err := json.Unmarshal(data, file); err != nil {
			return nil, fmt.Errorf("parse import file (tried YAML and JSON): %w", err)
		}
	}

	if len(file.Trades) == 0 {
		return nil, fmt.Errorf("import file %s has no trades", path)
	}
	return file, nil
}

// importTrades stores every trade and stops at the first failure.
// It returns how many trades were stored.
func importTrades(ctx context.Context, service *journal.Service, trades []importedTrade) (int, error) {
	for i, t := range trades {
		if _, err := service.ImportTrade(ctx, t.TradeInput, t.CreatedAt); err != nil {
			return i, fmt.Errorf("trade %d (%s): %w", i+1, t.Pair, err)
		}
	}
	return len(trades), nil
}

func runImport(cmd *cobra.Command, args []string) error {
	file, err := loadImportFile(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if importDryRun {
		for _, t := range file.Trades {
			fmt.Fprintf(out, "%-10s %-6s %-10s %10s  %s\n", t.Pair, t.Type, t.Result, t.PL, t.CreatedAt)
		}
		fmt.Fprintf(out, "%d trades would be imported\n", len(file.Trades))
		return nil
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	service, err := e.journal()
	if err != nil {
		return err
	}

	imported, err := importTrades(cmd.Context(), service, file.Trades)
	fmt.Fprintf(out, "Imported %d of %d trades\n", imported, len(file.Trades))
	return err
}
