package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/ksred/fxjournal/internal/config"
	"github.com/ksred/fxjournal/internal/database"
	"github.com/ksred/fxjournal/internal/equity"
	"github.com/ksred/fxjournal/internal/journal"
)

var rootCmd = &cobra.Command{
	Use:   "journalctl",
	Short: "Operator tasks for the forex journal",
	Long: `journalctl runs maintenance tasks against the journal database configured
through the same environment (or .env file) as the API server.

Commands:
  snapshot      - Run the monthly snapshot job
  seed-equity   - Set the equity balance
  import        - Import trades from a YAML or JSON file
  create-admin  - Create a dashboard account

Examples:
  journalctl snapshot --date 2025-10-01
  journalctl seed-equity 10000
  journalctl import trades.yaml`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// env is the configuration and database shared by every command
type env struct {
	cfg *config.Config
	db  *gorm.DB
}

func openEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	zlog.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	db, err := database.NewDatabase(cfg)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, db: db}, nil
}

func (e *env) Close() {
	database.Close(e.db)
}

func (e *env) journal() (*journal.Service, error) {
	loc, err := e.cfg.Location()
	if err != nil {
		return nil, err
	}

	policy := journal.KeepEquity
	if e.cfg.ReverseEquityOnDelete {
		policy = journal.ReverseEquity
	}
	return journal.NewService(e.db, journal.Options{
		RequireType:  e.cfg.RequireTradeType,
		DeletePolicy: policy,
		Location:     loc,
	}), nil
}

func (e *env) ledger() *equity.Ledger {
	return equity.NewLedger(e.db)
}
