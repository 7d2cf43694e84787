package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	// Embedded zone database so the journal zone resolves on minimal images
	_ "time/tzdata"
)

// Config holds all runtime settings, read from the environment (and an optional .env file)
type Config struct {
	Env   string `envconfig:"ENV" default:"development"`
	Debug bool   `envconfig:"DEBUG" default:"false"`
	Port  string `envconfig:"PORT" default:"8080"`

	// Database
	DBDriver          string        `envconfig:"DB_DRIVER" default:"sqlite"` // sqlite or postgres
	DatabaseURL       string        `envconfig:"DATABASE_URL" default:"fxjournal.db"`
	GormLogLevel      int           `envconfig:"GORM_LOG_LEVEL" default:"2"`
	DBMaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"20"`
	DBMaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
	DBConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"1h"`

	// Auth
	JWTSecret  string        `envconfig:"JWT_SECRET" default:"fxjournal-secret-key"`
	TokenTTL   time.Duration `envconfig:"TOKEN_TTL" default:"1h"`
	CronSecret string        `envconfig:"CRON_SECRET"`

	// Journal
	Timezone              string `envconfig:"TIMEZONE" default:"Asia/Jakarta"`
	RequireTradeType      bool   `envconfig:"JOURNAL_REQUIRE_TYPE" default:"false"`
	ReverseEquityOnDelete bool   `envconfig:"EQUITY_REVERSE_ON_DELETE" default:"false"`

	// Monthly snapshot trigger loop
	SnapshotTriggerEnabled  bool          `envconfig:"SNAPSHOT_TRIGGER_ENABLED" default:"false"`
	SnapshotTriggerInterval time.Duration `envconfig:"SNAPSHOT_TRIGGER_INTERVAL" default:"1h"`
}

// Load reads .env (when present) and then the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("failed to read .env file")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env config: %w", err)
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Location resolves the journal time zone
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// IsProduction reports whether pretty console logging should be disabled
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
