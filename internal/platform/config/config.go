package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	IsProduction bool

	// SequenceCounterName is the ledger_counters row backing entry numbering.
	SequenceCounterName string
	// SequenceCounterLimit is the counter ceiling; usage past 95% triggers
	// notifier warnings. Zero disables the warning.
	SequenceCounterLimit int64

	// EquityAccountCode is the retained-earnings account the period closing
	// entry settles the net result into.
	EquityAccountCode string

	// IntegritySweepInterval is how often the background sweep re-verifies
	// open periods. Zero disables the sweep.
	IntegritySweepInterval time.Duration

	// MigrationsPath points golang-migrate at the SQL migration files.
	MigrationsPath string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("SEQUENCE_COUNTER_NAME", "journal_entries")
	viper.SetDefault("SEQUENCE_COUNTER_LIMIT", int64(999_999_999))
	viper.SetDefault("EQUITY_ACCOUNT_CODE", "36050101")
	viper.SetDefault("INTEGRITY_SWEEP_INTERVAL", "1h")
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.SequenceCounterName = viper.GetString("SEQUENCE_COUNTER_NAME")
	cfg.SequenceCounterLimit = viper.GetInt64("SEQUENCE_COUNTER_LIMIT")
	cfg.EquityAccountCode = viper.GetString("EQUITY_ACCOUNT_CODE")
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")

	sweepStr := viper.GetString("INTEGRITY_SWEEP_INTERVAL")
	sweep, err := time.ParseDuration(sweepStr)
	if err != nil {
		sweep = time.Hour
		log.Printf("Warning: Invalid value for INTEGRITY_SWEEP_INTERVAL ('%s'). Defaulting to %s.\n", sweepStr, sweep.String())
	}
	cfg.IntegritySweepInterval = sweep

	return cfg, nil
}
