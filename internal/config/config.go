package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/pflag"

	"github.com/danielpatrickdp/stopcoach/internal/logging"
)

// Config holds trainer configuration. Environment variables provide the
// defaults; flags override them.
type Config struct {
	DBPath     string        `env:"COACH_DB"          envDefault:"stopcoach.db"`
	DeckPath   string        `env:"COACH_DECK"`
	Drill      bool          `env:"COACH_DRILL"`
	ExportDir  string        `env:"COACH_EXPORT_DIR"  envDefault:"."`
	LogLevel   string        `env:"COACH_LOG_LEVEL"   envDefault:"info"`
	LogFormat  string        `env:"COACH_LOG_FORMAT"  envDefault:"text"`
	LogFile    string        `env:"COACH_LOG_FILE"`
	HistoryCap int           `env:"COACH_HISTORY_CAP" envDefault:"6"`
	SlowLoad   time.Duration `env:"COACH_SLOW_LOAD"   envDefault:"3s"`
}

// ParseEnv loads configuration from environment variables only.
func ParseEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Parse loads the environment, then registers flags on fs and parses args
// over it.
func Parse(fs *pflag.FlagSet, args []string) (Config, error) {
	cfg, err := ParseEnv()
	if err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the SQLite database")
	fs.StringVar(&cfg.DeckPath, "deck", cfg.DeckPath, "YAML scenario deck (default: built-in deck)")
	fs.BoolVar(&cfg.Drill, "drill", cfg.Drill, "wrap around after the last scenario instead of finishing")
	fs.StringVar(&cfg.ExportDir, "export-dir", cfg.ExportDir, "directory for exported incident logs")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "text or json")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "write logs to this file")
	fs.IntVar(&cfg.HistoryCap, "history-cap", cfg.HistoryCap, "number of recent practice attempts kept")
	fs.DurationVar(&cfg.SlowLoad, "slow-load", cfg.SlowLoad, "warn when loading saved data takes longer than this")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values no component can work with.
func (c Config) Validate() error {
	var errs []error
	if c.DBPath == "" {
		errs = append(errs, errors.New("db path is required"))
	}
	if c.HistoryCap < 1 {
		errs = append(errs, fmt.Errorf("history cap must be at least 1, got %d", c.HistoryCap))
	}
	if c.SlowLoad < 0 {
		errs = append(errs, fmt.Errorf("slow-load must not be negative, got %s", c.SlowLoad))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log format must be text or json, got %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

// Exitf prints to stderr and exits with status 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
