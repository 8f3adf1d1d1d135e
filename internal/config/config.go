// Package config loads run configuration from config files, environment
// variables and .env files.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/huddlestats/gridiron/pkg/errors"
	"github.com/huddlestats/gridiron/pkg/merge"
	"github.com/huddlestats/gridiron/pkg/schedule"
)

// Default values for knobs not set anywhere else.
const (
	DefaultCheckpointPath = ".gridiron/checkpoint.yaml"
	DefaultFlushEvery     = 10
)

// Config holds one collection run's configuration.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool

	// Config file actually used, if any
	ConfigFile string

	// Collection scope
	Seasons     []int
	DatabaseURL string

	// Pipeline knobs
	MinConfidence  float64
	MaxAttempts    int
	FlushEvery     int
	CheckpointPath string

	// Per-source request spacing; zero means RequestInterval.
	RequestInterval   time.Duration
	ESPNInterval      time.Duration
	WikipediaInterval time.Duration

	// Source endpoints, overridable for tests and mirrors
	ESPNBaseURL string
	WikiBaseURL string

	// UseBrowser renders reference pages in a headless browser instead of
	// plain GETs.
	UseBrowser bool

	// Logging configuration
	LogLevel  string
	LogFormat string
}

// Load reads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra, applied by the caller)
// 2. Environment variables
// 3. .env files
// 4. Config file (~/.gridiron.yaml or ./.gridiron.yaml)
// 5. Defaults
func Load() (*Config, error) {
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	setDefaults()

	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.AddConfigPath(".")
			viper.SetConfigType("yaml")
			viper.SetConfigName(".gridiron")
		}
	}
	_ = viper.ReadInConfig()

	cfg := &Config{
		Verbose: viper.GetBool("verbose"),
		Quiet:   viper.GetBool("quiet"),

		ConfigFile: viper.ConfigFileUsed(),

		Seasons:     viper.GetIntSlice("seasons"),
		DatabaseURL: viper.GetString("database_url"),

		MinConfidence:  viper.GetFloat64("min_confidence"),
		MaxAttempts:    viper.GetInt("max_attempts"),
		FlushEvery:     viper.GetInt("flush_every"),
		CheckpointPath: viper.GetString("checkpoint_path"),

		RequestInterval:   viper.GetDuration("request_interval"),
		ESPNInterval:      viper.GetDuration("espn_interval"),
		WikipediaInterval: viper.GetDuration("wikipedia_interval"),

		ESPNBaseURL: viper.GetString("espn_base_url"),
		WikiBaseURL: viper.GetString("wiki_base_url"),
		UseBrowser:  viper.GetBool("use_browser"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
	}

	if cfg.ESPNInterval == 0 {
		cfg.ESPNInterval = cfg.RequestInterval
	}
	if cfg.WikipediaInterval == 0 {
		cfg.WikipediaInterval = cfg.RequestInterval
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that would misbehave silently.
func (c *Config) Validate() error {
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return &errors.ValidationError{Field: "min_confidence", Message: "must be between 0 and 1"}
	}
	if c.MaxAttempts < 1 {
		return &errors.ValidationError{Field: "max_attempts", Message: "must be at least 1"}
	}
	if c.FlushEvery < 1 {
		return &errors.ValidationError{Field: "flush_every", Message: "must be at least 1"}
	}
	if c.RequestInterval < 0 || c.ESPNInterval < 0 || c.WikipediaInterval < 0 {
		return &errors.ValidationError{Field: "request_interval", Message: "must not be negative"}
	}
	for _, season := range c.Seasons {
		if season < 1920 || season > 2100 {
			return &errors.ValidationError{Field: "seasons", Message: "implausible season year"}
		}
	}
	return nil
}

// UpdateFromFlags applies parsed command flags, which take precedence over
// config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet bool, seasons []int) {
	c.Verbose = verbose
	c.Quiet = quiet
	if len(seasons) > 0 {
		c.Seasons = seasons
	}
}

func setDefaults() {
	viper.SetDefault("min_confidence", merge.DefaultMinConfidence)
	viper.SetDefault("max_attempts", schedule.DefaultMaxAttempts)
	viper.SetDefault("flush_every", DefaultFlushEvery)
	viper.SetDefault("checkpoint_path", DefaultCheckpointPath)
	viper.SetDefault("request_interval", schedule.DefaultInterval)
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if
// not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
