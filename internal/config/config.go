// Package config provides configuration management for the f1stats stages.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"f1stats/pkg/utils"
)

// EnvPrefix is the prefix for environment variable overrides (F1STATS_API_BASE_URL, ...).
const EnvPrefix = "F1STATS"

// Position sources for a driver's season finishing position.
const (
	PositionFromResults   = "results"
	PositionFromStandings = "standings"
)

// Identity keys used when deriving slugs from API records.
const (
	IdentityByName = "name"
	IdentityByID   = "id"
)

// Cache backends.
const (
	CacheBackendFile   = "file"
	CacheBackendSQLite = "sqlite"
)

// Configuration validation errors.
var (
	ErrMissingBaseURL           = errors.New("api.base_url is required")
	ErrInvalidBaseURL           = errors.New("api.base_url must be an absolute http(s) URL")
	ErrInvalidWikiAPI           = errors.New("junior.wiki_api must be an absolute http(s) URL")
	ErrInvalidPageLimit         = errors.New("api.page_limit must be at least 1")
	ErrInvalidPolitenessDelay   = errors.New("api.politeness_delay must be non-negative")
	ErrInvalidMaxAttempts       = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("retry.timeout_sec must be at least 1")
	ErrInvalidCacheBackend      = errors.New("cache.backend must be 'file' or 'sqlite'")
	ErrInvalidPositionSource    = errors.New("aggregate.position_source must be 'results' or 'standings'")
	ErrInvalidIdentityKey       = errors.New("aggregate.identity_key must be 'name' or 'id'")
	ErrMissingDataDir           = errors.New("data.dir is required")
	ErrInvalidSeason            = errors.New("seasons must be plausible championship years")
	ErrInvalidThreshold         = errors.New("validation.suggestion_threshold must be between 0 and 1")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat         = errors.New("logging.format must be one of: text, json, pretty")
)

// Config represents the complete f1stats configuration.
type Config struct {
	API        APIConfig        `mapstructure:"api" yaml:"api"`
	Retry      RetryPolicy      `mapstructure:"retry" yaml:"retry"`
	Cache      CacheConfig      `mapstructure:"cache" yaml:"cache"`
	Aggregate  AggregateConfig  `mapstructure:"aggregate" yaml:"aggregate"`
	Data       DataConfig       `mapstructure:"data" yaml:"data"`
	Validation ValidationConfig `mapstructure:"validation" yaml:"validation"`
	Junior     JuniorConfig     `mapstructure:"junior" yaml:"junior"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
	Seasons    []int            `mapstructure:"seasons" yaml:"seasons"`
}

// APIConfig describes the upstream racing-data API.
type APIConfig struct {
	BaseURL         string        `mapstructure:"base_url" yaml:"base_url"`
	UserAgent       string        `mapstructure:"user_agent" yaml:"user_agent"`
	PageLimit       int           `mapstructure:"page_limit" yaml:"page_limit"`
	PolitenessDelay time.Duration `mapstructure:"politeness_delay" yaml:"politeness_delay"`
}

// RetryPolicy defines retry behavior.
type RetryPolicy struct {
	MaxAttempts       int     `mapstructure:"max_attempts" yaml:"max_attempts"`
	InitialDelayMs    int     `mapstructure:"initial_delay_ms" yaml:"initial_delay_ms"`
	MaxDelayMs        int     `mapstructure:"max_delay_ms" yaml:"max_delay_ms"`
	BackoffMultiplier float64 `mapstructure:"backoff_multiplier" yaml:"backoff_multiplier"`
	TimeoutSec        int     `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// CacheConfig controls the raw response cache.
type CacheConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
	Dir     string `mapstructure:"dir" yaml:"dir"`
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Offline bool   `mapstructure:"offline" yaml:"offline"`
}

// AggregateConfig controls how race records are folded into tallies.
type AggregateConfig struct {
	PositionSource string `mapstructure:"position_source" yaml:"position_source"`
	IdentityKey    string `mapstructure:"identity_key" yaml:"identity_key"`
	FoldAccents    bool   `mapstructure:"fold_accents" yaml:"fold_accents"`
}

// DataConfig names the files every stage reads and writes, relative to Dir.
type DataConfig struct {
	Dir       string `mapstructure:"dir" yaml:"dir"`
	Stats     string `mapstructure:"stats" yaml:"stats"`
	Generated string `mapstructure:"generated" yaml:"generated"`
	Fixed     string `mapstructure:"fixed" yaml:"fixed"`
	Roster    string `mapstructure:"roster" yaml:"roster"`
	Report    string `mapstructure:"report" yaml:"report"`
	Career    string `mapstructure:"career" yaml:"career"`
	Junior    string `mapstructure:"junior" yaml:"junior"`
}

// ValidationConfig controls the discrepancy report.
type ValidationConfig struct {
	SuggestionThreshold float64 `mapstructure:"suggestion_threshold" yaml:"suggestion_threshold"`
	Strict              bool    `mapstructure:"strict" yaml:"strict"`
}

// JuniorConfig controls the junior-career lookup.
type JuniorConfig struct {
	WikiAPI  string `mapstructure:"wiki_api" yaml:"wiki_api"`
	MinDebut int    `mapstructure:"min_debut" yaml:"min_debut"`
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Load reads configuration from path (optional) and F1STATS_* environment variables.
// An empty path yields the defaults plus environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns the built-in configuration without reading any file or environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)

	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "https://api.jolpi.ca/ergast/f1")
	v.SetDefault("api.user_agent", "f1stats/1.0")
	v.SetDefault("api.page_limit", 1000)
	v.SetDefault("api.politeness_delay", "500ms")

	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_delay_ms", 500)
	v.SetDefault("retry.max_delay_ms", 30000)
	v.SetDefault("retry.backoff_multiplier", 2.0)
	v.SetDefault("retry.timeout_sec", 30)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", CacheBackendFile)
	v.SetDefault("cache.dir", "data/cache")
	v.SetDefault("cache.offline", false)

	v.SetDefault("aggregate.position_source", PositionFromResults)
	v.SetDefault("aggregate.identity_key", IdentityByName)
	v.SetDefault("aggregate.fold_accents", false)

	v.SetDefault("data.dir", "data")
	v.SetDefault("data.stats", "stats.json")
	v.SetDefault("data.generated", "stats.generated.json")
	v.SetDefault("data.fixed", "stats.fixed.json")
	v.SetDefault("data.roster", "entries-2026.json")
	v.SetDefault("data.report", "stats-validation-report.json")
	v.SetDefault("data.career", "stats.wikipedia.json")
	v.SetDefault("data.junior", "drivers.junior.json")

	v.SetDefault("seasons", []int{2020, 2021, 2022, 2023, 2024, 2025, 2026})

	v.SetDefault("validation.suggestion_threshold", 0.85)
	v.SetDefault("validation.strict", false)

	v.SetDefault("junior.enabled", false)
	v.SetDefault("junior.min_debut", 2025)
	v.SetDefault("junior.wiki_api", "https://en.wikipedia.org/w/api.php")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return ErrMissingBaseURL
	}

	urls := utils.NewHTTPHelper(c.API.UserAgent)
	if !urls.IsValidURL(c.API.BaseURL) {
		return ErrInvalidBaseURL
	}

	if c.Junior.Enabled && !urls.IsValidURL(c.Junior.WikiAPI) {
		return ErrInvalidWikiAPI
	}

	if c.API.PageLimit < 1 {
		return ErrInvalidPageLimit
	}

	if c.API.PolitenessDelay < 0 {
		return ErrInvalidPolitenessDelay
	}

	if c.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if c.Retry.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if c.Retry.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if c.Retry.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if c.Cache.Backend != CacheBackendFile && c.Cache.Backend != CacheBackendSQLite {
		return ErrInvalidCacheBackend
	}

	if c.Aggregate.PositionSource != PositionFromResults && c.Aggregate.PositionSource != PositionFromStandings {
		return ErrInvalidPositionSource
	}

	if c.Aggregate.IdentityKey != IdentityByName && c.Aggregate.IdentityKey != IdentityByID {
		return ErrInvalidIdentityKey
	}

	if c.Data.Dir == "" {
		return ErrMissingDataDir
	}

	for _, s := range c.Seasons {
		if s < 1950 || s > 2100 {
			return fmt.Errorf("%w: %d", ErrInvalidSeason, s)
		}
	}

	if c.Validation.SuggestionThreshold < 0 || c.Validation.SuggestionThreshold > 1 {
		return ErrInvalidThreshold
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	validFormats := map[string]bool{"text": true, "json": true, "pretty": true}
	if !validFormats[c.Logging.Format] {
		return ErrInvalidLogFormat
	}

	return nil
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 2; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	// Cap at max delay
	if rp.MaxDelayMs > 0 && int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// GetTimeout returns the timeout duration.
func (rp *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// Path joins name onto the data directory unless name is already absolute.
func (d DataConfig) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}

	return filepath.Join(d.Dir, name)
}

// StatsPath returns the canonical statistics document path.
func (c *Config) StatsPath() string { return c.Data.Path(c.Data.Stats) }

// GeneratedPath returns the raw aggregated output path.
func (c *Config) GeneratedPath() string { return c.Data.Path(c.Data.Generated) }

// FixedPath returns the reconciled output path.
func (c *Config) FixedPath() string { return c.Data.Path(c.Data.Fixed) }

// RosterPath returns the roster (entries) path.
func (c *Config) RosterPath() string { return c.Data.Path(c.Data.Roster) }

// ReportPath returns the discrepancy report path.
func (c *Config) ReportPath() string { return c.Data.Path(c.Data.Report) }

// CareerPath returns the auxiliary career-history path.
func (c *Config) CareerPath() string { return c.Data.Path(c.Data.Career) }

// JuniorPath returns the junior-career output path.
func (c *Config) JuniorPath() string { return c.Data.Path(c.Data.Junior) }

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Seasons: %v, API: %s, MaxAttempts: %d, Data: %s}",
		c.Seasons,
		c.API.BaseURL,
		c.Retry.MaxAttempts,
		c.Data.Dir,
	)
}
