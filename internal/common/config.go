package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config is the root configuration, loaded from defaults, then TOML
// files in order, then environment variables, then command-line flags.
type Config struct {
	Environment string          `toml:"environment" validate:"required,oneof=development staging production"`
	Sources     string          `toml:"sources"` // path to the YAML source catalog
	Server      ServerConfig    `toml:"server"`
	Logging     LoggingConfig   `toml:"logging"`
	Storage     StorageConfig   `toml:"storage"`
	Feeds       FeedsConfig     `toml:"feeds"`
	Quotes      QuotesConfig    `toml:"quotes"`
	Report      ReportConfig    `toml:"report"`
	LLM         LLMConfig       `toml:"llm"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port" validate:"required,min=1,max=65535"`
}

type LoggingConfig struct {
	Level      string `toml:"level" validate:"required,oneof=trace debug info warn error"`
	TimeFormat string `toml:"time_format"`
}

type StorageConfig struct {
	Path string `toml:"path" validate:"required"`
}

// FeedsConfig controls feed fetching and normalization.
type FeedsConfig struct {
	MaxItems       int      `toml:"max_items" validate:"required,min=1"`
	Timeout        string   `toml:"timeout" validate:"required"`
	ExcludeMarkers []string `toml:"exclude_markers"`
	MaxDescription int      `toml:"max_description" validate:"required,min=1"`
}

// QuotesConfig controls market quote fetching.
type QuotesConfig struct {
	Timeout   string  `toml:"timeout" validate:"required"`
	RateLimit float64 `toml:"rate_limit" validate:"min=0"`
}

// ReportConfig controls assembly, caching, and pipeline deadlines.
type ReportConfig struct {
	ItemsPerSlide    int    `toml:"items_per_slide" validate:"required,min=1"`
	CacheTTL         string `toml:"cache_ttl" validate:"required"`
	PipelineDeadline string `toml:"pipeline_deadline" validate:"required"`
	CoverTitle       string `toml:"cover_title"`
	CoverSubtitle    string `toml:"cover_subtitle"`
	FallbackInsight  string `toml:"fallback_insight"`
}

// LLMConfig controls provider rotation and retry policy.
type LLMConfig struct {
	ProviderOrder []string     `toml:"provider_order" validate:"required,min=1,dive,oneof=gemini claude"`
	Retries       int          `toml:"retries" validate:"min=0"`
	Backoff       string       `toml:"backoff" validate:"required"`
	MaxBackoff    string       `toml:"max_backoff" validate:"required"`
	RateLimit     float64      `toml:"rate_limit" validate:"min=0"`
	Gemini        GeminiConfig `toml:"gemini"`
	Claude        ClaudeConfig `toml:"claude"`
}

type GeminiConfig struct {
	APIKeys     []string `toml:"api_keys"`
	Models      []string `toml:"models" validate:"required,min=1"`
	Timeout     string   `toml:"timeout" validate:"required"`
	Temperature float64  `toml:"temperature"`
}

type ClaudeConfig struct {
	APIKeys     []string `toml:"api_keys"`
	Models      []string `toml:"models" validate:"required,min=1"`
	Timeout     string   `toml:"timeout" validate:"required"`
	Temperature float64  `toml:"temperature"`
	MaxTokens   int      `toml:"max_tokens" validate:"min=1"`
}

type SchedulerConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"`
}

// DefaultConfig returns the built-in defaults. Files, environment, and
// flags layer on top.
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Sources:     "sources.yaml",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8085,
		},
		Logging: LoggingConfig{
			Level:      "info",
			TimeFormat: "15:04:05.000",
		},
		Storage: StorageConfig{
			Path: "./data/nuntium",
		},
		Feeds: FeedsConfig{
			MaxItems:       6,
			Timeout:        "10s",
			MaxDescription: 300,
		},
		Quotes: QuotesConfig{
			Timeout:   "4s",
			RateLimit: 5,
		},
		Report: ReportConfig{
			ItemsPerSlide:    2,
			CacheTTL:         "5m",
			PipelineDeadline: "20s",
			CoverTitle:       "Daily Market Briefing",
			CoverSubtitle:    "News & Markets at a Glance",
			FallbackInsight:  "Further market impact analysis pending.",
		},
		LLM: LLMConfig{
			ProviderOrder: []string{"gemini", "claude"},
			Retries:       2,
			Backoff:       "2s",
			MaxBackoff:    "30s",
			RateLimit:     1,
			Gemini: GeminiConfig{
				Models:      []string{"gemini-2.0-flash", "gemini-1.5-flash"},
				Timeout:     "15s",
				Temperature: 0.4,
			},
			Claude: ClaudeConfig{
				Models:      []string{"claude-haiku-3-5-20241022"},
				Timeout:     "15s",
				Temperature: 0.4,
				MaxTokens:   2048,
			},
		},
		Scheduler: SchedulerConfig{
			Enabled:  false,
			Schedule: "0 0 8,20 * * *",
		},
	}
}

// LoadFromFiles builds the configuration by layering TOML files over the
// defaults, then applying environment overrides. Missing files are
// skipped silently so the service can run on defaults alone.
func LoadFromFiles(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NUNTIUM_ENVIRONMENT"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("NUNTIUM_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("NUNTIUM_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("NUNTIUM_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("NUNTIUM_BADGER_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("NUNTIUM_SOURCES"); v != "" {
		cfg.Sources = v
	}
	// Key pools: environment keys take priority over file-configured keys.
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.LLM.Gemini.APIKeys = prependKey(cfg.LLM.Gemini.APIKeys, v)
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.LLM.Claude.APIKeys = prependKey(cfg.LLM.Claude.APIKeys, v)
	}
}

func prependKey(keys []string, key string) []string {
	for _, k := range keys {
		if k == key {
			return keys
		}
	}
	return append([]string{key}, keys...)
}

// ApplyFlagOverrides applies non-zero command-line flag values. Flags
// win over files and environment.
func (c *Config) ApplyFlagOverrides(port int, logLevel string) {
	if port > 0 {
		c.Server.Port = port
	}
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Validate checks struct constraints and that every duration string
// parses.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	durations := map[string]string{
		"feeds.timeout":            c.Feeds.Timeout,
		"quotes.timeout":           c.Quotes.Timeout,
		"report.cache_ttl":         c.Report.CacheTTL,
		"report.pipeline_deadline": c.Report.PipelineDeadline,
		"llm.backoff":              c.LLM.Backoff,
		"llm.max_backoff":          c.LLM.MaxBackoff,
		"llm.gemini.timeout":       c.LLM.Gemini.Timeout,
		"llm.claude.timeout":       c.LLM.Claude.Timeout,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration for %s: %w", name, err)
		}
	}
	return nil
}

// Duration parses a configured duration string, falling back when the
// value is empty or malformed. Validate catches malformed values at
// startup, so the fallback only fires for zero-value configs in tests.
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
