// Package config loads the run configuration from defaults, an optional
// YAML file, and HKX_-prefixed environment variables, in that order of
// precedence (environment wins). Any invalid value is a fatal configuration
// error surfaced before a single fetch begins.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Scope   ScopeConfig   `yaml:"scope" envconfig:"SCOPE"`
	Source  SourceConfig  `yaml:"source" envconfig:"SOURCE"`
	Fetch   FetchConfig   `yaml:"fetch" envconfig:"FETCH"`
	Output  OutputConfig  `yaml:"output" envconfig:"OUTPUT"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
}

// ScopeConfig defines which calendar dates a run covers.
type ScopeConfig struct {
	Months    []string `yaml:"months" envconfig:"MONTHS" validate:"required,min=1"`
	Holidays  []string `yaml:"holidays" envconfig:"HOLIDAYS"`
	WeeklyOff []string `yaml:"weekly_off" envconfig:"WEEKLY_OFF"`
}

// SourceConfig describes the report locator family.
type SourceConfig struct {
	BaseURL      string `yaml:"base_url" envconfig:"BASE_URL" validate:"required,url"`
	Locale       string `yaml:"locale" envconfig:"LOCALE" validate:"required"`
	ProductLine  string `yaml:"product_line" envconfig:"PRODUCT_LINE" validate:"required"`
	ReportFamily string `yaml:"report_family" envconfig:"REPORT_FAMILY" validate:"required"`
	Segment      string `yaml:"segment" envconfig:"SEGMENT" validate:"required,len=1"`
}

// FetchConfig bounds the fetch executor.
type FetchConfig struct {
	MaxConcurrent     int           `yaml:"max_concurrent" envconfig:"MAX_CONCURRENT" validate:"min=1"`
	RequestsPerMinute int           `yaml:"requests_per_minute" envconfig:"REQUESTS_PER_MINUTE" validate:"min=1"`
	Timeout           time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	Headless          bool          `yaml:"headless" envconfig:"HEADLESS"`
}

// OutputConfig locates the output files.
type OutputConfig struct {
	Dir          string `yaml:"dir" envconfig:"DIR" validate:"required"`
	DedupeMerged bool   `yaml:"dedupe_merged" envconfig:"DEDUPE_MERGED"`
	WorkbookPath string `yaml:"workbook_path" envconfig:"WORKBOOK_PATH"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// Load builds the configuration: defaults, then the YAML file at configPath
// (skipped when empty or absent), then environment variables.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := envconfig.Process("HKX", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks struct tags and the cross-field rules the tags can't
// express.
func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}

	switch strings.ToLower(c.Logging.Output) {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid logging output %q", c.Logging.Output)
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging file path required for output %q", c.Logging.Output)
	}

	return nil
}

// Default returns the default configuration. The month scope has no default;
// it must come from the file, the environment, or flags.
func Default() *Config {
	return &Config{
		Scope: ScopeConfig{
			WeeklyOff: []string{"Saturday", "Sunday"},
		},
		Source: SourceConfig{
			BaseURL:      "https://www.hkex.com.hk",
			Locale:       "eng",
			ProductLine:  "stat",
			ReportFamily: "dayquot",
			Segment:      "e",
		},
		Fetch: FetchConfig{
			MaxConcurrent:     3,
			RequestsPerMinute: 30,
			Timeout:           45 * time.Second,
			Headless:          true,
		},
		Output: OutputConfig{
			Dir:          "data/reports",
			DedupeMerged: true,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/scraper.log",
		},
	}
}
