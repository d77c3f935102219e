// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Defaults
const (
	DefaultMaxFileSize = 50 << 20
	DefaultConcurrency = 4
	DefaultEventBuffer = 64
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultHost        = "127.0.0.1"
	DefaultPort        = 8080
	DefaultRateLimit   = 5.0
	DefaultBurst       = 10
)

// Config represents the configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or are provided via CLI flags.
type Config struct {
	// Extraction
	DocxEnabled *bool `json:"docx_enabled,omitempty" yaml:"docx_enabled,omitempty"`                             // nil means enabled
	MaxFileSize int64 `json:"max_file_size,omitempty" yaml:"max_file_size,omitempty" validate:"gte=0"`         // bytes
	Concurrency int   `json:"concurrency,omitempty" yaml:"concurrency,omitempty" validate:"gte=0,lte=256"`     // CLI batch bound
	EventBuffer int   `json:"event_buffer,omitempty" yaml:"event_buffer,omitempty" validate:"gte=0,lte=65536"` // per-subscriber buffer

	// Logging
	LogLevel  string `json:"log_level,omitempty" yaml:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	LogFormat string `json:"log_format,omitempty" yaml:"log_format,omitempty" validate:"omitempty,oneof=text json"`

	// Storage
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty" validate:"omitempty,url"` // PostgreSQL connection URL

	Server ServerConfig `json:"server" yaml:"server"`
}

// ServerConfig configures the HTTP surface
type ServerConfig struct {
	Host      string  `json:"host,omitempty" yaml:"host,omitempty" validate:"omitempty,ip|hostname"`
	Port      int     `json:"port,omitempty" yaml:"port,omitempty" validate:"gte=0,lte=65535"`
	RateLimit float64 `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty" validate:"gte=0"` // requests per second
	Burst     int     `json:"burst,omitempty" yaml:"burst,omitempty" validate:"gte=0"`

	// Root, when set, confines /extract to files below this directory
	Root string `json:"root,omitempty" yaml:"root,omitempty" validate:"omitempty,dir"`
	// AllowedOrigins lists browser origins granted CORS access; empty grants none
	AllowedOrigins []string `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty" validate:"omitempty,dive,url"`
}

// Default returns a Config with every default applied
func Default() Config {
	enabled := true
	return Config{
		DocxEnabled: &enabled,
		MaxFileSize: DefaultMaxFileSize,
		Concurrency: DefaultConcurrency,
		EventBuffer: DefaultEventBuffer,
		LogLevel:    DefaultLogLevel,
		LogFormat:   DefaultLogFormat,
		Server: ServerConfig{
			Host:      DefaultHost,
			Port:      DefaultPort,
			RateLimit: DefaultRateLimit,
			Burst:     DefaultBurst,
		},
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Zero values are accepted; they are replaced by MergeWithDefaults.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("'%s' failed '%s'", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("config error: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.DocxEnabled == nil {
		result.DocxEnabled = defaults.DocxEnabled
	}

	// String fields: use default if empty
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Numeric fields: use default if zero
	if result.MaxFileSize == 0 {
		result.MaxFileSize = defaults.MaxFileSize
	}
	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}
	if result.EventBuffer == 0 {
		result.EventBuffer = defaults.EventBuffer
	}
	if result.Server.Host == "" {
		result.Server.Host = defaults.Server.Host
	}
	if result.Server.Port == 0 {
		result.Server.Port = defaults.Server.Port
	}
	if result.Server.RateLimit == 0 {
		result.Server.RateLimit = defaults.Server.RateLimit
	}
	if result.Server.Burst == 0 {
		result.Server.Burst = defaults.Server.Burst
	}

	return result
}

// ApplyEnv overrides fields from DATABASE_URL, PORT and LOG_LEVEL when they are set
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	return nil
}

// DocxOn reports whether DOCX extraction is enabled. Unset means enabled.
func (c *Config) DocxOn() bool {
	return c.DocxEnabled == nil || *c.DocxEnabled
}

// Resolve loads path (if non-empty), applies environment overrides, fills
// defaults and validates the result.
func Resolve(path string) (Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg.MergeWithDefaults(Default()), nil
}
