// Package config loads the YAML configuration for the consent facade.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Consent ConsentConfig `yaml:"consent"`
	Web     WebConfig     `yaml:"web"`
	Native  NativeConfig  `yaml:"native"`
	Logger  LoggerConfig  `yaml:"logger"`
	Tracer  TracerConfig  `yaml:"tracer"`
}

// ConsentConfig holds settings shared by every backend.
type ConsentConfig struct {
	// SettingsID identifies the vendor configuration to load. Required.
	SettingsID string `yaml:"settings_id"`
	// UserID, when set, is logged in during initialization.
	UserID string `yaml:"user_id"`
	// Language is the requested vendor UI language code (e.g. "en").
	Language string `yaml:"language"`
	// TrackingPolicy selects what counts as "tracked":
	// "any-granted" (default), "all-granted", or "never".
	TrackingPolicy string `yaml:"tracking_policy"`
}

// WebConfig holds browser-backend settings.
type WebConfig struct {
	LoaderURL     string        `yaml:"loader_url"`
	PageURL       string        `yaml:"page_url"`
	RemoteURL     string        `yaml:"remote_url"`
	Headless      bool          `yaml:"headless"`
	ReadyTimeout  time.Duration `yaml:"ready_timeout"`
	ActionTimeout time.Duration `yaml:"action_timeout"`
	DispatchRate  float64       `yaml:"dispatch_rate"`
	DispatchBurst int           `yaml:"dispatch_burst"`
}

// NativeConfig holds native-backend settings.
type NativeConfig struct {
	DatabasePath string          `yaml:"database_path"`
	ExportDir    string          `yaml:"export_dir"`
	Services     []ServiceConfig `yaml:"services"`
	Breaker      BreakerConfig   `yaml:"breaker"`
}

// ServiceConfig declares one catalog service for the embedded SDK.
type ServiceConfig struct {
	TemplateID string `yaml:"template_id"`
	Name       string `yaml:"name"`
	Default    bool   `yaml:"default"`
}

// BreakerConfig configures the circuit breaker around vendor SDK calls.
type BreakerConfig struct {
	MaxFailures uint32        `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
	Interval    time.Duration `yaml:"interval"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
	Output string `yaml:"output"` // stdout, stderr, or a file path
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"` // stdout or noop
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Consent: ConsentConfig{
			Language:       "en",
			TrackingPolicy: "any-granted",
		},
		Web: WebConfig{
			Headless:     true,
			ReadyTimeout: 20 * time.Second,
		},
		Native: NativeConfig{
			DatabasePath: "consent.db",
		},
		Logger: LoggerConfig{Level: "info", Format: "text", Output: "stderr"},
		Tracer: TracerConfig{Exporter: "noop"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints a typo would otherwise surface
// at the first vendor call.
func (c *Config) Validate() error {
	if c.Consent.SettingsID == "" {
		return fmt.Errorf("config: consent.settings_id is required")
	}
	switch c.Consent.TrackingPolicy {
	case "", "any-granted", "all-granted", "never":
	default:
		return fmt.Errorf("config: unknown tracking_policy %q", c.Consent.TrackingPolicy)
	}
	switch c.Logger.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: unknown logger format %q", c.Logger.Format)
	}
	switch c.Tracer.Exporter {
	case "", "noop", "stdout":
	default:
		return fmt.Errorf("config: unknown tracer exporter %q", c.Tracer.Exporter)
	}
	if c.Web.DispatchRate < 0 {
		return fmt.Errorf("config: web.dispatch_rate must be >= 0")
	}
	return nil
}
