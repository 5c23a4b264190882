package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Exporter names accepted by TelemetryConfig.Exporter.
const (
	ExporterOTLP   = "otlp"
	ExporterStdout = "stdout"
	ExporterNone   = "none"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Telemetry TelemetryConfig
	Function  FunctionConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// TelemetryConfig holds service identity and trace export configuration.
type TelemetryConfig struct {
	ServiceName string            `envconfig:"SERVICE_NAME" default:"docproc"`
	Environment string            `envconfig:"ENVIRONMENT" default:"dev"`
	Version     string            `envconfig:"VERSION" default:"1.0.0"`
	Exporter    string            `envconfig:"TELEMETRY_EXPORTER" default:"otlp"`
	Endpoint    string            `envconfig:"TELEMETRY_ENDPOINT"`
	Insecure    bool              `envconfig:"TELEMETRY_INSECURE" default:"false"`
	SampleRate  float64           `envconfig:"TELEMETRY_SAMPLE_RATE" default:"1.0"`
	Tags        map[string]string `envconfig:"TELEMETRY_TAGS"`
}

// FunctionConfig holds invocation handling configuration.
type FunctionConfig struct {
	MaxConcurrent int64 `envconfig:"FUNCTION_MAX_CONCURRENT" default:"8"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "docproc",
			Environment: "dev",
			Version:     "1.0.0",
			Exporter:    ExporterOTLP,
			SampleRate:  1.0,
		},
		Function: FunctionConfig{
			MaxConcurrent: 8,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}

// Validate checks that the configuration can support startup.
// The service must refuse to run misconfigured rather than degrade silently.
func (c *Config) Validate() error {
	if c.Telemetry.ServiceName == "" {
		return fmt.Errorf("invalid telemetry config: SERVICE_NAME must not be empty")
	}

	switch c.Telemetry.Exporter {
	case ExporterOTLP:
		if c.Telemetry.Endpoint == "" {
			return fmt.Errorf("invalid telemetry config: TELEMETRY_ENDPOINT required when TELEMETRY_EXPORTER is %q", ExporterOTLP)
		}
	case ExporterStdout, ExporterNone:
	default:
		return fmt.Errorf("invalid telemetry config: unknown TELEMETRY_EXPORTER %q (supported: %s, %s, %s)",
			c.Telemetry.Exporter, ExporterOTLP, ExporterStdout, ExporterNone)
	}

	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return fmt.Errorf("invalid telemetry config: TELEMETRY_SAMPLE_RATE %v outside [0, 1]", c.Telemetry.SampleRate)
	}

	if c.Function.MaxConcurrent < 1 {
		return fmt.Errorf("invalid function config: FUNCTION_MAX_CONCURRENT must be at least 1, got %d", c.Function.MaxConcurrent)
	}

	return nil
}
