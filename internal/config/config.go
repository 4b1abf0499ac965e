package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kazi-app/ups/internal/feature"
	"github.com/kazi-app/ups/internal/logging"
	"github.com/kazi-app/ups/internal/ups"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

// Duration is a time.Duration written as "30s" in config files.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full service configuration.
type Config struct {
	Provider  ProviderConfig  `json:"provider" toml:"provider" yaml:"provider"`
	Server    ServerConfig    `json:"server" toml:"server" yaml:"server"`
	Logging   LoggingConfig   `json:"logging" toml:"logging" yaml:"logging"`
	Export    ExportConfig    `json:"export" toml:"export" yaml:"export"`
	Transport TransportConfig `json:"transport" toml:"transport" yaml:"transport"`
	Assistant AssistantConfig `json:"assistant" toml:"assistant" yaml:"assistant"`
}

// ProviderConfig mirrors ups.Config with file-friendly durations.
type ProviderConfig struct {
	ProjectID       string   `json:"project_id" toml:"project_id" yaml:"project_id"`
	UserID          string   `json:"user_id" toml:"user_id" yaml:"user_id"`
	EnabledFeatures []string `json:"enabled_features" toml:"enabled_features" yaml:"enabled_features"`
	RealTimeEnabled bool     `json:"realtime_enabled" toml:"realtime_enabled" yaml:"realtime_enabled"`
	AIEnabled       bool     `json:"ai_enabled" toml:"ai_enabled" yaml:"ai_enabled"`
	Theme           string   `json:"theme" toml:"theme" yaml:"theme"`
	APIEndpoint     string   `json:"api_endpoint" toml:"api_endpoint" yaml:"api_endpoint"`
	WSEndpoint      string   `json:"ws_endpoint" toml:"ws_endpoint" yaml:"ws_endpoint"`
	Debug           bool     `json:"debug" toml:"debug" yaml:"debug"`
	HealthInterval  Duration `json:"health_interval" toml:"health_interval" yaml:"health_interval"`
	HealthDebounce  Duration `json:"health_debounce" toml:"health_debounce" yaml:"health_debounce"`
}

type ServerConfig struct {
	Addr            string   `json:"addr" toml:"addr" yaml:"addr"`
	CORSOrigins     []string `json:"cors_origins" toml:"cors_origins" yaml:"cors_origins"`
	ShutdownTimeout Duration `json:"shutdown_timeout" toml:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type LoggingConfig struct {
	Level  string         `json:"level" toml:"level" yaml:"level"`
	Format logging.Format `json:"format" toml:"format" yaml:"format"`
}

// ExportConfig selects the export archive. An empty SQLitePath keeps
// exports in memory.
type ExportConfig struct {
	SQLitePath string `json:"sqlite_path" toml:"sqlite_path" yaml:"sqlite_path"`
}

// TransportConfig selects the cross-app transports. Both may be set; every
// envelope is then posted to each.
type TransportConfig struct {
	NATSURL       string        `json:"nats_url" toml:"nats_url" yaml:"nats_url"`
	SubjectPrefix string        `json:"subject_prefix" toml:"subject_prefix" yaml:"subject_prefix"`
	RedisURL      string        `json:"redis_url" toml:"redis_url" yaml:"redis_url"`
	RedisChannel  string        `json:"redis_channel" toml:"redis_channel" yaml:"redis_channel"`
	Breaker       BreakerConfig `json:"breaker" toml:"breaker" yaml:"breaker"`
	RatePerSecond float64       `json:"rate_per_second" toml:"rate_per_second" yaml:"rate_per_second"`
	RateBurst     int           `json:"rate_burst" toml:"rate_burst" yaml:"rate_burst"`
}

type BreakerConfig struct {
	ConsecutiveFailures uint32   `json:"consecutive_failures" toml:"consecutive_failures" yaml:"consecutive_failures"`
	Timeout             Duration `json:"timeout" toml:"timeout" yaml:"timeout"`
}

// AssistantConfig configures the OpenAI-compatible assistant. The AI
// slice stays disabled without an API key.
type AssistantConfig struct {
	APIKey    string `json:"api_key" toml:"api_key" yaml:"api_key"`
	BaseURL   string `json:"base_url" toml:"base_url" yaml:"base_url"`
	Model     string `json:"model" toml:"model" yaml:"model"`
	MaxTokens int    `json:"max_tokens" toml:"max_tokens" yaml:"max_tokens"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	p := ups.DefaultConfig()
	return Config{
		Provider: ProviderConfig{
			EnabledFeatures: feature.DefaultEnabled(),
			Theme:           p.Theme,
			APIEndpoint:     p.APIEndpoint,
			HealthInterval:  Duration(p.HealthInterval),
			HealthDebounce:  Duration(p.HealthDebounce),
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: logging.FormatJSON,
		},
		Transport: TransportConfig{
			SubjectPrefix: "ups",
			RedisChannel:  "ups:broadcast",
			Breaker: BreakerConfig{
				ConsecutiveFailures: 5,
				Timeout:             Duration(30 * time.Second),
			},
			RatePerSecond: 50,
			RateBurst:     100,
		},
		Assistant: AssistantConfig{
			MaxTokens: 512,
		},
	}
}

// UPS converts the provider section for ups.NewProvider.
func (c Config) UPS() ups.Config {
	p := c.Provider
	return ups.Config{
		ProjectID:       p.ProjectID,
		UserID:          p.UserID,
		EnabledFeatures: p.EnabledFeatures,
		RealTimeEnabled: p.RealTimeEnabled,
		AIEnabled:       p.AIEnabled,
		Theme:           p.Theme,
		APIEndpoint:     p.APIEndpoint,
		WSEndpoint:      p.WSEndpoint,
		Debug:           p.Debug,
		HealthInterval:  p.HealthInterval.Std(),
		HealthDebounce:  p.HealthDebounce.Std(),
	}
}

// Validate reports every problem found, joined.
func (c Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if err := c.UPS().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: provider: %w", ErrInvalid, err))
	}
	for _, name := range c.Provider.EnabledFeatures {
		if !feature.IsKnown(name) {
			add("provider: unknown feature %q", name)
		}
	}
	if c.Server.Addr == "" {
		add("server.addr is required")
	}
	if c.Server.ShutdownTimeout < 0 {
		add("server.shutdown_timeout must not be negative")
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		add("logging: %v", err)
	}
	switch c.Logging.Format {
	case "", logging.FormatJSON, logging.FormatConsole:
	default:
		add("logging: unknown format %q", c.Logging.Format)
	}
	if c.Transport.RatePerSecond < 0 || c.Transport.RateBurst < 0 {
		add("transport: rate limits must not be negative")
	}
	if c.Transport.RatePerSecond > 0 && c.Transport.RateBurst == 0 {
		add("transport: rate_burst is required with rate_per_second")
	}
	if c.Transport.Breaker.Timeout < 0 {
		add("transport.breaker.timeout must not be negative")
	}
	if c.Provider.AIEnabled && c.Assistant.APIKey == "" {
		add("provider.ai_enabled requires assistant.api_key")
	}
	return errors.Join(errs...)
}
