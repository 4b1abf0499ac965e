package ups

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kazi-app/ups/internal/feature"
)

// DefaultHealthInterval is the period of the health loop.
const DefaultHealthInterval = 30 * time.Second

// DefaultHealthDebounce groups health checks triggered by bursts of
// connection and error events.
const DefaultHealthDebounce = 250 * time.Millisecond

// Config is accepted at provider construction. Every field is optional.
type Config struct {
	ProjectID       string        `json:"project_id" toml:"project_id" yaml:"project_id"`
	UserID          string        `json:"user_id" toml:"user_id" yaml:"user_id"`
	EnabledFeatures []string      `json:"enabled_features" toml:"enabled_features" yaml:"enabled_features"`
	RealTimeEnabled bool          `json:"realtime_enabled" toml:"realtime_enabled" yaml:"realtime_enabled"`
	AIEnabled       bool          `json:"ai_enabled" toml:"ai_enabled" yaml:"ai_enabled"`
	Theme           string        `json:"theme" toml:"theme" yaml:"theme"`
	APIEndpoint     string        `json:"api_endpoint" toml:"api_endpoint" yaml:"api_endpoint"`
	WSEndpoint      string        `json:"ws_endpoint" toml:"ws_endpoint" yaml:"ws_endpoint"`
	Debug           bool          `json:"debug" toml:"debug" yaml:"debug"`
	HealthInterval  time.Duration `json:"health_interval" toml:"health_interval" yaml:"health_interval"`
	HealthDebounce  time.Duration `json:"health_debounce" toml:"health_debounce" yaml:"health_debounce"`
}

// DefaultConfig returns the defaults used for zero fields.
func DefaultConfig() Config {
	return Config{
		EnabledFeatures: feature.DefaultEnabled(),
		Theme:           "system",
		APIEndpoint:     "/api",
		HealthInterval:  DefaultHealthInterval,
		HealthDebounce:  DefaultHealthDebounce,
	}
}

var themes = []string{"system", "light", "dark"}

// withDefaults fills zero fields. EnabledFeatures is only defaulted when
// nil, so an explicit empty list disables everything.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.EnabledFeatures == nil {
		c.EnabledFeatures = d.EnabledFeatures
	}
	if c.Theme == "" {
		c.Theme = d.Theme
	}
	if c.APIEndpoint == "" {
		c.APIEndpoint = d.APIEndpoint
	}
	if c.HealthInterval == 0 {
		c.HealthInterval = d.HealthInterval
	}
	if c.HealthDebounce == 0 {
		c.HealthDebounce = d.HealthDebounce
	}
	return c
}

// Validate reports configuration that cannot work.
func (c Config) Validate() error {
	if c.HealthInterval < 0 {
		return fmt.Errorf("%w: health_interval must be positive", ErrInvalidConfig)
	}
	if c.HealthDebounce < 0 {
		return fmt.Errorf("%w: health_debounce must not be negative", ErrInvalidConfig)
	}
	if c.Theme != "" && !slices.Contains(themes, c.Theme) {
		return fmt.Errorf("%w: theme %q is not one of %s", ErrInvalidConfig, c.Theme, strings.Join(themes, ", "))
	}
	return nil
}
