package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/kazi-app/ups/internal/logging"
)

// Load reads path on top of Default. The format follows the extension:
// .toml, .yaml/.yml or .json.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := decode(path, b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func decode(path string, b []byte, cfg *Config) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		return toml.Unmarshal(b, cfg)
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, cfg)
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	default:
		return fmt.Errorf("unsupported config extension %q", ext)
	}
}

// EncodeTOML renders cfg as TOML.
func EncodeTOML(cfg Config) ([]byte, error) {
	return toml.Marshal(cfg)
}

// ApplyEnv overrides settings from UPS_* environment variables.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"UPS_PROJECT_ID":      &c.Provider.ProjectID,
		"UPS_USER_ID":         &c.Provider.UserID,
		"UPS_THEME":           &c.Provider.Theme,
		"UPS_API_ENDPOINT":    &c.Provider.APIEndpoint,
		"UPS_WS_ENDPOINT":     &c.Provider.WSEndpoint,
		"UPS_ADDR":            &c.Server.Addr,
		"UPS_LOG_LEVEL":       &c.Logging.Level,
		"UPS_SQLITE_PATH":     &c.Export.SQLitePath,
		"UPS_NATS_URL":        &c.Transport.NATSURL,
		"UPS_REDIS_URL":       &c.Transport.RedisURL,
		"UPS_OPENAI_API_KEY":  &c.Assistant.APIKey,
		"UPS_OPENAI_BASE_URL": &c.Assistant.BaseURL,
		"UPS_OPENAI_MODEL":    &c.Assistant.Model,
	}
	for name, dst := range str {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}

	flags := map[string]*bool{
		"UPS_REALTIME": &c.Provider.RealTimeEnabled,
		"UPS_AI":       &c.Provider.AIEnabled,
		"UPS_DEBUG":    &c.Provider.Debug,
	}
	for name, dst := range flags {
		v, ok := lookup(name)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = b
	}

	if v, ok := lookup("UPS_LOG_FORMAT"); ok {
		c.Logging.Format = logging.Format(strings.ToLower(v))
	}
	if v, ok := lookup("UPS_FEATURES"); ok {
		c.Provider.EnabledFeatures = splitList(v)
	}
	if v, ok := lookup("UPS_CORS_ORIGINS"); ok {
		c.Server.CORSOrigins = splitList(v)
	}
	if v, ok := lookup("UPS_HEALTH_INTERVAL"); ok {
		if err := c.Provider.HealthInterval.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("UPS_HEALTH_INTERVAL: %w", err)
		}
	}
	return nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
