package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/telework/core/factory"
	"github.com/kilianp07/telework/core/metrics"
	"github.com/kilianp07/telework/infra/logger"
	"github.com/kilianp07/telework/infra/mqtt"
)

// EnvPrefix prefixes environment overrides. TW_ARCGIS__USERNAME overrides
// arcgis.username.
const EnvPrefix = "TW_"

type Config struct {
	ArcGIS  ArcGISConfig   `json:"arcgis"`
	Roster  RosterConfig   `json:"roster"`
	Commute CommuteConfig  `json:"commute"`
	Report  ReportConfig   `json:"report"`
	Store   StoreConfig    `json:"store"`
	Metrics metrics.Config `json:"metrics"`
	Logging logger.Config  `json:"logging"`
	Sentry  SentryConfig   `json:"sentry"`
	MQTT    mqtt.Config    `json:"mqtt"`
}

// StoreConfig locates the SQLite database caching geocodes and commute
// history. An empty path disables the store.
type StoreConfig struct {
	Path string `json:"path"`
}

// Load reads the YAML or JSON file at path, applies environment overrides
// and defaults, and validates the sections shared by every command. An empty
// path reads the environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every section's defaults.
func (c *Config) SetDefaults() {
	c.ArcGIS.SetDefaults()
	c.Roster.SetDefaults()
	c.Commute.SetDefaults()
	c.Report.SetDefaults()
	c.Sentry.SetDefaults()
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks the sections every command depends on.
func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return prefix("sentry", c.Sentry.Validate())
}

// ValidateCommute checks the settings required by the commute pipeline.
func (c *Config) ValidateCommute() error {
	return errors.Join(
		prefix("arcgis", c.ArcGIS.Validate()),
		prefix("roster", c.Roster.Validate()),
		prefix("commute", c.Commute.Validate()),
	)
}

// ValidateReport checks the settings required by the telework report.
func (c *Config) ValidateReport() error {
	return prefix("report", c.Report.Validate())
}

func prefix(section string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", section, err)
}

// Redacted returns a copy of c with credentials masked, for display.
func (c Config) Redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "****"
	}
	c.ArcGIS.ClientSecret = mask(c.ArcGIS.ClientSecret)
	c.MQTT.Password = mask(c.MQTT.Password)
	c.Sentry.DSN = mask(c.Sentry.DSN)

	sinks := make([]factory.ModuleConfig, len(c.Metrics.Sinks))
	for i, s := range c.Metrics.Sinks {
		conf := make(map[string]any, len(s.Conf))
		for k, v := range s.Conf {
			if strings.Contains(strings.ToLower(k), "token") || strings.Contains(strings.ToLower(k), "password") {
				v = "****"
			}
			conf[k] = v
		}
		sinks[i] = factory.ModuleConfig{Type: s.Type, Conf: conf}
	}
	c.Metrics.Sinks = sinks
	return c
}
