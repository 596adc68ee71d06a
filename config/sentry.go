package config

import "fmt"

// SentryConfig enables error reporting to Sentry. Reporting is off while
// DSN is empty.
type SentryConfig struct {
	DSN         string `json:"dsn"`
	Environment string `json:"environment"`
	Release     string `json:"release"`
	// SampleRate is the share of failures sent, 1 sends all of them.
	SampleRate float64 `json:"sample_rate"`
	// MaxBreadcrumbs caps the pipeline stages attached to an event.
	MaxBreadcrumbs int  `json:"max_breadcrumbs"`
	Debug          bool `json:"debug"`
}

func (c *SentryConfig) SetDefaults() {
	if c.Environment == "" {
		c.Environment = "production"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1
	}
	if c.MaxBreadcrumbs == 0 {
		c.MaxBreadcrumbs = 50
	}
}

func (c SentryConfig) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("sample_rate %v is outside [0,1]", c.SampleRate)
	}
	if c.MaxBreadcrumbs < 0 {
		return fmt.Errorf("max_breadcrumbs must not be negative")
	}
	return nil
}
