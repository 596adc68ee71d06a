package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Authentication modes for the ArcGIS platform.
const (
	AuthUser = "user"
	AuthApp  = "app"
)

// ArcGISConfig holds the ArcGIS Online endpoints and credentials.
type ArcGISConfig struct {
	// AuthMode is "user" (generateToken with a named user) or "app"
	// (OAuth2 client credentials).
	AuthMode string `json:"auth_mode"`
	// Profile names the keyring service holding the user's password.
	Profile      string `json:"profile"`
	Username     string `json:"username"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Referer      string `json:"referer"`

	PortalURL     string `json:"portal_url"`
	GeocodeURL    string `json:"geocode_url"`
	RouteUtilsURL string `json:"route_utilities_url"`
	SourceCountry string `json:"source_country"`
	Category      string `json:"category"`
	TravelMode    string `json:"travel_mode"`

	TokenExpirationMinutes int `json:"token_expiration_minutes"`
	BatchSize              int `json:"batch_size"`
	GeocodeConcurrency     int `json:"geocode_concurrency"`
	PollIntervalSeconds    int `json:"poll_interval_seconds"`
	JobTimeoutMinutes      int `json:"job_timeout_minutes"`
	HTTPTimeoutSeconds     int `json:"http_timeout_seconds"`
}

// SetDefaults applies the ArcGIS Online public endpoints and the default
// batch, polling and timeout settings.
func (c *ArcGISConfig) SetDefaults() {
	if c.AuthMode == "" {
		c.AuthMode = AuthUser
	}
	if c.PortalURL == "" {
		c.PortalURL = "https://www.arcgis.com"
	}
	if c.Referer == "" {
		c.Referer = "https://arcgis.com"
	}
	if c.GeocodeURL == "" {
		c.GeocodeURL = "https://geocode.arcgis.com/arcgis/rest/services/World/GeocodeServer"
	}
	if c.RouteUtilsURL == "" {
		c.RouteUtilsURL = "https://route.arcgis.com/arcgis/rest/services/World/Utilities/GPServer"
	}
	if c.SourceCountry == "" {
		c.SourceCountry = "USA"
	}
	if c.Category == "" {
		c.Category = "Address"
	}
	if c.TravelMode == "" {
		c.TravelMode = "Driving Distance"
	}
	if c.TokenExpirationMinutes <= 0 {
		c.TokenExpirationMinutes = 120
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 150
	}
	if c.GeocodeConcurrency <= 0 {
		c.GeocodeConcurrency = 2
	}
	if c.PollIntervalSeconds <= 0 {
		c.PollIntervalSeconds = 3
	}
	if c.JobTimeoutMinutes <= 0 {
		c.JobTimeoutMinutes = 30
	}
	if c.HTTPTimeoutSeconds <= 0 {
		c.HTTPTimeoutSeconds = 60
	}
	c.PortalURL = strings.TrimSuffix(c.PortalURL, "/")
	c.GeocodeURL = strings.TrimSuffix(c.GeocodeURL, "/")
	c.RouteUtilsURL = strings.TrimSuffix(c.RouteUtilsURL, "/")
}

// Validate checks the credentials required by the selected auth mode.
func (c ArcGISConfig) Validate() error {
	switch c.AuthMode {
	case AuthUser:
		if c.Username == "" {
			return errors.New("username is required for auth_mode user")
		}
	case AuthApp:
		if c.ClientID == "" || c.ClientSecret == "" {
			return errors.New("client_id and client_secret are required for auth_mode app")
		}
	default:
		return fmt.Errorf("unknown auth_mode %q", c.AuthMode)
	}
	return nil
}

// KeyringService returns the keyring service name, defaulting to the
// username when no profile is configured.
func (c ArcGISConfig) KeyringService() string {
	if c.Profile != "" {
		return c.Profile
	}
	return c.Username
}

func (c ArcGISConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

func (c ArcGISConfig) JobTimeout() time.Duration {
	return time.Duration(c.JobTimeoutMinutes) * time.Minute
}

func (c ArcGISConfig) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}
