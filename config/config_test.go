package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/telework/core/factory"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

//nolint:gocyclo
func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `arcgis:
  username: "gis_admin"
  profile: "agol"
  poll_interval_seconds: 5
roster:
  path: "workers.csv"
  employee_number_field: "EmpNo"
commute:
  output: "out/commute.csv"
  extra_formats: ["xlsx"]
report:
  status_path: "status.xlsx"
  average_commute_miles: 14.5
  average_commute_minutes: 27
  outlier_limit_miles: 90
metrics:
  sinks:
    - type: "nop"
logging:
  level: "debug"
mqtt:
  broker: "tcp://localhost:1883"
  topic_prefix: "hr/telework"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"username", cfg.ArcGIS.Username, "gis_admin"},
		{"keyring", cfg.ArcGIS.KeyringService(), "agol"},
		{"auth_mode default", cfg.ArcGIS.AuthMode, AuthUser},
		{"poll", cfg.ArcGIS.PollIntervalSeconds, 5},
		{"batch default", cfg.ArcGIS.BatchSize, 150},
		{"travel mode default", cfg.ArcGIS.TravelMode, "Driving Distance"},
		{"roster path", cfg.Roster.Path, "workers.csv"},
		{"employee field", cfg.Roster.EmployeeNumberField, "EmpNo"},
		{"work zip default", cfg.Roster.WorkZipField, "Work_Zip"},
		{"commute output", cfg.Commute.Output, "out/commute.csv"},
		{"commute xlsx", cfg.Commute.OutputFor("xlsx"), "out/commute.xlsx"},
		{"avg miles", cfg.Report.AverageCommuteMiles, 14.5},
		{"outlier", cfg.Report.OutlierLimitMiles, 90.0},
		{"report commute default", cfg.Report.CommutePath, "commute.csv"},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"log level", cfg.Logging.Level, "debug"},
		{"mqtt broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"mqtt prefix", cfg.MQTT.TopicPrefix, "hr/telework"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
	assert.NoError(t, cfg.ValidateCommute())
	assert.NoError(t, cfg.ValidateReport())
}

func TestLoadJSONWithEnvOverride(t *testing.T) {
	path := writeConfig(t, "config.json", `{"arcgis":{"username":"a"},"roster":{"path":"r.csv"}}`)
	t.Setenv("TW_ARCGIS__USERNAME", "from-env")
	t.Setenv("TW_REPORT__AVERAGE_COMMUTE_MILES", "12.5")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.ArcGIS.Username)
	assert.Equal(t, 12.5, cfg.Report.AverageCommuteMiles)
}

func TestLoadEnvOnly(t *testing.T) {
	t.Setenv("TW_REPORT__STATUS_PATH", "status.xlsx")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "status.xlsx", cfg.Report.StatusPath)
	assert.Equal(t, "commute.csv", cfg.Commute.Output)
	assert.NoError(t, cfg.ValidateReport())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(writeConfig(t, "config.toml", "x = 1"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "config.yaml", "logging:\n  level: loud\n"))
	assert.Error(t, err)
}

func TestValidateCommute(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()
	err := cfg.ValidateCommute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "arcgis: username is required")
	assert.Contains(t, err.Error(), "roster: path is required")

	cfg.ArcGIS.AuthMode = AuthApp
	cfg.ArcGIS.ClientID = "id"
	cfg.ArcGIS.ClientSecret = "secret"
	cfg.Roster.Path = "r.xlsx"
	assert.NoError(t, cfg.ValidateCommute())

	cfg.Roster.HomeZipField = cfg.Roster.WorkZipField
	assert.Error(t, cfg.ValidateCommute())
}

func TestValidateReport(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()
	assert.Error(t, cfg.ValidateReport())

	cfg.Report.StatusPath = "status.csv"
	assert.NoError(t, cfg.ValidateReport())

	cfg.Report.AverageCommuteMiles = -1
	assert.Error(t, cfg.ValidateReport())

	cfg.Report.AverageCommuteMiles = 10
	cfg.Report.Formats = []string{"pdf"}
	assert.Error(t, cfg.ValidateReport())
}

func TestReportOutlierLimit(t *testing.T) {
	r := ReportConfig{StatusPath: "status.csv"}
	r.SetDefaults()
	assert.Equal(t, 100.0, r.OutlierLimitMiles)
	assert.NoError(t, r.Validate())

	r = ReportConfig{StatusPath: "status.csv", OutlierLimitMiles: -5}
	r.SetDefaults()
	assert.Equal(t, -5.0, r.OutlierLimitMiles)
	assert.ErrorContains(t, r.Validate(), "outlier_limit_miles must be positive")
}

func TestIsTelework(t *testing.T) {
	var c ReportConfig
	c.SetDefaults()
	assert.True(t, c.IsTelework(" Telework "))
	assert.True(t, c.IsTelework("TW"))
	assert.False(t, c.IsTelework("Office"))
	assert.False(t, c.IsTelework(""))
}

func TestRedacted(t *testing.T) {
	var c Config
	c.ArcGIS.ClientID = "app"
	c.ArcGIS.ClientSecret = "s3cret"
	c.Sentry.DSN = "https://key@sentry.example.com/1"
	c.Metrics.Sinks = []factory.ModuleConfig{{Type: "influx", Conf: map[string]any{"url": "http://influx", "token": "abc"}}}

	r := c.Redacted()
	assert.Equal(t, "app", r.ArcGIS.ClientID)
	assert.Equal(t, "****", r.ArcGIS.ClientSecret)
	assert.Equal(t, "****", r.Sentry.DSN)
	assert.Empty(t, r.MQTT.Password)
	assert.Equal(t, "****", r.Metrics.Sinks[0].Conf["token"])
	assert.Equal(t, "http://influx", r.Metrics.Sinks[0].Conf["url"])
	assert.Equal(t, "abc", c.Metrics.Sinks[0].Conf["token"], "original left untouched")
}
