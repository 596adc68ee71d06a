package app

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/telework/arcgis"
	"github.com/kilianp07/telework/config"
	"github.com/kilianp07/telework/core/factory"
	coremetrics "github.com/kilianp07/telework/core/metrics"
	coremqtt "github.com/kilianp07/telework/core/mqtt"
	"github.com/kilianp07/telework/infra/mqtt"
	"github.com/kilianp07/telework/internal/testutil"
	"github.com/kilianp07/telework/pkg/export"
)

const roster = `Employee_Number,Work_Address,Work_City,Work_State,Work_Zip,Home_Address,Home_City,Home_State,Home_Zip
1,380 New York St,Redlands,CA,92373,1 Yucaipa Blvd,Yucaipa,CA,92399
2,380 New York St,Redlands,CA,92373,,,,
`

const status = `Employee_Number,Employee_Name,Date,Status
1,Ada,2024-03-11,Telework
1,Ada,2024-03-12,Office
2,Grace,2024-03-11,Remote
`

func newService(t *testing.T) (*Service, *arcgis.MockServer) {
	t.Helper()
	m := arcgis.NewMockServer()
	t.Cleanup(m.Close)
	m.Match("380 New York St", -117.1956, 34.0564, 100)
	m.Match("1 Yucaipa Blvd", -117.0431, 34.0336, 100)

	dir := t.TempDir()
	rosterPath := filepath.Join(dir, "roster.csv")
	statusPath := filepath.Join(dir, "status.csv")
	require.NoError(t, os.WriteFile(rosterPath, []byte(roster), 0o600))
	require.NoError(t, os.WriteFile(statusPath, []byte(status), 0o600))

	cfg := &config.Config{
		ArcGIS:  m.Config(),
		Roster:  config.RosterConfig{Path: rosterPath},
		Commute: config.CommuteConfig{Output: filepath.Join(dir, "commute.csv")},
		Report: config.ReportConfig{
			StatusPath:            statusPath,
			CommutePath:           filepath.Join(dir, "commute.csv"),
			OutputDir:             filepath.Join(dir, "report"),
			AverageCommuteMiles:   10,
			AverageCommuteMinutes: 15,
		},
		Store: config.StoreConfig{Path: filepath.Join(dir, "telework.db")},
	}
	cfg.SetDefaults()
	cfg.ArcGIS.PollIntervalSeconds = 1

	svc, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	svc.newTokens = func(config.ArcGISConfig, *http.Client) (arcgis.TokenSource, error) {
		return arcgis.StaticToken("tok"), nil
	}
	return svc, m
}

func TestServiceDefaults(t *testing.T) {
	svc, _ := newService(t)
	assert.IsType(t, coremetrics.NopSink{}, svc.Sink)
	assert.IsType(t, coremqtt.NopPublisher{}, svc.Publisher)
}

func TestServiceCommuteThenReport(t *testing.T) {
	svc, m := newService(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sum, err := svc.Commute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Employees)
	assert.Equal(t, 1, sum.Routed)
	assert.Equal(t, 1, sum.Flagged)
	assert.Equal(t, 1, m.Stats().SubmitRequests)

	h, err := svc.History(ctx, "1")
	require.NoError(t, err)
	require.Len(t, h, 1)
	assert.Equal(t, sum.RunID, h[0].RunID)
	miles := h[0].Miles
	assert.Greater(t, miles, 0.0)

	res, err := svc.Report(ctx)
	require.NoError(t, err)
	require.Len(t, res.Outputs, 4)
	assert.FileExists(t, filepath.Join(svc.cfg.Report.OutputDir, export.DashboardFile))

	s := res.Report.Summary
	assert.Equal(t, 2, s.Employees)
	assert.Equal(t, 2, s.TeleworkDays)
	assert.Equal(t, 1, s.Estimated)
	assert.InDelta(t, 2*miles+2*10, s.MilesAvoided, 1e-6)
}

func TestServiceCommuteInvalidConfig(t *testing.T) {
	svc, _ := newService(t)
	svc.cfg.Roster.Path = ""
	_, err := svc.Commute(context.Background())
	assert.ErrorContains(t, err, "roster")
}

func TestServiceReportMissingStatus(t *testing.T) {
	svc, _ := newService(t)
	svc.cfg.Report.StatusPath = filepath.Join(t.TempDir(), "missing.xlsx")
	_, err := svc.Report(context.Background())
	assert.Error(t, err)
}

func TestServiceMetricsServer(t *testing.T) {
	addr, err := testutil.FreeAddr()
	require.NoError(t, err)

	svc, _ := newService(t)
	svc.cfg.Metrics = coremetrics.Config{
		Sinks:          []factory.ModuleConfig{{Type: "prometheus"}},
		PrometheusAddr: addr,
	}
	sink, err := coremetrics.NewMetricsSink(svc.cfg.Metrics.Sinks)
	require.NoError(t, err)
	svc.Sink = sink

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	svc.StartMetricsServer(ctx)

	_, err = svc.Commute(ctx)
	require.NoError(t, err)
	_, err = svc.Report(ctx)
	require.NoError(t, err)
	require.NoError(t, testutil.WaitForMetric(ctx, "http://"+addr+"/metrics", "telework_report_days 2"))
}

var closedSinks atomic.Int32

type closingSink struct{ coremetrics.NopSink }

func (closingSink) Close() { closedSinks.Add(1) }

func init() {
	_ = coremetrics.RegisterMetricsSink("closing", func(map[string]any) (coremetrics.MetricsSink, error) {
		return closingSink{}, nil
	})
}

func TestNewClosesSinkOnFailure(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]func(cfg *config.Config){
		"store": func(cfg *config.Config) {
			cfg.Store.Path = filepath.Join(dir, "missing", "telework.db")
		},
		"mqtt": func(cfg *config.Config) {
			cfg.MQTT = mqtt.Config{Broker: "tcp://127.0.0.1:1", UseTLS: true, CABundle: filepath.Join(dir, "missing.pem")}
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.SetDefaults()
			cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "closing"}}
			mutate(cfg)

			before := closedSinks.Load()
			_, err := New(cfg)
			require.ErrorContains(t, err, name)
			assert.Equal(t, before+1, closedSinks.Load())
		})
	}
}
