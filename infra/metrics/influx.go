package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/telework/core/metrics"
	"github.com/kilianp07/telework/infra/logger"
)

// InfluxSink writes pipeline events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordCommuteRun writes a commute_run point.
func (s *InfluxSink) RecordCommuteRun(ev coremetrics.CommuteRunEvent) error {
	p := write.NewPointWithMeasurement("commute_run").
		AddTag("run_id", ev.RunID).
		AddTag("success", strconv.FormatBool(ev.Err == "")).
		AddField("employees", ev.Employees).
		AddField("routed", ev.Routed).
		AddField("flagged", ev.Flagged).
		AddField("cached", ev.Cached).
		AddField("duration_s", round3(ev.Duration.Seconds())).
		SetTime(ev.Time)
	if ev.Err != "" {
		p = p.AddField("error", ev.Err)
	}
	return s.write(p)
}

// RecordGeocodeBatch writes a geocode_batch point.
func (s *InfluxSink) RecordGeocodeBatch(ev coremetrics.GeocodeBatchEvent) error {
	p := write.NewPointWithMeasurement("geocode_batch").
		AddTag("run_id", ev.RunID).
		AddTag("batch", strconv.Itoa(ev.Batch)).
		AddField("records", ev.Records).
		AddField("unmatched", ev.Unmatched).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000)).
		SetTime(ev.Time)
	if ev.Err != "" {
		p = p.AddField("error", ev.Err)
	}
	return s.write(p)
}

// RecordRoutingJob writes a routing_job point.
func (s *InfluxSink) RecordRoutingJob(ev coremetrics.RoutingJobEvent) error {
	p := write.NewPointWithMeasurement("routing_job").
		AddTag("run_id", ev.RunID).
		AddTag("job_id", ev.JobID).
		AddTag("status", ev.Status).
		AddField("polls", ev.Polls).
		AddField("routes", ev.Routes).
		AddField("duration_s", round3(ev.Duration.Seconds())).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordReport writes a telework_report point stamped with the report week.
func (s *InfluxSink) RecordReport(ev coremetrics.ReportEvent) error {
	p := write.NewPointWithMeasurement("telework_report").
		AddTag("week_start", ev.WeekStart.Format("2006-01-02")).
		AddField("employees", ev.Employees).
		AddField("telework_days", ev.TeleworkDays).
		AddField("miles_avoided", round3(ev.MilesAvoided)).
		AddField("minutes_avoided", round3(ev.MinutesAvoided)).
		AddField("outliers", ev.Outliers).
		AddField("estimated", ev.Estimated).
		SetTime(ev.Time)
	return s.write(p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
