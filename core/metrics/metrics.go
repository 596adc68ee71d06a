package metrics

import "time"

// CommuteRunEvent summarizes one execution of the commute pipeline.
type CommuteRunEvent struct {
	RunID     string
	Employees int
	Routed    int
	Flagged   int
	Cached    int
	Duration  time.Duration
	Err       string
	Time      time.Time
}

// MetricsSink records pipeline outcomes for observability purposes.
type MetricsSink interface {
	RecordCommuteRun(ev CommuteRunEvent) error
}

// GeocodeBatchEvent captures one geocodeAddresses request.
type GeocodeBatchEvent struct {
	RunID     string
	Batch     int
	Records   int
	Unmatched int
	Duration  time.Duration
	Err       string
	Time      time.Time
}

// GeocodeRecorder records geocoding batches.
type GeocodeRecorder interface {
	RecordGeocodeBatch(ev GeocodeBatchEvent) error
}

// RoutingJobEvent captures the lifecycle of an asynchronous routing job.
type RoutingJobEvent struct {
	RunID    string
	JobID    string
	Status   string
	Polls    int
	Routes   int
	Duration time.Duration
	Time     time.Time
}

// RoutingJobRecorder records routing jobs.
type RoutingJobRecorder interface {
	RecordRoutingJob(ev RoutingJobEvent) error
}

// ReportEvent summarizes a generated telework report.
type ReportEvent struct {
	WeekStart      time.Time
	Employees      int
	TeleworkDays   int
	MilesAvoided   float64
	MinutesAvoided float64
	Outliers       int
	Estimated      int
	Time           time.Time
}

// ReportRecorder records telework report summaries.
type ReportRecorder interface {
	RecordReport(ev ReportEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordCommuteRun(CommuteRunEvent) error     { return nil }
func (NopSink) RecordGeocodeBatch(GeocodeBatchEvent) error { return nil }
func (NopSink) RecordRoutingJob(RoutingJobEvent) error     { return nil }
func (NopSink) RecordReport(ReportEvent) error             { return nil }
