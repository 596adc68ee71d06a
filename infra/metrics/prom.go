package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/telework/core/metrics"
)

// PromSink records pipeline events in Prometheus metrics.
type PromSink struct {
	runs         *prometheus.CounterVec
	employees    *prometheus.GaugeVec
	geocoded     *prometheus.CounterVec
	geocodeTime  prometheus.Histogram
	jobs         *prometheus.CounterVec
	jobDuration  prometheus.Histogram
	milesAvoided prometheus.Gauge
	teleworkDays prometheus.Gauge
}

// NewPromSink registers metrics on the default Prometheus registerer. Use
// StartPromServer to expose them.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "telework_commute_runs_total",
			Help: "Commute pipeline executions",
		}, []string{"success"}),
		employees: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "telework_commute_employees",
			Help: "Employees processed by the last commute run",
		}, []string{"state"}),
		geocoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "telework_geocode_records_total",
			Help: "Addresses sent to the geocoder",
		}, []string{"matched"}),
		geocodeTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "telework_geocode_batch_seconds",
			Help:    "Duration of geocodeAddresses requests",
			Buckets: prometheus.DefBuckets,
		}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "telework_routing_jobs_total",
			Help: "Routing analysis jobs by final status",
		}, []string{"status"}),
		jobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "telework_routing_job_seconds",
			Help:    "Time from job submission to completion",
			Buckets: prometheus.ExponentialBuckets(5, 2, 10),
		}),
		milesAvoided: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "telework_report_miles_avoided",
			Help: "Commute miles avoided in the last report",
		}),
		teleworkDays: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "telework_report_days",
			Help: "Telework days in the last report",
		}),
	}

	var err error
	if s.runs, err = register(reg, s.runs); err != nil {
		return nil, err
	}
	if s.employees, err = register(reg, s.employees); err != nil {
		return nil, err
	}
	if s.geocoded, err = register(reg, s.geocoded); err != nil {
		return nil, err
	}
	if s.geocodeTime, err = register(reg, s.geocodeTime); err != nil {
		return nil, err
	}
	if s.jobs, err = register(reg, s.jobs); err != nil {
		return nil, err
	}
	if s.jobDuration, err = register(reg, s.jobDuration); err != nil {
		return nil, err
	}
	if s.milesAvoided, err = register(reg, s.milesAvoided); err != nil {
		return nil, err
	}
	if s.teleworkDays, err = register(reg, s.teleworkDays); err != nil {
		return nil, err
	}
	return s, nil
}

// register returns the already registered collector when the same metric was
// registered by an earlier sink.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordCommuteRun counts the run and exposes the employee breakdown.
func (s *PromSink) RecordCommuteRun(ev coremetrics.CommuteRunEvent) error {
	s.runs.WithLabelValues(strconv.FormatBool(ev.Err == "")).Inc()
	s.employees.WithLabelValues("total").Set(float64(ev.Employees))
	s.employees.WithLabelValues("routed").Set(float64(ev.Routed))
	s.employees.WithLabelValues("flagged").Set(float64(ev.Flagged))
	s.employees.WithLabelValues("cached").Set(float64(ev.Cached))
	return nil
}

// RecordGeocodeBatch counts matched and unmatched addresses.
func (s *PromSink) RecordGeocodeBatch(ev coremetrics.GeocodeBatchEvent) error {
	s.geocoded.WithLabelValues("true").Add(float64(ev.Records - ev.Unmatched))
	s.geocoded.WithLabelValues("false").Add(float64(ev.Unmatched))
	s.geocodeTime.Observe(ev.Duration.Seconds())
	return nil
}

// RecordRoutingJob counts the job by status and observes its duration.
func (s *PromSink) RecordRoutingJob(ev coremetrics.RoutingJobEvent) error {
	s.jobs.WithLabelValues(ev.Status).Inc()
	s.jobDuration.Observe(ev.Duration.Seconds())
	return nil
}

// RecordReport sets the report gauges.
func (s *PromSink) RecordReport(ev coremetrics.ReportEvent) error {
	s.milesAvoided.Set(ev.MilesAvoided)
	s.teleworkDays.Set(float64(ev.TeleworkDays))
	return nil
}
