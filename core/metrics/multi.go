package metrics

import "errors"

// MultiSink fans events out to several sinks. Every sink receives the event
// even if an earlier one fails; the errors are joined.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

func (m *MultiSink) RecordCommuteRun(ev CommuteRunEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		errs = append(errs, s.RecordCommuteRun(ev))
	}
	return errors.Join(errs...)
}

// RecordGeocodeBatch forwards to sinks implementing GeocodeRecorder.
func (m *MultiSink) RecordGeocodeBatch(ev GeocodeBatchEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(GeocodeRecorder); ok {
			errs = append(errs, rec.RecordGeocodeBatch(ev))
		}
	}
	return errors.Join(errs...)
}

// RecordRoutingJob forwards to sinks implementing RoutingJobRecorder.
func (m *MultiSink) RecordRoutingJob(ev RoutingJobEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(RoutingJobRecorder); ok {
			errs = append(errs, rec.RecordRoutingJob(ev))
		}
	}
	return errors.Join(errs...)
}

// RecordReport forwards to sinks implementing ReportRecorder.
func (m *MultiSink) RecordReport(ev ReportEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(ReportRecorder); ok {
			errs = append(errs, rec.RecordReport(ev))
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink that holds resources.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
