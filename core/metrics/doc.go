// Package metrics defines the events emitted by the commute and report
// pipelines and the sinks recording them. Every sink implements MetricsSink;
// the narrower recorder interfaces are optional and detected with type
// assertions, so a sink only handles the events it cares about. Sinks are
// built from configuration through NewMetricsSink, which returns a MultiSink
// when several are configured.
package metrics
