package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/telework/core/factory"
)

type runOnlySink struct{ runs int }

func (r *runOnlySink) RecordCommuteRun(CommuteRunEvent) error {
	r.runs++
	return nil
}

type recordSink struct {
	runOnlySink
	batches int
	reports int
	fail    bool
}

func (r *recordSink) RecordGeocodeBatch(GeocodeBatchEvent) error {
	r.batches++
	if r.fail {
		return errors.New("boom")
	}
	return nil
}

func (r *recordSink) RecordReport(ReportEvent) error {
	r.reports++
	return nil
}

func TestMultiSinkForwardsOptionalRecorders(t *testing.T) {
	s1 := &recordSink{}
	s2 := &runOnlySink{}
	m := NewMultiSink(s1, s2)

	require.NoError(t, m.RecordCommuteRun(CommuteRunEvent{}))
	require.NoError(t, m.RecordGeocodeBatch(GeocodeBatchEvent{}))
	require.NoError(t, m.RecordReport(ReportEvent{}))
	require.NoError(t, m.RecordRoutingJob(RoutingJobEvent{}))

	assert.Equal(t, 1, s1.runs)
	assert.Equal(t, 1, s2.runs)
	assert.Equal(t, 1, s1.batches)
	assert.Equal(t, 1, s1.reports)
}

func TestMultiSinkContinuesAfterError(t *testing.T) {
	failing := &recordSink{fail: true}
	ok := &recordSink{}
	m := NewMultiSink(failing, ok)
	err := m.RecordGeocodeBatch(GeocodeBatchEvent{})
	require.Error(t, err)
	assert.Equal(t, 1, ok.batches)
}

func TestNewMetricsSink(t *testing.T) {
	s, err := NewMetricsSink(nil)
	require.NoError(t, err)
	assert.IsType(t, NopSink{}, s)

	s, err = NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}})
	require.NoError(t, err)
	assert.IsType(t, NopSink{}, s)

	s, err = NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}, {Type: "nop"}})
	require.NoError(t, err)
	multi, ok := s.(*MultiSink)
	require.True(t, ok)
	assert.Len(t, multi.Sinks, 2)

	_, err = NewMetricsSink([]factory.ModuleConfig{{Type: "missing"}})
	assert.Error(t, err)
}

type closingSink struct {
	NopSink
	closed bool
}

func (c *closingSink) Close() { c.closed = true }

func TestNewMetricsSinkClosesBuiltSinksOnError(t *testing.T) {
	built := &closingSink{}
	require.NoError(t, RegisterMetricsSink("closing-test", func(map[string]any) (MetricsSink, error) {
		return built, nil
	}))
	assert.Contains(t, SinkTypes(), "closing-test")

	_, err := NewMetricsSink([]factory.ModuleConfig{{Type: "closing-test"}, {Type: "missing"}})
	assert.ErrorContains(t, err, "metrics sink 1 (missing)")
	assert.True(t, built.closed)
}
