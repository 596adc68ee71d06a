package monitoring

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type captured struct {
	errs   []error
	tags   []map[string]string
	crumbs []string
}

func (c *captured) CaptureException(err error, tags map[string]string) {
	c.errs = append(c.errs, err)
	c.tags = append(c.tags, tags)
}

func (c *captured) AddBreadcrumb(category, message string, _ map[string]any) {
	c.crumbs = append(c.crumbs, category+": "+message)
}

func (c *captured) Flush(time.Duration) bool { return true }

func TestCaptureCommand(t *testing.T) {
	c := &captured{}
	Init(c)
	defer Init(NopMonitor{})

	CaptureCommand("commute", errors.New("geocode failed"))
	CaptureCommand("report", nil)

	assert.Len(t, c.errs, 1)
	assert.Equal(t, "commute", c.tags[0]["command"])
}

func TestBreadcrumb(t *testing.T) {
	c := &captured{}
	Init(c)
	defer Init(NopMonitor{})

	Breadcrumb("commute", "geocoded", map[string]any{"locations": 4})
	Breadcrumb("commute", "routed", nil)
	assert.Equal(t, []string{"commute: geocoded", "commute: routed"}, c.crumbs)
	assert.True(t, Flush(time.Millisecond))
}

func TestInitIgnoresNil(t *testing.T) {
	Init(nil)
	assert.NotPanics(t, func() {
		CaptureException(errors.New("x"), nil)
		Breadcrumb("x", "y", nil)
	})
}
