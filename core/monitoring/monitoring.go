// Package monitoring forwards command failures to an error tracker. The
// tracker is process-wide: cmd installs it once and every package reports
// through the package functions.
package monitoring

import "time"

// Monitor receives failures and the breadcrumbs that led to them.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	AddBreadcrumb(category, message string, data map[string]any)
	Flush(timeout time.Duration) bool
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string)    {}
func (NopMonitor) AddBreadcrumb(string, string, map[string]any) {}
func (NopMonitor) Flush(time.Duration) bool                     { return true }

var current Monitor = NopMonitor{}

// Init installs m. A nil monitor is ignored.
func Init(m Monitor) {
	if m != nil {
		current = m
	}
}

// CaptureException records err with optional tags.
func CaptureException(err error, tags map[string]string) {
	if err != nil {
		current.CaptureException(err, tags)
	}
}

// CaptureCommand records a failed CLI command, tagging it with the command
// name so commute and report failures can be told apart.
func CaptureCommand(command string, err error) {
	CaptureException(err, map[string]string{"command": command})
}

// Breadcrumb marks a pipeline stage. Breadcrumbs are attached to the next
// captured failure.
func Breadcrumb(category, message string, data map[string]any) {
	current.AddBreadcrumb(category, message, data)
}

// Flush waits up to d for buffered events and reports whether they were sent.
func Flush(d time.Duration) bool {
	return current.Flush(d)
}
