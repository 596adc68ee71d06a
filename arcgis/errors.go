package arcgis

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTokenExpired is wrapped by APIError values carrying an invalid or
	// expired token code.
	ErrTokenExpired = errors.New("arcgis token invalid or expired")
	// ErrJobFailed is returned when an analysis job ends without results.
	ErrJobFailed = errors.New("arcgis analysis job failed")
	// ErrNoLocations is returned when the geocoder returns no candidates.
	ErrNoLocations = errors.New("geocoder returned no locations")
)

// Token error codes returned in the JSON error envelope.
const (
	CodeInvalidToken  = 498
	CodeTokenRequired = 499
)

// APIError is the {"error": {...}} envelope ArcGIS REST endpoints return,
// usually with an HTTP 200 status.
type APIError struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details"`
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("arcgis error %d: %s", e.Code, e.Message)
	if len(e.Details) > 0 {
		msg += " (" + strings.Join(e.Details, "; ") + ")"
	}
	return msg
}

// Unwrap lets errors.Is match ErrTokenExpired on token errors.
func (e *APIError) Unwrap() error {
	if e.TokenExpired() {
		return ErrTokenExpired
	}
	return nil
}

// TokenExpired reports whether a fresh token may fix the request.
func (e *APIError) TokenExpired() bool {
	return e.Code == CodeInvalidToken || e.Code == CodeTokenRequired
}

// errorEnvelope is embedded in every response type to detect errors.
type errorEnvelope struct {
	Error *APIError `json:"error,omitempty"`
}

func (e errorEnvelope) err() error {
	if e.Error == nil {
		return nil
	}
	return e.Error
}
