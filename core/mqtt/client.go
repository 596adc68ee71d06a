package mqtt

import "errors"

// ErrNotConnected is returned when publishing without a broker connection.
var ErrNotConnected = errors.New("mqtt client not connected")

// Publisher sends pipeline summaries to a message broker. Subtopics are
// appended to the configured topic prefix.
type Publisher interface {
	PublishJSON(subtopic string, v any) error
	Disconnect()
}

// NopPublisher drops every message. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishJSON(string, any) error { return nil }
func (NopPublisher) Disconnect()                   {}
