package models

import "time"

// MessageEnvelope is the broker wire format for every event the service emits.
type MessageEnvelope struct {
	ID        string         `json:"id"`
	Source    string         `json:"source"`
	EventType string         `json:"event_type"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload"`
	Metadata  Metadata       `json:"metadata"`
}

type Metadata struct {
	TraceID    string            `json:"trace_id,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}
