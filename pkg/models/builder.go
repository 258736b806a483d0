package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type MessageEnvelopeBuilder struct {
	envelope *MessageEnvelope
	err      error
}

func NewMessageEnvelopeBuilder() *MessageEnvelopeBuilder {
	return &MessageEnvelopeBuilder{
		envelope: &MessageEnvelope{
			Payload: make(map[string]any),
		},
	}
}

func (b *MessageEnvelopeBuilder) WithID(id string) *MessageEnvelopeBuilder {
	b.envelope.ID = id
	return b
}

func (b *MessageEnvelopeBuilder) WithSource(source string) *MessageEnvelopeBuilder {
	b.envelope.Source = source
	return b
}

func (b *MessageEnvelopeBuilder) WithEventType(eventType string) *MessageEnvelopeBuilder {
	b.envelope.EventType = eventType
	return b
}

func (b *MessageEnvelopeBuilder) WithTimestamp(timestamp time.Time) *MessageEnvelopeBuilder {
	b.envelope.Timestamp = timestamp
	return b
}

// WithEvent stores v as the payload, going through its JSON form so field
// names on the wire match the struct tags.
func (b *MessageEnvelopeBuilder) WithEvent(v any) *MessageEnvelopeBuilder {
	payload, err := ToPayload(v)
	if err != nil {
		b.err = err
		return b
	}
	b.envelope.Payload = payload
	return b
}

func (b *MessageEnvelopeBuilder) WithTraceID(traceID string) *MessageEnvelopeBuilder {
	b.envelope.Metadata.TraceID = traceID
	return b
}

func (b *MessageEnvelopeBuilder) WithAttribute(key, value string) *MessageEnvelopeBuilder {
	if b.envelope.Metadata.Attributes == nil {
		b.envelope.Metadata.Attributes = make(map[string]string)
	}
	b.envelope.Metadata.Attributes[key] = value
	return b
}

func (b *MessageEnvelopeBuilder) Build() (MessageEnvelope, error) {
	if b.err != nil {
		return MessageEnvelope{}, b.err
	}
	if b.envelope.Timestamp.IsZero() {
		b.envelope.Timestamp = time.Now().UTC()
	}
	if err := ValidateMessageEnvelope(b.envelope); err != nil {
		return MessageEnvelope{}, err
	}
	return *b.envelope, nil
}

func ToPayload(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("event is not a JSON object: %w", err)
	}
	return payload, nil
}
