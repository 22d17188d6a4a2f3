package service

import (
	"context"
	"encoding/json"
	"time"
)

// Event is an integration event relayed to the automation tooling (n8n) or a queue.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	RequestID  string          `json:"request_id,omitempty"` // For distributed tracing
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// Publish delivers the event to the configured sink
	Publish(ctx context.Context, event *Event) error

	// Close releases any resources held by the publisher
	Close() error
}
