// Package domain holds building blocks shared by the bounded contexts.
package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is a fact published on the event bus. The payload is kept as raw
// JSON so consumers can decode it into their own types.
type Event struct {
	ID            uuid.UUID       `json:"event_id"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	RoutingKey    string          `json:"routing_key"`
	OccurredAt    time.Time       `json:"occurred_at"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// NewEvent creates an event with a fresh id and the payload encoded as JSON.
func NewEvent(aggregateID, aggregateType, routingKey string, payload any) (Event, error) {
	event := Event{
		ID:            uuid.New(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		RoutingKey:    routingKey,
		OccurredAt:    time.Now().UTC(),
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Event{}, fmt.Errorf("encode %s payload: %w", routingKey, err)
		}
		event.Payload = raw
	}
	return event, nil
}

// Decode unmarshals the payload into v.
func (e Event) Decode(v any) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("event %s has no payload", e.RoutingKey)
	}
	return json.Unmarshal(e.Payload, v)
}
