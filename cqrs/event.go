package cqrs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event records one fact that already happened. It extends the command
// envelope with the coordinates of the aggregate that produced it and is
// immutable once created. This struct is also the wire representation on
// the durable bus, with Type doubling as the routing key.
type Event struct {
	ID               string          `json:"id"`
	Type             string          `json:"type"`
	Source           string          `json:"source"`
	Timestamp        int64           `json:"timestamp"`
	Payload          json.RawMessage `json:"payload"`
	Version          int             `json:"version"`
	AggregateID      string          `json:"aggregateId"`
	AggregateName    string          `json:"aggregateName"`
	AggregateVersion int             `json:"aggregateVersion"`
	CorrelationID    string          `json:"correlationId,omitempty"`
	CausationID      string          `json:"causationId,omitempty"`
}

// NewEvent builds an event envelope with a generated id and the current time.
func NewEvent(eventType, source, aggregateID, aggregateName string, aggregateVersion int, payload json.RawMessage) Event {
	return Event{
		ID:               "EVT-" + uuid.NewString(),
		Type:             eventType,
		Source:           source,
		Timestamp:        time.Now().UnixMilli(),
		Payload:          payload,
		AggregateID:      aggregateID,
		AggregateName:    aggregateName,
		AggregateVersion: aggregateVersion,
	}
}

// EventHandler consumes events delivered by a bus. Handler identity is used
// for unsubscription, so subscribers register the same value they remove.
type EventHandler interface {
	HandleEvent(ctx context.Context, ev Event) error
}
