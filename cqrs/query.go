package cqrs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Query carries read intent. It shares the command envelope shape but its
// handler returns a result value.
type Query struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     int64           `json:"timestamp"`
	Payload       json.RawMessage `json:"payload"`
	CorrelationID string          `json:"correlationId,omitempty"`
	CausationID   string          `json:"causationId,omitempty"`
}

// NewQuery builds a query envelope with a generated id and the current time.
func NewQuery(queryType, source string, payload json.RawMessage) Query {
	return Query{
		ID:        "QRY-" + uuid.NewString(),
		Type:      queryType,
		Source:    source,
		Timestamp: time.Now().UnixMilli(),
		Payload:   payload,
	}
}

// QueryHandler answers one type of query.
type QueryHandler interface {
	Handle(ctx context.Context, q Query) (any, error)
}
