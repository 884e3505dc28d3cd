package cqrs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Command is the envelope for a write request. A command describes intent
// and is routed to exactly one handler by its Type. The ID identifies one
// dispatch attempt; nothing deduplicates it, so dispatching the same
// command twice executes it twice.
type Command struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     int64           `json:"timestamp"`
	Payload       json.RawMessage `json:"payload"`
	CorrelationID string          `json:"correlationId,omitempty"`
	CausationID   string          `json:"causationId,omitempty"`
}

// NewCommand builds a command envelope with a generated id and the current
// time in milliseconds since the epoch.
func NewCommand(commandType, source string, payload json.RawMessage) Command {
	return Command{
		ID:        "CMD-" + uuid.NewString(),
		Type:      commandType,
		Source:    source,
		Timestamp: time.Now().UnixMilli(),
		Payload:   payload,
	}
}

// CommandHandler executes one type of command. Handlers carry no
// per-dispatch state; one instance is reused across dispatches.
type CommandHandler interface {
	Handle(ctx context.Context, cmd Command) error
}
