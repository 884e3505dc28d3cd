package cqrs

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("banking-service/cqrs")

// HandlerNotFoundError reports a dispatch for a message type that has no
// registered handler. It indicates a wiring bug, not a runtime condition
// worth retrying.
type HandlerNotFoundError struct {
	MessageType string
}

func (e *HandlerNotFoundError) Error() string {
	return fmt.Sprintf("no handler registered for message type %s", e.MessageType)
}

// CommandDispatcher routes commands to the single handler registered for
// their type. Registration is last-write-wins. The dispatcher adds no
// serialization of its own: concurrent dispatches run concurrently.
type CommandDispatcher struct {
	handlers map[string]CommandHandler
}

func NewCommandDispatcher() *CommandDispatcher {
	return &CommandDispatcher{handlers: make(map[string]CommandHandler)}
}

// Register associates a handler with a command type, silently replacing
// any handler previously registered for that type.
func (d *CommandDispatcher) Register(commandType string, h CommandHandler) {
	d.handlers[commandType] = h
}

// Dispatch looks up the handler for the command's type and invokes it,
// propagating its outcome unchanged.
func (d *CommandDispatcher) Dispatch(ctx context.Context, cmd Command) error {
	ctx, span := tracer.Start(ctx, "dispatch "+cmd.Type)
	defer span.End()
	h, ok := d.handlers[cmd.Type]
	if !ok {
		return &HandlerNotFoundError{MessageType: cmd.Type}
	}
	return h.Handle(ctx, cmd)
}

// QueryDispatcher mirrors CommandDispatcher for the read side; handlers
// return a result value in addition to an error.
type QueryDispatcher struct {
	handlers map[string]QueryHandler
}

func NewQueryDispatcher() *QueryDispatcher {
	return &QueryDispatcher{handlers: make(map[string]QueryHandler)}
}

// Register associates a handler with a query type, last write wins.
func (d *QueryDispatcher) Register(queryType string, h QueryHandler) {
	d.handlers[queryType] = h
}

// Dispatch looks up the handler for the query's type and returns its result.
func (d *QueryDispatcher) Dispatch(ctx context.Context, q Query) (any, error) {
	ctx, span := tracer.Start(ctx, "dispatch "+q.Type)
	defer span.End()
	h, ok := d.handlers[q.Type]
	if !ok {
		return nil, &HandlerNotFoundError{MessageType: q.Type}
	}
	return h.Handle(ctx, q)
}
