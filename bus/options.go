package bus

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Options configures the durable event bus.
type Options struct {
	// PrefetchCount limits how many unacknowledged deliveries the broker
	// hands this bus at once. Zero leaves the channel unbounded.
	PrefetchCount int
	// QueueArgs is passed through when the exclusive queue is declared.
	QueueArgs amqp.Table
	// ReconnectInterval is the fixed wait between reconnection attempts.
	ReconnectInterval time.Duration
	// MaxPublishRetries is the total number of publish attempts before a
	// publish is reported as failed.
	MaxPublishRetries int
	// PublishRetryDelay is the fixed wait between publish attempts.
	PublishRetryDelay time.Duration
}

func (o Options) withDefaults() Options {
	if o.ReconnectInterval <= 0 {
		o.ReconnectInterval = 5 * time.Second
	}
	if o.MaxPublishRetries <= 0 {
		o.MaxPublishRetries = 3
	}
	if o.PublishRetryDelay <= 0 {
		o.PublishRetryDelay = time.Second
	}
	return o
}

// PublishError reports that an event could not be published after the
// configured number of attempts. State the caller persisted before
// publishing stays persisted; the event is lost from the bus's
// perspective.
type PublishError struct {
	EventType string
	Attempts  int
	Err       error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publishing %s failed after %d attempts: %v", e.EventType, e.Attempts, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }
