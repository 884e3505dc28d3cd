package projection

import (
	"context"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"banking-service/cqrs"
)

// Notifier wraps an event handler and publishes a change notification to a
// Redis channel after each event the handler applies, so read-side caches
// and listeners can refresh. Notification failures are logged and never
// fail the surrounding delivery.
type Notifier struct {
	inner   cqrs.EventHandler
	redis   *redis.Client
	channel string
}

func NewNotifier(inner cqrs.EventHandler, rc *redis.Client, channel string) *Notifier {
	return &Notifier{inner: inner, redis: rc, channel: channel}
}

func (n *Notifier) HandleEvent(ctx context.Context, ev cqrs.Event) error {
	if err := n.inner.HandleEvent(ctx, ev); err != nil {
		return err
	}
	payload, err := sonic.Marshal(ev)
	if err != nil {
		return err
	}
	if err := n.redis.Publish(ctx, n.channel, payload).Err(); err != nil {
		log.Errorf("Unable to publish update for %s to %s: %v", ev.AggregateID, n.channel, err)
	}
	return nil
}
