// Package bus provides the broker-backed durable event bus. Events travel
// through one durable topic exchange with the event type as the routing
// key; each bus instance owns an exclusive auto-named queue bound to the
// types it has subscribers for.
package bus

import (
	"context"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"

	"banking-service/cqrs"
)

// channel is the slice of *amqp.Channel the bus depends on, narrowed so
// tests can substitute a fake.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	QueueUnbind(name, key, exchange string, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Qos(prefetchCount, prefetchSize int, global bool) error
	Close() error
}

// connection is the corresponding slice of *amqp.Connection.
type connection interface {
	Channel() (channel, error)
	NotifyClose(receiver chan *amqp.Error) chan *amqp.Error
	Close() error
}

type dialFunc func(url string) (connection, error)

type amqpConnection struct {
	*amqp.Connection
}

func (c amqpConnection) Channel() (channel, error) {
	ch, err := c.Connection.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func amqpDial(url string) (connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return amqpConnection{conn}, nil
}

// RabbitEventBus implements cqrs.EventBus on top of an AMQP broker with
// at-least-once delivery. Publishes are retried with a fixed delay, and a
// lost connection is re-established with all subscriptions rebound without
// any caller involvement.
type RabbitEventBus struct {
	url      string
	exchange string
	opts     Options
	dial     dialFunc

	mu        sync.Mutex
	conn      connection
	ch        channel
	queueName string
	callbacks map[string][]cqrs.EventHandler
	closed    bool
}

// Connect dials the broker, declares the topic exchange and the bus's
// exclusive queue, and starts consuming.
func Connect(url, exchange string, opts Options) (*RabbitEventBus, error) {
	return connect(url, exchange, opts, amqpDial)
}

func connect(url, exchange string, opts Options, dial dialFunc) (*RabbitEventBus, error) {
	b := &RabbitEventBus{
		url:       url,
		exchange:  exchange,
		opts:      opts.withDefaults(),
		dial:      dial,
		callbacks: make(map[string][]cqrs.EventHandler),
	}
	if err := b.setup(); err != nil {
		return nil, err
	}
	return b, nil
}

// setup establishes a connection, channel, exchange and a fresh exclusive
// queue, rebinds every event type with active subscriptions, and resumes
// consumption. It serves both the initial connect and every reconnect; the
// subscription map outlives any stale queue.
func (b *RabbitEventBus) setup() error {
	conn, err := b.dial(b.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}
	if err := ch.ExchangeDeclare(b.exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return err
	}
	q, err := ch.QueueDeclare("", false, false, true, false, b.opts.QueueArgs)
	if err != nil {
		conn.Close()
		return err
	}
	if b.opts.PrefetchCount > 0 {
		if err := ch.Qos(b.opts.PrefetchCount, 0, false); err != nil {
			conn.Close()
			return err
		}
	}

	b.mu.Lock()
	b.conn = conn
	b.ch = ch
	b.queueName = q.Name
	for eventType := range b.callbacks {
		if err := ch.QueueBind(q.Name, eventType, b.exchange, false, nil); err != nil {
			b.mu.Unlock()
			conn.Close()
			return err
		}
		log.Infof("Bound queue %s to event type %s", q.Name, eventType)
	}
	b.mu.Unlock()

	deliveries, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		conn.Close()
		return err
	}
	go b.consume(deliveries)
	go b.watch(conn.NotifyClose(make(chan *amqp.Error, 1)))
	return nil
}

// watch waits for the connection to report closure. A nil error means the
// close was deliberate and no reconnect is wanted.
func (b *RabbitEventBus) watch(closed <-chan *amqp.Error) {
	err, ok := <-closed
	if !ok || err == nil {
		return
	}
	log.Warnf("Broker connection lost: %v. Reconnecting...", err)
	b.reconnect()
}

// reconnect redials at a fixed interval until the connection is back.
// There is no attempt cap and no backoff growth; availability is preferred
// over failing fast.
func (b *RabbitEventBus) reconnect() {
	for {
		time.Sleep(b.opts.ReconnectInterval)
		b.mu.Lock()
		if b.closed {
			b.mu.Unlock()
			return
		}
		b.mu.Unlock()
		if err := b.setup(); err != nil {
			log.Errorf("Failed to reconnect to broker: %v", err)
			continue
		}
		log.Info("Reconnected to broker")
		return
	}
}

// Publish sends the event to the topic exchange under its type, retrying
// failed attempts with a fixed delay. A publish issued during a reconnect
// window fails its attempt and is retried the same way. The call can block
// for up to attempts times delay before reporting failure.
func (b *RabbitEventBus) Publish(ctx context.Context, ev cqrs.Event) error {
	body, err := sonic.Marshal(ev)
	if err != nil {
		return err
	}
	var lastErr error
	for attempt := 1; attempt <= b.opts.MaxPublishRetries; attempt++ {
		b.mu.Lock()
		ch := b.ch
		b.mu.Unlock()
		lastErr = ch.PublishWithContext(ctx, b.exchange, ev.Type, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    ev.ID,
			Timestamp:    time.UnixMilli(ev.Timestamp),
			Body:         body,
		})
		if lastErr == nil {
			log.Debugf("Published event %s", ev.Type)
			return nil
		}
		log.Warnf("Publish attempt %d for event %s failed: %v", attempt, ev.Type, lastErr)
		if attempt < b.opts.MaxPublishRetries {
			time.Sleep(b.opts.PublishRetryDelay)
		}
	}
	return &PublishError{EventType: ev.Type, Attempts: b.opts.MaxPublishRetries, Err: lastErr}
}

// Subscribe registers a handler for an event type, binding the queue to
// the routing key on the first subscription for that type.
func (b *RabbitEventBus) Subscribe(ctx context.Context, eventType string, h cqrs.EventHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.callbacks[eventType]; !ok {
		if err := b.ch.QueueBind(b.queueName, eventType, b.exchange, false, nil); err != nil {
			return err
		}
		log.Infof("Bound queue %s to event type %s", b.queueName, eventType)
	}
	b.callbacks[eventType] = append(b.callbacks[eventType], h)
	return nil
}

// Unsubscribe removes a handler; when the last handler for the type is
// removed the queue is unbound from the routing key.
func (b *RabbitEventBus) Unsubscribe(ctx context.Context, eventType string, h cqrs.EventHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	handlers, ok := b.callbacks[eventType]
	if !ok {
		return nil
	}
	for i, registered := range handlers {
		if registered == h {
			handlers = append(handlers[:i], handlers[i+1:]...)
			break
		}
	}
	if len(handlers) == 0 {
		delete(b.callbacks, eventType)
		if err := b.ch.QueueUnbind(b.queueName, eventType, b.exchange, nil); err != nil {
			return err
		}
		log.Infof("Unbound queue %s from event type %s", b.queueName, eventType)
		return nil
	}
	b.callbacks[eventType] = handlers
	return nil
}

func (b *RabbitEventBus) consume(deliveries <-chan amqp.Delivery) {
	for d := range deliveries {
		b.handleDelivery(context.Background(), d)
	}
}

// handleDelivery decodes one delivery, dispatches it synchronously to
// every callback registered for its type, then acknowledges it. A
// callback error is logged per callback so one faulty subscriber blocks
// neither the others nor the acknowledgment. A decode failure rejects the
// message instead.
func (b *RabbitEventBus) handleDelivery(ctx context.Context, d amqp.Delivery) {
	var ev cqrs.Event
	if err := sonic.Unmarshal(d.Body, &ev); err != nil {
		log.Errorf("Error processing message: %v", err)
		if nackErr := d.Nack(false, false); nackErr != nil {
			log.Errorf("Error rejecting message: %v", nackErr)
		}
		return
	}
	log.Debugf("Received event %s", ev.Type)
	b.mu.Lock()
	handlers := append([]cqrs.EventHandler(nil), b.callbacks[ev.Type]...)
	b.mu.Unlock()
	for _, h := range handlers {
		if err := h.HandleEvent(ctx, ev); err != nil {
			log.Errorf("Error in callback for event %s: %v", ev.Type, err)
		}
	}
	if err := d.Ack(false); err != nil {
		log.Errorf("Error acknowledging message: %v", err)
	}
}

// Close shuts the channel and connection down and stops any reconnecting.
func (b *RabbitEventBus) Close() error {
	b.mu.Lock()
	b.closed = true
	ch := b.ch
	conn := b.conn
	b.mu.Unlock()
	if err := ch.Close(); err != nil {
		log.Errorf("Error closing channel: %v", err)
	}
	return conn.Close()
}
