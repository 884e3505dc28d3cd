package cqrs

import (
	"context"
	"sync"
)

// EventBus combines publishing with per-event-type subscription management.
type EventBus interface {
	Publish(ctx context.Context, ev Event) error
	Subscribe(ctx context.Context, eventType string, h EventHandler) error
	Unsubscribe(ctx context.Context, eventType string, h EventHandler) error
	Close() error
}

// InMemoryEventBus fans events out synchronously to in-process subscribers
// in subscription order. Nothing is persisted: an event published with no
// subscriber is gone, and a handler error aborts delivery to the remaining
// handlers and propagates to the publisher.
type InMemoryEventBus struct {
	mu          sync.RWMutex
	subscribers map[string][]EventHandler
}

func NewInMemoryEventBus() *InMemoryEventBus {
	return &InMemoryEventBus{subscribers: make(map[string][]EventHandler)}
}

func (b *InMemoryEventBus) Publish(ctx context.Context, ev Event) error {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[ev.Type]...)
	b.mu.RUnlock()
	for _, h := range handlers {
		if err := h.HandleEvent(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

func (b *InMemoryEventBus) Subscribe(ctx context.Context, eventType string, h EventHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], h)
	return nil
}

func (b *InMemoryEventBus) Unsubscribe(ctx context.Context, eventType string, h EventHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	handlers := b.subscribers[eventType]
	for i, registered := range handlers {
		if registered == h {
			b.subscribers[eventType] = append(handlers[:i], handlers[i+1:]...)
			break
		}
	}
	return nil
}

// Close clears all subscriptions.
func (b *InMemoryEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = make(map[string][]EventHandler)
	return nil
}
