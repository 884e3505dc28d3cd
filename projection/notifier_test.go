package projection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"banking-service/cqrs"
	"banking-service/domain"
)

type failingHandler struct {
	err error
}

func (h *failingHandler) HandleEvent(ctx context.Context, ev cqrs.Event) error { return h.err }

func TestNotifierPublishesAfterApply(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rc.Close()

	ctx := context.Background()
	sub := rc.Subscribe(ctx, "account-updates")
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	proj := NewAccountProjection()
	n := NewNotifier(proj, rc, "account-updates")

	ev := domain.NewAccountOpenedEvent("A", 1000, 1)
	if err := n.HandleEvent(ctx, ev); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if history := proj.Transactions("A"); len(history) != 1 {
		t.Fatalf("inner handler not applied: %+v", history)
	}

	recvCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	msg, err := sub.ReceiveMessage(recvCtx)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	var published cqrs.Event
	if err := sonic.Unmarshal([]byte(msg.Payload), &published); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if published.ID != ev.ID || published.Type != domain.EventAccountOpened {
		t.Fatalf("unexpected notification %+v", published)
	}
}

func TestNotifierPropagatesInnerError(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rc.Close()

	boom := errors.New("apply failed")
	n := NewNotifier(&failingHandler{err: boom}, rc, "account-updates")

	if err := n.HandleEvent(context.Background(), domain.NewAccountOpenedEvent("A", 1000, 1)); !errors.Is(err, boom) {
		t.Fatalf("expected inner error, got %v", err)
	}
}

func TestNotifierSwallowsPublishFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rc.Close()
	mr.Close()

	proj := NewAccountProjection()
	n := NewNotifier(proj, rc, "account-updates")

	if err := n.HandleEvent(context.Background(), domain.NewAccountOpenedEvent("A", 1000, 1)); err != nil {
		t.Fatalf("notification failure should not fail delivery, got %v", err)
	}
	if history := proj.Transactions("A"); len(history) != 1 {
		t.Fatalf("inner handler not applied: %+v", history)
	}
}
