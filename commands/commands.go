// Package commands contains the write-side handlers. Every handler follows
// the same orchestration: load the aggregate(s), invoke the matching
// aggregate method, persist the result, then publish the produced events.
// Publishing happens after persistence; when it fails the store stays
// updated and the events are lost.
package commands

import (
	"context"

	"banking-service/cqrs"
)

func publishAll(ctx context.Context, bus cqrs.EventBus, events []cqrs.Event) error {
	for _, ev := range events {
		if err := bus.Publish(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}
