package messaging

import (
	"context"
	"testing"
	"time"

	contractsv1 "inkwell/contracts/events/v1"
)

func TestBusDeliversToEverySubscriber(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewBus(nil)
	first := make(chan string, 1)
	second := make(chan string, 1)
	if err := bus.Subscribe(ctx, contractsv1.TopicContestDeleted, "a", func(_ context.Context, event contractsv1.Envelope) error {
		first <- event.EventID
		return nil
	}); err != nil {
		t.Fatalf("subscribe a: %v", err)
	}
	if err := bus.Subscribe(ctx, contractsv1.TopicContestDeleted, "b", func(_ context.Context, event contractsv1.Envelope) error {
		second <- event.EventID
		return nil
	}); err != nil {
		t.Fatalf("subscribe b: %v", err)
	}

	if err := bus.Publish(ctx, contractsv1.TopicContestDeleted, contractsv1.Envelope{EventID: "evt-1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	for name, ch := range map[string]chan string{"a": first, "b": second} {
		select {
		case got := <-ch:
			if got != "evt-1" {
				t.Fatalf("subscriber %s got %q", name, got)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %s did not receive event", name)
		}
	}
}

func TestBusIgnoresOtherTopics(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewBus(nil)
	received := make(chan struct{}, 1)
	if err := bus.Subscribe(ctx, contractsv1.TopicTextDeleted, "texts", func(context.Context, contractsv1.Envelope) error {
		received <- struct{}{}
		return nil
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := bus.Publish(ctx, contractsv1.TopicContestDeleted, contractsv1.Envelope{EventID: "evt-2"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case <-received:
		t.Fatalf("expected no delivery for unrelated topic")
	case <-time.After(50 * time.Millisecond):
	}
}
