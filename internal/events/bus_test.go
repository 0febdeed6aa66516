package events

import (
	"context"
	"testing"
)

func TestBusRoutesByEntity(t *testing.T) {
	bus := NewBus()
	var budgets, all int
	bus.Subscribe(EntityBudget, func(ctx context.Context, e Event) { budgets++ })
	unsubscribe := bus.SubscribeAll(func(ctx context.Context, e Event) { all++ })

	ctx := context.Background()
	bus.Publish(ctx, New(EntityBudget, ActionUpdated, 1, 7))
	bus.Publish(ctx, New(EntityTransaction, ActionCreated, 1, 8))

	if budgets != 1 || all != 2 {
		t.Fatalf("budgets=%d all=%d", budgets, all)
	}

	unsubscribe()
	bus.Publish(ctx, New(EntityBudget, ActionDeleted, 1, 7))
	if budgets != 2 || all != 2 {
		t.Fatalf("after unsubscribe: budgets=%d all=%d", budgets, all)
	}
}

func TestBusSurvivesPanickingHandler(t *testing.T) {
	bus := NewBus()
	delivered := false
	bus.SubscribeAll(func(ctx context.Context, e Event) { panic("boom") })
	bus.SubscribeAll(func(ctx context.Context, e Event) { delivered = true })

	bus.Publish(context.Background(), New(EntitySavings, ActionCreated, 1, 1))
	if !delivered {
		t.Fatal("second handler not called")
	}
}

func TestNewEventHasID(t *testing.T) {
	a := New(EntityContext, ActionCreated, 1, 1)
	b := New(EntityContext, ActionCreated, 1, 1)
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("ids: %q %q", a.ID, b.ID)
	}
}

func TestNilBusPublishIsNoop(t *testing.T) {
	var bus *Bus
	bus.Publish(context.Background(), New(EntityContext, ActionDeleted, 1, 1))
}
