// Package events carries change notifications between components.
//
// Subscribers register for an entity type (or for all of them) and are told
// after a mutation has been committed, so views such as the dashboard cache
// can be invalidated without knowing who changed what.
package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Entity string

const (
	EntityContext      Entity = "context"
	EntityTransaction  Entity = "transaction"
	EntitySubscription Entity = "subscription"
	EntitySavings      Entity = "savings"
	EntityBudget       Entity = "budget"
	EntityInvestment   Entity = "investment"
)

type Action string

const (
	ActionCreated  Action = "created"
	ActionUpdated  Action = "updated"
	ActionDeleted  Action = "deleted"
	ActionImported Action = "imported"
)

// Event describes one committed change.
type Event struct {
	ID         string    `json:"id"`
	Entity     Entity    `json:"entity"`
	Action     Action    `json:"action"`
	ContextID  int64     `json:"context_id"`
	EntityID   int64     `json:"entity_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New stamps a fresh event with an id and the current time.
func New(entity Entity, action Action, contextID, entityID int64) Event {
	return Event{
		ID:         uuid.NewString(),
		Entity:     entity,
		Action:     action,
		ContextID:  contextID,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
	}
}

type Handler func(ctx context.Context, e Event)

type subscription struct {
	id      uint64
	entity  Entity // empty means every entity
	handler Handler
}

// Bus is a synchronous in-process pub/sub keyed by entity type. Handlers run
// on the publisher's goroutine and must not block.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers h for events about entity. The returned func removes it.
func (b *Bus) Subscribe(entity Entity, h Handler) func() {
	return b.add(entity, h)
}

// SubscribeAll registers h for every event.
func (b *Bus) SubscribeAll(h Handler) func() {
	return b.add("", h)
}

func (b *Bus) add(entity Entity, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, entity: entity, handler: h})
	return func() { b.remove(id) }
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers e to every matching subscriber. A panicking handler is
// logged and does not stop delivery to the others.
func (b *Bus) Publish(ctx context.Context, e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	targets := make([]Handler, 0, len(b.subs))
	for _, s := range b.subs {
		if s.entity == "" || s.entity == e.Entity {
			targets = append(targets, s.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range targets {
		b.dispatch(ctx, h, e)
	}
}

func (b *Bus) dispatch(ctx context.Context, h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "Event handler panicked",
				"entity", e.Entity, "action", e.Action, "event_id", e.ID, "panic", r)
		}
	}()
	h(ctx, e)
}
