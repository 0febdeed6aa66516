package services

import (
	"context"
	"sync"

	"fintrack/internal/events"
	"fintrack/internal/log"
)

// EventPublisher sends events out of the process. *amqp.Client satisfies it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, e events.Event) error
}

// Forwarder relays bus events to an EventPublisher on its own goroutine so
// request handlers never wait on the broker. Events are dropped, with a
// warning, when the buffer is full.
type Forwarder struct {
	pub    EventPublisher
	queue  chan events.Event
	logger *log.Logger
	wg     sync.WaitGroup
	once   sync.Once
}

func NewForwarder(pub EventPublisher, buffer int, logger *log.Logger) *Forwarder {
	if buffer <= 0 {
		buffer = 256
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Forwarder{
		pub:    pub,
		queue:  make(chan events.Event, buffer),
		logger: logger.WithComponent(log.ComponentAMQP),
	}
}

// Handle is an events.Handler. Register it with Bus.SubscribeAll.
func (f *Forwarder) Handle(ctx context.Context, e events.Event) {
	select {
	case f.queue <- e:
	default:
		f.logger.WarnContext(ctx, "Event forward buffer full, dropping event",
			log.FieldEventID, e.ID, log.FieldEntity, e.Entity)
	}
}

// Start runs the publishing loop until Stop is called.
func (f *Forwarder) Start(ctx context.Context) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		for e := range f.queue {
			if err := f.pub.PublishEvent(ctx, e); err != nil {
				f.logger.ErrorContext(ctx, "Failed to forward event",
					log.FieldEventID, e.ID, log.FieldEntity, e.Entity, log.FieldError, err)
			}
		}
	}()
}

// Stop drains what is buffered and waits for the loop to exit. Handle must
// not be called after Stop.
func (f *Forwarder) Stop() {
	f.once.Do(func() { close(f.queue) })
	f.wg.Wait()
}
