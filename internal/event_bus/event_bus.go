package event_bus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// EventType is an identifier for events.
type EventType string

// Header is what every envelope carries besides its payload.
type Header struct {
	Type      EventType
	Timestamp time.Time
}

// Event is the envelope handlers subscribed with Subscribe receive.
type Event struct {
	Header
	Data any
}

func NewEvent(eventType EventType, data any) Event {
	return Event{
		Header: Header{Type: eventType, Timestamp: time.Now()},
		Data:   data,
	}
}

// Handler receives the context Publish was called with.
type Handler func(ctx context.Context, e Event) error

// EventT is the envelope of SubscribeTyped handlers.
type EventT[T any] struct {
	Header
	Data T
}

type subscription struct {
	id uint64
	h  Handler
}

// EventBus is a synchronous dispatcher. Handlers of one event type run in the
// order they subscribed, and Publish returns only after all of them finished.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]subscription
	nextID      uint64
}

func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[EventType][]subscription),
	}
}

// Subscribe registers h for eventType and returns a function removing it again.
func (eb *EventBus) Subscribe(eventType EventType, h Handler) (unsubscribe func()) {
	eb.mu.Lock()
	eb.nextID++
	id := eb.nextID
	eb.subscribers[eventType] = append(eb.subscribers[eventType], subscription{id: id, h: h})
	eb.mu.Unlock()

	return func() {
		eb.mu.Lock()
		defer eb.mu.Unlock()

		subs := eb.subscribers[eventType]
		for i, s := range subs {
			if s.id == id {
				eb.subscribers[eventType] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
		if len(eb.subscribers[eventType]) == 0 {
			delete(eb.subscribers, eventType)
		}
	}
}

// SubscribeTyped registers a handler that only sees payloads of type T.
// Events carrying another payload type are skipped.
func SubscribeTyped[T any](eb *EventBus, eventType EventType, h func(ctx context.Context, e EventT[T]) error) (unsubscribe func()) {
	wrapper := func(ctx context.Context, e Event) error {
		payload, ok := e.Data.(T)
		if !ok {
			log.Debugf("EventBus: type mismatch for event %s: expected %T, got %T",
				eventType, *new(T), e.Data)
			return nil
		}
		return h(ctx, EventT[T]{Header: e.Header, Data: payload})
	}
	return eb.Subscribe(eventType, wrapper)
}

// Publish runs every handler registered for e.Type. A failing or panicking
// handler does not stop the others; all failures are joined into the result.
// A cancelled ctx skips the remaining handlers.
func (eb *EventBus) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("event %s: context cancelled before publish: %w", e.Type, err)
	}

	eb.mu.RLock()
	subs := make([]subscription, len(eb.subscribers[e.Type]))
	copy(subs, eb.subscribers[e.Type])
	eb.mu.RUnlock()

	var errs []error
	for _, s := range subs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("context cancelled during event processing: %w", err))
			break
		}

		err := func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("handler panic (ID %d) for event %s: %v", s.id, e.Type, r)
				}
			}()
			return s.h(ctx, e)
		}()

		if err != nil {
			log.Errorf("EventBus: handler error (ID %d) for event %s: %v", s.id, e.Type, err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("event %s: %d handler(s) failed: %w", e.Type, len(errs), errors.Join(errs...))
	}
	return nil
}
