package events

import (
	"context"
	"log/slog"
	"sync"
)

// Event is a domain event delivered to observers.
type Event struct {
	// Type is the event type (e.g., "state:updated", "analysis:ready")
	Type string

	// Data is the event payload. Observers that forward events to clients
	// serialise it as JSON.
	Data any

	// Context provides execution context for the event
	Context context.Context
}

// Observer defines the interface for objects that want to be notified of events.
type Observer interface {
	// OnEvent is called when an event is dispatched.
	// Returns an error if the observer fails to handle the event.
	OnEvent(event Event) error

	// GetName returns a human-readable name for this observer (for logging/debugging).
	GetName() string

	// ShouldHandle returns true if this observer should handle the given event type.
	ShouldHandle(eventType string) bool
}

// EventDispatcher fans events out to registered observers.
// Thread-safe for concurrent use.
type EventDispatcher struct {
	observers []Observer
	logger    *slog.Logger
	mu        sync.RWMutex
}

// NewEventDispatcher creates a dispatcher that logs through logger
// (slog.Default() when nil).
func NewEventDispatcher(logger *slog.Logger) *EventDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventDispatcher{
		observers: make([]Observer, 0),
		logger:    logger.With("component", "events"),
	}
}

// Register adds an observer to the dispatcher.
func (d *EventDispatcher) Register(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.observers = append(d.observers, observer)
	d.logger.Debug("Registered observer", "observer", observer.GetName())
}

// Dispatch notifies observers sequentially in registration order.
// An observer error is logged and dispatch continues.
func (d *EventDispatcher) Dispatch(event Event) {
	for _, observer := range d.snapshot() {
		if !observer.ShouldHandle(event.Type) {
			continue
		}
		if err := observer.OnEvent(event); err != nil {
			d.logger.Warn("Observer failed to handle event",
				"observer", observer.GetName(), "event", event.Type, "error", err)
		}
	}
}

func (d *EventDispatcher) snapshot() []Observer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	observers := make([]Observer, len(d.observers))
	copy(observers, d.observers)
	return observers
}

// NewTypedEvent creates an Event carrying data.
func NewTypedEvent[T any](ctx context.Context, eventType string, data T) Event {
	return Event{
		Type:    eventType,
		Data:    data,
		Context: ctx,
	}
}

// GetTypedData extracts typed data from an Event.
// Returns the zero value and false if the data is not of the expected type.
func GetTypedData[T any](event Event) (T, bool) {
	var zero T
	if event.Data == nil {
		return zero, false
	}
	typed, ok := event.Data.(T)
	return typed, ok
}
