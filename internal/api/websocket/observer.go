package websocket

import (
	"log"

	"github.com/ramonehamilton/PokeHelper/internal/events"
)

// WebSocketObserver forwards dispatched events to every connected client.
type WebSocketObserver struct {
	name string
	hub  *Hub
	skip map[string]bool
}

// NewWebSocketObserver creates an observer that broadcasts on hub. Event
// types listed in skip are not forwarded.
func NewWebSocketObserver(hub *Hub, skip ...string) *WebSocketObserver {
	s := make(map[string]bool, len(skip))
	for _, t := range skip {
		s[t] = true
	}
	return &WebSocketObserver{
		name: "WebSocketObserver",
		hub:  hub,
		skip: s,
	}
}

// OnEvent forwards the event to all connected WebSocket clients.
func (o *WebSocketObserver) OnEvent(event events.Event) error {
	if o.hub == nil {
		log.Printf("[%s] Cannot emit event %s: hub is nil", o.name, event.Type)
		return nil
	}

	o.hub.BroadcastEvent(Event{
		Type: event.Type,
		Data: event.Data,
	})
	return nil
}

// GetName returns the observer's name.
func (o *WebSocketObserver) GetName() string {
	return o.name
}

// ShouldHandle reports whether eventType is forwarded.
func (o *WebSocketObserver) ShouldHandle(eventType string) bool {
	return !o.skip[eventType]
}

// Ensure WebSocketObserver implements the Observer interface.
var _ events.Observer = (*WebSocketObserver)(nil)
