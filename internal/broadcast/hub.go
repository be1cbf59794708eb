// Package broadcast fans state-change events out to every connected
// viewer. Delivery is lossy and best-effort: a missed frame is superseded
// by the next one within seconds, so there is no retry and no backpressure.
package broadcast

import (
	"encoding/json"
	"log"
	"sync"
)

// Event is a single state-change frame published to all subscribers.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Subscriber is a live viewer connection. Send must be safe for
// concurrent use by the hub.
type Subscriber interface {
	Send(data []byte) error
}

// Hub maintains the set of live subscribers. All set mutations and the
// publish iteration happen under one mutex, so the set is never iterated
// while partially mutated.
type Hub struct {
	mu   sync.Mutex
	subs map[Subscriber]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[Subscriber]struct{})}
}

// Subscribe adds a subscriber to the set.
func (h *Hub) Subscribe(s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[s] = struct{}{}
}

// Unsubscribe removes a subscriber from the set. A no-op if the
// subscriber is already absent, to tolerate disconnect races.
func (h *Hub) Unsubscribe(s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, s)
}

// Count returns the number of live subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Publish sends event to every current subscriber. A subscriber whose
// send fails is dropped from the set; the failure never propagates to
// the caller.
func (h *Hub) Publish(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("broadcast: failed to marshal %s event: %v", event.Type, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for s := range h.subs {
		if err := s.Send(payload); err != nil {
			log.Printf("broadcast: dropping subscriber after send error: %v", err)
			delete(h.subs, s)
		}
	}
}
