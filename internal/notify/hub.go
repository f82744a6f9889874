// Package notify implements the live notification channel: a process-owned
// registry of per-recipient subscribers fed by the callback correlator and
// drained by long-lived SSE connections. Delivery is best effort; a recipient
// with no connected viewer simply misses the event and reconciles by
// refetching.
package notify

import (
	"sync"
)

// Event names pushed over the channel.
const (
	EventImageUpdated = "imageUpdated"
	EventImageDeleted = "imageDeleted"
)

// Event is one job state change addressed to a recipient.
type Event struct {
	Name      string `json:"-"`
	JobID     string `json:"job_id"`
	OutputKey string `json:"output_key,omitempty"`
}

// Subscriber is one connected viewer. Its channel is buffered; publishes to a
// full buffer are dropped rather than blocking the publisher.
type Subscriber struct {
	C chan Event

	hub       *Hub
	recipient string
	closeOnce sync.Once
}

// Hub owns the recipient → subscriber registry. It is created once at process
// start and injected into both the channel-open handler and the correlator.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscriber]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscriber]struct{})}
}

// Subscribe registers a new viewer for the recipient.
func (h *Hub) Subscribe(recipient string) *Subscriber {
	sub := &Subscriber{
		C:         make(chan Event, 16),
		hub:       h,
		recipient: recipient,
	}
	h.mu.Lock()
	set, ok := h.subs[recipient]
	if !ok {
		set = make(map[*Subscriber]struct{})
		h.subs[recipient] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Close removes the subscriber from the hub. Safe to call more than once;
// both explicit closes and transport aborts funnel through here.
func (s *Subscriber) Close() {
	s.closeOnce.Do(func() {
		h := s.hub
		h.mu.Lock()
		if set, ok := h.subs[s.recipient]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(h.subs, s.recipient)
			}
		}
		h.mu.Unlock()
		// The channel is left open: a publisher may still hold a snapshot
		// containing this subscriber, and sends to it are non-blocking.
	})
}

// Publish pushes the event to every viewer currently connected for the
// recipient. The subscriber set is snapshotted under the read lock and sends
// never block, so a stalled viewer cannot delay the caller or starve the
// other sinks.
func (h *Hub) Publish(recipient string, event Event) {
	h.mu.RLock()
	set := h.subs[recipient]
	snapshot := make([]*Subscriber, 0, len(set))
	for sub := range set {
		snapshot = append(snapshot, sub)
	}
	h.mu.RUnlock()

	for _, sub := range snapshot {
		select {
		case sub.C <- event:
		default:
		}
	}
}

// Viewers reports how many connections are registered for the recipient.
func (h *Hub) Viewers(recipient string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[recipient])
}
