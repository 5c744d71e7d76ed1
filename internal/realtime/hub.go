package realtime

import (
	"encoding/json"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Sender is the minimal interface the registry needs from a connection:
// the ability to enqueue an encoded event for delivery. Enqueue reports
// false when the connection's outbound buffer is full.
type Sender interface {
	Enqueue(payload []byte) bool
}

// Registry maps a user id to their single active connection. A second
// device connecting overwrites the first entry (last write wins); the
// evicted connection is not closed here, it just stops receiving pushes.
// Entries live for the process lifetime only and are never persisted.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Sender
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]Sender)}
}

// Register records the connection as the user's active one, replacing any
// prior entry.
func (r *Registry) Register(userID string, s Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[userID] = s
}

// Unregister removes the user's entry only if it still references the
// connection being torn down. A late disconnect from an evicted
// connection must not clobber a newer registration.
func (r *Registry) Unregister(userID string, s Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.conns[userID]; ok && current == s {
		delete(r.conns, userID)
	}
}

// Lookup returns the user's active connection, if any.
func (r *Registry) Lookup(userID string) (Sender, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.conns[userID]
	return s, ok
}

// Dispatcher pushes events to connected users through the registry.
// Delivery is fire-and-forget: no acknowledgment, no retry, no queue of
// missed events. A disconnected recipient sees the message on their next
// history fetch.
type Dispatcher struct {
	registry *Registry
}

// NewDispatcher returns a Dispatcher backed by the given registry.
func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Notify delivers the event to the user's active connection if one is
// registered and reports whether a delivery was attempted. An offline
// user is a silent no-op.
func (d *Dispatcher) Notify(userID string, ev Event) bool {
	s, ok := d.registry.Lookup(userID)
	if !ok {
		return false
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		log.Errorf("failed to encode %s event for user %s: %v", ev.Event, userID, err)
		return false
	}

	if !s.Enqueue(payload) {
		// Buffer full: the connection is stalled. Drop the event rather
		// than block the caller's request.
		log.Warnf("dropping %s event for user %s: send buffer full", ev.Event, userID)
		return false
	}
	return true
}
