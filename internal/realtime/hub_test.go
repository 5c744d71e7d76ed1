package realtime

import (
	"encoding/json"
	"testing"
)

// fakeSender records enqueued payloads; full simulates a stalled
// connection whose buffer rejects writes.
type fakeSender struct {
	payloads [][]byte
	full     bool
}

func (f *fakeSender) Enqueue(p []byte) bool {
	if f.full {
		return false
	}
	f.payloads = append(f.payloads, p)
	return true
}

func (f *fakeSender) lastEvent(t *testing.T) Event {
	t.Helper()
	if len(f.payloads) == 0 {
		t.Fatalf("no payloads enqueued")
	}
	var ev Event
	if err := json.Unmarshal(f.payloads[len(f.payloads)-1], &ev); err != nil {
		t.Fatalf("enqueued payload is not an event: %v", err)
	}
	return ev
}

func TestDispatcherNotifyDelivers(t *testing.T) {
	reg := NewRegistry()
	disp := NewDispatcher(reg)

	bob := &fakeSender{}
	reg.Register("bob", bob)

	ev, err := NewEvent(EventNewMessage, map[string]string{"text": "hi"})
	if err != nil {
		t.Fatalf("NewEvent failed: %v", err)
	}

	if !disp.Notify("bob", ev) {
		t.Fatalf("expected delivery to connected user")
	}
	if got := bob.lastEvent(t); got.Event != EventNewMessage {
		t.Fatalf("wrong event delivered: %q", got.Event)
	}
}

func TestDispatcherNotifyOfflineIsNoop(t *testing.T) {
	disp := NewDispatcher(NewRegistry())

	ev, _ := NewEvent(EventNewMessage, nil)
	if disp.Notify("nobody", ev) {
		t.Fatalf("expected no delivery to offline user")
	}
}

func TestDispatcherNotifyFullBufferDrops(t *testing.T) {
	reg := NewRegistry()
	disp := NewDispatcher(reg)

	stalled := &fakeSender{full: true}
	reg.Register("bob", stalled)

	ev, _ := NewEvent(EventNewMessage, nil)
	if disp.Notify("bob", ev) {
		t.Fatalf("expected drop when send buffer is full")
	}
}

func TestRegistryLastWriteWins(t *testing.T) {
	reg := NewRegistry()

	first := &fakeSender{}
	second := &fakeSender{}
	reg.Register("alice", first)
	reg.Register("alice", second) // second device evicts the first

	got, ok := reg.Lookup("alice")
	if !ok || got != second {
		t.Fatalf("expected second connection to win registration")
	}
}

func TestRegistryStaleUnregisterIgnored(t *testing.T) {
	reg := NewRegistry()

	old := &fakeSender{}
	fresh := &fakeSender{}
	reg.Register("alice", old)
	reg.Register("alice", fresh)

	// the evicted connection disconnects late; its unregister must not
	// clobber the newer registration
	reg.Unregister("alice", old)

	if got, ok := reg.Lookup("alice"); !ok || got != fresh {
		t.Fatalf("stale unregister removed the fresh connection")
	}

	// the owning connection's unregister does remove the entry
	reg.Unregister("alice", fresh)
	if _, ok := reg.Lookup("alice"); ok {
		t.Fatalf("expected entry removed after owning unregister")
	}
}
