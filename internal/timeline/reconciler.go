// Package timeline holds the client-side conversation state: it merges
// the initial history fetch, locally confirmed sends and pushed messages
// into one ordered, duplicate-free view of the selected conversation.
package timeline

import (
	"sync"
	"time"
)

// Profile is a client-side user summary.
type Profile struct {
	ID         string `json:"_id"`
	FullName   string `json:"fullName"`
	ProfilePic string `json:"profilePic,omitempty"`
}

// Message is a wire message as the client sees it: identifiers are hex
// strings, exactly as the server serializes them.
type Message struct {
	ID         string    `json:"_id"`
	SenderID   string    `json:"senderID"`
	ReceiverID string    `json:"receiverID"`
	Text       string    `json:"text,omitempty"`
	Image      string    `json:"image,omitempty"`
	Video      string    `json:"video,omitempty"`
	FileType   string    `json:"fileType"`
	FileName   string    `json:"fileName,omitempty"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Party is a resolved participant on a timeline entry.
type Party struct {
	Profile
	IsMe bool `json:"isMe"`
}

// Entry is a message enriched with both resolved parties.
type Entry struct {
	Message
	Sender   Party `json:"sender"`
	Receiver Party `json:"receiver"`
}

// Source delivers pushed messages. Subscribe returns a cancel function;
// after cancel returns, the handler is never called again.
type Source interface {
	Subscribe(handler func(*Message)) (cancel func())
}

// Reconciler owns the message list for the currently selected peer. The
// authenticated user and the push source are injected at construction;
// there is no ambient state.
type Reconciler struct {
	mu sync.Mutex

	self   Profile
	source Source

	peer    *Profile
	entries []Entry
	seen    map[string]bool
	total   int
	loading bool
	cancel  func()
}

// NewReconciler returns a reconciler for the authenticated user.
func NewReconciler(self Profile, source Source) *Reconciler {
	return &Reconciler{self: self, source: source}
}

// SetLoading flags an in-flight history fetch.
func (r *Reconciler) SetLoading(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = v
}

// Loading reports whether a history fetch is in flight.
func (r *Reconciler) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}

// SelectPeer replaces the timeline with the peer's fetched history and
// subscribes to pushes. Any previous subscription is cancelled first so
// events cannot leak across conversations.
func (r *Reconciler) SelectPeer(peer Profile, history []*Message, total int) {
	r.mu.Lock()
	old := r.cancel
	r.cancel = nil
	r.peer = &peer
	r.entries = nil
	r.seen = make(map[string]bool)
	r.total = 0
	r.loading = false
	for _, m := range history {
		r.insertLocked(m)
	}
	if total > r.total {
		r.total = total
	}
	r.mu.Unlock()

	// Subscription changes happen outside the lock: handlers take the
	// same mutex, so a source delivering synchronously must not find it
	// held.
	if old != nil {
		old()
	}
	if r.source != nil {
		cancel := r.source.Subscribe(r.onPush)
		r.mu.Lock()
		r.cancel = cancel
		r.mu.Unlock()
	}
}

// ClearPeer deselects the conversation and unsubscribes from pushes.
func (r *Reconciler) ClearPeer() {
	r.mu.Lock()
	old := r.cancel
	r.cancel = nil
	r.peer = nil
	r.entries = nil
	r.seen = nil
	r.total = 0
	r.mu.Unlock()

	if old != nil {
		old()
	}
}

// AppendLocal adds the requester's own message once the server has
// confirmed persistence. Unsent messages are never shown.
func (r *Reconciler) AppendLocal(m *Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.peer == nil {
		return
	}
	r.insertLocked(m)
}

// Remove drops a deleted message from the timeline.
func (r *Reconciler) Remove(messageID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if e.ID == messageID {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			delete(r.seen, messageID)
			r.total--
			return
		}
	}
}

// Peer returns the selected peer, if any.
func (r *Reconciler) Peer() (Profile, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.peer == nil {
		return Profile{}, false
	}
	return *r.peer, true
}

// Entries returns a copy of the current timeline, oldest first.
func (r *Reconciler) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Total returns the conversation's message count.
func (r *Reconciler) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

// onPush filters pushed messages down to the open conversation: only
// messages between the authenticated user and the selected peer are
// appended, everything else is ignored. This is how messages for
// non-selected conversations stay out of the open thread.
func (r *Reconciler) onPush(m *Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.peer == nil {
		return
	}
	relevant := (m.SenderID == r.peer.ID && m.ReceiverID == r.self.ID) ||
		(m.SenderID == r.self.ID && m.ReceiverID == r.peer.ID)
	if !relevant {
		return
	}
	r.insertLocked(m)
}

// insertLocked appends a message in chronological position, dropping
// duplicates by id. The HTTP response to a send and a push can race in
// either order; id-based dedupe makes the merge safe regardless.
func (r *Reconciler) insertLocked(m *Message) {
	if m.ID != "" && r.seen[m.ID] {
		return
	}
	if m.ID != "" {
		r.seen[m.ID] = true
	}

	entry := r.enrich(m)

	// Almost always an append; walk back only for out-of-order arrivals.
	pos := len(r.entries)
	for pos > 0 && r.entries[pos-1].CreatedAt.After(entry.CreatedAt) {
		pos--
	}
	r.entries = append(r.entries, Entry{})
	copy(r.entries[pos+1:], r.entries[pos:])
	r.entries[pos] = entry
	r.total++
}

// enrich resolves both parties from the two locally known profiles.
func (r *Reconciler) enrich(m *Message) Entry {
	sender := Party{Profile: r.self, IsMe: true}
	receiver := Party{Profile: *r.peer, IsMe: false}
	if m.SenderID == r.peer.ID {
		sender = Party{Profile: *r.peer, IsMe: false}
		receiver = Party{Profile: r.self, IsMe: true}
	}
	return Entry{Message: *m, Sender: sender, Receiver: receiver}
}
