package timeline

import (
	"sync"
	"time"
)

// typingIdle is how long after the last keystroke the coalescer waits
// before auto-emitting a stop signal.
const typingIdle = 2 * time.Second

// TypingSignaler emits a typing signal to the peer identified by
// receiverID. typing is true for typingStart, false for typingStop.
type TypingSignaler interface {
	SendTyping(receiverID string, typing bool)
}

// TypingCoalescer turns raw keystrokes into the typingStart/typingStop
// pair: every keystroke emits a start and re-arms a 2-second idle timer
// that emits the stop. Stop emits immediately on send or unmount.
type TypingCoalescer struct {
	mu         sync.Mutex
	signaler   TypingSignaler
	receiverID string
	idle       time.Duration
	timer      *time.Timer
	active     bool
}

// NewTypingCoalescer returns a coalescer bound to one peer.
func NewTypingCoalescer(signaler TypingSignaler, receiverID string) *TypingCoalescer {
	return &TypingCoalescer{
		signaler:   signaler,
		receiverID: receiverID,
		idle:       typingIdle,
	}
}

// KeyStroke signals that the user is typing and resets the idle timer.
func (t *TypingCoalescer) KeyStroke() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.signaler.SendTyping(t.receiverID, true)
	t.active = true

	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.idle, t.timeout)
}

// Stop clears the timer and emits typingStop if a start was emitted.
// Called on send and on unmount.
func (t *TypingCoalescer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	if t.active {
		t.active = false
		t.signaler.SendTyping(t.receiverID, false)
	}
}

func (t *TypingCoalescer) timeout() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.timer = nil
	if t.active {
		t.active = false
		t.signaler.SendTyping(t.receiverID, false)
	}
}
