// Package realtime tracks connected users and pushes events to them.
package realtime

import "encoding/json"

// Event names on the server→client channel. Client→server traffic mirrors
// the typing pair with a receiverId payload.
const (
	EventNewMessage  = "newMessage"
	EventTypingStart = "typingStart"
	EventTypingStop  = "typingStop"
)

// Event is the wire envelope on the WebSocket channel.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// TypingData identifies the parties of a typing signal. Server→client
// events carry senderId; client→server events carry receiverId.
type TypingData struct {
	SenderID   string `json:"senderId,omitempty"`
	ReceiverID string `json:"receiverId,omitempty"`
}

// NewEvent builds an Event from a name and any JSON-marshalable payload.
func NewEvent(name string, data any) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, err
	}
	return Event{Event: name, Data: raw}, nil
}
