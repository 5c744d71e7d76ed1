package realtime

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Inbound traffic is only
	// typing signals, so this stays small.
	maxMessageSize = 512

	// Outbound buffer size per connection.
	sendBufferSize = 64
)

// Client owns one WebSocket connection for one authenticated user. It
// registers itself in the registry on start and unregisters on teardown.
type Client struct {
	registry *Registry
	dispatch *Dispatcher

	// UserID of the authenticated connection owner.
	UserID string

	conn *websocket.Conn
	send chan []byte
}

// NewClient wraps an upgraded connection and registers it as the user's
// active one.
func NewClient(registry *Registry, dispatch *Dispatcher, userID string, conn *websocket.Conn) *Client {
	c := &Client{
		registry: registry,
		dispatch: dispatch,
		UserID:   userID,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
	}
	registry.Register(userID, c)
	return c
}

// Enqueue queues an encoded event for delivery, reporting false when the
// buffer is full. It never blocks the caller.
func (c *Client) Enqueue(payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// ReadPump reads inbound events until the connection drops, then
// unregisters the client. The only inbound events are the typing signals,
// which are relayed fire-and-forget to the named receiver.
func (c *Client) ReadPump() {
	defer func() {
		c.registry.Unregister(c.UserID, c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warnf("websocket read error for user %s: %v", c.UserID, err)
			}
			return
		}
		c.handleInbound(message)
	}
}

// handleInbound relays a client-sent typing signal to its receiver.
// Unknown events are ignored; the socket channel is not a command surface.
func (c *Client) handleInbound(message []byte) {
	var ev Event
	if err := json.Unmarshal(message, &ev); err != nil {
		log.Debugf("ignoring malformed event from user %s: %v", c.UserID, err)
		return
	}

	switch ev.Event {
	case EventTypingStart, EventTypingStop:
		var data TypingData
		if err := json.Unmarshal(ev.Data, &data); err != nil || data.ReceiverID == "" {
			return
		}
		// Rewrite the payload so the receiver learns who is typing, not
		// who they should have been.
		out, err := NewEvent(ev.Event, TypingData{SenderID: c.UserID})
		if err != nil {
			return
		}
		c.dispatch.Notify(data.ReceiverID, out)
	default:
		log.Debugf("ignoring unknown event %q from user %s", ev.Event, c.UserID)
	}
}

// WritePump drains the send buffer to the connection and keeps it alive
// with periodic pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Warnf("websocket write error for user %s: %v", c.UserID, err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
