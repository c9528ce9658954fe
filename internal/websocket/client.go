package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 65536
)

// Client is one connected calendar view.
type Client struct {
	hub *Hub

	// sendMu guards send and closed. The hub and the read loop both write.
	sendMu sync.Mutex
	send   chan []byte
	closed bool

	mu    sync.RWMutex
	camps map[string]bool
}

// NewClient creates a new WebSocket client subscribed to every camp.
func NewClient(hub *Hub) *Client {
	return &Client{
		hub:  hub,
		send: make(chan []byte, 256),
	}
}

// Send returns the send channel for the client.
func (c *Client) Send() chan []byte {
	return c.send
}

// trySend queues data without blocking. It reports false if the client is
// closed or its buffer is full.
func (c *Client) trySend(data []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// close closes the send channel once. The write pump then ends the connection.
func (c *Client) close() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Wants reports whether the client receives events for campID.
func (c *Client) Wants(campID string) bool {
	if campID == "" {
		return true
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.camps) == 0 || c.camps[campID]
}

// Subscribe limits the client to campIDs, adding to any earlier subscription.
func (c *Client) Subscribe(campIDs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.camps == nil {
		c.camps = make(map[string]bool)
	}
	for _, id := range campIDs {
		c.camps[id] = true
	}
}

// Unsubscribe drops campIDs. Dropping every camp reverts to receiving all events.
func (c *Client) Unsubscribe(campIDs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range campIDs {
		delete(c.camps, id)
	}
}

// Serve runs the read and write pumps for conn until the connection closes.
func (c *Client) Serve(conn *websocket.Conn) {
	go c.writePump(conn)
	c.readPump(conn)
}

// writePump pumps messages from the hub to the connection.
func (c *Client) writePump(conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump handles client commands until the connection fails.
func (c *Client) readPump(conn *websocket.Conn) {
	defer func() {
		c.hub.Unregister(c)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}

		if reply := c.handle(message); reply != nil {
			c.reply(*reply)
		}
	}
}

// handle applies a client command and returns the response to send, if any.
func (c *Client) handle(raw []byte) *Message {
	var cmd ClientMessage
	if err := json.Unmarshal(raw, &cmd); err != nil {
		msg := NewMessage(TypeError, ErrorPayload{Code: "bad_message", Message: "Message is not valid JSON"})
		return &msg
	}

	switch cmd.Type {
	case TypePing:
		msg := NewMessage(TypePong, nil)
		return &msg

	case TypeSubscribe, TypeUnsubscribe:
		var sub SubscribePayload
		if len(cmd.Payload) > 0 {
			if err := json.Unmarshal(cmd.Payload, &sub); err != nil {
				msg := NewMessage(TypeError, ErrorPayload{
					Code:         "bad_payload",
					Message:      "Expected {\"camp_ids\": [...]}",
					OriginalType: string(cmd.Type),
				})
				return &msg
			}
		}
		if cmd.Type == TypeSubscribe {
			c.Subscribe(sub.CampIDs)
		} else {
			c.Unsubscribe(sub.CampIDs)
		}
		msg := NewMessage(TypeSubscribeAck, sub)
		return &msg

	default:
		msg := NewMessage(TypeError, ErrorPayload{
			Code:         "unknown_type",
			Message:      "Unknown message type",
			OriginalType: string(cmd.Type),
		})
		return &msg
	}
}

// reply queues msg for this client only. It never blocks the read loop.
func (c *Client) reply(msg Message) {
	data, err := msg.JSON()
	if err != nil {
		log.Printf("Error encoding WebSocket reply: %v", err)
		return
	}
	if !c.trySend(data) {
		log.Printf("Dropping WebSocket reply %s, client closed or backed up", msg.Type)
	}
}
