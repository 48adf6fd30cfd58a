package chat

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// SupportRoom is the well-known session support staff join to receive alerts.
const SupportRoom = "support_room"

const (
	// Outbound buffer per client. A client that falls this far behind is
	// dropped rather than allowed to stall broadcasts.
	sendBufferSize = 64

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 45 * time.Second
)

// Event is one realtime message in either direction.
type Event struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data,omitempty"`
}

// Client is one websocket connection. conn is nil for broker relays and in
// tests; only the write pump touches it.
type Client struct {
	conn *websocket.Conn
	send chan []byte
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// Send queues an event for delivery. Returns false when the client's buffer
// is full and the event was dropped.
func (c *Client) Send(ev Event) bool {
	data, err := json.Marshal(ev)
	if err != nil {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// WritePump drains the send buffer onto the connection and keeps the
// connection alive with pings. It exits when the send channel is closed or a
// write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Hub is the room registry for one server process: which connections are
// joined to which chat session. All membership state lives here, guarded by
// mu. Cross-process fan-out goes through the optional Broker.
type Hub struct {
	id     string
	broker Broker

	mu      sync.RWMutex
	rooms   map[string]map[*Client]bool
	clients map[*Client]map[string]bool
}

// NewHub creates a hub. broker may be nil for single-process deployments.
func NewHub(broker Broker) *Hub {
	return &Hub{
		id:      uuid.New().String(),
		broker:  broker,
		rooms:   make(map[string]map[*Client]bool),
		clients: make(map[*Client]map[string]bool),
	}
}

// Join adds the client to a session's broadcast group.
func (h *Hub) Join(c *Client, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[sessionID] == nil {
		h.rooms[sessionID] = make(map[*Client]bool)
	}
	h.rooms[sessionID][c] = true

	if h.clients[c] == nil {
		h.clients[c] = make(map[string]bool)
	}
	h.clients[c][sessionID] = true
}

// Leave removes the client from a session's broadcast group.
func (h *Hub) Leave(c *Client, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(c, sessionID)
}

// Disconnect releases every membership the client holds and closes its send
// channel. Called exactly once, when the connection drops.
func (h *Hub) Disconnect(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sessionID := range h.clients[c] {
		h.remove(c, sessionID)
	}
	if _, tracked := h.clients[c]; tracked {
		delete(h.clients, c)
	}
	close(c.send)
}

// remove expects h.mu held.
func (h *Hub) remove(c *Client, sessionID string) {
	if members := h.rooms[sessionID]; members != nil {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, sessionID)
		}
	}
	if sessions := h.clients[c]; sessions != nil {
		delete(sessions, sessionID)
	}
}

// MemberCount reports how many local connections are joined to a session.
func (h *Hub) MemberCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}

// Broadcast delivers an event to every member of a session, on this process
// and (via the broker) on peer processes.
func (h *Hub) Broadcast(sessionID string, ev Event) {
	h.broadcast(sessionID, ev, nil)
}

// BroadcastOthers delivers an event to every member of a session except one
// local connection, typically the originator.
func (h *Hub) BroadcastOthers(sessionID string, except *Client, ev Event) {
	h.broadcast(sessionID, ev, except)
}

func (h *Hub) broadcast(sessionID string, ev Event, except *Client) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("chat: failed to encode %s event: %v", ev.Type, err)
		return
	}

	h.deliverLocal(sessionID, data, except)

	if h.broker != nil {
		env := Envelope{Origin: h.id, SessionID: sessionID, Payload: data}
		if err := h.broker.Publish(context.Background(), env); err != nil {
			log.Printf("chat: broker publish failed: %v", err)
		}
	}
}

// deliverLocal queues the payload for every member. The non-blocking sends
// stay under the read lock: Disconnect closes send channels under the write
// lock, so no channel can be closed while a delivery holds a reference to it.
func (h *Hub) deliverLocal(sessionID string, data []byte, except *Client) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[sessionID] {
		if c == except {
			continue
		}
		select {
		case c.send <- data:
		default:
			// Slow consumer; drop the event rather than block the room.
			log.Printf("chat: dropping event for slow client in session %s", sessionID)
		}
	}
}

// Run relays broker messages published by peer processes into local rooms.
// It blocks until the context is cancelled; a no-op without a broker.
func (h *Hub) Run(ctx context.Context) {
	if h.broker == nil {
		return
	}

	ch, err := h.broker.Subscribe(ctx)
	if err != nil {
		log.Printf("chat: broker subscribe failed: %v", err)
		return
	}

	for env := range ch {
		if env.Origin == h.id {
			continue
		}
		h.deliverLocal(env.SessionID, env.Payload, nil)
	}
}
