package services

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Event is a server-to-client push frame.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Client wraps one websocket connection. Writes are serialized by the
// client's own mutex since gorilla connections allow one writer at a time.
type Client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// NewClient wraps an upgraded websocket connection.
func NewClient(conn *websocket.Conn) *Client {
	return &Client{conn: conn}
}

func (c *Client) send(ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub manages connected push clients and their address groups.
// Delivery is at-most-once and best-effort: a failed write drops the
// client, nothing is retried or acknowledged.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]map[string]struct{} // client -> joined addresses
	rooms   map[string]map[*Client]struct{} // address -> members
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]map[string]struct{}),
		rooms:   make(map[string]map[*Client]struct{}),
	}
}

// Register adds a newly connected client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = make(map[string]struct{})
	log.Info().Int("clients", len(h.clients)).Msg("Push client connected")
}

// Unregister removes a client from the hub and from every group it
// joined. Safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	addresses, ok := h.clients[c]
	if !ok {
		return
	}

	for addr := range addresses {
		delete(h.rooms[addr], c)
		if len(h.rooms[addr]) == 0 {
			delete(h.rooms, addr)
		}
	}
	delete(h.clients, c)
	c.conn.Close()

	log.Info().Int("clients", len(h.clients)).Msg("Push client disconnected")
}

// Join subscribes the client to the group identified by address.
// Joining the same address twice is a no-op.
func (h *Hub) Join(c *Client, address string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	addresses, ok := h.clients[c]
	if !ok {
		return
	}
	addresses[address] = struct{}{}

	if h.rooms[address] == nil {
		h.rooms[address] = make(map[*Client]struct{})
	}
	h.rooms[address][c] = struct{}{}

	log.Debug().Str("address", address).Msg("Push client joined address")
}

// SendToClient pushes a single event to one client.
func (h *Hub) SendToClient(c *Client, event string, payload interface{}) {
	if err := c.send(Event{Event: event, Data: payload}); err != nil {
		log.Error().Err(err).Str("event", event).Msg("Failed to push to client")
		h.Unregister(c)
	}
}

// BroadcastGlobal delivers an event to every connected client.
func (h *Hub) BroadcastGlobal(event string, payload interface{}) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	h.push(targets, Event{Event: event, Data: payload})
}

// DeliverToAddress delivers an event only to clients that joined the
// given address group.
func (h *Hub) DeliverToAddress(address, event string, payload interface{}) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.rooms[address]))
	for c := range h.rooms[address] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	h.push(targets, Event{Event: event, Data: payload})
}

func (h *Hub) push(targets []*Client, ev Event) {
	for _, c := range targets {
		if err := c.send(ev); err != nil {
			log.Error().Err(err).Str("event", ev.Event).Msg("Failed to push event")
			h.Unregister(c)
		}
	}
}
