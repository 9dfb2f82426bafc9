package editorproto

import (
	"log/slog"
	"sync"
)

// Broadcaster pushes an Event to every client subscribed to its
// RoutineID. Mirrors the teacher's Broadcaster interface (kept as a
// seam so a future Redis-backed hub could fan out across processes).
type Broadcaster interface {
	Broadcast(routineID string, event *Event)
}

// Hub tracks connected editor clients and routes pushed Events to the
// clients subscribed to the affected routine, grounded on the teacher's
// Hub — same register/unregister/broadcast channel loop, collapsed to a
// single routine-id subscription axis since the editor protocol has no
// separate workflow/execution split.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *hubMsg

	byRoutineID map[string]map[*Client]bool

	logger *slog.Logger
	mu     sync.RWMutex
}

type hubMsg struct {
	routineID string
	event     *Event
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan *hubMsg, 256),
		byRoutineID: make(map[string]map[*Client]bool),
		logger:      logger,
	}
}

// Run drives the hub's event loop; call it in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.registerClient(c)
		case c := <-h.unregister:
			h.unregisterClient(c)
		case msg := <-h.broadcast:
			h.broadcastEvent(msg)
		}
	}
}

func (h *Hub) registerClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
	h.logger.Debug("editor client registered", "client_id", c.id, "total_clients", len(h.clients))
}

func (h *Hub) unregisterClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)

	c.subs.mu.RLock()
	for routineID := range c.subs.routines {
		if clients, ok := h.byRoutineID[routineID]; ok {
			delete(clients, c)
			if len(clients) == 0 {
				delete(h.byRoutineID, routineID)
			}
		}
	}
	c.subs.mu.RUnlock()

	h.logger.Debug("editor client unregistered", "client_id", c.id, "total_clients", len(h.clients))
}

// Broadcast implements Broadcaster.
func (h *Hub) Broadcast(routineID string, event *Event) {
	h.broadcast <- &hubMsg{routineID: routineID, event: event}
}

func (h *Hub) broadcastEvent(msg *hubMsg) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.byRoutineID[msg.routineID]
	if !ok {
		return
	}
	for c := range clients {
		select {
		case c.send <- msg.event:
		default:
			h.logger.Warn("editor client buffer full, dropping event", "client_id", c.id, "event_type", msg.event.Type)
		}
	}
}

// Subscribe attaches c to routineID's push notifications.
func (h *Hub) Subscribe(c *Client, routineID string) {
	if routineID == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	c.subs.mu.Lock()
	defer c.subs.mu.Unlock()

	c.subs.routines[routineID] = true
	if h.byRoutineID[routineID] == nil {
		h.byRoutineID[routineID] = make(map[*Client]bool)
	}
	h.byRoutineID[routineID][c] = true
}

// Unsubscribe detaches c from routineID's push notifications.
func (h *Hub) Unsubscribe(c *Client, routineID string) {
	if routineID == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	c.subs.mu.Lock()
	defer c.subs.mu.Unlock()

	delete(c.subs.routines, routineID)
	if clients, ok := h.byRoutineID[routineID]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.byRoutineID, routineID)
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

var _ Broadcaster = (*Hub)(nil)
