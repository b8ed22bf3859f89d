package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"social-scheduler/internal/event"
)

// MaxConnectionsPerUser caps open tabs per account; the oldest is evicted.
const MaxConnectionsPerUser = 8

var ErrHubClosed = errors.New("websocket hub closed")

// Hub fans bus events out to the connections of the owning user.
type Hub struct {
	bus        event.Bus
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	closeOnce  sync.Once

	// byUser is only touched by Run.
	byUser map[string][]*Client

	mu    sync.RWMutex
	count map[string]int
}

func NewHub(bus event.Bus) *Hub {
	return &Hub{
		bus:        bus,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		byUser:     map[string][]*Client{},
		count:      map[string]int{},
	}
}

// Connected reports how many live connections userID has.
func (h *Hub) Connected(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count[userID]
}

func (h *Hub) Run(ctx context.Context) {
	events, unsubscribe := h.bus.Subscribe()
	defer unsubscribe()
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.attach(c)
		case c := <-h.unregister:
			h.detach(c)
		case e, ok := <-events:
			if !ok {
				return
			}
			h.deliver(e)
		}
	}
}

func (h *Hub) join(c *Client) error {
	select {
	case h.register <- c:
		return nil
	case <-h.done:
		return ErrHubClosed
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) attach(c *Client) {
	clients := h.byUser[c.userID]
	if len(clients) >= MaxConnectionsPerUser {
		oldest := clients[0]
		clients = clients[1:]
		close(oldest.send)
		slog.Debug("websocket evicted", "client_id", oldest.id, "user_id", c.userID)
	}
	h.byUser[c.userID] = append(clients, c)
	h.recount(c.userID)
}

func (h *Hub) detach(c *Client) {
	clients := h.byUser[c.userID]
	for i, existing := range clients {
		if existing != c {
			continue
		}
		close(c.send)
		h.byUser[c.userID] = append(clients[:i:i], clients[i+1:]...)
		break
	}
	if len(h.byUser[c.userID]) == 0 {
		delete(h.byUser, c.userID)
	}
	h.recount(c.userID)
}

// deliver sends e to its owner. Events without an owner go to everyone.
func (h *Hub) deliver(e event.Event) {
	message, err := json.Marshal(e)
	if err != nil {
		slog.Error("websocket event marshal failed", "type", e.Type, "error", err)
		return
	}

	if e.ActorID != "" {
		h.sendTo(e.ActorID, message)
		return
	}
	for userID := range h.byUser {
		h.sendTo(userID, message)
	}
}

// sendTo drops connections whose buffer is full instead of blocking the hub.
func (h *Hub) sendTo(userID string, message []byte) {
	clients := h.byUser[userID]
	kept := clients[:0]
	for _, c := range clients {
		select {
		case c.send <- message:
			kept = append(kept, c)
		default:
			close(c.send)
			slog.Warn("websocket client too slow, dropped", "client_id", c.id, "user_id", userID)
		}
	}
	if len(kept) == 0 {
		delete(h.byUser, userID)
	} else {
		h.byUser[userID] = kept
	}
	h.recount(userID)
}

func (h *Hub) recount(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n := len(h.byUser[userID]); n > 0 {
		h.count[userID] = n
	} else {
		delete(h.count, userID)
	}
}

func (h *Hub) shutdown() {
	h.closeOnce.Do(func() { close(h.done) })
	for userID, clients := range h.byUser {
		for _, c := range clients {
			close(c.send)
		}
		delete(h.byUser, userID)
	}
	h.mu.Lock()
	h.count = map[string]int{}
	h.mu.Unlock()
}
