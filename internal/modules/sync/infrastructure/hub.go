package infrastructure

import (
	"log/slog"
	"sync"
)

// Hub tracks every connected tab client. Signal routing lives on the Bus;
// the hub only owns connection lifecycle, so a tab reconnecting under the
// same id cleanly replaces its previous client.
type Hub struct {
	clients map[string]*Client
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

func (h *Hub) registerClient(c *Client) {
	h.mu.Lock()
	if existing, ok := h.clients[c.key()]; ok && existing != c {
		h.detachLocked(existing)
	}
	h.clients[c.key()] = c
	h.mu.Unlock()
	slog.Info("ws client registered", slog.String("tabId", c.tabID), slog.String("userId", c.userID), slog.String("entity", c.entity))
}

func (h *Hub) detachClient(c *Client) {
	h.mu.Lock()
	h.detachLocked(c)
	h.mu.Unlock()
}

func (h *Hub) detachLocked(c *Client) {
	if c == nil {
		return
	}
	if current, ok := h.clients[c.key()]; ok && current == c {
		delete(h.clients, c.key())
	}
	c.close()
	slog.Info("ws client detached", slog.String("tabId", c.tabID), slog.String("userId", c.userID), slog.String("entity", c.entity))
}

// ClientCount reports how many tabs are currently attached.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown detaches every client, typically during server stop.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.detachClient(c)
	}
}
