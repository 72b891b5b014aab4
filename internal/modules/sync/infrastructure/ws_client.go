package infrastructure

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"storeAdminWs/internal/modules/sync/domain"
)

// Command is what a connected tab sends: list state mutations plus ping.
type Command struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// CommandHandler processes one inbound command for its client.
type CommandHandler func(client *Client, cmd Command)

// Client is one connected browser tab.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	done       chan struct{}
	tabID      string
	userID     string
	entity     string
	handler    CommandHandler
	closeOnce  sync.Once
	closeHooks []func(*Client)
	hookMu     sync.Mutex
}

// NewClient creates a tab client with the given send buffer and registers it
// on the hub.
func NewClient(hub *Hub, conn *websocket.Conn, tabID, userID, entity string, buf int, handler CommandHandler) *Client {
	if buf <= 0 {
		buf = 16
	}
	client := &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, buf),
		done:    make(chan struct{}),
		tabID:   strings.TrimSpace(tabID),
		userID:  strings.TrimSpace(userID),
		entity:  strings.TrimSpace(entity),
		handler: handler,
	}
	hub.registerClient(client)
	return client
}

// TabID identifies the browser tab; it doubles as the client's bus origin.
func (c *Client) TabID() string {
	return c.tabID
}

func (c *Client) key() string {
	parts := []string{c.tabID}
	if c.entity != "" {
		parts = append(parts, c.entity)
	}
	return strings.Join(parts, ":")
}

// close signals shutdown via the done channel instead of closing send: bus
// dispatch goroutines may still be racing into SendMessage, and a send on a
// closed channel would take the whole process down.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
		c.invokeCloseHooks()
	})
}

// AddCloseHook registers a callback executed once when the client closes.
// Sessions use it to unsubscribe from the bus and stop their controller.
func (c *Client) AddCloseHook(fn func(*Client)) {
	if fn == nil {
		return
	}
	c.hookMu.Lock()
	c.closeHooks = append(c.closeHooks, fn)
	c.hookMu.Unlock()
}

func (c *Client) invokeCloseHooks() {
	c.hookMu.Lock()
	hooks := append([]func(*Client){}, c.closeHooks...)
	c.closeHooks = nil
	c.hookMu.Unlock()

	for _, hook := range hooks {
		func(h func(*Client)) {
			defer func() {
				if r := recover(); r != nil {
					slog.Warn("ws close hook panic", slog.Any("error", r))
				}
			}()
			h(c)
		}(hook)
	}
}

// SendMessage pushes one message to the tab. Sends never block: a message
// for a detached tab is dropped, and a tab whose buffer is full is detached.
// Either way the lost signal heals on the next manual action.
func (c *Client) SendMessage(msg *domain.Message) {
	if msg == nil {
		return
	}
	select {
	case <-c.done:
		slog.Debug("websocket send after detach dropped", slog.String("tabId", c.tabID), slog.String("entity", c.entity))
		return
	default:
	}
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("websocket marshal error", slog.Any("error", err))
		return
	}
	select {
	case c.send <- data:
	case <-c.done:
		slog.Debug("websocket send after detach dropped", slog.String("tabId", c.tabID), slog.String("entity", c.entity))
	default:
		slog.Warn("websocket send buffer full", slog.String("tabId", c.tabID), slog.String("entity", c.entity))
		go c.hub.detachClient(c)
	}
}

func (c *Client) WritePump() {
	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				slog.Warn("websocket write error", slog.Any("error", err))
				return
			}
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				slog.Warn("websocket ping error", slog.Any("error", err))
				return
			}
		}
	}
}

func (c *Client) ReadPump() {
	c.conn.SetReadLimit(1 << 16)
	_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})
	defer c.hub.detachClient(c)
	for {
		var cmd Command
		_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		if err := c.conn.ReadJSON(&cmd); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("websocket read error", slog.String("tabId", c.tabID), slog.String("entity", c.entity), slog.Any("error", err))
			}
			return
		}
		if c.handler != nil {
			c.handler(c, cmd)
		}
	}
}
