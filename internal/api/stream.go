package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mohamedkhairy/ta-engine/internal/engine"
	"github.com/mohamedkhairy/ta-engine/pkg/logger"
)

// ClientMessage is what a websocket client sends: subscribe or unsubscribe
// for a set of symbols.
type ClientMessage struct {
	Action  string   `json:"action"`
	Symbols []string `json:"symbols"`
}

// UpdateMessage is pushed to subscribers when a symbol emits results.
type UpdateMessage struct {
	Type    string               `json:"type"`
	Symbol  string               `json:"symbol"`
	Results []engine.NamedResult `json:"results"`
}

// HubConfig holds websocket hub configuration
type HubConfig struct {
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	MaxConnections int
}

// DefaultHubConfig returns default configuration
func DefaultHubConfig() HubConfig {
	return HubConfig{
		PingInterval:   30 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxConnections: 1000,
	}
}

// Hub fans indicator results out to websocket subscribers. Plug Broadcast
// into the engine's result callback.
type Hub struct {
	config  HubConfig
	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

// NewHub creates a websocket hub
func NewHub(config HubConfig) *Hub {
	return &Hub{
		config:  config,
		clients: make(map[*wsClient]struct{}),
	}
}

type wsClient struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	mu      sync.RWMutex
	symbols map[string]bool
}

func (c *wsClient) subscribed(symbol string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.symbols[symbol]
}

func (c *wsClient) apply(msg ClientMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range msg.Symbols {
		symbol := strings.ToUpper(strings.TrimSpace(s))
		if symbol == "" {
			continue
		}
		switch msg.Action {
		case "subscribe":
			c.symbols[symbol] = true
		case "unsubscribe":
			delete(c.symbols, symbol)
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS handles GET /api/v1/stream, upgrading to a websocket session.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	full := len(h.clients) >= h.config.MaxConnections
	h.mu.RUnlock()
	if full {
		respondWithError(w, http.StatusServiceUnavailable, "Too many connections")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed", logger.ErrorField(err))
		return
	}

	client := &wsClient{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, 64),
		symbols: make(map[string]bool),
	}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	logger.Info("WebSocket client connected",
		logger.String("remote_addr", r.RemoteAddr),
		logger.Int("connections", count),
	)

	go client.writePump()
	go client.readPump()
}

func (h *Hub) remove(client *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	h.mu.Unlock()
}

// Broadcast pushes a symbol's results to every subscribed client. Slow
// clients get dropped rather than blocking the engine.
func (h *Hub) Broadcast(symbol string, results []engine.NamedResult) {
	payload, err := json.Marshal(UpdateMessage{
		Type:    "update",
		Symbol:  symbol,
		Results: results,
	})
	if err != nil {
		logger.Error("Failed to marshal update", logger.ErrorField(err))
		return
	}

	h.mu.RLock()
	var stale []*wsClient
	for client := range h.clients {
		if !client.subscribed(symbol) {
			continue
		}
		select {
		case client.send <- payload:
		default:
			stale = append(stale, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range stale {
		logger.Warn("Dropping slow websocket client")
		client.conn.Close()
		h.remove(client)
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects all clients
func (h *Hub) Close() {
	h.mu.Lock()
	for client := range h.clients {
		client.conn.Close()
		close(client.send)
		delete(h.clients, client)
	}
	h.mu.Unlock()
}

func (c *wsClient) readPump() {
	defer func() {
		c.conn.Close()
		c.hub.remove(c)
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Debug("Ignoring malformed client message", logger.ErrorField(err))
			continue
		}
		if msg.Action != "subscribe" && msg.Action != "unsubscribe" {
			continue
		}
		c.apply(msg)
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(c.hub.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
