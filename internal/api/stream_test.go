package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedkhairy/ta-engine/internal/engine"
	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func namedResult(indicator string) []engine.NamedResult {
	return []engine.NamedResult{{
		Indicator: indicator,
		Result: series.Result{
			Value:     mustDecimal("42"),
			Timestamp: time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC),
		},
	}}
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d clients, have %d", want, hub.ClientCount())
}

func TestHubDeliversToSubscribers(t *testing.T) {
	hub := NewHub(DefaultHubConfig())
	defer hub.Close()

	conn := dialHub(t, hub)
	waitForClients(t, hub, 1)

	require.NoError(t, conn.WriteJSON(ClientMessage{Action: "subscribe", Symbols: []string{"aapl"}}))

	// Subscription is applied by the read pump; poll until the broadcast
	// lands.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	go func() {
		for i := 0; i < 50; i++ {
			hub.Broadcast("AAPL", namedResult("sma_20"))
			time.Sleep(20 * time.Millisecond)
		}
	}()

	var update UpdateMessage
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &update))

	assert.Equal(t, "update", update.Type)
	assert.Equal(t, "AAPL", update.Symbol)
	require.Len(t, update.Results, 1)
	assert.Equal(t, "sma_20", update.Results[0].Indicator)
}

func TestHubSkipsUnsubscribedSymbols(t *testing.T) {
	hub := NewHub(DefaultHubConfig())
	defer hub.Close()

	conn := dialHub(t, hub)
	waitForClients(t, hub, 1)

	require.NoError(t, conn.WriteJSON(ClientMessage{Action: "subscribe", Symbols: []string{"MSFT"}}))
	time.Sleep(50 * time.Millisecond)

	hub.Broadcast("AAPL", namedResult("sma_20"))

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "no update expected for an unsubscribed symbol")
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub(DefaultHubConfig())
	defer hub.Close()

	conn := dialHub(t, hub)
	waitForClients(t, hub, 1)

	require.NoError(t, conn.WriteJSON(ClientMessage{Action: "subscribe", Symbols: []string{"AAPL"}}))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, conn.WriteJSON(ClientMessage{Action: "unsubscribe", Symbols: []string{"AAPL"}}))
	time.Sleep(50 * time.Millisecond)

	hub.Broadcast("AAPL", namedResult("sma_20"))

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestHubConnectionLimit(t *testing.T) {
	cfg := DefaultHubConfig()
	cfg.MaxConnections = 1
	hub := NewHub(cfg)
	defer hub.Close()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()
	url := "ws" + strings.TrimPrefix(server.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	waitForClients(t, hub, 1)

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	assert.Error(t, err)
	if resp != nil {
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	}
}
