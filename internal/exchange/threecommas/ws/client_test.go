package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dcaportfolio/internal/exchange"
	"dcaportfolio/internal/exchange/threecommas/rest"
	"dcaportfolio/internal/logger"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDeal = `{"id": 42, "pair": "USDT_BTC", "status": "bought",
	"created_at": "2024-03-01T10:00:00Z", "updated_at": "2024-03-01T11:00:00Z"}`

func TestBuildIdentifier(t *testing.T) {
	raw, err := buildIdentifier("key", "secret")
	require.NoError(t, err)

	var id channelIdentifier
	require.NoError(t, json.Unmarshal([]byte(raw), &id))
	assert.Equal(t, "DealsChannel", id.Channel)
	require.Len(t, id.Users, 1)
	assert.Equal(t, "key", id.Users[0].APIKey)
	assert.Equal(t, rest.Sign("secret", "/deals"), id.Users[0].Signature)
}

func TestHandleFrame(t *testing.T) {
	c, err := New("ws://unused", "key", "secret", logger.Discard())
	require.NoError(t, err)

	c.handleFrame([]byte(`{"type": "welcome"}`))
	c.handleFrame([]byte(`{"type": "ping", "message": 1709290000}`))
	c.handleFrame([]byte(`{"type": "confirm_subscription", "identifier": "x"}`))
	c.handleFrame([]byte(`not json`))
	c.handleFrame([]byte(`{"identifier": "x", "message": {"id": 1}}`))
	assert.Empty(t, c.events)

	c.handleFrame([]byte(`{"identifier": "x", "message": ` + testDeal + `}`))
	require.Len(t, c.events, 1)
	event := <-c.events
	assert.Equal(t, exchange.EventTypeDeal, event.Type)
	require.NotNil(t, event.Deal)
	assert.Equal(t, int64(42), event.Deal.ID)
	assert.True(t, event.Deal.IsOpen())
}

func TestNextBackoff(t *testing.T) {
	c, err := New("ws://unused", "key", "secret", logger.Discard())
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, c.nextBackoff(time.Second))
	assert.Equal(t, 30*time.Second, c.nextBackoff(20*time.Second))
	assert.Equal(t, 30*time.Second, c.nextBackoff(30*time.Second))
}

func TestConnectSubscribesAndStreamsDeals(t *testing.T) {
	upgrader := websocket.Upgrader{}
	subscribed := make(chan Command, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type": "welcome"}`))

		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			t.Errorf("read subscribe: %v", err)
			return
		}
		subscribed <- cmd

		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type": "confirm_subscription", "identifier": `+jsonString(cmd.Identifier)+`}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"identifier": `+jsonString(cmd.Identifier)+`, "message": `+testDeal+`}`))

		// Hold the connection until the client closes it.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	c, err := New(url, "key", "secret", logger.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, c.Connect(ctx))

	select {
	case cmd := <-subscribed:
		assert.Equal(t, "subscribe", cmd.Command)
		assert.Equal(t, c.identifier, cmd.Identifier)
	case <-time.After(5 * time.Second):
		t.Fatal("no subscribe command")
	}

	select {
	case event := <-c.Events():
		assert.Equal(t, exchange.EventTypeDeal, event.Type)
		require.NotNil(t, event.Deal)
		assert.Equal(t, int64(42), event.Deal.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("no deal event")
	}

	cancel()
	select {
	case _, ok := <-c.Events():
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("events channel was not closed")
	}
}

func jsonString(s string) string {
	raw, _ := json.Marshal(s)
	return string(raw)
}
