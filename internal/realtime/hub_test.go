package realtime

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carteira/internal/auth"
	"carteira/internal/events"
	"carteira/internal/log"
)

func TestHubDeliversOnlyToOwnSession(t *testing.T) {
	cfg := log.DefaultConfig()
	cfg.Output = io.Discard
	hub := NewHub(log.New(cfg))
	t.Cleanup(func() { hub.Close() })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := auth.WithSession(r.Context(), auth.Session{ID: r.URL.Query().Get("s")})
		hub.ServeHTTP(w, r.WithContext(ctx))
	}))
	t.Cleanup(srv.Close)

	dial := func(session string) *websocket.Conn {
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?s=" + session
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
		return conn
	}
	alice, bob := dial("alice"), dial("bob")
	require.Eventually(t, func() bool { return hub.Count() == 2 }, 2*time.Second, 10*time.Millisecond)

	err := hub.Handle(context.Background(), events.Event{
		Topic: events.TransactionChanged, Action: events.ActionCreated, Session: "alice", UUID: "tx-9",
	})
	require.NoError(t, err)

	require.NoError(t, alice.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := alice.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, events.TransactionChanged, msg.Topic)
	assert.Equal(t, "tx-9", msg.UUID)

	require.NoError(t, bob.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = bob.ReadMessage()
	assert.Error(t, err, "bob must not receive alice's event")
}

func TestServeHTTPRequiresSession(t *testing.T) {
	cfg := log.DefaultConfig()
	cfg.Output = io.Discard
	hub := NewHub(log.New(cfg))

	rr := httptest.NewRecorder()
	hub.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
