// Package realtime pushes ledger events to the browser tabs of the session
// that caused them, so other open pages refresh their htmx partials.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/olahol/melody"

	"carteira/internal/auth"
	"carteira/internal/events"
	"carteira/internal/log"
)

const sessionKey = "session_id"

// Message is what a socket receives for one event.
type Message struct {
	Topic  events.Topic `json:"topic"`
	Action string       `json:"action"`
	Kind   string       `json:"kind,omitempty"`
	UUID   string       `json:"uuid,omitempty"`
}

type Hub struct {
	m      *melody.Melody
	logger *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	m := melody.New()
	m.Config.MaxMessageSize = 4 << 10
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	h := &Hub{m: m, logger: logger.WithComponent(log.ComponentRealtime)}

	m.HandleConnect(func(s *melody.Session) {
		id, _ := s.Get(sessionKey)
		h.logger.Debug("Socket connected", log.FieldSessionID, id)
	})
	m.HandleDisconnect(func(s *melody.Session) {
		id, _ := s.Get(sessionKey)
		h.logger.Debug("Socket disconnected", log.FieldSessionID, id)
	})
	m.HandleError(func(s *melody.Session, err error) {
		id, _ := s.Get(sessionKey)
		h.logger.Warn("Socket error", log.FieldSessionID, id, log.FieldError, err.Error())
	})
	// Clients only listen.
	m.HandleMessage(func(*melody.Session, []byte) {})

	return h
}

// ServeHTTP upgrades a guarded request; the socket is tagged with its session.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.SessionFrom(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if err := h.m.HandleRequestWithKeys(w, r, map[string]any{sessionKey: sess.ID}); err != nil {
		h.logger.WarnContext(r.Context(), "Websocket upgrade failed", log.FieldError, err.Error())
	}
}

// Handle is an events.Handler forwarding e to the sockets of e.Session.
// Events without a session go nowhere.
func (h *Hub) Handle(_ context.Context, e events.Event) error {
	if e.Session == "" {
		return nil
	}
	msg, err := json.Marshal(Message{Topic: e.Topic, Action: e.Action, Kind: e.Kind, UUID: e.UUID})
	if err != nil {
		return err
	}
	return h.m.BroadcastFilter(msg, func(s *melody.Session) bool {
		id, ok := s.Get(sessionKey)
		return ok && id == e.Session
	})
}

// Count returns the number of open sockets.
func (h *Hub) Count() int {
	return h.m.Len()
}

// Close disconnects every socket.
func (h *Hub) Close() error {
	return h.m.Close()
}
