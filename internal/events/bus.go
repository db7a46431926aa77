// Package events is the in-process fan-out for ledger changes. Services
// publish after a successful backend write; the cache, the websocket hub and
// the AMQP relay subscribe.
package events

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"carteira/internal/log"
)

type Topic string

const (
	TransactionChanged Topic = "transaction.changed"
	AccountChanged     Topic = "account.changed"
	CardChanged        Topic = "card.changed"
)

// Actions carried by events.
const (
	ActionCreated     = "created"
	ActionUpdated     = "updated"
	ActionDeleted     = "deleted"
	ActionActivated   = "activated"
	ActionDeactivated = "deactivated"
	ActionPaid        = "paid"
)

// Event describes one change. Session scopes it to the user who made it.
type Event struct {
	ID      string          `json:"id"`
	Topic   Topic           `json:"topic"`
	Session string          `json:"session,omitempty"`
	Kind    string          `json:"kind,omitempty"`
	Action  string          `json:"action"`
	UUID    string          `json:"uuid,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	At      time.Time       `json:"at"`
}

// NewID returns a lexically sortable event id.
func NewID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// WithPayload returns e with v encoded as its payload.
func (e Event) WithPayload(v any) (Event, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return e, fmt.Errorf("encode event payload: %w", err)
	}
	e.Payload = raw
	return e, nil
}

type Handler func(ctx context.Context, e Event) error

type subscription struct {
	id      int
	topic   Topic // empty for all topics
	handler Handler
}

type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID int
	logger *log.Logger
}

func NewBus(logger *log.Logger) *Bus {
	return &Bus{logger: logger.WithComponent(log.ComponentEvents)}
}

// Subscribe registers h for topic and returns a func that removes it.
func (b *Bus) Subscribe(topic Topic, h Handler) func() {
	return b.add(topic, h)
}

// SubscribeAll registers h for every topic.
func (b *Bus) SubscribeAll(h Handler) func() {
	return b.add("", h)
}

func (b *Bus) add(topic Topic, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, topic: topic, handler: h})

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.subs {
				if s.id == id {
					b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish runs every matching handler in registration order. Handler errors
// and panics are logged; they never reach the publisher.
func (b *Bus) Publish(ctx context.Context, e Event) {
	if e.ID == "" {
		e.ID = NewID()
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	b.mu.RLock()
	matched := make([]Handler, 0, len(b.subs))
	for _, s := range b.subs {
		if s.topic == "" || s.topic == e.Topic {
			matched = append(matched, s.handler)
		}
	}
	b.mu.RUnlock()

	b.logger.DebugContext(ctx, "Publishing event",
		log.FieldEventTopic, string(e.Topic),
		log.FieldEventID, e.ID,
		"subscribers", len(matched))

	for _, h := range matched {
		b.dispatch(ctx, h, e)
	}
}

func (b *Bus) dispatch(ctx context.Context, h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.ErrorContext(ctx, "Event handler panicked",
				log.FieldEventTopic, string(e.Topic),
				log.FieldEventID, e.ID,
				"panic", fmt.Sprint(r))
		}
	}()
	if err := h(ctx, e); err != nil {
		b.logger.WarnContext(ctx, "Event handler failed",
			log.FieldEventTopic, string(e.Topic),
			log.FieldEventID, e.ID,
			log.FieldError, err.Error())
	}
}
