// Package services holds the page-level operations of the web front end.
// Each service validates input, calls the finance backend through
// internal/api and announces successful writes on the event bus.
package services

import (
	"context"

	"carteira/internal/auth"
	"carteira/internal/events"
	"carteira/internal/log"
)

// Publisher is the part of events.Bus the services use.
type Publisher interface {
	Publish(ctx context.Context, e events.Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, events.Event) {}

func orNoop(p Publisher) Publisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

// announce publishes a change made by the session in ctx. A payload that
// fails to encode is logged and dropped; the event still goes out.
func announce(ctx context.Context, pub Publisher, topic events.Topic, action, kind, uuid string, payload any) {
	e := events.Event{
		ID:     events.NewID(),
		Topic:  topic,
		Kind:   kind,
		Action: action,
		UUID:   uuid,
	}
	if s, ok := auth.SessionFrom(ctx); ok {
		e.Session = s.ID
	}
	if payload != nil {
		withPayload, err := e.WithPayload(payload)
		if err != nil {
			log.FromContext(ctx).WarnContext(ctx, "Dropping event payload",
				log.FieldEventTopic, string(topic),
				log.FieldError, err.Error())
		} else {
			e = withPayload
		}
	}
	pub.Publish(ctx, e)
}

// sessionKey scopes cache keys to the caller's session; "" disables caching.
func sessionKey(ctx context.Context, prefix string) string {
	s, ok := auth.SessionFrom(ctx)
	if !ok || s.ID == "" {
		return ""
	}
	return prefix + ":" + s.ID
}
