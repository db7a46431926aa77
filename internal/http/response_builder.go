// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing HTMX responses.
// It provides a fluent API for building HX-Trigger headers and consistent
// response formatting.

package http

import (
	"encoding/json"
	"html/template"
	"net/http"
)

// Client-side events raised through HX-Trigger. The websocket bridge in
// app.js raises the same names for changes made in other tabs.
const (
	EventTransactionChanged = "transaction:changed"
	EventAccountChanged     = "account:changed"
	EventCardChanged        = "card:changed"
	EventCategoryChanged    = "category:changed"
	EventFormReset          = "form:reset"
	EventNotification       = "show-notification"
)

// HTMXResponseBuilder provides a fluent API for building HTMX responses.
type HTMXResponseBuilder struct {
	triggers   map[string]any
	statusCode int
	body       []byte
	headers    map[string]string
}

// NewHTMXResponse creates a new response builder with default 200 status.
func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		triggers:   make(map[string]any),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named event with optional data to the HX-Trigger header.
func (b *HTMXResponseBuilder) Trigger(name string, data any) *HTMXResponseBuilder {
	b.triggers[name] = data
	return b
}

// TriggerTransactionChanged tells ledger lists and dashboard partials to reload.
func (b *HTMXResponseBuilder) TriggerTransactionChanged(kind, uuid string) *HTMXResponseBuilder {
	return b.Trigger(EventTransactionChanged, map[string]string{"kind": kind, "uuid": uuid})
}

func (b *HTMXResponseBuilder) TriggerAccountChanged(uuid string) *HTMXResponseBuilder {
	return b.Trigger(EventAccountChanged, map[string]string{"uuid": uuid})
}

func (b *HTMXResponseBuilder) TriggerCardChanged(uuid string) *HTMXResponseBuilder {
	return b.Trigger(EventCardChanged, map[string]string{"uuid": uuid})
}

func (b *HTMXResponseBuilder) TriggerCategoryChanged() *HTMXResponseBuilder {
	return b.Trigger(EventCategoryChanged, struct{}{})
}

// TriggerFormReset clears the submitting form and closes its modal.
func (b *HTMXResponseBuilder) TriggerFormReset() *HTMXResponseBuilder {
	return b.Trigger(EventFormReset, struct{}{})
}

// NotificationType represents the type of notification to display.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
	NotificationInfo    NotificationType = "info"
)

// TriggerNotification adds a toast.
func (b *HTMXResponseBuilder) TriggerNotification(notifType NotificationType, message string, durationMs int) *HTMXResponseBuilder {
	return b.Trigger(EventNotification, map[string]any{
		"type":     string(notifType),
		"message":  message,
		"duration": durationMs,
	})
}

func (b *HTMXResponseBuilder) TriggerSuccessNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationSuccess, message, 3000)
}

func (b *HTMXResponseBuilder) TriggerErrorNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationError, message, 5000)
}

func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.headers[name] = value
	return b
}

func (b *HTMXResponseBuilder) Body(content []byte) *HTMXResponseBuilder {
	b.body = content
	return b
}

func (b *HTMXResponseBuilder) BodyString(content string) *HTMXResponseBuilder {
	b.body = []byte(content)
	return b
}

// BodyHTML sets the response body as HTML content.
func (b *HTMXResponseBuilder) BodyHTML(html string) *HTMXResponseBuilder {
	b.headers["Content-Type"] = "text/html; charset=utf-8"
	b.body = []byte(html)
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if len(b.triggers) > 0 {
		triggerJSON, err := json.Marshal(b.triggers)
		if err == nil {
			w.Header().Set("HX-Trigger", string(triggerJSON))
		}
	}

	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse creates an error response whose HTML body and toast carry
// the same message. The message is HTML-escaped for safety.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	escapedMsg := template.HTMLEscapeString(message)
	return NewHTMXResponse().
		Status(statusCode).
		TriggerErrorNotification(message).
		BodyHTML(`<div class="error">` + escapedMsg + `</div>`)
}

func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func UnprocessableEntityError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

func BadGatewayError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadGateway, message)
}

func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

func NotFoundError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}
