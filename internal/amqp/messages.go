package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"carteira/internal/core"
	"carteira/internal/events"
)

// LedgerEvent is the message relayed from the web process to the mirror
// worker. Entry is nil for deletions.
type LedgerEvent struct {
	ID        string            `json:"id"`
	Action    string            `json:"action"`
	Kind      string            `json:"kind,omitempty"`
	UUID      string            `json:"uuid"`
	Entry     *core.LedgerEntry `json:"entry,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

func (m LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventFromJSON(data []byte) (LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return LedgerEvent{}, err
	}
	if msg.UUID == "" {
		return LedgerEvent{}, fmt.Errorf("ledger event %q without uuid", msg.ID)
	}
	return msg, nil
}

// Mirrorable reports whether the worker can apply m: deletions need only the
// uuid, creates and updates need the row as well.
func (m LedgerEvent) Mirrorable() bool {
	if m.UUID == "" {
		return false
	}
	return m.Action == events.ActionDeleted || m.Entry != nil
}

// LedgerEventFrom converts a bus event. Only transaction events are relayed.
func LedgerEventFrom(e events.Event) (LedgerEvent, bool, error) {
	if e.Topic != events.TransactionChanged {
		return LedgerEvent{}, false, nil
	}
	msg := LedgerEvent{
		ID:        e.ID,
		Action:    e.Action,
		Kind:      e.Kind,
		UUID:      e.UUID,
		Timestamp: e.At,
	}
	if len(e.Payload) > 0 && e.Action != events.ActionDeleted {
		var entry core.LedgerEntry
		if err := json.Unmarshal(e.Payload, &entry); err != nil {
			return LedgerEvent{}, false, fmt.Errorf("decode ledger entry: %w", err)
		}
		msg.Entry = &entry
	}
	return msg, true, nil
}
