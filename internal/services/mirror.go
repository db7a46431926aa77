package services

import (
	"context"
	"errors"
	"fmt"

	"carteira/internal/amqp"
	"carteira/internal/events"
	"carteira/internal/log"
	"carteira/internal/sheets"
)

// ErrUnknownAction marks a ledger event the mirror cannot apply. The worker
// drops such messages instead of requeueing them.
var ErrUnknownAction = errors.New("unknown ledger action")

// Mirror copies ledger changes into a spreadsheet.
type Mirror struct {
	writer sheets.LedgerWriter
	logger *log.StructuredLogger
}

func NewMirror(writer sheets.LedgerWriter, logger *log.Logger) *Mirror {
	return &Mirror{
		writer: writer,
		logger: log.NewStructuredLogger(logger.WithComponent(log.ComponentMirror)),
	}
}

// Apply writes one event. Creates and updates upsert the row by uuid;
// deletes remove it. Both are safe to repeat after a redelivery.
func (m *Mirror) Apply(ctx context.Context, msg amqp.LedgerEvent) error {
	switch msg.Action {
	case events.ActionCreated, events.ActionUpdated:
		if msg.Entry == nil {
			return fmt.Errorf("%w: %s without entry for %s", ErrUnknownAction, msg.Action, msg.UUID)
		}
		entry := *msg.Entry
		if entry.UUID == "" {
			entry.UUID = msg.UUID
		}
		ref, err := m.writer.AppendEntry(ctx, entry)
		if err != nil {
			m.logger.LogError(ctx, "Mirror append failed", err, log.ComponentMirror, log.OpMirror,
				log.NewFields().WithEntry(entry.Kind, entry.UUID, entry.Account, entry.Value.Cents))
			return fmt.Errorf("append %s: %w", entry.UUID, err)
		}
		log.FromContext(ctx).InfoContext(ctx, "Ledger row mirrored",
			log.FieldOperation, msg.Action,
			log.FieldEntryUUID, entry.UUID,
			"row", ref)
		return nil

	case events.ActionDeleted:
		if err := m.writer.DeleteEntry(ctx, msg.UUID); err != nil {
			m.logger.LogError(ctx, "Mirror delete failed", err, log.ComponentMirror, log.OpMirror,
				log.NewFields().WithEntry(msg.Kind, msg.UUID, "", 0))
			return fmt.Errorf("delete %s: %w", msg.UUID, err)
		}
		log.FromContext(ctx).InfoContext(ctx, "Ledger row removed",
			log.FieldEntryUUID, msg.UUID)
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownAction, msg.Action)
}
