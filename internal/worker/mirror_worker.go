// Package worker runs the consumers that mirror ledger events into the
// spreadsheet.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carteira/internal/amqp"
	"carteira/internal/log"
	"carteira/internal/services"
)

// Consumer delivers ledger events to a handler until ctx ends, spreading
// them over lanes so that events for one uuid never run concurrently or out
// of order. A handler error means the delivery should be retried.
type Consumer interface {
	ConsumeLedgerEvents(ctx context.Context, lanes int, handler func(context.Context, amqp.LedgerEvent) error) error
}

// Applier writes one event to the mirror.
type Applier interface {
	Apply(ctx context.Context, msg amqp.LedgerEvent) error
}

type Config struct {
	// Concurrency is the number of lanes (default: 1).
	Concurrency int
	// RetryDelay is the pause between attempts at a failed write
	// (default: 2s).
	RetryDelay time.Duration
}

func DefaultConfig() Config {
	return Config{Concurrency: 1, RetryDelay: 2 * time.Second}
}

const minRetryDelay = 10 * time.Millisecond

// MirrorWorker applies ledger events to the mirror over one or more lanes.
type MirrorWorker struct {
	consumer Consumer
	mirror   Applier
	config   Config
	logger   *log.Logger
}

func NewMirrorWorker(consumer Consumer, mirror Applier, config Config, logger *log.Logger) *MirrorWorker {
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = minRetryDelay
	}
	return &MirrorWorker{
		consumer: consumer,
		mirror:   mirror,
		config:   config,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// Run blocks until ctx is cancelled or the consumer fails for good.
func (w *MirrorWorker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Mirror worker started", "lanes", w.config.Concurrency)

	err := w.consumer.ConsumeLedgerEvents(log.NewContext(ctx, w.logger), w.config.Concurrency, w.Handle)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mirror worker: %w", err)
	}
	w.logger.InfoContext(ctx, "Mirror worker stopped")
	return nil
}

// Handle applies one event. Events the mirror cannot apply are logged and
// acknowledged. Failed writes are retried in place every RetryDelay, so a
// later event for the same uuid cannot overtake them; the error is returned
// only when ctx ends, and the broker redelivers the event.
func (w *MirrorWorker) Handle(ctx context.Context, msg amqp.LedgerEvent) error {
	logger := log.FromContext(ctx)
	for attempt := 1; ; attempt++ {
		err := w.mirror.Apply(ctx, msg)
		if err == nil {
			return nil
		}
		if errors.Is(err, services.ErrUnknownAction) {
			logger.WarnContext(ctx, "Skipping ledger event",
				log.FieldEventID, msg.ID,
				log.FieldEntryUUID, msg.UUID,
				log.FieldError, err.Error())
			return nil
		}
		logger.WarnContext(ctx, "Mirror write failed, retrying",
			log.FieldEntryUUID, msg.UUID,
			log.FieldError, err.Error(),
			"attempt", attempt,
			"retry_in", w.config.RetryDelay.String())

		t := time.NewTimer(w.config.RetryDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return err
		case <-t.C:
		}
	}
}
