package worker

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"carteira/internal/amqp"
	"carteira/internal/core"
	"carteira/internal/events"
	"carteira/internal/log"
	"carteira/internal/services"
	"carteira/internal/sheets/memory"
)

func testLogger() *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Output = io.Discard
	return log.New(cfg)
}

// fakeConsumer routes msgs to lanes by uuid, like the AMQP client, and
// records handler results.
type fakeConsumer struct {
	msgs chan amqp.LedgerEvent

	mu      sync.Mutex
	acked   []string
	retried []string
	lanes   int32
}

func (f *fakeConsumer) ConsumeLedgerEvents(ctx context.Context, lanes int, handler func(context.Context, amqp.LedgerEvent) error) error {
	atomic.StoreInt32(&f.lanes, int32(lanes))
	queues := make([]chan amqp.LedgerEvent, lanes)
	var wg sync.WaitGroup
	for i := range queues {
		queues[i] = make(chan amqp.LedgerEvent, 16)
		wg.Add(1)
		go func(in <-chan amqp.LedgerEvent) {
			defer wg.Done()
			for m := range in {
				err := handler(ctx, m)
				f.mu.Lock()
				if err != nil {
					f.retried = append(f.retried, m.UUID)
				} else {
					f.acked = append(f.acked, m.UUID)
				}
				f.mu.Unlock()
			}
		}(queues[i])
	}
	defer func() {
		for _, q := range queues {
			close(q)
		}
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-f.msgs:
			if !ok {
				<-ctx.Done()
				return ctx.Err()
			}
			queues[amqp.LaneFor(m.UUID, lanes)] <- m
		}
	}
}

func (f *fakeConsumer) handled() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.acked) + len(f.retried)
}

type applierFunc func(context.Context, amqp.LedgerEvent) error

func (f applierFunc) Apply(ctx context.Context, m amqp.LedgerEvent) error { return f(ctx, m) }

func created(uuid string) amqp.LedgerEvent {
	return amqp.LedgerEvent{
		Action: events.ActionCreated,
		UUID:   uuid,
		Entry:  &core.LedgerEntry{UUID: uuid, Kind: core.EntryDespesa, Description: "Mercado"},
	}
}

func deleted(uuid string) amqp.LedgerEvent {
	return amqp.LedgerEvent{Action: events.ActionDeleted, UUID: uuid}
}

func runUntil(t *testing.T, w *MirrorWorker, consumer *fakeConsumer, n int) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for consumer.handled() < n && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestMirrorWorkerRunsLanes(t *testing.T) {
	store := memory.New()
	consumer := &fakeConsumer{msgs: make(chan amqp.LedgerEvent, 10)}
	for _, id := range []string{"tx-1", "tx-2", "tx-3", "tx-4"} {
		consumer.msgs <- created(id)
	}
	close(consumer.msgs)

	w := NewMirrorWorker(consumer, services.NewMirror(store, testLogger()), Config{Concurrency: 3}, testLogger())
	runUntil(t, w, consumer, 4)

	if got := atomic.LoadInt32(&consumer.lanes); got != 3 {
		t.Errorf("lanes = %d, want 3", got)
	}
	if got := len(store.Entries()); got != 4 {
		t.Errorf("mirrored rows = %d, want 4", got)
	}
}

// flakyStore fails the first write of each uuid listed in failOnce.
type flakyStore struct {
	*memory.Store
	mu       sync.Mutex
	failOnce map[string]bool
}

func (s *flakyStore) AppendEntry(ctx context.Context, e core.LedgerEntry) (string, error) {
	s.mu.Lock()
	fail := s.failOnce[e.UUID]
	delete(s.failOnce, e.UUID)
	s.mu.Unlock()
	if fail {
		return "", errors.New("sheets unavailable")
	}
	return s.Store.AppendEntry(ctx, e)
}

func TestMirrorWorkerKeepsOrderPerEntry(t *testing.T) {
	store := &flakyStore{Store: memory.New(), failOnce: map[string]bool{"tx-1": true}}
	consumer := &fakeConsumer{msgs: make(chan amqp.LedgerEvent, 10)}
	consumer.msgs <- created("tx-1")
	consumer.msgs <- created("tx-2")
	consumer.msgs <- deleted("tx-1")
	consumer.msgs <- created("tx-3")
	close(consumer.msgs)

	w := NewMirrorWorker(consumer, services.NewMirror(store, testLogger()),
		Config{Concurrency: 4, RetryDelay: time.Millisecond}, testLogger())
	runUntil(t, w, consumer, 4)

	got := map[string]bool{}
	for _, e := range store.Entries() {
		got[e.UUID] = true
	}
	if got["tx-1"] {
		t.Error("tx-1 was deleted after it was created; the retried create must not bring it back")
	}
	if !got["tx-2"] || !got["tx-3"] {
		t.Errorf("unrelated entries missing: %v", got)
	}
	consumer.mu.Lock()
	defer consumer.mu.Unlock()
	if len(consumer.retried) != 0 {
		t.Errorf("failed write was handed back to the broker: %v", consumer.retried)
	}
}

func TestMirrorWorkerHandle(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"applied", nil},
		{"unusable event is acknowledged", services.ErrUnknownAction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewMirrorWorker(nil, applierFunc(func(context.Context, amqp.LedgerEvent) error {
				return tt.err
			}), Config{RetryDelay: time.Millisecond}, testLogger())

			if err := w.Handle(context.Background(), created("tx-1")); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
		})
	}
}

func TestMirrorWorkerHandleRetriesInPlace(t *testing.T) {
	var calls int32
	w := NewMirrorWorker(nil, applierFunc(func(context.Context, amqp.LedgerEvent) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("sheets unavailable")
		}
		return nil
	}), Config{RetryDelay: time.Millisecond}, testLogger())

	if err := w.Handle(context.Background(), created("tx-1")); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestMirrorWorkerRetryHonoursContext(t *testing.T) {
	w := NewMirrorWorker(nil, applierFunc(func(context.Context, amqp.LedgerEvent) error {
		return errors.New("down")
	}), Config{RetryDelay: time.Hour}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if err := w.Handle(ctx, created("tx-1")); err == nil {
		t.Fatal("expected error")
	}
	if time.Since(start) > time.Second {
		t.Error("Handle waited despite cancelled context")
	}
}

func TestMirrorWorkerConsumerFailure(t *testing.T) {
	w := NewMirrorWorker(consumerFunc(func(context.Context, int, func(context.Context, amqp.LedgerEvent) error) error {
		return errors.New("queue missing")
	}), nil, DefaultConfig(), testLogger())

	if err := w.Run(context.Background()); err == nil {
		t.Fatal("expected Run to fail")
	}
}

type consumerFunc func(context.Context, int, func(context.Context, amqp.LedgerEvent) error) error

func (f consumerFunc) ConsumeLedgerEvents(ctx context.Context, lanes int, h func(context.Context, amqp.LedgerEvent) error) error {
	return f(ctx, lanes, h)
}
