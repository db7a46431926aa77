// Package amqp relays ledger events from the web process to the mirror
// worker over a durable RabbitMQ queue.
package amqp

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"carteira/internal/events"
	"carteira/internal/log"
)

// Circuit breaker states.
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures    = 5
	openTimeout    = 30 * time.Second
	maxBackoff     = 30 * time.Second
	publishTimeout = 5 * time.Second
	dialTimeout    = 30 * time.Second
	heartbeat      = 10 * time.Second
)

var ErrCircuitOpen = errors.New("amqp: circuit breaker is open")

type Client struct {
	url          string
	exchangeName string
	queueName    string
	dialTimeout  time.Duration
	logger       *log.Logger

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	failureCount int64
	state        int32
	lastFailure  time.Time
}

type Option func(*Client)

// WithDialTimeout bounds the TCP connect and AMQP handshake. A publisher
// running inside a request should use a short one.
func WithDialTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.dialTimeout = d
		}
	}
}

// NewClient dials url and declares the exchange, queue and binding.
func NewClient(url, exchangeName, queueName string, logger *log.Logger, opts ...Option) (*Client, error) {
	c := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		dialTimeout:  dialTimeout,
		logger:       logger.WithComponent(log.ComponentAMQP),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked()
}

func (c *Client) connectLocked() error {
	conn, err := amqp091.DialConfig(c.url, amqp091.Config{
		Heartbeat: heartbeat,
		Locale:    "en_US",
		Dial:      amqp091.DefaultDial(c.timeout()),
	})
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if err := setup(ch, c.exchangeName, c.queueName); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}
	c.conn, c.channel = conn, ch
	return nil
}

func (c *Client) timeout() time.Duration {
	if c.dialTimeout <= 0 {
		return dialTimeout
	}
	return c.dialTimeout
}

func setup(ch *amqp091.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	// Direct exchange: the routing key is the queue name.
	if err := ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// ensureChannel reconnects when the connection was lost.
func (c *Client) ensureChannel() (*amqp091.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil && !c.conn.IsClosed() && c.channel != nil && !c.channel.IsClosed() {
		return c.channel, nil
	}
	c.closeLocked()
	if err := c.connectLocked(); err != nil {
		return nil, err
	}
	c.logger.Info("Reconnected to AMQP broker")
	return c.channel, nil
}

// PublishLedgerEvent sends msg persistently. Calls fail fast while the
// circuit is open.
func (c *Client) PublishLedgerEvent(ctx context.Context, msg LedgerEvent) error {
	if c.isCircuitOpen() {
		return fmt.Errorf("publish %s: %w", msg.UUID, ErrCircuitOpen)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ch, err := c.ensureChannel()
	if err != nil {
		c.recordFailure()
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(ctx, c.exchangeName, c.queueName, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    msg.ID,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		c.recordFailure()
		if isConnectionError(err) {
			c.mu.Lock()
			c.closeLocked()
			c.mu.Unlock()
		}
		return fmt.Errorf("publish message: %w", err)
	}
	c.recordSuccess()

	c.logger.DebugContext(ctx, "Published ledger event",
		log.FieldEventID, msg.ID,
		log.FieldEntryUUID, msg.UUID,
		"action", msg.Action,
		"queue", c.queueName)
	return nil
}

// Relay is an events.Handler that forwards transaction events to the queue.
// Writes that carry no row are not relayed: the mirror keeps its last copy.
func (c *Client) Relay(ctx context.Context, e events.Event) error {
	msg, ok, err := LedgerEventFrom(e)
	if err != nil || !ok || !msg.Mirrorable() {
		return err
	}
	return c.PublishLedgerEvent(ctx, msg)
}

// ConsumeLedgerEvents feeds deliveries to handler until ctx ends. Deliveries
// are spread over lanes by uuid, so events for one entry are handled one at
// a time in publish order. A handler error requeues the delivery; an
// undecodable body is dropped. Lost connections are re-established with
// exponential backoff.
func (c *Client) ConsumeLedgerEvents(ctx context.Context, lanes int, handler func(context.Context, LedgerEvent) error) error {
	if lanes < 1 {
		lanes = 1
	}
	var backoff reconnectBackoff
	for {
		delivered, err := c.consume(ctx, lanes, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		wait := backoff.next(delivered)
		c.logger.WarnContext(ctx, "Consumer interrupted, reconnecting",
			log.FieldError, err.Error(),
			"retry_in", wait.String())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

var errDeliveriesClosed = errors.New("delivery channel closed")

type laneDelivery struct {
	d   amqp091.Delivery
	msg LedgerEvent
}

// consume runs one consumer session. It reports whether any delivery came
// through, which resets the reconnect backoff.
func (c *Client) consume(ctx context.Context, lanes int, handler func(context.Context, LedgerEvent) error) (bool, error) {
	ch, err := c.ensureChannel()
	if err != nil {
		return false, err
	}
	// At most one unacked delivery per lane.
	if err := ch.Qos(lanes, 0, false); err != nil {
		return false, fmt.Errorf("set qos: %w", err)
	}
	msgs, err := ch.Consume(c.queueName, "", false, false, false, false, nil)
	if err != nil {
		return false, fmt.Errorf("start consuming: %w", err)
	}

	c.logger.InfoContext(ctx, "Consuming ledger events", "queue", c.queueName, "lanes", lanes)

	queues := make([]chan laneDelivery, lanes)
	var wg sync.WaitGroup
	for i := range queues {
		// Prefetch bounds the deliveries in flight, so a lane never blocks
		// the dispatcher.
		queues[i] = make(chan laneDelivery, lanes)
		laneCtx := log.NewContext(ctx, c.logger.With("lane", i))
		wg.Add(1)
		go func(in <-chan laneDelivery) {
			defer wg.Done()
			for ld := range in {
				c.handleDelivery(laneCtx, ld.d, ld.msg, handler)
			}
		}(queues[i])
	}
	defer func() {
		for _, q := range queues {
			close(q)
		}
		wg.Wait()
	}()

	delivered := false
	for {
		select {
		case <-ctx.Done():
			return delivered, ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return delivered, errDeliveriesClosed
			}
			delivered = true
			msg, err := LedgerEventFromJSON(d.Body)
			if err != nil {
				c.logger.ErrorContext(ctx, "Dropping undecodable message", log.FieldError, err.Error())
				_ = d.Nack(false, false)
				continue
			}
			queues[LaneFor(msg.UUID, lanes)] <- laneDelivery{d: d, msg: msg}
		}
	}
}

// LaneFor maps an entry uuid to one of n lanes.
func LaneFor(uuid string, n int) int {
	if n <= 1 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(uuid))
	return int(h.Sum32() % uint32(n))
}

func (c *Client) handleDelivery(ctx context.Context, d amqp091.Delivery, msg LedgerEvent, handler func(context.Context, LedgerEvent) error) {
	logger := log.FromContext(ctx)
	if err := handler(ctx, msg); err != nil {
		logger.ErrorContext(ctx, "Failed to handle ledger event",
			log.FieldError, err.Error(),
			log.FieldEventID, msg.ID,
			log.FieldEntryUUID, msg.UUID)
		_ = d.Nack(false, true)
		return
	}
	_ = d.Ack(false)
	logger.InfoContext(ctx, "Processed ledger event",
		log.FieldEventID, msg.ID,
		log.FieldEntryUUID, msg.UUID,
		"action", msg.Action)
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.state) != StateOpen {
		return false
	}
	c.mu.Lock()
	last := c.lastFailure
	c.mu.Unlock()
	if time.Since(last) > openTimeout {
		atomic.CompareAndSwapInt32(&c.state, StateOpen, StateHalfOpen)
		return false
	}
	return true
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	c.mu.Lock()
	c.lastFailure = time.Now()
	c.mu.Unlock()
	if atomic.AddInt64(&c.failureCount, 1) >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		if atomic.SwapInt32(&c.state, StateOpen) != StateOpen {
			c.logger.Warn("AMQP circuit breaker opened", "failures", atomic.LoadInt64(&c.failureCount))
		}
	}
}

// reconnectBackoff grows the wait between failed consumer sessions and
// starts over after a session that received deliveries.
type reconnectBackoff struct {
	attempt int
}

func (b *reconnectBackoff) next(delivered bool) time.Duration {
	if delivered {
		b.attempt = 0
	}
	d := exponentialBackoff(b.attempt)
	b.attempt++
	return d
}

func exponentialBackoff(attempt int) time.Duration {
	if attempt > 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection", "eof", "broken pipe"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (c *Client) closeLocked() {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
	return nil
}
