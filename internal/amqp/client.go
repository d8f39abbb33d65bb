package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"expensetracker/internal/log"

	"github.com/rabbitmq/amqp091-go"
)

// Circuit breaker states
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures    = 5
	openTimeout    = 30 * time.Second
	publishTimeout = 5 * time.Second
	maxBackoff     = 30 * time.Second
)

type Client struct {
	url          string
	exchangeName string
	queueName    string
	logger       *log.Logger
	dial         func(url string) (*amqp091.Connection, error)
	backoff      func(attempt int) time.Duration

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	state        int32
	failureCount int64
	lastFailure  time.Time
}

func NewClient(url, exchangeName, queueName string, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.Discard()
	}
	c := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		logger:       logger.WithComponent(log.ComponentAMQP),
		dial:         amqp091.Dial,
		backoff:      exponentialBackoff,
	}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

// connect dials a fresh connection unless the current one is still open. Any
// previous connection is closed first.
func (c *Client) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil && !c.conn.IsClosed() && c.channel != nil && !c.channel.IsClosed() {
		return nil
	}
	c.closeLocked()

	dial := c.dial
	if dial == nil {
		dial = amqp091.Dial
	}
	conn, err := dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	c.conn, c.channel = conn, channel

	if err := c.setup(); err != nil {
		c.closeLocked()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}
	return nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// routing key is the queue name on a direct exchange
	if err := c.channel.QueueBind(c.queueName, c.queueName, c.exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

func (c *Client) ensureChannel() (*amqp091.Channel, error) {
	c.mu.Lock()
	ch := c.channel
	closed := c.conn == nil || c.conn.IsClosed() || ch == nil || ch.IsClosed()
	c.mu.Unlock()
	if !closed {
		return ch, nil
	}
	if err := c.connect(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channel, nil
}

// PublishRecordEvent publishes one change event. Failures count towards the
// circuit breaker; while it is open publishes fail fast.
func (c *Client) PublishRecordEvent(ctx context.Context, ev *RecordEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.isCircuitOpen() {
		return errors.New("publish record event: circuit breaker is open")
	}

	body, err := ev.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ch, err := c.ensureChannel()
	if err != nil {
		c.recordFailure()
		return fmt.Errorf("publish record event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    ev.Timestamp,
			Type:         string(ev.Op),
			Body:         body,
		},
	)
	if err != nil {
		c.recordFailure()
		if isConnectionError(err) {
			c.reset()
		}
		return fmt.Errorf("publish message: %w", err)
	}
	c.recordSuccess()

	c.logger.InfoContext(ctx, "Published record event",
		log.FieldOperation, string(ev.Op),
		log.FieldRecordID, ev.Record.ID,
		"exchange", c.exchangeName,
		"queue", c.queueName)
	return nil
}

// ConsumeRecordEvents delivers events to handler until ctx is cancelled,
// reconnecting with exponential backoff when the broker goes away. Each retry
// reconnects through ensureChannel, so at most one connection is live. Handler
// errors requeue the delivery; undecodable messages are dropped.
func (c *Client) ConsumeRecordEvents(ctx context.Context, handler func(context.Context, *RecordEvent) error) error {
	attempt := 0
	for {
		err := c.consumeOnce(ctx, handler, func() { attempt = 0 })
		if ctx.Err() != nil {
			return ctx.Err()
		}
		backoff := c.backoff
		if backoff == nil {
			backoff = exponentialBackoff
		}
		delay := backoff(attempt)
		attempt++
		c.logger.WarnContext(ctx, "Consumer interrupted, reconnecting",
			log.FieldError, fmt.Sprint(err),
			"retry_in", delay.String())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (c *Client) consumeOnce(ctx context.Context, handler func(context.Context, *RecordEvent) error, connected func()) error {
	ch, err := c.ensureChannel()
	if err != nil {
		return err
	}
	msgs, err := ch.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}
	connected()
	c.logger.InfoContext(ctx, "Started consuming record events", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			c.logger.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err().Error())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}
			ev, err := RecordEventFromJSON(delivery.Body)
			if err != nil {
				c.logger.ErrorContext(ctx, "Failed to decode record event", log.FieldError, err.Error())
				delivery.Nack(false, false)
				continue
			}
			if err := handler(ctx, ev); err != nil {
				c.logger.ErrorContext(ctx, "Failed to handle record event",
					log.FieldError, err.Error(),
					log.FieldOperation, string(ev.Op),
					log.FieldRecordID, ev.Record.ID)
				delivery.Nack(false, true)
				continue
			}
			delivery.Ack(false)
			c.logger.DebugContext(ctx, "Processed record event",
				log.FieldOperation, string(ev.Op),
				log.FieldRecordID, ev.Record.ID)
		}
	}
}

func (c *Client) isCircuitOpen() bool {
	switch atomic.LoadInt32(&c.state) {
	case StateOpen:
		c.mu.Lock()
		last := c.lastFailure
		c.mu.Unlock()
		if time.Since(last) > openTimeout {
			atomic.CompareAndSwapInt32(&c.state, StateOpen, StateHalfOpen)
			return false
		}
		return true
	default:
		return false
	}
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
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

func (c *Client) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func exponentialBackoff(attempt int) time.Duration {
	if attempt >= 5 {
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
	for _, s := range []string{"connection refused", "connection closed", "eof", "broken pipe", "use of closed network connection", "channel/connection is not open"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (c *Client) closeLocked() error {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}
