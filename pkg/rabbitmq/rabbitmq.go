package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"tokoorder/internal/events"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	log     *zap.Logger

	mu sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// NewClient connects to RabbitMQ and declares the durable event queue.
func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	queue := cfg.Queue
	if queue == "" {
		queue = "order_events"
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declare(ch, queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Info("rabbitmq client connected", zap.String("queue", queue))

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   queue,
		log:     log.Named("rabbitmq"),
	}, nil
}

func declare(ch *amqp.Channel, queue string) error {
	_, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s: %w", queue, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// Publish sends event to the queue as a persistent JSON message.
func (c *Client) Publish(ctx context.Context, event events.OrderEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	body, err := encodeEvent(event)
	if err != nil {
		return err
	}

	c.mu.Lock()
	err = c.channel.Publish(
		"",      // default exchange
		c.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         event.Type,
			MessageId:    event.ID,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.log.Debug("event published",
		zap.String("event_type", event.Type),
		zap.String("order_id", event.OrderID),
	)
	return nil
}

// ConsumeOrderEvents decodes deliveries and passes them to handler until the
// channel closes. Undecodable messages are dropped; handler failures are
// requeued once.
func (c *Client) ConsumeOrderEvents(handler events.Handler) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.log.Info("waiting for order events", zap.String("queue", c.queue))

	go func() {
		for msg := range msgs {
			c.handleDelivery(msg, handler)
		}
	}()

	return nil
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (c *Client) handleDelivery(msg amqp.Delivery, handler events.Handler) {
	settle(c.log, msg.DeliveryTag, msg.Body, msg.Redelivered, &msg, handler)
}

func settle(log *zap.Logger, tag uint64, body []byte, redelivered bool, ack acknowledger, handler events.Handler) {
	event, err := decodeEvent(body)
	if err != nil {
		log.Warn("dropping malformed event", zap.Uint64("delivery_tag", tag), zap.Error(err))
		if nackErr := ack.Nack(false, false); nackErr != nil {
			log.Error("nack failed", zap.Uint64("delivery_tag", tag), zap.Error(nackErr))
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := handler(ctx, event); err != nil {
		log.Error("event handler failed",
			zap.Uint64("delivery_tag", tag),
			zap.String("event_type", event.Type),
			zap.Bool("redelivered", redelivered),
			zap.Error(err),
		)
		if nackErr := ack.Nack(false, !redelivered); nackErr != nil {
			log.Error("nack failed", zap.Uint64("delivery_tag", tag), zap.Error(nackErr))
		}
		return
	}

	if ackErr := ack.Ack(false); ackErr != nil {
		log.Error("ack failed", zap.Uint64("delivery_tag", tag), zap.Error(ackErr))
	}
}

func encodeEvent(event events.OrderEvent) ([]byte, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event to JSON: %w", err)
	}
	return body, nil
}

func decodeEvent(body []byte) (events.OrderEvent, error) {
	var event events.OrderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return events.OrderEvent{}, fmt.Errorf("failed to decode event: %w", err)
	}
	if event.Type == "" || event.OrderID == "" {
		return events.OrderEvent{}, fmt.Errorf("event is missing type or order id")
	}
	return event, nil
}

var _ events.Publisher = (*Client)(nil)
