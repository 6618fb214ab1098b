// Package listener consumes order-created events from RabbitMQ and feeds
// them into the order service.
package listener

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/xenking/orderms/internal/domain/order"
)

// Ingester is the slice of the order service the listener needs.
type Ingester interface {
	Ingest(ctx context.Context, e order.OrderCreatedEvent) error
}

// Config holds the broker connection settings.
type Config struct {
	URL      string
	Queue    string
	Prefetch int
}

// Consumer reads order-created events from a durable queue with manual
// acknowledgement. The broker owns redelivery; the consumer only decides the
// disposition of each delivery.
type Consumer struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	queue  string
	orders Ingester
	lg     *zap.Logger
}

// New dials the broker, opens a channel, and applies the prefetch limit.
func New(cfg Config, orders Ingester, lg *zap.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "dial broker")
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "open channel")
	}

	if err := ch.Qos(cfg.Prefetch, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return nil, errors.Wrap(err, "set qos")
	}

	return &Consumer{
		conn:   conn,
		ch:     ch,
		queue:  cfg.Queue,
		orders: orders,
		lg:     lg,
	}, nil
}

// Close releases the channel and connection.
func (c *Consumer) Close() {
	if c.ch != nil {
		c.ch.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}

// Run declares the queue and consumes deliveries until the context is
// cancelled or the broker closes the delivery channel.
func (c *Consumer) Run(ctx context.Context) error {
	if _, err := c.ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return errors.Wrapf(err, "declare queue %s", c.queue)
	}

	msgs, err := c.ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return errors.Wrapf(err, "consume queue %s", c.queue)
	}

	c.lg.Info("Consuming order events", zap.String("queue", c.queue))

	for {
		select {
		case <-ctx.Done():
			c.lg.Info("Stopping consumer")
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			var settleErr error
			switch c.handle(ctx, msg.Body) {
			case ack:
				settleErr = msg.Ack(false)
			case reject:
				settleErr = msg.Nack(false, false)
			case requeue:
				settleErr = msg.Nack(false, true)
			}
			// A failed settlement means the broker will redeliver the
			// message; the duplicate is absorbed by the idempotent insert
			// but the operator should still see the broker misbehaving.
			if settleErr != nil {
				c.lg.Error("Delivery settlement failed",
					zap.Uint64("delivery_tag", msg.DeliveryTag),
					zap.Error(settleErr),
				)
			}
		}
	}
}

// disposition is the fate of a single delivery.
type disposition int

const (
	// ack confirms the delivery.
	ack disposition = iota
	// reject drops the delivery without requeue, routing it to the
	// dead-letter exchange when one is configured.
	reject
	// requeue returns the delivery to the queue for another attempt.
	requeue
)

// handle decodes and ingests one delivery. Malformed payloads and events
// violating the order invariants are rejected for dead-lettering; store
// failures requeue the delivery so it is retried once the store recovers.
func (c *Consumer) handle(ctx context.Context, body []byte) disposition {
	var e order.OrderCreatedEvent
	if err := json.Unmarshal(body, &e); err != nil {
		c.lg.Warn("Undecodable order event", zap.Error(err))
		return reject
	}

	err := c.orders.Ingest(ctx, e)
	if err == nil {
		c.lg.Info("Order ingested",
			zap.Int64("order_id", e.CustomerOrderID),
			zap.Int64("customer_id", e.CustomerID),
		)
		return ack
	}

	var invErr *order.InvalidEventError
	if errors.As(err, &invErr) {
		c.lg.Warn("Invalid order event",
			zap.Int64("order_id", invErr.OrderID),
			zap.String("reason", invErr.Reason),
		)
		return reject
	}

	c.lg.Error("Order ingestion failed",
		zap.Int64("order_id", e.CustomerOrderID),
		zap.Error(err),
	)
	return requeue
}
