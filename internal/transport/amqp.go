// File: internal/transport/amqp.go
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"roadassist_backend/internal/config"
)

// kvChange is the wire payload fanned out over the exchange.
type kvChange struct {
	Origin   string  `json:"origin"`
	Key      string  `json:"key"`
	NewValue *string `json:"new_value"`
}

// AMQPTransport replicates key changes across processes through a topic
// exchange while keeping the durable Store local. Local writes dispatch to
// local subscribers synchronously before publishing, so the loopback
// contract holds regardless of broker latency; the remote echo of our own
// write is recognized by origin id and dropped.
type AMQPTransport struct {
	bus      *Bus
	origin   string
	exchange string
	logger   *zap.Logger

	conn    *amqp.Connection
	channel *amqp.Channel
	closing chan struct{}
}

// NewAMQPTransport connects to the broker, declares the exchange and a
// process-private queue, and begins consuming remote key changes.
func NewAMQPTransport(cfg *config.Config, store Store, logger *zap.Logger) (*AMQPTransport, error) {
	t := &AMQPTransport{
		bus:      NewBus(store, logger),
		origin:   uuid.NewString(),
		exchange: cfg.AMQPExchange,
		logger:   logger.Named("transport.amqp"),
		closing:  make(chan struct{}),
	}
	if err := t.connect(cfg.AMQPURL); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *AMQPTransport) connect(url string) error {
	conn, err := amqp.Dial(url)
	if err != nil {
		return fmt.Errorf("failed to connect to AMQP broker: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open AMQP channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		t.exchange, // name
		"topic",    // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	// One exclusive queue per process; every process sees every change.
	queue, err := channel.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := channel.QueueBind(queue.Name, "kv.#", t.exchange, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	deliveries, err := channel.Consume(queue.Name, t.origin, true, true, false, false, nil)
	if err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	t.conn = conn
	t.channel = channel

	go t.consume(deliveries)
	go t.watchClose(url)

	t.logger.Info("Connected to AMQP broker", zap.String("exchange", t.exchange))
	return nil
}

func (t *AMQPTransport) consume(deliveries <-chan amqp.Delivery) {
	for d := range deliveries {
		var change kvChange
		if err := json.Unmarshal(d.Body, &change); err != nil {
			t.logger.Warn("Dropping undecodable key-change message", zap.Error(err))
			continue
		}
		if change.Origin == t.origin {
			// Already dispatched synchronously at Write time.
			continue
		}
		t.bus.dispatch(Message{Key: change.Key, NewValue: change.NewValue})
	}
}

func (t *AMQPTransport) watchClose(url string) {
	notifyClose := make(chan *amqp.Error)
	t.conn.NotifyClose(notifyClose)

	select {
	case err := <-notifyClose:
		if err == nil {
			return
		}
		t.logger.Warn("AMQP connection lost, reconnecting", zap.Error(err))
		for {
			select {
			case <-t.closing:
				return
			case <-time.After(2 * time.Second):
			}
			if reconnectErr := t.connect(url); reconnectErr != nil {
				t.logger.Error("AMQP reconnect failed", zap.Error(reconnectErr))
				continue
			}
			return
		}
	case <-t.closing:
	}
}

func (t *AMQPTransport) publish(change kvChange) {
	body, err := json.Marshal(change)
	if err != nil {
		t.logger.Error("Failed to serialize key change", zap.Error(err))
		return
	}
	err = t.channel.Publish(
		t.exchange,
		"kv."+change.Key,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Transient,
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		// Remote contexts miss this change until the next write; local
		// delivery already happened.
		t.logger.Error("Failed to publish key change", zap.String("key", change.Key), zap.Error(err))
	}
}

func (t *AMQPTransport) Write(ctx context.Context, key, value string) error {
	if err := t.bus.Write(ctx, key, value); err != nil {
		return err
	}
	t.publish(kvChange{Origin: t.origin, Key: key, NewValue: &value})
	return nil
}

func (t *AMQPTransport) Read(ctx context.Context, key string) (string, bool, error) {
	return t.bus.Read(ctx, key)
}

func (t *AMQPTransport) Delete(ctx context.Context, key string) error {
	if err := t.bus.Delete(ctx, key); err != nil {
		return err
	}
	t.publish(kvChange{Origin: t.origin, Key: key})
	return nil
}

func (t *AMQPTransport) Subscribe(handler Handler) func() {
	return t.bus.Subscribe(handler)
}

// Close tears down the broker connection.
func (t *AMQPTransport) Close() error {
	close(t.closing)
	if t.channel != nil {
		if err := t.channel.Close(); err != nil {
			t.logger.Warn("Failed to close AMQP channel", zap.Error(err))
		}
	}
	if t.conn != nil {
		if err := t.conn.Close(); err != nil {
			return fmt.Errorf("failed to close AMQP connection: %w", err)
		}
	}
	return nil
}
