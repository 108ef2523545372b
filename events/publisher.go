package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

const ContentUpdated = "content.updated"

// Event announces an accepted write to the store.
type Event struct {
	Type      string   `json:"type"`
	Version   int64    `json:"version"`
	Fields    []string `json:"fields,omitempty"`
	Timestamp int64    `json:"timestamp"`
}

func NewContentUpdated(version int64, fields []string) Event {
	return Event{
		Type:      ContentUpdated,
		Version:   version,
		Fields:    fields,
		Timestamp: time.Now().UnixMilli(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// LogPublisher only logs events. It is used when no broker is configured.
type LogPublisher struct {
	Log *logrus.Logger
}

func (p LogPublisher) Publish(_ context.Context, e Event) error {
	p.Log.WithFields(logrus.Fields{
		"event":   e.Type,
		"version": e.Version,
		"fields":  e.Fields,
	}).Info("content event")
	return nil
}

func (LogPublisher) Close() error { return nil }

// AMQPPublisher publishes events to a RabbitMQ topic exchange, routed by
// event type.
type AMQPPublisher struct {
	exchange string
	conn     *amqp.Connection

	mu sync.Mutex
	ch *amqp.Channel
}

func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	return &AMQPPublisher{exchange: exchange, conn: conn, ch: ch}, nil
}

func (p *AMQPPublisher) Publish(_ context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.ch.Publish(p.exchange, e.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.UnixMilli(e.Timestamp),
		Body:         body,
	})
}

func (p *AMQPPublisher) Close() error {
	var errs []error
	if err := p.ch.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing RabbitMQ channel: %w", err))
	}
	if err := p.conn.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing RabbitMQ connection: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors occurred during RabbitMQ shutdown: %v", errs)
	}
	return nil
}
