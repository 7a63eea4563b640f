package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"pantryapp/pantry"
)

const ExchangeType = "topic"

// Event is the JSON body published for each pantry change.
type Event struct {
	EventType string       `json:"event_type"`
	Payload   EventPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type EventPayload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// channel is the subset of *amqp.Channel the publisher needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends pantry changes to a topic exchange.
type Publisher struct {
	conn     *amqp.Connection
	channel  channel
	exchange string
	appID    string
}

// NewPublisher dials the broker and declares a durable topic exchange.
func NewPublisher(url, exchange, appID string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange,
		ExchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	slog.Info("SETUP: Publisher connected to RabbitMQ", "exchange", exchange)

	return &Publisher{conn: conn, channel: ch, exchange: exchange, appID: appID}, nil
}

// RoutingKey returns the topic a change is published under.
func RoutingKey(change pantry.Change) string {
	return "pantry.item." + change.Op
}

// NewEvent builds the message body for a change.
func NewEvent(change pantry.Change, now time.Time) Event {
	return Event{
		EventType: RoutingKey(change),
		Payload:   EventPayload{Name: change.Name, Count: change.Count},
		Timestamp: now.UTC(),
	}
}

// Notify publishes the change; it satisfies pantry.Notifier.
func (p *Publisher) Notify(ctx context.Context, change pantry.Change) error {
	if p.channel == nil {
		return fmt.Errorf("publisher channel is nil")
	}

	body, err := json.Marshal(NewEvent(change, time.Now()))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		RoutingKey(change),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			AppId:        p.appID,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	var err error
	if p.channel != nil {
		err = p.channel.Close()
	}
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
