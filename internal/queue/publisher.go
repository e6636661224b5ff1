package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher delivers booking events. Publishing is best-effort: callers log
// failures and carry on, a broker outage must never block the booking flow.
type Publisher interface {
	Publish(ctx context.Context, event BookingEvent) error
	Close() error
}

const exchangeName = "booking.events"

// AMQPPublisher publishes to a durable topic exchange with the event type as
// routing key. Messages are persistent so they survive broker restarts.
type AMQPPublisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := ch.ExchangeDeclare(
		exchangeName,
		"topic",
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &AMQPPublisher{conn: conn, ch: ch}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, event BookingEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("queue: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := p.ch.PublishWithContext(ctx, exchangeName, event.Type, false, false, pub); err != nil {
		log.Printf("queue: publish %s failed: %v", event.Type, err)
		return err
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// NoOpPublisher is used when no broker is configured.
type NoOpPublisher struct{}

func NewNoOpPublisher() *NoOpPublisher { return &NoOpPublisher{} }

func (p *NoOpPublisher) Publish(ctx context.Context, event BookingEvent) error { return nil }
func (p *NoOpPublisher) Close() error                                          { return nil }

// RecordingPublisher captures events for tests.
type RecordingPublisher struct {
	Events []BookingEvent
}

func (p *RecordingPublisher) Publish(ctx context.Context, event BookingEvent) error {
	p.Events = append(p.Events, event)
	return nil
}

func (p *RecordingPublisher) Close() error { return nil }
