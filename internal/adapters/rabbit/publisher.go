package rabbit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const exchange = "booking.events"

// Publisher emits booking lifecycle events (hold.created, hold.expired,
// booking.confirmed, booking.cancelled) on a topic exchange. Downstream
// consumers, such as the notification mailer, bind their own queues.
type Publisher struct {
	ch *amqp.Channel
}

func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, err
	}
	return &Publisher{ch: ch}, nil
}

func (p *Publisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		MessageId:   uuid.NewString(),
		ContentType: "application/json",
		Type:        eventType,
		Body:        body,
	}
	return p.ch.PublishWithContext(ctx, exchange, eventType, false, false, msg)
}
