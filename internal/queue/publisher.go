// Package queue publishes domain events to RabbitMQ. Publishing is
// best-effort: errors are logged and swallowed so the main request flow is
// never interrupted by the broker.
package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type Publisher struct {
	url string
	log *zap.Logger
}

func NewPublisher(url string, log *zap.Logger) *Publisher {
	return &Publisher{
		url: url,
		log: log.With(zap.String("component", "queue_publisher")),
	}
}

// Notify implements gateway.Notifier. The event name is the queue name;
// payload is marshalled to JSON and published persistent.
func (p *Publisher) Notify(ctx context.Context, event string, payload any) {
	if err := p.publish(ctx, event, payload); err != nil {
		p.log.Warn("Event publish failed",
			zap.Error(err),
			zap.String("event", event),
		)
	}
}

func (p *Publisher) publish(ctx context.Context, event string, payload any) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable queue so messages survive broker restarts. Declare is idempotent.
	if _, err := ch.QueueDeclare(event, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	return ch.PublishWithContext(ctx, "", event, false, false, pub)
}
