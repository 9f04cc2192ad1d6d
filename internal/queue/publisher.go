package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// Publisher sends domain events to RabbitMQ. Each publish opens its own
// connection so a broker outage never leaves a broken channel behind.
type Publisher struct {
	url string
}

func NewPublisher(url string) *Publisher { return &Publisher{url: url} }

// PublishUserRegistered publishes ev to the user.registered queue as a
// persistent JSON message. Errors are logged and returned so the caller can
// choose to ignore them.
func (p *Publisher) PublishUserRegistered(ctx context.Context, ev UserRegisteredEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Msg("rabbitmq: marshal event failed")
		return err
	}
	return p.publish(ctx, UserRegisteredQueue, ev.EventID, body)
}

func (p *Publisher) publish(ctx context.Context, queueName, messageID string, body []byte) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Error().Err(err).Msg("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Error().Err(err).Msg("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		log.Error().Err(err).Str("queue", queueName).Msg("rabbitmq: queue declare failed")
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    messageID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		log.Error().Err(err).Str("queue", queueName).Msg("rabbitmq: publish failed")
		return err
	}
	return nil
}
