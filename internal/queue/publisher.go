package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher holds a live AMQP channel and publishes storefront events on the
// shared durable queue.  A nil Publisher is safe to use; every publish becomes
// a no-op so the API keeps working when the broker is down.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewPublisher dials the broker and declares the event queue.  Callers should
// treat a nil Publisher (with error) as "run without events".
func NewPublisher(amqpURL string) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	_, err = ch.QueueDeclare(
		eventQueueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, channel: ch}, nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// PublishUserRegistered emits a user.registered event.  Failures are logged
// and swallowed; event delivery is best effort.
func (p *Publisher) PublishUserRegistered(ctx context.Context, evt UserRegisteredEvent) {
	p.publish(ctx, TypeUserRegistered, evt)
}

// PublishCartMerged emits a cart.merged event after a login-time merge.
func (p *Publisher) PublishCartMerged(ctx context.Context, evt CartMergedEvent) {
	p.publish(ctx, TypeCartMerged, evt)
}

func (p *Publisher) publish(ctx context.Context, eventType string, data interface{}) {
	if p == nil || p.channel == nil {
		return
	}

	env, err := newEnvelope(eventType, data)
	if err != nil {
		log.Printf("queue: marshal %s event: %v", eventType, err)
		return
	}
	body, err := json.Marshal(env)
	if err != nil {
		log.Printf("queue: marshal envelope: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(ctx,
		"",             // default exchange
		eventQueueName, // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    env.ID,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		log.Printf("queue: publish %s: %v", eventType, err)
	}
}
