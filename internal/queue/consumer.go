package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const eventLogPath = "logs/events.log"

// StartConsumer runs a blocking consume loop that drains the event queue and
// appends each event to the event log file.  It reconnects with a backoff
// whenever the broker connection drops and returns when ctx is cancelled.
// Intended to run in its own goroutine from main.
func StartConsumer(ctx context.Context, amqpURL string) {
	for {
		if err := consumeOnce(ctx, amqpURL); err != nil {
			log.Printf("queue: consumer stopped: %v", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

func consumeOnce(ctx context.Context, amqpURL string) error {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(eventQueueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare: %w", err)
	}

	if err := ch.Qos(10, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}

	deliveries, err := ch.Consume(eventQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	log.Printf("queue: consuming %s", eventQueueName)

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			if err := handleDelivery(d.Body); err != nil {
				log.Printf("queue: handle event: %v", err)
				d.Nack(false, false)
				continue
			}
			d.Ack(false)
		}
	}
}

func handleDelivery(body []byte) error {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("unmarshal envelope: %w", err)
	}

	line := fmt.Sprintf("%s %s %s %s\n", env.OccurredAt, env.Type, env.ID, string(env.Data))
	return appendEventLog(line)
}

func appendEventLog(line string) error {
	if err := os.MkdirAll(filepath.Dir(eventLogPath), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(eventLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString(line)
	return err
}
