package rabbitmq

import (
	"encoding/json"
	"log"

	"github.com/buzcart/buzcart-api/config"
	"github.com/buzcart/buzcart-api/models"
	amqp "github.com/rabbitmq/amqp091-go"
)

// StartOrderConsumer hands every event on the order queue to handle, and
// logs whatever lands in the dead letter queue.
func StartOrderConsumer(ch *amqp.Channel, cfg *config.Config, handle func(models.OrderEvent)) error {
	msgs, err := ch.Consume(
		cfg.OrderQueue,
		"buzcart-api", // consumer tag
		false,         // auto-ack
		false,         // exclusive
		false,         // no-local
		false,         // no-wait
		nil,
	)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			processOrderMessage(msg, handle)
		}
	}()

	dlqMsgs, err := ch.Consume(
		cfg.DeadLetterQueue,
		"buzcart-api-dlq",
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		log.Printf("⚠️ Failed to register dead letter consumer: %v", err)
		return nil
	}

	go func() {
		for msg := range dlqMsgs {
			processDeadLetterMessage(msg)
		}
	}()
	return nil
}

func processOrderMessage(msg amqp.Delivery, handle func(models.OrderEvent)) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Recovered from panic in order event: %v", r)
			msg.Nack(false, false)
		}
	}()

	var event models.OrderEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Printf("❌ Invalid order event %q: %v", msg.Body, err)
		msg.Nack(false, false) // dead-letter, do not requeue
		return
	}

	switch event.Type {
	case models.EventOrderCreated:
		handle(event)
	default:
		log.Printf("⚠️ Unknown order event type: %s", event.Type)
	}
	msg.Ack(false)
}

func processDeadLetterMessage(msg amqp.Delivery) {
	log.Printf("🪦 Dead letter order event: %s", msg.Body)
	msg.Ack(false)
}
