package messaging

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/AchilleasB/coiipa/training-service/internal/core/ports"
)

var _ ports.EventPublisher = (*RabbitMQBroker)(nil)

// Publish sends the stored event payload unchanged. The outbox id becomes the message id
// so consumers can drop redeliveries.
func (rmq *RabbitMQBroker) Publish(ctx context.Context, evt ports.OutboxEvent) error {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= 0 {
		return ctx.Err()
	}

	_, err := rmq.cb.Execute(func() (interface{}, error) {
		return nil, rmq.ch.PublishWithContext(
			ctx,
			"",            // exchange (default)
			rmq.queueName, // routing key == queue name
			false,         // mandatory
			false,         // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    evt.ID,
				Type:         evt.EventType,
				Timestamp:    evt.CreatedAt,
				Body:         evt.Payload,
			},
		)
	})
	return err
}
