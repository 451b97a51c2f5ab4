package queue

import (
	"context"
	"encoding/json"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/cablecom/leads-api/internal/infra/mail"
)

// Consumer is satisfied by *amqp.Channel.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// Worker drains the notification queue and mails each lead. Failed sends are
// rejected without requeue so they land in the dead letter queue.
type Worker struct {
	Channel Consumer
	Mailer  mail.LeadMailer
	Log     *zap.Logger
}

func NewWorker(ch Consumer, mailer mail.LeadMailer, log *zap.Logger) *Worker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Worker{Channel: ch, Mailer: mailer, Log: log}
}

// Start consumes queueName until ctx is done or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	w.Log.Info("notification worker started", zap.String("queue", queueName))
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("delivery channel closed")
			}
			w.handleDelivery(ctx, d)
		}
	}
}

func (w *Worker) handleDelivery(ctx context.Context, d amqp.Delivery) {
	var payload LeadCreatedPayload
	if err := json.Unmarshal(d.Body, &payload); err != nil || payload.Lead.ID == 0 {
		w.Log.Error("discarding malformed notification message", zap.String("message_id", d.MessageId), zap.Error(err))
		d.Nack(false, false)
		return
	}

	res := w.Mailer.SendLeadNotification(ctx, payload.Lead)
	if !res.Success {
		d.Nack(false, false)
		return
	}
	d.Ack(false)
}
