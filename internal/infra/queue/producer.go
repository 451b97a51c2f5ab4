package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/cablecom/leads-api/internal/entity"
	"github.com/cablecom/leads-api/internal/infra/metrics"
	"github.com/cablecom/leads-api/internal/usecase"
)

const EventLeadCreated = "lead.created"

type LeadCreatedPayload struct {
	Event       string      `json:"event"`
	Lead        entity.Lead `json:"lead"`
	PublishedAt time.Time   `json:"published_at"`
}

// Publisher is satisfied by *amqp.Channel.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitMQProducer publishes lead.created messages for the notification
// worker. When publishing fails the lead is handed to Fallback, usually the
// in-process mail dispatcher.
type RabbitMQProducer struct {
	Ch       Publisher
	Fallback usecase.LeadNotificationDispatcher
	Timeout  time.Duration
	Log      *zap.Logger

	wg sync.WaitGroup
}

func NewProducer(ch Publisher, fallback usecase.LeadNotificationDispatcher, log *zap.Logger) *RabbitMQProducer {
	if log == nil {
		log = zap.NewNop()
	}
	return &RabbitMQProducer{Ch: ch, Fallback: fallback, Timeout: 5 * time.Second, Log: log}
}

func (p *RabbitMQProducer) PublishLeadCreated(ctx context.Context, lead entity.Lead) error {
	body, err := json.Marshal(LeadCreatedPayload{
		Event:       EventLeadCreated,
		Lead:        lead,
		PublishedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    fmt.Sprintf("lead-%d", lead.ID),
			Type:         EventLeadCreated,
		},
	)
	if err != nil {
		return fmt.Errorf("publish to rabbitmq: %w", err)
	}
	return nil
}

// Dispatch publishes in the background and returns immediately.
func (p *RabbitMQProducer) Dispatch(lead entity.Lead) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), p.Timeout)
		defer cancel()

		err := p.PublishLeadCreated(ctx, lead)
		metrics.RecordNotification("queue", err == nil)
		if err == nil {
			p.Log.Debug("lead queued for notification", zap.Int64("lead_id", lead.ID))
			return
		}

		p.Log.Error("lead notification publish failed", zap.Int64("lead_id", lead.ID), zap.Error(err))
		if p.Fallback != nil {
			p.Fallback.Dispatch(lead)
		}
	}()
}

func (p *RabbitMQProducer) Wait() {
	p.wg.Wait()
}
