package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ChivatosDeveloper/noir-tienda/internal/domain"
	"github.com/segmentio/kafka-go"
)

// ApartadoEvent is the payload on the notifications topic.
type ApartadoEvent struct {
	Type       domain.NotificationKind `json:"type"`
	Apartado   domain.Apartado         `json:"apartado"`
	OccurredAt time.Time               `json:"occurred_at"`
}

// DecodeApartadoEvent parses and checks a notifications topic message.
func DecodeApartadoEvent(msg kafka.Message) (ApartadoEvent, error) {
	var event ApartadoEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return ApartadoEvent{}, fmt.Errorf("decode apartado event: %w", err)
	}
	if !event.Type.Valid() {
		return ApartadoEvent{}, fmt.Errorf("unknown event type %q", event.Type)
	}
	return event, nil
}

type publisher interface {
	PublishWithRetry(ctx context.Context, topic, key string, payload interface{}, maxRetries int) error
}

// NotificationPublisher hands notifications to the worker through Kafka.
type NotificationPublisher struct {
	producer publisher
	topic    string
	retries  int
	now      func() time.Time
}

func NewNotificationPublisher(producer *Producer, topic string, retries int) *NotificationPublisher {
	return &NotificationPublisher{producer: producer, topic: topic, retries: retries, now: time.Now}
}

func (p *NotificationPublisher) Notify(ctx context.Context, kind domain.NotificationKind, a domain.Apartado) error {
	event := ApartadoEvent{Type: kind, Apartado: a, OccurredAt: p.now().UTC()}
	return p.producer.PublishWithRetry(ctx, p.topic, a.ID, event, p.retries)
}

type Notifier interface {
	Notify(ctx context.Context, kind domain.NotificationKind, a domain.Apartado) error
}

// DeliverTo returns a Consume handler that decodes notification events and
// hands them to n.
func DeliverTo(n Notifier) func(context.Context, kafka.Message) error {
	return func(ctx context.Context, msg kafka.Message) error {
		event, err := DecodeApartadoEvent(msg)
		if err != nil {
			return err
		}
		if err := n.Notify(ctx, event.Type, event.Apartado); err != nil {
			return fmt.Errorf("deliver %s for apartado %s: %w", event.Type, event.Apartado.ID, err)
		}
		return nil
	}
}
