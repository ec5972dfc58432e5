// Package events публикует в Kafka события аудита успешных изменений.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/mmeshcher/parcel-portal/internal/metrics"
)

// Event описывает одно действие пользователя над ресурсом. Тело запроса
// в событие не включается, только идентификаторы.
type Event struct {
	ID         string    `json:"id"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resourceId,omitempty"`
	Action     string    `json:"action"`
	Subject    string    `json:"subject,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewEvent заполняет идентификатор и время события.
func NewEvent(resource, resourceID, action string) Event {
	return Event{
		ID:         uuid.NewString(),
		Resource:   resource,
		ResourceID: resourceID,
		Action:     action,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher отправляет события аудита.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// KafkaPublisher пишет события в топик, ключом сообщения служат ресурс и его идентификатор.
type KafkaPublisher struct {
	w      *kafka.Writer
	logger *zap.Logger
}

// NewKafkaPublisher создаёт писателя в указанный топик.
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
		logger: logger,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.Resource + ":" + e.ResourceID),
		Value: value,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "action", Value: []byte(e.Action)},
		},
	})
	if err != nil {
		metrics.EventsPublished.WithLabelValues("error").Inc()
		return fmt.Errorf("write event: %w", err)
	}

	metrics.EventsPublished.WithLabelValues("ok").Inc()
	return nil
}

// Close дописывает буфер и закрывает соединения.
func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// Nop отбрасывает события; используется без настроенных брокеров.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
