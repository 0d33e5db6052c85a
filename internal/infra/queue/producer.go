package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/xavierca1/taskflow/internal/entity"
	"github.com/xavierca1/taskflow/internal/infra/http/middleware"
)

const (
	EventSource          = "taskflow/api"
	CloudEventsMediaType = "application/cloudevents+json"
)

// Publisher é o pedaço de *amqp.Channel que o producer usa.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitMQProducer publica eventos de domínio como CloudEvents (modo structured)
// atrás de um circuit breaker. Implementa usecase.EventPublisher.
type RabbitMQProducer struct {
	Ch      Publisher
	breaker *gobreaker.CircuitBreaker
}

func NewProducer(ch Publisher) *RabbitMQProducer {
	return &RabbitMQProducer{
		Ch: ch,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "rabbitmq-producer",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
			},
		}),
	}
}

func (p *RabbitMQProducer) PublishActivityRecorded(ctx context.Context, event entity.ActivityRecordedEvent) error {
	return p.publish(ctx, entity.EventActivityRecorded, event.LeadID, event)
}

func (p *RabbitMQProducer) PublishLevelUp(ctx context.Context, event entity.LevelUpEvent) error {
	return p.publish(ctx, entity.EventLevelUp, event.UserID, event)
}

func (p *RabbitMQProducer) publish(ctx context.Context, eventType, subject string, data interface{}) error {
	body, err := EncodeEvent(eventType, subject, data)
	if err != nil {
		middleware.RecordEventPublishError(eventType)
		return err
	}

	_, err = p.breaker.Execute(func() (interface{}, error) {
		return nil, p.Ch.PublishWithContext(ctx,
			ExchangeName,
			eventType, // routing key = tipo do evento
			false,
			false,
			amqp.Publishing{
				ContentType:  CloudEventsMediaType,
				Body:         body,
				DeliveryMode: amqp.Persistent,
				Timestamp:    time.Now().UTC(),
				Type:         eventType,
			},
		)
	})
	if err != nil {
		middleware.RecordEventPublishError(eventType)
		return fmt.Errorf("falha ao publicar %s no RabbitMQ: %w", eventType, err)
	}
	return nil
}

// EncodeEvent monta o envelope CloudEvents e serializa em JSON.
func EncodeEvent(eventType, subject string, data interface{}) ([]byte, error) {
	event := cloudevents.NewEvent()
	event.SetID(uuid.NewString())
	event.SetSource(EventSource)
	event.SetType(eventType)
	event.SetSubject(subject)
	event.SetTime(time.Now().UTC())

	if err := event.SetData(cloudevents.ApplicationJSON, data); err != nil {
		return nil, fmt.Errorf("erro ao converter payload: %w", err)
	}
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("evento inválido: %w", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("erro ao serializar evento: %w", err)
	}
	return body, nil
}

// NoopPublisher descarta eventos; usado quando AMQP_URL não está configurado.
type NoopPublisher struct{}

func (NoopPublisher) PublishActivityRecorded(context.Context, entity.ActivityRecordedEvent) error {
	return nil
}

func (NoopPublisher) PublishLevelUp(context.Context, entity.LevelUpEvent) error {
	return nil
}
