package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/xavierca1/taskflow/internal/entity"
)

// EventHandler é implementado por usecase.ProcessEventsUseCase.
type EventHandler interface {
	HandleActivityRecorded(ctx context.Context, event entity.ActivityRecordedEvent) error
	HandleLevelUp(ctx context.Context, event entity.LevelUpEvent) error
}

type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

var errMalformed = errors.New("malformed message")

type Worker struct {
	Channel Consumer
	Handler EventHandler
}

func NewWorker(ch Consumer, handler EventHandler) *Worker {
	return &Worker{Channel: ch, Handler: handler}
}

// Start consome a fila até o ctx ser cancelado ou o canal fechar.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"taskflow-worker",
		false, // auto-ack (manual é mais seguro)
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	log.Info().Str("queue", queueName).Msg("worker aguardando mensagens")

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	err := w.process(ctx, d.Body)
	switch {
	case err == nil:
		d.Ack(false)
	case errors.Is(err, errMalformed):
		// Mensagem podre. Rejeita sem requeue para não travar a fila.
		log.Error().Err(err).Msg("descartando mensagem malformada")
		d.Nack(false, false)
	default:
		// uma segunda chance; na reentrega que falhar vai para a DLQ
		requeue := !d.Redelivered
		log.Error().Err(err).Bool("requeue", requeue).Msg("falha ao processar evento")
		d.Nack(false, requeue)
	}
}

func (w *Worker) process(ctx context.Context, body []byte) error {
	event := cloudevents.NewEvent()
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}

	switch event.Type() {
	case entity.EventActivityRecorded:
		var payload entity.ActivityRecordedEvent
		if err := event.DataAs(&payload); err != nil {
			return fmt.Errorf("%w: %v", errMalformed, err)
		}
		return w.Handler.HandleActivityRecorded(ctx, payload)

	case entity.EventLevelUp:
		var payload entity.LevelUpEvent
		if err := event.DataAs(&payload); err != nil {
			return fmt.Errorf("%w: %v", errMalformed, err)
		}
		return w.Handler.HandleLevelUp(ctx, payload)

	default:
		// Ack para tirar da fila, não sabemos tratar
		log.Warn().Str("type", event.Type()).Str("id", event.ID()).Msg("tipo de evento desconhecido")
		return nil
	}
}
