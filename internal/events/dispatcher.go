package events

import (
	"context"
	"time"

	"playday/pkg/feed"
	"playday/pkg/kafka"
	"playday/pkg/logger"
	"playday/pkg/middleware"
	"playday/pkg/model"
)

const publishTimeout = 5 * time.Second

// Publisher announces committed writes. Publishing never fails the write
// that caused it, so there is no error to return.
type Publisher interface {
	Publish(ctx context.Context, event model.ChangeEvent)
}

// MessageProducer is satisfied by *kafka.Producer.
type MessageProducer interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// Dispatcher fans change events out to the live feed and, when a producer
// is configured, to the Kafka events topic.
type Dispatcher struct {
	broker   feed.Broker
	producer MessageProducer
	source   string
	log      *logger.Logger
	now      func() time.Time
}

func NewDispatcher(broker feed.Broker, producer MessageProducer, source string, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		broker:   broker,
		producer: producer,
		source:   source,
		log:      log,
		now:      time.Now,
	}
}

func (d *Dispatcher) Publish(ctx context.Context, event model.ChangeEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = d.now().UTC()
	}

	// The write already committed; a client hanging up must not drop the event.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if d.broker != nil && event.Collection != model.CollectionSubscribers {
		if err := d.broker.Publish(ctx, event); err != nil {
			d.log.Warn("Failed to publish change event to feed",
				"collection", event.Collection,
				"type", event.Type,
				"document_id", event.DocumentID,
				"error", err,
			)
		}
	}

	if d.producer == nil || event.Collection == model.CollectionAuth {
		return
	}

	builder := kafka.NewMessage().
		WithKey(event.DocumentID).
		WithValue(event).
		WithEventType(event.EventType()).
		WithSource(d.source).
		WithSchemaVersion("1")
	if requestID := middleware.RequestIDFromContext(ctx); requestID != "" {
		builder = builder.WithCorrelationID(requestID)
	}

	msg, err := builder.Build()
	if err != nil {
		d.log.Error("Failed to build event message", "event_type", event.EventType(), "error", err)
		return
	}

	if err := d.producer.Publish(ctx, msg); err != nil {
		d.log.Error("Failed to publish domain event",
			"event_type", event.EventType(),
			"document_id", event.DocumentID,
			"error", err,
		)
	}
}

// Discard drops every event. Used where no feed is wired, such as the migrate CLI.
type Discard struct{}

func (Discard) Publish(context.Context, model.ChangeEvent) {}
