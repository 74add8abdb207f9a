package notifier

import (
	"context"
	"fmt"

	"playday/pkg/kafka"
	"playday/pkg/logger"
	"playday/pkg/model"
)

// Notice is a confirmation message for one recipient. CorrelationID is the
// request id of the write that caused it, when known.
type Notice struct {
	Kind          string
	Recipient     string
	Subject       string
	Body          string
	CorrelationID string
}

type Notifier interface {
	Notify(ctx context.Context, notice Notice) error
}

// LogNotifier records notices in the service log instead of delivering them.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, notice Notice) error {
	n.log.Info("Notice sent",
		"kind", notice.Kind,
		"recipient", notice.Recipient,
		"subject", notice.Subject,
		"body", notice.Body,
		"correlation_id", notice.CorrelationID,
	)
	return nil
}

// Handler turns domain events from the events topic into notices.
type Handler struct {
	notifier Notifier
	log      *logger.Logger
}

func NewHandler(notifier Notifier, log *logger.Logger) *Handler {
	return &Handler{notifier: notifier, log: log}
}

// Handle is a kafka.MessageHandler. Event types without a notice are acknowledged.
func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	eventType := msg.GetEventType()
	if eventType == "" {
		return kafka.NewPermanentError("event message has no type header", kafka.ErrInvalidMessage)
	}

	var build func(model.ChangeEvent) (Notice, bool)
	switch eventType {
	case "rental.created":
		build = rentalNotice
	case "game.joined":
		build = gameJoinedNotice
	case "subscriber.created":
		build = subscriberNotice
	default:
		h.log.Debug("Ignoring event", "event_type", eventType, "event_id", msg.GetEventID())
		return nil
	}

	var event model.ChangeEvent
	if err := msg.DecodeValue(&event); err != nil {
		return err
	}

	notice, ok := build(event)
	if !ok {
		return kafka.NewPermanentError(fmt.Sprintf("%s event %s has no recipient", eventType, event.DocumentID), kafka.ErrInvalidMessage)
	}
	notice.CorrelationID = msg.GetCorrelationID()

	if err := h.notifier.Notify(ctx, notice); err != nil {
		return kafka.NewTransientError("notify failed", err)
	}
	return nil
}

func rentalNotice(event model.ChangeEvent) (Notice, bool) {
	recipient := event.Attributes["renter_email"]
	if recipient == "" {
		return Notice{}, false
	}
	return Notice{
		Kind:      "rental_confirmation",
		Recipient: recipient,
		Subject:   "Your field is booked",
		Body: fmt.Sprintf("Rental %s at %s from %s is confirmed. Total: %s.",
			event.DocumentID,
			event.Attributes["field_name"],
			event.Attributes["start_time"],
			event.Attributes["price"],
		),
	}, true
}

func gameJoinedNotice(event model.ChangeEvent) (Notice, bool) {
	recipient := event.Attributes["user_id"]
	if recipient == "" {
		return Notice{}, false
	}
	return Notice{
		Kind:      "game_joined",
		Recipient: recipient,
		Subject:   "You joined a game",
		Body: fmt.Sprintf("You are in game %s. Spots left: %s.",
			event.DocumentID,
			event.Attributes["players_needed"],
		),
	}, true
}

func subscriberNotice(event model.ChangeEvent) (Notice, bool) {
	recipient := event.Attributes["email"]
	if recipient == "" {
		return Notice{}, false
	}
	return Notice{
		Kind:      "subscription_confirmation",
		Recipient: recipient,
		Subject:   "Thanks for subscribing",
		Body:      "You will hear from us when new fields open near you.",
	}, true
}
