package service

import (
	"context"

	"playday/internal/events"
	"playday/internal/subscribers/repository"
	"playday/pkg/config"
	apperrors "playday/pkg/errors"
	"playday/pkg/model"
	"playday/pkg/sanitizer"
	"playday/pkg/validation"
)

type SubscriberService interface {
	Subscribe(ctx context.Context, req *model.SubscribeRequest) (*model.Subscriber, error)
}

type subscriberService struct {
	repo     repository.SubscriberRepository
	validate *validation.Validator
	events   events.Publisher
	cfg      *config.Config
}

func NewSubscriberService(repo repository.SubscriberRepository, publisher events.Publisher, cfg *config.Config) SubscriberService {
	return &subscriberService{
		repo:     repo,
		validate: validation.New(),
		events:   publisher,
		cfg:      cfg,
	}
}

// Subscribe is idempotent per email address.
func (s *subscriberService) Subscribe(ctx context.Context, req *model.SubscribeRequest) (*model.Subscriber, error) {
	req.Email = sanitizer.NormalizeEmail(req.Email)
	if err := s.validate.Struct(req); err != nil {
		return nil, validation.AppError("Subscription validation failed", err)
	}

	sub, created, err := s.repo.Upsert(ctx, req.Email)
	if err != nil {
		s.cfg.Log.Error("Failed to store subscriber", "error", err)
		return nil, apperrors.Internal("Failed to subscribe", err)
	}
	if !created {
		s.cfg.Log.Debug("Subscriber already registered")
		return sub, nil
	}

	s.cfg.Log.Info("Subscriber added", "id", sub.ID)
	s.events.Publish(ctx, model.ChangeEvent{
		Collection: model.CollectionSubscribers,
		Type:       model.ChangeCreated,
		DocumentID: sub.ID,
		Attributes: map[string]string{"email": sub.Email},
	})
	return sub, nil
}
