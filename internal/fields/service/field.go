package service

import (
	"context"
	"errors"
	"strconv"

	fieldserrors "playday/internal/fields/errors"
	"playday/internal/fields/repository"
	"playday/internal/fields/validator"
	"playday/internal/events"
	"playday/pkg/auth"
	"playday/pkg/config"
	mongotx "playday/pkg/db/mongo"
	apperrors "playday/pkg/errors"
	"playday/pkg/model"
	"playday/pkg/sanitizer"
	"playday/pkg/validation"
)

type FieldService interface {
	Create(ctx context.Context, caller auth.Identity, field *model.Field) error
	GetByID(ctx context.Context, id string) (*model.Field, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Field, int64, error)
	GetByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Field, int64, error)
	Update(ctx context.Context, caller auth.Identity, id string, updates *model.FieldUpdate) (*model.Field, error)
	Delete(ctx context.Context, caller auth.Identity, id string, confirmed bool) error
}

type fieldService struct {
	repo      repository.FieldRepository
	validator *validator.FieldValidator
	events    events.Publisher
	cfg       *config.Config
}

func NewFieldService(
	repo repository.FieldRepository,
	validator *validator.FieldValidator,
	publisher events.Publisher,
	cfg *config.Config,
) FieldService {
	return &fieldService{
		repo:      repo,
		validator: validator,
		events:    publisher,
		cfg:       cfg,
	}
}

func (s *fieldService) Create(ctx context.Context, caller auth.Identity, field *model.Field) error {
	if !caller.IsOwner() {
		return apperrors.Forbidden("Only field owners can list fields")
	}

	field.ID = ""
	field.OwnerID = caller.UserID
	s.sanitize(field)

	if err := s.validator.Validate(field); err != nil {
		s.cfg.Log.Warn("Field validation failed",
			"owner_id", caller.UserID,
			"name", field.Name,
			"error", err,
		)
		return validation.AppError("Field validation failed", err)
	}

	if err := s.repo.Create(ctx, field); err != nil {
		s.cfg.Log.Error("Failed to create field",
			"owner_id", caller.UserID,
			"name", field.Name,
			"error", err,
		)
		return apperrors.Internal("Failed to create field", err)
	}

	s.cfg.Log.Info("Field created successfully",
		"id", field.ID,
		"owner_id", field.OwnerID,
		"name", field.Name,
	)
	s.publish(ctx, model.ChangeCreated, field)
	return nil
}

func (s *fieldService) GetByID(ctx context.Context, id string) (*model.Field, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Field ID cannot be empty")
	}

	field, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id, "Failed to retrieve field")
	}
	return field, nil
}

func (s *fieldService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Field, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	fields, total, err := mongotx.FetchPage(ctx, s.cfg.ReadTimeout,
		s.repo.Count,
		func(ctx context.Context) ([]*model.Field, error) {
			return s.repo.FindAll(ctx, limit, offset)
		},
	)
	if err != nil {
		s.cfg.Log.Error("Failed to get all fields", "limit", limit, "offset", offset, "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve fields", err)
	}
	return fields, total, nil
}

func (s *fieldService) GetByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Field, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	fields, total, err := mongotx.FetchPage(ctx, s.cfg.ReadTimeout,
		func(ctx context.Context) (int64, error) {
			return s.repo.CountByOwner(ctx, ownerID)
		},
		func(ctx context.Context) ([]*model.Field, error) {
			return s.repo.FindByOwner(ctx, ownerID, limit, offset)
		},
	)
	if err != nil {
		s.cfg.Log.Error("Failed to get owner fields", "owner_id", ownerID, "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve fields", err)
	}
	return fields, total, nil
}

// Update applies updates to the latest stored copy and writes it back only if
// nobody else wrote in between. Lost races are retried from a fresh read.
func (s *fieldService) Update(ctx context.Context, caller auth.Identity, id string, updates *model.FieldUpdate) (*model.Field, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Field ID cannot be empty")
	}

	s.sanitizeUpdate(updates)
	if err := s.validator.ValidateUpdate(updates); err != nil {
		return nil, validation.AppError("Field update validation failed", err)
	}

	attempts := max(1, s.cfg.FieldUpdateMaxAttempts)
	for attempt := 1; attempt <= attempts; attempt++ {
		existing, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, s.translate(err, id, "Failed to check field existence")
		}
		if existing.OwnerID != caller.UserID {
			return nil, apperrors.Forbidden("Only the field's owner can edit it")
		}

		merged := mergeFieldUpdates(existing, updates)
		if err := s.validator.Validate(merged); err != nil {
			return nil, validation.AppError("Field update validation failed", err)
		}

		err = s.repo.UpdateIfVersion(ctx, merged, existing.Version)
		if err == nil {
			s.cfg.Log.Info("Field updated successfully", "id", id, "version", merged.Version)
			s.publish(ctx, model.ChangeUpdated, merged)
			return merged, nil
		}
		if !errors.Is(err, fieldserrors.ErrVersionConflict) {
			return nil, s.translate(err, id, "Failed to update field")
		}

		s.cfg.Log.Warn("Field update lost a race, retrying",
			"id", id,
			"attempt", attempt,
			"max_attempts", attempts,
		)
	}

	return nil, apperrors.Conflict("Field was modified concurrently, please retry")
}

func (s *fieldService) Delete(ctx context.Context, caller auth.Identity, id string, confirmed bool) error {
	if id == "" {
		return apperrors.InvalidInput("Field ID cannot be empty")
	}
	if !confirmed {
		return apperrors.InvalidInput("Deleting a field must be confirmed with confirm=true")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.translate(err, id, "Failed to check field existence")
	}
	if existing.OwnerID != caller.UserID {
		return apperrors.Forbidden("Only the field's owner can delete it")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.translate(err, id, "Failed to delete field")
	}

	s.cfg.Log.Info("Field deleted successfully", "id", id, "owner_id", caller.UserID)
	s.publish(ctx, model.ChangeDeleted, existing)
	return nil
}

func (s *fieldService) translate(err error, id, message string) error {
	switch {
	case errors.Is(err, fieldserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Field", id)
	case errors.Is(err, fieldserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid field ID format")
	default:
		s.cfg.Log.Error(message, "id", id, "error", err)
		return apperrors.Internal(message, err)
	}
}

func (s *fieldService) publish(ctx context.Context, change model.ChangeType, field *model.Field) {
	s.events.Publish(ctx, model.ChangeEvent{
		Collection: model.CollectionFields,
		Type:       change,
		DocumentID: field.ID,
		Attributes: map[string]string{
			"owner_id": field.OwnerID,
			"version":  strconv.FormatInt(field.Version, 10),
		},
		Document: field,
	})
}

func (s *fieldService) sanitize(field *model.Field) {
	field.Name = sanitizer.NormalizeName(field.Name)
	field.Location = sanitizer.TrimAndNormalize(field.Location)
	field.Description = sanitizer.TrimAndNormalize(field.Description)
	field.ImageURL = sanitizer.NormalizeURL(field.ImageURL)
}

func (s *fieldService) sanitizeUpdate(u *model.FieldUpdate) {
	if u.Name != nil {
		*u.Name = sanitizer.NormalizeName(*u.Name)
	}
	if u.Location != nil {
		*u.Location = sanitizer.TrimAndNormalize(*u.Location)
	}
	if u.Description != nil {
		*u.Description = sanitizer.TrimAndNormalize(*u.Description)
	}
	if u.ImageURL != nil {
		*u.ImageURL = sanitizer.NormalizeURL(*u.ImageURL)
	}
}

func mergeFieldUpdates(existing *model.Field, u *model.FieldUpdate) *model.Field {
	merged := *existing
	if u.Name != nil {
		merged.Name = *u.Name
	}
	if u.Location != nil {
		merged.Location = *u.Location
	}
	if u.HourlyPrice != nil {
		merged.HourlyPrice = *u.HourlyPrice
	}
	if u.Description != nil {
		merged.Description = *u.Description
	}
	if u.ImageURL != nil {
		merged.ImageURL = *u.ImageURL
	}
	return &merged
}
