package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"playday/internal/events"
	fieldserrors "playday/internal/fields/errors"
	rentalserrors "playday/internal/rentals/errors"
	"playday/internal/rentals/pricing"
	"playday/internal/rentals/repository"
	"playday/internal/rentals/validator"
	"playday/pkg/auth"
	"playday/pkg/config"
	mongotx "playday/pkg/db/mongo"
	apperrors "playday/pkg/errors"
	"playday/pkg/model"
	"playday/pkg/validation"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	lockAttempts = 10
	lockBackoff  = 100 * time.Millisecond
)

// FieldReader is the part of the field store rentals depend on.
type FieldReader interface {
	FindByID(ctx context.Context, id string) (*model.Field, error)
	FindIDsByOwner(ctx context.Context, ownerID string) ([]string, error)
}

type RentalService interface {
	Quote(ctx context.Context, fieldID string, start, end time.Time) (*model.RentalQuote, error)
	Create(ctx context.Context, caller auth.Identity, req *model.RentalRequest) (*model.Rental, error)
	GetByID(ctx context.Context, caller auth.Identity, id string) (*model.Rental, error)
	GetMine(ctx context.Context, caller auth.Identity, limit int, offset int64) ([]*model.Rental, int64, error)
	GetBookings(ctx context.Context, caller auth.Identity, limit int, offset int64) ([]*model.Rental, int64, error)
}

type rentalService struct {
	repo      repository.RentalRepository
	lockRepo  repository.RentalLockRepository
	fields    FieldReader
	validator *validator.RentalValidator
	events    events.Publisher
	cfg       *config.Config
	now       func() time.Time
}

func NewRentalService(
	repo repository.RentalRepository,
	lockRepo repository.RentalLockRepository,
	fields FieldReader,
	validator *validator.RentalValidator,
	publisher events.Publisher,
	cfg *config.Config,
) RentalService {
	return &rentalService{
		repo:      repo,
		lockRepo:  lockRepo,
		fields:    fields,
		validator: validator,
		events:    publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *rentalService) Quote(ctx context.Context, fieldID string, start, end time.Time) (*model.RentalQuote, error) {
	if fieldID == "" {
		return nil, apperrors.InvalidInput("Field ID cannot be empty")
	}

	field, err := s.loadField(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	return quote(field, start, end)
}

func quote(field *model.Field, start, end time.Time) (*model.RentalQuote, error) {
	hours, price, err := pricing.Quote(start, end, field.HourlyPrice)
	if err != nil {
		return nil, apperrors.Validation("Rental must be at least one hour long", map[string]any{
			"hours": hours,
			"price": price,
			"fields": map[string]string{
				"end_time": "must be at least one hour after start_time",
			},
		})
	}

	return &model.RentalQuote{
		FieldID:     field.ID,
		StartTime:   start,
		EndTime:     end,
		Hours:       hours,
		HourlyPrice: field.HourlyPrice,
		Price:       price,
	}, nil
}

// Create books a slot. The per-field lock serializes concurrent creators and
// the transaction keeps the overlap check and the insert atomic.
func (s *rentalService) Create(ctx context.Context, caller auth.Identity, req *model.RentalRequest) (*model.Rental, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validation.AppError("Rental validation failed", err)
	}

	field, err := s.loadField(ctx, req.FieldID)
	if err != nil {
		return nil, err
	}

	start := req.StartTime.UTC().Truncate(time.Millisecond)
	end := req.EndTime.UTC().Truncate(time.Millisecond)
	q, err := quote(field, start, end)
	if err != nil {
		return nil, err
	}

	rental := &model.Rental{
		FieldID:     field.ID,
		FieldName:   field.Name,
		Location:    field.Location,
		RenterID:    caller.UserID,
		RenterEmail: caller.Email,
		StartTime:   start,
		EndTime:     end,
		Hours:       q.Hours,
		HourlyPrice: q.HourlyPrice,
		Price:       q.Price,
	}

	lock, err := s.acquireFieldLock(ctx, field.ID)
	if err != nil {
		return nil, err
	}
	defer s.releaseFieldLock(context.WithoutCancel(ctx), lock)

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		overlap, err := s.repo.HasOverlap(sessCtx, rental.FieldID, rental.StartTime, rental.EndTime)
		if err != nil {
			return apperrors.Internal("Failed to check rental availability", err)
		}
		if overlap {
			return apperrors.Conflict(rentalserrors.ErrOverlap.Error())
		}
		if err := s.repo.Create(sessCtx, rental); err != nil {
			return apperrors.Internal("Failed to create rental", err)
		}
		return nil
	})
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeConflict) {
			s.cfg.Log.Warn("Rental overlaps an existing booking",
				"field_id", rental.FieldID,
				"start_time", rental.StartTime,
				"end_time", rental.EndTime,
			)
			return nil, err
		}
		s.cfg.Log.Error("Failed to create rental", "field_id", rental.FieldID, "renter_id", caller.UserID, "error", err)
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Internal("Failed to create rental", err)
	}

	s.cfg.Log.Info("Rental created successfully",
		"id", rental.ID,
		"field_id", rental.FieldID,
		"renter_id", rental.RenterID,
		"hours", rental.Hours,
		"price", rental.Price,
	)
	s.publish(ctx, rental, field.OwnerID)
	return rental, nil
}

// acquireFieldLock inserts the field's lock document. A held lock is retried
// a bounded number of times; a lock past its expiry is cleared first.
func (s *rentalService) acquireFieldLock(ctx context.Context, fieldID string) (*model.RentalLock, error) {
	lockID := fmt.Sprintf("rental_lock_%s", fieldID)

	for attempt := 1; attempt <= lockAttempts; attempt++ {
		now := s.now().UTC()
		lock := &model.RentalLock{
			ID:        lockID,
			Token:     uuid.NewString(),
			ExpiresAt: now.Add(s.cfg.RentalLockTTL),
		}
		err := s.lockRepo.Create(ctx, lock)
		if err == nil {
			return lock, nil
		}
		if !errors.Is(err, rentalserrors.ErrLockHeld) {
			return nil, apperrors.Internal("Failed to acquire rental lock", err)
		}

		cleared, clearErr := s.lockRepo.DeleteExpired(ctx, lockID, now)
		if clearErr != nil {
			s.cfg.Log.Warn("Failed to clear expired rental lock", "lock_id", lockID, "error", clearErr)
		}
		if cleared {
			continue
		}

		timer := time.NewTimer(lockBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, apperrors.Timeout("Timed out waiting for the field to become available")
		case <-timer.C:
		}
	}

	return nil, apperrors.Conflict("Field is being booked by someone else, please retry")
}

func (s *rentalService) releaseFieldLock(ctx context.Context, lock *model.RentalLock) {
	err := s.lockRepo.Delete(ctx, lock.ID, lock.Token)
	switch {
	case err == nil:
	case errors.Is(err, rentalserrors.ErrLockLost):
		s.cfg.Log.Warn("Rental lock expired before release", "lock_id", lock.ID, "ttl", s.cfg.RentalLockTTL)
	default:
		s.cfg.Log.Warn("Failed to release rental lock", "lock_id", lock.ID, "error", err)
	}
}

func (s *rentalService) GetByID(ctx context.Context, caller auth.Identity, id string) (*model.Rental, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Rental ID cannot be empty")
	}

	rental, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id, "Failed to retrieve rental")
	}
	if rental.RenterID == caller.UserID {
		return rental, nil
	}

	field, err := s.fields.FindByID(ctx, rental.FieldID)
	if err != nil && !errors.Is(err, fieldserrors.ErrNotFound) {
		return nil, apperrors.Internal("Failed to retrieve rental", err)
	}
	if field == nil || field.OwnerID != caller.UserID {
		return nil, apperrors.Forbidden("Only the renter or the field's owner can view this rental")
	}
	return rental, nil
}

func (s *rentalService) GetMine(ctx context.Context, caller auth.Identity, limit int, offset int64) ([]*model.Rental, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	rentals, total, err := mongotx.FetchPage(ctx, s.cfg.ReadTimeout,
		func(ctx context.Context) (int64, error) {
			return s.repo.CountByRenter(ctx, caller.UserID)
		},
		func(ctx context.Context) ([]*model.Rental, error) {
			return s.repo.FindByRenter(ctx, caller.UserID, limit, offset)
		},
	)
	if err != nil {
		s.cfg.Log.Error("Failed to get renter rentals", "renter_id", caller.UserID, "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve rentals", err)
	}
	return rentals, total, nil
}

// GetBookings lists rentals made on any field the caller owns.
func (s *rentalService) GetBookings(ctx context.Context, caller auth.Identity, limit int, offset int64) ([]*model.Rental, int64, error) {
	if !caller.IsOwner() {
		return nil, 0, apperrors.Forbidden("Only field owners have bookings")
	}
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	fieldIDs, err := s.fields.FindIDsByOwner(ctx, caller.UserID)
	if err != nil {
		s.cfg.Log.Error("Failed to get owner fields", "owner_id", caller.UserID, "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve bookings", err)
	}
	if len(fieldIDs) == 0 {
		return []*model.Rental{}, 0, nil
	}

	rentals, total, err := mongotx.FetchPage(ctx, s.cfg.ReadTimeout,
		func(ctx context.Context) (int64, error) {
			return s.repo.CountByFields(ctx, fieldIDs)
		},
		func(ctx context.Context) ([]*model.Rental, error) {
			return s.repo.FindByFields(ctx, fieldIDs, limit, offset)
		},
	)
	if err != nil {
		s.cfg.Log.Error("Failed to get owner bookings", "owner_id", caller.UserID, "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return rentals, total, nil
}

func (s *rentalService) loadField(ctx context.Context, fieldID string) (*model.Field, error) {
	field, err := s.fields.FindByID(ctx, fieldID)
	if err != nil {
		switch {
		case errors.Is(err, fieldserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Field", fieldID)
		case errors.Is(err, fieldserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid field ID format")
		default:
			s.cfg.Log.Error("Failed to load field for rental", "field_id", fieldID, "error", err)
			return nil, apperrors.Internal("Failed to retrieve field", err)
		}
	}
	return field, nil
}

func (s *rentalService) translate(err error, id, message string) error {
	switch {
	case errors.Is(err, rentalserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Rental", id)
	case errors.Is(err, rentalserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid rental ID format")
	default:
		s.cfg.Log.Error(message, "id", id, "error", err)
		return apperrors.Internal(message, err)
	}
}

func (s *rentalService) publish(ctx context.Context, rental *model.Rental, ownerID string) {
	s.events.Publish(ctx, model.ChangeEvent{
		Collection: model.CollectionRentals,
		Type:       model.ChangeCreated,
		DocumentID: rental.ID,
		Attributes: map[string]string{
			"renter_id":    rental.RenterID,
			"owner_id":     ownerID,
			"field_id":     rental.FieldID,
			"renter_email": rental.RenterEmail,
			"field_name":   rental.FieldName,
			"start_time":   rental.StartTime.Format(time.RFC3339),
			"price":        strconv.FormatFloat(rental.Price, 'f', 2, 64),
		},
		Document: rental,
	})
}
