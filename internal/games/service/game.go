package service

import (
	"context"
	"errors"
	"strconv"

	"playday/internal/events"
	"playday/internal/games/eligibility"
	gameserrors "playday/internal/games/errors"
	"playday/internal/games/repository"
	"playday/internal/games/validator"
	rentalserrors "playday/internal/rentals/errors"
	"playday/pkg/auth"
	"playday/pkg/config"
	mongotx "playday/pkg/db/mongo"
	apperrors "playday/pkg/errors"
	"playday/pkg/model"
	"playday/pkg/sanitizer"
	"playday/pkg/validation"
)

// RentalReader is the part of the rental store games depend on.
type RentalReader interface {
	FindByID(ctx context.Context, id string) (*model.Rental, error)
}

// GameView is a game as seen by one viewer.
type GameView struct {
	*model.Game
	Eligibility eligibility.Eligibility `json:"eligibility"`
	CanJoin     bool                    `json:"can_join"`
}

type GameService interface {
	Create(ctx context.Context, caller auth.Identity, req *model.GameRequest) (*model.Game, error)
	GetByID(ctx context.Context, viewerID, id string) (*GameView, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Game, int64, error)
	Join(ctx context.Context, caller auth.Identity, id string) (*model.Game, error)
}

type gameService struct {
	repo      repository.GameRepository
	rentals   RentalReader
	validator *validator.GameValidator
	events    events.Publisher
	cfg       *config.Config
}

func NewGameService(
	repo repository.GameRepository,
	rentals RentalReader,
	validator *validator.GameValidator,
	publisher events.Publisher,
	cfg *config.Config,
) GameService {
	return &gameService{
		repo:      repo,
		rentals:   rentals,
		validator: validator,
		events:    publisher,
		cfg:       cfg,
	}
}

// Create opens a pickup game on one of the caller's own rentals. The
// creator holds the first roster spot.
func (s *gameService) Create(ctx context.Context, caller auth.Identity, req *model.GameRequest) (*model.Game, error) {
	req.Title = sanitizer.NormalizeName(req.Title)
	req.Description = sanitizer.TrimAndNormalize(req.Description)
	req.GameType = sanitizer.NormalizeLabel(req.GameType)

	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Game validation failed", "creator_id", caller.UserID, "error", err)
		return nil, validation.AppError("Game validation failed", err)
	}

	rental, err := s.rentals.FindByID(ctx, req.RentalID)
	if err != nil {
		switch {
		case errors.Is(err, rentalserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Rental", req.RentalID)
		case errors.Is(err, rentalserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid rental ID format")
		default:
			s.cfg.Log.Error("Failed to load rental for game", "rental_id", req.RentalID, "error", err)
			return nil, apperrors.Internal("Failed to retrieve rental", err)
		}
	}
	if rental.RenterID != caller.UserID {
		return nil, apperrors.Forbidden("Games can only be created on your own rentals")
	}

	game := &model.Game{
		Title:         req.Title,
		Description:   req.Description,
		GameType:      req.GameType,
		PlayersNeeded: req.PlayersNeeded,
		CreatorID:     caller.UserID,
		RentalID:      rental.ID,
		FieldID:       rental.FieldID,
		Date:          rental.StartTime,
		Duration:      rental.Hours,
		JoinedPlayers: []string{caller.UserID},
	}

	if err := s.repo.Create(ctx, game); err != nil {
		s.cfg.Log.Error("Failed to create game", "creator_id", caller.UserID, "rental_id", rental.ID, "error", err)
		return nil, apperrors.Internal("Failed to create game", err)
	}

	s.cfg.Log.Info("Game created successfully",
		"id", game.ID,
		"creator_id", game.CreatorID,
		"rental_id", game.RentalID,
		"players_needed", game.PlayersNeeded,
	)
	s.publish(ctx, model.ChangeCreated, game, nil)
	return game, nil
}

func (s *gameService) GetByID(ctx context.Context, viewerID, id string) (*GameView, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Game ID cannot be empty")
	}

	game, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id, "Failed to retrieve game")
	}

	e := eligibility.Evaluate(game, viewerID)
	return &GameView{Game: game, Eligibility: e, CanJoin: e.CanJoin()}, nil
}

func (s *gameService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Game, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	games, total, err := mongotx.FetchPage(ctx, s.cfg.ReadTimeout,
		s.repo.Count,
		func(ctx context.Context) ([]*model.Game, error) {
			return s.repo.FindAll(ctx, limit, offset)
		},
	)
	if err != nil {
		s.cfg.Log.Error("Failed to get all games", "limit", limit, "offset", offset, "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve games", err)
	}
	return games, total, nil
}

// Join takes one spot for the caller. Each attempt re-reads the game, checks
// eligibility against that copy and writes only if the copy is still current.
func (s *gameService) Join(ctx context.Context, caller auth.Identity, id string) (*model.Game, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Game ID cannot be empty")
	}

	attempts := max(1, s.cfg.GameJoinMaxAttempts)
	for attempt := 1; attempt <= attempts; attempt++ {
		game, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, s.translate(err, id, "Failed to retrieve game")
		}

		if _, err := eligibility.ApplyJoin(game, caller.UserID); err != nil {
			return nil, joinError(err)
		}

		joined, err := s.repo.JoinIfVersion(ctx, id, caller.UserID, game.Version)
		if err == nil {
			s.cfg.Log.Info("Player joined game",
				"id", id,
				"user_id", caller.UserID,
				"players_needed", joined.PlayersNeeded,
			)
			s.publish(ctx, model.ChangeUpdated, joined, map[string]string{
				"action":  "join",
				"user_id": caller.UserID,
			})
			return joined, nil
		}
		if !errors.Is(err, gameserrors.ErrVersionConflict) {
			return nil, s.translate(err, id, "Failed to join game")
		}

		s.cfg.Log.Warn("Game join lost a race, retrying",
			"id", id,
			"attempt", attempt,
			"max_attempts", attempts,
		)
	}

	return nil, apperrors.Conflict("Game was modified concurrently, please retry")
}

func joinError(err error) error {
	switch {
	case errors.Is(err, eligibility.ErrNotLoggedIn):
		return apperrors.Unauthorized("Sign in to join a game")
	case errors.Is(err, eligibility.ErrGameFull):
		return apperrors.Conflict("Game is full")
	case errors.Is(err, eligibility.ErrAlreadyJoined):
		return apperrors.Conflict("You already joined this game")
	default:
		return apperrors.Internal("Failed to join game", err)
	}
}

func (s *gameService) translate(err error, id, message string) error {
	switch {
	case errors.Is(err, gameserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Game", id)
	case errors.Is(err, gameserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid game ID format")
	default:
		s.cfg.Log.Error(message, "id", id, "error", err)
		return apperrors.Internal(message, err)
	}
}

func (s *gameService) publish(ctx context.Context, change model.ChangeType, game *model.Game, extra map[string]string) {
	attrs := map[string]string{
		"creator_id":     game.CreatorID,
		"field_id":       game.FieldID,
		"players_needed": strconv.Itoa(game.PlayersNeeded),
	}
	for k, v := range extra {
		attrs[k] = v
	}

	s.events.Publish(ctx, model.ChangeEvent{
		Collection: model.CollectionGames,
		Type:       change,
		DocumentID: game.ID,
		Attributes: attrs,
		Document:   game,
	})
}
