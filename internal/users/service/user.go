package service

import (
	"context"
	"errors"

	"playday/internal/events"
	userserrors "playday/internal/users/errors"
	"playday/internal/users/provider"
	"playday/internal/users/repository"
	"playday/internal/users/validator"
	"playday/pkg/auth"
	"playday/pkg/config"
	apperrors "playday/pkg/errors"
	"playday/pkg/model"
	"playday/pkg/sanitizer"
	"playday/pkg/validation"
)

type UserService interface {
	SignUp(ctx context.Context, req *model.SignUpRequest) (*model.User, error)
	SignIn(ctx context.Context, req *model.SignInRequest) (*model.Session, error)
	FederatedSignIn(ctx context.Context, providerName string, req *model.FederatedSignInRequest) (*model.Session, error)
	SignOut(ctx context.Context, caller auth.Identity) error
	Me(ctx context.Context, caller auth.Identity) (*model.User, error)
}

type userService struct {
	repo        repository.UserRepository
	validator   *validator.UserValidator
	hasher      *auth.PasswordHasher
	tokens      *auth.TokenManager
	revocations auth.RevocationStore
	providers   provider.Registry
	events      events.Publisher
	cfg         *config.Config
}

func NewUserService(
	repo repository.UserRepository,
	validator *validator.UserValidator,
	hasher *auth.PasswordHasher,
	tokens *auth.TokenManager,
	revocations auth.RevocationStore,
	providers provider.Registry,
	publisher events.Publisher,
	cfg *config.Config,
) UserService {
	return &userService{
		repo:        repo,
		validator:   validator,
		hasher:      hasher,
		tokens:      tokens,
		revocations: revocations,
		providers:   providers,
		events:      publisher,
		cfg:         cfg,
	}
}

// SignUp registers a password account. It does not start a session.
func (s *userService) SignUp(ctx context.Context, req *model.SignUpRequest) (*model.User, error) {
	req.Name = sanitizer.NormalizeName(req.Name)
	req.Email = sanitizer.NormalizeEmail(req.Email)

	if err := s.validator.ValidateSignUp(req); err != nil {
		s.cfg.Log.Warn("Sign up validation failed", "email", req.Email, "error", err)
		return nil, validation.AppError("Sign up validation failed", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Internal("Failed to secure password", err)
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		Role:         req.Role,
		PasswordHash: hash,
		Provider:     model.ProviderPassword,
	}
	if err := s.create(ctx, user); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("User signed up", "id", user.ID, "role", user.Role)
	return user, nil
}

func (s *userService) SignIn(ctx context.Context, req *model.SignInRequest) (*model.Session, error) {
	req.Email = sanitizer.NormalizeEmail(req.Email)
	if err := s.validator.ValidateSignIn(req); err != nil {
		return nil, validation.AppError("Sign in validation failed", err)
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("Invalid email or password")
		}
		s.cfg.Log.Error("Failed to look up user", "error", err)
		return nil, apperrors.Internal("Failed to sign in", err)
	}
	if user.PasswordHash == "" {
		return nil, apperrors.Unauthorized("This account signs in with " + user.Provider)
	}

	ok, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		s.cfg.Log.Error("Stored password hash is unreadable", "user_id", user.ID, "error", err)
		return nil, apperrors.Internal("Failed to sign in", err)
	}
	if !ok {
		s.cfg.Log.Warn("Sign in rejected", "user_id", user.ID)
		return nil, apperrors.Unauthorized("Invalid email or password")
	}

	return s.startSession(ctx, user)
}

// FederatedSignIn trusts the provider's account identity. First-time subjects
// are registered with the requested role, player when none is given.
func (s *userService) FederatedSignIn(ctx context.Context, providerName string, req *model.FederatedSignInRequest) (*model.Session, error) {
	if err := s.validator.ValidateFederated(req); err != nil {
		return nil, validation.AppError("Sign in validation failed", err)
	}

	ext, err := s.providers.Verify(ctx, providerName, req.Token)
	if err != nil {
		switch {
		case errors.Is(err, provider.ErrUnknownProvider):
			return nil, apperrors.NotFound("Sign-in provider " + providerName)
		case errors.Is(err, provider.ErrInvalidToken), errors.Is(err, provider.ErrMissingEmail):
			s.cfg.Log.Warn("Provider token rejected", "provider", providerName, "error", err)
			return nil, apperrors.Unauthorized("Sign in with " + providerName + " failed")
		default:
			s.cfg.Log.Error("Provider verification failed", "provider", providerName, "error", err)
			return nil, apperrors.Unavailable(providerName)
		}
	}

	user, err := s.repo.FindByProvider(ctx, ext.Provider, ext.Subject)
	if err != nil && !errors.Is(err, userserrors.ErrNotFound) {
		s.cfg.Log.Error("Failed to look up federated user", "provider", ext.Provider, "error", err)
		return nil, apperrors.Internal("Failed to sign in", err)
	}

	if user == nil {
		role := req.Role
		if role == "" {
			role = model.RolePlayer
		}
		user = &model.User{
			Name:            sanitizer.NormalizeName(ext.Name),
			Email:           sanitizer.NormalizeEmail(ext.Email),
			Role:            role,
			Provider:        ext.Provider,
			ProviderSubject: ext.Subject,
		}
		if err := s.create(ctx, user); err != nil {
			return nil, err
		}
		s.cfg.Log.Info("Federated user registered", "id", user.ID, "provider", user.Provider, "role", user.Role)
	}

	return s.startSession(ctx, user)
}

func (s *userService) SignOut(ctx context.Context, caller auth.Identity) error {
	if caller.TokenID == "" {
		return apperrors.Unauthorized("Sign in required")
	}

	if err := s.revocations.Revoke(ctx, caller.TokenID, caller.ExpiresAt); err != nil {
		s.cfg.Log.Error("Failed to revoke token", "user_id", caller.UserID, "error", err)
		return apperrors.Unavailable("session store")
	}

	s.cfg.Log.Info("User signed out", "user_id", caller.UserID)
	s.publishAuth(ctx, model.ChangeSignedOut, caller.UserID)
	return nil
}

func (s *userService) Me(ctx context.Context, caller auth.Identity) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, caller.UserID)
	if err != nil {
		switch {
		case errors.Is(err, userserrors.ErrNotFound), errors.Is(err, userserrors.ErrInvalidID):
			return nil, apperrors.NotFound("User")
		default:
			s.cfg.Log.Error("Failed to load profile", "user_id", caller.UserID, "error", err)
			return nil, apperrors.Internal("Failed to retrieve profile", err)
		}
	}
	return user, nil
}

func (s *userService) create(ctx context.Context, user *model.User) error {
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, userserrors.ErrDuplicateEmail) {
			return apperrors.Conflict("An account with this email already exists")
		}
		s.cfg.Log.Error("Failed to create user", "provider", user.Provider, "error", err)
		return apperrors.Internal("Failed to create account", err)
	}
	return nil
}

func (s *userService) startSession(ctx context.Context, user *model.User) (*model.Session, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		s.cfg.Log.Error("Failed to issue token", "user_id", user.ID, "error", err)
		return nil, apperrors.Internal("Failed to sign in", err)
	}

	s.cfg.Log.Info("User signed in", "user_id", user.ID, "provider", user.Provider)
	s.publishAuth(ctx, model.ChangeSignedIn, user.ID)
	return &model.Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *userService) publishAuth(ctx context.Context, change model.ChangeType, userID string) {
	s.events.Publish(ctx, model.ChangeEvent{
		Collection: model.CollectionAuth,
		Type:       change,
		DocumentID: userID,
		Attributes: map[string]string{"user_id": userID},
	})
}
