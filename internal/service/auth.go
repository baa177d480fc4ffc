package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/mwarren02/storefront-api/internal/apperr"
	"github.com/mwarren02/storefront-api/internal/auth"
	"github.com/mwarren02/storefront-api/internal/models"
	"github.com/mwarren02/storefront-api/internal/store"
)

// AuthService handles registration and login. Kept deliberately thin:
// users exist so that carts and orders have an owner to scope to.
type AuthService struct {
	store  store.Store
	tokens *auth.TokenManager
	logger *zap.Logger
}

func NewAuthService(st store.Store, tokens *auth.TokenManager, logger *zap.Logger) *AuthService {
	return &AuthService{store: st, tokens: tokens, logger: logger}
}

func (s *AuthService) Register(ctx context.Context, input models.RegisterInput) (*models.User, error) {
	exists, err := s.store.Users().ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, apperr.Internal("failed to check email", err)
	}
	if exists {
		return nil, apperr.Conflict("email %q is already registered", input.Email)
	}

	var password models.Password
	if err := password.Set(input.Password); err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	user := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: password.Hash,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, apperr.Internal("failed to create user", err)
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID))
	return user, nil
}

// Login verifies credentials and issues a signed token. Wrong email and
// wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, input models.LoginInput) (string, *models.User, error) {
	user, err := s.store.Users().GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil, apperr.Validation("invalid email or password")
		}
		return "", nil, apperr.Internal("failed to load user", err)
	}

	password := models.Password{Hash: user.PasswordHash}
	ok, err := password.Matches(input.Password)
	if err != nil {
		return "", nil, apperr.Internal("failed to verify password", err)
	}
	if !ok {
		return "", nil, apperr.Validation("invalid email or password")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return "", nil, apperr.Internal("failed to issue token", err)
	}
	return token, user, nil
}
