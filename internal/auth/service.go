package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/redmonkez12/todo-api/internal/apperr"
	"github.com/redmonkez12/todo-api/internal/ident"
	"github.com/redmonkez12/todo-api/internal/logging"
	"github.com/redmonkez12/todo-api/internal/metrics"
	"github.com/redmonkez12/todo-api/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailRequired      = apperr.Validation("email is required")
	ErrPasswordRequired   = apperr.Validation("password is required")
	ErrPasswordTooShort   = apperr.Validation("password must be at least 8 characters")
	ErrInvalidEmailFormat = apperr.Validation("invalid email format")
	ErrUserIDExhausted    = apperr.Capacity("could not allocate unique user identifier")
)

// registerMaxAttempts bounds the retries when two registrations race for
// the same user id
const registerMaxAttempts = 5

// UserRepository is the user store as seen by the auth service
type UserRepository interface {
	ident.Source
	Create(ctx context.Context, u *user.User) error
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id string) (*user.User, error)
	Delete(ctx context.Context, id string) (*user.User, error)
}

// Service handles authentication business logic
type Service struct {
	userRepo             UserRepository
	authRepo             RefreshTokenRepository
	revoker              AccessRevoker
	tokenService         TokenService
	ids                  *ident.Generator
	logger               *logging.Logger
	accessTokenDuration  time.Duration
	refreshTokenDuration time.Duration
}

func NewService(
	userRepo UserRepository,
	authRepo RefreshTokenRepository,
	revoker AccessRevoker,
	tokenService TokenService,
	logger *logging.Logger,
	accessTokenDuration time.Duration,
	refreshTokenDuration time.Duration,
) *Service {
	return &Service{
		userRepo:             userRepo,
		authRepo:             authRepo,
		revoker:              revoker,
		tokenService:         tokenService,
		ids:                  ident.New(ident.PrefixUser, userRepo),
		logger:               logger,
		accessTokenDuration:  accessTokenDuration,
		refreshTokenDuration: refreshTokenDuration,
	}
}

// validateRegistration checks the credentials a new account is created with
func validateRegistration(email, password string) error {
	switch {
	case email == "":
		return ErrEmailRequired
	case len(email) > 254:
		return ErrInvalidEmailFormat
	case password == "":
		return ErrPasswordRequired
	case len(password) < 8:
		return ErrPasswordTooShort
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmailFormat
	}
	return nil
}

// Register creates a user under the next free user id. Losing the id to a
// concurrent registration is retried up to registerMaxAttempts times.
func (s *Service) Register(ctx context.Context, email, password string) (*user.User, error) {
	if err := validateRegistration(email, password); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &user.User{
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}

	for attempt := range registerMaxAttempts {
		if u.ID, err = s.ids.Next(ctx); err != nil {
			return nil, err
		}

		switch err = s.userRepo.Create(ctx, u); {
		case err == nil:
			metrics.RecordRegistration()
			return u, nil
		case errors.Is(err, user.ErrDuplicateID):
			s.logger.Warn("user id taken by a concurrent registration, retrying", "id", u.ID, "attempt", attempt+1)
		default:
			return nil, err
		}
	}

	return nil, ErrUserIDExhausted
}

// Login checks the credentials and issues a fresh token pair. Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthTokens, error) {
	if email == "" || password == "" {
		return nil, loginFailed()
	}

	u, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, user.ErrNotFound):
		return nil, loginFailed()
	case err != nil:
		return nil, fmt.Errorf("failed to get user: %w", err)
	case !verifyPassword(u.PasswordHash, password):
		return nil, loginFailed()
	}

	tokens, err := s.generateTokens(ctx, u.ID, u.Email)
	if err != nil {
		return nil, err
	}

	metrics.RecordLogin()
	return tokens, nil
}

func loginFailed() error {
	metrics.RecordLoginFailed()
	return ErrInvalidCredentials
}

// RefreshAccessToken rotates a refresh token. The presented token is
// revoked before the new pair is issued, so each one works exactly once.
func (s *Service) RefreshAccessToken(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	rt, err := s.authRepo.GetRefreshToken(ctx, refreshToken)
	switch {
	case errors.Is(err, ErrRefreshTokenNotFound):
		return nil, ErrInvalidToken
	case errors.Is(err, ErrRefreshTokenRevoked),
		errors.Is(err, ErrRefreshTokenExpired),
		errors.Is(err, ErrInvalidToken):
		return nil, err
	case err != nil:
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	case rt.IsRevoked():
		return nil, ErrRefreshTokenRevoked
	case rt.IsExpired():
		return nil, ErrRefreshTokenExpired
	}

	if s.revoker != nil {
		revoked, err := s.revoker.AccessTokenRevoked(ctx, rt.UserID, rt.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to check token revocation: %w", err)
		}
		if revoked {
			return nil, ErrRefreshTokenRevoked
		}
	}

	if err := s.authRepo.RevokeRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to revoke old refresh token: %w", err)
	}

	// The account may have been deleted since the token was issued
	u, err := s.userRepo.GetByID(ctx, rt.UserID)
	if errors.Is(err, user.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return s.generateTokens(ctx, u.ID, u.Email)
}

// RevokeRefreshToken backs logout
func (s *Service) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	return s.authRepo.RevokeRefreshToken(ctx, refreshToken)
}

// Me returns the account behind an authenticated request
func (s *Service) Me(ctx context.Context, userID string) (*user.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// DeleteAccount removes the user and, through the foreign key cascade, all
// of their items. The id is handed out again once it is no longer the
// highest, so every token of the account is revoked before the row goes and
// nothing is deleted when that fails.
func (s *Service) DeleteAccount(ctx context.Context, userID string) (*user.User, error) {
	if err := s.revokeAll(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to revoke tokens, account kept: %w", err)
	}

	deleted, err := s.userRepo.Delete(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Moves the marker past any login that raced the delete
	if err := s.revokeAll(ctx, userID); err != nil {
		s.logger.Error("failed to re-revoke tokens after account deletion", "user_id", userID, "error", err)
	}

	return deleted, nil
}

// revokeAll blocks every access and refresh token issued to userID so far
func (s *Service) revokeAll(ctx context.Context, userID string) error {
	if s.revoker != nil {
		if err := s.revoker.RevokeAccessTokens(ctx, userID, max(s.accessTokenDuration, s.refreshTokenDuration)); err != nil {
			return err
		}
	}
	return s.authRepo.RevokeAllUserTokens(ctx, userID)
}

// generateTokens issues an access token and a stored refresh token.
// Refresh tokens are opaque random strings; only their hash reaches Redis.
func (s *Service) generateTokens(ctx context.Context, userID string, email string) (*AuthTokens, error) {
	access, err := s.tokenService.CreateToken(userID, email, s.accessTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	refresh := rand.Text()
	if err := s.authRepo.StoreRefreshToken(ctx, userID, refresh, time.Now().Add(s.refreshTokenDuration)); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &AuthTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTokenDuration / time.Second),
	}, nil
}
