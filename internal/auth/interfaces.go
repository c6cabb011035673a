package auth

import (
	"context"
	"time"
)

// TokenService defines the interface for token creation and validation.
// Implementations include PasetoService (PASETO v4.local) and JWTService (HS256).
type TokenService interface {
	CreateToken(userID string, email string, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// RefreshTokenRepository defines the interface for refresh token storage
type RefreshTokenRepository interface {
	StoreRefreshToken(ctx context.Context, userID string, token string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, token string) (*RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, token string) error
	RevokeAllUserTokens(ctx context.Context, userID string) error
}

// AccessRevoker blocks access tokens that were issued before an account was
// deleted. User ids can come back after the highest one is deleted, so a
// live token must not carry over to the new account.
type AccessRevoker interface {
	RevokeAccessTokens(ctx context.Context, userID string, ttl time.Duration) error
	AccessTokenRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error)
}
