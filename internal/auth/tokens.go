package auth

import (
	"fmt"

	"github.com/redmonkez12/todo-api/internal/config"
)

// NewTokenService builds the access token service selected by
// AUTH_TOKEN_TYPE
func NewTokenService(cfg config.AuthConfig) (TokenService, error) {
	switch cfg.TokenType {
	case config.TokenTypePaseto:
		svc, err := NewPasetoService(cfg.PasetoKey)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PASETO service: %w", err)
		}
		return svc, nil
	case config.TokenTypeJWT:
		svc, err := NewJWTService(cfg.JWTSecret)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
		}
		return svc, nil
	default:
		return nil, fmt.Errorf("unknown token type %q", cfg.TokenType)
	}
}
