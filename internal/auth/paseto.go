package auth

import (
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const tokenIssuer = "todo-api"

// pasetoImplicit binds tokens to their purpose. A v4.local token minted with
// the same key for anything else will not decrypt as an access token.
var pasetoImplicit = []byte("todo-api:access")

// TokenClaims represents the claims carried by an access token
type TokenClaims struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// PasetoService issues v4.local tokens (XChaCha20-Poly1305 + BLAKE2b)
type PasetoService struct {
	key    paseto.V4SymmetricKey
	parser paseto.Parser
}

func NewPasetoService(symmetricKey []byte) (*PasetoService, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("symmetric key must be exactly 32 bytes, got %d", len(symmetricKey))
	}

	key, err := paseto.V4SymmetricKeyFromBytes(symmetricKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create symmetric key: %w", err)
	}

	// Expiry is checked in VerifyToken so it can be told apart from tampering
	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.IssuedBy(tokenIssuer))

	return &PasetoService{key: key, parser: parser}, nil
}

func (s *PasetoService) CreateToken(userID string, email string, duration time.Duration) (string, error) {
	now := time.Now()

	token := paseto.NewToken()
	token.SetJti(uuid.NewString())
	token.SetIssuer(tokenIssuer)
	token.SetSubject(userID)
	// SetIssuedAt truncates to seconds; revocation is checked per millisecond
	token.SetString("iat", now.UTC().Format(time.RFC3339Nano))
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(duration))
	token.SetString("email", email)

	return token.V4Encrypt(s.key, pasetoImplicit), nil
}

func (s *PasetoService) VerifyToken(tokenStr string) (*TokenClaims, error) {
	token, err := s.parser.ParseV4Local(s.key, tokenStr, pasetoImplicit)
	if err != nil {
		return nil, ErrInvalidToken
	}

	expiresAt, err := token.GetExpiration()
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !time.Now().Before(expiresAt) {
		return nil, ErrExpiredToken
	}

	claims := &TokenClaims{ExpiresAt: expiresAt}

	if claims.UserID, err = token.GetSubject(); err != nil || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	if claims.Email, err = token.GetString("email"); err != nil {
		return nil, ErrInvalidToken
	}
	if claims.IssuedAt, err = token.GetIssuedAt(); err != nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
