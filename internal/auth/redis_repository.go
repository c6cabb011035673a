package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// fallbackRevokeTTL keeps a revocation marker alive when the token's own
// TTL cannot be read
const fallbackRevokeTTL = 7 * 24 * time.Hour

// Key layout:
//
//	refresh_token:<sha256>          hash {user_id, expires_at, created_at}
//	refresh_token:revoked:<sha256>  "1", same TTL as the token
//	user_tokens:<user id>           set of token hashes
//	user_revoked:<user id>          unix millis of the last revocation
func refreshTokenKey(tokenHash string) string { return "refresh_token:" + tokenHash }
func revokedTokenKey(tokenHash string) string { return "refresh_token:revoked:" + tokenHash }
func userTokensKey(userID string) string      { return "user_tokens:" + userID }
func userRevokedKey(userID string) string     { return "user_revoked:" + userID }

// RedisRepository stores refresh tokens and access revocations in Redis.
// Only token hashes are ever written.
type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func (r *RedisRepository) StoreRefreshToken(ctx context.Context, userID string, token string, expiresAt time.Time) error {
	if !expiresAt.After(time.Now()) {
		return fmt.Errorf("token expiration time is in the past")
	}

	tokenHash := hashToken(token)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		key := refreshTokenKey(tokenHash)
		pipe.HSet(ctx, key,
			"user_id", userID,
			"expires_at", expiresAt.Unix(),
			"created_at", time.Now().UnixMilli(),
		)
		pipe.ExpireAt(ctx, key, expiresAt)

		// The set lives as long as the newest token in it
		pipe.SAdd(ctx, userTokensKey(userID), tokenHash)
		pipe.ExpireAt(ctx, userTokensKey(userID), expiresAt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

func (r *RedisRepository) GetRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	tokenHash := hashToken(token)

	var (
		revoked *redis.IntCmd
		fields  *redis.MapStringStringCmd
	)
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		revoked = pipe.Exists(ctx, revokedTokenKey(tokenHash))
		fields = pipe.HGetAll(ctx, refreshTokenKey(tokenHash))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	if revoked.Val() > 0 {
		return nil, ErrRefreshTokenRevoked
	}

	data := fields.Val()
	if len(data) == 0 {
		return nil, ErrRefreshTokenNotFound
	}

	return parseRefreshToken(tokenHash, data)
}

func parseRefreshToken(tokenHash string, data map[string]string) (*RefreshToken, error) {
	userID := data["user_id"]
	if userID == "" {
		return nil, ErrInvalidToken
	}

	expiresAt, err := strconv.ParseInt(data["expires_at"], 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}
	rt := &RefreshToken{
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: time.Unix(expiresAt, 0),
	}
	if rt.IsExpired() {
		return nil, ErrRefreshTokenExpired
	}

	if createdAt, err := strconv.ParseInt(data["created_at"], 10, 64); err == nil {
		rt.CreatedAt = time.UnixMilli(createdAt)
	}
	return rt, nil
}

func (r *RedisRepository) RevokeRefreshToken(ctx context.Context, token string) error {
	tokenHash := hashToken(token)

	ttl, err := r.client.PTTL(ctx, refreshTokenKey(tokenHash)).Result()
	if err != nil {
		return fmt.Errorf("failed to read token TTL: %w", err)
	}
	// go-redis reports a missing key as a raw -2
	if ttl == -2 {
		return ErrRefreshTokenNotFound
	}

	if err := r.client.Set(ctx, revokedTokenKey(tokenHash), "1", revokeTTL(ttl)).Err(); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAllUserTokens revokes every refresh token issued to userID and
// forgets the set
func (r *RedisRepository) RevokeAllUserTokens(ctx context.Context, userID string) error {
	hashes, err := r.client.SMembers(ctx, userTokensKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("failed to get user tokens: %w", err)
	}
	if len(hashes) == 0 {
		return nil
	}

	ttls := make([]*redis.DurationCmd, len(hashes))
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, h := range hashes {
			ttls[i] = pipe.PTTL(ctx, refreshTokenKey(h))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to read token TTLs: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, h := range hashes {
			pipe.Set(ctx, revokedTokenKey(h), "1", revokeTTL(ttls[i].Val()))
		}
		pipe.Del(ctx, userTokensKey(userID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to revoke all user tokens: %w", err)
	}
	return nil
}

// RevokeAccessTokens rejects every token issued to userID up to now. The
// marker must outlive the longest-lived token it has to block.
func (r *RedisRepository) RevokeAccessTokens(ctx context.Context, userID string, ttl time.Duration) error {
	if err := r.client.Set(ctx, userRevokedKey(userID), time.Now().UnixMilli(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke access tokens: %w", err)
	}
	return nil
}

// AccessTokenRevoked reports whether a token issued at issuedAt predates the
// last revocation of userID. Both sides are compared in milliseconds, so an
// account that reuses the id right after a deletion keeps its own tokens.
func (r *RedisRepository) AccessTokenRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error) {
	revokedAt, err := r.client.Get(ctx, userRevokedKey(userID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check access token revocation: %w", err)
	}
	return issuedAt.UnixMilli() <= revokedAt, nil
}

// revokeTTL is the remaining token lifetime, or the fallback when Redis
// reports none (-1) or the key is already gone
func revokeTTL(ttl time.Duration) time.Duration {
	if ttl > 0 {
		return ttl
	}
	return fallbackRevokeTTL
}
