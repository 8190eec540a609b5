package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrTokenNotFound indicates an unknown or expired bearer token.
var ErrTokenNotFound = errors.New("auth: token not found")

// TokenStore keeps opaque bearer tokens in Redis. Tokens expire server-side
// after the configured TTL; logout deletes them eagerly.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenStore constructs a TokenStore.
func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{client: client, ttl: ttl}
}

// Issue creates a fresh token bound to the user.
func (s *TokenStore) Issue(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	err := s.client.Set(ctx, s.key(token), strconv.FormatInt(userID, 10), s.ttl).Err()
	if err != nil {
		return "", fmt.Errorf("auth: store token: %w", err)
	}
	return token, nil
}

// Resolve returns the user bound to the token, refreshing its TTL.
func (s *TokenStore) Resolve(ctx context.Context, token string) (int64, error) {
	value, err := s.client.Get(ctx, s.key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrTokenNotFound
		}
		return 0, fmt.Errorf("auth: resolve token: %w", err)
	}
	userID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("auth: corrupt token payload: %w", err)
	}
	_ = s.client.Expire(ctx, s.key(token), s.ttl).Err()
	return userID, nil
}

// Revoke deletes the token.
func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("auth: revoke token: %w", err)
	}
	return nil
}

func (s *TokenStore) key(token string) string {
	return "auth:token:" + token
}
