package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/AnshRaj112/agora-backend/internal/database"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionDuration is 7 days
const SessionDuration = 7 * 24 * time.Hour

// SessionStore keeps opaque bearer tokens in Redis. Each owner holds at most one
// live session: token -> owner under KeyPrefix, owner -> token under OwnerPrefix.
type SessionStore struct {
	KeyPrefix   string
	OwnerPrefix string
	TTL         time.Duration
}

var (
	UserSessions  = SessionStore{KeyPrefix: "session:", OwnerPrefix: "user_session:", TTL: SessionDuration}
	AdminSessions = SessionStore{KeyPrefix: "admin_session:", OwnerPrefix: "admin_to_session:", TTL: SessionDuration}
)

// Create issues a new token for owner, replacing any previous session. The
// session expires after TTL without use; every authenticated request slides it.
func (s SessionStore) Create(ctx context.Context, owner uuid.UUID) (string, error) {
	_ = s.InvalidateOwner(ctx, owner)

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := base64.URLEncoding.EncodeToString(tokenBytes)

	_, err := database.RedisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.KeyPrefix+token, owner.String(), s.TTL)
		pipe.Set(ctx, s.OwnerPrefix+owner.String(), token, s.TTL)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Validate returns the owner of token. A missing or expired token is not an error.
func (s SessionStore) Validate(ctx context.Context, token string) (uuid.UUID, bool, error) {
	if token == "" || database.RedisClient == nil {
		return uuid.Nil, false, nil
	}

	ownerStr, err := database.RedisClient.Get(ctx, s.KeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}

	owner, err := uuid.Parse(ownerStr)
	if err != nil {
		return uuid.Nil, false, err
	}
	return owner, true, nil
}

// Refresh slides both keys of a validated session forward by the full TTL.
func (s SessionStore) Refresh(ctx context.Context, token string, owner uuid.UUID) error {
	if token == "" || database.RedisClient == nil {
		return nil
	}
	_, err := database.RedisClient.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Expire(ctx, s.KeyPrefix+token, s.TTL)
		pipe.Expire(ctx, s.OwnerPrefix+owner.String(), s.TTL)
		return nil
	})
	return err
}

// Invalidate removes a single session token.
func (s SessionStore) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	owner, err := database.RedisClient.Get(ctx, s.KeyPrefix+token).Result()
	if err == nil && owner != "" {
		database.RedisClient.Del(ctx, s.OwnerPrefix+owner)
	}
	return database.RedisClient.Del(ctx, s.KeyPrefix+token).Err()
}

// InvalidateOwner drops whatever session owner currently holds.
func (s SessionStore) InvalidateOwner(ctx context.Context, owner uuid.UUID) error {
	ownerKey := s.OwnerPrefix + owner.String()
	token, err := database.RedisClient.Get(ctx, ownerKey).Result()
	if err == nil && token != "" {
		database.RedisClient.Del(ctx, s.KeyPrefix+token)
	}
	return database.RedisClient.Del(ctx, ownerKey).Err()
}
