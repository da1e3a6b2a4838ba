package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"socialnet/internal/model"
)

const sessionKeyPrefix = "sessions:"

// RedisLedger keeps one Redis list per user. Appending and trimming happen in a
// single MULTI block, so concurrent logins cannot lose each other's tokens.
type RedisLedger struct {
	rdb         *redis.Client
	jwt         *JWTService
	maxSessions int
}

// Ensure RedisLedger implements Ledger
var _ Ledger = (*RedisLedger)(nil)

// NewRedisLedger creates a Redis-backed session ledger.
func NewRedisLedger(rdb *redis.Client, jwt *JWTService, maxSessions int) *RedisLedger {
	if maxSessions < 1 {
		maxSessions = DefaultMaxSessions
	}
	return &RedisLedger{rdb: rdb, jwt: jwt, maxSessions: maxSessions}
}

func (l *RedisLedger) key(userID uuid.UUID) string {
	return sessionKeyPrefix + userID.String()
}

// Issue signs a token and pushes it onto the user's session list.
func (l *RedisLedger) Issue(ctx context.Context, user *model.User) (string, error) {
	token, err := l.jwt.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	key := l.key(user.ID)
	pipe := l.rdb.TxPipeline()
	pipe.RPush(ctx, key, token)
	pipe.LTrim(ctx, key, int64(-l.maxSessions), -1)
	pipe.Expire(ctx, key, l.jwt.TTL())
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("record session: %w", err)
	}
	return token, nil
}

// Revoke removes the exact token string.
func (l *RedisLedger) Revoke(ctx context.Context, userID uuid.UUID, token string) error {
	if err := l.rdb.LRem(ctx, l.key(userID), 0, token).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// RevokeAll drops the whole session list.
func (l *RedisLedger) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	if err := l.rdb.Del(ctx, l.key(userID)).Err(); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}

// IsValid checks membership of token in the session list.
func (l *RedisLedger) IsValid(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	tokens, err := l.Tokens(ctx, userID)
	if err != nil {
		return false, err
	}
	return model.StringList(tokens).Contains(token), nil
}

// Tokens returns the session list, oldest first.
func (l *RedisLedger) Tokens(ctx context.Context, userID uuid.UUID) ([]string, error) {
	tokens, err := l.rdb.LRange(ctx, l.key(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return tokens, nil
}
