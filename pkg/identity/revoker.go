package identity

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionRevoker tracks sessions that were logged out before they expired.
type SessionRevoker interface {
	Revoke(ctx context.Context, session Session) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

// RedisRevoker stores revoked session ids in redis until the token would have expired anyway.
type RedisRevoker struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisRevoker constructs a redis backed revocation list.
func NewRedisRevoker(client *redis.Client) *RedisRevoker {
	return &RedisRevoker{client: client, now: time.Now}
}

func revokedKey(sessionID string) string {
	return "session:revoked:" + sessionID
}

// Revoke marks the session as logged out.
func (r *RedisRevoker) Revoke(ctx context.Context, session Session) error {
	if r == nil || r.client == nil || strings.TrimSpace(session.ID) == "" {
		return nil
	}
	ttl := session.Remaining(r.now())
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedKey(session.ID), "1", ttl).Err()
}

// IsRevoked reports whether the session was revoked.
func (r *RedisRevoker) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	if r == nil || r.client == nil || strings.TrimSpace(sessionID) == "" {
		return false, nil
	}
	count, err := r.client.Exists(ctx, revokedKey(sessionID)).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
