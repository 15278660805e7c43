package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

// RedisStore persists session records as JSON values with a native TTL, so
// expiration is enforced by Redis itself and DeleteExpired is a no-op.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a session store backed by the given Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, errors.Join(ErrStoreFault, err)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, errors.Join(ErrInvalidSession, err)
	}
	if sess.IsExpired() {
		_ = s.Destroy(ctx, token)
		return nil, ErrSessionExpired
	}
	if sess.Flash == nil {
		sess.Flash = make(map[string][]string)
	}
	if sess.Data == nil {
		sess.Data = make(map[string]any)
	}

	return &sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	if sess == nil || sess.Token == "" {
		return ErrInvalidSession
	}

	raw, err := json.Marshal(sess)
	if err != nil {
		return errors.Join(ErrInvalidSession, err)
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return ErrSessionExpired
	}

	if err := s.client.Set(ctx, redisKeyPrefix+sess.Token, raw, ttl).Err(); err != nil {
		return errors.Join(ErrStoreFault, err)
	}
	return nil
}

func (s *RedisStore) Touch(ctx context.Context, token string, lastActivity, expiresAt time.Time) error {
	key := redisKeyPrefix + token

	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrSessionNotFound
		}
		return errors.Join(ErrStoreFault, err)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return errors.Join(ErrInvalidSession, err)
	}
	sess.LastActivityAt = lastActivity
	sess.ExpiresAt = expiresAt

	updated, err := json.Marshal(&sess)
	if err != nil {
		return errors.Join(ErrInvalidSession, err)
	}

	if err := s.client.Set(ctx, key, updated, time.Until(expiresAt)).Err(); err != nil {
		return errors.Join(ErrStoreFault, err)
	}
	return nil
}

func (s *RedisStore) Destroy(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+token).Err(); err != nil {
		return errors.Join(ErrStoreFault, err)
	}
	return nil
}

// DeleteExpired is a no-op: Redis evicts keys via their TTL.
func (s *RedisStore) DeleteExpired(ctx context.Context) error {
	return nil
}

var _ Store = (*RedisStore)(nil)
