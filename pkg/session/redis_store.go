package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	userIndexPrefix  = "user_sessions:"
)

// RedisStore persists sessions in Redis. Keys expire with the session so
// no sweeper is needed; a per-user set tracks tokens for bulk deletion.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Create(ctx context.Context, session *Session) error {
	if session == nil || session.Token == "" {
		return ErrInvalidSession
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return ErrSessionExpired
	}

	data, err := json.Marshal(session)
	if err != nil {
		return errors.Join(ErrInvalidSession, err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKeyPrefix+session.Token, data, ttl)
	if session.UserID != nil {
		userKey := userIndexPrefix + session.UserID.String()
		pipe.SAdd(ctx, userKey, session.Token)
		// The index lives a little longer than the session so a racing
		// read never misses a live token.
		pipe.Expire(ctx, userKey, ttl+time.Minute)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, errors.Join(ErrInvalidSession, err)
	}

	if session.IsExpired() {
		_ = s.Delete(ctx, token)
		return nil, ErrSessionExpired
	}

	return &session, nil
}

func (s *RedisStore) Update(ctx context.Context, session *Session) error {
	if session == nil || session.Token == "" {
		return ErrInvalidSession
	}

	exists, err := s.client.Exists(ctx, sessionKeyPrefix+session.Token).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrSessionNotFound
	}

	return s.Create(ctx, session)
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	// Read the raw record instead of going through Get: Get deletes
	// expired sessions, which would recurse back here.
	if data, err := s.client.Get(ctx, sessionKeyPrefix+token).Bytes(); err == nil {
		var session Session
		if json.Unmarshal(data, &session) == nil && session.UserID != nil {
			_ = s.client.SRem(ctx, userIndexPrefix+session.UserID.String(), token).Err()
		}
	}

	return s.client.Del(ctx, sessionKeyPrefix+token).Err()
}

func (s *RedisStore) DeleteByUserID(ctx context.Context, userID string) error {
	userKey := userIndexPrefix + userID

	tokens, err := s.client.SMembers(ctx, userKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}

	pipe := s.client.TxPipeline()
	for _, token := range tokens {
		pipe.Del(ctx, sessionKeyPrefix+token)
	}
	pipe.Del(ctx, userKey)
	_, err = pipe.Exec(ctx)
	return err
}
