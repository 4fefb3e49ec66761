package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"hospitalms/web/internal/models"
)

var ErrNoSession = errors.New("session not found")

// Store persists session records. Handlers never touch it directly; the
// Manager owns the serialization boundary so storage failures stay
// unit-testable apart from any view code.
type Store interface {
	Save(ctx context.Context, session models.Session) error
	Get(ctx context.Context, id string) (models.Session, error)
	Delete(ctx context.Context, id string) error
	Touch(ctx context.Context, session models.Session) error
	EnforceLimit(ctx context.Context, userID int64, max int) error
	SweepIndexes(ctx context.Context) (int, error)
}

const (
	sessionKeyPrefix = "sessions:"
	userIndexPrefix  = "user_sessions:"
)

// RedisStore keeps one JSON record per session with a TTL, plus a per-user
// ZSET scored by last-seen time for session-limit eviction.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func userIndexKey(userID int64) string {
	return fmt.Sprintf("%s%d", userIndexPrefix, userID)
}

func (s *RedisStore) Save(ctx context.Context, session models.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	if err := s.client.Set(ctx, sessionKey(session.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	err = s.client.ZAdd(ctx, userIndexKey(session.User.UserID), redis.Z{
		Score:  float64(session.LastSeenAt.Unix()),
		Member: session.ID,
	}).Err()
	if err != nil {
		return fmt.Errorf("index session: %w", err)
	}
	return nil
}

// Get loads a session. Corrupt payloads, including the literal strings
// "undefined" and "null" that a broken writer can leave behind, are deleted
// and reported as absent rather than surfaced as parse errors.
func (s *RedisStore) Get(ctx context.Context, id string) (models.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Session{}, ErrNoSession
		}
		return models.Session{}, fmt.Errorf("load session: %w", err)
	}

	if raw == "" || raw == "undefined" || raw == "null" {
		_ = s.client.Del(ctx, sessionKey(id)).Err()
		return models.Session{}, ErrNoSession
	}

	var session models.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		_ = s.client.Del(ctx, sessionKey(id)).Err()
		return models.Session{}, ErrNoSession
	}
	return session, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	session, err := s.Get(ctx, id)
	if err == nil {
		_ = s.client.ZRem(ctx, userIndexKey(session.User.UserID), id).Err()
	}
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *RedisStore) Touch(ctx context.Context, session models.Session) error {
	return s.client.ZAdd(ctx, userIndexKey(session.User.UserID), redis.Z{
		Score:  float64(time.Now().Unix()),
		Member: session.ID,
	}).Err()
}

// EnforceLimit evicts the least recently seen sessions beyond max.
func (s *RedisStore) EnforceLimit(ctx context.Context, userID int64, max int) error {
	key := userIndexKey(userID)
	count, err := s.client.ZCard(ctx, key).Result()
	if err != nil {
		return err
	}
	if count <= int64(max) {
		return nil
	}

	oldest, err := s.client.ZRange(ctx, key, 0, count-int64(max)-1).Result()
	if err != nil {
		return err
	}
	for _, id := range oldest {
		_ = s.client.Del(ctx, sessionKey(id)).Err()
	}
	return s.client.ZRem(ctx, key, toMembers(oldest)...).Err()
}

// SweepIndexes drops index members whose session record has expired. The
// records themselves expire via TTL; the ZSETs need this sweep.
func (s *RedisStore) SweepIndexes(ctx context.Context) (int, error) {
	removed := 0
	iter := s.client.Scan(ctx, 0, userIndexPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		indexKey := iter.Val()
		ids, err := s.client.ZRange(ctx, indexKey, 0, -1).Result()
		if err != nil {
			return removed, err
		}
		for _, id := range ids {
			exists, err := s.client.Exists(ctx, sessionKey(id)).Result()
			if err != nil {
				return removed, err
			}
			if exists == 0 {
				if err := s.client.ZRem(ctx, indexKey, id).Err(); err != nil {
					return removed, err
				}
				removed++
			}
		}
	}
	return removed, iter.Err()
}

func toMembers(ids []string) []interface{} {
	members := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		members = append(members, id)
	}
	return members
}
