package sessions

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

// Session binds an opaque session id to a user.
type Session struct {
	ID     string
	UserID uint
}

// Store is the session abstraction every protected endpoint goes through:
// one instance is constructed at process start and passed by reference to
// the handlers that need it.
type Store interface {
	Create(ctx context.Context, userID uint) (*Session, error)
	Get(ctx context.Context, sessionID string) (*Session, error)
	Destroy(ctx context.Context, sessionID string) error
}

const keyPrefix = "session:"

// RedisStore keeps sessions in redis with a sliding-free fixed TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *RedisStore) Create(ctx context.Context, userID uint) (*Session, error) {
	id := uuid.NewString()
	key := keyPrefix + id

	if err := s.client.Set(ctx, key, userID, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &Session{ID: id, UserID: userID}, nil
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}

	value, err := s.client.Get(ctx, keyPrefix+sessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	userID, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt session value: %w", err)
	}

	return &Session{ID: sessionID, UserID: uint(userID)}, nil
}

func (s *RedisStore) Destroy(ctx context.Context, sessionID string) error {
	deleted, err := s.client.Del(ctx, keyPrefix+sessionID).Result()
	if err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	if deleted == 0 {
		return ErrSessionNotFound
	}
	return nil
}
