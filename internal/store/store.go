package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by Load when no state has been persisted yet for a
// key.
var ErrNotFound = errors.New("state not found")

const keyPrefix = "mini-music:user:"

// AnonUserID is the sentinel identity used when no authenticated Telegram
// user is available (the mini-app opened in a plain browser).
const AnonUserID = "anon"

// Store is the persistence gateway: it round-trips the serialized state
// document keyed by user. The state schema and its normalization live in the
// state package; a Store only moves bytes.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// UserKey derives the storage key for a user id, falling back to the
// anonymous sentinel for an empty id.
func UserKey(userID string) string {
	if userID == "" {
		userID = AnonUserID
	}
	return keyPrefix + userID
}

// RedisStore keeps each user's state document under its own key.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, data []byte) error {
	return s.rdb.Set(ctx, key, data, 0).Err()
}
