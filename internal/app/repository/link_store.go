package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/stubhq/stublink/internal/app/model"
)

var (
	// ErrLinkNotFound signals that no record exists for (hostname, key).
	ErrLinkNotFound = errors.New("link not found")
)

// LinkStore is the read side of the key-value store that the management
// layer populates.
type LinkStore interface {
	Get(ctx context.Context, hostname, key string) (*model.LinkRecord, error)
}

// LinkStoreKey is the Redis key holding the record for (hostname, key).
func LinkStoreKey(hostname, key string) string {
	return hostname + ":" + key
}

type redisLinkStore struct {
	rdb *redis.Client
}

// NewRedisLinkStore returns a LinkStore reading JSON records from Redis.
func NewRedisLinkStore(rdb *redis.Client) LinkStore {
	return &redisLinkStore{rdb: rdb}
}

func (s *redisLinkStore) Get(ctx context.Context, hostname, key string) (*model.LinkRecord, error) {
	raw, err := s.rdb.Get(ctx, LinkStoreKey(hostname, key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("link store get: %w", err)
	}

	var record model.LinkRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, fmt.Errorf("link store decode: %w", err)
	}
	if record.URL == "" {
		// A record without a destination is unusable; treat as absent.
		return nil, ErrLinkNotFound
	}
	return &record, nil
}
