package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ClickLog is the append side of the per-link time-ordered click
// collection. AddIfAbsent reports whether the event was stored; a second
// event at the same timestamp for the same link is dropped, not merged.
type ClickLog interface {
	AddIfAbsent(ctx context.Context, hostname, key string, timestamp int64, event []byte) (bool, error)
}

// ClickSeriesKey is the Redis sorted-set key holding clicks for a link.
func ClickSeriesKey(hostname, key string) string {
	return hostname + ":clicks:" + key
}

// clickAddScript inserts the event only when no entry is already scored at
// this timestamp. Members carry distinct payloads, so ZADD NX alone cannot
// arbitrate between two events in the same millisecond; the count and the
// insert must happen in one atomic step.
var clickAddScript = redis.NewScript(`
	if redis.call("zcount", KEYS[1], ARGV[1], ARGV[1]) > 0 then
		return 0
	end
	return redis.call("zadd", KEYS[1], "NX", ARGV[1], ARGV[2])
`)

type redisClickLog struct {
	rdb *redis.Client
}

// NewRedisClickLog returns a ClickLog backed by Redis sorted sets.
func NewRedisClickLog(rdb *redis.Client) ClickLog {
	return &redisClickLog{rdb: rdb}
}

func (l *redisClickLog) AddIfAbsent(ctx context.Context, hostname, key string, timestamp int64, event []byte) (bool, error) {
	series := ClickSeriesKey(hostname, key)

	added, err := clickAddScript.Run(ctx, l.rdb, []string{series}, timestamp, event).Int64()
	if err != nil {
		return false, fmt.Errorf("click log add: %w", err)
	}
	return added > 0, nil
}
