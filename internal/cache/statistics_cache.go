// Package cache stores computed read models in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/vehicle-seat-reservation/internal/model"
)

// DefaultStatisticsTTL bounds how stale cached statistics can be.
const DefaultStatisticsTTL = 5 * time.Minute

// StatisticsCache keeps SeatStatistics as JSON under "<prefix>:<key>".
// A nil client turns every call into a miss.
type StatisticsCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewStatisticsCache returns a cache backed by rdb.  rdb may be nil.
func NewStatisticsCache(rdb *redis.Client, ttl time.Duration) *StatisticsCache {
	if ttl <= 0 {
		ttl = DefaultStatisticsTTL
	}
	return &StatisticsCache{rdb: rdb, ttl: ttl, prefix: "stats"}
}

// Get returns the cached statistics for key, ok=false on a miss.
func (c *StatisticsCache) Get(ctx context.Context, key string) (model.SeatStatistics, bool, error) {
	if c == nil || c.rdb == nil {
		return model.SeatStatistics{}, false, nil
	}
	bs, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.SeatStatistics{}, false, nil
	}
	if err != nil {
		return model.SeatStatistics{}, false, fmt.Errorf("redis get: %w", err)
	}
	var stats model.SeatStatistics
	if err := json.Unmarshal(bs, &stats); err != nil {
		// A corrupt entry is a miss; the next Set overwrites it.
		return model.SeatStatistics{}, false, nil
	}
	return stats, true, nil
}

// Set stores stats under key for the configured TTL.
func (c *StatisticsCache) Set(ctx context.Context, key string, stats model.SeatStatistics) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	bs, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal statistics: %w", err)
	}
	if err := c.rdb.SetEx(ctx, c.key(key), bs, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *StatisticsCache) key(k string) string { return c.prefix + ":" + k }
