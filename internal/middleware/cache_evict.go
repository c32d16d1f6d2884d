package middleware

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/vehicle-seat-reservation/internal/config"
)

// keyScanner is the slice of *redis.Client used to drop cached responses.
type keyScanner interface {
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// EvictCache drops every response stored by ResponseCache once the wrapped
// write succeeds (2xx).  Mount it on the routes that change cached
// resources so readers never see a layout older than the last write.
func EvictCache(cfg config.CacheConfig, rdb *redis.Client, log logrus.FieldLogger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	return evictCache(cfg.Prefix, rdb, log)
}

func evictCache(prefix string, store keyScanner, log logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := next(c); err != nil {
				return err
			}
			if status := c.Response().Status; status < 200 || status >= 300 {
				return nil
			}
			ctx := context.WithoutCancel(c.Request().Context())
			if n, err := flushPrefix(ctx, store, prefix); err != nil {
				log.WithError(err).WithField("prefix", prefix).Warn("cache: eviction failed")
			} else if n > 0 {
				log.WithFields(logrus.Fields{"prefix": prefix, "keys": n}).Debug("cache: evicted")
			}
			return nil
		}
	}
}

// flushPrefix deletes all keys under prefix and returns how many it found.
func flushPrefix(ctx context.Context, store keyScanner, prefix string) (int, error) {
	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := store.Scan(ctx, cursor, prefix+":*", 100).Result()
		if err != nil {
			return total, err
		}
		if len(keys) > 0 {
			if err := store.Del(ctx, keys...).Err(); err != nil {
				return total, err
			}
			total += len(keys)
		}
		if next == 0 {
			return total, nil
		}
		cursor = next
	}
}
