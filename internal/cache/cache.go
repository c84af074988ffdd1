// Package cache provides a read-through schedule cache backed by Redis with
// singleflight collapsing of concurrent misses. When no Redis address is
// configured every operation degrades to a no-op and callers hit storage
// directly.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/singleflight"

	"github.com/workdeck/planner/internal/logger"
)

// ScheduleCache caches built daily schedules keyed by (user, date).
type ScheduleCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	flight singleflight.Group
}

// New connects to Redis at addr. An empty addr yields a disabled cache that
// still collapses concurrent builds through singleflight.
func New(addr, password string, db int, ttl time.Duration) *ScheduleCache {
	c := &ScheduleCache{ttl: ttl}
	if addr == "" {
		return c
	}
	c.rdb = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := c.rdb.Ping(context.Background()).Err(); err != nil {
		logger.Warn("redis unreachable, schedule cache disabled", "addr", addr, "err", err)
		c.rdb = nil
	}
	return c
}

func scheduleKey(userID, date string) string {
	return fmt.Sprintf("planner:schedule:%s:%s", userID, date)
}

// GetOrBuild returns the cached schedule for (user, date), building and
// storing it on a miss. Concurrent misses for the same key share one build.
func (c *ScheduleCache) GetOrBuild(ctx context.Context, userID, date string, dest any, build func(context.Context) (any, error)) error {
	key := scheduleKey(userID, date)

	if c.rdb != nil {
		raw, err := c.rdb.Get(ctx, key).Bytes()
		if err == nil {
			return json.Unmarshal(raw, dest)
		}
		if err != redis.Nil {
			logger.Warn("schedule cache read failed", "key", key, "err", err)
		}
	}

	val, err, _ := c.flight.Do(key, func() (any, error) {
		return build(ctx)
	})
	if err != nil {
		return err
	}

	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	if c.rdb != nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			logger.Warn("schedule cache write failed", "key", key, "err", err)
		}
	}
	return json.Unmarshal(raw, dest)
}

// Invalidate drops the cached schedule for (user, date). Called whenever
// blocks, allocations, or task statuses change for that day.
func (c *ScheduleCache) Invalidate(ctx context.Context, userID, date string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, scheduleKey(userID, date)).Err(); err != nil {
		logger.Warn("schedule cache invalidation failed", "user", userID, "date", date, "err", err)
	}
}

// Close releases the Redis connection if one was established.
func (c *ScheduleCache) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
