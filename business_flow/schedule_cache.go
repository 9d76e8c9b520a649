package businessflow

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/fbopoint/feesched/utils"
	"github.com/redis/go-redis/v9"
)

// ScheduleCache caches the assembled fee schedule in Redis under a typed key.
// Every configuration mutation must call Invalidate; the cache is never left
// to expire its way to consistency. A nil client disables caching.
type ScheduleCache struct {
	rc  *redis.Client
	ttl time.Duration
}

// NewScheduleCache creates a schedule cache backed by the given Redis client.
func NewScheduleCache(rc *redis.Client, ttl time.Duration) *ScheduleCache {
	return &ScheduleCache{rc: rc, ttl: ttl}
}

// Get returns the cached schedule, or nil when absent or the cache is disabled.
func (c *ScheduleCache) Get(ctx context.Context) *FeeSchedule {
	if c == nil || c.rc == nil {
		return nil
	}
	bs, err := c.rc.Get(ctx, utils.FeeScheduleCacheKey).Bytes()
	if err != nil || len(bs) == 0 {
		return nil
	}
	var schedule FeeSchedule
	if err := json.Unmarshal(bs, &schedule); err != nil {
		log.Printf("Fee schedule cache decode failed, dropping entry: %v", err)
		_ = c.rc.Del(ctx, utils.FeeScheduleCacheKey).Err()
		return nil
	}
	return &schedule
}

// Set stores the schedule. Failures are logged, not propagated; the cache is
// an optimization, never a source of truth.
func (c *ScheduleCache) Set(ctx context.Context, schedule *FeeSchedule) {
	if c == nil || c.rc == nil || schedule == nil {
		return
	}
	bs, err := json.Marshal(schedule)
	if err != nil {
		log.Printf("Fee schedule cache encode failed: %v", err)
		return
	}
	if err := c.rc.Set(ctx, utils.FeeScheduleCacheKey, bs, c.ttl).Err(); err != nil {
		log.Printf("Fee schedule cache set failed: %v", err)
	}
}

// Invalidate drops the cached schedule. Called at every mutation site.
func (c *ScheduleCache) Invalidate(ctx context.Context) {
	if c == nil || c.rc == nil {
		return
	}
	if err := c.rc.Del(ctx, utils.FeeScheduleCacheKey).Err(); err != nil {
		log.Printf("Fee schedule cache invalidate failed: %v", err)
	}
}
