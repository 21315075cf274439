package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wms/backend/internal/domain/report"
)

// DefaultReportTTL is how long a daily report stays cached
const DefaultReportTTL = 5 * time.Minute

// ReportCache caches daily reports keyed by calendar day (UTC)
type ReportCache interface {
	Get(ctx context.Context, day time.Time) (*report.DailyReport, bool, error)
	Set(ctx context.Context, r report.DailyReport) error
	Invalidate(ctx context.Context, day time.Time) error
}

func reportKey(day time.Time) string {
	return "wms:report:daily:" + day.UTC().Format(time.DateOnly)
}

// RedisReportCache stores reports as JSON strings
type RedisReportCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisReportCache(client redis.UniversalClient, ttl time.Duration) *RedisReportCache {
	if ttl <= 0 {
		ttl = DefaultReportTTL
	}
	return &RedisReportCache{client: client, ttl: ttl}
}

func (c *RedisReportCache) Get(ctx context.Context, day time.Time) (*report.DailyReport, bool, error) {
	raw, err := c.client.Get(ctx, reportKey(day)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached report: %w", err)
	}
	var r report.DailyReport
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached report: %w", err)
	}
	return &r, true, nil
}

func (c *RedisReportCache) Set(ctx context.Context, r report.DailyReport) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := c.client.Set(ctx, reportKey(r.Date), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache report: %w", err)
	}
	return nil
}

func (c *RedisReportCache) Invalidate(ctx context.Context, day time.Time) error {
	if err := c.client.Del(ctx, reportKey(day)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate report: %w", err)
	}
	return nil
}

// InMemoryReportCache is the single-process fallback
type InMemoryReportCache struct {
	entries *ttlMap[report.DailyReport]
	ttl     time.Duration
}

func NewInMemoryReportCache(ttl time.Duration) *InMemoryReportCache {
	if ttl <= 0 {
		ttl = DefaultReportTTL
	}
	return &InMemoryReportCache{entries: newTTLMap[report.DailyReport](), ttl: ttl}
}

func (c *InMemoryReportCache) Get(_ context.Context, day time.Time) (*report.DailyReport, bool, error) {
	r, ok := c.entries.get(reportKey(day))
	if !ok {
		return nil, false, nil
	}
	return &r, true, nil
}

func (c *InMemoryReportCache) Set(_ context.Context, r report.DailyReport) error {
	c.entries.sweep()
	c.entries.set(reportKey(r.Date), r, c.ttl)
	return nil
}

func (c *InMemoryReportCache) Invalidate(_ context.Context, day time.Time) error {
	c.entries.delete(reportKey(day))
	return nil
}

var (
	_ ReportCache = (*RedisReportCache)(nil)
	_ ReportCache = (*InMemoryReportCache)(nil)
)
