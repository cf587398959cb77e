package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tradewindhq/planboard/internal/config"
	"github.com/tradewindhq/planboard/internal/engine"
)

const (
	reportKeyPrefix     = "audit:report"
	reportScanBatchSize = 100
)

// ReportCache caches computed audit reports. Reports are cheap to recompute,
// so a short TTL plus invalidation on variance writes is enough.
type ReportCache interface {
	Get(ctx context.Context, sku string, shippingOverride *int) (*engine.Report, bool, error)
	Set(ctx context.Context, sku string, shippingOverride *int, report *engine.Report) error
	InvalidateSKU(ctx context.Context, sku string) error
}

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopReportCache struct{}

// NewReportCache returns a redis-backed cache when enabled, otherwise a noop.
func NewReportCache(cfg config.CacheConfig) (ReportCache, error) {
	if !cfg.Enabled {
		return &noopReportCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisReportCache{client: client, ttl: ttl}, nil
}

func NewNoopReportCache() ReportCache {
	return &noopReportCache{}
}

func (c *redisReportCache) Get(ctx context.Context, sku string, shippingOverride *int) (*engine.Report, bool, error) {
	payload, err := c.client.Get(ctx, buildReportKey(sku, shippingOverride)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var report engine.Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, false, fmt.Errorf("decode cached report: %w", err)
	}
	return &report, true, nil
}

func (c *redisReportCache) Set(ctx context.Context, sku string, shippingOverride *int, report *engine.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := c.client.Set(ctx, buildReportKey(sku, shippingOverride), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisReportCache) InvalidateSKU(ctx context.Context, sku string) error {
	return deleteKeysWithPrefix(ctx, c.client, fmt.Sprintf("%s:%s:", reportKeyPrefix, sku), reportScanBatchSize)
}

func buildReportKey(sku string, shippingOverride *int) string {
	override := "default"
	if shippingOverride != nil {
		override = fmt.Sprintf("%d", *shippingOverride)
	}
	return fmt.Sprintf("%s:%s:%s", reportKeyPrefix, sku, override)
}

func (noopReportCache) Get(context.Context, string, *int) (*engine.Report, bool, error) {
	return nil, false, nil
}

func (noopReportCache) Set(context.Context, string, *int, *engine.Report) error { return nil }

func (noopReportCache) InvalidateSKU(context.Context, string) error { return nil }
