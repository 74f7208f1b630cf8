package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"secureview/internal/model"
)

// InsightCache keeps rendered department reports for a short time
type InsightCache interface {
	Get(ctx context.Context, department string) (*model.InsightReport, error)
	Set(ctx context.Context, report *model.InsightReport) error
	Invalidate(ctx context.Context, department string) error
}

type insightCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewInsightCache creates a new insight report cache
func NewInsightCache(client *redis.Client, ttl time.Duration) InsightCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &insightCache{
		client: client,
		ttl:    ttl,
	}
}

func insightKey(department string) string {
	return "insights:" + department + ":report"
}

func (c *insightCache) Get(ctx context.Context, department string) (*model.InsightReport, error) {
	data, err := c.client.Get(ctx, insightKey(department)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var report model.InsightReport
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *insightCache) Set(ctx context.Context, report *model.InsightReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, insightKey(report.Department), data, c.ttl).Err()
}

func (c *insightCache) Invalidate(ctx context.Context, department string) error {
	return c.client.Del(ctx, insightKey(department)).Err()
}
