package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/priyanshu3301/civic-report-backend/internal/domain"
)

// StatsCache keeps the admin dashboard aggregates for a short TTL so the
// dashboard does not hammer the reports table. A nil result with nil error
// means cache miss.
type StatsCache struct {
	client *goredis.Client
	key    string
}

func NewStatsCache(r *Redis) *StatsCache {
	return &StatsCache{
		client: r.Client,
		key:    "reports:dashboard_stats",
	}
}

func (c *StatsCache) Get(ctx context.Context) (*domain.DashboardStats, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var stats domain.DashboardStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *StatsCache) Set(ctx context.Context, stats *domain.DashboardStats, ttl time.Duration) error {
	b, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, b, ttl).Err()
}
