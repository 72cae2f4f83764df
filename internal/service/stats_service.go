package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/priyanshu3301/civic-report-backend/internal/domain"
)

type statsService struct {
	repo   StatsRepository
	cache  StatsCache
	ttl    time.Duration
	logger *slog.Logger
}

func NewStatsService(repo StatsRepository, cache StatsCache, ttl time.Duration, logger *slog.Logger) StatsService {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &statsService{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// Stats serves dashboard aggregates from the cache when fresh. Cache
// failures degrade to the database, they never fail the request.
func (s *statsService) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn("stats cache read failed", slog.Any("error", err))
		} else if cached != nil {
			return cached, nil
		}
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, stats, s.ttl); err != nil {
			s.logger.Warn("stats cache write failed", slog.Any("error", err))
		}
	}
	return stats, nil
}
