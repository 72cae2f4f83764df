package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/priyanshu3301/civic-report-backend/internal/domain"
	"github.com/priyanshu3301/civic-report-backend/internal/service"

	mock_service "github.com/priyanshu3301/civic-report-backend/internal/service/mocks"
)

func sampleStats() *domain.DashboardStats {
	return &domain.DashboardStats{
		Total:      42,
		ByStatus:   map[domain.ReportStatus]int64{domain.StatusReported: 30, domain.StatusResolved: 12},
		ByCategory: map[domain.Category]int64{domain.CategorySanitation: 42},
		AvgUpvotes: 3.5,
	}
}

func TestStatsService_CacheHit(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockStatsRepository(ctrl)
	cache := mock_service.NewMockStatsCache(ctrl)
	svc := service.NewStatsService(repo, cache, time.Minute, discardLogger())

	cache.EXPECT().Get(gomock.Any()).Return(sampleStats(), nil).Times(1)

	got, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if got.Total != 42 {
		t.Fatalf("total = %d, want 42", got.Total)
	}
}

func TestStatsService_CacheMissFillsCache(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockStatsRepository(ctrl)
	cache := mock_service.NewMockStatsCache(ctrl)
	svc := service.NewStatsService(repo, cache, time.Minute, discardLogger())

	cache.EXPECT().Get(gomock.Any()).Return(nil, nil).Times(1)
	repo.EXPECT().Stats(gomock.Any()).Return(sampleStats(), nil).Times(1)
	cache.EXPECT().Set(gomock.Any(), gomock.Any(), time.Minute).Return(nil).Times(1)

	got, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if got.AvgUpvotes != 3.5 {
		t.Fatalf("avg upvotes = %v, want 3.5", got.AvgUpvotes)
	}
}

// Cache failures on either side degrade to the database.
func TestStatsService_CacheErrorsDegradeToRepo(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockStatsRepository(ctrl)
	cache := mock_service.NewMockStatsCache(ctrl)
	svc := service.NewStatsService(repo, cache, time.Minute, discardLogger())

	cache.EXPECT().Get(gomock.Any()).Return(nil, errors.New("redis down")).Times(1)
	repo.EXPECT().Stats(gomock.Any()).Return(sampleStats(), nil).Times(1)
	cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down")).Times(1)

	got, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if got.Total != 42 {
		t.Fatalf("total = %d, want 42", got.Total)
	}
}

func TestStatsService_RepoError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockStatsRepository(ctrl)
	cache := mock_service.NewMockStatsCache(ctrl)
	svc := service.NewStatsService(repo, cache, time.Minute, discardLogger())

	cache.EXPECT().Get(gomock.Any()).Return(nil, nil).Times(1)
	repo.EXPECT().Stats(gomock.Any()).Return(nil, errors.New("db down")).Times(1)

	_, err := svc.Stats(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
}
