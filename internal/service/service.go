package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/priyanshu3301/civic-report-backend/internal/domain"
	"github.com/priyanshu3301/civic-report-backend/internal/media"
)

//go:generate mockgen -source=service.go -destination=mocks/mock.go

// ReportRepository is the persistence contract the lifecycle engine needs.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Report, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReportStatus, notes string, updatedBy *uuid.UUID) error
	Reject(ctx context.Context, id uuid.UUID, reason string, updatedBy *uuid.UUID) error
	ToggleUpvote(ctx context.Context, id, userID uuid.UUID) (domain.ToggleOutcome, error)
	SetSeverity(ctx context.Context, id uuid.UUID, severity domain.Severity, status domain.ReportStatus, notes string) error
	AnonymizeUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// MediaStore uploads and deletes binary assets. Delete is best-effort.
type MediaStore interface {
	Upload(ctx context.Context, up media.Upload) (media.Asset, error)
	Delete(ctx context.Context, providerID string, mediaType domain.MediaType) bool
}

// SpatialIndex answers proximity queries over report locations.
type SpatialIndex interface {
	FindNearby(ctx context.Context, req domain.NearbyRequest) ([]domain.ReportNearby, error)
}

// SpatialIndexMirror receives every report write so an in-memory spatial
// index stays current after its startup hydration. Nil when the index is
// backed by the database directly.
type SpatialIndexMirror interface {
	Upsert(report domain.ReportNearby)
}

type QueryRepository interface {
	List(ctx context.Context, req domain.ListReportsRequest) ([]domain.Report, int64, error)
}

type StatsRepository interface {
	Stats(ctx context.Context) (*domain.DashboardStats, error)
}

type StatsCache interface {
	Get(ctx context.Context) (*domain.DashboardStats, error)
	Set(ctx context.Context, stats *domain.DashboardStats, ttl time.Duration) error
}

type ReportService interface {
	Create(ctx context.Context, req domain.CreateReportRequest, files []media.Upload, actingUser *uuid.UUID) (*domain.Report, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Report, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReportStatus, notes string, adminID uuid.UUID) (*domain.Report, error)
	Reject(ctx context.Context, id uuid.UUID, reason string, adminID uuid.UUID) (*domain.Report, error)
	ToggleUpvote(ctx context.Context, id, userID uuid.UUID) (domain.UpvoteResult, error)
	AnonymizeUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type NearbyService interface {
	FindNearby(ctx context.Context, req domain.NearbyRequest) (domain.NearbyResponse, error)
}

type QueryService interface {
	List(ctx context.Context, req domain.ListReportsRequest) (domain.ListReportsResponse, error)
}

type StatsService interface {
	Stats(ctx context.Context) (*domain.DashboardStats, error)
}

type Service struct {
	ReportService ReportService
	NearbyService NearbyService
	QueryService  QueryService
	StatsService  StatsService
}

func NewService(
	reportService ReportService,
	nearbyService NearbyService,
	queryService QueryService,
	statsService StatsService,
) *Service {
	return &Service{
		ReportService: reportService,
		NearbyService: nearbyService,
		QueryService:  queryService,
		StatsService:  statsService,
	}
}
