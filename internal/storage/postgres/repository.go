package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/priyanshu3301/civic-report-backend/internal/domain"
)

type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Report, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReportStatus, notes string, updatedBy *uuid.UUID) error
	Reject(ctx context.Context, id uuid.UUID, reason string, updatedBy *uuid.UUID) error
	ToggleUpvote(ctx context.Context, id, userID uuid.UUID) (domain.ToggleOutcome, error)
	SetSeverity(ctx context.Context, id uuid.UUID, severity domain.Severity, status domain.ReportStatus, notes string) error
	AnonymizeUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type GeoRepository interface {
	FindNearby(ctx context.Context, req domain.NearbyRequest) ([]domain.ReportNearby, error)
}

type QueryRepository interface {
	List(ctx context.Context, req domain.ListReportsRequest) ([]domain.Report, int64, error)
}

type StatsRepository interface {
	Stats(ctx context.Context) (*domain.DashboardStats, error)
}

func (p *Postgres) Reports() ReportRepository { return p.Report }
func (p *Postgres) Nearby() GeoRepository     { return p.Geo }
func (p *Postgres) Queries() QueryRepository  { return p.Query }
func (p *Postgres) Stats() StatsRepository    { return p.Stat }
