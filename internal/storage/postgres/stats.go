package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/priyanshu3301/civic-report-backend/internal/domain"
	"github.com/priyanshu3301/civic-report-backend/pkg/e"
)

const topReportersLimit = 5

type StatsRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewStatsRepo(pool *pgxpool.Pool, logger *slog.Logger) *StatsRepo {
	return &StatsRepo{pool: pool, logger: logger}
}

func (p *StatsRepo) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	const op = "postgres.Stats.Stats"

	stats := &domain.DashboardStats{
		ByStatus:   make(map[domain.ReportStatus]int64),
		ByCategory: make(map[domain.Category]int64),
	}

	const totalsQuery = `SELECT COUNT(*), COALESCE(AVG(upvotes), 0) FROM reports`
	if err := p.pool.QueryRow(ctx, totalsQuery).Scan(&stats.Total, &stats.AvgUpvotes); err != nil {
		p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	const statusQuery = `SELECT status, COUNT(*) FROM reports GROUP BY status`
	rows, err := p.pool.Query(ctx, statusQuery)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()
	for rows.Next() {
		var status domain.ReportStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, e.WrapError(ctx, op, err)
		}
		stats.ByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, e.WrapError(ctx, op, err)
	}

	const categoryQuery = `SELECT category, COUNT(*) FROM reports GROUP BY category`
	rows, err = p.pool.Query(ctx, categoryQuery)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()
	for rows.Next() {
		var category domain.Category
		var count int64
		if err := rows.Scan(&category, &count); err != nil {
			return nil, e.WrapError(ctx, op, err)
		}
		stats.ByCategory[category] = count
	}
	if err := rows.Err(); err != nil {
		return nil, e.WrapError(ctx, op, err)
	}

	const reportersQuery = `
		SELECT reported_by, COUNT(*) AS reports
		FROM reports
		WHERE reported_by IS NOT NULL
		GROUP BY reported_by
		ORDER BY reports DESC, reported_by
		LIMIT $1
	`
	rows, err = p.pool.Query(ctx, reportersQuery, topReportersLimit)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()
	for rows.Next() {
		var rc domain.ReporterCount
		if err := rows.Scan(&rc.UserID, &rc.Reports); err != nil {
			return nil, e.WrapError(ctx, op, err)
		}
		stats.TopReporters = append(stats.TopReporters, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, e.WrapError(ctx, op, err)
	}

	return stats, nil
}
