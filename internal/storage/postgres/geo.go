package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/priyanshu3301/civic-report-backend/internal/domain"
	"github.com/priyanshu3301/civic-report-backend/pkg/e"
)

type GeoRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewGeoRepo(pool *pgxpool.Pool, logger *slog.Logger) *GeoRepo {
	return &GeoRepo{pool: pool, logger: logger}
}

// FindNearby returns reports within the radius ordered nearest first.
// Inputs are assumed clamped and validated by the caller. geo_point is
// geometry(Point, 4326); the geography cast makes ST_DWithin and
// ST_Distance operate in meters.
func (p *GeoRepo) FindNearby(ctx context.Context, req domain.NearbyRequest) ([]domain.ReportNearby, error) {
	const op = "postgres.Geo.FindNearby"

	query := `
		SELECT id, title, category, severity, status, location_name,
			   ST_Y(geo_point) AS lat,
			   ST_X(geo_point) AS lng,
			   upvotes, created_at,
			   ST_Distance(
			     geo_point::geography,
			     ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography
			   ) AS distance_m
		FROM reports
		WHERE ST_DWithin(
			geo_point::geography,
			ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography,
			$3
		)
	`
	args := []any{req.Lng, req.Lat, req.RadiusM}

	if req.Status != "" {
		args = append(args, req.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if req.Category != "" {
		args = append(args, req.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}

	args = append(args, req.Limit)
	query += fmt.Sprintf(" ORDER BY distance_m, created_at DESC LIMIT $%d", len(args))

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	items := make([]domain.ReportNearby, 0, req.Limit)
	for rows.Next() {
		var n domain.ReportNearby
		if err := rows.Scan(
			&n.ID,
			&n.Title,
			&n.Category,
			&n.Severity,
			&n.Status,
			&n.LocationName,
			&n.Lat,
			&n.Lng,
			&n.Upvotes,
			&n.CreatedAt,
			&n.DistanceM,
		); err != nil {
			p.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		p.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return items, nil
}
