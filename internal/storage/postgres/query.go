package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/priyanshu3301/civic-report-backend/internal/domain"
	"github.com/priyanshu3301/civic-report-backend/pkg/e"
)

type QueryRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewQueryRepo(pool *pgxpool.Pool, logger *slog.Logger) *QueryRepo {
	return &QueryRepo{pool: pool, logger: logger}
}

// sortColumns whitelists sortable scalar columns; anything else falls back
// to created_at.
var sortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"title":      "title",
	"category":   "category",
	"severity":   "severity",
	"status":     "status",
	"upvotes":    "upvotes",
}

// List pages through reports matching the filter. Items carry media but not
// history. A page past the end yields an empty slice, not an error.
func (p *QueryRepo) List(ctx context.Context, req domain.ListReportsRequest) ([]domain.Report, int64, error) {
	const op = "postgres.Query.List"

	where, args := buildFilter(req.Filter)

	countQuery := "SELECT COUNT(*) FROM reports" + where
	var total int64
	if err := p.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		p.logger.Error("db count failed", slog.String("op", op), slog.Any("error", err))
		return nil, 0, e.WrapError(ctx, op, err)
	}

	column, ok := sortColumns[req.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if req.SortDesc || req.SortBy == "" {
		direction = "DESC"
	}

	offset := (req.Page - 1) * req.Limit
	args = append(args, req.Limit, offset)

	listQuery := fmt.Sprintf(`
		SELECT id, title, description, category, severity, reported_by, location_name,
			   ST_Y(geo_point) AS lat,
			   ST_X(geo_point) AS lng,
			   status, rejection_reason, upvotes, created_at, updated_at
		FROM reports%s
		ORDER BY %s %s, id
		LIMIT $%d OFFSET $%d`,
		where, column, direction, len(args)-1, len(args),
	)

	rows, err := p.pool.Query(ctx, listQuery, args...)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, 0, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	items := make([]domain.Report, 0, req.Limit)
	for rows.Next() {
		var rep domain.Report
		if err := rows.Scan(
			&rep.ID,
			&rep.Title,
			&rep.Description,
			&rep.Category,
			&rep.Severity,
			&rep.ReportedBy,
			&rep.LocationName,
			&rep.Lat,
			&rep.Lng,
			&rep.Status,
			&rep.RejectionReason,
			&rep.Upvotes,
			&rep.CreatedAt,
			&rep.UpdatedAt,
		); err != nil {
			p.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, 0, e.WrapError(ctx, op, err)
		}
		items = append(items, rep)
	}
	if err := rows.Err(); err != nil {
		p.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, 0, e.WrapError(ctx, op, err)
	}

	if err := p.attachMedia(ctx, items); err != nil {
		return nil, 0, e.WrapError(ctx, op, err)
	}

	return items, total, nil
}

func buildFilter(f domain.ReportFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if f.Severity != "" {
		add("severity = $%d", f.Severity)
	}
	if f.ReportedBy != nil {
		add("reported_by = $%d", *f.ReportedBy)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (p *QueryRepo) attachMedia(ctx context.Context, items []domain.Report) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(items))
	index := make(map[uuid.UUID]int, len(items))
	for i := range items {
		ids[i] = items[i].ID
		index[items[i].ID] = i
	}

	const query = `
		SELECT report_id, type, url, thumbnail_url, provider_id
		FROM report_media
		WHERE report_id = ANY($1)
		ORDER BY report_id, position
	`
	rows, err := p.pool.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var reportID uuid.UUID
		var m domain.MediaAttachment
		if err := rows.Scan(&reportID, &m.Type, &m.URL, &m.ThumbnailURL, &m.ProviderID); err != nil {
			return err
		}
		if i, ok := index[reportID]; ok {
			items[i].Media = append(items[i].Media, m)
		}
	}
	return rows.Err()
}
