package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/priyanshu3301/civic-report-backend/internal/domain"
	"github.com/priyanshu3301/civic-report-backend/pkg/e"
)

type ReportRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewReportRepo(pool *pgxpool.Pool, logger *slog.Logger) *ReportRepo {
	return &ReportRepo{pool: pool, logger: logger}
}

// Create persists the report, its media attachments, and the initial history
// entry in one transaction.
func (p *ReportRepo) Create(ctx context.Context, report *domain.Report) error {
	const op = "postgres.Report.Create"

	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	now := time.Now().UTC()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}
	report.UpdatedAt = report.CreatedAt
	if report.Status == "" {
		report.Status = domain.StatusReported
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return e.WrapError(ctx, op, err)
	}
	defer tx.Rollback(ctx)

	const reportQuery = `
		INSERT INTO reports (id, title, description, category, severity, reported_by,
			location_name, geo_point, status, upvotes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, ST_SetSRID(ST_MakePoint($8, $9), 4326), $10, 0, $11, $11)
	`
	_, err = tx.Exec(ctx, reportQuery,
		report.ID,
		report.Title,
		report.Description,
		report.Category,
		report.Severity,
		report.ReportedBy,
		report.LocationName,
		report.Lng,
		report.Lat,
		report.Status,
		report.CreatedAt,
	)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}

	const mediaQuery = `
		INSERT INTO report_media (report_id, position, type, url, thumbnail_url, provider_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for i, m := range report.Media {
		if _, err := tx.Exec(ctx, mediaQuery, report.ID, i, m.Type, m.URL, m.ThumbnailURL, m.ProviderID); err != nil {
			p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
			return e.WrapError(ctx, op, err)
		}
	}

	entry := domain.HistoryEntry{
		ID:        uuid.New(),
		Status:    report.Status,
		Notes:     "Report created",
		UpdatedBy: report.ReportedBy,
		CreatedAt: report.CreatedAt,
	}
	if err := insertHistory(ctx, tx, report.ID, entry); err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	report.History = append(report.History, entry)

	if err := tx.Commit(ctx); err != nil {
		return e.WrapError(ctx, op, err)
	}
	return nil
}

func (p *ReportRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	const op = "postgres.Report.Get"

	const query = `
		SELECT id, title, description, category, severity, reported_by, location_name,
			   ST_Y(geo_point) AS lat,
			   ST_X(geo_point) AS lng,
			   status, rejection_reason, upvotes, created_at, updated_at
		FROM reports
		WHERE id = $1
	`

	var rep domain.Report
	err := p.pool.QueryRow(ctx, query, id).Scan(
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
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return nil, e.WrapError(ctx, op, err)
	}

	media, err := p.mediaFor(ctx, id)
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	rep.Media = media

	history, err := p.historyFor(ctx, id)
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	rep.History = history

	return &rep, nil
}

// UpdateStatus requires a strict status change: updating to the current
// status fails with ErrAlreadyInState and appends nothing.
func (p *ReportRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReportStatus, notes string, updatedBy *uuid.UUID) error {
	const op = "postgres.Report.UpdateStatus"

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return e.WrapError(ctx, op, err)
	}
	defer tx.Rollback(ctx)

	var current domain.ReportStatus
	err = tx.QueryRow(ctx, `SELECT status FROM reports WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		return e.WrapError(ctx, op, err)
	}
	if current == status {
		return fmt.Errorf("%s: status is already %q: %w", op, status, e.ErrAlreadyInState)
	}

	if _, err := tx.Exec(ctx, `UPDATE reports SET status = $2, updated_at = now() WHERE id = $1`, id, status); err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return e.WrapError(ctx, op, err)
	}

	entry := domain.HistoryEntry{
		ID:        uuid.New(),
		Status:    status,
		Notes:     notes,
		UpdatedBy: updatedBy,
		CreatedAt: time.Now().UTC(),
	}
	if err := insertHistory(ctx, tx, id, entry); err != nil {
		return e.WrapError(ctx, op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return e.WrapError(ctx, op, err)
	}
	return nil
}

// Reject sets status and rejection reason together and appends a single
// combined history entry.
func (p *ReportRepo) Reject(ctx context.Context, id uuid.UUID, reason string, updatedBy *uuid.UUID) error {
	const op = "postgres.Report.Reject"

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return e.WrapError(ctx, op, err)
	}
	defer tx.Rollback(ctx)

	var current domain.ReportStatus
	err = tx.QueryRow(ctx, `SELECT status FROM reports WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		return e.WrapError(ctx, op, err)
	}
	if current == domain.StatusRejected {
		return fmt.Errorf("%s: %w", op, e.ErrAlreadyInState)
	}

	const query = `UPDATE reports SET status = $2, rejection_reason = $3, updated_at = now() WHERE id = $1`
	if _, err := tx.Exec(ctx, query, id, domain.StatusRejected, reason); err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return e.WrapError(ctx, op, err)
	}

	entry := domain.HistoryEntry{
		ID:        uuid.New(),
		Status:    domain.StatusRejected,
		Notes:     "Report rejected: " + reason,
		UpdatedBy: updatedBy,
		CreatedAt: time.Now().UTC(),
	}
	if err := insertHistory(ctx, tx, id, entry); err != nil {
		return e.WrapError(ctx, op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return e.WrapError(ctx, op, err)
	}
	return nil
}

// ToggleUpvote flips the caller's membership in report_upvotes and recounts
// inside one transaction, so concurrent toggles by different users are never
// lost. The row lock serializes toggles per report.
func (p *ReportRepo) ToggleUpvote(ctx context.Context, id, userID uuid.UUID) (domain.ToggleOutcome, error) {
	const op = "postgres.Report.ToggleUpvote"

	var out domain.ToggleOutcome

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return out, e.WrapError(ctx, op, err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `SELECT severity, status FROM reports WHERE id = $1 FOR UPDATE`, id).
		Scan(&out.Severity, &out.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return out, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		return out, e.WrapError(ctx, op, err)
	}

	ct, err := tx.Exec(ctx, `DELETE FROM report_upvotes WHERE report_id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return out, e.WrapError(ctx, op, err)
	}
	if ct.RowsAffected() == 0 {
		if _, err := tx.Exec(ctx,
			`INSERT INTO report_upvotes (report_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			id, userID,
		); err != nil {
			return out, e.WrapError(ctx, op, err)
		}
		out.HasUpvoted = true
	}

	const recount = `
		UPDATE reports
		SET upvotes = (SELECT COUNT(*) FROM report_upvotes WHERE report_id = $1),
			updated_at = now()
		WHERE id = $1
		RETURNING upvotes
	`
	if err := tx.QueryRow(ctx, recount, id).Scan(&out.Upvotes); err != nil {
		return out, e.WrapError(ctx, op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return out, e.WrapError(ctx, op, err)
	}
	return out, nil
}

// SetSeverity records an automatic severity change with a system-attributed
// history entry (updated_by NULL).
func (p *ReportRepo) SetSeverity(ctx context.Context, id uuid.UUID, severity domain.Severity, status domain.ReportStatus, notes string) error {
	const op = "postgres.Report.SetSeverity"

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return e.WrapError(ctx, op, err)
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, `UPDATE reports SET severity = $2, updated_at = now() WHERE id = $1`, id, severity)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return e.WrapError(ctx, op, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}

	entry := domain.HistoryEntry{
		ID:        uuid.New(),
		Status:    status,
		Notes:     notes,
		UpdatedBy: nil,
		CreatedAt: time.Now().UTC(),
	}
	if err := insertHistory(ctx, tx, id, entry); err != nil {
		return e.WrapError(ctx, op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return e.WrapError(ctx, op, err)
	}
	return nil
}

// AnonymizeUser nulls reported_by on all of a deleted user's reports. The
// reports themselves are kept.
func (p *ReportRepo) AnonymizeUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	const op = "postgres.Report.AnonymizeUser"

	ct, err := p.pool.Exec(ctx,
		`UPDATE reports SET reported_by = NULL, updated_at = now() WHERE reported_by = $1`,
		userID,
	)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return 0, e.WrapError(ctx, op, err)
	}
	return ct.RowsAffected(), nil
}

func (p *ReportRepo) mediaFor(ctx context.Context, id uuid.UUID) ([]domain.MediaAttachment, error) {
	const query = `
		SELECT type, url, thumbnail_url, provider_id
		FROM report_media
		WHERE report_id = $1
		ORDER BY position
	`
	rows, err := p.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var media []domain.MediaAttachment
	for rows.Next() {
		var m domain.MediaAttachment
		if err := rows.Scan(&m.Type, &m.URL, &m.ThumbnailURL, &m.ProviderID); err != nil {
			return nil, err
		}
		media = append(media, m)
	}
	return media, rows.Err()
}

func (p *ReportRepo) historyFor(ctx context.Context, id uuid.UUID) ([]domain.HistoryEntry, error) {
	const query = `
		SELECT id, status, notes, updated_by, created_at
		FROM report_history
		WHERE report_id = $1
		ORDER BY created_at, id
	`
	rows, err := p.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []domain.HistoryEntry
	for rows.Next() {
		var h domain.HistoryEntry
		if err := rows.Scan(&h.ID, &h.Status, &h.Notes, &h.UpdatedBy, &h.CreatedAt); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

func insertHistory(ctx context.Context, tx pgx.Tx, reportID uuid.UUID, entry domain.HistoryEntry) error {
	const query = `
		INSERT INTO report_history (id, report_id, status, notes, updated_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := tx.Exec(ctx, query, entry.ID, reportID, entry.Status, entry.Notes, entry.UpdatedBy, entry.CreatedAt)
	return err
}
