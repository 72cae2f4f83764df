package service

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/priyanshu3301/civic-report-backend/internal/domain"
	"github.com/priyanshu3301/civic-report-backend/internal/media"
	"github.com/priyanshu3301/civic-report-backend/pkg/e"
	"github.com/priyanshu3301/civic-report-backend/pkg/validator"
)

type reportService struct {
	repo   ReportRepository
	media  MediaStore
	mirror SpatialIndexMirror // nil unless the in-memory geo index is active
	logger *slog.Logger
}

func NewReportService(repo ReportRepository, mediaStore MediaStore, mirror SpatialIndexMirror, logger *slog.Logger) ReportService {
	return &reportService{
		repo:   repo,
		media:  mediaStore,
		mirror: mirror,
		logger: logger,
	}
}

// Create uploads every attached file before touching the database. If any
// upload fails, or the caller aborts mid-batch, every asset uploaded so far
// is deleted and no report row is ever written.
func (s *reportService) Create(ctx context.Context, req domain.CreateReportRequest, files []media.Upload, actingUser *uuid.UUID) (*domain.Report, error) {
	const op = "service.Report.Create"

	if err := validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", op, err, e.ErrInvalidInput)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: at least one media file required: %w", op, e.ErrInvalidInput)
	}

	id := uuid.New()
	folder := "reports/" + id.String()

	uploaded := make([]media.Asset, 0, len(files))
	for _, f := range files {
		f.Folder = folder
		asset, err := s.media.Upload(ctx, f)
		if err != nil {
			s.rollbackUploads(ctx, uploaded)
			return nil, fmt.Errorf("%s: %v: %w", op, err, e.ErrMediaUpload)
		}
		uploaded = append(uploaded, asset)
	}

	attachments := make([]domain.MediaAttachment, len(uploaded))
	for i, a := range uploaded {
		attachments[i] = domain.MediaAttachment{
			Type:         a.Type,
			URL:          a.URL,
			ThumbnailURL: a.ThumbnailURL,
			ProviderID:   a.ProviderID,
		}
	}

	report := &domain.Report{
		ID:           id,
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Severity:     req.Severity,
		ReportedBy:   actingUser,
		LocationName: req.LocationName,
		Lat:          req.Lat,
		Lng:          req.Lng,
		Status:       domain.StatusReported,
		Media:        attachments,
	}

	if err := s.repo.Create(ctx, report); err != nil {
		s.rollbackUploads(ctx, uploaded)
		return nil, e.Wrap(op, err)
	}

	s.mirrorUpsert(report)

	s.logger.Info("report created",
		slog.String("id", id.String()),
		slog.Int("media", len(attachments)),
	)
	return report, nil
}

// mirrorUpsert pushes the report's current state into the in-memory spatial
// index when one is active, so nearby queries see writes made after the
// startup hydration.
func (s *reportService) mirrorUpsert(r *domain.Report) {
	if s.mirror == nil || r == nil {
		return
	}
	s.mirror.Upsert(domain.ReportNearby{
		ID:           r.ID,
		Title:        r.Title,
		Category:     r.Category,
		Severity:     r.Severity,
		Status:       r.Status,
		LocationName: r.LocationName,
		Lat:          r.Lat,
		Lng:          r.Lng,
		Upvotes:      r.Upvotes,
		CreatedAt:    r.CreatedAt,
	})
}

// mirrorRefresh re-reads the report and upserts it, for paths that mutate
// without holding the full entity.
func (s *reportService) mirrorRefresh(ctx context.Context, id uuid.UUID) {
	if s.mirror == nil {
		return
	}
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		s.logger.Warn("spatial index refresh failed",
			slog.String("id", id.String()),
			slog.String("error", err.Error()),
		)
		return
	}
	s.mirrorUpsert(r)
}

// rollbackUploads deletes every asset of a failed creation batch. It runs on
// a detached context so a canceled request cannot leave orphans behind.
// Individual delete failures are logged, never escalated.
func (s *reportService) rollbackUploads(ctx context.Context, assets []media.Asset) {
	if len(assets) == 0 {
		return
	}
	cleanupCtx := context.WithoutCancel(ctx)
	for _, a := range assets {
		if !s.media.Delete(cleanupCtx, a.ProviderID, a.Type) {
			s.logger.Warn("rollback delete failed", slog.String("provider_id", a.ProviderID))
		}
	}
}

func (s *reportService) Get(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	return s.repo.Get(ctx, id)
}

func (s *reportService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReportStatus, notes string, adminID uuid.UUID) (*domain.Report, error) {
	const op = "service.Report.UpdateStatus"

	if !status.Valid() {
		return nil, fmt.Errorf("%s: %q: %w", op, status, e.ErrInvalidStatus)
	}
	if err := s.repo.UpdateStatus(ctx, id, status, notes, &adminID); err != nil {
		return nil, err
	}
	report, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.mirrorUpsert(report)
	return report, nil
}

func (s *reportService) Reject(ctx context.Context, id uuid.UUID, reason string, adminID uuid.UUID) (*domain.Report, error) {
	const op = "service.Report.Reject"

	if n := utf8.RuneCountInString(reason); n < 10 || n > 500 {
		return nil, fmt.Errorf("%s: reason must be 10-500 characters: %w", op, e.ErrInvalidInput)
	}
	if err := s.repo.Reject(ctx, id, reason, &adminID); err != nil {
		return nil, err
	}
	report, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.mirrorUpsert(report)
	return report, nil
}

// ToggleUpvote flips the caller's upvote and recomputes severity from the
// post-toggle count. Severity-change history entries are system-attributed,
// not attributed to the toggling user.
func (s *reportService) ToggleUpvote(ctx context.Context, id, userID uuid.UUID) (domain.UpvoteResult, error) {
	out, err := s.repo.ToggleUpvote(ctx, id, userID)
	if err != nil {
		return domain.UpvoteResult{}, err
	}

	result := domain.UpvoteResult{
		Upvotes:    out.Upvotes,
		Severity:   out.Severity,
		HasUpvoted: out.HasUpvoted,
	}

	newSeverity := escalateSeverity(out.Severity, out.Upvotes)
	if newSeverity != out.Severity {
		notes := fmt.Sprintf("Severity upgraded to %s due to %d upvotes", newSeverity, out.Upvotes)
		if err := s.repo.SetSeverity(ctx, id, newSeverity, out.Status, notes); err != nil {
			return result, err
		}
		s.logger.Info("severity recomputed",
			slog.String("id", id.String()),
			slog.String("severity", string(newSeverity)),
			slog.Int("upvotes", out.Upvotes),
		)
		result.Severity = newSeverity
		result.SeverityUpgraded = true
	}

	s.mirrorRefresh(ctx, id)
	return result, nil
}

func (s *reportService) AnonymizeUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.AnonymizeUser(ctx, userID)
}

// escalateSeverity is a pure function of the current severity and the
// post-toggle upvote count. It is recomputed on every toggle, not ratcheted:
// a report escalated to critical at 20 upvotes drops back to high when the
// count falls under 20.
func escalateSeverity(current domain.Severity, upvotes int) domain.Severity {
	switch {
	case upvotes >= 20:
		return domain.SeverityCritical
	case upvotes >= 10:
		return domain.SeverityHigh
	case upvotes >= 5 && current == domain.SeverityLow:
		return domain.SeverityMedium
	default:
		return current
	}
}
