package admin

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/priyanshu3301/civic-report-backend/internal/domain"
	"github.com/priyanshu3301/civic-report-backend/internal/middleware"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type Reports interface {
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReportStatus, notes string, adminID uuid.UUID) (*domain.Report, error)
	Reject(ctx context.Context, id uuid.UUID, reason string, adminID uuid.UUID) (*domain.Report, error)
	AnonymizeUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type Lister interface {
	List(ctx context.Context, req domain.ListReportsRequest) (domain.ListReportsResponse, error)
}

type Stats interface {
	Stats(ctx context.Context) (*domain.DashboardStats, error)
}

type Handler struct {
	logger  *slog.Logger
	Reports Reports
	Lister  Lister
	Stats   Stats
}

func NewHandler(logger *slog.Logger, reports Reports, lister Lister, stats Stats) *Handler {
	return &Handler{
		logger:  logger,
		Reports: reports,
		Lister:  lister,
		Stats:   stats,
	}
}

func (h *Handler) log(r *http.Request) *slog.Logger {
	reqID := chimw.GetReqID(r.Context())
	if reqID == "" {
		return h.logger
	}
	return h.logger.With(slog.String("request_id", reqID))
}

func (h *Handler) StatusUpdate(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req domain.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.Warn("invalid body", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	ident := middleware.IdentityFrom(r.Context())

	report, err := h.Reports.UpdateStatus(r.Context(), id, req.Status, req.Notes, *ident.UserID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("status updated",
		slog.String("id", id.String()),
		slog.String("status", string(report.Status)),
		slog.String("admin", ident.UserID.String()),
	)
	h.writeJSON(w, http.StatusOK, report)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req domain.RejectReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.Warn("invalid body", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	ident := middleware.IdentityFrom(r.Context())

	report, err := h.Reports.Reject(r.Context(), id, req.Reason, *ident.UserID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("report rejected",
		slog.String("id", id.String()),
		slog.String("admin", ident.UserID.String()),
	)
	h.writeJSON(w, http.StatusOK, report)
}

// ReportList is the admin view: unlike the public listing it accepts a
// reported_by filter to inspect a single citizen's submissions.
func (h *Handler) ReportList(w http.ResponseWriter, r *http.Request) {
	req, err := listRequestFromQuery(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	resp, err := h.Lister.List(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Stats.Stats(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

// UserAnonymize detaches a user from every report they filed, keeping the
// reports themselves. Used when an account is deleted upstream.
func (h *Handler) UserAnonymize(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return
	}

	affected, err := h.Reports.AnonymizeUser(r.Context(), userID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("user anonymized",
		slog.String("user_id", userID.String()),
		slog.Int64("reports", affected),
	)
	h.writeJSON(w, http.StatusOK, map[string]int64{"reports_anonymized": affected})
}
