package public

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/priyanshu3301/civic-report-backend/internal/config"
	"github.com/priyanshu3301/civic-report-backend/internal/domain"
	"github.com/priyanshu3301/civic-report-backend/internal/media"
	"github.com/priyanshu3301/civic-report-backend/internal/middleware"
)

const maxUploadMemory = 32 << 20

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type Reports interface {
	Create(ctx context.Context, req domain.CreateReportRequest, files []media.Upload, actingUser *uuid.UUID) (*domain.Report, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Report, error)
	ToggleUpvote(ctx context.Context, id, userID uuid.UUID) (domain.UpvoteResult, error)
}

type NearbyFinder interface {
	FindNearby(ctx context.Context, req domain.NearbyRequest) (domain.NearbyResponse, error)
}

type Lister interface {
	List(ctx context.Context, req domain.ListReportsRequest) (domain.ListReportsResponse, error)
}

type Handler struct {
	logger  *slog.Logger
	limits  config.MediaConfig
	Reports Reports
	Nearby  NearbyFinder
	Lister  Lister
}

func NewHandler(logger *slog.Logger, limits config.MediaConfig, reports Reports, nearby NearbyFinder, lister Lister) *Handler {
	return &Handler{
		logger:  logger,
		limits:  limits,
		Reports: reports,
		Nearby:  nearby,
		Lister:  lister,
	}
}

func (h *Handler) log(r *http.Request) *slog.Logger {
	reqID := chimw.GetReqID(r.Context())
	if reqID == "" {
		return h.logger
	}
	return h.logger.With(slog.String("request_id", reqID))
}

// ReportCreate accepts a multipart form: report fields plus one or more
// "files" parts. Anonymous submissions are allowed, the acting user comes
// from the identity middleware when present.
func (h *Handler) ReportCreate(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		l.Warn("invalid multipart form", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	req, err := createRequestFromForm(r)
	if err != nil {
		l.Warn("invalid form fields", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	files, err := uploadsFromForm(r, h.limits)
	if err != nil {
		l.Warn("invalid files", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ident := middleware.IdentityFrom(r.Context())

	report, err := h.Reports.Create(r.Context(), req, files, ident.UserID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("report created",
		slog.String("id", report.ID.String()),
		slog.String("category", string(report.Category)),
		slog.Int("media", len(report.Media)),
	)
	h.writeJSON(w, http.StatusCreated, report)
}

func (h *Handler) ReportGet(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		l.Warn("invalid id", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	report, err := h.Reports.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

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

// ReportListMine is the owner-scoped listing: the filter is pinned to the
// authenticated caller regardless of query parameters.
func (h *Handler) ReportListMine(w http.ResponseWriter, r *http.Request) {
	req, err := listRequestFromQuery(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ident := middleware.IdentityFrom(r.Context())
	req.Filter.ReportedBy = ident.UserID

	resp, err := h.Lister.List(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ReportNearby(w http.ResponseWriter, r *http.Request) {
	req, err := nearbyRequestFromQuery(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	resp, err := h.Nearby.FindNearby(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "geojson" {
		h.writeJSON(w, http.StatusOK, nearbyToGeoJSON(resp))
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ReportUpvote(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		l.Warn("invalid id", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	ident := middleware.IdentityFrom(r.Context())
	if ident.UserID == nil {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	// drain any body; the toggle takes no payload
	_, _ = io.Copy(io.Discard, r.Body)

	result, err := h.Reports.ToggleUpvote(r.Context(), id, *ident.UserID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("upvote toggled",
		slog.String("id", id.String()),
		slog.Bool("has_upvoted", result.HasUpvoted),
		slog.Int("upvotes", result.Upvotes),
	)
	h.writeJSON(w, http.StatusOK, result)
}
