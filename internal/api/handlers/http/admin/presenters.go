package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/priyanshu3301/civic-report-backend/internal/domain"
	"github.com/priyanshu3301/civic-report-backend/pkg/e"
)

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	l := h.log(r)

	switch {
	case errors.Is(err, e.ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "report not found"})
	case errors.Is(err, e.ErrInvalidInput), errors.Is(err, e.ErrInvalidStatus):
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, e.ErrAlreadyInState):
		h.writeJSON(w, http.StatusConflict, map[string]string{"error": "report already in requested state"})
	case errors.Is(err, e.ErrForbidden):
		h.writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	case errors.Is(err, e.ErrDeadline), errors.Is(err, e.ErrCanceled):
		h.writeJSON(w, http.StatusRequestTimeout, map[string]string{"error": "request timed out"})
	default:
		l.Error("internal error", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func listRequestFromQuery(r *http.Request) (domain.ListReportsRequest, error) {
	q := r.URL.Query()

	req := domain.ListReportsRequest{
		Filter: domain.ReportFilter{
			Status:   domain.ReportStatus(q.Get("status")),
			Category: domain.Category(q.Get("category")),
			Severity: domain.Severity(q.Get("severity")),
			Search:   q.Get("search"),
		},
		SortBy:   q.Get("sort_by"),
		SortDesc: q.Get("order") != "asc",
	}

	if raw := q.Get("reported_by"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return req, fmt.Errorf("invalid reported_by")
		}
		req.Filter.ReportedBy = &id
	}

	var err error
	if raw := q.Get("page"); raw != "" {
		if req.Page, err = strconv.Atoi(raw); err != nil {
			return req, fmt.Errorf("invalid page")
		}
	}
	if raw := q.Get("limit"); raw != "" {
		if req.Limit, err = strconv.Atoi(raw); err != nil {
			return req, fmt.Errorf("invalid limit")
		}
	}

	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return req, fmt.Errorf("invalid from, want RFC3339")
		}
		req.Filter.From = &t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return req, fmt.Errorf("invalid to, want RFC3339")
		}
		req.Filter.To = &t
	}

	return req, nil
}
