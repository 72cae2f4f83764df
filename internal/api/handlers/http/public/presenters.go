package public

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	geojson "github.com/paulmach/go.geojson"

	"github.com/priyanshu3301/civic-report-backend/internal/config"
	"github.com/priyanshu3301/civic-report-backend/internal/domain"
	"github.com/priyanshu3301/civic-report-backend/internal/media"
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
	case errors.Is(err, e.ErrAlreadyInState), errors.Is(err, e.ErrUniqueViolation):
		h.writeJSON(w, http.StatusConflict, map[string]string{"error": "conflict"})
	case errors.Is(err, e.ErrForbidden):
		h.writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	case errors.Is(err, e.ErrMediaUpload):
		l.Error("media upload failed", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadGateway, map[string]string{"error": "media upload failed"})
	case errors.Is(err, e.ErrDeadline), errors.Is(err, e.ErrCanceled):
		h.writeJSON(w, http.StatusRequestTimeout, map[string]string{"error": "request timed out"})
	default:
		l.Error("internal error", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func createRequestFromForm(r *http.Request) (domain.CreateReportRequest, error) {
	var req domain.CreateReportRequest

	req.Title = r.FormValue("title")
	req.Description = r.FormValue("description")
	req.Category = domain.Category(r.FormValue("category"))
	req.Severity = domain.Severity(r.FormValue("severity"))
	req.LocationName = r.FormValue("location_name")

	lat, err := strconv.ParseFloat(r.FormValue("lat"), 64)
	if err != nil {
		return req, fmt.Errorf("invalid lat")
	}
	lng, err := strconv.ParseFloat(r.FormValue("lng"), 64)
	if err != nil {
		return req, fmt.Errorf("invalid lng")
	}
	req.Lat, req.Lng = lat, lng

	return req, nil
}

// uploadsFromForm reads every "files" part into memory, enforcing the
// configured count and per-file size limits before anything is uploaded.
func uploadsFromForm(r *http.Request, limits config.MediaConfig) ([]media.Upload, error) {
	if r.MultipartForm == nil {
		return nil, fmt.Errorf("at least one file is required")
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		return nil, fmt.Errorf("at least one file is required")
	}
	if limits.MaxFiles > 0 && len(headers) > limits.MaxFiles {
		return nil, fmt.Errorf("too many files: max %d", limits.MaxFiles)
	}

	uploads := make([]media.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("cannot read file %q", fh.Filename)
		}
		// LimitReader bounds what gets buffered, the header size alone is
		// client-controlled.
		reader := io.Reader(f)
		if limits.MaxFileSize > 0 {
			reader = io.LimitReader(f, limits.MaxFileSize+1)
		}
		data, err := io.ReadAll(reader)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("cannot read file %q", fh.Filename)
		}
		if limits.MaxFileSize > 0 && int64(len(data)) > limits.MaxFileSize {
			return nil, fmt.Errorf("file %q exceeds the %d byte limit", fh.Filename, limits.MaxFileSize)
		}

		uploads = append(uploads, media.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return uploads, nil
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

	var err error
	if req.Page, err = intQuery(q.Get("page"), 0); err != nil {
		return req, fmt.Errorf("invalid page")
	}
	if req.Limit, err = intQuery(q.Get("limit"), 0); err != nil {
		return req, fmt.Errorf("invalid limit")
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

func nearbyRequestFromQuery(r *http.Request) (domain.NearbyRequest, error) {
	q := r.URL.Query()
	var req domain.NearbyRequest

	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		return req, fmt.Errorf("invalid lat")
	}
	lng, err := strconv.ParseFloat(q.Get("lng"), 64)
	if err != nil {
		return req, fmt.Errorf("invalid lng")
	}
	req.Lat, req.Lng = lat, lng

	if raw := q.Get("radius_m"); raw != "" {
		if req.RadiusM, err = strconv.ParseFloat(raw, 64); err != nil {
			return req, fmt.Errorf("invalid radius_m")
		}
	}
	if req.Limit, err = intQuery(q.Get("limit"), 0); err != nil {
		return req, fmt.Errorf("invalid limit")
	}

	req.Status = domain.ReportStatus(q.Get("status"))
	req.Category = domain.Category(q.Get("category"))
	return req, nil
}

func intQuery(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func nearbyToGeoJSON(resp domain.NearbyResponse) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, item := range resp.Items {
		f := geojson.NewPointFeature([]float64{item.Lng, item.Lat})
		f.ID = item.ID.String()
		f.SetProperty("title", item.Title)
		f.SetProperty("category", string(item.Category))
		f.SetProperty("severity", string(item.Severity))
		f.SetProperty("status", string(item.Status))
		f.SetProperty("location_name", item.LocationName)
		f.SetProperty("upvotes", item.Upvotes)
		f.SetProperty("distance_m", item.DistanceM)
		f.SetProperty("created_at", item.CreatedAt.Format(time.RFC3339))
		fc.AddFeature(f)
	}
	return fc
}
