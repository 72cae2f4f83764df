package admin_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"

	"github.com/priyanshu3301/civic-report-backend/internal/api/handlers/http/admin"
	mock_admin "github.com/priyanshu3301/civic-report-backend/internal/api/handlers/http/admin/mocks"
	"github.com/priyanshu3301/civic-report-backend/internal/domain"
	"github.com/priyanshu3301/civic-report-backend/internal/middleware"
	"github.com/priyanshu3301/civic-report-backend/pkg/e"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), &slog.HandlerOptions{Level: slog.LevelError}))
}

func decodeJSON[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json response: %v, body=%s", err, rr.Body.String())
	}
	return out
}

// newAdminRequest builds a request carrying admin identity headers and chi
// route params. Handlers run wrapped in middleware.Identity, the way the
// router stacks them.
func newAdminRequest(method, target, body string, adminID uuid.UUID, params map[string]string) *http.Request {
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("X-User-Id", adminID.String())
	req.Header.Set("X-User-Role", "admin")

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	return req
}

func TestAdminStatusUpdate_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reports := mock_admin.NewMockReports(ctrl)
	h := admin.NewHandler(newTestLogger(), reports,
		mock_admin.NewMockLister(ctrl),
		mock_admin.NewMockStats(ctrl),
	)

	id := uuid.New()
	adminID := uuid.New()

	reports.EXPECT().
		UpdateStatus(gomock.Any(), id, domain.StatusInProgress, "crew on site", adminID).
		Return(&domain.Report{ID: id, Status: domain.StatusInProgress}, nil).
		Times(1)

	body := `{"status":"in_progress","notes":"crew on site"}`
	req := newAdminRequest(http.MethodPatch, "/api/v1/admin/reports/"+id.String()+"/status", body, adminID, map[string]string{"id": id.String()})
	rr := httptest.NewRecorder()

	middleware.Identity(http.HandlerFunc(h.StatusUpdate)).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d, body=%s", rr.Code, rr.Body.String())
	}
	got := decodeJSON[domain.Report](t, rr)
	if got.Status != domain.StatusInProgress {
		t.Fatalf("status = %q, want in_progress", got.Status)
	}
}

func TestAdminStatusUpdate_InvalidJSON_400(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := admin.NewHandler(newTestLogger(),
		mock_admin.NewMockReports(ctrl),
		mock_admin.NewMockLister(ctrl),
		mock_admin.NewMockStats(ctrl),
	)

	id := uuid.New()
	req := newAdminRequest(http.MethodPatch, "/x", "{bad json", uuid.New(), map[string]string{"id": id.String()})
	rr := httptest.NewRecorder()

	middleware.Identity(http.HandlerFunc(h.StatusUpdate)).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
}

func TestAdminStatusUpdate_AlreadyInState_409(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reports := mock_admin.NewMockReports(ctrl)
	h := admin.NewHandler(newTestLogger(), reports,
		mock_admin.NewMockLister(ctrl),
		mock_admin.NewMockStats(ctrl),
	)

	id := uuid.New()
	reports.EXPECT().
		UpdateStatus(gomock.Any(), id, domain.StatusResolved, "", gomock.Any()).
		Return(nil, e.ErrAlreadyInState).
		Times(1)

	req := newAdminRequest(http.MethodPatch, "/x", `{"status":"resolved"}`, uuid.New(), map[string]string{"id": id.String()})
	rr := httptest.NewRecorder()

	middleware.Identity(http.HandlerFunc(h.StatusUpdate)).ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d, body=%s", rr.Code, rr.Body.String())
	}
}

func TestAdminStatusUpdate_NotFound_404(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reports := mock_admin.NewMockReports(ctrl)
	h := admin.NewHandler(newTestLogger(), reports,
		mock_admin.NewMockLister(ctrl),
		mock_admin.NewMockStats(ctrl),
	)

	id := uuid.New()
	reports.EXPECT().
		UpdateStatus(gomock.Any(), id, domain.StatusClosed, "", gomock.Any()).
		Return(nil, e.ErrNotFound).
		Times(1)

	req := newAdminRequest(http.MethodPatch, "/x", `{"status":"closed"}`, uuid.New(), map[string]string{"id": id.String()})
	rr := httptest.NewRecorder()

	middleware.Identity(http.HandlerFunc(h.StatusUpdate)).ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rr.Code)
	}
}

func TestAdminReject_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reports := mock_admin.NewMockReports(ctrl)
	h := admin.NewHandler(newTestLogger(), reports,
		mock_admin.NewMockLister(ctrl),
		mock_admin.NewMockStats(ctrl),
	)

	id := uuid.New()
	adminID := uuid.New()
	reason := "duplicate of an existing report"

	reports.EXPECT().
		Reject(gomock.Any(), id, reason, adminID).
		Return(&domain.Report{ID: id, Status: domain.StatusRejected, RejectionReason: &reason}, nil).
		Times(1)

	req := newAdminRequest(http.MethodPatch, "/x", `{"reason":"`+reason+`"}`, adminID, map[string]string{"id": id.String()})
	rr := httptest.NewRecorder()

	middleware.Identity(http.HandlerFunc(h.Reject)).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d, body=%s", rr.Code, rr.Body.String())
	}
	got := decodeJSON[domain.Report](t, rr)
	if got.RejectionReason == nil || *got.RejectionReason != reason {
		t.Fatalf("rejection reason not echoed")
	}
}

func TestAdminReportList_ParsesFilter(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	lister := mock_admin.NewMockLister(ctrl)
	h := admin.NewHandler(newTestLogger(),
		mock_admin.NewMockReports(ctrl),
		lister,
		mock_admin.NewMockStats(ctrl),
	)

	reporter := uuid.New()
	var seen domain.ListReportsRequest
	lister.EXPECT().
		List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req domain.ListReportsRequest) (domain.ListReportsResponse, error) {
			seen = req
			return domain.ListReportsResponse{Items: []domain.Report{}}, nil
		}).
		Times(1)

	url := "/x?status=reported&category=sanitation&reported_by=" + reporter.String() + "&page=2&limit=10&sort_by=upvotes&order=desc"
	req := newAdminRequest(http.MethodGet, url, "", uuid.New(), nil)
	rr := httptest.NewRecorder()

	middleware.Identity(http.HandlerFunc(h.ReportList)).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
	if seen.Filter.Status != domain.StatusReported || seen.Filter.Category != domain.CategorySanitation {
		t.Fatalf("filter not parsed: %+v", seen.Filter)
	}
	if seen.Filter.ReportedBy == nil || *seen.Filter.ReportedBy != reporter {
		t.Fatalf("reported_by not parsed")
	}
	if seen.Page != 2 || seen.Limit != 10 || seen.SortBy != "upvotes" || !seen.SortDesc {
		t.Fatalf("paging not parsed: %+v", seen)
	}
}

func TestAdminDashboard_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	stats := mock_admin.NewMockStats(ctrl)
	h := admin.NewHandler(newTestLogger(),
		mock_admin.NewMockReports(ctrl),
		mock_admin.NewMockLister(ctrl),
		stats,
	)

	stats.EXPECT().
		Stats(gomock.Any()).
		Return(&domain.DashboardStats{Total: 7, AvgUpvotes: 1.5}, nil).
		Times(1)

	req := newAdminRequest(http.MethodGet, "/x", "", uuid.New(), nil)
	rr := httptest.NewRecorder()

	middleware.Identity(http.HandlerFunc(h.Dashboard)).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
	got := decodeJSON[domain.DashboardStats](t, rr)
	if got.Total != 7 {
		t.Fatalf("total = %d, want 7", got.Total)
	}
}

func TestAdminUserAnonymize_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reports := mock_admin.NewMockReports(ctrl)
	h := admin.NewHandler(newTestLogger(), reports,
		mock_admin.NewMockLister(ctrl),
		mock_admin.NewMockStats(ctrl),
	)

	userID := uuid.New()
	reports.EXPECT().
		AnonymizeUser(gomock.Any(), userID).
		Return(int64(3), nil).
		Times(1)

	req := newAdminRequest(http.MethodDelete, "/x", "", uuid.New(), map[string]string{"userID": userID.String()})
	rr := httptest.NewRecorder()

	middleware.Identity(http.HandlerFunc(h.UserAnonymize)).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
	got := decodeJSON[map[string]int64](t, rr)
	if got["reports_anonymized"] != 3 {
		t.Fatalf("reports_anonymized = %d, want 3", got["reports_anonymized"])
	}
}
