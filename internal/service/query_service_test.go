package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"

	"github.com/priyanshu3301/civic-report-backend/internal/domain"
	"github.com/priyanshu3301/civic-report-backend/internal/service"
	"github.com/priyanshu3301/civic-report-backend/pkg/e"

	mock_service "github.com/priyanshu3301/civic-report-backend/internal/service/mocks"
)

func TestQueryService_List_DefaultsAndPages(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockQueryRepository(ctrl)
	svc := service.NewQueryService(repo, discardLogger())

	var seen domain.ListReportsRequest
	repo.EXPECT().
		List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req domain.ListReportsRequest) ([]domain.Report, int64, error) {
			seen = req
			return []domain.Report{{}, {}}, 45, nil
		}).
		Times(1)

	resp, err := svc.List(context.Background(), domain.ListReportsRequest{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if seen.Page != 1 || seen.Limit != 20 {
		t.Fatalf("repo got page=%d limit=%d, want 1/20", seen.Page, seen.Limit)
	}
	if resp.Pagination.Total != 45 {
		t.Fatalf("total = %d, want 45", resp.Pagination.Total)
	}
	if resp.Pagination.Pages != 3 {
		t.Fatalf("pages = %d, want 3 (45 items at 20 per page)", resp.Pagination.Pages)
	}
}

func TestQueryService_List_ClampsLimit(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockQueryRepository(ctrl)
	svc := service.NewQueryService(repo, discardLogger())

	var seen domain.ListReportsRequest
	repo.EXPECT().
		List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req domain.ListReportsRequest) ([]domain.Report, int64, error) {
			seen = req
			return nil, 0, nil
		}).
		Times(1)

	_, err := svc.List(context.Background(), domain.ListReportsRequest{Page: -3, Limit: 1000})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if seen.Page != 1 || seen.Limit != 100 {
		t.Fatalf("repo got page=%d limit=%d, want 1/100", seen.Page, seen.Limit)
	}
}

func TestQueryService_List_PastLastPageIsEmptyNotError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockQueryRepository(ctrl)
	svc := service.NewQueryService(repo, discardLogger())

	repo.EXPECT().
		List(gomock.Any(), gomock.Any()).
		Return([]domain.Report{}, int64(7), nil).
		Times(1)

	resp, err := svc.List(context.Background(), domain.ListReportsRequest{Page: 99, Limit: 10})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(resp.Items) != 0 {
		t.Fatalf("items = %d, want 0", len(resp.Items))
	}
	if resp.Pagination.Total != 7 || resp.Pagination.Pages != 1 {
		t.Fatalf("pagination = %+v, want total 7 pages 1", resp.Pagination)
	}
}

func TestQueryService_List_InvalidFilter(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockQueryRepository(ctrl)
	svc := service.NewQueryService(repo, discardLogger())

	_, err := svc.List(context.Background(), domain.ListReportsRequest{
		Filter: domain.ReportFilter{Status: "bogus"},
	})
	if !errors.Is(err, e.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestQueryService_List_RepoError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockQueryRepository(ctrl)
	svc := service.NewQueryService(repo, discardLogger())

	repo.EXPECT().
		List(gomock.Any(), gomock.Any()).
		Return(nil, int64(0), errors.New("db down")).
		Times(1)

	_, err := svc.List(context.Background(), domain.ListReportsRequest{})
	if err == nil {
		t.Fatalf("expected error")
	}
}
