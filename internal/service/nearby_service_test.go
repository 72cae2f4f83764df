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

func TestNearbyService_CoordinatesOutOfRange(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	index := mock_service.NewMockSpatialIndex(ctrl)
	svc := service.NewNearbyService(index, discardLogger())

	cases := []struct {
		name     string
		lat, lng float64
	}{
		{"lat too high", 90.1, 0},
		{"lat too low", -90.1, 0},
		{"lng too high", 0, 180.1},
		{"lng too low", 0, -180.1},
	}

	for _, tc := range cases {
		_, err := svc.FindNearby(context.Background(), domain.NearbyRequest{Lat: tc.lat, Lng: tc.lng})
		if !errors.Is(err, e.ErrInvalidInput) {
			t.Fatalf("%s: err = %v, want ErrInvalidInput", tc.name, err)
		}
	}
}

func TestNearbyService_AppliesDefaultsAndClamps(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		radius     float64
		limit      int
		wantRadius float64
		wantLimit  int
	}{
		{"defaults", 0, 0, 5000, 20},
		{"radius below floor", 50, 10, 100, 10},
		{"radius above ceiling", 99999, 10, 50000, 10},
		{"limit above ceiling", 5000, 500, 5000, 100},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			index := mock_service.NewMockSpatialIndex(ctrl)
			svc := service.NewNearbyService(index, discardLogger())

			var seen domain.NearbyRequest
			index.EXPECT().
				FindNearby(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, req domain.NearbyRequest) ([]domain.ReportNearby, error) {
					seen = req
					return []domain.ReportNearby{}, nil
				}).
				Times(1)

			resp, err := svc.FindNearby(context.Background(), domain.NearbyRequest{
				Lat:     48.85,
				Lng:     2.35,
				RadiusM: tc.radius,
				Limit:   tc.limit,
			})
			if err != nil {
				t.Fatalf("FindNearby failed: %v", err)
			}
			if seen.RadiusM != tc.wantRadius || seen.Limit != tc.wantLimit {
				t.Fatalf("query got radius=%v limit=%d, want radius=%v limit=%d",
					seen.RadiusM, seen.Limit, tc.wantRadius, tc.wantLimit)
			}
			if resp.RadiusM != tc.wantRadius || resp.Limit != tc.wantLimit {
				t.Fatalf("response echoes radius=%v limit=%d, want radius=%v limit=%d",
					resp.RadiusM, resp.Limit, tc.wantRadius, tc.wantLimit)
			}
		})
	}
}

func TestNearbyService_InvalidFilterValue(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	index := mock_service.NewMockSpatialIndex(ctrl)
	svc := service.NewNearbyService(index, discardLogger())

	_, err := svc.FindNearby(context.Background(), domain.NearbyRequest{
		Lat:    48.85,
		Lng:    2.35,
		Status: "bogus",
	})
	if !errors.Is(err, e.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestNearbyService_IndexErrorPassthrough(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	index := mock_service.NewMockSpatialIndex(ctrl)
	svc := service.NewNearbyService(index, discardLogger())

	index.EXPECT().
		FindNearby(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("query failed")).
		Times(1)

	_, err := svc.FindNearby(context.Background(), domain.NearbyRequest{Lat: 1, Lng: 1})
	if err == nil {
		t.Fatalf("expected error")
	}
}
