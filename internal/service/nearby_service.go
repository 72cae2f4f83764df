package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/priyanshu3301/civic-report-backend/internal/domain"
	"github.com/priyanshu3301/civic-report-backend/pkg/e"
	"github.com/priyanshu3301/civic-report-backend/pkg/validator"
)

const (
	minRadiusM     = 100
	maxRadiusM     = 50000
	defaultRadiusM = 5000
	defaultLimit   = 20
	maxLimit       = 100
)

type nearbyService struct {
	index  SpatialIndex
	logger *slog.Logger
}

func NewNearbyService(index SpatialIndex, logger *slog.Logger) NearbyService {
	return &nearbyService{index: index, logger: logger}
}

// FindNearby validates coordinates, clamps radius and limit into their
// allowed ranges, and queries the spatial index. Results come back nearest
// first with the effective query parameters echoed.
func (s *nearbyService) FindNearby(ctx context.Context, req domain.NearbyRequest) (domain.NearbyResponse, error) {
	const op = "service.Nearby.FindNearby"

	if req.Lat < -90 || req.Lat > 90 || req.Lng < -180 || req.Lng > 180 {
		return domain.NearbyResponse{}, fmt.Errorf("%s: coordinates out of range: %w", op, e.ErrInvalidInput)
	}
	if err := validator.ValidateStruct(req); err != nil {
		return domain.NearbyResponse{}, fmt.Errorf("%s: %v: %w", op, err, e.ErrInvalidInput)
	}

	if req.RadiusM == 0 {
		req.RadiusM = defaultRadiusM
	}
	if req.RadiusM < minRadiusM {
		req.RadiusM = minRadiusM
	}
	if req.RadiusM > maxRadiusM {
		req.RadiusM = maxRadiusM
	}

	if req.Limit == 0 {
		req.Limit = defaultLimit
	}
	if req.Limit < 1 {
		req.Limit = 1
	}
	if req.Limit > maxLimit {
		req.Limit = maxLimit
	}

	items, err := s.index.FindNearby(ctx, req)
	if err != nil {
		s.logger.Error("nearby query failed", slog.String("op", op), slog.Any("error", err))
		return domain.NearbyResponse{}, err
	}

	return domain.NearbyResponse{
		Items:   items,
		Lat:     req.Lat,
		Lng:     req.Lng,
		RadiusM: req.RadiusM,
		Limit:   req.Limit,
	}, nil
}
