package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/priyanshu3301/civic-report-backend/internal/domain"
	"github.com/priyanshu3301/civic-report-backend/pkg/e"
	"github.com/priyanshu3301/civic-report-backend/pkg/validator"
)

type queryService struct {
	repo   QueryRepository
	logger *slog.Logger
}

func NewQueryService(repo QueryRepository, logger *slog.Logger) QueryService {
	return &queryService{repo: repo, logger: logger}
}

// List pages through filtered reports. A page past the last one returns an
// empty item list with the real total, never an error.
func (s *queryService) List(ctx context.Context, req domain.ListReportsRequest) (domain.ListReportsResponse, error) {
	const op = "service.Query.List"

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit <= 0 {
		req.Limit = defaultLimit
	}
	if req.Limit > maxLimit {
		req.Limit = maxLimit
	}

	if err := validator.ValidateStruct(req.Filter); err != nil {
		return domain.ListReportsResponse{}, fmt.Errorf("%s: %v: %w", op, err, e.ErrInvalidInput)
	}

	items, total, err := s.repo.List(ctx, req)
	if err != nil {
		s.logger.Error("list query failed", slog.String("op", op), slog.Any("error", err))
		return domain.ListReportsResponse{}, err
	}

	pages := int((total + int64(req.Limit) - 1) / int64(req.Limit))

	return domain.ListReportsResponse{
		Items: items,
		Pagination: domain.Pagination{
			Page:  req.Page,
			Limit: req.Limit,
			Total: total,
			Pages: pages,
		},
	}, nil
}
