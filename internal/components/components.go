package components

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/priyanshu3301/civic-report-backend/internal/api"
	"github.com/priyanshu3301/civic-report-backend/internal/config"
	"github.com/priyanshu3301/civic-report-backend/internal/domain"
	"github.com/priyanshu3301/civic-report-backend/internal/geo"
	"github.com/priyanshu3301/civic-report-backend/internal/media"
	"github.com/priyanshu3301/civic-report-backend/internal/redis"
	"github.com/priyanshu3301/civic-report-backend/internal/service"
	"github.com/priyanshu3301/civic-report-backend/internal/storage/postgres"
)

const hydratePageSize = 500

type Components struct {
	logger     *slog.Logger
	HttpServer *api.Server
	Postgres   *postgres.Postgres
	Redis      *redis.Redis
	MediaStore *media.S3Store
}

func InitComponents(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	logger.Info("initializing postgres")
	storage, err := postgres.NewPostgres(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to init postgres", slog.Any("error", err))
		return nil, fmt.Errorf("failed to init postgres: %w", err)
	}

	logger.Info("initializing redis")
	redisClient, err := redis.NewRedis(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init redis: %w", err)
	}
	statsCache := redis.NewStatsCache(redisClient)

	logger.Info("initializing media store")
	transcoder := media.NewFFmpegTranscoder(cfg.Media.FFmpegPath)
	mediaStore, err := media.NewS3Store(ctx, cfg.S3, cfg.Media, transcoder, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init media store: %w", err)
	}

	spatial, mirror, err := setupSpatialIndex(ctx, cfg, storage, logger)
	if err != nil {
		return nil, err
	}

	reportSvc := service.NewReportService(storage.Reports(), mediaStore, mirror, logger)
	nearbySvc := service.NewNearbyService(spatial, logger)
	querySvc := service.NewQueryService(storage.Queries(), logger)
	statsSvc := service.NewStatsService(storage.Stats(), statsCache, cfg.Redis.StatsTTL, logger)

	svc := service.NewService(reportSvc, nearbySvc, querySvc, statsSvc)

	httpServer := api.NewServer(cfg, logger, svc)
	logger.Info("initialized server")

	return &Components{
		logger:     logger,
		HttpServer: httpServer,
		Postgres:   storage,
		Redis:      redisClient,
		MediaStore: mediaStore,
	}, nil
}

// setupSpatialIndex picks the proximity backend. PostGIS is the default;
// the in-memory s2 index is hydrated from the database at startup, kept
// current by the report service through the returned mirror, and suits
// small single-instance deployments.
func setupSpatialIndex(ctx context.Context, cfg *config.Config, storage *postgres.Postgres, logger *slog.Logger) (service.SpatialIndex, service.SpatialIndexMirror, error) {
	if cfg.GeoIndex != "memory" {
		return storage.Nearby(), nil, nil
	}

	ix := geo.NewMemoryIndex()
	loaded, err := hydrateSpatialIndex(ctx, ix, storage.Queries())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hydrate spatial index: %w", err)
	}
	logger.Info("hydrated in-memory spatial index", slog.Int("reports", loaded))
	return ix, ix, nil
}

func hydrateSpatialIndex(ctx context.Context, ix *geo.MemoryIndex, queries postgres.QueryRepository) (int, error) {
	loaded := 0
	for page := 1; ; page++ {
		reports, total, err := queries.List(ctx, domain.ListReportsRequest{
			Page:   page,
			Limit:  hydratePageSize,
			SortBy: "created_at",
		})
		if err != nil {
			return loaded, err
		}
		for _, r := range reports {
			ix.Upsert(domain.ReportNearby{
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
		loaded += len(reports)
		if int64(loaded) >= total || len(reports) == 0 {
			return loaded, nil
		}
	}
}

func SetupLogger(env string) *slog.Logger {
	switch env {
	case "local":
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	case "dev":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default:
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	}
}

func (c *Components) ShutdownAll() {
	start := time.Now()
	c.logger.Info("component shutdown started")

	c.Postgres.Pool.Close()
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.logger.Error("redis close failed", slog.String("err", err.Error()))
		}
	}

	c.logger.Info("all components stopped",
		slog.Duration("latency", time.Since(start)))
}
