package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/priyanshu3301/civic-report-backend/internal/api/handlers/http/admin"
	"github.com/priyanshu3301/civic-report-backend/internal/api/handlers/http/public"
	"github.com/priyanshu3301/civic-report-backend/internal/api/handlers/http/system"
	"github.com/priyanshu3301/civic-report-backend/internal/config"
	"github.com/priyanshu3301/civic-report-backend/internal/middleware"
	"github.com/priyanshu3301/civic-report-backend/internal/service"
)

type Server struct {
	logger *slog.Logger
	router *chi.Mux
	cfg    config.Config
}

func NewServer(cfg *config.Config, logger *slog.Logger, svc *service.Service) *Server {
	publicHandler := public.NewHandler(logger, cfg.Media, svc.ReportService, svc.NearbyService, svc.QueryService)
	adminHandler := admin.NewHandler(logger, svc.ReportService, svc.QueryService, svc.StatsService)
	systemHandler := system.NewHandler(logger)

	r := InitRouter(cfg, publicHandler, adminHandler, systemHandler, logger)

	return &Server{
		logger: logger,
		router: r,
		cfg:    *cfg,
	}
}

func InitRouter(cfg *config.Config, publicHandler *public.Handler, adminHandler *admin.Handler, systemHandler *system.Handler, logger *slog.Logger) *chi.Mux {
	r := chi.NewMux()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Logger)

	r.Route("/api/v1", func(api chi.Router) {
		// PUBLIC
		api.Group(func(pr chi.Router) {
			pr.Use(middleware.Identity)
			pr.Use(middleware.Limit(10, 20, 5*time.Minute, logger))

			pr.Route("/reports", func(rr chi.Router) {
				rr.Post("/", publicHandler.ReportCreate)
				rr.Get("/", publicHandler.ReportList)
				rr.Get("/nearby", publicHandler.ReportNearby)
				rr.With(middleware.RequireUser).Get("/me", publicHandler.ReportListMine)

				rr.Route("/{id}", func(ir chi.Router) {
					ir.Get("/", publicHandler.ReportGet)
					ir.With(middleware.RequireUser).Post("/upvote", publicHandler.ReportUpvote)
				})
			})
		})

		// ADMIN
		api.Route("/admin", func(ar chi.Router) {
			ar.Use(middleware.APIKeyMiddleware(cfg.APIKey))
			ar.Use(middleware.Identity)
			ar.Use(middleware.RequireAdmin)
			ar.Use(middleware.Limit(2, 5, 10*time.Minute, logger))

			ar.Get("/stats", adminHandler.Dashboard)

			ar.Route("/reports", func(rr chi.Router) {
				rr.Get("/", adminHandler.ReportList)
				rr.Patch("/{id}/status", adminHandler.StatusUpdate)
				rr.Patch("/{id}/reject", adminHandler.Reject)
			})

			ar.Delete("/users/{userID}/reports", adminHandler.UserAnonymize)
		})

		// SYSTEM
		api.Get("/health", systemHandler.SystemHealth)
	})

	return r
}

func (s *Server) Run(ctx context.Context) error {
	port := s.cfg.Http.Port
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         port,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Http.ReadTimeout,
		WriteTimeout: s.cfg.Http.WriteTimeout,
		IdleTimeout:  30 * time.Second,
	}

	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("starting HTTP server",
			slog.String("addr", srv.Addr),
			slog.Duration("read_timeout", s.cfg.Http.ReadTimeout),
			slog.Duration("write_timeout", s.cfg.Http.WriteTimeout),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("ListenAndServe error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server", slog.String("reason", ctx.Err().Error()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Http.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown failed", slog.Any("error", err))
			return err
		}
		return nil

	case err := <-errChan:
		return err
	}
}
