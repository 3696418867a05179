package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/academic-records-api/api/swagger"
	"github.com/noah-isme/academic-records-api/internal/handler"
	"github.com/noah-isme/academic-records-api/internal/middleware"
	"github.com/noah-isme/academic-records-api/internal/models"
	"github.com/noah-isme/academic-records-api/internal/repository"
	"github.com/noah-isme/academic-records-api/internal/service"
	"github.com/noah-isme/academic-records-api/pkg/config"
	"github.com/noah-isme/academic-records-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/academic-records-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/academic-records-api/pkg/middleware/requestid"
)

// @title Academic Records API
// @version 1.0.0
// @description Results, sections and students administration
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	store, closeStore, err := repository.OpenCollectionStore(ctx, cfg, metricsSvc, logr)
	if err != nil {
		logr.Fatal("failed to open collection store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer func() {
		if err := closeStore(); err != nil {
			logr.Warn("failed to close collection store", zap.Error(err))
		}
	}()

	deps := service.DepsFromConfig(cfg, store, metricsSvc, logr)
	views := service.NewViews(deps, cfg.Views.IdleTTL, metricsSvc, logr)
	defer views.CloseAll()
	go func() {
		if err := views.Run(ctx, cfg.Views.SweepInterval); err != nil {
			logr.Warn("view sweeper stopped", zap.Error(err))
		}
	}()

	exports := service.NewExportService(logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc, func(ctx context.Context) error {
		return repository.Ping(ctx, store, models.CollectionResults)
	})
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", metricsHandler.Prometheus)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	handler.NewResultHandler(views.Results, exports).Register(api.Group("/results"))
	handler.NewSectionHandler(views.Sections, exports).Register(api.Group("/sections"))
	handler.NewStudentHandler(views.Students, exports).Register(api.Group("/students"))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("server forced shutdown", zap.Error(err))
	}
}
