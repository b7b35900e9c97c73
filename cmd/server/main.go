package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"log/slog"

	"github.com/timearc/timearc/internal/api"
	"github.com/timearc/timearc/internal/auth"
	"github.com/timearc/timearc/internal/categorize"
	"github.com/timearc/timearc/internal/config"
	"github.com/timearc/timearc/internal/database"
	"github.com/timearc/timearc/internal/logging"
	"github.com/timearc/timearc/internal/metrics"
	"github.com/timearc/timearc/internal/models"
	"github.com/timearc/timearc/internal/server"
	"github.com/timearc/timearc/internal/tracking"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	logger.Info("starting timearc")

	ctx := context.Background()

	logger.Info("opening database", "path", cfg.Database.Path)
	db, err := database.Open(ctx, cfg.Database.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(db, logger); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Create repositories
	eventRepo := database.NewEventRepository(db)
	categoryRepo := database.NewCategoryRepository(db)
	settingsRepo := database.NewSettingsRepository(db)
	userRepo := database.NewUserRepository(db)

	// Seed the local single-user account and its defaults
	passwordHash, err := auth.HashPassword(cfg.Auth.AdminPassword)
	if err != nil {
		logger.Error("failed to hash password", "error", err)
		os.Exit(1)
	}
	user, err := userRepo.EnsureLocalUser(ctx, "local", passwordHash)
	if err != nil {
		logger.Error("failed to ensure local user", "error", err)
		os.Exit(1)
	}
	if err := categoryRepo.EnsureDefaults(ctx, user.ID); err != nil {
		logger.Error("failed to seed default categories", "error", err)
		os.Exit(1)
	}
	if err := settingsRepo.EnsureDefaults(ctx, models.SettingsDefaults()); err != nil {
		logger.Error("failed to seed default settings", "error", err)
		os.Exit(1)
	}

	// Categorization pipeline
	cache := categorize.NewActivityCache(cfg.Pipeline.CacheTTL)
	queue := categorize.NewRequestQueue(cfg.Pipeline.MaxConcurrent, cfg.Pipeline.DelayBetweenRequests, logger)
	providers := categorize.NewSettingsProviderSource(settingsRepo, cfg.Pipeline.RequestTimeout)
	aiCategorizer := categorize.NewAICategorizer(settingsRepo, providers, cache, cfg.Pipeline.RequestTimeout, logger)
	ruleEngine := categorize.NewRuleEngine()

	collector, err := metrics.New()
	if err != nil {
		logger.Error("failed to init metrics", "error", err)
		os.Exit(1)
	}

	pipeline := tracking.NewPipeline(tracking.Deps{
		Events:     eventRepo,
		Categories: categoryRepo,
		Settings:   settingsRepo,
		Users:      userRepo,
		AI:         aiCategorizer,
		Rules:      ruleEngine,
		Cache:      cache,
		Queue:      queue,
		Metrics:    collector,
		Logger:     logger,
	})

	if err := collector.RegisterQueueGauges(pipeline.QueuePending, pipeline.QueueRunning); err != nil {
		logger.Error("failed to register queue gauges", "error", err)
		os.Exit(1)
	}

	// Setup HTTP routes
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := database.HealthCheck(r.Context(), db); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unhealthy"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("/api/info", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"timearc","status":"ready","version":"0.1.0"}`))
	})

	mux.Handle("/metrics", collector.Handler())

	logger.Info("auth configured", "jwt_secret_set", cfg.Auth.JWTSecret != "change-this-secret")

	logger.Info("setting up REST API")
	api.SetupRoutes(mux, api.Deps{
		Pipeline:       pipeline,
		Cache:          cache,
		AI:             aiCategorizer,
		Events:         eventRepo,
		Categories:     categoryRepo,
		Settings:       settingsRepo,
		Users:          userRepo,
		UserID:         user.ID,
		AuthConfig:     cfg.Auth,
		RequestTimeout: cfg.Pipeline.RequestTimeout,
		Logger:         logger,
	})

	srv := server.New(cfg.Server, logger, collector.InstrumentHandler(mux))

	go func() {
		logger.Info("starting server", "port", cfg.Server.Port)
		if err := srv.Start(); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("timearc started successfully")
	logger.Info("API available", "url", fmt.Sprintf("http://127.0.0.1:%s", cfg.Server.Port))

	waitForSignal(logger)

	logger.Info("shutting down")
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	// Let in-flight categorizations land before closing the database.
	pipeline.Wait()

	logger.Info("shutdown complete")
}

func waitForSignal(logger *slog.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	sig := <-c
	logger.Info("received signal", "signal", sig.String())
	signal.Stop(c)
	close(c)
}
