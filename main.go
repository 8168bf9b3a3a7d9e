package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	appLogger "github.com/gorodgid/go-route-planner/app/logger"
	"github.com/gorodgid/go-route-planner/app/observability/metrics"
	"github.com/gorodgid/go-route-planner/app/tracer"
	"github.com/gorodgid/go-route-planner/config"
	"github.com/gorodgid/go-route-planner/internal/api/route"
	"github.com/gorodgid/go-route-planner/internal/catalog"
	api "github.com/gorodgid/go-route-planner/internal/router"
	"github.com/gorodgid/go-route-planner/internal/scoring"
	"github.com/gorodgid/go-route-planner/internal/semantic"
	"github.com/gorodgid/go-route-planner/internal/textnorm"
	"github.com/gorodgid/go-route-planner/internal/travel"
)

func main() {
	// --- Initial Loading ---
	// Use standard log until slog is configured, in case godotenv fails
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	// --- Logger Setup ---
	logger := setupLogger()
	slog.SetDefault(logger)

	// --- Application Context & Shutdown ---
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Observability ---
	tracer.InitTracingAndMetrics(cfg.Metrics.Port)
	metrics.InitAppMetrics()

	// --- Catalog & Recommendation Core ---
	// Everything below is loaded once and read-only afterwards. Missing data
	// files degrade the relevant capability instead of failing startup.
	store := catalog.Load(catalog.Files{
		Places:            cfg.DataPath(cfg.Data.Places),
		FoodPlaces:        cfg.DataPath(cfg.Data.FoodPlaces),
		Synonyms:          cfg.DataPath(cfg.Data.Synonyms),
		FoodSynonyms:      cfg.DataPath(cfg.Data.FoodSynonyms),
		CategoryTimes:     cfg.DataPath(cfg.Data.CategoryTimes),
		FoodCategoryTimes: cfg.DataPath(cfg.Data.FoodCategoryTimes),
		FoodCategories:    cfg.DataPath(cfg.Data.FoodCategories),
	}, logger)

	normalizer := textnorm.New(store.Synonyms())
	scorer := scoring.New(normalizer)

	var encoder semantic.QueryEncoder
	geminiEncoder, err := semantic.NewGeminiEncoder(ctx, os.Getenv("GEMINI_API_KEY"), cfg.Embedding.Timeout)
	if err != nil {
		logger.Warn("query encoder unavailable, semantic fallback will be disabled", slog.Any("error", err))
	} else {
		encoder = geminiEncoder
	}
	fallback := semantic.New(cfg.DataPath(cfg.Data.EmbeddingIndex), encoder, store.Sightseeing(), logger)

	estimator := travel.NewMatrixEstimator(
		os.Getenv("TWOGIS_API_KEY"),
		cfg.Routing.BaseURL,
		cfg.Routing.Timeout,
		cfg.Routing.CacheTTL,
		logger,
	)

	routeService := route.NewServiceImpl(store, normalizer, scorer, fallback, estimator, logger)
	routeHandler := route.NewHandler(routeService, logger)

	// --- Router Setup ---
	mainRouter := api.SetupRouter(&api.Config{
		RouteHandler: routeHandler,
	})

	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appLogger.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)
	router.Use(middleware.Timeout(cfg.Server.Timeout))
	router.Use(middleware.Compress(5, "application/json"))
	router.Mount("/", mainRouter)

	// --- HTTP Server Setup ---
	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	// --- Start Server Goroutine ---
	go func() {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", slog.Any("error", err))
			cancel()
		}
	}()

	// --- Wait for Shutdown Signal ---
	<-ctx.Done()

	// --- Graceful Shutdown ---
	logger.Info("Shutdown signal received, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}

	logger.Info("Application shut down complete.")
}

// setupLogger configures and returns the application logger.
func setupLogger() *slog.Logger {
	var logger *slog.Logger
	env := os.Getenv("APP_ENV")

	if env == "development" || env == "" { // Default to development if not set
		// Colored logs for development
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		logger = slog.New(tint.NewHandler(os.Stdout, tintOpts))
		log.Println("Initialized development logger (tint)")
	} else {
		// JSON logs for production or other environments
		jsonOpts := &slog.HandlerOptions{
			Level:     slog.LevelInfo,
			AddSource: false,
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
		log.Println("Initialized production logger (JSON)")
	}
	return logger
}
