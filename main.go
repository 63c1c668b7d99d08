package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/seo-optimizer/forecaster/api"
	"github.com/seo-optimizer/forecaster/config"
	"github.com/seo-optimizer/forecaster/logging"
	"github.com/seo-optimizer/forecaster/metrics"
	"github.com/seo-optimizer/forecaster/middleware"
	"github.com/seo-optimizer/forecaster/planner"
	"github.com/seo-optimizer/forecaster/settings"
	"github.com/seo-optimizer/forecaster/stats"
)

// statsSaveEvery persists visitor statistics every N requests
const statsSaveEvery = 100

func configPath() string {
	if p := os.Getenv("CONFIG_FILE"); p != "" {
		return p
	}
	return "config.yaml"
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func main() {
	// Load environment configuration
	config.LoadEnv()

	cfg, err := config.Load(configPath())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure logger")
	}
	log.Logger = logger

	gin.SetMode(cfg.Server.Mode)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("Failed to create data directory")
	}

	// Initialize services
	usage, err := stats.NewStorage(cfg.DataDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open usage storage")
	}
	defer usage.Close()

	// Drop months past retention and persist the result before serving
	usage.Cleanup(cfg.Stats.RetainMonths)
	if err := usage.Flush(); err != nil {
		logger.Warn().Err(err).Msg("Failed to persist usage statistics")
	}

	visitors, err := logging.NewStatistics(filepath.Join(cfg.DataDir, "statistics.json"))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load statistics")
	}

	store, err := settings.NewStore(cfg.DataDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open settings store")
	}

	recorder := metrics.New(prometheus.DefaultRegisterer)

	forecaster := planner.New(
		planner.WithCacheTTL(cfg.Cache.TTL),
		planner.WithMaxCacheSize(cfg.Cache.MaxEntries),
		planner.WithCleanupInterval(cfg.Cache.CleanupInterval),
		planner.WithStats(usage),
		planner.WithMetrics(recorder),
	)
	defer forecaster.Close()

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.Rate, cfg.RateLimit.Burst)

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.ErrorHandler(logger))
	r.Use(middleware.Metrics(recorder))
	r.Use(cors())
	r.Use(rateLimiter.RateLimit())
	r.Use(middleware.StatsMiddleware(visitors, statsSaveEvery, logger))

	api.New(forecaster, store, visitors, usage, cfg.DevMode, logger).Register(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Bool("dev_mode", cfg.DevMode).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Forced shutdown")
	}

	if err := visitors.Save(); err != nil {
		logger.Error().Err(err).Msg("Failed to save statistics")
	}
}
