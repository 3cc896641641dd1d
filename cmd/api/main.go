// Package main is the entry point for the ranking API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/openlove-social/openlove/internal/api"
	"github.com/openlove-social/openlove/internal/auth"
	"github.com/openlove-social/openlove/internal/config"
	"github.com/openlove-social/openlove/internal/db"
	"github.com/openlove-social/openlove/internal/health"
	"github.com/openlove-social/openlove/internal/middleware"
	"github.com/openlove-social/openlove/internal/payment"
	"github.com/openlove-social/openlove/internal/scoring"
	"github.com/openlove-social/openlove/internal/suggest"
	"github.com/openlove-social/openlove/internal/swipe"
	"github.com/openlove-social/openlove/internal/trending"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	help := flag.Bool("help", false, "display help message")
	flag.Parse()

	if *help {
		fmt.Println("OpenLove Ranking API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configPath)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "config", cfg.LogSummary())

	ctx := context.Background()

	// Postgres holds profiles, the social graph, and posts.
	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	profileRepo := db.NewProfileRepository(database)
	postRepo := db.NewPostRepository(database)

	// Redis backs the daily swipe quota counters.
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Error("invalid redis url", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	// Boost tables, optionally overridden by the calibration file.
	// LoadCalibration falls back to defaults on error.
	boosts, err := scoring.LoadCalibration(cfg.CalibrationPath)
	if err != nil {
		logger.Warn("using default boost tables", "error", err)
	}

	metrics := middleware.NewMetrics()
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := metrics.Register(registry); err != nil {
		logger.Error("metrics registration failed", "error", err)
		os.Exit(1)
	}

	trendingRanker := trending.NewRanker(postRepo, profileRepo, boosts.Trending, logger, nil)
	suggestRanker := suggest.NewRanker(profileRepo, postRepo, boosts.Suggestion, logger, nil)

	// Swipe tier resolution goes through Stripe when configured, so a
	// plan change takes effect without waiting for a profile sync.
	var swipeProfiles swipe.ProfileSource = profileRepo
	if cfg.StripeAPIKey != "" {
		resolver := payment.NewResolver(
			payment.NewStripeClient(cfg.StripeAPIKey),
			payment.PriceMapping{
				GoldPriceID:    cfg.StripeGoldPriceID,
				DiamondPriceID: cfg.StripeDiamondPriceID,
				CouplePriceID:  cfg.StripeCouplePriceID,
			},
			logger,
		)
		swipeProfiles = payment.NewTierSource(profileRepo, resolver, logger)
	}

	swipeService := swipe.NewService(
		swipe.NewInMemoryDecisionStore(),
		swipe.NewRedisLimitStore(redisClient),
		swipeProfiles,
		swipe.Config{MatchProbabilityFallback: cfg.MatchProbabilityFallback},
		logger,
	)

	jwtService := auth.NewJWTService(cfg.JWTSecret)

	rateLimitStore := middleware.NewInMemoryRateLimitStore()
	cleanupStop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rateLimitStore.Cleanup()
			case <-cleanupStop:
				return
			}
		}
	}()

	handler := api.NewRouter(api.RouterConfig{
		Trending:    api.NewTrendingHandlers(trendingRanker, metrics),
		Suggestions: api.NewSuggestionHandlers(suggestRanker, metrics),
		Swipes:      api.NewSwipeHandlers(swipeService, metrics),
		Feed:        api.NewFeedHandlers(postRepo),
		Health: api.NewHealthHandlers(api.HealthHandlersConfig{
			DBChecker:    health.NewDBChecker(database),
			RedisChecker: health.NewRedisChecker(redisClient),
		}),
		JWTService:     jwtService,
		Logger:         logger,
		Metrics:        metrics,
		RateLimitStore: rateLimitStore,
		Registry:       registry,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	close(cleanupStop)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
