package api

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openlove-social/openlove/internal/auth"
	"github.com/openlove-social/openlove/internal/middleware"
)

// RouterConfig holds everything the router wires together. Metrics,
// RateLimitStore, and Registry may be nil in tests.
type RouterConfig struct {
	Trending    *TrendingHandlers
	Suggestions *SuggestionHandlers
	Swipes      *SwipeHandlers
	Feed        *FeedHandlers
	Health      *HealthHandlers

	JWTService     *auth.JWTService
	Logger         *slog.Logger
	Metrics        *middleware.Metrics
	RateLimitStore middleware.RateLimitStore
	Registry       *prometheus.Registry
}

// NewRouter builds the full HTTP handler: routes plus the middleware
// chain RequestID -> Logging -> HTTPMetrics -> (per-route limits/auth).
//
// Trending and the feed are public and rate limited by IP. Suggestions
// and swipes require a bearer token and are rate limited per user.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	public := func(h http.HandlerFunc, limit middleware.RateLimitConfig) http.Handler {
		var handler http.Handler = h
		if cfg.RateLimitStore != nil {
			handler = middleware.RateLimiter(cfg.RateLimitStore, limit, middleware.IPKeyFunc(), cfg.Metrics)(handler)
		}
		return handler
	}

	authed := func(h http.HandlerFunc, limit middleware.RateLimitConfig) http.Handler {
		var handler http.Handler = h
		if cfg.RateLimitStore != nil {
			handler = middleware.RateLimiter(cfg.RateLimitStore, limit, middleware.UserKeyFunc(), cfg.Metrics)(handler)
		}
		if cfg.JWTService != nil {
			handler = middleware.Authenticate(cfg.JWTService)(handler)
		}
		return handler
	}

	mux.Handle("/trending", public(cfg.Trending.Trending, middleware.DefaultRankingLimit()))
	mux.Handle("/feed", public(cfg.Feed.Feed, middleware.DefaultGlobalLimit()))

	mux.Handle("/suggestions", authed(cfg.Suggestions.Suggestions, middleware.DefaultRankingLimit()))
	mux.Handle("/swipes", authed(cfg.Swipes.Swipe, middleware.DefaultSwipeLimit()))
	mux.Handle("/swipes/rewind", authed(cfg.Swipes.Rewind, middleware.DefaultSwipeLimit()))
	mux.Handle("/swipes/boost", authed(cfg.Swipes.Boost, middleware.DefaultSwipeLimit()))

	mux.HandleFunc("/health", cfg.Health.Health)
	mux.HandleFunc("/ready", cfg.Health.Ready)

	if cfg.Registry != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeNotFound)
			WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "The requested resource was not found")
			return
		}
		WriteJSON(w, r.Context(), http.StatusOK, map[string]string{
			"service": "openlove-ranking",
		})
	})

	var handler http.Handler = mux
	if cfg.Metrics != nil {
		handler = middleware.HTTPMetrics(cfg.Metrics)(handler)
	}
	if cfg.Logger != nil {
		handler = middleware.Logging(cfg.Logger)(handler)
	}
	handler = middleware.RequestID(handler)
	return handler
}
