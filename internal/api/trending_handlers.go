package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/openlove-social/openlove/internal/middleware"
	"github.com/openlove-social/openlove/internal/trending"
)

// Pagination defaults shared by the ranking endpoints.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 50
)

// defaultTrendingRadiusKm applies when the requester sends coordinates
// without a radius.
const defaultTrendingRadiusKm = 50.0

// TrendingHandlers holds dependencies for the trending endpoint.
type TrendingHandlers struct {
	ranker  *trending.Ranker
	metrics *middleware.Metrics
}

// NewTrendingHandlers creates a new TrendingHandlers instance. metrics may
// be nil in tests.
func NewTrendingHandlers(ranker *trending.Ranker, metrics *middleware.Metrics) *TrendingHandlers {
	return &TrendingHandlers{
		ranker:  ranker,
		metrics: metrics,
	}
}

// TrendingResponse represents the response for the trending endpoint.
type TrendingResponse struct {
	Type        string           `json:"type"`
	Period      string           `json:"period"`
	Page        int              `json:"page"`
	Limit       int              `json:"limit"`
	GeneratedAt time.Time        `json:"generated_at"`
	Result      *trending.Result `json:"result"`
}

// Trending handles GET /trending.
//
// Query parameters:
//   - type: posts | users | hashtags | topics | all (default all)
//   - period: 1h | 24h | 7d | 30d (default 24h)
//   - lat, lng: requester coordinates for proximity boosting (optional,
//     must appear together)
//   - radius_km: proximity radius, requires lat/lng
//   - page, limit: pagination (defaults 1 and 20, limit capped at 50)
func (h *TrendingHandlers) Trending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	params, ok := h.parseParams(w, r)
	if !ok {
		return
	}

	now := time.Now().UTC()
	result, err := h.ranker.RankAll(r.Context(), params, now)
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.IncRankingSection("trending", "served")
	}

	WriteJSON(w, r.Context(), http.StatusOK, TrendingResponse{
		Type:        params.Type,
		Period:      params.Period,
		Page:        params.Page,
		Limit:       params.Limit,
		GeneratedAt: now,
		Result:      result,
	})
}

func (h *TrendingHandlers) parseParams(w http.ResponseWriter, r *http.Request) (trending.Params, bool) {
	query := r.URL.Query()

	params := trending.Params{
		Type:   query.Get("type"),
		Period: query.Get("period"),
	}
	if params.Type == "" {
		params.Type = trending.TypeAll
	}
	if params.Period == "" {
		params.Period = trending.Period24h
	}

	var ok bool
	params.Page, ok = parsePositiveInt(w, r, query.Get("page"), 1, "page")
	if !ok {
		return params, false
	}
	params.Limit, ok = parsePositiveInt(w, r, query.Get("limit"), DefaultPageLimit, "limit")
	if !ok {
		return params, false
	}
	if params.Limit > MaxPageLimit {
		params.Limit = MaxPageLimit
	}

	latStr, lngStr := query.Get("lat"), query.Get("lng")
	if latStr != "" || lngStr != "" {
		if latStr == "" || lngStr == "" {
			writeValidationError(w, r, "lat and lng must be provided together")
			return params, false
		}
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			writeValidationError(w, r, "Invalid lat")
			return params, false
		}
		lng, err := strconv.ParseFloat(lngStr, 64)
		if err != nil {
			writeValidationError(w, r, "Invalid lng")
			return params, false
		}
		params.Origin = &trending.Origin{Latitude: lat, Longitude: lng}
	}

	if radiusStr := query.Get("radius_km"); radiusStr != "" {
		radius, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil {
			writeValidationError(w, r, "Invalid radius_km")
			return params, false
		}
		params.RadiusKm = radius
	}
	if params.Origin != nil && params.RadiusKm == 0 {
		params.RadiusKm = defaultTrendingRadiusKm
	}

	return params, true
}

// parsePositiveInt parses an optional positive integer query parameter,
// writing a validation error on bad input.
func parsePositiveInt(w http.ResponseWriter, r *http.Request, raw string, def int, name string) (int, bool) {
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		writeValidationError(w, r, "Invalid "+name+": must be a positive integer")
		return 0, false
	}
	return v, true
}

func writeValidationError(w http.ResponseWriter, r *http.Request, message string) {
	ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
	WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, message)
}
