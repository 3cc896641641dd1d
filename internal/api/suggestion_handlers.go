package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/openlove-social/openlove/internal/middleware"
	"github.com/openlove-social/openlove/internal/suggest"
)

// SuggestionHandlers holds dependencies for the follow suggestion endpoint.
type SuggestionHandlers struct {
	ranker  *suggest.Ranker
	metrics *middleware.Metrics
}

// NewSuggestionHandlers creates a new SuggestionHandlers instance.
func NewSuggestionHandlers(ranker *suggest.Ranker, metrics *middleware.Metrics) *SuggestionHandlers {
	return &SuggestionHandlers{
		ranker:  ranker,
		metrics: metrics,
	}
}

// SuggestionsResponse represents the response for the suggestion endpoint.
type SuggestionsResponse struct {
	Suggestions []suggest.Suggestion `json:"suggestions"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	Count       int                  `json:"count"`
}

// Suggestions handles GET /suggestions. Requires authentication: the
// requester comes from the token, never from a query parameter.
//
// Query parameters:
//   - radius_km: location strategy radius (default 50)
//   - page, limit: pagination (defaults 1 and 20, limit capped at 50)
func (h *SuggestionHandlers) Suggestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeUnauthorized)
		WriteError(w, ctx, http.StatusUnauthorized, ErrCodeUnauthorized, "Authentication required")
		return
	}

	query := r.URL.Query()
	params := suggest.Params{}

	var ok bool
	params.Page, ok = parsePositiveInt(w, r, query.Get("page"), 1, "page")
	if !ok {
		return
	}
	params.Limit, ok = parsePositiveInt(w, r, query.Get("limit"), DefaultPageLimit, "limit")
	if !ok {
		return
	}
	if params.Limit > MaxPageLimit {
		params.Limit = MaxPageLimit
	}

	if radiusStr := query.Get("radius_km"); radiusStr != "" {
		radius, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil {
			writeValidationError(w, r, "Invalid radius_km")
			return
		}
		params.RadiusKm = radius
	}

	suggestions, err := h.ranker.Suggest(r.Context(), userID, params, time.Now().UTC())
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.IncRankingSection("suggestions", "served")
	}

	WriteJSON(w, r.Context(), http.StatusOK, SuggestionsResponse{
		Suggestions: suggestions,
		Page:        params.Page,
		Limit:       params.Limit,
		Count:       len(suggestions),
	})
}
