package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/openlove-social/openlove/internal/middleware"
	"github.com/openlove-social/openlove/internal/swipe"
)

// Boost duration bounds. The mobile client sells 30-minute boosts; the
// cap leaves room for promotional bundles.
const (
	defaultBoostDuration = 30 * time.Minute
	maxBoostDuration     = 24 * time.Hour
)

// SwipeHandlers holds dependencies for the swipe endpoints.
type SwipeHandlers struct {
	service *swipe.Service
	metrics *middleware.Metrics
}

// NewSwipeHandlers creates a new SwipeHandlers instance.
func NewSwipeHandlers(service *swipe.Service, metrics *middleware.Metrics) *SwipeHandlers {
	return &SwipeHandlers{
		service: service,
		metrics: metrics,
	}
}

// SwipeRequest represents the request body for POST /swipes.
type SwipeRequest struct {
	TargetID string `json:"target_id"`
	Action   string `json:"action"`
}

// RewindResponse represents the response for POST /swipes/rewind.
type RewindResponse struct {
	Rewound *swipe.Decision `json:"rewound"`
}

// BoostRequest represents the request body for POST /swipes/boost.
type BoostRequest struct {
	DurationMinutes int `json:"duration_minutes"`
}

// BoostResponse represents the response for POST /swipes/boost.
type BoostResponse struct {
	Active    bool      `json:"active"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Swipe handles POST /swipes. Records a like, super like, or pass against
// the target and reports whether it created a match.
func (h *SwipeHandlers) Swipe(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requirePost(w, r)
	if !ok {
		return
	}

	var req SwipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, r, "Invalid JSON body")
		return
	}
	if req.TargetID == "" {
		writeValidationError(w, r, "target_id is required")
		return
	}

	result, err := h.service.Swipe(r.Context(), userID, req.TargetID, req.Action, time.Now().UTC())
	if err != nil {
		h.countSwipe(req.Action, err)
		WriteDomainError(w, r, err)
		return
	}

	if h.metrics != nil {
		outcome := "recorded"
		if result.Matched {
			outcome = "matched"
		}
		h.metrics.IncSwipe(req.Action, outcome)
	}

	WriteJSON(w, r.Context(), http.StatusOK, result)
}

// Rewind handles POST /swipes/rewind. Undoes the actor's most recent
// like or super like and restores the spent allowances.
func (h *SwipeHandlers) Rewind(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requirePost(w, r)
	if !ok {
		return
	}

	rewound, err := h.service.Rewind(r.Context(), userID, time.Now().UTC())
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}

	WriteJSON(w, r.Context(), http.StatusOK, RewindResponse{Rewound: rewound})
}

// Boost handles POST /swipes/boost. Activates a visibility boost for the
// actor; an empty body uses the default duration.
func (h *SwipeHandlers) Boost(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requirePost(w, r)
	if !ok {
		return
	}

	duration := defaultBoostDuration
	var req BoostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.DurationMinutes != 0 {
		duration = time.Duration(req.DurationMinutes) * time.Minute
	}
	if duration <= 0 || duration > maxBoostDuration {
		writeValidationError(w, r, "duration_minutes must be between 1 and 1440")
		return
	}

	expiresAt, err := h.service.ActivateBoost(r.Context(), userID, duration, time.Now().UTC())
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}

	WriteJSON(w, r.Context(), http.StatusOK, BoostResponse{
		Active:    true,
		ExpiresAt: expiresAt,
	})
}

// requirePost enforces the method and returns the authenticated user id.
func (h *SwipeHandlers) requirePost(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.Method != http.MethodPost {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return "", false
	}

	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeUnauthorized)
		WriteError(w, ctx, http.StatusUnauthorized, ErrCodeUnauthorized, "Authentication required")
		return "", false
	}
	return userID, true
}

func (h *SwipeHandlers) countSwipe(action string, err error) {
	if h.metrics == nil {
		return
	}
	if _, code, _ := mapDomainError(err); code == ErrCodeQuotaExceeded {
		h.metrics.IncSwipe(action, "quota_exceeded")
	}
}
