package api

import (
	"log/slog"
	"net/http"

	"github.com/openlove-social/openlove/internal/middleware"
	"github.com/openlove-social/openlove/internal/post"
)

// FeedHandlers holds dependencies for the public feed endpoint.
type FeedHandlers struct {
	posts post.Repository
}

// NewFeedHandlers creates a new FeedHandlers instance.
func NewFeedHandlers(posts post.Repository) *FeedHandlers {
	return &FeedHandlers{posts: posts}
}

// FeedResponse represents the response for the feed endpoint.
type FeedResponse struct {
	Posts      []*post.Post `json:"posts"`
	NextCursor string       `json:"next_cursor,omitempty"`
	Count      int          `json:"count"`
}

// Feed handles GET /feed - the reverse-chronological public feed with
// opaque cursor pagination.
//
// Query parameters:
//   - cursor: opaque token from a previous page (optional)
//   - limit: page size (default 20, capped at 50)
func (h *FeedHandlers) Feed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	query := r.URL.Query()

	limit, ok := parsePositiveInt(w, r, query.Get("limit"), DefaultPageLimit, "limit")
	if !ok {
		return
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	cursor, err := DecodeCursor(query.Get("cursor"))
	if err != nil {
		writeValidationError(w, r, "Invalid cursor")
		return
	}

	posts, next, err := h.posts.ListFeed(r.Context(), limit, cursor)
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}

	response := FeedResponse{
		Posts: posts,
		Count: len(posts),
	}
	if next != nil {
		token, err := EncodeCursor(next)
		if err != nil {
			// The page itself is fine; log and return it without a
			// continuation token.
			slog.ErrorContext(r.Context(), "failed to encode feed cursor", "error", err)
		} else {
			response.NextCursor = token
		}
	}

	WriteJSON(w, r.Context(), http.StatusOK, response)
}
