package post

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the post data operations the feed and the trending
// ranker read. Implementations must be safe for concurrent use.
type Repository interface {
	// Create inserts a new post with a generated UUID.
	Create(ctx context.Context, p *Post) error

	// Update updates an existing post's text, labels, and counts.
	Update(ctx context.Context, p *Post) error

	// Delete soft-deletes a post by setting deleted_at.
	Delete(ctx context.Context, id string) error

	// GetByID retrieves a post by id, excluding soft-deleted posts.
	GetByID(ctx context.Context, id string) (*Post, error)

	// ListPublicSince returns rankable posts created at or after the given
	// time. This is the trending window fetch; ordering is unspecified.
	ListPublicSince(ctx context.Context, since time.Time) ([]*Post, error)

	// ListRecentByAuthor returns up to limit rankable posts by the author,
	// newest first. Used for suggestion previews.
	ListRecentByAuthor(ctx context.Context, authorID string, limit int) ([]*Post, error)

	// ListFeed returns rankable posts with cursor-based pagination,
	// ordered created_at DESC, id ASC. A nil cursor starts from the most
	// recent post. Returns posts, next cursor (nil if no more), and error.
	ListFeed(ctx context.Context, limit int, cursor *FeedCursor) ([]*Post, *FeedCursor, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
// Thread-safe via RWMutex.
type InMemoryRepository struct {
	mu    sync.RWMutex
	posts map[string]*Post
}

// NewInMemoryRepository creates a new in-memory post repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		posts: make(map[string]*Post),
	}
}

// Create inserts a new post with a generated UUID.
func (r *InMemoryRepository) Create(ctx context.Context, p *Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.Visibility == "" {
		p.Visibility = VisibilityPublic
	}

	postCopy := *p
	r.posts[p.ID] = &postCopy

	return nil
}

// Update updates an existing post's mutable fields.
func (r *InMemoryRepository) Update(ctx context.Context, p *Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.posts[p.ID]
	if !ok {
		return ErrPostNotFound
	}
	if existing.DeletedAt != nil {
		return ErrPostDeleted
	}

	existing.Text = p.Text
	existing.Labels = p.Labels
	existing.Visibility = p.Visibility
	existing.LikeCount = p.LikeCount
	existing.CommentCount = p.CommentCount
	existing.ShareCount = p.ShareCount
	existing.UpdatedAt = time.Now()

	return nil
}

// Delete soft-deletes a post.
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[id]
	if !ok {
		return ErrPostNotFound
	}
	if p.DeletedAt != nil {
		// Already deleted - treat as not found for idempotency.
		return ErrPostNotFound
	}

	now := time.Now()
	p.DeletedAt = &now

	return nil
}

// GetByID retrieves a post by id, excluding soft-deleted posts.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.posts[id]
	if !ok || p.DeletedAt != nil {
		return nil, ErrPostNotFound
	}

	postCopy := *p
	return &postCopy, nil
}

// ListPublicSince returns rankable posts created at or after since.
func (r *InMemoryRepository) ListPublicSince(ctx context.Context, since time.Time) ([]*Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []*Post
	for _, p := range r.posts {
		if !p.Rankable() {
			continue
		}
		if p.CreatedAt.Before(since) {
			continue
		}
		postCopy := *p
		results = append(results, &postCopy)
	}
	return results, nil
}

// ListRecentByAuthor returns up to limit rankable posts by the author,
// newest first.
func (r *InMemoryRepository) ListRecentByAuthor(ctx context.Context, authorID string, limit int) ([]*Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var candidates []*Post
	for _, p := range r.posts {
		if !p.Rankable() || p.AuthorID != authorID {
			continue
		}
		candidates = append(candidates, p)
	}

	sortPostsByCreatedDesc(candidates)

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	copies := make([]*Post, len(candidates))
	for i, p := range candidates {
		postCopy := *p
		copies[i] = &postCopy
	}
	return copies, nil
}

// ListFeed returns rankable posts with cursor-based pagination.
func (r *InMemoryRepository) ListFeed(ctx context.Context, limit int, cursor *FeedCursor) ([]*Post, *FeedCursor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var candidates []*Post
	for _, p := range r.posts {
		if !p.Rankable() {
			continue
		}

		// Apply cursor filter: in (created_at DESC, id ASC) order, items
		// after the cursor are strictly older, or same-instant with a
		// greater id.
		if cursor != nil {
			if p.CreatedAt.After(cursor.CreatedAt) {
				continue
			}
			if p.CreatedAt.Equal(cursor.CreatedAt) && p.ID <= cursor.ID {
				continue
			}
		}

		candidates = append(candidates, p)
	}

	sortPostsByCreatedDesc(candidates)

	var results []*Post
	var nextCursor *FeedCursor

	if len(candidates) > limit {
		results = candidates[:limit]
		lastPost := results[len(results)-1]
		nextCursor = &FeedCursor{
			CreatedAt: lastPost.CreatedAt,
			ID:        lastPost.ID,
		}
	} else {
		results = candidates
	}

	copies := make([]*Post, len(results))
	for i, p := range results {
		postCopy := *p
		copies[i] = &postCopy
	}

	return copies, nextCursor, nil
}

// sortPostsByCreatedDesc sorts posts by created_at DESC, then id ASC for
// tie-breaking, giving stable ordering for cursor pagination.
func sortPostsByCreatedDesc(posts []*Post) {
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt.After(posts[j].CreatedAt) {
			return true
		}
		if posts[i].CreatedAt.Before(posts[j].CreatedAt) {
			return false
		}
		return posts[i].ID < posts[j].ID
	})
}
