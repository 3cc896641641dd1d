package profile

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the data operations the rankers need over profiles
// and the social graph. Implementations must be safe for concurrent use.
type Repository interface {
	// Create inserts a new profile with a generated UUID.
	Create(ctx context.Context, p *Profile) error

	// Update updates an existing profile's mutable fields.
	Update(ctx context.Context, p *Profile) error

	// GetByID retrieves a profile by id, excluding soft-deleted profiles.
	GetByID(ctx context.Context, id string) (*Profile, error)

	// GetByIDs retrieves the profiles for the given ids, skipping ids that
	// do not resolve to a live profile.
	GetByIDs(ctx context.Context, ids []string) ([]*Profile, error)

	// Follow records a follow edge from follower to followee at the given time.
	// Re-following is idempotent and keeps the original edge time.
	Follow(ctx context.Context, followerID, followeeID string, at time.Time) error

	// Unfollow removes a follow edge. Removing a missing edge is a no-op.
	Unfollow(ctx context.Context, followerID, followeeID string) error

	// Block records a block edge from blocker to blocked.
	Block(ctx context.Context, blockerID, blockedID string) error

	// Following returns the ids the user follows.
	Following(ctx context.Context, userID string) ([]string, error)

	// Blocked returns the ids the user has blocked.
	Blocked(ctx context.Context, userID string) ([]string, error)

	// IsFollowing reports whether follower follows followee.
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)

	// SecondDegreeFollows returns, for each account followed by someone the
	// user follows, the number of the user's follows that follow it
	// (the mutual-connection count). The user's direct follows and the user
	// themselves are included in the result and must be excluded by callers.
	SecondDegreeFollows(ctx context.Context, userID string) (map[string]int, error)

	// FollowerGainsSince returns, per user id, the number of follow edges
	// gained at or after the given time.
	FollowerGainsSince(ctx context.Context, since time.Time) (map[string]int, error)

	// FollowerCounts returns the followers gained at or after since and the
	// follower count the user had before since.
	FollowerCounts(ctx context.Context, userID string, since time.Time) (gained int, prior int, err error)

	// ListWithLocation returns live profiles that carry coordinates.
	ListWithLocation(ctx context.Context) ([]*Profile, error)

	// ListWithInterests returns live profiles sharing at least one of the
	// given interests.
	ListWithInterests(ctx context.Context, interests []string) ([]*Profile, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
// Thread-safe via RWMutex.
type InMemoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
	follows  map[string]map[string]time.Time // follower -> followee -> edge time
	blocks   map[string]map[string]bool      // blocker -> blocked
}

// NewInMemoryRepository creates a new in-memory profile repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		profiles: make(map[string]*Profile),
		follows:  make(map[string]map[string]time.Time),
		blocks:   make(map[string]map[string]bool),
	}
}

// Create inserts a new profile with a generated UUID.
func (r *InMemoryRepository) Create(ctx context.Context, p *Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

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

	profileCopy := *p
	r.profiles[p.ID] = &profileCopy

	return nil
}

// Update updates an existing profile's mutable fields.
func (r *InMemoryRepository) Update(ctx context.Context, p *Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.profiles[p.ID]
	if !ok {
		return ErrProfileNotFound
	}
	if existing.DeletedAt != nil {
		return ErrProfileDeleted
	}

	existing.Handle = p.Handle
	existing.DisplayName = p.DisplayName
	existing.Verified = p.Verified
	existing.Tier = p.Tier
	existing.Location = p.Location
	existing.Interests = p.Interests
	existing.UpdatedAt = time.Now()

	return nil
}

// GetByID retrieves a profile by id, excluding soft-deleted profiles.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[id]
	if !ok || p.DeletedAt != nil {
		return nil, ErrProfileNotFound
	}

	profileCopy := *p
	return &profileCopy, nil
}

// GetByIDs retrieves the profiles for the given ids, skipping missing ones.
func (r *InMemoryRepository) GetByIDs(ctx context.Context, ids []string) ([]*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]*Profile, 0, len(ids))
	for _, id := range ids {
		p, ok := r.profiles[id]
		if !ok || p.DeletedAt != nil {
			continue
		}
		profileCopy := *p
		results = append(results, &profileCopy)
	}
	return results, nil
}

// Follow records a follow edge. Re-following keeps the original edge time
// so follower-gain windows are not skewed by repeat follows.
func (r *InMemoryRepository) Follow(ctx context.Context, followerID, followeeID string, at time.Time) error {
	if followerID == followeeID {
		return ErrSelfFollow
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	edges, ok := r.follows[followerID]
	if !ok {
		edges = make(map[string]time.Time)
		r.follows[followerID] = edges
	}
	if _, exists := edges[followeeID]; !exists {
		edges[followeeID] = at
	}
	return nil
}

// Unfollow removes a follow edge.
func (r *InMemoryRepository) Unfollow(ctx context.Context, followerID, followeeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if edges, ok := r.follows[followerID]; ok {
		delete(edges, followeeID)
	}
	return nil
}

// Block records a block edge.
func (r *InMemoryRepository) Block(ctx context.Context, blockerID, blockedID string) error {
	if blockerID == blockedID {
		return ErrSelfBlock
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	blocked, ok := r.blocks[blockerID]
	if !ok {
		blocked = make(map[string]bool)
		r.blocks[blockerID] = blocked
	}
	blocked[blockedID] = true
	return nil
}

// Following returns the ids the user follows.
func (r *InMemoryRepository) Following(ctx context.Context, userID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	edges := r.follows[userID]
	ids := make([]string, 0, len(edges))
	for id := range edges {
		ids = append(ids, id)
	}
	return ids, nil
}

// Blocked returns the ids the user has blocked.
func (r *InMemoryRepository) Blocked(ctx context.Context, userID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	blocked := r.blocks[userID]
	ids := make([]string, 0, len(blocked))
	for id := range blocked {
		ids = append(ids, id)
	}
	return ids, nil
}

// IsFollowing reports whether follower follows followee.
func (r *InMemoryRepository) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	edges, ok := r.follows[followerID]
	if !ok {
		return false, nil
	}
	_, follows := edges[followeeID]
	return follows, nil
}

// SecondDegreeFollows counts, per candidate, how many of the user's follows
// follow that candidate.
func (r *InMemoryRepository) SecondDegreeFollows(ctx context.Context, userID string) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int)
	for followee := range r.follows[userID] {
		for candidate := range r.follows[followee] {
			counts[candidate]++
		}
	}
	return counts, nil
}

// FollowerGainsSince returns, per user id, the follow edges gained at or
// after the given time.
func (r *InMemoryRepository) FollowerGainsSince(ctx context.Context, since time.Time) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	gains := make(map[string]int)
	for _, edges := range r.follows {
		for followee, at := range edges {
			if !at.Before(since) {
				gains[followee]++
			}
		}
	}
	return gains, nil
}

// FollowerCounts returns followers gained at or after since, and the
// follower count held before since.
func (r *InMemoryRepository) FollowerCounts(ctx context.Context, userID string, since time.Time) (int, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var gained, prior int
	for _, edges := range r.follows {
		at, ok := edges[userID]
		if !ok {
			continue
		}
		if at.Before(since) {
			prior++
		} else {
			gained++
		}
	}
	return gained, prior, nil
}

// ListWithLocation returns live profiles that carry coordinates.
func (r *InMemoryRepository) ListWithLocation(ctx context.Context) ([]*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []*Profile
	for _, p := range r.profiles {
		if p.DeletedAt != nil || p.Location == nil {
			continue
		}
		profileCopy := *p
		results = append(results, &profileCopy)
	}
	return results, nil
}

// ListWithInterests returns live profiles sharing at least one interest.
func (r *InMemoryRepository) ListWithInterests(ctx context.Context, interests []string) ([]*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []*Profile
	for _, p := range r.profiles {
		if p.DeletedAt != nil {
			continue
		}
		if len(p.SharedInterests(interests)) == 0 {
			continue
		}
		profileCopy := *p
		results = append(results, &profileCopy)
	}
	return results, nil
}
