package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/openlove-social/openlove/internal/profile"
)

const profileColumns = `id, handle, display_name, verified, tier,
		latitude, longitude, interests, stripe_customer_id,
		created_at, updated_at, deleted_at`

// ProfileRepository is the PostgreSQL implementation of profile.Repository.
type ProfileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a Postgres-backed profile repository.
func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

var _ profile.Repository = (*ProfileRepository)(nil)

// Create inserts a new profile with a generated UUID.
func (r *ProfileRepository) Create(ctx context.Context, p *profile.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	now := time.Now()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	lat, lng := locationValues(p)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (id, handle, display_name, verified, tier,
			latitude, longitude, interests, stripe_customer_id,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.Handle, p.DisplayName, p.Verified, p.Tier,
		lat, lng, pq.Array(p.Interests), p.StripeCustomerID,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting profile: %w", err)
	}
	return nil
}

// Update updates an existing profile's mutable fields.
func (r *ProfileRepository) Update(ctx context.Context, p *profile.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	p.UpdatedAt = time.Now()
	lat, lng := locationValues(p)
	res, err := r.db.ExecContext(ctx, `
		UPDATE profiles
		SET handle = $2, display_name = $3, verified = $4, tier = $5,
			latitude = $6, longitude = $7, interests = $8,
			stripe_customer_id = $9, updated_at = $10
		WHERE id = $1 AND deleted_at IS NULL`,
		p.ID, p.Handle, p.DisplayName, p.Verified, p.Tier,
		lat, lng, pq.Array(p.Interests), p.StripeCustomerID, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	return requireRow(res, profile.ErrProfileNotFound)
}

// GetByID retrieves a profile by id, excluding soft-deleted profiles.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*profile.Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE id = $1 AND deleted_at IS NULL`,
		id,
	)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, profile.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}
	return p, nil
}

// GetByIDs retrieves the profiles for the given ids, skipping ids that do
// not resolve to a live profile.
func (r *ProfileRepository) GetByIDs(ctx context.Context, ids []string) ([]*profile.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE id = ANY($1) AND deleted_at IS NULL`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("fetching profiles: %w", err)
	}
	return collectProfiles(rows)
}

// Follow records a follow edge. Re-following keeps the original edge time.
func (r *ProfileRepository) Follow(ctx context.Context, followerID, followeeID string, at time.Time) error {
	if followerID == followeeID {
		return profile.ErrSelfFollow
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO follows (follower_id, followee_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (follower_id, followee_id) DO NOTHING`,
		followerID, followeeID, at,
	)
	if err != nil {
		return fmt.Errorf("inserting follow: %w", err)
	}
	return nil
}

// Unfollow removes a follow edge. Removing a missing edge is a no-op.
func (r *ProfileRepository) Unfollow(ctx context.Context, followerID, followeeID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`,
		followerID, followeeID,
	)
	if err != nil {
		return fmt.Errorf("deleting follow: %w", err)
	}
	return nil
}

// Block records a block edge.
func (r *ProfileRepository) Block(ctx context.Context, blockerID, blockedID string) error {
	if blockerID == blockedID {
		return profile.ErrSelfBlock
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO blocks (blocker_id, blocked_id, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (blocker_id, blocked_id) DO NOTHING`,
		blockerID, blockedID,
	)
	if err != nil {
		return fmt.Errorf("inserting block: %w", err)
	}
	return nil
}

// Following returns the ids the user follows.
func (r *ProfileRepository) Following(ctx context.Context, userID string) ([]string, error) {
	return r.collectIDs(ctx, `
		SELECT followee_id FROM follows WHERE follower_id = $1`, userID)
}

// Blocked returns the ids the user has blocked.
func (r *ProfileRepository) Blocked(ctx context.Context, userID string) ([]string, error) {
	return r.collectIDs(ctx, `
		SELECT blocked_id FROM blocks WHERE blocker_id = $1`, userID)
}

// IsFollowing reports whether follower follows followee.
func (r *ProfileRepository) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2
		)`,
		followerID, followeeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking follow: %w", err)
	}
	return exists, nil
}

// SecondDegreeFollows returns the mutual-connection count for each
// account followed by someone the user follows.
func (r *ProfileRepository) SecondDegreeFollows(ctx context.Context, userID string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT second.followee_id, COUNT(*)
		FROM follows first
		JOIN follows second ON second.follower_id = first.followee_id
		WHERE first.follower_id = $1
		GROUP BY second.followee_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing second-degree follows: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("scanning second-degree follow: %w", err)
		}
		counts[id] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating second-degree follows: %w", err)
	}
	return counts, nil
}

// FollowerGainsSince returns, per user id, the follow edges gained at or
// after the given time.
func (r *ProfileRepository) FollowerGainsSince(ctx context.Context, since time.Time) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT followee_id, COUNT(*)
		FROM follows
		WHERE created_at >= $1
		GROUP BY followee_id`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("listing follower gains: %w", err)
	}
	defer rows.Close()

	gains := make(map[string]int)
	for rows.Next() {
		var id string
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("scanning follower gain: %w", err)
		}
		gains[id] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating follower gains: %w", err)
	}
	return gains, nil
}

// FollowerCounts returns the followers gained at or after since and the
// follower count the user had before since.
func (r *ProfileRepository) FollowerCounts(ctx context.Context, userID string, since time.Time) (int, int, error) {
	var gained, prior int
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE created_at >= $2),
			COUNT(*) FILTER (WHERE created_at < $2)
		FROM follows
		WHERE followee_id = $1`,
		userID, since,
	).Scan(&gained, &prior)
	if err != nil {
		return 0, 0, fmt.Errorf("counting followers: %w", err)
	}
	return gained, prior, nil
}

// ListWithLocation returns live profiles that carry coordinates.
func (r *ProfileRepository) ListWithLocation(ctx context.Context) ([]*profile.Profile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE deleted_at IS NULL
		AND latitude IS NOT NULL AND longitude IS NOT NULL`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing located profiles: %w", err)
	}
	return collectProfiles(rows)
}

// ListWithInterests returns live profiles sharing at least one interest.
func (r *ProfileRepository) ListWithInterests(ctx context.Context, interests []string) ([]*profile.Profile, error) {
	if len(interests) == 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE deleted_at IS NULL
		AND interests && $1`,
		pq.Array(interests),
	)
	if err != nil {
		return nil, fmt.Errorf("listing profiles by interest: %w", err)
	}
	return collectProfiles(rows)
}

func (r *ProfileRepository) collectIDs(ctx context.Context, query, arg string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("listing ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ids: %w", err)
	}
	return ids, nil
}

func locationValues(p *profile.Profile) (lat, lng sql.NullFloat64) {
	if p.Location != nil {
		lat = sql.NullFloat64{Float64: p.Location.Latitude, Valid: true}
		lng = sql.NullFloat64{Float64: p.Location.Longitude, Valid: true}
	}
	return lat, lng
}

func scanProfile(row rowScanner) (*profile.Profile, error) {
	var p profile.Profile
	var lat, lng sql.NullFloat64
	var interests pq.StringArray
	var deletedAt sql.NullTime
	err := row.Scan(
		&p.ID, &p.Handle, &p.DisplayName, &p.Verified, &p.Tier,
		&lat, &lng, &interests, &p.StripeCustomerID,
		&p.CreatedAt, &p.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}
	if lat.Valid && lng.Valid {
		p.Location = &profile.Location{Latitude: lat.Float64, Longitude: lng.Float64}
	}
	p.Interests = interests
	if deletedAt.Valid {
		p.DeletedAt = &deletedAt.Time
	}
	return &p, nil
}

func collectProfiles(rows *sql.Rows) ([]*profile.Profile, error) {
	defer rows.Close()
	var profiles []*profile.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating profiles: %w", err)
	}
	return profiles, nil
}
