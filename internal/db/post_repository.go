package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/openlove-social/openlove/internal/post"
)

// rankableWhere filters to live, public, unmoderated posts. Matches
// Post.Rankable.
const rankableWhere = `deleted_at IS NULL
		AND visibility = 'public'
		AND NOT (labels && ARRAY['hidden','spam','flagged'])`

const postColumns = `id, author_id, body, visibility, labels,
		like_count, comment_count, share_count,
		created_at, updated_at, deleted_at`

// PostRepository is the PostgreSQL implementation of post.Repository.
type PostRepository struct {
	db *sql.DB
}

// NewPostRepository creates a Postgres-backed post repository.
func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

var _ post.Repository = (*PostRepository)(nil)

// Create inserts a new post with a generated UUID.
func (r *PostRepository) Create(ctx context.Context, p *post.Post) error {
	now := time.Now()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.Visibility == "" {
		p.Visibility = post.VisibilityPublic
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO posts (id, author_id, body, visibility, labels,
			like_count, comment_count, share_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.AuthorID, p.Text, p.Visibility, pq.Array(p.Labels),
		p.LikeCount, p.CommentCount, p.ShareCount, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting post: %w", err)
	}
	return nil
}

// Update updates an existing post's text, labels, and counts.
func (r *PostRepository) Update(ctx context.Context, p *post.Post) error {
	p.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, `
		UPDATE posts
		SET body = $2, visibility = $3, labels = $4,
			like_count = $5, comment_count = $6, share_count = $7,
			updated_at = $8
		WHERE id = $1 AND deleted_at IS NULL`,
		p.ID, p.Text, p.Visibility, pq.Array(p.Labels),
		p.LikeCount, p.CommentCount, p.ShareCount, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("updating post: %w", err)
	}
	return requireRow(res, post.ErrPostNotFound)
}

// Delete soft-deletes a post.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE posts SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	return requireRow(res, post.ErrPostNotFound)
}

// GetByID retrieves a post by id, excluding soft-deleted posts.
func (r *PostRepository) GetByID(ctx context.Context, id string) (*post.Post, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+postColumns+`
		FROM posts
		WHERE id = $1 AND deleted_at IS NULL`,
		id,
	)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, post.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching post: %w", err)
	}
	return p, nil
}

// ListPublicSince returns rankable posts created at or after the given time.
func (r *PostRepository) ListPublicSince(ctx context.Context, since time.Time) ([]*post.Post, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+postColumns+`
		FROM posts
		WHERE `+rankableWhere+`
		AND created_at >= $1`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("listing posts since %s: %w", since, err)
	}
	return collectPosts(rows)
}

// ListRecentByAuthor returns up to limit rankable posts by the author,
// newest first.
func (r *PostRepository) ListRecentByAuthor(ctx context.Context, authorID string, limit int) ([]*post.Post, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+postColumns+`
		FROM posts
		WHERE `+rankableWhere+`
		AND author_id = $1
		ORDER BY created_at DESC, id ASC
		LIMIT $2`,
		authorID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing posts by author: %w", err)
	}
	return collectPosts(rows)
}

// ListFeed returns rankable posts with cursor-based pagination, ordered
// created_at DESC, id ASC.
func (r *PostRepository) ListFeed(ctx context.Context, limit int, cursor *post.FeedCursor) ([]*post.Post, *post.FeedCursor, error) {
	var rows *sql.Rows
	var err error
	if cursor == nil {
		rows, err = r.db.QueryContext(ctx, `
			SELECT `+postColumns+`
			FROM posts
			WHERE `+rankableWhere+`
			ORDER BY created_at DESC, id ASC
			LIMIT $1`,
			limit,
		)
	} else {
		// Keyset pagination on (created_at DESC, id ASC): rows strictly
		// older, or same instant with a larger id.
		rows, err = r.db.QueryContext(ctx, `
			SELECT `+postColumns+`
			FROM posts
			WHERE `+rankableWhere+`
			AND (created_at < $1 OR (created_at = $1 AND id > $2))
			ORDER BY created_at DESC, id ASC
			LIMIT $3`,
			cursor.CreatedAt, cursor.ID, limit,
		)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("listing feed: %w", err)
	}

	posts, err := collectPosts(rows)
	if err != nil {
		return nil, nil, err
	}

	var next *post.FeedCursor
	if len(posts) == limit {
		last := posts[len(posts)-1]
		next = &post.FeedCursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return posts, next, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*post.Post, error) {
	var p post.Post
	var labels pq.StringArray
	var deletedAt sql.NullTime
	err := row.Scan(
		&p.ID, &p.AuthorID, &p.Text, &p.Visibility, &labels,
		&p.LikeCount, &p.CommentCount, &p.ShareCount,
		&p.CreatedAt, &p.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Labels = labels
	if deletedAt.Valid {
		p.DeletedAt = &deletedAt.Time
	}
	return &p, nil
}

func collectPosts(rows *sql.Rows) ([]*post.Post, error) {
	defer rows.Close()
	var posts []*post.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating posts: %w", err)
	}
	return posts, nil
}

// requireRow converts a zero-row update into the given sentinel error.
func requireRow(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return missing
	}
	return nil
}
