// Package post provides models and repository for timeline posts with the
// engagement counters the trending ranker scores.
package post

import (
	"errors"
	"time"
)

// Common errors for post operations.
var (
	ErrPostNotFound = errors.New("post not found")
	ErrPostDeleted  = errors.New("post has been deleted")
)

// Moderation labels. Labeled posts are excluded from feeds and ranking.
const (
	LabelHidden  = "hidden"
	LabelSpam    = "spam"
	LabelFlagged = "flagged"
)

// Visibility values for a post.
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Post represents a timeline post with raw engagement counts.
type Post struct {
	ID         string   `json:"id"`
	AuthorID   string   `json:"author_id"`
	Text       string   `json:"text"`
	Visibility string   `json:"visibility"`
	Labels     []string `json:"labels,omitempty"`

	LikeCount    int `json:"like_count"`
	CommentCount int `json:"comment_count"`
	ShareCount   int `json:"share_count"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// HasLabel reports whether the post carries the given moderation label.
func (p *Post) HasLabel(label string) bool {
	for _, l := range p.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// Moderated reports whether any moderation label excludes the post from
// feeds and ranking.
func (p *Post) Moderated() bool {
	return p.HasLabel(LabelHidden) || p.HasLabel(LabelSpam) || p.HasLabel(LabelFlagged)
}

// Rankable reports whether the post participates in public feeds and
// trending: live, public, and unmoderated.
func (p *Post) Rankable() bool {
	return p.DeletedAt == nil && p.Visibility == VisibilityPublic && !p.Moderated()
}

// FeedCursor represents a cursor for paginating through a feed.
// Uses (created_at, id) for stable pagination with tie-breaking.
type FeedCursor struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
}
