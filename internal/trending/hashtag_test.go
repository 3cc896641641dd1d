package trending

import (
	"math"
	"testing"
	"time"

	"github.com/openlove-social/openlove/internal/post"
)

// TestExtractHashtags covers normalization and accented tags.
func TestExtractHashtags(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{"simple", "loving #sunset tonight", []string{"sunset"}},
		{"uppercase normalized", "#Love and #LOVE", []string{"love", "love"}},
		{"accented", "tudo sobre #paixão", []string{"paixão"}},
		{"multiple", "#praia #verao #praia", []string{"praia", "verao", "praia"}},
		{"no tags", "nothing here", nil},
		{"digits and underscore", "#truta_2025 rules", []string{"truta_2025"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractHashtags(tt.text)
			if len(got) != len(tt.expected) {
				t.Fatalf("got %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("tag %d = %q, want %q", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

// TestHashtagAccumulator_CaseInsensitive verifies #Love and #love count as
// one tag.
func TestHashtagAccumulator_CaseInsensitive(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	acc := newHashtagAccumulator()
	acc.add(&post.Post{Text: "good morning #Love", LikeCount: 3, CreatedAt: now.Add(-time.Hour)})
	acc.add(&post.Post{Text: "good night #love", CommentCount: 7, CreatedAt: now})

	if acc.counts["love"] != 2 {
		t.Errorf("count = %d, want 2", acc.counts["love"])
	}
	if acc.engagement["love"] != 10 {
		t.Errorf("engagement = %d, want 10", acc.engagement["love"])
	}
	if !acc.lastSeen["love"].Equal(now) {
		t.Errorf("lastSeen = %v, want %v", acc.lastSeen["love"], now)
	}
}

// TestHashtagScore checks the scoring formula on a worked case:
// count 2, engagement 10, last seen now, 24h period.
// velocity = 2/24, recency = 1, engagementRate = 5
// score = 2 * (2/24) * 1 * 1.05 = 0.175
func TestHashtagScore(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	acc := newHashtagAccumulator()
	acc.add(&post.Post{Text: "#praia", LikeCount: 4, CommentCount: 1, CreatedAt: now.Add(-time.Hour)})
	acc.add(&post.Post{Text: "#praia de novo", LikeCount: 5, CreatedAt: now})

	trends := acc.trends(24, now)
	if len(trends) != 1 {
		t.Fatalf("expected 1 trend, got %d", len(trends))
	}
	if math.Abs(trends[0].Score-0.175) > 0.001 {
		t.Errorf("score = %f, want 0.175", trends[0].Score)
	}
}

// TestHashtagScore_StaleTag verifies tags unused for over 24h score zero.
func TestHashtagScore_StaleTag(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	acc := newHashtagAccumulator()
	acc.add(&post.Post{Text: "#ontem", LikeCount: 100, CreatedAt: now.Add(-30 * time.Hour)})

	trends := acc.trends(168, now)
	if len(trends) != 1 {
		t.Fatalf("expected 1 trend, got %d", len(trends))
	}
	if trends[0].Score != 0 {
		t.Errorf("score = %f, want 0 for a stale tag", trends[0].Score)
	}
}
