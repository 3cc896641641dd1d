package trending

import (
	"math"
	"testing"

	"github.com/openlove-social/openlove/internal/post"
)

// TestExtractTopicTokens covers stripping, stop words, and token length.
func TestExtractTopicTokens(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			"strips tags and mentions",
			"amor e paixão para sempre #love @amigo",
			[]string{"amor", "paixão", "sempre"},
		},
		{
			"short tokens dropped",
			"ela vai com sol mar",
			nil,
		},
		{
			"stop words dropped",
			"para quem quer viver",
			[]string{"quem", "quer", "viver"},
		},
		{
			"lowercased",
			"ENCONTRO Romântico",
			[]string{"encontro", "romântico"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTopicTokens(tt.text)
			if len(got) != len(tt.expected) {
				t.Fatalf("got %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("token %d = %q, want %q", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

// TestAccumulateTopics weights each occurrence by post engagement:
// 1 + 0.1*(likes+comments).
func TestAccumulateTopics(t *testing.T) {
	posts := []*post.Post{
		{Text: "viagem incrível", LikeCount: 5, CommentCount: 5},
		{Text: "viagem tranquila"},
	}

	weights := accumulateTopics(posts)

	// "viagem": 2.0 from the engaged post + 1.0 from the plain one.
	if math.Abs(weights["viagem"]-3.0) > 0.001 {
		t.Errorf("viagem weight = %f, want 3.0", weights["viagem"])
	}
	if math.Abs(weights["incrível"]-2.0) > 0.001 {
		t.Errorf("incrível weight = %f, want 2.0", weights["incrível"])
	}
	if math.Abs(weights["tranquila"]-1.0) > 0.001 {
		t.Errorf("tranquila weight = %f, want 1.0", weights["tranquila"])
	}
}
