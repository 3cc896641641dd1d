package trending

import (
	"regexp"
	"strings"
	"time"

	"github.com/openlove-social/openlove/internal/post"
	"github.com/openlove-social/openlove/internal/scoring"
)

// hashtagPattern matches #tags including accented letters and digits.
var hashtagPattern = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)

// Number of hashtags returned by the trending surface.
const maxHashtags = 20

// ExtractHashtags returns the hashtags in text, normalized to lowercase,
// without the leading '#'. Duplicate tags within one text are kept so each
// use counts toward the tag's frequency.
func ExtractHashtags(text string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, strings.ToLower(m[1]))
	}
	return tags
}

// hashtagAccumulator aggregates per-tag usage across a window of posts.
type hashtagAccumulator struct {
	counts     map[string]int
	engagement map[string]int
	lastSeen   map[string]time.Time
}

func newHashtagAccumulator() *hashtagAccumulator {
	return &hashtagAccumulator{
		counts:     make(map[string]int),
		engagement: make(map[string]int),
		lastSeen:   make(map[string]time.Time),
	}
}

// add records the hashtags of one post. Engagement for hashtag trending is
// likes plus comments; shares are not attributed to tags.
func (a *hashtagAccumulator) add(p *post.Post) {
	tags := ExtractHashtags(p.Text)
	if len(tags) == 0 {
		return
	}

	engagement := p.LikeCount + p.CommentCount
	for _, tag := range tags {
		a.counts[tag]++
		a.engagement[tag] += engagement
		if p.CreatedAt.After(a.lastSeen[tag]) {
			a.lastSeen[tag] = p.CreatedAt
		}
	}
}

// trends scores the accumulated tags.
//
// Score: count * velocity * recencyFactor * (1 + engagementRate/100), where
// velocity = count/periodHours, recencyFactor decays to zero over 24 hours
// since the tag's last use, and engagementRate = engagement/max(1, count).
func (a *hashtagAccumulator) trends(periodHrs float64, now time.Time) []HashtagTrend {
	trends := make([]HashtagTrend, 0, len(a.counts))
	for tag, count := range a.counts {
		lastSeen := a.lastSeen[tag]
		engagement := a.engagement[tag]

		hoursSinceLastUse := scoring.HoursSince(lastSeen, now)
		recencyFactor := 1.0 - hoursSinceLastUse/24.0
		if recencyFactor < 0 {
			recencyFactor = 0
		}

		velocity := float64(count) / periodHrs
		engagementRate := float64(engagement) / maxFloat(1, float64(count))
		score := float64(count) * velocity * recencyFactor * (1.0 + engagementRate/100.0)

		trends = append(trends, HashtagTrend{
			Tag:        tag,
			Count:      count,
			Engagement: engagement,
			LastSeen:   lastSeen,
			Score:      score,
		})
	}
	return trends
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
