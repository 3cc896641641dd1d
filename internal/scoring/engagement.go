package scoring

// Engagement signal weights. Sharing is the strongest signal, then
// commenting, then liking. These are fixed design constants; calibration
// applies to boost tables only.
const (
	LikeWeight    = 1.0
	CommentWeight = 2.0
	ShareWeight   = 3.0
)

// EngagementScore combines raw engagement counts into a weighted score.
//
// Formula: likes*1 + comments*2 + shares*3.
//
// Counts are expected to be non-negative; negative inputs are a caller bug
// and are not defended against.
func EngagementScore(likes, comments, shares int) float64 {
	return float64(likes)*LikeWeight +
		float64(comments)*CommentWeight +
		float64(shares)*ShareWeight
}
