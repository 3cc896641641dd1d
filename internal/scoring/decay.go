package scoring

import "time"

// DecayWindowHours is the linear decay horizon: anything 7 days old or
// older contributes a time factor of exactly zero.
const DecayWindowHours = 168.0

// HoursSince returns the age of t relative to now, in hours.
// Timestamps in the future are treated as age zero.
func HoursSince(t time.Time, now time.Time) float64 {
	diff := now.Sub(t)
	if diff < 0 {
		return 0
	}
	return diff.Hours()
}

// TimeFactor computes the linear recency multiplier for an item created at
// createdAt, evaluated at now.
//
// Formula: max(0, 1 - hoursAgo/168). A brand-new item scores close to 1.0;
// an item exactly 168 hours old scores exactly 0.
//
// TimeFactor is monotonically non-increasing in item age: for t1 < t2 <= now,
// TimeFactor(t1, now) <= TimeFactor(t2, now).
func TimeFactor(createdAt time.Time, now time.Time) float64 {
	hoursAgo := HoursSince(createdAt, now)
	factor := 1.0 - hoursAgo/DecayWindowHours
	if factor < 0 {
		return 0
	}
	return factor
}
