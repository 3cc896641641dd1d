// Package stats provides utilities for tracking ranking section statistics.
package stats

import (
	"fmt"
	"log/slog"
	"sync/atomic"
)

// RankStats tracks how many ranking sections were served normally and how
// many degraded to an empty result after an upstream fetch failure.
// All operations are thread-safe using atomic counters.
type RankStats struct {
	served   int64 // Sections computed successfully
	degraded int64 // Sections that fell back to an empty result
}

// NewRankStats creates a new RankStats instance.
func NewRankStats() *RankStats {
	return &RankStats{}
}

// RecordServed increments the served counter.
func (s *RankStats) RecordServed() {
	atomic.AddInt64(&s.served, 1)
}

// RecordDegraded increments the degraded counter.
func (s *RankStats) RecordDegraded() {
	atomic.AddInt64(&s.degraded, 1)
}

// Served returns the total number of sections served normally.
func (s *RankStats) Served() int64 {
	return atomic.LoadInt64(&s.served)
}

// Degraded returns the total number of degraded sections.
func (s *RankStats) Degraded() int64 {
	return atomic.LoadInt64(&s.degraded)
}

// Total returns the total number of sections computed.
func (s *RankStats) Total() int64 {
	return s.Served() + s.Degraded()
}

// Reset resets all counters to zero.
func (s *RankStats) Reset() {
	atomic.StoreInt64(&s.served, 0)
	atomic.StoreInt64(&s.degraded, 0)
}

// String returns a human-readable summary of the statistics.
func (s *RankStats) String() string {
	return fmt.Sprintf("served=%d degraded=%d total=%d", s.Served(), s.Degraded(), s.Total())
}

// LogSummary logs a summary of ranking statistics at INFO level.
func (s *RankStats) LogSummary(logger *slog.Logger, surface string) {
	logger.Info("ranking statistics",
		"surface", surface,
		"served", s.Served(),
		"degraded", s.Degraded(),
		"total", s.Total(),
	)
}
