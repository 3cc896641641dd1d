// Package scoring provides the shared heuristic calculations used by the
// trending and suggestion rankers: time decay, engagement aggregation, and
// the boost multiplier tables.
//
// The trending and suggestion call sites intentionally carry separate boost
// constant tables (TrendingBoostConfig, SuggestionBoostConfig). The two
// surfaces were tuned independently and their constants differ; do not
// unify them.
//
// All time-based calculations take an explicit now parameter so callers
// control the clock and tests are deterministic.
package scoring
