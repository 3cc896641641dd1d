package scoring

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// Boosts holds both boost table configurations.
type Boosts struct {
	Trending   TrendingBoostConfig   `json:"trending"`
	Suggestion SuggestionBoostConfig `json:"suggestion"`
}

// CalibrationConfig represents the JSON structure of the calibration file.
type CalibrationConfig struct {
	Version string `json:"version"` // Config version for future compatibility
	Boosts  Boosts `json:"boosts"`  // Boost table overrides
}

// DefaultBoosts returns the default boost tables for both ranking surfaces.
func DefaultBoosts() *Boosts {
	return &Boosts{
		Trending:   DefaultTrendingBoosts(),
		Suggestion: DefaultSuggestionBoosts(),
	}
}

// LoadCalibration loads boost tables from a JSON calibration file.
// Partial configurations are merged with defaults so a file may override a
// single constant. On any read or parse error the defaults are returned
// along with the error, ensuring graceful degradation.
func LoadCalibration(filePath string) (*Boosts, error) {
	if filePath == "" {
		return DefaultBoosts(), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		slog.Warn("failed to read calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultBoosts(), fmt.Errorf("failed to read calibration file: %w", err)
	}

	var config CalibrationConfig
	if err := json.Unmarshal(data, &config); err != nil {
		slog.Warn("failed to parse calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultBoosts(), fmt.Errorf("failed to parse calibration file: %w", err)
	}

	defaults := DefaultBoosts()
	merged := MergeCalibration(defaults, &config.Boosts)
	slog.Info("loaded boost calibration", "path", filePath)

	return merged, nil
}

// MergeCalibration merges override boost tables with base tables.
// Only non-zero values from the override are applied, allowing partial
// overrides in the calibration file.
func MergeCalibration(base *Boosts, override *Boosts) *Boosts {
	if base == nil {
		return DefaultBoosts()
	}

	if override == nil {
		result := *base
		return &result
	}

	result := *base

	if override.Trending.Verified != 0 {
		result.Trending.Verified = override.Trending.Verified
	}
	if override.Trending.Gold != 0 {
		result.Trending.Gold = override.Trending.Gold
	}
	if override.Trending.DiamondCouple != 0 {
		result.Trending.DiamondCouple = override.Trending.DiamondCouple
	}
	if override.Trending.PostProximityFactor != 0 {
		result.Trending.PostProximityFactor = override.Trending.PostProximityFactor
	}
	if override.Trending.UserProximityFactor != 0 {
		result.Trending.UserProximityFactor = override.Trending.UserProximityFactor
	}

	if override.Suggestion.Verified != 0 {
		result.Suggestion.Verified = override.Suggestion.Verified
	}
	if override.Suggestion.Gold != 0 {
		result.Suggestion.Gold = override.Suggestion.Gold
	}
	if override.Suggestion.DiamondCouple != 0 {
		result.Suggestion.DiamondCouple = override.Suggestion.DiamondCouple
	}
	if override.Suggestion.SuperBoostRadiusKm != 0 {
		result.Suggestion.SuperBoostRadiusKm = override.Suggestion.SuperBoostRadiusKm
	}
	if override.Suggestion.SuperBoost != 0 {
		result.Suggestion.SuperBoost = override.Suggestion.SuperBoost
	}
	if override.Suggestion.NewAccount != 0 {
		result.Suggestion.NewAccount = override.Suggestion.NewAccount
	}
	if override.Suggestion.NewAccountMaxDays != 0 {
		result.Suggestion.NewAccountMaxDays = override.Suggestion.NewAccountMaxDays
	}

	return &result
}
