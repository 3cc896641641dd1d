package scoring

import (
	"os"
	"path/filepath"
	"testing"
)

// TestDefaultBoosts verifies the default tables carry the documented
// constants for both surfaces.
func TestDefaultBoosts(t *testing.T) {
	b := DefaultBoosts()

	if b.Trending.Verified != 1.2 {
		t.Errorf("trending verified = %f, want 1.2", b.Trending.Verified)
	}
	if b.Suggestion.Verified != 1.3 {
		t.Errorf("suggestion verified = %f, want 1.3", b.Suggestion.Verified)
	}
	if b.Trending.Gold != 1.3 {
		t.Errorf("trending gold = %f, want 1.3", b.Trending.Gold)
	}
	if b.Suggestion.Gold != 1.2 {
		t.Errorf("suggestion gold = %f, want 1.2", b.Suggestion.Gold)
	}
	if b.Trending.DiamondCouple != 1.5 || b.Suggestion.DiamondCouple != 1.5 {
		t.Error("diamond/couple multiplier should be 1.5 on both surfaces")
	}
	if b.Suggestion.SuperBoostRadiusKm != 10 || b.Suggestion.SuperBoost != 2.0 {
		t.Error("super-boost defaults should be 2.0 under 10km")
	}
}

// TestLoadCalibration_MissingFile returns defaults with an error.
func TestLoadCalibration_MissingFile(t *testing.T) {
	boosts, err := LoadCalibration("/nonexistent/calibration.json")
	if err == nil {
		t.Error("expected an error for a missing file")
	}
	if boosts == nil {
		t.Fatal("expected default boosts, got nil")
	}
	if boosts.Trending.Verified != 1.2 {
		t.Errorf("expected default trending verified, got %f", boosts.Trending.Verified)
	}
}

// TestLoadCalibration_EmptyPath returns defaults without an error.
func TestLoadCalibration_EmptyPath(t *testing.T) {
	boosts, err := LoadCalibration("")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if boosts.Suggestion.SuperBoost != 2.0 {
		t.Errorf("expected default super-boost, got %f", boosts.Suggestion.SuperBoost)
	}
}

// TestLoadCalibration_PartialOverride merges a partial file with defaults.
func TestLoadCalibration_PartialOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calibration.json")
	content := `{"version":"1","boosts":{"trending":{"verified":1.25}}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write calibration file: %v", err)
	}

	boosts, err := LoadCalibration(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if boosts.Trending.Verified != 1.25 {
		t.Errorf("override not applied: got %f", boosts.Trending.Verified)
	}
	// Untouched values keep their defaults.
	if boosts.Trending.Gold != 1.3 {
		t.Errorf("unrelated trending value changed: got %f", boosts.Trending.Gold)
	}
	if boosts.Suggestion.Verified != 1.3 {
		t.Errorf("suggestion table changed: got %f", boosts.Suggestion.Verified)
	}
}

// TestLoadCalibration_InvalidJSON returns defaults with an error.
func TestLoadCalibration_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calibration.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("failed to write calibration file: %v", err)
	}

	boosts, err := LoadCalibration(path)
	if err == nil {
		t.Error("expected a parse error")
	}
	if boosts.Trending.Verified != 1.2 {
		t.Errorf("expected defaults on parse error, got %f", boosts.Trending.Verified)
	}
}

// TestMergeCalibration_NilHandling covers nil base and nil override.
func TestMergeCalibration_NilHandling(t *testing.T) {
	if merged := MergeCalibration(nil, nil); merged.Trending.Verified != 1.2 {
		t.Error("nil base should fall back to defaults")
	}

	base := DefaultBoosts()
	merged := MergeCalibration(base, nil)
	if *merged != *base {
		t.Error("nil override should return a copy of base")
	}
	if merged == base {
		t.Error("expected a copy, not the same pointer")
	}
}
