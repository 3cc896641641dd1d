package db

import (
	"errors"
	"testing"

	"github.com/openlove-social/openlove/internal/post"
	"github.com/openlove-social/openlove/internal/profile"
)

type fakeResult struct {
	rows int64
}

func (f fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (f fakeResult) RowsAffected() (int64, error) { return f.rows, nil }

func TestRequireRow(t *testing.T) {
	if err := requireRow(fakeResult{rows: 1}, post.ErrPostNotFound); err != nil {
		t.Errorf("expected nil for affected row, got %v", err)
	}
	if err := requireRow(fakeResult{rows: 0}, post.ErrPostNotFound); !errors.Is(err, post.ErrPostNotFound) {
		t.Errorf("expected ErrPostNotFound for zero rows, got %v", err)
	}
}

func TestLocationValues(t *testing.T) {
	lat, lng := locationValues(&profile.Profile{})
	if lat.Valid || lng.Valid {
		t.Error("expected null coordinates for profile without location")
	}

	lat, lng = locationValues(&profile.Profile{
		Location: &profile.Location{Latitude: -23.55, Longitude: -46.63},
	})
	if !lat.Valid || lat.Float64 != -23.55 {
		t.Errorf("unexpected latitude %+v", lat)
	}
	if !lng.Valid || lng.Float64 != -46.63 {
		t.Errorf("unexpected longitude %+v", lng)
	}
}
