package embedded_test

import (
	"context"
	"testing"

	"github.com/hailgo/hailgo/internal/adapters/embedded"
)

func TestSource_Places(t *testing.T) {
	src := embedded.NewSource()

	places, err := src.Places(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(places) == 0 {
		t.Fatal("expected embedded catalog to be non-empty")
	}

	seen := map[string]bool{}
	for _, p := range places {
		if p.ID == "" || p.Name == "" {
			t.Errorf("catalog entry missing id or name: %+v", p)
		}
		if seen[p.ID] {
			t.Errorf("duplicate catalog id %q", p.ID)
		}
		seen[p.ID] = true
		if p.Location.Lat == 0 && p.Location.Lon == 0 {
			t.Errorf("catalog entry %q has zero coordinates", p.ID)
		}
	}
	if !seen["dtla"] {
		t.Error("expected dtla in the embedded catalog")
	}
}

func TestSource_CorridorsReferenceKnownPlaces(t *testing.T) {
	src := embedded.NewSource()
	ctx := context.Background()

	places, err := src.Places(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	known := map[string]bool{}
	for _, p := range places {
		known[p.ID] = true
	}

	corridors, err := src.Corridors(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(corridors) == 0 {
		t.Fatal("expected curated corridors to be non-empty")
	}
	for _, c := range corridors {
		if !known[c.OriginID] || !known[c.DestinationID] {
			t.Errorf("corridor %s->%s references unknown place", c.OriginID, c.DestinationID)
		}
		if c.DistanceMeters <= 0 || c.DurationSeconds <= 0 {
			t.Errorf("corridor %s->%s has non-positive figures", c.OriginID, c.DestinationID)
		}
	}
}
