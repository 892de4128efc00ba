package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hailgo/hailgo/internal/core/domain"
	"github.com/hailgo/hailgo/internal/core/ports"
	"github.com/hailgo/hailgo/internal/pkg/geospatial"
)

// PlaceService is the fixed place catalog: a small deterministic substitute
// for a live geocoding provider. The catalog is loaded once at startup and
// never mutated, so it is safe to share across callers without
// synchronization.
type PlaceService struct {
	places []domain.Place // insertion order, drives match ordering and ties
	byID   map[string]int
	cache  ports.CacheService
}

// NewPlaceService builds the catalog from its fixed entries. An empty
// catalog is a configuration error and is rejected here rather than at
// query time. Duplicate IDs are rejected for the same reason.
func NewPlaceService(places []domain.Place, cache ports.CacheService) (*PlaceService, error) {
	if len(places) == 0 {
		return nil, domain.ErrEmptyCatalog
	}

	byID := make(map[string]int, len(places))
	for i, p := range places {
		if p.ID == "" {
			return nil, fmt.Errorf("catalog entry %d has no id: %w", i, domain.ErrInvalidArgument)
		}
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate catalog id %q: %w", p.ID, domain.ErrInvalidArgument)
		}
		byID[p.ID] = i
	}

	owned := make([]domain.Place, len(places))
	copy(owned, places)

	return &PlaceService{places: owned, byID: byID, cache: cache}, nil
}

// Len returns the number of catalog entries.
func (s *PlaceService) Len() int {
	return len(s.places)
}

// List returns all catalog entries in insertion order.
func (s *PlaceService) List(ctx context.Context) []domain.Place {
	out := make([]domain.Place, len(s.places))
	copy(out, s.places)
	return out
}

// Search performs a case-insensitive substring match against each entry's
// name and address. Results keep catalog insertion order; no ranking beyond
// containment.
func (s *PlaceService) Search(ctx context.Context, query string, limit int) ([]domain.Place, error) {
	if query == "" {
		return nil, fmt.Errorf("search query must not be empty")
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	cacheKey := fmt.Sprintf("places:search:%s:%d", strings.ToLower(query), limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var places []domain.Place
			if err := json.Unmarshal(data, &places); err == nil {
				return places, nil
			}
		}
	}

	q := strings.ToLower(query)
	var matches []domain.Place
	for _, p := range s.places {
		if strings.Contains(strings.ToLower(p.Address), q) ||
			strings.Contains(strings.ToLower(p.Name), q) {
			matches = append(matches, p)
			if len(matches) >= limit {
				break
			}
		}
	}

	// The catalog is static, so a long TTL would be fine; keep it modest
	// anyway so redeploys with a new catalog converge quickly.
	if s.cache != nil {
		if data, err := json.Marshal(matches); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}

	return matches, nil
}

// GetByID returns the catalog entry with the given ID.
func (s *PlaceService) GetByID(ctx context.Context, id string) (*domain.Place, error) {
	i, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("place %q: %w", id, domain.ErrPlaceNotFound)
	}
	p := s.places[i]
	return &p, nil
}

// Nearest returns the catalog entry closest to the given point, with its
// Distance field populated in meters. Ties keep the earlier catalog entry.
// The catalog is guaranteed non-empty, so Nearest cannot fail.
func (s *PlaceService) Nearest(ctx context.Context, pt domain.GeoPoint) *domain.Place {
	best := 0
	bestDist := geospatial.Haversine(pt.Lat, pt.Lon, s.places[0].Location.Lat, s.places[0].Location.Lon)
	for i := 1; i < len(s.places); i++ {
		d := geospatial.Haversine(pt.Lat, pt.Lon, s.places[i].Location.Lat, s.places[i].Location.Lon)
		if d < bestDist {
			best, bestDist = i, d
		}
	}

	p := s.places[best]
	p.Distance = &bestDist
	return &p
}
