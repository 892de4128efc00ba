// Package embedded ships the default place catalog and curated corridor
// table inside the binary, so the engine runs with zero external data
// dependencies. Postgres can replace it when a deployment wants a managed
// catalog.
package embedded

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/hailgo/hailgo/internal/core/domain"
)

//go:embed places.json
var placesJSON []byte

//go:embed corridors.json
var corridorsJSON []byte

// Source implements ports.PlaceSource from embedded seed data.
type Source struct{}

// NewSource returns the embedded catalog source.
func NewSource() *Source {
	return &Source{}
}

// Places decodes the embedded place catalog.
func (s *Source) Places(ctx context.Context) ([]domain.Place, error) {
	var places []domain.Place
	if err := json.Unmarshal(placesJSON, &places); err != nil {
		return nil, fmt.Errorf("decode embedded places: %w", err)
	}
	return places, nil
}

// Corridors decodes the embedded curated corridor table.
func (s *Source) Corridors(ctx context.Context) ([]domain.Corridor, error) {
	var corridors []domain.Corridor
	if err := json.Unmarshal(corridorsJSON, &corridors); err != nil {
		return nil, fmt.Errorf("decode embedded corridors: %w", err)
	}
	return corridors, nil
}
