package ports

import (
	"context"

	"github.com/hailgo/hailgo/internal/core/domain"
)

// PlaceSource loads the fixed place catalog and its curated corridors at
// startup. Implementations: embedded seed data, Postgres.
type PlaceSource interface {
	Places(ctx context.Context) ([]domain.Place, error)
	Corridors(ctx context.Context) ([]domain.Corridor, error)
}
