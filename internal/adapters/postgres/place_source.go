package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hailgo/hailgo/internal/core/domain"
)

// PlaceSource implements ports.PlaceSource with pgx, for deployments that
// manage the catalog in Postgres instead of shipping the embedded seed.
type PlaceSource struct {
	db *DB
}

// NewPlaceSource creates a new PlaceSource.
func NewPlaceSource(db *DB) *PlaceSource {
	return &PlaceSource{db: db}
}

// Places loads the full catalog, ordered by insertion so search results and
// nearest-place tie-breaks are stable across restarts.
func (r *PlaceSource) Places(ctx context.Context) ([]domain.Place, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT place_id, name, COALESCE(address, ''), lat, lon
		FROM places
		ORDER BY position, place_id
	`)
	if err != nil {
		return nil, fmt.Errorf("query places: %w", err)
	}
	defer rows.Close()

	var places []domain.Place
	for rows.Next() {
		var p domain.Place
		if err := rows.Scan(&p.ID, &p.Name, &p.Address, &p.Location.Lat, &p.Location.Lon); err != nil {
			return nil, fmt.Errorf("scan place: %w", err)
		}
		places = append(places, p)
	}
	return places, rows.Err()
}

// Corridors loads the curated corridor table.
func (r *PlaceSource) Corridors(ctx context.Context) ([]domain.Corridor, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT origin_id, destination_id, distance_meters, duration_seconds
		FROM corridors
	`)
	if err != nil {
		return nil, fmt.Errorf("query corridors: %w", err)
	}
	defer rows.Close()

	var corridors []domain.Corridor
	for rows.Next() {
		var c domain.Corridor
		if err := rows.Scan(&c.OriginID, &c.DestinationID, &c.DistanceMeters, &c.DurationSeconds); err != nil {
			return nil, fmt.Errorf("scan corridor: %w", err)
		}
		corridors = append(corridors, c)
	}
	return corridors, rows.Err()
}

// Seed upserts the given catalog and corridor table, so a fresh database
// can be primed from the embedded seed data.
func (r *PlaceSource) Seed(ctx context.Context, places []domain.Place, corridors []domain.Corridor) error {
	batch := &pgx.Batch{}
	for i, p := range places {
		batch.Queue(`
			INSERT INTO places (place_id, name, address, lat, lon, position)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (place_id) DO UPDATE
			SET name = EXCLUDED.name, address = EXCLUDED.address,
			    lat = EXCLUDED.lat, lon = EXCLUDED.lon,
			    position = EXCLUDED.position
		`, p.ID, p.Name, p.Address, p.Location.Lat, p.Location.Lon, i)
	}
	for _, c := range corridors {
		batch.Queue(`
			INSERT INTO corridors (origin_id, destination_id, distance_meters, duration_seconds)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (origin_id, destination_id) DO UPDATE
			SET distance_meters = EXCLUDED.distance_meters,
			    duration_seconds = EXCLUDED.duration_seconds
		`, c.OriginID, c.DestinationID, c.DistanceMeters, c.DurationSeconds)
	}

	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < len(places)+len(corridors); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}
