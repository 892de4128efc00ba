package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"

	"github.com/hailgo/hailgo/internal/core/domain"
	"github.com/hailgo/hailgo/internal/core/ports"
	"github.com/hailgo/hailgo/internal/pkg/geospatial"
)

// RoutingConfig tunes synthetic route generation.
type RoutingConfig struct {
	// AverageSpeedMps converts distance into duration when no curated
	// corridor entry exists. Defaults to 11.1 m/s (~40 km/h urban driving).
	AverageSpeedMps float64
	// PathPoints is the number of vertices in a generated path, clamped to
	// [2,50]. Defaults to 20.
	PathPoints int
	// JitterFraction bounds the lateral jitter applied to interior path
	// points, as a fraction of the local segment length. Defaults to 0.05.
	JitterFraction float64
}

func (c RoutingConfig) withDefaults() RoutingConfig {
	if c.AverageSpeedMps <= 0 {
		c.AverageSpeedMps = 11.1
	}
	if c.PathPoints <= 0 {
		c.PathPoints = 20
	}
	if c.PathPoints < 2 {
		c.PathPoints = 2
	}
	if c.PathPoints > 50 {
		c.PathPoints = 50
	}
	if c.JitterFraction <= 0 {
		c.JitterFraction = 0.05
	}
	return c
}

// EstimateService produces route estimates without a live routing provider.
// It is a degraded-mode estimator by design: outputs are approximate and not
// suitable for billing-grade precision unless the pair hits a curated
// corridor entry.
type EstimateService struct {
	places    *PlaceService
	corridors map[string]domain.Corridor // originID|destID
	cfg       RoutingConfig
	cache     ports.CacheService
}

// NewEstimateService wires the estimator to the catalog and its curated
// corridor table.
func NewEstimateService(places *PlaceService, corridors []domain.Corridor, cfg RoutingConfig, cache ports.CacheService) *EstimateService {
	byPair := make(map[string]domain.Corridor, len(corridors))
	for _, c := range corridors {
		byPair[corridorKey(c.OriginID, c.DestinationID)] = c
	}
	return &EstimateService{
		places:    places,
		corridors: byPair,
		cfg:       cfg.withDefaults(),
		cache:     cache,
	}
}

func corridorKey(originID, destID string) string {
	return originID + "|" + destID
}

// Estimate returns a best-effort RouteEstimate for the given pair. It cannot
// fail: pairs covered by a curated corridor return the hand-tuned figures,
// everything else falls back to a straight-line computation at the
// configured average speed.
func (s *EstimateService) Estimate(ctx context.Context, origin, dest domain.GeoPoint) domain.RouteEstimate {
	cacheKey := fmt.Sprintf("estimates:%.5f:%.5f:%.5f:%.5f", origin.Lat, origin.Lon, dest.Lat, dest.Lon)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var est domain.RouteEstimate
			if err := json.Unmarshal(data, &est); err == nil && len(est.Path) >= 2 {
				return est
			}
		}
	}

	originPlace := s.places.Nearest(ctx, origin)
	destPlace := s.places.Nearest(ctx, dest)

	est := domain.RouteEstimate{
		OriginPlaceID: originPlace.ID,
		DestPlaceID:   destPlace.ID,
		Path:          s.buildPath(origin, dest),
	}

	if c, ok := s.corridors[corridorKey(originPlace.ID, destPlace.ID)]; ok {
		est.DistanceMeters = c.DistanceMeters
		est.DurationSeconds = c.DurationSeconds
		est.Curated = true
	} else {
		est.DistanceMeters = geospatial.Haversine(origin.Lat, origin.Lon, dest.Lat, dest.Lon)
		est.DurationSeconds = est.DistanceMeters / s.cfg.AverageSpeedMps
	}

	if s.cache != nil {
		if data, err := json.Marshal(est); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}

	return est
}

// buildPath generates evenly spaced vertices between origin and destination
// with bounded lateral jitter on the interior points, so a rendered path
// reads as a road rather than a ruler line. Endpoints are never jittered.
// The jitter PRNG is seeded from the pair, keeping estimates deterministic
// and cache-stable.
func (s *EstimateService) buildPath(origin, dest domain.GeoPoint) []domain.GeoPoint {
	n := s.cfg.PathPoints
	path := make([]domain.GeoPoint, n)
	path[0] = origin
	path[n-1] = dest
	if n == 2 {
		return path
	}

	rng := rand.New(rand.NewSource(pairSeed(origin, dest)))

	// Per-step segment length in degree space bounds the jitter magnitude.
	segLat := (dest.Lat - origin.Lat) / float64(n-1)
	segLon := (dest.Lon - origin.Lon) / float64(n-1)
	maxJitter := s.cfg.JitterFraction * math.Hypot(segLat, segLon)

	for i := 1; i < n-1; i++ {
		frac := float64(i) / float64(n-1)
		lat, lon := geospatial.Interpolate(origin.Lat, origin.Lon, dest.Lat, dest.Lon, frac)
		path[i] = domain.GeoPoint{
			Lat: lat + (rng.Float64()*2-1)*maxJitter,
			Lon: lon + (rng.Float64()*2-1)*maxJitter,
		}
	}

	return path
}

func pairSeed(origin, dest domain.GeoPoint) int64 {
	h := math.Float64bits(origin.Lat)
	h = h*31 + math.Float64bits(origin.Lon)
	h = h*31 + math.Float64bits(dest.Lat)
	h = h*31 + math.Float64bits(dest.Lon)
	return int64(h)
}
