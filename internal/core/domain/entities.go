package domain

import (
	"time"
)

// Place is a known named location from the fixed catalog. The catalog stands
// in for a live geocoding provider, so entries carry human-readable address
// text alongside the coordinate.
type Place struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Address  string   `json:"address"`
	Location GeoPoint `json:"location"`
	Distance *float64 `json:"distance,omitempty"` // computed field, meters
}

// Corridor is a curated distance/duration pair for a known origin/destination
// place pair. Curated entries take precedence over synthetic estimates.
type Corridor struct {
	OriginID        string  `json:"origin_id"`
	DestinationID   string  `json:"destination_id"`
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// RouteEstimate is the result of estimating a trip between two coordinates.
// It is a pure function result: computed on demand, never persisted.
type RouteEstimate struct {
	DistanceMeters  float64    `json:"distance_meters"`
	DurationSeconds float64    `json:"duration_seconds"`
	Path            []GeoPoint `json:"path"` // ≥2 points, first = origin, last = destination
	Curated         bool       `json:"curated"`
	OriginPlaceID   string     `json:"origin_place_id,omitempty"`
	DestPlaceID     string     `json:"dest_place_id,omitempty"`
}

// Tier is a service class with its own base fare and per-distance rate.
type Tier string

const (
	TierEconomy Tier = "economy"
	TierComfort Tier = "comfort"
	TierPremium Tier = "premium"
)

// Valid reports whether t names a known service tier.
func (t Tier) Valid() bool {
	switch t {
	case TierEconomy, TierComfort, TierPremium:
		return true
	}
	return false
}

// FareQuote is a priced fare for a distance, tier, and quote time.
type FareQuote struct {
	Amount       float64   `json:"amount"` // currency units, 2-decimal precision
	Currency     string    `json:"currency"`
	Tier         Tier      `json:"tier"`
	SurgeApplied bool      `json:"surge_applied"`
	QuotedAt     time.Time `json:"quoted_at"`
}

// TrackingStatus is the lifecycle state of a simulated tracking session.
type TrackingStatus string

const (
	StatusIdle     TrackingStatus = "idle"
	StatusRunning  TrackingStatus = "running"
	StatusPaused   TrackingStatus = "paused"
	StatusFinished TrackingStatus = "finished"
)

// TrackingUpdate is one emitted position reading of a simulated vehicle.
type TrackingUpdate struct {
	TripID    string    `json:"trip_id"`
	Location  GeoPoint  `json:"location"`
	Bearing   float64   `json:"bearing"` // degrees, 0 = north
	Speed     float64   `json:"speed"`   // m/s
	Index     int       `json:"index"`   // path vertex index, strictly increasing per session
	Timestamp time.Time `json:"timestamp"`
}
