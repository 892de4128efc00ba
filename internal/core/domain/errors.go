package domain

import "errors"

// Sentinel errors surfaced by the engine. Only genuine configuration or
// programming mistakes produce errors; estimation itself degrades to
// approximate output instead of failing.
var (
	// ErrPlaceNotFound is returned when a place ID is absent from the catalog.
	ErrPlaceNotFound = errors.New("place not found")

	// ErrEmptyCatalog is returned when a catalog is constructed with no
	// entries. An empty catalog is a configuration error and fails fast.
	ErrEmptyCatalog = errors.New("place catalog is empty")

	// ErrInvalidRoute is returned when a tracking session is created from a
	// route whose path has fewer than two points.
	ErrInvalidRoute = errors.New("route path must contain at least two points")

	// ErrInvalidArgument is returned by defensive input checks, e.g. a
	// negative distance or an unknown service tier.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrTripNotFound is returned when no tracking session exists for a
	// trip ID.
	ErrTripNotFound = errors.New("trip not found")
)
