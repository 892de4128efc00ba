package http

import (
	"github.com/nats-io/nats.go"

	"github.com/hailgo/hailgo/internal/adapters/postgres"
	"github.com/hailgo/hailgo/internal/adapters/valkey"
	"github.com/hailgo/hailgo/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Places    *usecases.PlaceService
	Estimates *usecases.EstimateService
	Fares     *usecases.FareService
	Tracking  *usecases.TrackingService
	NATS      *nats.Conn
	DB        *postgres.DB
	Cache     *valkey.Cache
}
