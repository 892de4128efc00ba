package ports

import (
	"context"

	"github.com/hailgo/hailgo/internal/core/domain"
)

// EventPublisher publishes tracking-feed events to a message broker.
type EventPublisher interface {
	PublishTrackingUpdate(ctx context.Context, u *domain.TrackingUpdate) error
	PublishTripFinished(ctx context.Context, tripID string) error
	PublishBroadcast(ctx context.Context, data []byte) error
}

// CacheService provides read-through caching. The catalog and rate tables
// never change at runtime, so entries expire by TTL alone and the port has
// no invalidation method.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
}
