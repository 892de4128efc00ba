package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/hailgo/hailgo/internal/core/domain"
)

// Publisher implements ports.EventPublisher using NATS JetStream. Each
// trip's position feed goes out on its own subject so relays can subscribe
// per trip.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure streams exist. Position updates age out fast; trip lifecycle
	// events stick around longer for late consumers.
	streams := []nats.StreamConfig{
		{
			Name:      "TRACKING_UPDATES",
			Subjects:  []string{"rides.tracking.>"},
			Retention: nats.LimitsPolicy,
			MaxAge:    10 * time.Minute,
			Storage:   nats.MemoryStorage,
		},
		{
			Name:      "TRIP_EVENTS",
			Subjects:  []string{"rides.trips.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist — try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

func (p *Publisher) PublishTrackingUpdate(ctx context.Context, u *domain.TrackingUpdate) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	_, err = p.js.Publish("rides.tracking."+u.TripID, data)
	return err
}

func (p *Publisher) PublishTripFinished(ctx context.Context, tripID string) error {
	_, err := p.js.Publish("rides.trips.finished", []byte(tripID))
	return err
}

func (p *Publisher) PublishBroadcast(ctx context.Context, data []byte) error {
	return p.conn.Publish("rides.updates.broadcast", data)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
