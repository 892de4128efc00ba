// fleetsim runs a demo fleet: it continuously creates simulated trips
// between random catalog places, replays them over NATS, and replaces each
// trip as it finishes. Point a WebSocket client at the API's /ws endpoint
// to watch the fleet move.
package main

import (
	"context"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hailgo/hailgo/internal/adapters/embedded"
	natsadapter "github.com/hailgo/hailgo/internal/adapters/nats"
	"github.com/hailgo/hailgo/internal/core/domain"
	"github.com/hailgo/hailgo/internal/core/usecases"
	"github.com/hailgo/hailgo/internal/pkg/config"
	"github.com/hailgo/hailgo/internal/pkg/logging"
)

const fleetSize = 8

func main() {
	cfg, err := config.Load("hailgo-fleetsim")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")
	logger := logging.Component("fleetsim")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Catalog
	source := embedded.NewSource()
	places, err := source.Places(ctx)
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}
	corridors, err := source.Corridors(ctx)
	if err != nil {
		log.Fatalf("load corridors: %v", err)
	}

	placeSvc, err := usecases.NewPlaceService(places, nil)
	if err != nil {
		log.Fatalf("place catalog: %v", err)
	}
	estimateSvc := usecases.NewEstimateService(placeSvc, corridors, usecases.RoutingConfig{
		AverageSpeedMps: cfg.Routing.AverageSpeedMps,
		PathPoints:      cfg.Routing.PathPoints,
		JitterFraction:  cfg.Routing.JitterFraction,
	}, nil)

	// NATS
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer pub.Close()

	trackingSvc := usecases.NewTrackingService(pub, usecases.SessionConfig{
		UpdateInterval: time.Duration(cfg.Tracking.UpdateIntervalMs) * time.Millisecond,
		SpeedFactor:    cfg.Tracking.SpeedFactor,
	}, logger)

	logger.Info("fleet simulator starting",
		slog.Int("fleet_size", fleetSize),
		slog.Int("places", placeSvc.Len()),
		slog.Float64("speed_factor", cfg.Tracking.SpeedFactor))

	// rand.Rand is not safe for concurrent use; each vehicle gets its own
	// source so the drive loops never share one.
	seed := time.Now().UnixNano()

	var wg sync.WaitGroup
	for i := 0; i < fleetSize; i++ {
		rng := rand.New(rand.NewSource(seed + int64(i)))
		wg.Add(1)
		go func() {
			defer wg.Done()
			driveLoop(ctx, logger, rng, placeSvc, estimateSvc, trackingSvc)
		}()
		// Stagger departures so updates don't arrive in lockstep
		time.Sleep(time.Duration(rand.Intn(500)) * time.Millisecond)
	}

	<-ctx.Done()
	logger.Info("shutdown signal received, stopping fleet")
	wg.Wait()
	logger.Info("fleet stopped")
}

// driveLoop runs one vehicle: pick a random trip, replay it to the end,
// then immediately start the next from where the last one ended up.
func driveLoop(ctx context.Context, logger *slog.Logger, rng *rand.Rand, placeSvc *usecases.PlaceService, estimateSvc *usecases.EstimateService, trackingSvc *usecases.TrackingService) {
	catalog := placeSvc.List(ctx)
	origin := catalog[rng.Intn(len(catalog))].Location

	for {
		if ctx.Err() != nil {
			return
		}

		dest := catalog[rng.Intn(len(catalog))].Location
		if dest == origin {
			continue
		}

		est := estimateSvc.Estimate(ctx, origin, dest)
		sess, err := trackingSvc.Create(ctx, est)
		if err != nil {
			logger.Warn("trip create failed", slog.String("error", err.Error()))
			return
		}

		done := make(chan struct{})
		var once sync.Once
		unsub := sess.Subscribe(func(u domain.TrackingUpdate) {
			if u.Index == sess.PathLen()-1 {
				once.Do(func() { close(done) })
			}
		})

		logger.Info("trip departing",
			slog.String("trip_id", sess.ID()),
			slog.Float64("distance_m", est.DistanceMeters),
			slog.Bool("curated", est.Curated))

		sess.Start()

		select {
		case <-ctx.Done():
			unsub()
			trackingSvc.Remove(sess.ID())
			return
		case <-done:
		}

		unsub()
		trackingSvc.Remove(sess.ID())
		origin = dest
	}
}
