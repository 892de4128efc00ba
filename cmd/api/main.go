package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/hailgo/hailgo/internal/adapters/embedded"
	"github.com/hailgo/hailgo/internal/adapters/http"
	natsadapter "github.com/hailgo/hailgo/internal/adapters/nats"
	"github.com/hailgo/hailgo/internal/adapters/postgres"
	"github.com/hailgo/hailgo/internal/adapters/valkey"
	"github.com/hailgo/hailgo/internal/core/ports"
	"github.com/hailgo/hailgo/internal/core/usecases"
	"github.com/hailgo/hailgo/internal/pkg/config"
	"github.com/hailgo/hailgo/internal/pkg/logging"
	"github.com/hailgo/hailgo/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("hailgo-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Catalog source: embedded seed by default, Postgres when configured
	var source ports.PlaceSource = embedded.NewSource()
	var db *postgres.DB
	if cfg.Catalog.Source == "postgres" {
		db, err = postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		source = postgres.NewPlaceSource(db)
	}

	places, err := source.Places(ctx)
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}
	corridors, err := source.Corridors(ctx)
	if err != nil {
		log.Fatalf("load corridors: %v", err)
	}

	// Cache
	var cache *valkey.Cache
	if cfg.Valkey.Enabled {
		cache, err = valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	// NATS
	var deps http.Dependencies
	var publisher ports.EventPublisher
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			publisher = pub
			defer pub.Close()
		}

		// Raw NATS connection for WebSocket relay
		nc, err := natsadapter.RawConn(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats ws conn unavailable", "error", err)
		} else {
			deps.NATS = nc
		}
	}

	// Use cases
	var cacheSvc ports.CacheService
	if cache != nil {
		cacheSvc = cache
	}

	placeSvc, err := usecases.NewPlaceService(places, cacheSvc)
	if err != nil {
		log.Fatalf("place catalog: %v", err)
	}
	estimateSvc := usecases.NewEstimateService(placeSvc, corridors, usecases.RoutingConfig{
		AverageSpeedMps: cfg.Routing.AverageSpeedMps,
		PathPoints:      cfg.Routing.PathPoints,
		JitterFraction:  cfg.Routing.JitterFraction,
	}, cacheSvc)
	fareSvc := usecases.NewFareService(usecases.PricingConfig{
		Currency:        cfg.Pricing.Currency,
		SurgeMultiplier: cfg.Pricing.SurgeMultiplier,
	})
	trackingSvc := usecases.NewTrackingService(publisher, usecases.SessionConfig{
		UpdateInterval: time.Duration(cfg.Tracking.UpdateIntervalMs) * time.Millisecond,
		SpeedFactor:    cfg.Tracking.SpeedFactor,
	}, logging.Component("tracking"))

	deps.Places = placeSvc
	deps.Estimates = estimateSvc
	deps.Fares = fareSvc
	deps.Tracking = trackingSvc
	deps.DB = db
	deps.Cache = cache

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "HailGo API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, &deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "places", placeSvc.Len())
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
