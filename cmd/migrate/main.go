package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hailgo/hailgo/internal/adapters/embedded"
	"github.com/hailgo/hailgo/internal/adapters/postgres"
	"github.com/hailgo/hailgo/internal/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|seed>")
	}

	cfg, err := config.Load("hailgo-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	switch os.Args[1] {
	case "up":
		runMigrations(ctx, pool)
	case "seed":
		runSeed(ctx, pool)
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

func runMigrations(ctx context.Context, pool *pgxpool.Pool) {
	files := []string{
		"migrations/001_catalog.sql",
	}

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			log.Fatalf("read %s: %v", f, err)
		}

		_, err = pool.Exec(ctx, string(data))
		if err != nil {
			log.Fatalf("exec %s: %v", f, err)
		}

		fmt.Printf("OK  %s\n", f)
	}
}

// runSeed primes the catalog tables from the embedded seed data.
func runSeed(ctx context.Context, pool *pgxpool.Pool) {
	source := embedded.NewSource()
	places, err := source.Places(ctx)
	if err != nil {
		log.Fatalf("embedded places: %v", err)
	}
	corridors, err := source.Corridors(ctx)
	if err != nil {
		log.Fatalf("embedded corridors: %v", err)
	}

	repo := postgres.NewPlaceSource(&postgres.DB{Pool: pool})
	if err := repo.Seed(ctx, places, corridors); err != nil {
		log.Fatalf("seed: %v", err)
	}

	fmt.Printf("OK  seeded %d places, %d corridors\n", len(places), len(corridors))
}
