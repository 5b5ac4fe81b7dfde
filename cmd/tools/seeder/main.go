// Seeder registers a starter catalog through the configured snapshot backend.
// Safe to rerun: items already present by name are skipped.
package main

import (
	"context"
	"log"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/Shreyas-sv10/Shopperplex2/internal/catalog"
	"github.com/Shreyas-sv10/Shopperplex2/internal/config"
	"github.com/Shreyas-sv10/Shopperplex2/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	persister, cleanup, err := newPersister(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open snapshot backend: %v", err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	st, err := store.Open(ctx, persister)
	if err != nil {
		log.Fatalf("Failed to load snapshot: %v", err)
	}
	svc := &catalog.Service{Store: st}

	existing := make(map[string]bool)
	for _, item := range st.Items() {
		existing[item.Name] = true
	}

	items := []struct {
		Name        string
		PriceKg     float64
		PriceManual float64
	}{
		{"Rice", 60, 0},
		{"Sugar", 45, 0},
		{"Toor Dal", 120, 0},
		{"Wheat Flour", 40, 0},
		{"Groundnut Oil", 180, 0},
		{"Tea Powder", 0, 55},
		{"Bath Soap", 0, 25},
		{"Washing Powder", 0, 75},
		{"Matchbox", 0, 2},
		{"Salt", 20, 0},
	}

	log.Println("Seeding catalog...")
	seeded := 0
	for _, it := range items {
		if existing[it.Name] {
			continue
		}
		params := catalog.AddItemParams{Name: it.Name}
		if it.PriceKg > 0 {
			v := it.PriceKg
			params.PriceKg = &v
		}
		if it.PriceManual > 0 {
			v := it.PriceManual
			params.PriceManual = &v
		}
		if _, err := svc.AddItem(ctx, params); err != nil {
			log.Printf("Failed to seed item %s: %v", it.Name, err)
			continue
		}
		seeded++
	}
	log.Printf("Seeding completed: %d new items, %d already present", seeded, len(existing))
}

func newPersister(ctx context.Context, cfg *config.Config) (store.Persister, func(), error) {
	switch cfg.SnapshotBackend {
	case config.BackendRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return store.RedisPersister{Client: client, Key: cfg.SnapshotKey},
			func() { _ = client.Close() }, nil
	case config.BackendPebble:
		p, err := store.OpenPebblePersister(cfg.SnapshotPath, cfg.SnapshotKey)
		if err != nil {
			return nil, nil, err
		}
		return p, func() { _ = p.Close() }, nil
	default:
		return store.FilePersister{Path: cfg.SnapshotPath}, nil, nil
	}
}
