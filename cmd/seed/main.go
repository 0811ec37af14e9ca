// Command main populates a classwall storage backend with demo content.
package main

import (
	"context"
	"flag"
	"log"
	"math/rand"

	"classwall/internal/config"
	"classwall/internal/seed"
	"classwall/internal/storage"
	"classwall/internal/store"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of demo users to create")
	numPosts := flag.Int("posts", 60, "Number of posts to create")
	numComments := flag.Int("comments", 150, "Number of comments to create")
	randSeed := flag.Int64("seed", 0, "Random seed (0 picks one)")
	flag.Parse()

	log.Println("🌱 Demo Data Seeder")
	log.Println("===================")
	log.Printf("Target: %d users, %d posts, %d comments\n", *numUsers, *numPosts, *numComments)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	kv, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open storage (%s): %v", cfg.StorageDriver, err)
	}
	defer func() {
		if closer, ok := kv.(storage.Closer); ok {
			_ = closer.Close()
		}
	}()

	st, err := store.New(ctx, kv, store.SeedConfig{
		OwnerUsername: cfg.OwnerUsername,
		OwnerPassword: cfg.OwnerPassword,
		DemoAdmin:     true,
	})
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}

	opts := seed.Options{Users: *numUsers, Posts: *numPosts, Comments: *numComments}
	if *randSeed != 0 {
		opts.Rand = rand.New(rand.NewSource(*randSeed))
	}
	if err := seed.NewSeeder(st, opts).Run(ctx, opts); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! The forum is now populated with demo content.")
}

func openStorage(ctx context.Context, cfg *config.Config) (storage.KV, error) {
	switch cfg.StorageDriver {
	case "redis":
		return storage.NewRedis(ctx, cfg.RedisURL)
	case "sqlite":
		return storage.OpenSQLite(cfg.SQLitePath)
	case "postgres":
		return storage.OpenPostgres(cfg.PostgresDSN())
	default:
		return storage.NewMemory(), nil
	}
}
