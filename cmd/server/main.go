// Command main is the entry point for the classwall forum server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"classwall/internal/config"
	"classwall/internal/observability"
	"classwall/internal/seed"
	"classwall/internal/server"
	"classwall/internal/storage"
	"classwall/internal/store"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	if cfg.TracingEnabled {
		shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
			ServiceName:    "classwall-api",
			ServiceVersion: "1.0.0",
			Environment:    cfg.Env,
			Enabled:        true,
			Exporter:       cfg.TraceExporter,
			OTLPEndpoint:   cfg.OTLPEndpoint,
			SamplerRatio:   cfg.TraceSampler,
		})
		if err != nil {
			log.Fatalf("Failed to initialize tracing: %v", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(ctx); err != nil {
				log.Printf("Tracing shutdown error: %v", err)
			}
		}()
	}

	kv, rdb, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open storage (%s): %v", cfg.StorageDriver, err)
	}

	st, err := store.New(ctx, kv, store.SeedConfig{
		OwnerUsername: cfg.OwnerUsername,
		OwnerPassword: cfg.OwnerPassword,
		DemoAdmin:     cfg.SeedDemoData,
	})
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}

	if cfg.SeedDemoData {
		opts := seed.Options{Users: 12, Posts: 40, Comments: 80}
		if err := seed.NewSeeder(st, opts).Run(ctx, opts); err != nil {
			log.Printf("Demo data seeding failed: %v", err)
		}
	}

	srv, err := server.NewServer(cfg, st, kv, rdb)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	app := srv.App()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		if closer, ok := kv.(storage.Closer); ok {
			if err := closer.Close(); err != nil {
				log.Printf("Storage close error: %v", err)
			}
		}
	}()

	log.Printf("Server starting on port %s (storage=%s)...", cfg.Port, cfg.StorageDriver)
	log.Fatal(app.Listen(":" + cfg.Port))
}

// openStorage picks the persistence backend from configuration. The returned
// redis client is non-nil only for the redis driver; the server uses it for
// rate limiting and readiness probes.
func openStorage(ctx context.Context, cfg *config.Config) (storage.KV, *redis.Client, error) {
	switch cfg.StorageDriver {
	case "redis":
		r, err := storage.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return r, r.Client(), nil
	case "sqlite":
		kv, err := storage.OpenSQLite(cfg.SQLitePath)
		return kv, nil, err
	case "postgres":
		kv, err := storage.OpenPostgres(cfg.PostgresDSN())
		return kv, nil, err
	default:
		return storage.NewMemory(), nil, nil
	}
}
