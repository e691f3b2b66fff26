package main

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongoadapter "github.com/aerofare/booking-engine/internal/adapters/mongo"
	"github.com/aerofare/booking-engine/internal/adapters/pg"
	"github.com/aerofare/booking-engine/internal/catalog"
	"github.com/aerofare/booking-engine/internal/config"
	"github.com/aerofare/booking-engine/internal/observability"
)

// Seeds the mongo catalog with the sample flight set and creates the
// postgres booking schema. Both sides are optional and skipped when not
// configured.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := observability.NewLogger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.MongoURI != "" {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatalf("failed to connect to mongo: %v", err)
		}
		defer mongoClient.Disconnect(context.Background())

		repo := mongoadapter.NewCatalogRepository(mongoClient.Database("aerofare"), logger)
		flights := catalog.SampleFlights(time.Now())
		if err := repo.SeedCatalog(ctx, flights, catalog.SampleAirlines(), catalog.SampleAirports()); err != nil {
			log.Fatalf("failed to seed catalog: %v", err)
		}
		logger.WithField("flights", len(flights)).Info("catalog seeded")
	}

	if cfg.PGDSN != "" {
		pool, err := pgxpool.New(ctx, cfg.PGDSN)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()

		if err := pg.NewStore(pool).EnsureSchema(ctx); err != nil {
			log.Fatalf("failed to ensure schema: %v", err)
		}
		logger.Info("booking schema ready")
	}
}
