package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	redisclient "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	mongoadapter "github.com/aerofare/booking-engine/internal/adapters/mongo"
	"github.com/aerofare/booking-engine/internal/adapters/pg"
	"github.com/aerofare/booking-engine/internal/adapters/rabbit"
	redisadapter "github.com/aerofare/booking-engine/internal/adapters/redis"
	"github.com/aerofare/booking-engine/internal/catalog"
	"github.com/aerofare/booking-engine/internal/config"
	"github.com/aerofare/booking-engine/internal/holds"
	httphandler "github.com/aerofare/booking-engine/internal/http"
	"github.com/aerofare/booking-engine/internal/idempotency"
	"github.com/aerofare/booking-engine/internal/ledger"
	"github.com/aerofare/booking-engine/internal/ledger/memstore"
	"github.com/aerofare/booking-engine/internal/observability"
	"github.com/aerofare/booking-engine/internal/pricing"
	"github.com/aerofare/booking-engine/internal/ratelimit"
	"github.com/aerofare/booking-engine/internal/seats"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdownOTel()

	logger := observability.NewLogger()

	// Booking store: postgres when configured, in-memory otherwise.
	var store ledger.Store = memstore.New()
	if cfg.PGDSN != "" {
		pool, err := pgxpool.New(ctx, cfg.PGDSN)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()
		pgStore := pg.NewStore(pool)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			log.Fatalf("failed to ensure schema: %v", err)
		}
		store = pgStore
	}

	// Catalog: mongo when configured, built-in sample set otherwise.
	var (
		query   catalog.Query
		auditor ledger.Auditor
	)
	flights := catalog.SampleFlights(time.Now())
	airlines := catalog.SampleAirlines()
	airports := catalog.SampleAirports()
	if cfg.MongoURI != "" {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatalf("failed to connect to mongo: %v", err)
		}
		defer mongoClient.Disconnect(context.Background())
		mongoDB := mongoClient.Database("aerofare")
		mongoCatalog := mongoadapter.NewCatalogRepository(mongoDB, logger)
		auditor = mongoadapter.NewAuditLogger(mongoDB, logger)

		stored, err := mongoCatalog.Flights(ctx)
		if err != nil {
			log.Fatalf("failed to load catalog: %v", err)
		}
		if len(stored) == 0 {
			log.Fatal("catalog is empty, run the seed command first")
		}
		flights = stored
		if airlines, err = mongoCatalog.Airlines(ctx); err != nil {
			log.Fatalf("failed to load airlines: %v", err)
		}
		if airports, err = mongoCatalog.Airports(ctx); err != nil {
			log.Fatalf("failed to load airports: %v", err)
		}
		query = mongoCatalog
	}
	snapshot := catalog.NewSnapshot(flights, airlines, airports)

	var (
		rl    *ratelimit.Limiter
		idemp *idempotency.Service
	)
	if cfg.RedisAddr != "" {
		redisClient := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		cache := redisadapter.NewCache(redisClient)
		rl = ratelimit.NewLimiter(cache)
		idemp = idempotency.New(cache, time.Hour)
	}

	var pub *rabbit.Publisher
	if cfg.RabbitURL != "" {
		rabbitConn, err := amqp.Dial(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		defer rabbitConn.Close()
		if pub, err = rabbit.NewPublisher(rabbitConn); err != nil {
			log.Fatalf("failed to create publisher: %v", err)
		}
	}

	registry := seats.NewRegistry(logger)
	engine := pricing.NewEngine(registry, cfg.PriceFloor, logger)
	for _, f := range flights {
		registry.InitFlight(f.ID, f.TotalSeats)
		engine.Register(f)
	}

	holdManager := holds.NewManager(registry, engine, cfg.HoldTTL, logger)
	bookingLedger := ledger.New(store, holdManager, registry, snapshot, logger)
	if pub != nil {
		holdManager = holdManager.WithEvents(pub)
		bookingLedger = bookingLedger.WithEvents(pub)
	}
	if auditor != nil {
		bookingLedger = bookingLedger.WithAuditor(auditor)
	}

	handlers := httphandler.NewHandlers(holdManager, bookingLedger, registry, engine, snapshot, query, logger)
	router := httphandler.SetupRouter(handlers, logger, rl, idemp)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		engine.Run(gctx, cfg.PriceTickInterval)
		return nil
	})
	g.Go(func() error {
		holdManager.Run(gctx, cfg.SweepInterval)
		return nil
	})
	g.Go(func() error {
		logger.WithField("addr", cfg.ListenAddr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server error: %v", err)
	}
	logger.Info("server exiting")
}
