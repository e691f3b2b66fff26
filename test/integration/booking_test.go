package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongoadapter "github.com/aerofare/booking-engine/internal/adapters/mongo"
	"github.com/aerofare/booking-engine/internal/adapters/pg"
	"github.com/aerofare/booking-engine/internal/adapters/rabbit"
	redisadapter "github.com/aerofare/booking-engine/internal/adapters/redis"
	"github.com/aerofare/booking-engine/internal/catalog"
	"github.com/aerofare/booking-engine/internal/holds"
	httphandler "github.com/aerofare/booking-engine/internal/http"
	"github.com/aerofare/booking-engine/internal/idempotency"
	"github.com/aerofare/booking-engine/internal/ledger"
	"github.com/aerofare/booking-engine/internal/observability"
	"github.com/aerofare/booking-engine/internal/pricing"
	"github.com/aerofare/booking-engine/internal/ratelimit"
	"github.com/aerofare/booking-engine/internal/seats"
)

func TestIntegration_HoldConfirmCancel(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}
	ctx := context.Background()

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			Env:          map[string]string{"POSTGRES_USER": "test", "POSTGRES_PASSWORD": "test", "POSTGRES_DB": "bookings"},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer pgContainer.Terminate(ctx)

	mongoContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer mongoContainer.Terminate(ctx)

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer redisContainer.Terminate(ctx)

	rabbitContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "rabbitmq:3.13",
			ExposedPorts: []string{"5672/tcp"},
			WaitingFor:   wait.ForListeningPort("5672/tcp"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer rabbitContainer.Terminate(ctx)

	endpoint := func(c testcontainers.Container, port nat.Port) string {
		host, err := c.Host(ctx)
		if err != nil {
			t.Fatal(err)
		}
		mapped, err := c.MappedPort(ctx, port)
		if err != nil {
			t.Fatal(err)
		}
		return host + ":" + mapped.Port()
	}

	pool, err := pgxpool.New(ctx, "postgres://test:test@"+endpoint(pgContainer, "5432")+"/bookings?sslmode=disable")
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()
	store := pg.NewStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatal(err)
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI("mongodb://"+endpoint(mongoContainer, "27017")))
	if err != nil {
		t.Fatal(err)
	}
	defer mongoClient.Disconnect(ctx)
	logger := observability.NewLogger()
	mongoDB := mongoClient.Database("aerofare")
	mongoCatalog := mongoadapter.NewCatalogRepository(mongoDB, logger)

	flights := catalog.SampleFlights(time.Now())
	if err := mongoCatalog.SeedCatalog(ctx, flights, catalog.SampleAirlines(), catalog.SampleAirports()); err != nil {
		t.Fatal(err)
	}

	redisClient := redisclient.NewClient(&redisclient.Options{Addr: endpoint(redisContainer, "6379")})
	defer redisClient.Close()
	cache := redisadapter.NewCache(redisClient)
	rl := ratelimit.NewLimiter(cache)
	idemp := idempotency.New(cache, time.Hour)

	rabbitConn, err := amqp.Dial("amqp://guest:guest@" + endpoint(rabbitContainer, "5672") + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer rabbitConn.Close()
	pub, err := rabbit.NewPublisher(rabbitConn)
	if err != nil {
		t.Fatal(err)
	}

	snapshot := catalog.NewSnapshot(flights, catalog.SampleAirlines(), catalog.SampleAirports())
	registry := seats.NewRegistry(logger)
	engine := pricing.NewEngine(registry, 49, logger)
	for _, f := range flights {
		registry.InitFlight(f.ID, f.TotalSeats)
		engine.Register(f)
	}
	manager := holds.NewManager(registry, engine, 5*time.Minute, logger)
	l := ledger.New(store, manager, registry, snapshot, logger).
		WithEvents(pub).
		WithAuditor(mongoadapter.NewAuditLogger(mongoDB, logger))

	handlers := httphandler.NewHandlers(manager, l, registry, engine, snapshot, mongoCatalog, logger)
	srv := httptest.NewServer(httphandler.SetupRouter(handlers, logger, rl, idemp))
	defer srv.Close()

	// Initiate a hold.
	initiateBody, _ := json.Marshal(map[string]interface{}{
		"flight_id": 1, "seat_number": "1A",
	})
	resp, err := http.Post(srv.URL+"/book/initiate", "application/json", bytes.NewReader(initiateBody))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("initiate failed: status %d", resp.StatusCode)
	}
	var initiate struct {
		TempReference string  `json:"temp_reference"`
		CurrentPrice  float64 `json:"current_price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&initiate); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	// Confirm, carrying an idempotency key like a retrying client would.
	confirmBody, _ := json.Marshal(map[string]interface{}{
		"temp_reference":  initiate.TempReference,
		"flight_id":       1,
		"seat_number":     "1A",
		"passenger_name":  "Asha Rao",
		"passenger_email": "asha@example.com",
	})
	key := uuid.NewString()
	req, _ := http.NewRequest("POST", srv.URL+"/book/confirm", bytes.NewReader(confirmBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", key)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("confirm failed: status %d", resp.StatusCode)
	}
	var confirm struct {
		PNR         string  `json:"pnr"`
		BookedPrice float64 `json:"booked_price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&confirm); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if confirm.PNR == "" {
		t.Fatal("expected a record locator")
	}
	if confirm.BookedPrice != initiate.CurrentPrice {
		t.Errorf("expected booked price %v to match the hold snapshot, got %v", initiate.CurrentPrice, confirm.BookedPrice)
	}

	// Replay with the same key returns the cached booking.
	req, _ = http.NewRequest("POST", srv.URL+"/book/confirm", bytes.NewReader(confirmBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", key)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	var replay struct {
		PNR string `json:"pnr"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&replay); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if replay.PNR != confirm.PNR {
		t.Errorf("replay returned %q, expected %q", replay.PNR, confirm.PNR)
	}

	// The booking survives in Postgres.
	resp, err = http.Get(srv.URL + "/bookings/" + confirm.PNR)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get booking failed: status %d", resp.StatusCode)
	}
	var booking struct {
		Status     string `json:"status"`
		SeatNumber string `json:"seat_number"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&booking); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if booking.Status != "confirmed" || booking.SeatNumber != "1A" {
		t.Errorf("unexpected booking: %+v", booking)
	}

	// Cancel releases the seat.
	req, _ = http.NewRequest("DELETE", srv.URL+"/bookings/"+confirm.PNR, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel failed: status %d", resp.StatusCode)
	}

	resp, err = http.Post(srv.URL+"/book/initiate", "application/json", bytes.NewReader(initiateBody))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected seat to be holdable after cancel, got status %d", resp.StatusCode)
	}
}
