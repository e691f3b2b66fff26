package pg_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aerofare/booking-engine/internal/adapters/pg"
	"github.com/aerofare/booking-engine/internal/domain"
)

func newTestStore(t *testing.T) *pg.Store {
	t.Helper()
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
	t.Cleanup(func() { pgContainer.Terminate(ctx) })

	host, err := pgContainer.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatal(err)
	}

	pool, err := pgxpool.New(ctx, "postgres://test:test@"+host+":"+port.Port()+"/bookings?sslmode=disable")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(pool.Close)

	store := pg.NewStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatal(err)
	}
	return store
}

func testBooking(pnr, tempRef, email string, at time.Time) domain.Booking {
	return domain.Booking{
		PNR:            pnr,
		TempRef:        tempRef,
		FlightID:       1,
		SeatNumber:     "1A",
		PassengerName:  "Asha Rao",
		PassengerEmail: email,
		BookedPrice:    150.50,
		BookingDate:    at,
		Status:         domain.BookingConfirmed,
	}
}

func TestStore_InsertAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}
	store := newTestStore(t)
	ctx := context.Background()

	b := testBooking("AI4K7P2Q", "ref-1", "asha@example.com", time.Now().UTC())
	if err := store.Insert(ctx, b); err != nil {
		t.Fatal(err)
	}

	byPNR, err := store.GetByPNR(ctx, b.PNR)
	if err != nil {
		t.Fatal(err)
	}
	if byPNR.SeatNumber != "1A" || byPNR.BookedPrice != 150.50 || byPNR.Status != domain.BookingConfirmed {
		t.Errorf("unexpected booking: %+v", byPNR)
	}

	byRef, err := store.GetByTempRef(ctx, b.TempRef)
	if err != nil {
		t.Fatal(err)
	}
	if byRef.PNR != b.PNR {
		t.Errorf("expected %s by temp ref, got %s", b.PNR, byRef.PNR)
	}

	if _, err := store.GetByPNR(ctx, "AIXXXXXX"); !errors.Is(err, domain.ErrBookingNotFound) {
		t.Errorf("expected ErrBookingNotFound, got %v", err)
	}

	// Duplicate PNR violates the primary key.
	if err := store.Insert(ctx, testBooking(b.PNR, "ref-2", "other@example.com", time.Now().UTC())); err == nil {
		t.Error("expected duplicate pnr to fail")
	}
}

func TestStore_SetStatus(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}
	store := newTestStore(t)
	ctx := context.Background()

	b := testBooking("AI4K7P2Q", "ref-1", "asha@example.com", time.Now().UTC())
	if err := store.Insert(ctx, b); err != nil {
		t.Fatal(err)
	}

	if err := store.SetStatus(ctx, b.PNR, domain.BookingCancelled); err != nil {
		t.Fatal(err)
	}
	got, err := store.GetByPNR(ctx, b.PNR)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.BookingCancelled {
		t.Errorf("expected cancelled, got %s", got.Status)
	}

	if err := store.SetStatus(ctx, "AIXXXXXX", domain.BookingCancelled); !errors.Is(err, domain.ErrBookingNotFound) {
		t.Errorf("expected ErrBookingNotFound, got %v", err)
	}
}

func TestStore_History(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	bookings := []domain.Booking{
		testBooking("AI111111", "ref-1", "asha@example.com", now.Add(-2*time.Hour)),
		testBooking("AI222222", "ref-2", "asha@example.com", now),
		testBooking("AI333333", "ref-3", "other@example.com", now),
	}
	for _, b := range bookings {
		if err := store.Insert(ctx, b); err != nil {
			t.Fatal(err)
		}
	}

	history, err := store.History(ctx, "asha@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 bookings, got %d", len(history))
	}
	if history[0].PNR != "AI222222" {
		t.Errorf("expected most recent first, got %s", history[0].PNR)
	}
}
