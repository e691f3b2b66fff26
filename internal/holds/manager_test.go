package holds_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aerofare/booking-engine/internal/domain"
	"github.com/aerofare/booking-engine/internal/holds"
	"github.com/aerofare/booking-engine/internal/seats"
)

type fixedPrice struct {
	price float64
	err   error
}

func (f *fixedPrice) CurrentPrice(int64) (float64, error) { return f.price, f.err }

func newManager(t *testing.T, ttl time.Duration, price float64) (*holds.Manager, *seats.Registry) {
	t.Helper()
	r := seats.NewRegistry(nil)
	r.InitFlight(1, 6)
	return holds.NewManager(r, &fixedPrice{price: price}, ttl, nil), r
}

func TestManager_InitiateSnapshotsPrice(t *testing.T) {
	m, _ := newManager(t, 5*time.Minute, 123.45)

	h, err := m.Initiate(1, "1A")
	if err != nil {
		t.Fatal(err)
	}
	if h.PriceSnapshot != 123.45 {
		t.Errorf("expected snapshot 123.45, got %v", h.PriceSnapshot)
	}
	if !h.Live(time.Now().UTC()) {
		t.Error("expected live hold")
	}

	got, ok := m.Get(h.TempRef)
	if !ok {
		t.Fatal("expected hold to be retrievable")
	}
	if got.PriceSnapshot != h.PriceSnapshot {
		t.Errorf("stored snapshot %v differs from issued %v", got.PriceSnapshot, h.PriceSnapshot)
	}
}

func TestManager_InitiateConflict(t *testing.T) {
	m, _ := newManager(t, 5*time.Minute, 100)

	if _, err := m.Initiate(1, "1A"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Initiate(1, "1A"); !errors.Is(err, domain.ErrSeatUnavailable) {
		t.Errorf("expected ErrSeatUnavailable, got %v", err)
	}

	// A different seat is unaffected by the conflict.
	if _, err := m.Initiate(1, "1B"); err != nil {
		t.Errorf("expected independent seat to hold, got %v", err)
	}
}

func TestManager_InitiatePriceError(t *testing.T) {
	r := seats.NewRegistry(nil)
	r.InitFlight(1, 6)
	m := holds.NewManager(r, &fixedPrice{err: domain.ErrFlightNotFound}, 5*time.Minute, nil)

	if _, err := m.Initiate(1, "1A"); !errors.Is(err, domain.ErrFlightNotFound) {
		t.Errorf("expected ErrFlightNotFound, got %v", err)
	}
	// The acquired seat was released when the quote failed.
	if r.AvailableSeats(1) != 6 {
		t.Errorf("expected 6 available, got %d", r.AvailableSeats(1))
	}
	if _, err := m.Initiate(1, "1A"); !errors.Is(err, domain.ErrFlightNotFound) {
		t.Errorf("expected seat to be retakeable, got %v", err)
	}
}

func TestManager_Release(t *testing.T) {
	m, r := newManager(t, 5*time.Minute, 100)

	h, err := m.Initiate(1, "1A")
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Release(h.TempRef); err != nil {
		t.Fatal(err)
	}
	if r.AvailableSeats(1) != 6 {
		t.Errorf("expected 6 available, got %d", r.AvailableSeats(1))
	}
	if err := m.Release(h.TempRef); !errors.Is(err, domain.ErrHoldNotFound) {
		t.Errorf("expected ErrHoldNotFound on double release, got %v", err)
	}
}

func TestManager_Consume(t *testing.T) {
	m, _ := newManager(t, 5*time.Minute, 100)

	h, err := m.Initiate(1, "1A")
	if err != nil {
		t.Fatal(err)
	}
	m.Consume(h.TempRef)
	if _, ok := m.Get(h.TempRef); ok {
		t.Error("expected consumed hold to be forgotten")
	}
}

type eventRecorder struct {
	mu     sync.Mutex
	events []string
}

func (r *eventRecorder) Publish(_ context.Context, eventType string, _ interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, eventType)
	return nil
}

func TestManager_LifecycleEvents(t *testing.T) {
	m, _ := newManager(t, 5*time.Minute, 100)
	rec := &eventRecorder{}
	m = m.WithEvents(rec)

	h, err := m.Initiate(1, "1A")
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Release(h.TempRef); err != nil {
		t.Fatal(err)
	}

	want := []string{"hold.created", "hold.released"}
	if len(rec.events) != 2 || rec.events[0] != want[0] || rec.events[1] != want[1] {
		t.Errorf("expected %v, got %v", want, rec.events)
	}
}

func TestManager_DropExpired(t *testing.T) {
	ttl := 5 * time.Minute
	m, _ := newManager(t, ttl, 100)

	h, err := m.Initiate(1, "1A")
	if err != nil {
		t.Fatal(err)
	}

	// Within the grace window the record survives so a late confirm can
	// still be told the hold expired.
	if dropped := m.DropExpired(h.ExpiresAt.Add(ttl / 2)); dropped != 0 {
		t.Errorf("expected 0 dropped inside grace window, got %d", dropped)
	}
	if _, ok := m.Get(h.TempRef); !ok {
		t.Error("expected record to survive grace window")
	}

	if dropped := m.DropExpired(h.ExpiresAt.Add(ttl + time.Second)); dropped != 1 {
		t.Errorf("expected 1 dropped past grace window, got %d", dropped)
	}
	if _, ok := m.Get(h.TempRef); ok {
		t.Error("expected record to be gone")
	}
}
