package holds

import (
	"context"
	"sync"
	"time"

	"github.com/aerofare/booking-engine/internal/domain"
	"github.com/aerofare/booking-engine/internal/observability"
	"github.com/aerofare/booking-engine/internal/seats"
)

// PriceSource quotes the live price for a flight. Satisfied by the
// pricing engine.
type PriceSource interface {
	CurrentPrice(flightID int64) (float64, error)
}

// EventPublisher emits hold lifecycle events. Optional and best-effort.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

type record struct {
	hold domain.Hold
	// expiredSent marks that the expiry event for this record already
	// went out.
	expiredSent bool
}

// Manager creates and expires time-boxed seat holds. The price a user
// sees is locked at hold time: Initiate snapshots the current price
// into the hold, and confirmation later honors that snapshot.
type Manager struct {
	registry *seats.Registry
	pricing  PriceSource
	ttl      time.Duration
	logger   observability.Logger
	events   EventPublisher

	mu    sync.RWMutex
	byRef map[string]*record
}

func NewManager(registry *seats.Registry, pricing PriceSource, ttl time.Duration, logger observability.Logger) *Manager {
	return &Manager{
		registry: registry,
		pricing:  pricing,
		ttl:      ttl,
		logger:   logger,
		byRef:    make(map[string]*record),
	}
}

// WithEvents attaches a lifecycle event publisher.
func (m *Manager) WithEvents(p EventPublisher) *Manager {
	m.events = p
	return m
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Initiate acquires the seat through the registry and snapshots the
// flight's current price into the resulting hold. Exactly one of two
// racing calls for the same seat wins.
func (m *Manager) Initiate(flightID int64, seatNumber string) (domain.Hold, error) {
	hold, err := m.registry.TryHold(flightID, seatNumber, m.ttl)
	if err != nil {
		if err == domain.ErrSeatUnavailable {
			observability.HoldConflicts.Inc()
		}
		return domain.Hold{}, err
	}

	// Quote after the seat is ours so the snapshot reflects the price
	// at hold time, not one tick earlier.
	price, err := m.pricing.CurrentPrice(flightID)
	if err != nil {
		_ = m.registry.Release(flightID, seatNumber, hold.TempRef)
		return domain.Hold{}, err
	}
	hold.PriceSnapshot = price

	m.mu.Lock()
	m.byRef[hold.TempRef] = &record{hold: hold}
	m.mu.Unlock()

	observability.HoldsCreated.Inc()
	m.publish("hold.created", hold)
	return hold, nil
}

// Get returns the hold for a temp reference, whether or not it is
// still live. Callers decide what staleness means for them.
func (m *Manager) Get(tempRef string) (domain.Hold, bool) {
	m.mu.RLock()
	rec, ok := m.byRef[tempRef]
	m.mu.RUnlock()
	if !ok {
		return domain.Hold{}, false
	}
	return rec.hold, true
}

// Release cancels a hold before confirmation and frees the seat.
func (m *Manager) Release(tempRef string) error {
	m.mu.Lock()
	rec, ok := m.byRef[tempRef]
	if ok {
		delete(m.byRef, tempRef)
	}
	m.mu.Unlock()
	if !ok {
		return domain.ErrHoldNotFound
	}
	if err := m.registry.Release(rec.hold.FlightID, rec.hold.SeatNumber, rec.hold.TempRef); err != nil {
		return err
	}
	m.publish("hold.released", rec.hold)
	return nil
}

// Consume forgets a hold whose seat was promoted. The ledger calls it
// after a successful confirm; the temp reference is terminal from then on.
func (m *Manager) Consume(tempRef string) {
	m.mu.Lock()
	delete(m.byRef, tempRef)
	m.mu.Unlock()
}

// DropExpired forgets holds whose seat the registry has already
// reclaimed (or will reclaim). The record is kept for one extra TTL
// past expiry so a late confirm still gets ErrHoldExpired rather than
// ErrHoldNotFound.
func (m *Manager) DropExpired(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	dropped := 0
	for ref, rec := range m.byRef {
		if now.Sub(rec.hold.ExpiresAt) > m.ttl {
			delete(m.byRef, ref)
			dropped++
		}
	}
	return dropped
}

// notifyExpired emits hold.expired once per record after its deadline
// passes.
func (m *Manager) notifyExpired(now time.Time) {
	if m.events == nil {
		return
	}

	m.mu.Lock()
	var expired []domain.Hold
	for _, rec := range m.byRef {
		if !rec.expiredSent && !rec.hold.Live(now) {
			rec.expiredSent = true
			expired = append(expired, rec.hold)
		}
	}
	m.mu.Unlock()

	for _, h := range expired {
		m.publish("hold.expired", h)
	}
}

// Run drives the periodic expiry sweep: the registry reclaims expired
// seats proactively and the manager prunes its stale records.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now().UTC()
			reclaimed := m.registry.Sweep()
			m.notifyExpired(now)
			dropped := m.DropExpired(now)
			if (reclaimed > 0 || dropped > 0) && m.logger != nil {
				m.logger.WithField("reclaimed", reclaimed).WithField("dropped", dropped).Debug("expiry sweep")
			}
		}
	}
}

func (m *Manager) publish(eventType string, h domain.Hold) {
	if m.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.events.Publish(ctx, eventType, h); err != nil && m.logger != nil {
		m.logger.WithError(err).WithField("event", eventType).Warn("event publish failed")
	}
}
