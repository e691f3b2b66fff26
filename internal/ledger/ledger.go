package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/aerofare/booking-engine/internal/domain"
	"github.com/aerofare/booking-engine/internal/holds"
	"github.com/aerofare/booking-engine/internal/observability"
	"github.com/aerofare/booking-engine/internal/seats"
)

// confirmTimeout bounds the check-then-promote sequence so a slow
// store cannot mask an expiry past one TTL window.
const confirmTimeout = 10 * time.Second

// pnrAttempts caps regeneration on PNR collision. With 36^6 suffixes a
// second collision in a row already signals something badly wrong.
const pnrAttempts = 5

// FlightSource resolves flight facts for display and PNR prefixes.
type FlightSource interface {
	Flight(flightID int64) (domain.Flight, bool)
}

// EventPublisher emits booking lifecycle events. Nil-safe at the call
// sites so the ledger runs without a broker.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

// Auditor records an immutable audit trail entry. Best-effort.
type Auditor interface {
	RecordBooking(ctx context.Context, b domain.Booking) error
}

// Ledger converts live holds into immutable, uniquely-numbered
// bookings, and owns lookup, history and cancellation.
type Ledger struct {
	store    Store
	holds    *holds.Manager
	registry *seats.Registry
	flights  FlightSource
	events   EventPublisher
	audit    Auditor
	logger   observability.Logger
}

func New(store Store, hm *holds.Manager, registry *seats.Registry, flights FlightSource, logger observability.Logger) *Ledger {
	return &Ledger{
		store:    store,
		holds:    hm,
		registry: registry,
		flights:  flights,
		logger:   logger,
	}
}

// WithEvents attaches a lifecycle event publisher.
func (l *Ledger) WithEvents(p EventPublisher) *Ledger {
	l.events = p
	return l
}

// WithAuditor attaches an audit trail sink.
func (l *Ledger) WithAuditor(a Auditor) *Ledger {
	l.audit = a
	return l
}

// Confirm promotes the hold identified by tempRef into a booking.
// Idempotent per tempRef: a retry after success returns the existing
// booking with the same PNR and price, and never books twice.
func (l *Ledger) Confirm(ctx context.Context, tempRef string, flightID int64, seatNumber, passengerName, passengerEmail string) (domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, confirmTimeout)
	defer cancel()

	timer := time.Now()
	defer func() {
		observability.ConfirmDuration.Observe(time.Since(timer).Seconds())
	}()

	// A reference that was already consumed means this is a retry.
	if b, err := l.store.GetByTempRef(ctx, tempRef); err == nil {
		observability.ConfirmsTotal.WithLabelValues("idempotent").Inc()
		return b, nil
	} else if !errors.Is(err, domain.ErrBookingNotFound) {
		return domain.Booking{}, err
	}

	h, ok := l.holds.Get(tempRef)
	if !ok {
		observability.ConfirmsTotal.WithLabelValues("not_found").Inc()
		return domain.Booking{}, domain.ErrHoldNotFound
	}
	if h.FlightID != flightID || h.SeatNumber != seatNumber {
		observability.ConfirmsTotal.WithLabelValues("mismatch").Inc()
		return domain.Booking{}, domain.ErrHoldMismatch
	}

	now := time.Now().UTC()
	if !h.Live(now) {
		// Trigger the release rather than waiting for the sweep.
		_ = l.registry.Release(flightID, seatNumber, tempRef)
		observability.ConfirmsTotal.WithLabelValues("expired").Inc()
		return domain.Booking{}, domain.ErrHoldExpired
	}

	// Re-check under the seat's exclusion: the hold can expire or be
	// reclaimed between the liveness check above and this promote.
	if err := l.registry.Promote(flightID, seatNumber, tempRef); err != nil {
		switch {
		case errors.Is(err, domain.ErrHoldExpired):
			observability.ConfirmsTotal.WithLabelValues("expired").Inc()
		case errors.Is(err, domain.ErrHoldMismatch):
			observability.ConfirmsTotal.WithLabelValues("mismatch").Inc()
		}
		return domain.Booking{}, err
	}

	booking := domain.Booking{
		PNR:            l.uniquePNR(ctx, flightID),
		TempRef:        tempRef,
		FlightID:       flightID,
		SeatNumber:     seatNumber,
		PassengerName:  passengerName,
		PassengerEmail: passengerEmail,
		BookedPrice:    h.PriceSnapshot,
		BookingDate:    now,
		Status:         domain.BookingConfirmed,
	}

	if err := l.store.Insert(ctx, booking); err != nil {
		// Seat state must not leak a phantom booking: put the hold
		// back exactly as it was and report the fault.
		if rerr := l.registry.Reinstate(flightID, seatNumber, h); rerr != nil && l.logger != nil {
			l.logger.WithError(rerr).Error("failed to reinstate hold after store fault")
		}
		observability.ConfirmsTotal.WithLabelValues("store_error").Inc()
		return domain.Booking{}, err
	}

	l.holds.Consume(tempRef)
	observability.ConfirmsTotal.WithLabelValues("success").Inc()

	l.publish(ctx, "booking.confirmed", booking)
	if l.audit != nil {
		if err := l.audit.RecordBooking(ctx, booking); err != nil && l.logger != nil {
			l.logger.WithError(err).Warn("audit record failed")
		}
	}
	return booking, nil
}

// Cancel flips a confirmed booking to cancelled and releases its seat.
// Who may cancel is the caller's concern, not the ledger's.
func (l *Ledger) Cancel(ctx context.Context, pnr string) error {
	b, err := l.store.GetByPNR(ctx, pnr)
	if err != nil {
		return err
	}
	if b.Status == domain.BookingCancelled {
		return domain.ErrAlreadyCancelled
	}

	if err := l.store.SetStatus(ctx, pnr, domain.BookingCancelled); err != nil {
		return err
	}
	if err := l.registry.ReleaseBooked(b.FlightID, b.SeatNumber); err != nil && l.logger != nil {
		l.logger.WithError(err).WithField("pnr", pnr).Error("seat release after cancel failed")
	}

	observability.BookingsCancelled.Inc()
	b.Status = domain.BookingCancelled
	l.publish(ctx, "booking.cancelled", b)
	return nil
}

func (l *Ledger) ByPNR(ctx context.Context, pnr string) (domain.Booking, error) {
	return l.store.GetByPNR(ctx, pnr)
}

// History returns a passenger's bookings, most recent first.
func (l *Ledger) History(ctx context.Context, email string) ([]domain.Booking, error) {
	return l.store.History(ctx, email)
}

// uniquePNR draws record locators until one is unused. The airline
// code prefix comes from the flight when known.
func (l *Ledger) uniquePNR(ctx context.Context, flightID int64) string {
	prefix := "XX"
	if f, ok := l.flights.Flight(flightID); ok && f.AirlineCode != "" {
		prefix = f.AirlineCode
	}

	for i := 0; i < pnrAttempts; i++ {
		pnr := newPNR(prefix)
		if _, err := l.store.GetByPNR(ctx, pnr); errors.Is(err, domain.ErrBookingNotFound) {
			return pnr
		}
	}
	// Statistically unreachable; fall through with a fresh draw.
	return newPNR(prefix)
}

func (l *Ledger) publish(ctx context.Context, eventType string, b domain.Booking) {
	if l.events == nil {
		return
	}
	if err := l.events.Publish(ctx, eventType, b); err != nil && l.logger != nil {
		l.logger.WithError(err).WithField("event", eventType).Warn("event publish failed")
	}
}
