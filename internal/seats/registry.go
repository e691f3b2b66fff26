package seats

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aerofare/booking-engine/internal/domain"
	"github.com/aerofare/booking-engine/internal/observability"
)

var seatLetters = []byte("ABCDEF")

// SeatNumbers generates the seat map for a cabin of the given size,
// six seats per row, letters A-F.
func SeatNumbers(totalSeats int) []string {
	out := make([]string, 0, totalSeats)
	for i := 0; i < totalSeats; i++ {
		row := i/len(seatLetters) + 1
		col := i % len(seatLetters)
		out = append(out, fmt.Sprintf("%d%c", row, seatLetters[col]))
	}
	return out
}

// seat is one guarded cell. Every mutation of state or hold happens
// under mu, which is never held across I/O.
type seat struct {
	mu    sync.Mutex
	state domain.SeatState
	hold  *domain.Hold
}

type flightSeats struct {
	seats     map[string]*seat
	ordered   []string
	available atomic.Int64
}

// Registry owns the authoritative seat state for every flight. The
// exclusion unit is a single (flight, seat) cell: operations on the
// same seat are strictly serialized, unrelated seats never contend.
type Registry struct {
	mu      sync.RWMutex
	flights map[int64]*flightSeats
	logger  observability.Logger
}

func NewRegistry(logger observability.Logger) *Registry {
	return &Registry{
		flights: make(map[int64]*flightSeats),
		logger:  logger,
	}
}

// InitFlight creates the seat map for a flight. Called once at catalog
// load; re-initializing an existing flight is a no-op.
func (r *Registry) InitFlight(flightID int64, totalSeats int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.flights[flightID]; ok {
		return
	}

	numbers := SeatNumbers(totalSeats)
	fs := &flightSeats{
		seats:   make(map[string]*seat, len(numbers)),
		ordered: numbers,
	}
	for _, n := range numbers {
		fs.seats[n] = &seat{state: domain.SeatAvailable}
	}
	fs.available.Store(int64(len(numbers)))
	r.flights[flightID] = fs
}

// TryHold atomically transitions an available seat to held and returns
// the new hold. An expired hold found on the seat is reclaimed first;
// a live hold or a booking yields ErrSeatUnavailable.
func (r *Registry) TryHold(flightID int64, seatNumber string, ttl time.Duration) (domain.Hold, error) {
	fs, s, err := r.cell(flightID, seatNumber)
	if err != nil {
		return domain.Hold{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r.reclaimLocked(fs, s, time.Now().UTC())

	switch s.state {
	case domain.SeatBooked:
		return domain.Hold{}, domain.ErrSeatUnavailable
	case domain.SeatHeld:
		return domain.Hold{}, domain.ErrSeatUnavailable
	}

	h := domain.NewHold(flightID, seatNumber, 0, ttl)
	s.state = domain.SeatHeld
	s.hold = &h
	fs.available.Add(-1)
	return h, nil
}

// Release frees a held seat, but only for the holder identified by
// tempRef. Releasing an already-freed or foreign hold is a mismatch.
func (r *Registry) Release(flightID int64, seatNumber, tempRef string) error {
	fs, s, err := r.cell(flightID, seatNumber)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.SeatHeld || s.hold == nil || s.hold.TempRef != tempRef {
		return domain.ErrHoldMismatch
	}
	s.state = domain.SeatAvailable
	s.hold = nil
	fs.available.Add(1)
	return nil
}

// Promote converts a live hold into a booked seat. The caller supplies
// the tempRef it was issued; an expired hold is reclaimed and reported
// as ErrHoldExpired, any other discrepancy as ErrHoldMismatch.
func (r *Registry) Promote(flightID int64, seatNumber, tempRef string) error {
	fs, s, err := r.cell(flightID, seatNumber)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == domain.SeatHeld && s.hold != nil && s.hold.TempRef == tempRef {
		if !s.hold.Live(time.Now().UTC()) {
			s.state = domain.SeatAvailable
			s.hold = nil
			fs.available.Add(1)
			observability.HoldsReclaimed.Inc()
			return domain.ErrHoldExpired
		}
		s.state = domain.SeatBooked
		s.hold = nil
		return nil
	}
	return domain.ErrHoldMismatch
}

// ReleaseBooked returns a booked seat to the pool. Used by booking
// cancellation; releasing a seat that is not booked is a no-op so that
// cancel stays idempotent at the seat level.
func (r *Registry) ReleaseBooked(flightID int64, seatNumber string) error {
	fs, s, err := r.cell(flightID, seatNumber)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.SeatBooked {
		return nil
	}
	s.state = domain.SeatAvailable
	fs.available.Add(1)
	return nil
}

// Reinstate rolls a just-promoted seat back to held under its original
// hold. Only the booking ledger uses it, when persisting the booking
// fails after Promote already flipped the seat.
func (r *Registry) Reinstate(flightID int64, seatNumber string, h domain.Hold) error {
	_, s, err := r.cell(flightID, seatNumber)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.SeatBooked {
		return domain.ErrHoldMismatch
	}
	s.state = domain.SeatHeld
	s.hold = &h
	return nil
}

// Status reports the seat's state, reclaiming an expired hold on the
// way so callers never observe a stale "held".
func (r *Registry) Status(flightID int64, seatNumber string) (domain.SeatState, error) {
	fs, s, err := r.cell(flightID, seatNumber)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	r.reclaimLocked(fs, s, time.Now().UTC())
	return s.state, nil
}

// SeatMap snapshots the whole cabin in seat order.
func (r *Registry) SeatMap(flightID int64) ([]domain.Seat, error) {
	r.mu.RLock()
	fs, ok := r.flights[flightID]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrFlightNotFound
	}

	now := time.Now().UTC()
	out := make([]domain.Seat, 0, len(fs.ordered))
	for _, n := range fs.ordered {
		s := fs.seats[n]
		s.mu.Lock()
		r.reclaimLocked(fs, s, now)
		out = append(out, domain.Seat{FlightID: flightID, SeatNumber: n, State: s.state})
		s.mu.Unlock()
	}
	return out, nil
}

// AvailableSeats is a lock-free approximation used by the pricing
// engine; it may briefly count an expired-but-unreclaimed hold as
// unavailable.
func (r *Registry) AvailableSeats(flightID int64) int {
	r.mu.RLock()
	fs, ok := r.flights[flightID]
	r.mu.RUnlock()
	if !ok {
		return 0
	}
	return int(fs.available.Load())
}

// Sweep reclaims expired holds across all flights and returns how many
// it released. Expiry is otherwise lazy; the sweep keeps seat maps
// accurate even without a contending request.
func (r *Registry) Sweep() int {
	r.mu.RLock()
	flights := make([]*flightSeats, 0, len(r.flights))
	for _, fs := range r.flights {
		flights = append(flights, fs)
	}
	r.mu.RUnlock()

	now := time.Now().UTC()
	reclaimed := 0
	for _, fs := range flights {
		for _, s := range fs.seats {
			s.mu.Lock()
			if r.reclaimLocked(fs, s, now) {
				reclaimed++
			}
			s.mu.Unlock()
		}
	}
	return reclaimed
}

// FlightIDs lists every flight known to the registry in stable order.
func (r *Registry) FlightIDs() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int64, 0, len(r.flights))
	for id := range r.flights {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// reclaimLocked frees an expired hold. Caller holds s.mu.
func (r *Registry) reclaimLocked(fs *flightSeats, s *seat, now time.Time) bool {
	if s.state != domain.SeatHeld || s.hold == nil || s.hold.Live(now) {
		return false
	}
	s.state = domain.SeatAvailable
	s.hold = nil
	fs.available.Add(1)
	observability.HoldsReclaimed.Inc()
	return true
}

func (r *Registry) cell(flightID int64, seatNumber string) (*flightSeats, *seat, error) {
	r.mu.RLock()
	fs, ok := r.flights[flightID]
	r.mu.RUnlock()
	if !ok {
		return nil, nil, domain.ErrFlightNotFound
	}
	s, ok := fs.seats[seatNumber]
	if !ok {
		return nil, nil, domain.ErrSeatNotFound
	}
	return fs, s, nil
}
