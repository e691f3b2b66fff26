package pricing

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/aerofare/booking-engine/internal/domain"
	"github.com/aerofare/booking-engine/internal/observability"
)

const (
	minDemand = 0.1
	maxDemand = 10.0

	// Bounds for the random demand perturbation applied by each tick.
	tickDemandMin = -0.15
	tickDemandMax = 0.5
	tickDemandLow = 0.5
)

// SeatCounter reports how many seats are still available on a flight.
// The pricing engine only reads it; a nil counter means occupancy does
// not influence the price.
type SeatCounter interface {
	AvailableSeats(flightID int64) int
}

type FareEvent struct {
	FlightID       int64     `json:"flight_id"`
	Timestamp      time.Time `json:"timestamp"`
	OldPrice       float64   `json:"old_price"`
	NewPrice       float64   `json:"new_price"`
	DemandLevel    float64   `json:"demand_level"`
	AvailableSeats int       `json:"available_seats"`
}

type flightState struct {
	flight domain.Flight

	// current is the float64 bit pattern of the live price. Readers
	// load it without taking mu, so they observe either the pre- or
	// post-tick value, never a torn one.
	current atomic64

	mu      sync.Mutex
	demand  float64
	history []FareEvent
}

// Engine owns the volatile current price of every registered flight.
// Ticks are serialized per flight by the flight's mutex; reads are
// lock-free.
type Engine struct {
	mu      sync.RWMutex
	flights map[int64]*flightState

	seats  SeatCounter
	floor  float64
	logger observability.Logger
}

func NewEngine(seats SeatCounter, floor float64, logger observability.Logger) *Engine {
	return &Engine{
		flights: make(map[int64]*flightState),
		seats:   seats,
		floor:   floor,
		logger:  logger,
	}
}

// Register makes a flight known to the engine. The initial current
// price is computed immediately from a neutral demand level.
func (e *Engine) Register(f domain.Flight) {
	st := &flightState{flight: f, demand: 1.0}
	st.current.store(e.compute(f, 1.0, f.TotalSeats))

	e.mu.Lock()
	e.flights[f.ID] = st
	e.mu.Unlock()
}

func (e *Engine) CurrentPrice(flightID int64) (float64, error) {
	st, ok := e.lookup(flightID)
	if !ok {
		return 0, domain.ErrFlightNotFound
	}
	return st.current.load(), nil
}

func (e *Engine) DemandLevel(flightID int64) (float64, error) {
	st, ok := e.lookup(flightID)
	if !ok {
		return 0, domain.ErrFlightNotFound
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.demand, nil
}

// SetDemand pins a flight's demand level, clamped to [0.1, 10.0], and
// reprices it immediately. Used by the admin surface.
func (e *Engine) SetDemand(flightID int64, level float64) (float64, error) {
	st, ok := e.lookup(flightID)
	if !ok {
		return 0, domain.ErrFlightNotFound
	}
	level = math.Max(minDemand, math.Min(level, maxDemand))

	st.mu.Lock()
	st.demand = level
	price := e.reprice(st)
	st.mu.Unlock()
	return price, nil
}

func (e *Engine) FareHistory(flightID int64) ([]FareEvent, error) {
	st, ok := e.lookup(flightID)
	if !ok {
		return nil, domain.ErrFlightNotFound
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]FareEvent, len(st.history))
	copy(out, st.history)
	return out, nil
}

// Tick advances the demand simulation for every flight: each demand
// level drifts by a bounded random delta and the current price is
// recomputed and swapped in atomically.
func (e *Engine) Tick() {
	e.mu.RLock()
	states := make([]*flightState, 0, len(e.flights))
	for _, st := range e.flights {
		states = append(states, st)
	}
	e.mu.RUnlock()

	for _, st := range states {
		st.mu.Lock()
		delta := tickDemandMin + rand.Float64()*(tickDemandMax-tickDemandMin)
		st.demand = math.Min(maxDemand, math.Max(tickDemandLow, round2(st.demand+delta)))
		e.reprice(st)
		st.mu.Unlock()
	}
	observability.PriceTicks.Inc()
}

// Run drives the tick loop until the context is cancelled. Started once
// at service boot so every client observes the same price evolution.
func (e *Engine) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Tick()
		}
	}
}

// reprice recomputes st's price under st.mu and records fare history
// when the move exceeds 1%.
func (e *Engine) reprice(st *flightState) float64 {
	available := st.flight.TotalSeats
	if e.seats != nil {
		available = e.seats.AvailableSeats(st.flight.ID)
	}

	old := st.current.load()
	price := e.compute(st.flight, st.demand, available)
	st.current.store(price)

	if old > 0 && math.Abs(price-old)/old > 0.01 {
		st.history = append(st.history, FareEvent{
			FlightID:       st.flight.ID,
			Timestamp:      time.Now().UTC(),
			OldPrice:       old,
			NewPrice:       price,
			DemandLevel:    st.demand,
			AvailableSeats: available,
		})
	}
	return price
}

// compute applies the fare model: scarcity, time to departure and
// demand multiply the base fare, clamped to [max(floor, 80% base), 400% base].
func (e *Engine) compute(f domain.Flight, demand float64, available int) float64 {
	remaining := 0.0
	if f.TotalSeats > 0 {
		remaining = float64(available) / float64(f.TotalSeats)
	}

	days := math.Max(time.Until(f.Departure).Hours()/24, 0.001)

	seatFactor := 1 + (1-remaining)*0.6
	timeFactor := 1 + math.Max(0, (30-math.Min(days, 30))/30)*0.4
	demandFactor := 1 + (demand-1)*0.5

	price := round2(f.BasePrice * seatFactor * timeFactor * demandFactor)

	lo := math.Max(e.floor, round2(f.BasePrice*0.8))
	hi := round2(f.BasePrice * 4.0)
	return math.Max(lo, math.Min(price, hi))
}

func (e *Engine) lookup(flightID int64) (*flightState, bool) {
	e.mu.RLock()
	st, ok := e.flights[flightID]
	e.mu.RUnlock()
	return st, ok
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
