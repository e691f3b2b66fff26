// Package memstore is the in-memory Store used by tests and
// single-node runs without Postgres.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/aerofare/booking-engine/internal/domain"
)

type Store struct {
	mu        sync.RWMutex
	byPNR     map[string]domain.Booking
	byTempRef map[string]string
}

func New() *Store {
	return &Store{
		byPNR:     make(map[string]domain.Booking),
		byTempRef: make(map[string]string),
	}
}

func (s *Store) Insert(ctx context.Context, b domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byPNR[b.PNR]; ok {
		return errors.Newf("duplicate pnr %s", b.PNR)
	}
	s.byPNR[b.PNR] = b
	s.byTempRef[b.TempRef] = b.PNR
	return nil
}

func (s *Store) GetByPNR(ctx context.Context, pnr string) (domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.byPNR[pnr]
	if !ok {
		return domain.Booking{}, domain.ErrBookingNotFound
	}
	return b, nil
}

func (s *Store) GetByTempRef(ctx context.Context, tempRef string) (domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pnr, ok := s.byTempRef[tempRef]
	if !ok {
		return domain.Booking{}, domain.ErrBookingNotFound
	}
	return s.byPNR[pnr], nil
}

func (s *Store) SetStatus(ctx context.Context, pnr string, status domain.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byPNR[pnr]
	if !ok {
		return domain.ErrBookingNotFound
	}
	b.Status = status
	s.byPNR[pnr] = b
	return nil
}

func (s *Store) History(ctx context.Context, email string) ([]domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Booking
	for _, b := range s.byPNR {
		if b.PassengerEmail == email {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].BookingDate.After(out[j].BookingDate)
	})
	return out, nil
}
