package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/aerofare/booking-engine/internal/domain"
)

// Snapshot is the immutable in-process view of the catalog, built once
// at boot. The engine resolves flight facts from it without I/O.
type Snapshot struct {
	byID     map[int64]domain.Flight
	ordered  []domain.Flight
	airlines []Airline
	airports []Airport
}

func NewSnapshot(flights []domain.Flight, airlines []Airline, airports []Airport) *Snapshot {
	s := &Snapshot{
		byID:     make(map[int64]domain.Flight, len(flights)),
		ordered:  append([]domain.Flight(nil), flights...),
		airlines: airlines,
		airports: airports,
	}
	sort.Slice(s.ordered, func(i, j int) bool {
		return s.ordered[i].Departure.Before(s.ordered[j].Departure)
	})
	for _, f := range s.ordered {
		s.byID[f.ID] = f
	}
	return s
}

func (s *Snapshot) Flight(flightID int64) (domain.Flight, bool) {
	f, ok := s.byID[flightID]
	return f, ok
}

func (s *Snapshot) Flights(ctx context.Context) ([]domain.Flight, error) {
	return append([]domain.Flight(nil), s.ordered...), nil
}

func (s *Snapshot) Search(ctx context.Context, p SearchParams) ([]domain.Flight, error) {
	var out []domain.Flight
	for _, f := range s.ordered {
		if !matchPlace(p.Origin, f.OriginCity, f.OriginIATA) {
			continue
		}
		if !matchPlace(p.Destination, f.DestinationCity, f.DestinationIATA) {
			continue
		}
		if p.Date != "" && f.Departure.UTC().Format("2006-01-02") != p.Date {
			continue
		}
		if p.MinPrice != nil && f.BasePrice < *p.MinPrice {
			continue
		}
		if p.MaxPrice != nil && f.BasePrice > *p.MaxPrice {
			continue
		}
		out = append(out, f)
	}
	sortFlights(out, p.Sort)
	return out, nil
}

func (s *Snapshot) Airlines(ctx context.Context) ([]Airline, error) {
	return append([]Airline(nil), s.airlines...), nil
}

func (s *Snapshot) Airports(ctx context.Context) ([]Airport, error) {
	return append([]Airport(nil), s.airports...), nil
}

func matchPlace(query, city, iata string) bool {
	if query == "" {
		return true
	}
	return strings.EqualFold(query, city) || strings.EqualFold(query, iata)
}

func sortFlights(fs []domain.Flight, by string) {
	switch by {
	case SortPrice:
		sort.Slice(fs, func(i, j int) bool { return fs[i].BasePrice < fs[j].BasePrice })
	case SortDuration:
		sort.Slice(fs, func(i, j int) bool {
			return fs[i].Arrival.Sub(fs[i].Departure) < fs[j].Arrival.Sub(fs[j].Departure)
		})
	default:
		sort.Slice(fs, func(i, j int) bool { return fs[i].Departure.Before(fs[j].Departure) })
	}
}
