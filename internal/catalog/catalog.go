// Package catalog holds the flight reference data: schedules, airlines
// and airports. The booking engine reads immutable flight facts from a
// boot-time snapshot; search and reference listings are served from the
// catalog store.
package catalog

import (
	"context"

	"github.com/aerofare/booking-engine/internal/domain"
)

type Airline struct {
	Name string `json:"name" bson:"name"`
	Code string `json:"code" bson:"code"`
}

type Airport struct {
	Name    string `json:"name" bson:"name"`
	City    string `json:"city" bson:"city"`
	Country string `json:"country" bson:"country"`
	IATA    string `json:"iata_code" bson:"iata_code"`
}

const (
	SortDeparture = "departure"
	SortPrice     = "price"
	SortDuration  = "duration"

	// SortSeats orders by live availability and is applied by the HTTP
	// layer, which is the only place that sees the seat registry.
	SortSeats = "seats"
)

type SearchParams struct {
	// Origin and Destination match either the city name or the IATA
	// code, the way the search form sends them.
	Origin      string
	Destination string
	// Date filters on the departure day, YYYY-MM-DD.
	Date     string
	MinPrice *float64
	MaxPrice *float64
	Sort     string
}

// Query is the read surface the HTTP layer needs. Implemented by the
// Mongo repository and, for storeless runs, by the Snapshot.
type Query interface {
	Flights(ctx context.Context) ([]domain.Flight, error)
	Search(ctx context.Context, p SearchParams) ([]domain.Flight, error)
	Airlines(ctx context.Context) ([]Airline, error)
	Airports(ctx context.Context) ([]Airport, error)
}
