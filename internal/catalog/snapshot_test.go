package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/aerofare/booking-engine/internal/catalog"
	"github.com/aerofare/booking-engine/internal/domain"
)

func testFlights() []domain.Flight {
	base := time.Date(2026, 9, 10, 6, 0, 0, 0, time.UTC)
	return []domain.Flight{
		{ID: 2, FlightNumber: "6E204", OriginCity: "Delhi", OriginIATA: "DEL",
			DestinationCity: "Mumbai", DestinationIATA: "BOM",
			Departure: base.Add(3 * time.Hour), Arrival: base.Add(5 * time.Hour), BasePrice: 120},
		{ID: 1, FlightNumber: "AI101", OriginCity: "Delhi", OriginIATA: "DEL",
			DestinationCity: "Mumbai", DestinationIATA: "BOM",
			Departure: base, Arrival: base.Add(90 * time.Minute), BasePrice: 180},
		{ID: 3, FlightNumber: "UK810", OriginCity: "Mumbai", OriginIATA: "BOM",
			DestinationCity: "Bengaluru", DestinationIATA: "BLR",
			Departure: base.AddDate(0, 0, 1), Arrival: base.AddDate(0, 0, 1).Add(2 * time.Hour), BasePrice: 95},
	}
}

func TestSnapshot_FlightsOrderedByDeparture(t *testing.T) {
	s := catalog.NewSnapshot(testFlights(), nil, nil)

	flights, err := s.Flights(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(flights) != 3 {
		t.Fatalf("expected 3 flights, got %d", len(flights))
	}
	if flights[0].ID != 1 || flights[1].ID != 2 || flights[2].ID != 3 {
		t.Errorf("unexpected order: %d, %d, %d", flights[0].ID, flights[1].ID, flights[2].ID)
	}

	if _, ok := s.Flight(2); !ok {
		t.Error("expected flight 2 to resolve")
	}
	if _, ok := s.Flight(99); ok {
		t.Error("expected flight 99 to be unknown")
	}
}

func TestSnapshot_SearchByCityAndIATA(t *testing.T) {
	s := catalog.NewSnapshot(testFlights(), nil, nil)
	ctx := context.Background()

	byCity, err := s.Search(ctx, catalog.SearchParams{Origin: "delhi", Destination: "MUMBAI"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byCity) != 2 {
		t.Fatalf("expected 2 matches by city, got %d", len(byCity))
	}

	byIATA, err := s.Search(ctx, catalog.SearchParams{Origin: "del", Destination: "bom"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byIATA) != 2 {
		t.Fatalf("expected 2 matches by code, got %d", len(byIATA))
	}

	none, err := s.Search(ctx, catalog.SearchParams{Origin: "Delhi", Destination: "Bengaluru"})
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("expected no Delhi-Bengaluru flights, got %d", len(none))
	}
}

func TestSnapshot_SearchFilters(t *testing.T) {
	s := catalog.NewSnapshot(testFlights(), nil, nil)
	ctx := context.Background()

	byDate, err := s.Search(ctx, catalog.SearchParams{Origin: "DEL", Destination: "BOM", Date: "2026-09-10"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byDate) != 2 {
		t.Errorf("expected 2 flights on 2026-09-10, got %d", len(byDate))
	}

	maxPrice := 150.0
	cheap, err := s.Search(ctx, catalog.SearchParams{Origin: "DEL", Destination: "BOM", MaxPrice: &maxPrice})
	if err != nil {
		t.Fatal(err)
	}
	if len(cheap) != 1 || cheap[0].ID != 2 {
		t.Errorf("expected only flight 2 under 150, got %v", cheap)
	}

	minPrice := 150.0
	pricey, err := s.Search(ctx, catalog.SearchParams{Origin: "DEL", Destination: "BOM", MinPrice: &minPrice})
	if err != nil {
		t.Fatal(err)
	}
	if len(pricey) != 1 || pricey[0].ID != 1 {
		t.Errorf("expected only flight 1 over 150, got %v", pricey)
	}
}

func TestSnapshot_SearchSort(t *testing.T) {
	s := catalog.NewSnapshot(testFlights(), nil, nil)
	ctx := context.Background()

	byPrice, err := s.Search(ctx, catalog.SearchParams{Origin: "DEL", Destination: "BOM", Sort: catalog.SortPrice})
	if err != nil {
		t.Fatal(err)
	}
	if byPrice[0].ID != 2 || byPrice[1].ID != 1 {
		t.Errorf("expected price order 2,1, got %d,%d", byPrice[0].ID, byPrice[1].ID)
	}

	byDuration, err := s.Search(ctx, catalog.SearchParams{Origin: "DEL", Destination: "BOM", Sort: catalog.SortDuration})
	if err != nil {
		t.Fatal(err)
	}
	if byDuration[0].ID != 1 || byDuration[1].ID != 2 {
		t.Errorf("expected duration order 1,2, got %d,%d", byDuration[0].ID, byDuration[1].ID)
	}
}
