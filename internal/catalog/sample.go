package catalog

import (
	"time"

	"github.com/aerofare/booking-engine/internal/domain"
)

// Sample data for seeding and storeless runs. Departures are laid out
// relative to load time so the time-to-departure pricing factor stays
// meaningful.

func SampleAirlines() []Airline {
	return []Airline{
		{Name: "Air India", Code: "AI"},
		{Name: "IndiGo", Code: "6E"},
		{Name: "Vistara", Code: "UK"},
		{Name: "SpiceJet", Code: "SG"},
	}
}

func SampleAirports() []Airport {
	return []Airport{
		{Name: "Indira Gandhi International", City: "Delhi", Country: "India", IATA: "DEL"},
		{Name: "Chhatrapati Shivaji Maharaj International", City: "Mumbai", Country: "India", IATA: "BOM"},
		{Name: "Kempegowda International", City: "Bengaluru", Country: "India", IATA: "BLR"},
		{Name: "Chennai International", City: "Chennai", Country: "India", IATA: "MAA"},
		{Name: "Netaji Subhas Chandra Bose International", City: "Kolkata", Country: "India", IATA: "CCU"},
		{Name: "Rajiv Gandhi International", City: "Hyderabad", Country: "India", IATA: "HYD"},
	}
}

func SampleFlights(now time.Time) []domain.Flight {
	day := func(d int, hour int) time.Time {
		return now.UTC().Truncate(time.Hour).AddDate(0, 0, d).Add(time.Duration(hour) * time.Hour)
	}

	return []domain.Flight{
		{ID: 1, FlightNumber: "AI101", AirlineName: "Air India", AirlineCode: "AI",
			OriginCity: "Delhi", OriginIATA: "DEL", DestinationCity: "Mumbai", DestinationIATA: "BOM",
			Departure: day(3, 6), Arrival: day(3, 8), BasePrice: 180.00, TotalSeats: 60},
		{ID: 2, FlightNumber: "6E204", AirlineName: "IndiGo", AirlineCode: "6E",
			OriginCity: "Delhi", OriginIATA: "DEL", DestinationCity: "Mumbai", DestinationIATA: "BOM",
			Departure: day(3, 9), Arrival: day(3, 11), BasePrice: 120.00, TotalSeats: 72},
		{ID: 3, FlightNumber: "UK810", AirlineName: "Vistara", AirlineCode: "UK",
			OriginCity: "Mumbai", OriginIATA: "BOM", DestinationCity: "Bengaluru", DestinationIATA: "BLR",
			Departure: day(5, 7), Arrival: day(5, 9), BasePrice: 95.00, TotalSeats: 48},
		{ID: 4, FlightNumber: "SG415", AirlineName: "SpiceJet", AirlineCode: "SG",
			OriginCity: "Bengaluru", OriginIATA: "BLR", DestinationCity: "Chennai", DestinationIATA: "MAA",
			Departure: day(7, 12), Arrival: day(7, 13), BasePrice: 65.00, TotalSeats: 36},
		{ID: 5, FlightNumber: "AI332", AirlineName: "Air India", AirlineCode: "AI",
			OriginCity: "Kolkata", OriginIATA: "CCU", DestinationCity: "Delhi", DestinationIATA: "DEL",
			Departure: day(10, 15), Arrival: day(10, 17), BasePrice: 140.00, TotalSeats: 60},
		{ID: 6, FlightNumber: "6E771", AirlineName: "IndiGo", AirlineCode: "6E",
			OriginCity: "Hyderabad", OriginIATA: "HYD", DestinationCity: "Mumbai", DestinationIATA: "BOM",
			Departure: day(14, 18), Arrival: day(14, 19), BasePrice: 88.00, TotalSeats: 72},
		{ID: 7, FlightNumber: "UK655", AirlineName: "Vistara", AirlineCode: "UK",
			OriginCity: "Delhi", OriginIATA: "DEL", DestinationCity: "Bengaluru", DestinationIATA: "BLR",
			Departure: day(21, 5), Arrival: day(21, 8), BasePrice: 110.00, TotalSeats: 48},
		{ID: 8, FlightNumber: "SG128", AirlineName: "SpiceJet", AirlineCode: "SG",
			OriginCity: "Chennai", OriginIATA: "MAA", DestinationCity: "Kolkata", DestinationIATA: "CCU",
			Departure: day(28, 10), Arrival: day(28, 12), BasePrice: 75.00, TotalSeats: 36},
	}
}
