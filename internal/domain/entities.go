package domain

import (
	"time"
)

type SeatState string

const (
	SeatAvailable SeatState = "available"
	SeatHeld      SeatState = "held"
	SeatBooked    SeatState = "booked"
)

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Flight carries the immutable schedule facts plus the base fare. The
// current price lives in the pricing engine, never here.
type Flight struct {
	ID              int64
	FlightNumber    string
	AirlineName     string
	AirlineCode     string
	OriginCity      string
	OriginIATA      string
	DestinationCity string
	DestinationIATA string
	Departure       time.Time
	Arrival         time.Time
	BasePrice       float64
	TotalSeats      int
}

type Seat struct {
	FlightID   int64
	SeatNumber string
	State      SeatState
}

// Hold is the ephemeral reservation of a single seat. It is live only
// while the seat it references is still held under the same TempRef and
// the TTL has not elapsed.
type Hold struct {
	TempRef       string
	FlightID      int64
	SeatNumber    string
	CreatedAt     time.Time
	ExpiresAt     time.Time
	PriceSnapshot float64
}

func (h Hold) Live(now time.Time) bool {
	return now.Before(h.ExpiresAt)
}

// Booking is immutable after confirmation except for the status flag,
// which flips to cancelled exactly once.
type Booking struct {
	PNR            string
	TempRef        string
	FlightID       int64
	SeatNumber     string
	PassengerName  string
	PassengerEmail string
	BookedPrice    float64
	BookingDate    time.Time
	Status         BookingStatus
}
