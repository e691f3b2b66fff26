package domain

import (
	"time"

	"github.com/google/uuid"
)

func NewHold(flightID int64, seatNumber string, priceSnapshot float64, ttl time.Duration) Hold {
	now := time.Now().UTC()
	return Hold{
		TempRef:       uuid.NewString(),
		FlightID:      flightID,
		SeatNumber:    seatNumber,
		CreatedAt:     now,
		ExpiresAt:     now.Add(ttl),
		PriceSnapshot: priceSnapshot,
	}
}
