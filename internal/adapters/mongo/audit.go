package mongo

import (
	"context"
	"time"

	"github.com/aerofare/booking-engine/internal/domain"
	"github.com/aerofare/booking-engine/internal/observability"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AuditLogger appends booking lifecycle entries to an audit collection.
type AuditLogger struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewAuditLogger(db *mongo.Database, logger observability.Logger) *AuditLogger {
	return &AuditLogger{
		coll:   db.Collection("booking_audit"),
		logger: logger,
	}
}

type auditEntry struct {
	ID        uuid.UUID `bson:"_id"`
	Action    string    `bson:"action"`
	PNR       string    `bson:"pnr"`
	Timestamp time.Time `bson:"timestamp"`
	Data      bson.M    `bson:"data"`
}

func (a *AuditLogger) RecordBooking(ctx context.Context, b domain.Booking) error {
	entry := auditEntry{
		ID:        uuid.New(),
		Action:    "booking." + string(b.Status),
		PNR:       b.PNR,
		Timestamp: time.Now().UTC(),
		Data: bson.M{
			"flight_id":    b.FlightID,
			"seat_number":  b.SeatNumber,
			"email":        b.PassengerEmail,
			"booked_price": b.BookedPrice,
			"booking_date": b.BookingDate.Format(time.RFC3339),
		},
	}
	if _, err := a.coll.InsertOne(ctx, entry); err != nil {
		a.logger.WithError(err).Error("failed to insert audit entry")
		return err
	}
	return nil
}
