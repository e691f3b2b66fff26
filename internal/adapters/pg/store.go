package pg

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aerofare/booking-engine/internal/domain"
)

// Store is the durable booking ledger on Postgres. Bookings are
// append-only keyed by PNR; the only update-in-place is the status
// flag on cancel.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the bookings table. Used by cmd/seed and tests.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS bookings (
			pnr TEXT PRIMARY KEY,
			temp_ref TEXT UNIQUE NOT NULL,
			flight_id BIGINT NOT NULL,
			seat_number TEXT NOT NULL,
			passenger_name TEXT NOT NULL,
			passenger_email TEXT NOT NULL,
			booked_price NUMERIC(10,2) NOT NULL,
			booking_date TIMESTAMPTZ NOT NULL,
			status TEXT NOT NULL CHECK (status IN ('confirmed', 'cancelled'))
		);
		CREATE INDEX IF NOT EXISTS bookings_email_idx ON bookings (passenger_email, booking_date DESC);
	`)
	return errors.Wrap(err, "ensure bookings schema")
}

func (s *Store) Insert(ctx context.Context, b domain.Booking) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO bookings (pnr, temp_ref, flight_id, seat_number, passenger_name, passenger_email, booked_price, booking_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, b.PNR, b.TempRef, b.FlightID, b.SeatNumber, b.PassengerName, b.PassengerEmail, b.BookedPrice, b.BookingDate, string(b.Status))
	return errors.Wrap(err, "insert booking")
}

func (s *Store) GetByPNR(ctx context.Context, pnr string) (domain.Booking, error) {
	return s.get(ctx, "pnr = $1", pnr)
}

func (s *Store) GetByTempRef(ctx context.Context, tempRef string) (domain.Booking, error) {
	return s.get(ctx, "temp_ref = $1", tempRef)
}

func (s *Store) SetStatus(ctx context.Context, pnr string, status domain.BookingStatus) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE bookings SET status = $2 WHERE pnr = $1
	`, pnr, string(status))
	if err != nil {
		return errors.Wrap(err, "update booking status")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (s *Store) History(ctx context.Context, email string) ([]domain.Booking, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT pnr, temp_ref, flight_id, seat_number, passenger_name, passenger_email, booked_price, booking_date, status
		FROM bookings WHERE passenger_email = $1 ORDER BY booking_date DESC
	`, email)
	if err != nil {
		return nil, errors.Wrap(err, "query booking history")
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) get(ctx context.Context, where string, arg interface{}) (domain.Booking, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT pnr, temp_ref, flight_id, seat_number, passenger_name, passenger_email, booked_price, booking_date, status
		FROM bookings WHERE `+where, arg)
	if err != nil {
		return domain.Booking{}, errors.Wrap(err, "query booking")
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return domain.Booking{}, err
		}
		return domain.Booking{}, domain.ErrBookingNotFound
	}
	return scanBooking(rows)
}

func scanBooking(rows pgx.Rows) (domain.Booking, error) {
	var b domain.Booking
	var status string
	err := rows.Scan(&b.PNR, &b.TempRef, &b.FlightID, &b.SeatNumber, &b.PassengerName, &b.PassengerEmail, &b.BookedPrice, &b.BookingDate, &status)
	if err != nil {
		return domain.Booking{}, errors.Wrap(err, "scan booking")
	}
	b.Status = domain.BookingStatus(status)
	return b, nil
}
