package ledger

import (
	"context"

	"github.com/aerofare/booking-engine/internal/domain"
)

// Store is the durable booking record keyed by PNR. Writes are
// append-only except for the status flag, so any keyed store serves.
type Store interface {
	Insert(ctx context.Context, b domain.Booking) error
	GetByPNR(ctx context.Context, pnr string) (domain.Booking, error)
	GetByTempRef(ctx context.Context, tempRef string) (domain.Booking, error)
	SetStatus(ctx context.Context, pnr string, status domain.BookingStatus) error
	History(ctx context.Context, email string) ([]domain.Booking, error)
}
