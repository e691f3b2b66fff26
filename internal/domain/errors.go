package domain

import "errors"

var (
	ErrSeatUnavailable  = errors.New("seat unavailable")
	ErrHoldNotFound     = errors.New("hold not found")
	ErrHoldExpired      = errors.New("hold expired")
	ErrHoldMismatch     = errors.New("hold mismatch")
	ErrFlightNotFound   = errors.New("flight not found")
	ErrSeatNotFound     = errors.New("seat not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrAlreadyCancelled = errors.New("booking already cancelled")
	ErrInvalidInput     = errors.New("invalid input")
)
