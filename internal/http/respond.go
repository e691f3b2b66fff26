package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aerofare/booking-engine/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error  string `json:"error"`
	Status string `json:"status"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg, Status: "error"})
}

// writeDomainError maps the engine's error taxonomy onto the HTTP
// surface. Unknown errors become opaque 500s; details stay in the logs.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSeatUnavailable):
		writeError(w, http.StatusConflict, "seat already held or booked")
	case errors.Is(err, domain.ErrHoldExpired):
		writeError(w, http.StatusGone, "hold expired")
	case errors.Is(err, domain.ErrHoldMismatch):
		writeError(w, http.StatusConflict, "hold mismatch")
	case errors.Is(err, domain.ErrHoldNotFound):
		writeError(w, http.StatusNotFound, "hold not found")
	case errors.Is(err, domain.ErrFlightNotFound):
		writeError(w, http.StatusNotFound, "flight not found")
	case errors.Is(err, domain.ErrSeatNotFound):
		writeError(w, http.StatusNotFound, "seat not found")
	case errors.Is(err, domain.ErrBookingNotFound):
		writeError(w, http.StatusNotFound, "booking not found")
	case errors.Is(err, domain.ErrAlreadyCancelled):
		writeError(w, http.StatusConflict, "booking already cancelled")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid input")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
