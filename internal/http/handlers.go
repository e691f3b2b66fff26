package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/aerofare/booking-engine/internal/catalog"
	"github.com/aerofare/booking-engine/internal/domain"
	"github.com/aerofare/booking-engine/internal/holds"
	"github.com/aerofare/booking-engine/internal/ledger"
	"github.com/aerofare/booking-engine/internal/observability"
	"github.com/aerofare/booking-engine/internal/pricing"
	"github.com/aerofare/booking-engine/internal/seats"
)

type Handlers struct {
	holds    *holds.Manager
	ledger   *ledger.Ledger
	registry *seats.Registry
	pricing  *pricing.Engine
	snapshot *catalog.Snapshot
	catalog  catalog.Query
	logger   observability.Logger
	validate *validator.Validate
}

func NewHandlers(hm *holds.Manager, bl *ledger.Ledger, registry *seats.Registry, pe *pricing.Engine, snapshot *catalog.Snapshot, query catalog.Query, logger observability.Logger) *Handlers {
	if query == nil {
		query = snapshot
	}
	return &Handlers{
		holds:    hm,
		ledger:   bl,
		registry: registry,
		pricing:  pe,
		snapshot: snapshot,
		catalog:  query,
		logger:   logger,
		validate: validator.New(),
	}
}

type initiateRequest struct {
	FlightID   int64  `json:"flight_id" validate:"required"`
	SeatNumber string `json:"seat_number" validate:"required"`
}

type initiateResponse struct {
	Status        string    `json:"status"`
	TempReference string    `json:"temp_reference"`
	HoldExpiresAt time.Time `json:"hold_expires_at"`
	CurrentPrice  float64   `json:"current_price"`
	FlightID      int64     `json:"flight_id"`
	SeatNumber    string    `json:"seat_number"`
}

func (h *Handlers) InitiateBooking(w http.ResponseWriter, r *http.Request) {
	var req initiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON payload required")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "flight_id and seat_number required")
		return
	}

	hold, err := h.holds.Initiate(req.FlightID, req.SeatNumber)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, initiateResponse{
		Status:        "initiated",
		TempReference: hold.TempRef,
		HoldExpiresAt: hold.ExpiresAt,
		CurrentPrice:  hold.PriceSnapshot,
		FlightID:      hold.FlightID,
		SeatNumber:    hold.SeatNumber,
	})
}

type confirmRequest struct {
	TempReference  string `json:"temp_reference" validate:"required"`
	FlightID       int64  `json:"flight_id" validate:"required"`
	SeatNumber     string `json:"seat_number" validate:"required"`
	PassengerName  string `json:"passenger_name" validate:"required"`
	PassengerEmail string `json:"passenger_email" validate:"required,email"`
}

type bookingJSON struct {
	PNR            string    `json:"pnr"`
	FlightID       int64     `json:"flight_id"`
	FlightNumber   string    `json:"flight_number,omitempty"`
	SeatNumber     string    `json:"seat_number"`
	PassengerName  string    `json:"passenger_name"`
	PassengerEmail string    `json:"passenger_email"`
	BookedPrice    float64   `json:"booked_price"`
	BookingDate    time.Time `json:"booking_date"`
	Status         string    `json:"status"`
}

func (h *Handlers) bookingJSON(b domain.Booking) bookingJSON {
	out := bookingJSON{
		PNR:            b.PNR,
		FlightID:       b.FlightID,
		SeatNumber:     b.SeatNumber,
		PassengerName:  b.PassengerName,
		PassengerEmail: b.PassengerEmail,
		BookedPrice:    b.BookedPrice,
		BookingDate:    b.BookingDate,
		Status:         string(b.Status),
	}
	if f, ok := h.snapshot.Flight(b.FlightID); ok {
		out.FlightNumber = f.FlightNumber
	}
	return out
}

type confirmResponse struct {
	Status string `json:"status"`
	bookingJSON
}

func (h *Handlers) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON payload required")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "temp_reference, flight_id, seat_number, passenger_name and passenger_email required")
		return
	}

	booking, err := h.ledger.Confirm(r.Context(), req.TempReference, req.FlightID, req.SeatNumber, req.PassengerName, req.PassengerEmail)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, confirmResponse{Status: "success", bookingJSON: h.bookingJSON(booking)})
}

func (h *Handlers) GetBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.ledger.ByPNR(r.Context(), chi.URLParam(r, "pnr"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.bookingJSON(booking))
}

func (h *Handlers) CancelBooking(w http.ResponseWriter, r *http.Request) {
	pnr := chi.URLParam(r, "pnr")
	if err := h.ledger.Cancel(r.Context(), pnr); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "booking " + pnr + " cancelled"})
}

func (h *Handlers) BookingHistory(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	bookings, err := h.ledger.History(r.Context(), email)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]bookingJSON, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, h.bookingJSON(b))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "success",
		"count":    len(out),
		"bookings": out,
	})
}

type seatJSON struct {
	SeatNumber string `json:"seat_number"`
	Status     string `json:"status"`
}

func (h *Handlers) FlightSeats(w http.ResponseWriter, r *http.Request) {
	flightID, err := flightIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid flight id")
		return
	}

	seatMap, err := h.registry.SeatMap(flightID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]seatJSON, 0, len(seatMap))
	for _, s := range seatMap {
		out = append(out, seatJSON{SeatNumber: s.SeatNumber, Status: string(s.State)})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"flight_id": flightID, "seats": out})
}

func (h *Handlers) FlightPrice(w http.ResponseWriter, r *http.Request) {
	flightID, err := flightIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid flight id")
		return
	}

	price, err := h.pricing.CurrentPrice(flightID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "success",
		"flight_id":     flightID,
		"current_price": price,
	})
}

func (h *Handlers) FlightFares(w http.ResponseWriter, r *http.Request) {
	flightID, err := flightIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid flight id")
		return
	}

	history, err := h.pricing.FareHistory(flightID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "success",
		"flight_id": flightID,
		"fares":     history,
	})
}

type setDemandRequest struct {
	FlightID    int64   `json:"flight_id" validate:"required"`
	DemandLevel float64 `json:"demand_level" validate:"required,gte=0.1,lte=10"`
}

func (h *Handlers) SetDemand(w http.ResponseWriter, r *http.Request) {
	var req setDemandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON payload required")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "demand_level must be between 0.1 and 10.0")
		return
	}

	price, err := h.pricing.SetDemand(req.FlightID, req.DemandLevel)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "success",
		"flight_id":     req.FlightID,
		"demand_level":  req.DemandLevel,
		"current_price": price,
	})
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}

func flightIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
