package http

import (
	"math"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/aerofare/booking-engine/internal/catalog"
	"github.com/aerofare/booking-engine/internal/domain"
)

type flightJSON struct {
	ID              int64     `json:"id"`
	FlightNumber    string    `json:"flight_number"`
	AirlineName     string    `json:"airline_name"`
	AirlineCode     string    `json:"airline_code"`
	OriginCity      string    `json:"origin_city"`
	OriginIATA      string    `json:"origin_iata"`
	DestinationCity string    `json:"destination_city"`
	DestinationIATA string    `json:"destination_iata"`
	Departure       time.Time `json:"departure"`
	Arrival         time.Time `json:"arrival"`
	DurationMins    int       `json:"duration_mins"`
	BasePrice       float64   `json:"base_price"`
	CurrentPrice    float64   `json:"current_price"`
	TotalSeats      int       `json:"total_seats"`
	AvailableSeats  int       `json:"available_seats"`
	OccupancyRate   float64   `json:"occupancy_rate"`
}

func (h *Handlers) flightJSON(f domain.Flight) flightJSON {
	out := flightJSON{
		ID:              f.ID,
		FlightNumber:    f.FlightNumber,
		AirlineName:     f.AirlineName,
		AirlineCode:     f.AirlineCode,
		OriginCity:      f.OriginCity,
		OriginIATA:      f.OriginIATA,
		DestinationCity: f.DestinationCity,
		DestinationIATA: f.DestinationIATA,
		Departure:       f.Departure,
		Arrival:         f.Arrival,
		DurationMins:    int(f.Arrival.Sub(f.Departure).Minutes()),
		BasePrice:       f.BasePrice,
		TotalSeats:      f.TotalSeats,
		AvailableSeats:  h.registry.AvailableSeats(f.ID),
	}
	if price, err := h.pricing.CurrentPrice(f.ID); err == nil {
		out.CurrentPrice = price
	} else {
		out.CurrentPrice = f.BasePrice
	}
	if f.TotalSeats > 0 {
		occupied := f.TotalSeats - out.AvailableSeats
		out.OccupancyRate = math.Round(float64(occupied)/float64(f.TotalSeats)*10000) / 100
	}
	return out
}

func (h *Handlers) ListFlights(w http.ResponseWriter, r *http.Request) {
	flights, err := h.catalog.Flights(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]flightJSON, 0, len(flights))
	for _, f := range flights {
		out = append(out, h.flightJSON(f))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"count":   len(out),
		"flights": out,
	})
}

func (h *Handlers) GetFlight(w http.ResponseWriter, r *http.Request) {
	flightID, err := flightIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid flight id")
		return
	}

	f, ok := h.snapshot.Flight(flightID)
	if !ok {
		writeDomainError(w, domain.ErrFlightNotFound)
		return
	}

	fj := h.flightJSON(f)
	status := "available"
	if fj.AvailableSeats == 0 {
		status = "full"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "success",
		"flight":         fj,
		"booking_status": status,
	})
}

func (h *Handlers) SearchFlights(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := catalog.SearchParams{
		Origin:      q.Get("origin"),
		Destination: q.Get("destination"),
		Date:        q.Get("date"),
		Sort:        q.Get("sort"),
	}
	if params.Origin == "" || params.Destination == "" {
		writeError(w, http.StatusBadRequest, "both 'origin' and 'destination' parameters are required")
		return
	}
	if params.Date != "" {
		if _, err := time.Parse("2006-01-02", params.Date); err != nil {
			writeError(w, http.StatusBadRequest, "date must be in YYYY-MM-DD format")
			return
		}
	}
	switch params.Sort {
	case "", catalog.SortDeparture, catalog.SortPrice, catalog.SortDuration, catalog.SortSeats:
	default:
		writeError(w, http.StatusBadRequest, "sort must be one of: departure, price, duration, seats")
		return
	}
	if v := q.Get("min_price"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid min_price")
			return
		}
		params.MinPrice = &f
	}
	if v := q.Get("max_price"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid max_price")
			return
		}
		params.MaxPrice = &f
	}

	flights, err := h.catalog.Search(r.Context(), params)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// min_seats filters on live availability, which the catalog store
	// does not track.
	minSeats := 0
	if v := q.Get("min_seats"); v != "" {
		minSeats, err = strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid min_seats")
			return
		}
	}

	out := make([]flightJSON, 0, len(flights))
	for _, f := range flights {
		fj := h.flightJSON(f)
		if fj.AvailableSeats < minSeats {
			continue
		}
		out = append(out, fj)
	}
	if params.Sort == catalog.SortSeats {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].AvailableSeats > out[j].AvailableSeats
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"count":   len(out),
		"flights": out,
	})
}

func (h *Handlers) ListAirlines(w http.ResponseWriter, r *http.Request) {
	airlines, err := h.catalog.Airlines(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "success",
		"count":    len(airlines),
		"airlines": airlines,
	})
}

func (h *Handlers) ListAirports(w http.ResponseWriter, r *http.Request) {
	airports, err := h.catalog.Airports(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "success",
		"count":    len(airports),
		"airports": airports,
	})
}

// Stats aggregates over the snapshot and the live registry rather than
// the catalog store, so the numbers reflect current bookings.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	flights, err := h.snapshot.Flights(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	totalSeats, availableSeats := 0, 0
	minPrice, maxPrice, sumPrice := math.MaxFloat64, 0.0, 0.0
	airlines := make(map[string]struct{})
	airports := make(map[string]struct{})
	for _, f := range flights {
		totalSeats += f.TotalSeats
		availableSeats += h.registry.AvailableSeats(f.ID)
		minPrice = math.Min(minPrice, f.BasePrice)
		maxPrice = math.Max(maxPrice, f.BasePrice)
		sumPrice += f.BasePrice
		airlines[f.AirlineCode] = struct{}{}
		airports[f.OriginIATA] = struct{}{}
		airports[f.DestinationIATA] = struct{}{}
	}

	stats := map[string]interface{}{
		"total_flights":   len(flights),
		"total_seats":     totalSeats,
		"available_seats": availableSeats,
		"occupied_seats":  totalSeats - availableSeats,
		"total_airlines":  len(airlines),
		"total_airports":  len(airports),
	}
	if totalSeats > 0 {
		stats["occupancy_rate"] = math.Round(float64(totalSeats-availableSeats)/float64(totalSeats)*10000) / 100
	}
	if len(flights) > 0 {
		stats["price_range"] = map[string]float64{
			"minimum": minPrice,
			"maximum": maxPrice,
			"average": math.Round(sumPrice/float64(len(flights))*100) / 100,
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "success",
		"statistics": stats,
	})
}
