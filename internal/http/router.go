package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aerofare/booking-engine/internal/idempotency"
	"github.com/aerofare/booking-engine/internal/observability"
	"github.com/aerofare/booking-engine/internal/ratelimit"
)

func SetupRouter(h *Handlers, logger observability.Logger, rl *ratelimit.Limiter, idemp *idempotency.Service) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(LoggerMiddleware(logger))
	r.Use(MetricsMiddleware)
	r.Use(TracingMiddleware)
	r.Use(RateLimitMiddleware(rl))
	r.Use(IdempotencyMiddleware(idemp))

	r.Get("/flights", h.ListFlights)
	r.Get("/flights/{id}", h.GetFlight)
	r.Get("/flights/{id}/seats", h.FlightSeats)
	r.Get("/flights/{id}/price", h.FlightPrice)
	r.Get("/flights/{id}/fares", h.FlightFares)
	r.Get("/search", h.SearchFlights)
	r.Get("/airlines", h.ListAirlines)
	r.Get("/airports", h.ListAirports)
	r.Get("/stats", h.Stats)

	r.Post("/book/initiate", h.InitiateBooking)
	r.Post("/book/confirm", h.ConfirmBooking)
	r.Get("/bookings/{pnr}", h.GetBooking)
	r.Delete("/bookings/{pnr}", h.CancelBooking)
	r.Get("/bookings/history/{email}", h.BookingHistory)

	r.Post("/admin/demand", h.SetDemand)

	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}
