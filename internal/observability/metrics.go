package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fbe_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "code", "method"},
	)

	HoldsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fbe_holds_created_total",
			Help: "Seat holds successfully created",
		},
	)

	HoldConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fbe_hold_conflicts_total",
			Help: "Hold attempts rejected because the seat was held or booked",
		},
	)

	HoldsReclaimed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fbe_holds_reclaimed_total",
			Help: "Expired holds reclaimed lazily or by the sweep",
		},
	)

	ConfirmsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fbe_confirms_total",
			Help: "Booking confirmations by outcome",
		},
		[]string{"outcome"},
	)

	BookingsCancelled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fbe_bookings_cancelled_total",
			Help: "Bookings cancelled",
		},
	)

	PriceTicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fbe_price_ticks_total",
			Help: "Completed pricing engine ticks",
		},
	)

	ConfirmDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fbe_confirm_seconds",
			Help:    "Duration of the check-then-promote confirm sequence",
			Buckets: prometheus.DefBuckets,
		},
	)
)
