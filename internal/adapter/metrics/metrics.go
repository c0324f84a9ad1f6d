package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_outcomes_total",
			Help: "Book and cancel results by outcome kind",
		},
		[]string{"operation", "kind"},
	)
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "booking_request_duration_seconds",
			Help:    "Time spent handling a booking request",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)
