// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reservations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventbuddy_seat_reservations_total",
		Help: "Seat reservation attempts by outcome",
	}, []string{"outcome"})

	cancellations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventbuddy_seat_cancellations_total",
		Help: "Booking cancellations by outcome",
	}, []string{"outcome"})

	seatsReserved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eventbuddy_seats_reserved_total",
		Help: "Seats handed out by successful reservations",
	})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "eventbuddy_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func ObserveReservation(outcome string, seats int) {
	reservations.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		seatsReserved.Add(float64(seats))
	}
}

func ObserveCancellation(outcome string) {
	cancellations.WithLabelValues(outcome).Inc()
}

func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
