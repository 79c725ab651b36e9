package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shareit",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		},
		[]string{"endpoint", "method", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shareit",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	bookingEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shareit",
			Name:      "booking_events_total",
			Help:      "Booking lifecycle events by type.",
		},
		[]string{"type"},
	)

	rateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shareit",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, bookingEvents, rateLimited)
	})
}

// ObserveHTTP records one finished request.
func ObserveHTTP(endpoint, method string, status int, elapsed time.Duration) {
	if endpoint == "" {
		endpoint = "unmatched"
	}
	httpRequests.WithLabelValues(endpoint, method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(endpoint, method).Observe(elapsed.Seconds())
}

func IncBookingEvent(eventType string) {
	bookingEvents.WithLabelValues(eventType).Inc()
}

func IncRateLimited() {
	rateLimited.Inc()
}
