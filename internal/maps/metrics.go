package maps

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	directionsRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maps_directions_requests_total",
			Help: "Directions API calls by travel mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	directionsLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "maps_directions_request_duration_seconds",
			Help:    "Directions API call latency",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8},
		},
		[]string{"mode"},
	)
)

func recordDirectionsCall(mode TravelMode, outcome string, elapsed time.Duration) {
	directionsRequests.WithLabelValues(string(mode), outcome).Inc()
	directionsLatency.WithLabelValues(string(mode)).Observe(elapsed.Seconds())
}
