package registry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_registrations_total",
			Help: "Registration attempts by registrar and outcome",
		},
		[]string{"registrar", "outcome"},
	)

	registrationLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agent_registration_duration_seconds",
			Help:    "Registration call latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"registrar"},
	)
)

func recordRegistration(registrar string, err error, elapsed time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	registrationsTotal.WithLabelValues(registrar, outcome).Inc()
	registrationLatency.WithLabelValues(registrar).Observe(elapsed.Seconds())
}
