package commuter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commuter_queries_total",
			Help: "Queries processed by classified intent",
		},
		[]string{"intent"},
	)

	responsesBySource = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commuter_responses_total",
			Help: "Handler responses by data source (live or mock)",
		},
		[]string{"handler", "source"},
	)

	fallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commuter_fallbacks_total",
			Help: "Mock fallbacks by handler and reason",
		},
		[]string{"handler", "reason"},
	)
)

const (
	sourceLive = "live"
	sourceMock = "mock"
)
