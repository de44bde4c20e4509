package commuter

import (
	"context"
	"math/rand"

	"github.com/richxcame/commuter-agent/internal/maps"
	"github.com/richxcame/commuter-agent/pkg/logger"
	"github.com/richxcame/commuter-agent/pkg/tracing"
	"go.uber.org/zap"
)

const tracerName = "commuter-agent/commuter"

// Agent answers commuter questions. A nil directions client serves mock data
// for every intent. Safe for concurrent use.
type Agent struct {
	directions maps.DirectionsClient
	rng        *lockedRand
}

// Option configures an Agent.
type Option func(*Agent)

// WithRandSource seeds the generator used for mock traffic status.
func WithRandSource(src rand.Source) Option {
	return func(a *Agent) {
		a.rng = newLockedRand(src)
	}
}

// New creates an Agent backed by the given directions client, which may be nil.
func New(directions maps.DirectionsClient, opts ...Option) *Agent {
	a := &Agent{directions: directions}
	for _, opt := range opts {
		opt(a)
	}
	if a.rng == nil {
		a.rng = newLockedRand(nil)
	}
	return a
}

// LiveData reports whether a directions client is configured.
func (a *Agent) LiveData() bool {
	return a.directions != nil
}

// ProcessQuery classifies the query and dispatches it to the matching handler.
// Handlers fall back to mock data internally, so the error is only non-nil when
// ctx is already done.
func (a *Agent) ProcessQuery(ctx context.Context, query string) (Payload, error) {
	intent := Classify(query)
	queriesTotal.WithLabelValues(string(intent)).Inc()
	logger.DebugContext(ctx, "query classified", zap.String("intent", string(intent)))

	var payload Payload
	err := tracing.TraceBusinessLogic(ctx, tracerName, "commuter.process_query",
		tracing.QueryAttributes(string(intent), "", ""),
		func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			payload = a.dispatch(ctx, intent, query)
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (a *Agent) dispatch(ctx context.Context, intent Intent, query string) Payload {
	switch intent {
	case IntentRoute:
		return a.RouteRecommendation(ctx, query)
	case IntentTraffic:
		return a.TrafficUpdate(ctx, query)
	case IntentTravelMode:
		return a.TravelModeSuggestion(ctx, query)
	default:
		return generalResponse()
	}
}
