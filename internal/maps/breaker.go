package maps

import (
	"context"
	"fmt"

	"github.com/richxcame/commuter-agent/pkg/logger"
	"github.com/richxcame/commuter-agent/pkg/resilience"
	"go.uber.org/zap"
)

// Breaker is the subset of resilience.CircuitBreaker used here.
type Breaker interface {
	Execute(ctx context.Context, op resilience.Operation) (interface{}, error)
}

// BreakerDirections guards a DirectionsClient with a circuit breaker. An open
// breaker fails fast so the caller falls back without waiting on the network.
type BreakerDirections struct {
	next    DirectionsClient
	breaker Breaker
}

// NewBreakerDirections wraps next. A nil breaker executes calls directly.
func NewBreakerDirections(next DirectionsClient, breaker Breaker) *BreakerDirections {
	return &BreakerDirections{next: next, breaker: breaker}
}

// Directions implements DirectionsClient.
func (b *BreakerDirections) Directions(ctx context.Context, req *DirectionsRequest) ([]Route, error) {
	if b.breaker == nil {
		return b.next.Directions(ctx, req)
	}

	result, err := b.breaker.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		return b.next.Directions(ctx, req)
	})
	if err != nil {
		logger.WarnContext(ctx, "Directions lookup failed",
			zap.String("mode", string(req.Mode)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("directions %s: %w", req.Mode, err)
	}

	routes, ok := result.([]Route)
	if !ok {
		return nil, fmt.Errorf("directions %s: unexpected result type %T", req.Mode, result)
	}
	return routes, nil
}
