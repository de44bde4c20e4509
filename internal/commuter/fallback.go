package commuter

import (
	"context"
	"errors"
	"fmt"

	"github.com/richxcame/commuter-agent/internal/maps"
	"github.com/richxcame/commuter-agent/pkg/logger"
	"github.com/richxcame/commuter-agent/pkg/tracing"
	"go.uber.org/zap"
)

var (
	// errNoLocations means the query named no origin/destination pair.
	errNoLocations = errors.New("no locations in query")
	// errInsufficient means the provider answered but not with enough data to use.
	errInsufficient = errors.New("insufficient directions data")
)

const (
	reasonNoClient     = "no_client"
	reasonNoLocations  = "no_locations"
	reasonInsufficient = "insufficient"
	reasonError        = "error"
	reasonPanic        = "panic"
)

type liveFunc[T any] func(ctx context.Context, client maps.DirectionsClient) (T, error)

// withFallback runs live against the directions client and returns mock()
// whenever there is no client, live fails, or live panics. It never errors.
func withFallback[T any](ctx context.Context, client maps.DirectionsClient, handler string, live liveFunc[T], mock func() T) (result T) {
	useMock := func(reason string, err error) {
		fallbacksTotal.WithLabelValues(handler, reason).Inc()
		responsesBySource.WithLabelValues(handler, sourceMock).Inc()
		tracing.AddSpanAttributes(ctx, tracing.DataSourceKey.String(sourceMock))
		if err != nil {
			logger.WarnContext(ctx, "serving mock data",
				zap.String("handler", handler),
				zap.String("reason", reason),
				zap.Error(err),
			)
		}
		result = mock()
	}

	if client == nil {
		useMock(reasonNoClient, nil)
		return result
	}

	defer func() {
		if r := recover(); r != nil {
			useMock(reasonPanic, fmt.Errorf("panic: %v", r))
		}
	}()

	value, err := live(ctx, client)
	if err != nil {
		useMock(fallbackReason(err), err)
		return result
	}

	responsesBySource.WithLabelValues(handler, sourceLive).Inc()
	tracing.AddSpanAttributes(ctx, tracing.DataSourceKey.String(sourceLive))
	return value
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, errNoLocations):
		return reasonNoLocations
	case errors.Is(err, errInsufficient):
		return reasonInsufficient
	default:
		return reasonError
	}
}
