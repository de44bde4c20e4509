package maps

import (
	"context"
	"time"
)

// DirectionsClient looks up routes between two places. Implementations must be
// safe for concurrent use. An empty slice with a nil error means the provider
// found no route.
type DirectionsClient interface {
	Directions(ctx context.Context, req *DirectionsRequest) ([]Route, error)
}

// ProviderConfig holds configuration for a maps provider
type ProviderConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// NewDirectionsClient builds the production client chain: Google Directions
// behind a circuit breaker. It returns nil when no API key is configured so
// callers serve mock data without attempting a call.
func NewDirectionsClient(cfg ProviderConfig, breaker Breaker) DirectionsClient {
	if cfg.APIKey == "" {
		return nil
	}
	return NewBreakerDirections(NewGoogleDirections(cfg), breaker)
}
