package maps

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/richxcame/commuter-agent/pkg/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ========================================
// MOCK: DirectionsClient
// ========================================

type mockDirectionsClient struct {
	mock.Mock
}

func (m *mockDirectionsClient) Directions(ctx context.Context, req *DirectionsRequest) ([]Route, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Route), args.Error(1)
}

func TestBreakerDirections_PassesThrough(t *testing.T) {
	next := new(mockDirectionsClient)
	req := &DirectionsRequest{Origin: "a", Destination: "b", Mode: ModeDriving}
	want := []Route{{Summary: "Via Main St"}}
	next.On("Directions", mock.Anything, req).Return(want, nil).Once()

	breaker := resilience.NewCircuitBreaker(resilience.BuildSettings("maps-pass", 60, 30, 3, 1), nil)
	client := NewBreakerDirections(next, breaker)

	routes, err := client.Directions(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, want, routes)
	next.AssertExpectations(t)
}

func TestBreakerDirections_OpensAfterFailures(t *testing.T) {
	next := new(mockDirectionsClient)
	req := &DirectionsRequest{Origin: "a", Destination: "b", Mode: ModeTransit}
	next.On("Directions", mock.Anything, req).Return(nil, errors.New("timeout")).Times(2)

	breaker := resilience.NewCircuitBreaker(resilience.BuildSettings("maps-open", 60, 30, 2, 1), resilience.GracefulDegradation("google_maps"))
	client := NewBreakerDirections(next, breaker)

	for i := 0; i < 2; i++ {
		_, err := client.Directions(context.Background(), req)
		require.Error(t, err)
	}

	_, err := client.Directions(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Contains(t, err.Error(), "directions transit")

	next.AssertNumberOfCalls(t, "Directions", 2)
}

func TestBreakerDirections_NilBreaker(t *testing.T) {
	next := new(mockDirectionsClient)
	next.On("Directions", mock.Anything, mock.Anything).Return([]Route{}, nil).Once()

	routes, err := NewBreakerDirections(next, nil).Directions(context.Background(), &DirectionsRequest{})
	require.NoError(t, err)
	assert.Empty(t, routes)
}

func TestBreakerDirections_RecoversAfterTimeout(t *testing.T) {
	next := new(mockDirectionsClient)
	req := &DirectionsRequest{Mode: ModeDriving}
	next.On("Directions", mock.Anything, req).Return(nil, errors.New("boom")).Once()
	next.On("Directions", mock.Anything, req).Return([]Route{{Summary: "ok"}}, nil).Once()

	settings := resilience.BuildSettings("maps-recover", 60, 0, 1, 1)
	settings.Timeout = 20 * time.Millisecond
	client := NewBreakerDirections(next, resilience.NewCircuitBreaker(settings, nil))

	_, err := client.Directions(context.Background(), req)
	require.Error(t, err)

	time.Sleep(40 * time.Millisecond)

	routes, err := client.Directions(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "ok", routes[0].Summary)
}
