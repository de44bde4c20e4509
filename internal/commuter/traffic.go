package commuter

import (
	"context"
	"fmt"
	"strings"

	"github.com/richxcame/commuter-agent/internal/maps"
	"github.com/richxcame/commuter-agent/pkg/tracing"
)

const (
	handlerTraffic = "traffic"

	maxIncidents = 2
)

var incidentKeywords = []string{"accident", "construction"}

var quietIncidents = []string{"No major incidents reported", "Normal traffic flow expected"}

// TrafficUpdate answers a traffic query for the place named in it.
func (a *Agent) TrafficUpdate(ctx context.Context, query string) *TrafficUpdate {
	return withFallback(ctx, a.directions, handlerTraffic,
		func(ctx context.Context, client maps.DirectionsClient) (*TrafficUpdate, error) {
			return liveTraffic(ctx, client, query)
		},
		a.mockTrafficUpdate,
	)
}

func liveTraffic(ctx context.Context, client maps.DirectionsClient, query string) (*TrafficUpdate, error) {
	place := extractPlace(query)
	origin, destination := place, place+" city center"
	if pair, ok := ExtractLocations(query); ok {
		origin, destination = pair.Origin, pair.Destination
	}
	tracing.AddSpanAttributes(ctx, tracing.OriginKey.String(origin), tracing.DestinationKey.String(destination))

	routes, err := client.Directions(ctx, &maps.DirectionsRequest{
		Origin:       origin,
		Destination:  destination,
		Mode:         maps.ModeDriving,
		TrafficModel: maps.TrafficModelBestGuess,
		DepartNow:    true,
	})
	if err != nil {
		return nil, err
	}
	if len(routes) == 0 {
		return nil, fmt.Errorf("%w: no route for %q", errInsufficient, place)
	}
	leg, ok := routes[0].FirstLeg()
	if !ok {
		return nil, fmt.Errorf("%w: route has no legs", errInsufficient)
	}

	return &TrafficUpdate{
		Type:          TypeTrafficUpdate,
		Location:      titleCase(place),
		CurrentStatus: trafficLevelForDelay(leg.TrafficDelaySeconds()),
		Incidents:     collectIncidents(leg),
		PeakHours:     fixedPeakHours,
	}, nil
}

// collectIncidents returns up to two step warnings that mention an accident or
// construction, or a quiet-roads placeholder when there are none.
func collectIncidents(leg maps.RouteLeg) []string {
	incidents := make([]string, 0, maxIncidents)
	for _, step := range leg.Steps {
		for _, warning := range step.Warnings {
			if !isIncident(warning) {
				continue
			}
			incidents = append(incidents, warning)
			if len(incidents) == maxIncidents {
				return incidents
			}
		}
	}
	if len(incidents) == 0 {
		return append(incidents, quietIncidents...)
	}
	return incidents
}

func isIncident(warning string) bool {
	lower := strings.ToLower(warning)
	for _, kw := range incidentKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
