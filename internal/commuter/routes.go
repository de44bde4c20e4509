package commuter

import (
	"context"
	"fmt"

	"github.com/richxcame/commuter-agent/internal/maps"
	"github.com/richxcame/commuter-agent/pkg/tracing"
)

const handlerRoute = "route"

// RouteRecommendation answers a routing query with exactly three routes.
func (a *Agent) RouteRecommendation(ctx context.Context, query string) *RouteRecommendation {
	return withFallback(ctx, a.directions, handlerRoute,
		func(ctx context.Context, client maps.DirectionsClient) (*RouteRecommendation, error) {
			return liveRoutes(ctx, client, query)
		},
		mockRouteRecommendation,
	)
}

func liveRoutes(ctx context.Context, client maps.DirectionsClient, query string) (*RouteRecommendation, error) {
	pair, ok := ExtractLocations(query)
	if !ok {
		return nil, errNoLocations
	}
	tracing.AddSpanAttributes(ctx, tracing.OriginKey.String(pair.Origin), tracing.DestinationKey.String(pair.Destination))

	routes, err := client.Directions(ctx, &maps.DirectionsRequest{
		Origin:       pair.Origin,
		Destination:  pair.Destination,
		Mode:         maps.ModeDriving,
		Alternatives: true,
		TrafficModel: maps.TrafficModelBestGuess,
		DepartNow:    true,
	})
	if err != nil {
		return nil, err
	}
	if len(routes) == 0 {
		return nil, fmt.Errorf("%w: no routes from %q to %q", errInsufficient, pair.Origin, pair.Destination)
	}
	if len(routes) > routesPerRecommendation {
		routes = routes[:routesPerRecommendation]
	}

	options := make([]RouteOption, 0, routesPerRecommendation)
	for i, route := range routes {
		leg, ok := route.FirstLeg()
		if !ok {
			return nil, fmt.Errorf("%w: route %d has no legs", errInsufficient, i+1)
		}
		options = append(options, RouteOption{
			ID:          i + 1,
			Description: describeRoute(route, leg, i+1),
			Duration:    FormatDuration(leg.TrafficDurationSeconds()),
			Distance:    FormatDistance(leg.DistanceMeters),
			Traffic:     trafficLevelForDelay(leg.TrafficDelaySeconds()),
		})
	}
	tracing.AddSpanAttributes(ctx, tracing.RouteCountKey.Int(len(options)))

	return &RouteRecommendation{Type: TypeRouteRecommendation, Routes: padRoutes(options)}, nil
}

// describeRoute prefers the road named in the first instruction, then the
// provider summary, then a positional label.
func describeRoute(route maps.Route, leg maps.RouteLeg, position int) string {
	if len(leg.Steps) > 0 {
		if road, ok := boldRoad(leg.Steps[0].Instruction); ok {
			return "Via " + road
		}
	}
	if route.Summary != "" {
		return route.Summary
	}
	return fmt.Sprintf("Route %d", position)
}

// padRoutes fills the list to three entries by repeating the last one.
func padRoutes(routes []RouteOption) []RouteOption {
	for len(routes) < routesPerRecommendation {
		if len(routes) == 0 {
			routes = append(routes, RouteOption{
				ID:          1,
				Description: "Alternative route",
				Duration:    "50 mins",
				Distance:    "16 km",
				Traffic:     TrafficModerate,
			})
			continue
		}
		routes = append(routes, routes[len(routes)-1])
	}
	return routes
}
