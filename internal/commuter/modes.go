package commuter

import (
	"context"
	"fmt"
	"sort"

	"github.com/richxcame/commuter-agent/internal/maps"
	"github.com/richxcame/commuter-agent/pkg/logger"
	"github.com/richxcame/commuter-agent/pkg/tracing"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	handlerTravelMode = "travel_mode"

	carCostPerKm        = 0.5
	carParkingSurcharge = 3.0
	transitFare         = "$2.50"
	bikeCost            = "$0"
	rideshareMultiplier = 1.6

	minLiveModes = 2
)

// modeLookup is one live mode fetched from the directions provider.
type modeLookup struct {
	name  string
	req   func(pair LocationPair) *maps.DirectionsRequest
	build func(leg maps.RouteLeg) (cost string, seconds int)
}

var modeLookups = []modeLookup{
	{
		name: ModeCar,
		req: func(pair LocationPair) *maps.DirectionsRequest {
			return &maps.DirectionsRequest{
				Origin: pair.Origin, Destination: pair.Destination,
				Mode: maps.ModeDriving, TrafficModel: maps.TrafficModelBestGuess, DepartNow: true,
			}
		},
		build: func(leg maps.RouteLeg) (string, int) {
			return formatCost(carCost(leg.DistanceMeters)), leg.TrafficDurationSeconds()
		},
	},
	{
		name: ModePublicTransit,
		req: func(pair LocationPair) *maps.DirectionsRequest {
			return &maps.DirectionsRequest{
				Origin: pair.Origin, Destination: pair.Destination,
				Mode: maps.ModeTransit, DepartNow: true,
			}
		},
		build: func(leg maps.RouteLeg) (string, int) {
			return transitFare, leg.DurationSeconds
		},
	},
	{
		name: ModeBike,
		req: func(pair LocationPair) *maps.DirectionsRequest {
			return &maps.DirectionsRequest{
				Origin: pair.Origin, Destination: pair.Destination,
				Mode: maps.ModeBicycling,
			}
		},
		build: func(leg maps.RouteLeg) (string, int) {
			return bikeCost, leg.DurationSeconds
		},
	},
}

func carCost(distanceMeters int) float64 {
	return float64(distanceMeters)/1000*carCostPerKm + carParkingSurcharge
}

// TravelModeSuggestion compares car, transit, bike and rideshare for the trip
// named in the query.
func (a *Agent) TravelModeSuggestion(ctx context.Context, query string) *TravelModeSuggestion {
	return withFallback(ctx, a.directions, handlerTravelMode,
		func(ctx context.Context, client maps.DirectionsClient) (*TravelModeSuggestion, error) {
			return liveModes(ctx, client, query)
		},
		mockTravelModeSuggestion,
	)
}

func liveModes(ctx context.Context, client maps.DirectionsClient, query string) (*TravelModeSuggestion, error) {
	pair, ok := ExtractLocations(query)
	if !ok {
		return nil, errNoLocations
	}
	tracing.AddSpanAttributes(ctx, tracing.OriginKey.String(pair.Origin), tracing.DestinationKey.String(pair.Destination))

	// Lookups are independent; each slot is filled only on success so result
	// order stays Car, Transit, Bike.
	results := make([]*TravelModeOption, len(modeLookups))
	var g errgroup.Group
	for i, lookup := range modeLookups {
		g.Go(func() error {
			leg, err := firstLeg(ctx, client, lookup.req(pair))
			if err != nil {
				logger.WarnContext(ctx, "travel mode lookup failed",
					zap.String("mode", lookup.name),
					zap.Error(err),
				)
				return nil
			}
			cost, seconds := lookup.build(leg)
			pros, cons := modeProfile(lookup.name)
			results[i] = &TravelModeOption{
				Mode: lookup.name,
				Cost: cost,
				Time: FormatDuration(seconds),
				Pros: pros,
				Cons: cons,
			}
			return nil
		})
	}
	_ = g.Wait()

	modes := make([]TravelModeOption, 0, modesPerSuggestion)
	for _, r := range results {
		if r != nil {
			modes = append(modes, *r)
		}
	}
	if car := results[0]; car != nil {
		// Priced from the displayed car cost so $10.00 becomes $16.00.
		pros, cons := modeProfile(ModeRideshare)
		modes = append(modes, TravelModeOption{
			Mode: ModeRideshare,
			Cost: formatCost(parseCost(car.Cost) * rideshareMultiplier),
			Time: car.Time,
			Pros: pros,
			Cons: cons,
		})
	}
	if len(modes) < minLiveModes {
		return nil, fmt.Errorf("%w: only %d travel modes available", errInsufficient, len(modes))
	}

	modes = padModes(modes)
	sortModesByTime(modes)

	return &TravelModeSuggestion{
		Type:           TypeTravelModeSuggestion,
		Modes:          modes,
		Recommendation: recommendMode(modes),
	}, nil
}

func firstLeg(ctx context.Context, client maps.DirectionsClient, req *maps.DirectionsRequest) (maps.RouteLeg, error) {
	routes, err := client.Directions(ctx, req)
	if err != nil {
		return maps.RouteLeg{}, err
	}
	if len(routes) == 0 {
		return maps.RouteLeg{}, fmt.Errorf("%w: no %s route", errInsufficient, req.Mode)
	}
	leg, ok := routes[0].FirstLeg()
	if !ok {
		return maps.RouteLeg{}, fmt.Errorf("%w: %s route has no legs", errInsufficient, req.Mode)
	}
	return leg, nil
}

// padModes borrows mock entries for any mode not already present.
func padModes(modes []TravelModeOption) []TravelModeOption {
	present := make(map[string]bool, len(modes))
	for _, m := range modes {
		present[m.Mode] = true
	}
	for _, m := range mockModes() {
		if len(modes) >= modesPerSuggestion {
			break
		}
		if !present[m.Mode] {
			modes = append(modes, m)
			present[m.Mode] = true
		}
	}
	return modes
}

func sortModesByTime(modes []TravelModeOption) {
	sort.SliceStable(modes, func(i, j int) bool {
		return parseMinutes(modes[i].Time) < parseMinutes(modes[j].Time)
	})
}

// recommendMode names the fastest entry (modes must be sorted by time) and the
// cheapest, keeping the earliest on ties.
func recommendMode(modes []TravelModeOption) string {
	fastest := modes[0]
	cheapest := modes[0]
	for _, m := range modes[1:] {
		if parseCost(m.Cost) < parseCost(cheapest.Cost) {
			cheapest = m
		}
	}
	return fmt.Sprintf("%s for speed (%s), or %s for cost efficiency (%s).",
		fastest.Mode, fastest.Time, cheapest.Mode, cheapest.Cost)
}
