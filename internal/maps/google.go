package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/richxcame/commuter-agent/pkg/httpclient"
	"github.com/richxcame/commuter-agent/pkg/logger"
	"github.com/richxcame/commuter-agent/pkg/tracing"
	"go.uber.org/zap"
)

const (
	googleMapsBaseURL        = "https://maps.googleapis.com/maps/api"
	googleDirectionsEndpoint = "/directions/json"

	defaultGoogleTimeout = 10 * time.Second

	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

// APIError is a non-OK status reported inside a 200 response body.
type APIError struct {
	Status  string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("google maps error: %s", e.Status)
	}
	return fmt.Sprintf("google maps error: %s - %s", e.Status, e.Message)
}

// GoogleDirections implements DirectionsClient for the Google Maps Directions API
type GoogleDirections struct {
	apiKey string
	client *httpclient.Client
}

// NewGoogleDirections creates a new Google Directions client
func NewGoogleDirections(config ProviderConfig) *GoogleDirections {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = googleMapsBaseURL
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultGoogleTimeout
	}

	return &GoogleDirections{
		apiKey: config.APIKey,
		client: httpclient.NewClient(baseURL, timeout),
	}
}

// Directions performs exactly one directions request.
func (g *GoogleDirections) Directions(ctx context.Context, req *DirectionsRequest) ([]Route, error) {
	var routes []Route
	start := time.Now()

	err := tracing.TraceExternalAPI(ctx, "maps", "google_maps", "directions", func(ctx context.Context) error {
		tracing.AddSpanAttributes(ctx, tracing.TravelModeKey.String(string(req.Mode)))

		resp, err := g.client.Get(ctx, googleDirectionsEndpoint+"?"+g.buildParams(req).Encode(), nil)
		if err != nil {
			return fmt.Errorf("google maps directions request failed: %w", err)
		}

		var googleResp googleDirectionsResponse
		if err := json.Unmarshal(resp, &googleResp); err != nil {
			return fmt.Errorf("failed to parse directions response: %w", err)
		}

		switch googleResp.Status {
		case statusOK:
			routes = convertDirectionsResponse(&googleResp)
		case statusZeroResults:
			routes = []Route{}
		default:
			return &APIError{Status: googleResp.Status, Message: googleResp.ErrorMessage}
		}
		return nil
	})

	outcome := "success"
	if err != nil {
		outcome = "error"
	} else if len(routes) == 0 {
		outcome = "zero_results"
	}
	recordDirectionsCall(req.Mode, outcome, time.Since(start))

	if err != nil {
		return nil, err
	}

	logger.DebugContext(ctx, "Google Maps directions response",
		zap.String("mode", string(req.Mode)),
		zap.Int("routes", len(routes)),
	)

	return routes, nil
}

func (g *GoogleDirections) buildParams(req *DirectionsRequest) url.Values {
	mode := req.Mode
	if mode == "" {
		mode = ModeDriving
	}

	params := url.Values{}
	params.Set("origin", req.Origin)
	params.Set("destination", req.Destination)
	params.Set("mode", string(mode))
	params.Set("units", "metric")

	if req.Alternatives {
		params.Set("alternatives", "true")
	}
	if req.DepartNow {
		params.Set("departure_time", "now")
		if mode == ModeDriving && req.TrafficModel != "" {
			params.Set("traffic_model", req.TrafficModel)
		}
	}

	params.Set("key", g.apiKey)
	return params
}

func convertDirectionsResponse(resp *googleDirectionsResponse) []Route {
	routes := make([]Route, 0, len(resp.Routes))

	for _, r := range resp.Routes {
		route := Route{
			Summary:  r.Summary,
			Warnings: r.Warnings,
		}

		for _, leg := range r.Legs {
			routeLeg := RouteLeg{
				StartAddress:      leg.StartAddress,
				EndAddress:        leg.EndAddress,
				DistanceMeters:    leg.Distance.Value,
				DurationSeconds:   leg.Duration.Value,
				DurationInTraffic: leg.DurationInTraffic.Value,
			}

			for _, step := range leg.Steps {
				routeLeg.Steps = append(routeLeg.Steps, RouteStep{
					Instruction:     step.HTMLInstructions,
					Warnings:        step.Warnings,
					DistanceMeters:  step.Distance.Value,
					DurationSeconds: step.Duration.Value,
					TravelMode:      step.TravelMode,
				})
			}

			route.Legs = append(route.Legs, routeLeg)
		}

		routes = append(routes, route)
	}

	return routes
}

type googleDirectionsResponse struct {
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Routes       []googleRoute `json:"routes"`
}

type googleRoute struct {
	Summary  string      `json:"summary"`
	Legs     []googleLeg `json:"legs"`
	Warnings []string    `json:"warnings"`
}

type googleLeg struct {
	StartAddress      string       `json:"start_address"`
	EndAddress        string       `json:"end_address"`
	Distance          googleValue  `json:"distance"`
	Duration          googleValue  `json:"duration"`
	DurationInTraffic googleValue  `json:"duration_in_traffic"`
	Steps             []googleStep `json:"steps"`
}

type googleStep struct {
	HTMLInstructions string      `json:"html_instructions"`
	Warnings         []string    `json:"warnings,omitempty"`
	Distance         googleValue `json:"distance"`
	Duration         googleValue `json:"duration"`
	TravelMode       string      `json:"travel_mode"`
}

type googleValue struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}
