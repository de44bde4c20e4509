package commuter

import (
	"math/rand"
	"sync"
	"time"
)

const (
	generalHelpMessage = "I can help you with route planning, traffic updates, and travel mode suggestions. Please ask specifically about these topics."

	mockTrafficLocation    = "Downtown"
	mockModeRecommendation = "Public Transit for cost efficiency, or Car for speed."

	routesPerRecommendation = 3
	modesPerSuggestion      = 4
)

var fixedPeakHours = PeakHours{
	Morning: "7:00 AM - 9:00 AM",
	Evening: "5:00 PM - 7:00 PM",
}

var mockTrafficLevels = []TrafficLevel{TrafficHeavy, TrafficModerate, TrafficLight}

func mockRoutes() []RouteOption {
	return []RouteOption{
		{ID: 1, Description: "Fastest route via Highway A", Duration: "45 mins", Distance: "15 km", Traffic: TrafficModerate},
		{ID: 2, Description: "Scenic route via Coastal Road", Duration: "60 mins", Distance: "18 km", Traffic: TrafficLight},
		{ID: 3, Description: "Alternative route via Main Street", Duration: "55 mins", Distance: "16 km", Traffic: TrafficHeavy},
	}
}

func mockModes() []TravelModeOption {
	return []TravelModeOption{
		{
			Mode: ModeCar, Cost: "$5", Time: "30 mins",
			Pros: []string{"Fastest option", "Door-to-door convenience", "Privacy"},
			Cons: []string{"Parking costs", "Traffic delays", "Environmental impact"},
		},
		{
			Mode: ModePublicTransit, Cost: "$2", Time: "45 mins",
			Pros: []string{"Cost-effective", "No parking needed", "Eco-friendly"},
			Cons: []string{"Fixed schedules", "Possible delays", "Less privacy"},
		},
		{
			Mode: ModeBike, Cost: "$0", Time: "40 mins",
			Pros: []string{"Free", "Healthy exercise", "No emissions"},
			Cons: []string{"Weather dependent", "Physical effort", "Limited range"},
		},
		{
			Mode: ModeRideshare, Cost: "$8", Time: "35 mins",
			Pros: []string{"Convenient", "No parking", "Can work during ride"},
			Cons: []string{"Higher cost", "Surge pricing", "Less reliable"},
		},
	}
}

// modeProfile returns the fixed pros and cons for a mode name.
func modeProfile(mode string) (pros, cons []string) {
	for _, m := range mockModes() {
		if m.Mode == mode {
			return m.Pros, m.Cons
		}
	}
	return []string{}, []string{}
}

func mockRouteRecommendation() *RouteRecommendation {
	return &RouteRecommendation{Type: TypeRouteRecommendation, Routes: mockRoutes()}
}

func mockTravelModeSuggestion() *TravelModeSuggestion {
	return &TravelModeSuggestion{
		Type:           TypeTravelModeSuggestion,
		Modes:          mockModes(),
		Recommendation: mockModeRecommendation,
	}
}

func generalResponse() *GeneralResponse {
	return &GeneralResponse{Type: TypeGeneralResponse, Message: generalHelpMessage}
}

// lockedRand serialises access to a rand.Rand shared across requests.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newLockedRand(src rand.Source) *lockedRand {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &lockedRand{r: rand.New(src)}
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

func (a *Agent) mockTrafficUpdate() *TrafficUpdate {
	return &TrafficUpdate{
		Type:          TypeTrafficUpdate,
		Location:      mockTrafficLocation,
		CurrentStatus: mockTrafficLevels[a.rng.Intn(len(mockTrafficLevels))],
		Incidents: []string{
			"Road work on Main Street causing delays",
			"Accident on Highway A - cleared",
		},
		PeakHours: fixedPeakHours,
	}
}
