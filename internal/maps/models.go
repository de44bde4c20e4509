package maps

// TravelMode is a Directions API travel mode.
type TravelMode string

const (
	ModeDriving   TravelMode = "driving"
	ModeTransit   TravelMode = "transit"
	ModeBicycling TravelMode = "bicycling"
	ModeWalking   TravelMode = "walking"
)

// TrafficModelBestGuess asks for the historical+live traffic estimate.
const TrafficModelBestGuess = "best_guess"

// DirectionsRequest describes one directions lookup between two free-text places.
type DirectionsRequest struct {
	Origin       string
	Destination  string
	Mode         TravelMode
	Alternatives bool
	// TrafficModel is only honoured for driving with DepartNow set.
	TrafficModel string
	DepartNow    bool
}

// Route is one candidate route returned by the provider.
type Route struct {
	Summary  string
	Warnings []string
	Legs     []RouteLeg
}

// RouteLeg is the journey between two consecutive waypoints.
type RouteLeg struct {
	StartAddress    string
	EndAddress      string
	DistanceMeters  int
	DurationSeconds int
	// DurationInTraffic is zero when the provider did not return a traffic estimate.
	DurationInTraffic int
	Steps             []RouteStep
}

// RouteStep is a single instruction within a leg.
type RouteStep struct {
	Instruction     string
	Warnings        []string
	DistanceMeters  int
	DurationSeconds int
	TravelMode      string
}

// TrafficDurationSeconds returns the in-traffic duration, or the base duration
// when no traffic estimate was returned.
func (l RouteLeg) TrafficDurationSeconds() int {
	if l.DurationInTraffic > 0 {
		return l.DurationInTraffic
	}
	return l.DurationSeconds
}

// TrafficDelaySeconds is the extra time caused by traffic.
func (l RouteLeg) TrafficDelaySeconds() int {
	return l.TrafficDurationSeconds() - l.DurationSeconds
}

// FirstLeg returns the first leg of the route.
func (r Route) FirstLeg() (RouteLeg, bool) {
	if len(r.Legs) == 0 {
		return RouteLeg{}, false
	}
	return r.Legs[0], true
}
