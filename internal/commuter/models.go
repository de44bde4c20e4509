package commuter

// TrafficLevel is the congestion classification reported to callers.
type TrafficLevel string

const (
	TrafficLight    TrafficLevel = "Light"
	TrafficModerate TrafficLevel = "Moderate"
	TrafficHeavy    TrafficLevel = "Heavy"
)

// Payload type discriminators.
const (
	TypeRouteRecommendation  = "route_recommendation"
	TypeTrafficUpdate        = "traffic_update"
	TypeTravelModeSuggestion = "travel_mode_suggestion"
	TypeGeneralResponse      = "general_response"
)

// Travel mode names.
const (
	ModeCar           = "Car"
	ModePublicTransit = "Public Transit"
	ModeBike          = "Bike"
	ModeRideshare     = "Rideshare"
)

// Payload is the structured answer to one query.
type Payload interface {
	PayloadType() string
}

// RouteOption is one suggested route.
type RouteOption struct {
	ID          int          `json:"id"`
	Description string       `json:"description"`
	Duration    string       `json:"duration"`
	Distance    string       `json:"distance"`
	Traffic     TrafficLevel `json:"traffic"`
}

// RouteRecommendation always carries exactly three routes.
type RouteRecommendation struct {
	Type   string        `json:"type"`
	Routes []RouteOption `json:"routes"`
}

func (p *RouteRecommendation) PayloadType() string { return p.Type }

// PeakHours are the fixed rush-hour windows.
type PeakHours struct {
	Morning string `json:"morning"`
	Evening string `json:"evening"`
}

// TrafficUpdate describes current conditions around a place.
type TrafficUpdate struct {
	Type          string       `json:"type"`
	Location      string       `json:"location"`
	CurrentStatus TrafficLevel `json:"current_status"`
	Incidents     []string     `json:"incidents"`
	PeakHours     PeakHours    `json:"peak_hours"`
}

func (p *TrafficUpdate) PayloadType() string { return p.Type }

// TravelModeOption compares one way of making the trip.
type TravelModeOption struct {
	Mode string   `json:"mode"`
	Cost string   `json:"cost"`
	Time string   `json:"time"`
	Pros []string `json:"pros"`
	Cons []string `json:"cons"`
}

// TravelModeSuggestion lists four modes sorted by time.
type TravelModeSuggestion struct {
	Type           string             `json:"type"`
	Modes          []TravelModeOption `json:"modes"`
	Recommendation string             `json:"recommendation"`
}

func (p *TravelModeSuggestion) PayloadType() string { return p.Type }

// GeneralResponse answers queries outside the supported intents.
type GeneralResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (p *GeneralResponse) PayloadType() string { return p.Type }

// trafficLevelForDelay buckets a traffic delay in seconds.
func trafficLevelForDelay(delaySeconds int) TrafficLevel {
	switch {
	case delaySeconds > 600:
		return TrafficHeavy
	case delaySeconds > 300:
		return TrafficModerate
	default:
		return TrafficLight
	}
}
