package commuter

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultOrigin is used when a query names only a destination.
const DefaultOrigin = "Current Location"

const defaultTrafficLocation = "downtown"

var (
	// The greedy prefix makes the last "to" win, so "want to go to X" yields X.
	destinationPattern = regexp.MustCompile(`(?s)^.*\bto\s+([^?.,!]+)`)
	originPattern      = regexp.MustCompile(`\bfrom\s+([^?.,!]+?)\s+(?:to|go)\b`)
	fromToPattern      = regexp.MustCompile(`\bfrom\s+([^?.,!]+?)\s+to\s+([^?.,!]+)`)
	placePattern       = regexp.MustCompile(`\b(?:on|at|in|for)\s+([^?.,!]+)`)
	boldPattern        = regexp.MustCompile(`<b>([^<]+)</b>`)

	titleCaser = cases.Title(language.English)
)

// LocationPair is an origin and destination pulled from free text.
type LocationPair struct {
	Origin      string
	Destination string
}

// ExtractLocations finds an origin and destination in text. The second result
// is false when neither "... to <place>" nor "from <a> to <b>" matches.
func ExtractLocations(text string) (LocationPair, bool) {
	lower := strings.ToLower(text)

	if m := destinationPattern.FindStringSubmatch(lower); m != nil {
		if destination := strings.TrimSpace(m[1]); destination != "" {
			origin := DefaultOrigin
			if om := originPattern.FindStringSubmatch(lower); om != nil {
				origin = strings.TrimSpace(om[1])
			}
			return LocationPair{Origin: origin, Destination: destination}, true
		}
	}

	if m := fromToPattern.FindStringSubmatch(lower); m != nil {
		origin, destination := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		if origin != "" && destination != "" {
			return LocationPair{Origin: origin, Destination: destination}, true
		}
	}

	return LocationPair{}, false
}

// extractPlace returns the lower-cased place after on/at/in/for, or "downtown".
func extractPlace(text string) string {
	if m := placePattern.FindStringSubmatch(strings.ToLower(text)); m != nil {
		if place := strings.TrimSpace(m[1]); place != "" {
			return place
		}
	}
	return defaultTrafficLocation
}

// boldRoad returns the first <b>...</b> road name in an HTML instruction.
func boldRoad(instruction string) (string, bool) {
	if m := boldPattern.FindStringSubmatch(instruction); m != nil {
		return m[1], true
	}
	return "", false
}

func titleCase(s string) string {
	return titleCaser.String(s)
}
