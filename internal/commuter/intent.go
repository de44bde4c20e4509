package commuter

import "strings"

// Intent is the classified purpose of a query.
type Intent string

const (
	IntentRoute      Intent = "route"
	IntentTraffic    Intent = "traffic"
	IntentTravelMode Intent = "travel_mode"
	IntentGeneral    Intent = "general"
)

type intentRule struct {
	intent   Intent
	keywords []string
}

// Evaluated in order; the first rule with a matching keyword wins.
var intentRules = []intentRule{
	{intent: IntentRoute, keywords: []string{"route", "go to"}},
	{intent: IntentTraffic, keywords: []string{"traffic"}},
	{intent: IntentTravelMode, keywords: []string{"mode", "how"}},
}

// Classify lower-cases text and returns the first matching intent, or IntentGeneral.
func Classify(text string) Intent {
	lower := strings.ToLower(text)
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.intent
			}
		}
	}
	return IntentGeneral
}
