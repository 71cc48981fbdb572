package parse

import "strings"

// NeutralTrackCondition is used for unknown or unrecognized going
const NeutralTrackCondition = 0.5

// 0.0 heaviest going, 1.0 lightest/fastest
var trackConditions = map[string]float64{
	"heavy track":       0.00,
	"heavy":             0.00,
	"sloppy":            0.10,
	"quite heavy track": 0.25,
	"good":              0.70,
	"winter track":      0.75,
	"fast":              0.85,
	"light track":       1.00,
}

// EncodeTrackCondition maps a track condition string onto the 0..1 scale
func EncodeTrackCondition(s string) float64 {
	if v, ok := trackConditions[strings.ToLower(strings.TrimSpace(s))]; ok {
		return v
	}
	return NeutralTrackCondition
}
