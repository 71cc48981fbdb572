package parse

import "strings"

const (
	// KmTimeAnchorDistance is the distance every km-time is normalized to, in metres
	KmTimeAnchorDistance = 2100

	// KmTimeDistanceDivisor converts a distance gap in metres into seconds per km.
	// Training and inference share this single value.
	KmTimeDistanceDivisor = 2000.0

	carStartMarker  = "a"
	gaitFaultMarker = "x"
)

// KmTime is a decoded km-time code such as "15,5a"
type KmTime struct {
	Value     float64 // seconds past the minute per km; 0 means unknown
	CarStart  bool
	GaitFault bool
}

// ParseKmTime decodes the first digit/comma run plus the car-start and
// gait-fault markers, which may appear anywhere in the code.
func ParseKmTime(code string) KmTime {
	s := strings.ToLower(strings.TrimSpace(code))
	if s == "" {
		return KmTime{}
	}

	return KmTime{
		Value:     commaFloat(digitCommaRun.FindString(s)),
		CarStart:  strings.Contains(s, carStartMarker),
		GaitFault: strings.Contains(s, gaitFaultMarker),
	}
}

// NormalizeKmTime shifts a km-time to its 2100 m equivalent. Unknown times
// (≤ 0) pass through unchanged; an unknown distance counts as 2100 m.
func NormalizeKmTime(km float64, distance int) float64 {
	if km <= 0 {
		return km
	}
	if distance <= 0 {
		distance = KmTimeAnchorDistance
	}
	return km + float64(KmTimeAnchorDistance-distance)/KmTimeDistanceDivisor
}
