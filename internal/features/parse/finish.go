package parse

import "strings"

const (
	// DisqualifiedPosition is assigned when a result code carries a disqualification letter
	DisqualifiedPosition = 20
	// DNFPosition is assigned when a result code marks a non-finish
	DNFPosition = 21
	// NotPlacedPosition is the single sentinel for present-but-unnumbered results
	NotPlacedPosition = 10

	disqualificationLetters = "hdp"
	dnfLetter               = "k"
)

// Finish is a decoded finishing outcome
type Finish struct {
	Position     int
	Disqualified bool
	DNF          bool
	Known        bool // a result code was present and decoded to a position > 0
}

// ParseFinish decodes a result code: "2" → 2nd, "hyl"/"d" → disqualified (20),
// "k" → did not finish (21), any other present code → NotPlacedPosition.
func ParseFinish(code string) Finish {
	s := strings.ToLower(strings.TrimSpace(code))
	if s == "" {
		return Finish{Position: NotPlacedPosition}
	}

	f := Finish{
		Disqualified: strings.ContainsAny(s, disqualificationLetters),
		DNF:          strings.Contains(s, dnfLetter),
	}

	switch n, ok := leadingInt(s); {
	case ok:
		f.Position = n
	case f.Disqualified:
		f.Position = DisqualifiedPosition
	case f.DNF:
		f.Position = DNFPosition
	default:
		f.Position = NotPlacedPosition
	}

	f.Known = f.Position > 0
	return f
}

// Podium reports a 1st, 2nd or 3rd place
func (f Finish) Podium() bool {
	return f.Position >= 1 && f.Position <= 3
}
