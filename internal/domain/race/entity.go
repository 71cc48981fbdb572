package race

import "strings"

// Race is one harness race with its starters, already decoded from the wire format
type Race struct {
	ID        string
	Date      string // meet date as published, parsed lazily by the feature builder
	Distance  int    // metres, 0 when unknown
	ColdBlood bool   // cold-blood (native) breed class vs. warm-blood/standardbred
	CarStart  bool   // car (mobile) start vs. line/volt start
	Runners   []Runner
}

// Starters returns the non-scratched runners in their original order
func (r *Race) Starters() []Runner {
	starters := make([]Runner, 0, len(r.Runners))
	for _, runner := range r.Runners {
		if !runner.Scratched {
			starters = append(starters, runner)
		}
	}
	return starters
}

// Runner is one horse in one race
type Runner struct {
	Number int
	Name   string
	Coach  string
	Driver string
	Age    int
	Gender int // 1 mare, 2 gelding/unknown, 3 stallion

	FrontShoes        ShoeStatus
	RearShoes         ShoeStatus
	FrontShoesChanged bool
	RearShoesChanged  bool
	SpecialCart       CartStatus

	BettingFraction float64 // share of the win pool, 0..1, 0 when unknown
	WinFraction     float64 // career win share, 0..1, 0 when unknown

	Record             float64 // best km-time record, 0 when none
	RecordFromCarStart bool

	Scratched      bool
	FinishPosition int // actual finish in this race, 0 when unknown (training label source)

	PriorStarts []PriorStart // newest first
}

// PriorStart is one earlier start of a runner. Outcome fields keep the raw
// published codes; they are decoded by the shared parsers.
type PriorStart struct {
	Date      string
	Driver    string
	Track     string
	Distance  int
	StartPost int

	KmTime string // e.g. "15,5a"
	Result string // e.g. "2", "hyl", "k"

	FrontShoes  ShoeStatus
	RearShoes   ShoeStatus
	SpecialCart CartStatus

	WinOdds        float64
	FirstPrize     float64
	TrackCondition string
}

// IsPlaceholder reports rows the source emits for missing history: a start
// without both a date and a driver carries no usable information.
func (p *PriorStart) IsPlaceholder() bool {
	return strings.TrimSpace(p.Date) == "" || strings.TrimSpace(p.Driver) == ""
}

// ShoeStatus is the shoeing state of one pair of hooves
type ShoeStatus string

const (
	HasShoes     ShoeStatus = "HAS_SHOES"
	NoShoes      ShoeStatus = "NO_SHOES"
	ShoesUnknown ShoeStatus = "UNKNOWN"
)

// Active reports shoes on
func (s ShoeStatus) Active() bool { return s == HasShoes }

// Known reports whether the state was published
func (s ShoeStatus) Known() bool { return s == HasShoes || s == NoShoes }

// CartStatus is the special-cart state
type CartStatus string

const (
	CartYes     CartStatus = "YES"
	CartNo      CartStatus = "NO"
	CartUnknown CartStatus = "UNKNOWN"
)

// Active reports a special cart in use
func (c CartStatus) Active() bool { return c == CartYes }

// Known reports whether the state was published
func (c CartStatus) Known() bool { return c == CartYes || c == CartNo }
