// Package ingest decodes race records in the toto-info API layout and
// normalizes them into domain races. Training and inference both enter the
// pipeline through NormalizeRace.
package ingest

// RawRace is one race as published, with its runners attached. MeetDate comes
// from the card the race belongs to.
type RawRace struct {
	RaceID           Scalar      `json:"raceId"`
	ID               Scalar      `json:"id"`
	MeetDate         string      `json:"meetDate"`
	Distance         Scalar      `json:"distance"`
	Breed            string      `json:"breed"`
	StartType        string      `json:"startType"`
	ToteResultString string      `json:"toteResultString"`
	Runners          []RawRunner `json:"runners"`
}

// RawRunner is one runner of a race
type RawRunner struct {
	StartNumber Scalar `json:"startNumber"`
	Number      Scalar `json:"number"`
	HorseName   string `json:"horseName"`
	Name        string `json:"name"`
	CoachName   string `json:"coachName"`
	TrainerName string `json:"trainerName"`
	DriverName  string `json:"driverName"`
	HorseAge    Scalar `json:"horseAge"`
	Age         Scalar `json:"age"`
	Gender      string `json:"gender"`

	FrontShoes        Scalar `json:"frontShoes"`
	RearShoes         Scalar `json:"rearShoes"`
	FrontShoesChanged Scalar `json:"frontShoesChanged"`
	RearShoesChanged  Scalar `json:"rearShoesChanged"`
	SpecialCart       Scalar `json:"specialCart"`
	Scratched         Scalar `json:"scratched"`

	MobileStartRecord  Scalar `json:"mobileStartRecord"`
	HandicapRaceRecord Scalar `json:"handicapRaceRecord"`
	VaultStartRecord   Scalar `json:"vaultStartRecord"`

	BetPercentages map[string]RawPoolShare `json:"betPercentages"`
	Stats          *RawStats               `json:"stats"`

	PrevStarts []RawPriorStart `json:"prevStarts"`
}

// RawPoolShare is a runner's share of one betting pool, percent×100
type RawPoolShare struct {
	Percentage Scalar `json:"percentage"`
}

// RawStats holds career statistics
type RawStats struct {
	Total RawStatTotal `json:"total"`
}

// RawStatTotal is the all-time statistics block
type RawStatTotal struct {
	WinningPercent Scalar `json:"winningPercent"`
	Starts         Scalar `json:"starts"`
	Position1      Scalar `json:"position1"`
}

// RawPriorStart is one earlier start of a runner
type RawPriorStart struct {
	ShortMeetDate  string `json:"shortMeetDate"`
	MeetDate       string `json:"meetDate"`
	DriverFullName string `json:"driverFullName"`
	Driver         string `json:"driver"`
	TrackCode      string `json:"trackCode"`
	Track          string `json:"track"`
	Distance       Scalar `json:"distance"`
	StartTrack     Scalar `json:"startTrack"`
	KmTime         Scalar `json:"kmTime"`
	Result         Scalar `json:"result"`
	FrontShoes     Scalar `json:"frontShoes"`
	RearShoes      Scalar `json:"rearShoes"`
	SpecialCart    Scalar `json:"specialCart"`
	WinOdd         Scalar `json:"winOdd"`
	FirstPrize     Scalar `json:"firstPrize"`
	TrackCondition string `json:"trackCondition"`
}

// Corpus is the training file layout
type Corpus struct {
	Races []RawRace `json:"races"`
}
