package vector

// Vector widths. Column order is part of the model contract.
const (
	StaticFeatureCount  = 27
	HistoryFeatureCount = 25

	// DefaultHistoryCap is the number of prior starts kept per runner
	DefaultHistoryCap = 8

	// Sentinel fills history rows past the runner's last valid prior start.
	// Every real column is >= 0.
	Sentinel = -1.0
)

// Scale constants shared by training and inference
const (
	startNumberScale = 20.0
	coachIDScale     = 2000.0
	recordScale      = 50.0
	driverIDScale    = 3000.0
	ageScale         = 15.0
	genderScale      = 3.0
	distanceScale    = 3100.0
	rankScale        = 20.0

	kmTimeScale    = 100.0
	daysScale      = 365.0
	positionScale  = 20.0
	prizeLogScale  = 10.0
	oddsLogScale   = 5.0
	startPostScale = 30.0
	trackIDScale   = 500.0
)

// Fallbacks for missing values
const (
	defaultStartNumber = 1
	defaultAge         = 5
	defaultGender      = 2
	defaultDistance    = 2100
	defaultStartPost   = 1
	defaultDaysSince   = 30.0
	maxDaysSince       = 365.0

	distanceFallback = 0.67
	positionFallback = 0.5
	prizeFallback    = 0.55
	oddsFallback     = 0.5
)

// Static column indexes
const (
	ColStartNumber = iota
	ColCoachID
	ColRecord
	ColDriverID
	ColAge
	ColGender
	ColColdBlood
	ColFrontShoes
	ColFrontShoesKnown
	ColRearShoes
	ColRearShoesKnown
	ColFrontShoesChanged
	ColRearShoesChanged
	ColDistance
	ColCarStart
	ColBettingFraction
	ColWinFraction
	ColWinKnown
	ColRecordFromCarStart
	ColCart
	ColCartKnown
	ColBettingRank
	ColBettingRankKnown
	ColWinRank
	ColWinRankKnown
	ColPodiumIndex
	ColPodiumKnown
)

// History column indexes
const (
	HistKmTime = iota
	HistKmTimeKnown
	HistDistance
	HistDistanceKnown
	HistDaysSince
	HistPosition
	HistPositionKnown
	HistPrize
	HistPrizeKnown
	HistOdds
	HistOddsKnown
	HistCarStart
	HistGaitFault
	HistStartPost
	HistDriverID
	HistTrackID
	HistDisqualified
	HistDNF
	HistFrontShoes
	HistFrontShoesKnown
	HistRearShoes
	HistRearShoesKnown
	HistCart
	HistCartKnown
	HistTrackCondition
)
