// Package vector builds the fixed-shape static vector and history matrix of a
// runner. The same Builder serves training and inference; only the identity
// source differs.
package vector

import (
	"math"
	"time"

	"totoforecast/internal/domain/race"
	"totoforecast/internal/features/identity"
	"totoforecast/internal/features/imputation"
	"totoforecast/internal/features/parse"
	"totoforecast/internal/features/ranking"
	"totoforecast/pkg/errors"
)

// Builder produces feature vectors. It holds no per-race state; it is as safe for
// concurrent use as its identity source.
type Builder struct {
	ids        identity.IDSource
	stats      imputation.Stats
	historyCap int
}

// NewBuilder creates a builder
func NewBuilder(ids identity.IDSource, stats imputation.Stats, historyCap int) (*Builder, error) {
	if ids == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "identity source is required")
	}
	if historyCap < 1 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "history cap must be positive, got %d", historyCap)
	}
	return &Builder{ids: ids, stats: stats, historyCap: historyCap}, nil
}

// HistoryCap returns the number of history rows per runner
func (b *Builder) HistoryCap() int {
	return b.historyCap
}

// RaceContext carries the race-level values every runner vector needs
type RaceContext struct {
	Distance  int
	ColdBlood bool
	CarStart  bool
	Date      time.Time
	DateKnown bool
	Means     imputation.Means
}

// Context derives the race context for r
func (b *Builder) Context(r *race.Race) RaceContext {
	date, ok := parse.ParseDate(r.Date)
	return RaceContext{
		Distance:  r.Distance,
		ColdBlood: r.ColdBlood,
		CarStart:  r.CarStart,
		Date:      date,
		DateKnown: ok,
		Means:     b.stats.For(imputation.BreedOf(r.ColdBlood)),
	}
}

// Static builds the static vector of one runner. bet and win are the runner's
// ranks among the race's starters.
func (b *Builder) Static(rc RaceContext, runner *race.Runner, bet, win ranking.Rank) []float64 {
	v := make([]float64, StaticFeatureCount)

	v[ColStartNumber] = float64(orDefault(runner.Number, defaultStartNumber)) / startNumberScale
	v[ColCoachID] = float64(b.ids.ID(identity.Coach, runner.Coach)) / coachIDScale

	record := runner.Record
	if record <= 0 {
		record = rc.Means.Record
	}
	v[ColRecord] = record / recordScale

	v[ColDriverID] = float64(b.ids.ID(identity.Driver, runner.Driver)) / driverIDScale
	v[ColAge] = float64(orDefault(runner.Age, defaultAge)) / ageScale
	v[ColGender] = float64(orDefault(runner.Gender, defaultGender)) / genderScale
	v[ColColdBlood] = flag(rc.ColdBlood)

	v[ColFrontShoes] = flag(runner.FrontShoes.Active())
	v[ColFrontShoesKnown] = flag(runner.FrontShoes.Known())
	v[ColRearShoes] = flag(runner.RearShoes.Active())
	v[ColRearShoesKnown] = flag(runner.RearShoes.Known())
	v[ColFrontShoesChanged] = flag(runner.FrontShoesChanged)
	v[ColRearShoesChanged] = flag(runner.RearShoesChanged)

	v[ColDistance] = float64(orDefault(rc.Distance, defaultDistance)) / distanceScale
	v[ColCarStart] = flag(rc.CarStart)

	v[ColBettingFraction] = positive(runner.BettingFraction)
	v[ColWinFraction] = positive(runner.WinFraction)
	v[ColWinKnown] = flag(runner.WinFraction > 0)
	v[ColRecordFromCarStart] = flag(runner.RecordFromCarStart)

	v[ColCart] = flag(runner.SpecialCart.Active())
	v[ColCartKnown] = flag(runner.SpecialCart.Known())

	v[ColBettingRank] = bet.Value / rankScale
	v[ColBettingRankKnown] = flag(bet.Known)
	v[ColWinRank] = win.Value / rankScale
	v[ColWinRankKnown] = flag(win.Known)

	index, known := PodiumIndex(runner.PriorStarts)
	v[ColPodiumIndex] = index
	v[ColPodiumKnown] = flag(known)

	return v
}

// History builds the history matrix of one runner: HistoryCap rows, newest
// valid prior start first, sentinel rows after the last one.
func (b *Builder) History(rc RaceContext, runner *race.Runner) [][]float64 {
	valid := ValidStarts(runner.PriorStarts)
	rows := make([][]float64, b.historyCap)

	for i := range rows {
		if i >= len(valid) {
			rows[i] = sentinelRow()
			continue
		}
		rows[i] = b.historyRow(rc, &valid[i])
	}
	return rows
}

func (b *Builder) historyRow(rc RaceContext, ps *race.PriorStart) []float64 {
	row := make([]float64, HistoryFeatureCount)

	km := parse.ParseKmTime(ps.KmTime)
	kmNorm := parse.NormalizeKmTime(km.Value, ps.Distance)
	if kmNorm > 0 {
		row[HistKmTime] = kmNorm / kmTimeScale
		row[HistKmTimeKnown] = 1
	} else {
		row[HistKmTime] = rc.Means.KmTime / kmTimeScale
	}

	if ps.Distance > 0 {
		row[HistDistance] = float64(ps.Distance) / distanceScale
		row[HistDistanceKnown] = 1
	} else {
		row[HistDistance] = distanceFallback
	}

	row[HistDaysSince] = daysSince(rc, ps.Date) / daysScale

	finish := parse.ParseFinish(ps.Result)
	if finish.Known {
		row[HistPosition] = float64(finish.Position) / positionScale
		row[HistPositionKnown] = 1
	} else {
		row[HistPosition] = positionFallback
	}

	if ps.FirstPrize > 0 {
		row[HistPrize] = math.Log1p(ps.FirstPrize) / prizeLogScale
		row[HistPrizeKnown] = 1
	} else {
		row[HistPrize] = prizeFallback
	}

	if ps.WinOdds > 0 {
		row[HistOdds] = math.Log1p(ps.WinOdds) / oddsLogScale
		row[HistOddsKnown] = 1
	} else {
		row[HistOdds] = oddsFallback
	}

	row[HistCarStart] = flag(km.CarStart)
	row[HistGaitFault] = flag(km.GaitFault)
	row[HistStartPost] = float64(orDefault(ps.StartPost, defaultStartPost)) / startPostScale
	row[HistDriverID] = float64(b.ids.ID(identity.Driver, ps.Driver)) / driverIDScale
	row[HistTrackID] = float64(b.ids.ID(identity.Track, ps.Track)) / trackIDScale
	row[HistDisqualified] = flag(finish.Disqualified)
	row[HistDNF] = flag(finish.DNF)

	row[HistFrontShoes] = flag(ps.FrontShoes.Active())
	row[HistFrontShoesKnown] = flag(ps.FrontShoes.Known())
	row[HistRearShoes] = flag(ps.RearShoes.Active())
	row[HistRearShoesKnown] = flag(ps.RearShoes.Known())
	row[HistCart] = flag(ps.SpecialCart.Active())
	row[HistCartKnown] = flag(ps.SpecialCart.Known())

	row[HistTrackCondition] = parse.EncodeTrackCondition(ps.TrackCondition)

	return row
}

// daysSince clamps to [0, 365] so a start dated after the race never produces a
// negative value that could be mistaken for padding.
func daysSince(rc RaceContext, date string) float64 {
	if !rc.DateKnown {
		return defaultDaysSince
	}
	start, ok := parse.ParseDate(date)
	if !ok {
		return defaultDaysSince
	}

	days := rc.Date.Sub(start).Hours() / 24
	return math.Max(0, math.Min(maxDaysSince, days))
}

// PodiumIndex scores 1.00/0.50/0.33 for 1st/2nd/3rd over every valid prior
// start. Disqualifications and non-finishes count in the denominator with zero
// points. known reports at least one valid start.
func PodiumIndex(starts []race.PriorStart) (index float64, known bool) {
	var score float64
	valid := ValidStarts(starts)

	for i := range valid {
		switch parse.ParseFinish(valid[i].Result).Position {
		case 1:
			score += 1.00
		case 2:
			score += 0.50
		case 3:
			score += 0.33
		}
	}

	if len(valid) == 0 {
		return 0, false
	}
	return score / float64(len(valid)), true
}

// ValidStarts keeps the prior starts that carry a driver and a parseable date,
// in their original newest-first order.
func ValidStarts(starts []race.PriorStart) []race.PriorStart {
	valid := make([]race.PriorStart, 0, len(starts))
	for _, ps := range starts {
		if ps.IsPlaceholder() {
			continue
		}
		if _, ok := parse.ParseDate(ps.Date); !ok {
			continue
		}
		valid = append(valid, ps)
	}
	return valid
}

func sentinelRow() []float64 {
	row := make([]float64, HistoryFeatureCount)
	for i := range row {
		row[i] = Sentinel
	}
	return row
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func positive(v float64) float64 {
	if v > 0 {
		return v
	}
	return 0
}
