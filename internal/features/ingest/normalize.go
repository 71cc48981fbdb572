package ingest

import (
	"strconv"
	"strings"

	"totoforecast/internal/domain/race"
	"totoforecast/internal/features/parse"
)

const (
	defaultRaceDistance = 2100

	// winPool is the betting pool whose shares feed the betting fraction
	winPool = "KAK"
)

// NormalizeRace converts a published race into a domain race. It never fails:
// missing or malformed fields become zero values and unknown states.
func NormalizeRace(raw RawRace) race.Race {
	carStart := isCarStart(raw.StartType)

	distance := raw.Distance.Int()
	if distance <= 0 {
		distance = defaultRaceDistance
	}

	r := race.Race{
		ID:        first(raw.RaceID, raw.ID).String(),
		Date:      shortDate(raw.MeetDate),
		Distance:  distance,
		ColdBlood: isColdBlood(raw.Breed),
		CarStart:  carStart,
		Runners:   make([]race.Runner, 0, len(raw.Runners)),
	}

	podium := podiumNumbers(raw.ToteResultString)
	for i := range raw.Runners {
		r.Runners = append(r.Runners, normalizeRunner(&raw.Runners[i], carStart, podium))
	}
	return r
}

func normalizeRunner(raw *RawRunner, carStart bool, podium []string) race.Runner {
	number := first(raw.StartNumber, raw.Number).Int()

	record := parse.SelectRecord(parse.RecordFields{
		Mobile:   raw.MobileStartRecord.String(),
		Handicap: raw.HandicapRaceRecord.String(),
		Vault:    raw.VaultStartRecord.String(),
	}, carStart)

	runner := race.Runner{
		Number: number,
		Name:   parse.Sanitize(firstString(raw.HorseName, raw.Name)),
		Coach:  parse.Sanitize(firstString(raw.CoachName, raw.TrainerName)),
		Driver: parse.Sanitize(raw.DriverName),
		Age:    first(raw.HorseAge, raw.Age).Int(),
		Gender: parse.ParseGender(raw.Gender),

		FrontShoes:        parse.ParseShoes(raw.FrontShoes.String()),
		RearShoes:         parse.ParseShoes(raw.RearShoes.String()),
		FrontShoesChanged: raw.FrontShoesChanged.Bool(),
		RearShoesChanged:  raw.RearShoesChanged.Bool(),
		SpecialCart:       parse.ParseCart(raw.SpecialCart.String()),

		BettingFraction: parse.BettingFraction(raw.BetPercentages[winPool].Percentage.String()),
		WinFraction:     winFraction(raw.Stats),

		Record:             record.Value,
		RecordFromCarStart: record.FromCarStart,

		Scratched:      raw.Scratched.Bool(),
		FinishPosition: finishPosition(number, podium),
	}

	runner.PriorStarts = make([]race.PriorStart, 0, len(raw.PrevStarts))
	for i := range raw.PrevStarts {
		runner.PriorStarts = append(runner.PriorStarts, normalizePriorStart(&raw.PrevStarts[i]))
	}
	return runner
}

func normalizePriorStart(raw *RawPriorStart) race.PriorStart {
	return race.PriorStart{
		Date:           shortDate(firstString(raw.ShortMeetDate, raw.MeetDate)),
		Driver:         parse.Sanitize(firstString(raw.DriverFullName, raw.Driver)),
		Track:          parse.Sanitize(firstString(raw.TrackCode, raw.Track)),
		Distance:       raw.Distance.Int(),
		StartPost:      raw.StartTrack.Int(),
		KmTime:         raw.KmTime.String(),
		Result:         raw.Result.String(),
		FrontShoes:     parse.ParseShoes(raw.FrontShoes.String()),
		RearShoes:      parse.ParseShoes(raw.RearShoes.String()),
		SpecialCart:    parse.ParseCart(raw.SpecialCart.String()),
		WinOdds:        parse.WinOdds(raw.WinOdd.String()),
		FirstPrize:     parse.FirstPrize(raw.FirstPrize.String()),
		TrackCondition: raw.TrackCondition,
	}
}

func winFraction(stats *RawStats) float64 {
	if stats == nil {
		return 0
	}
	t := stats.Total
	return parse.WinFraction(t.WinningPercent.String(), t.Position1.Int(), t.Starts.Int())
}

// podiumNumbers splits "5-3-7" into the start numbers of the first three
func podiumNumbers(result string) []string {
	if strings.TrimSpace(result) == "" {
		return nil
	}
	parts := strings.Split(result, "-")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// finishPosition returns 1..3 for a podium runner, 0 when unknown or unplaced
func finishPosition(number int, podium []string) int {
	if number <= 0 {
		return 0
	}
	key := strconv.Itoa(number)
	for i, n := range podium {
		if n == key {
			return i + 1
		}
	}
	return 0
}

// shortDate keeps the calendar part of an ISO timestamp. Other layouts pass
// through for the date parser.
func shortDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 10 && s[4] == '-' {
		return s[:10]
	}
	return s
}

func isColdBlood(breed string) bool {
	switch strings.ToUpper(strings.TrimSpace(breed)) {
	case "K", "FINNHORSE":
		return true
	}
	return false
}

func isCarStart(startType string) bool {
	switch strings.ToUpper(strings.TrimSpace(startType)) {
	case "CAR_START", "AUTO":
		return true
	}
	return false
}
