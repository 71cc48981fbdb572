package testsupport

import (
	"fmt"

	"totoforecast/internal/domain/race"
)

// RaceFixture provides builder pattern for creating test races
type RaceFixture struct {
	race race.Race
}

// NewRaceFixture creates a default race: warm-blood car start over 2100 m
// with no runners
func NewRaceFixture() *RaceFixture {
	return &RaceFixture{
		race: race.Race{
			ID:       UniqueName("race"),
			Date:     "2026-03-01",
			Distance: 2100,
			CarStart: true,
		},
	}
}

// WithID sets the race id
func (f *RaceFixture) WithID(id string) *RaceFixture {
	f.race.ID = id
	return f
}

// WithDate sets the meet date
func (f *RaceFixture) WithDate(date string) *RaceFixture {
	f.race.Date = date
	return f
}

// WithDistance sets the race distance
func (f *RaceFixture) WithDistance(distance int) *RaceFixture {
	f.race.Distance = distance
	return f
}

// ColdBlood switches the breed class
func (f *RaceFixture) ColdBlood() *RaceFixture {
	f.race.ColdBlood = true
	return f
}

// WithRunner appends a runner
func (f *RaceFixture) WithRunner(runner race.Runner) *RaceFixture {
	f.race.Runners = append(f.race.Runners, runner)
	return f
}

// WithRunners appends n default runners numbered from 1 and finishing in
// start-number order, each with `history` prior starts
func (f *RaceFixture) WithRunners(n, history int) *RaceFixture {
	for i := 1; i <= n; i++ {
		f.race.Runners = append(f.race.Runners, NewRunnerFixture(i).WithPriorStarts(history).Build())
	}
	return f
}

// Build returns the race
func (f *RaceFixture) Build() race.Race {
	return f.race
}

// RunnerFixture provides builder pattern for creating test runners
type RunnerFixture struct {
	runner race.Runner
}

// NewRunnerFixture creates a runner with realistic defaults
func NewRunnerFixture(number int) *RunnerFixture {
	return &RunnerFixture{
		runner: race.Runner{
			Number:          number,
			Name:            fmt.Sprintf("Horse %d", number),
			Coach:           fmt.Sprintf("Coach %d", number%3),
			Driver:          fmt.Sprintf("Driver Surname%d", number),
			Age:             5,
			Gender:          2,
			FrontShoes:      race.HasShoes,
			RearShoes:       race.HasShoes,
			SpecialCart:     race.CartNo,
			BettingFraction: float64(number) / 100,
			WinFraction:     0.1,
			Record:          14 + float64(number)/10,
			FinishPosition:  number,
		},
	}
}

// WithMarket sets the betting and career win fractions
func (f *RunnerFixture) WithMarket(betting, win float64) *RunnerFixture {
	f.runner.BettingFraction = betting
	f.runner.WinFraction = win
	return f
}

// WithFinish sets the finishing position
func (f *RunnerFixture) WithFinish(position int) *RunnerFixture {
	f.runner.FinishPosition = position
	return f
}

// Scratched marks the runner as withdrawn
func (f *RunnerFixture) Scratched() *RunnerFixture {
	f.runner.Scratched = true
	return f
}

// WithPriorStarts adds n valid prior starts, newest first
func (f *RunnerFixture) WithPriorStarts(n int) *RunnerFixture {
	for i := 0; i < n; i++ {
		f.runner.PriorStarts = append(f.runner.PriorStarts, race.PriorStart{
			Date:        fmt.Sprintf("2026-02-%02d", 20-i),
			Driver:      f.runner.Driver,
			Track:       "Vermo",
			Distance:    2100,
			StartPost:   (i % 8) + 1,
			KmTime:      "15,5a",
			Result:      fmt.Sprintf("%d", i+1),
			FrontShoes:  race.HasShoes,
			RearShoes:   race.NoShoes,
			SpecialCart: race.CartNo,
			WinOdds:     5.2,
			FirstPrize:  1000,
		})
	}
	return f
}

// Build returns the runner
func (f *RunnerFixture) Build() race.Runner {
	return f.runner
}
