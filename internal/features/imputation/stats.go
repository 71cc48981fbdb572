// Package imputation computes the per-breed mean values used to fill a missing
// race record or prior-start km-time.
package imputation

import (
	"gonum.org/v1/gonum/stat"

	"totoforecast/internal/domain/race"
	"totoforecast/internal/features/parse"
	"totoforecast/pkg/errors"
)

// Breed selects the imputation population
type Breed string

const (
	ColdBlood Breed = "cold_blood"
	WarmBlood Breed = "warm_blood"
)

// BreedOf returns the population a race belongs to
func BreedOf(coldBlood bool) Breed {
	if coldBlood {
		return ColdBlood
	}
	return WarmBlood
}

// Defaults used when the training corpus has no sample for a breed
var (
	DefaultColdBlood = Means{Record: 28.0, KmTime: 29.0}
	DefaultWarmBlood = Means{Record: 15.0, KmTime: 16.0}
)

// Means are the fill values for one breed
type Means struct {
	Record float64 `json:"record"`
	KmTime float64 `json:"km_time"`
}

// Stats is the immutable, persisted result of a corpus pass
type Stats struct {
	ColdBlood Means `json:"cold_blood"`
	WarmBlood Means `json:"warm_blood"`
}

// DefaultStats returns the documented fallback means
func DefaultStats() Stats {
	return Stats{ColdBlood: DefaultColdBlood, WarmBlood: DefaultWarmBlood}
}

// For returns the means of a breed
func (s Stats) For(b Breed) Means {
	if b == ColdBlood {
		return s.ColdBlood
	}
	return s.WarmBlood
}

// Validate rejects non-positive means, which would defeat imputation
func (s Stats) Validate() error {
	for _, m := range []Means{s.ColdBlood, s.WarmBlood} {
		if m.Record <= 0 || m.KmTime <= 0 {
			return errors.Wrapf(errors.ErrInvariantViolation, "imputation means must be positive, got %+v", m)
		}
	}
	return nil
}

type samples struct {
	records []float64
	kmTimes []float64
}

// Accumulator gathers record and km-time samples over a training corpus.
// Not safe for concurrent use.
type Accumulator struct {
	cold samples
	warm samples
}

// NewAccumulator creates an empty accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// AddRace records every positive record and every positive normalized prior
// km-time of the race, scratched runners included.
func (a *Accumulator) AddRace(r *race.Race) {
	bucket := &a.warm
	if r.ColdBlood {
		bucket = &a.cold
	}

	for i := range r.Runners {
		runner := &r.Runners[i]
		if runner.Record > 0 {
			bucket.records = append(bucket.records, runner.Record)
		}
		for _, ps := range runner.PriorStarts {
			km := parse.NormalizeKmTime(parse.ParseKmTime(ps.KmTime).Value, ps.Distance)
			if km > 0 {
				bucket.kmTimes = append(bucket.kmTimes, km)
			}
		}
	}
}

// Samples returns the number of record and km-time samples for a breed
func (a *Accumulator) Samples(b Breed) (records, kmTimes int) {
	s := a.bucket(b)
	return len(s.records), len(s.kmTimes)
}

func (a *Accumulator) bucket(b Breed) *samples {
	if b == ColdBlood {
		return &a.cold
	}
	return &a.warm
}

// Stats computes the means, falling back to the defaults per empty sample set
func (a *Accumulator) Stats() Stats {
	return Stats{
		ColdBlood: means(&a.cold, DefaultColdBlood),
		WarmBlood: means(&a.warm, DefaultWarmBlood),
	}
}

func means(s *samples, fallback Means) Means {
	m := fallback
	if len(s.records) > 0 {
		m.Record = stat.Mean(s.records, nil)
	}
	if len(s.kmTimes) > 0 {
		m.KmTime = stat.Mean(s.kmTimes, nil)
	}
	return m
}
