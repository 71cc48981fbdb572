// Package pipeline runs races through ranking, vector building and tensor
// assembly. Trainer and Inference share buildRace, so a race produces the same
// features in both modes given the same snapshot.
package pipeline

import (
	"time"

	"totoforecast/internal/domain/race"
	"totoforecast/internal/features/ranking"
	"totoforecast/internal/features/tensor"
	"totoforecast/internal/features/vector"
	"totoforecast/internal/metrics"
	"totoforecast/pkg/errors"
	"totoforecast/pkg/logger"
)

// Top-3 label bounds
const (
	firstPlace = 1
	thirdPlace = 3
)

func buildRace(b *vector.Builder, r *race.Race, labelled bool) (*tensor.Batch, error) {
	starters := r.Starters()
	if len(starters) == 0 {
		return nil, errors.Wrapf(errors.ErrNoData, "race %s has no starters", r.ID)
	}

	betting := make([]float64, len(starters))
	wins := make([]float64, len(starters))
	for i := range starters {
		betting[i] = starters[i].BettingFraction
		wins[i] = starters[i].WinFraction
	}
	bettingRanks := ranking.Ranks(betting)
	winRanks := ranking.Ranks(wins)

	rc := b.Context(r)
	batch := tensor.NewBatch(len(starters), b.HistoryCap())
	if labelled {
		batch.Labels = make([]float64, 0, len(starters))
	}

	for i := range starters {
		runner := &starters[i]
		batch.Append(
			b.Static(rc, runner, bettingRanks[i], winRanks[i]),
			b.History(rc, runner),
			tensor.Meta{RaceID: r.ID, Number: runner.Number, Name: runner.Name, Driver: runner.Driver},
		)
		if labelled {
			batch.Labels = append(batch.Labels, label(runner.FinishPosition))
		}
	}

	if err := batch.Validate(); err != nil {
		return nil, errors.Wrapf(err, "race %s", r.ID)
	}
	return batch, nil
}

func label(position int) float64 {
	if position >= firstPlace && position <= thirdPlace {
		return 1
	}
	return 0
}

// observe logs and records the outcome of one race build
func observe(log *logger.Logger, mode string, r *race.Race, batch *tensor.Batch, started time.Time, err error) {
	runners := 0
	if batch != nil {
		runners = batch.Len()
	}
	metrics.RecordRaceBuild(mode, runners, time.Since(started), err)

	switch {
	case err == nil:
		log.Debugw("Race features built", "race_id", r.ID, "runners", runners)
	case errors.Is(err, errors.ErrInvariantViolation):
		log.Warnw("Feature invariant violated", "race_id", r.ID, "kind", metrics.InvariantKind(err), "error", err)
	case errors.Is(err, errors.ErrNoData):
		log.Debugw("Race skipped", "race_id", r.ID, "reason", err)
	}
}
