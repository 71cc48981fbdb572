package pipeline

import (
	"context"
	"time"

	"totoforecast/internal/domain/race"
	"totoforecast/internal/features/identity"
	"totoforecast/internal/features/imputation"
	"totoforecast/internal/features/parse"
	"totoforecast/internal/features/snapshot"
	"totoforecast/internal/features/tensor"
	"totoforecast/internal/features/vector"
	"totoforecast/internal/metrics"
	"totoforecast/pkg/errors"
	"totoforecast/pkg/logger"
)

const dateLayout = "2006-01-02"

// Corpus is the labelled training output, one batch per race
type Corpus struct {
	Batches []*tensor.Batch
	Meta    snapshot.CorpusMeta
	Skipped int
}

// Merged concatenates all races into a single batch
func (c *Corpus) Merged(historyCap int) (*tensor.Batch, error) {
	out := tensor.NewBatch(c.Meta.TotalRunners, historyCap)
	out.Labels = make([]float64, 0, c.Meta.TotalRunners)

	for _, b := range c.Batches {
		if err := out.Merge(b); err != nil {
			return nil, err
		}
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// Trainer builds the training corpus and the snapshot inference will reuse.
// Identity assignment depends on race order, so a Trainer runs sequentially.
type Trainer struct {
	historyCap int
	log        *logger.Logger
}

// NewTrainer creates a trainer
func NewTrainer(historyCap int, log *logger.Logger) (*Trainer, error) {
	if historyCap < 1 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "history cap must be positive, got %d", historyCap)
	}
	return &Trainer{historyCap: historyCap, log: log.Named("trainer")}, nil
}

// Build makes two passes over races: the first gathers imputation means, the
// second assigns identities and builds labelled tensors. Races without starters
// are skipped; an invariant violation aborts the whole build.
func (t *Trainer) Build(ctx context.Context, races []race.Race) (*Corpus, *snapshot.Snapshot, error) {
	return t.build(ctx, races, identity.NewBuilder())
}

// Extend builds like Build but keeps every ID of base. Names first seen in
// races get the next free ID of their namespace. Imputation means come from
// races alone.
func (t *Trainer) Extend(ctx context.Context, races []race.Race, base *snapshot.Snapshot) (*Corpus, *snapshot.Snapshot, error) {
	if err := base.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, "invalid base snapshot")
	}
	if err := base.RequireHistoryCap(t.historyCap); err != nil {
		return nil, nil, err
	}

	ids, err := identity.NewBuilderFrom(base.Identity)
	if err != nil {
		return nil, nil, err
	}

	t.log.Infow("Extending snapshot",
		"base", base.Version,
		"coaches", base.Identity.Len(identity.Coach),
		"drivers", base.Identity.Len(identity.Driver),
		"tracks", base.Identity.Len(identity.Track),
	)
	return t.build(ctx, races, ids)
}

func (t *Trainer) build(ctx context.Context, races []race.Race, ids *identity.Builder) (*Corpus, *snapshot.Snapshot, error) {
	acc := imputation.NewAccumulator()
	for i := range races {
		acc.AddRace(&races[i])
	}
	stats := acc.Stats()
	t.logSamples(acc)

	builder, err := vector.NewBuilder(ids, stats, t.historyCap)
	if err != nil {
		return nil, nil, err
	}

	corpus := &Corpus{Batches: make([]*tensor.Batch, 0, len(races))}
	var first, last time.Time

	for i := range races {
		if err := ctx.Err(); err != nil {
			return nil, nil, errors.Wrap(err, "corpus build cancelled")
		}

		r := &races[i]
		started := time.Now()
		batch, err := buildRace(builder, r, true)
		observe(t.log, metrics.ModeTraining, r, batch, started, err)

		if errors.Is(err, errors.ErrNoData) {
			corpus.Skipped++
			continue
		}
		if err != nil {
			return nil, nil, err
		}

		corpus.Batches = append(corpus.Batches, batch)
		corpus.Meta.TotalRaces++
		corpus.Meta.TotalRunners += batch.Len()

		if date, ok := parse.ParseDate(r.Date); ok {
			if first.IsZero() || date.Before(first) {
				first = date
			}
			if last.IsZero() || date.After(last) {
				last = date
			}
		}
	}

	if !first.IsZero() {
		corpus.Meta.DataStartDate = first.Format(dateLayout)
		corpus.Meta.DataEndDate = last.Format(dateLayout)
	}

	snap := snapshot.New(ids.Maps(), stats, t.historyCap, corpus.Meta)
	if err := snap.Validate(); err != nil {
		return nil, nil, err
	}

	t.log.Infow("Training corpus built",
		"races", corpus.Meta.TotalRaces,
		"runners", corpus.Meta.TotalRunners,
		"skipped", corpus.Skipped,
		"coaches", snap.Identity.Len(identity.Coach),
		"drivers", snap.Identity.Len(identity.Driver),
		"tracks", snap.Identity.Len(identity.Track),
		"snapshot", snap.Version,
	)

	return corpus, snap, nil
}

func (t *Trainer) logSamples(acc *imputation.Accumulator) {
	for _, breed := range []imputation.Breed{imputation.ColdBlood, imputation.WarmBlood} {
		records, kmTimes := acc.Samples(breed)
		t.log.Debugw("Imputation samples", "breed", breed, "records", records, "km_times", kmTimes)
		if records == 0 || kmTimes == 0 {
			t.log.Warnw("Breed uses default means", "breed", breed, "records", records, "km_times", kmTimes)
		}
	}
}
