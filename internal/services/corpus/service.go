// Package corpus builds a snapshot and training examples from a corpus file.
package corpus

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"totoforecast/internal/domain/race"
	"totoforecast/internal/features/ingest"
	"totoforecast/internal/features/pipeline"
	"totoforecast/internal/features/snapshot"
	"totoforecast/internal/features/tensor"
	"totoforecast/pkg/errors"
	"totoforecast/pkg/logger"
)

// Exporter receives labelled batches for offline training
type Exporter interface {
	StoreBatch(ctx context.Context, version uuid.UUID, batch *tensor.Batch) error
	Stop(ctx context.Context) error
}

// Result summarises one build
type Result struct {
	Snapshot *snapshot.Snapshot
	Corpus   *pipeline.Corpus
	Dataset  *tensor.Batch // every race merged in corpus order
	Profile  []tensor.ColumnProfile
	Exported int
}

// Service runs the training pipeline over a corpus
type Service struct {
	trainer  *pipeline.Trainer
	repo     snapshot.Repository
	exporter Exporter
	log      *logger.Logger
}

// NewService creates a new corpus service. exporter may be nil.
func NewService(trainer *pipeline.Trainer, repo snapshot.Repository, exporter Exporter, log *logger.Logger) *Service {
	return &Service{
		trainer:  trainer,
		repo:     repo,
		exporter: exporter,
		log:      log.Named("corpus"),
	}
}

// LoadFile reads a corpus file in the published API layout
func LoadFile(path string) ([]race.Race, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "failed to open corpus %s", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, 0, errors.Wrapf(err, "failed to stat corpus %s", path)
	}

	races, err := Read(f)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "corpus %s", path)
	}
	return races, info.Size(), nil
}

// Read decodes {"races": [...]} and normalizes every race
func Read(r io.Reader) ([]race.Race, error) {
	var raw ingest.Corpus
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "decode corpus: %v", err)
	}

	races := make([]race.Race, 0, len(raw.Races))
	for i := range raw.Races {
		races = append(races, ingest.NormalizeRace(raw.Races[i]))
	}
	return races, nil
}

// BuildFile loads path and runs Build
func (s *Service) BuildFile(ctx context.Context, path string) (*Result, error) {
	races, err := s.load(path)
	if err != nil {
		return nil, err
	}
	return s.Build(ctx, races)
}

// ExtendFile loads path and runs Extend
func (s *Service) ExtendFile(ctx context.Context, path string) (*Result, error) {
	races, err := s.load(path)
	if err != nil {
		return nil, err
	}
	return s.Extend(ctx, races)
}

func (s *Service) load(path string) ([]race.Race, error) {
	started := time.Now()

	races, size, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	s.log.Infow("Corpus loaded",
		"path", path,
		"size", humanize.Bytes(uint64(size)),
		"races", humanize.Comma(int64(len(races))),
		"duration", time.Since(started),
	)
	return races, nil
}

// Build trains over races, saves the snapshot and exports the examples.
// The snapshot is stored before any example is exported.
func (s *Service) Build(ctx context.Context, races []race.Race) (*Result, error) {
	return s.run(ctx, races, nil)
}

// Extend is Build on top of the current snapshot: its identity IDs are kept
// and new names are appended.
func (s *Service) Extend(ctx context.Context, races []race.Race) (*Result, error) {
	base, err := s.repo.Current(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load base snapshot")
	}
	return s.run(ctx, races, base)
}

func (s *Service) run(ctx context.Context, races []race.Race, base *snapshot.Snapshot) (*Result, error) {
	if len(races) == 0 {
		return nil, errors.Wrap(errors.ErrNoData, "corpus has no races")
	}

	started := time.Now()
	var (
		c    *pipeline.Corpus
		snap *snapshot.Snapshot
		err  error
	)
	if base != nil {
		c, snap, err = s.trainer.Extend(ctx, races, base)
	} else {
		c, snap, err = s.trainer.Build(ctx, races)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to build training corpus")
	}
	if c.Meta.TotalRaces == 0 {
		return nil, errors.Wrap(errors.ErrNoData, "corpus has no race with starters")
	}

	dataset, err := c.Merged(snap.HistoryCap)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge training corpus")
	}
	result := &Result{Snapshot: snap, Corpus: c, Dataset: dataset, Profile: dataset.Profile()}
	s.logProfile(result.Profile)

	if err := s.repo.Save(ctx, snap); err != nil {
		return nil, errors.Wrap(err, "failed to save snapshot")
	}

	if s.exporter != nil {
		exported, err := s.export(ctx, snap.Version, c.Batches)
		result.Exported = exported
		if err != nil {
			return result, errors.Wrap(err, "failed to export training examples")
		}
	}

	s.log.Infow("Snapshot built",
		"version", snap.Version,
		"races", humanize.Comma(int64(c.Meta.TotalRaces)),
		"runners", humanize.Comma(int64(c.Meta.TotalRunners)),
		"skipped", c.Skipped,
		"exported", humanize.Comma(int64(result.Exported)),
		"period", c.Meta.DataStartDate+".."+c.Meta.DataEndDate,
		"duration", time.Since(started),
	)

	return result, nil
}

func (s *Service) logProfile(profile []tensor.ColumnProfile) {
	constant := make([]int, 0)
	for _, p := range profile {
		if p.Constant() {
			constant = append(constant, p.Column)
		}
	}
	if len(constant) > 0 {
		s.log.Warnw("Static columns without variance", "columns", constant)
	}
}

func (s *Service) export(ctx context.Context, version uuid.UUID, batches []*tensor.Batch) (int, error) {
	exported := 0
	for _, b := range batches {
		if err := s.exporter.StoreBatch(ctx, version, b); err != nil {
			_ = s.exporter.Stop(ctx)
			return exported, err
		}
		exported += b.Len()
	}
	if err := s.exporter.Stop(ctx); err != nil {
		return exported, err
	}
	return exported, nil
}

type raceGrouped struct {
	MaxRunners int                  `json:"max_runners"`
	HistoryCap int                  `json:"history_cap"`
	Races      []*tensor.PaddedRace `json:"races"`
}

// WriteTensors writes the training tensors of result as JSON. With maxRunners
// zero the corpus is one flat dataset; otherwise every race is padded to
// maxRunners for race-level models.
func WriteTensors(w io.Writer, result *Result, maxRunners int) error {
	if maxRunners < 0 {
		return errors.Wrapf(errors.ErrInvalidInput, "max runners must not be negative, got %d", maxRunners)
	}

	enc := json.NewEncoder(w)
	if maxRunners == 0 {
		flat, err := result.Dataset.Flat()
		if err != nil {
			return err
		}
		return enc.Encode(flat)
	}

	out := raceGrouped{
		MaxRunners: maxRunners,
		HistoryCap: result.Snapshot.HistoryCap,
		Races:      make([]*tensor.PaddedRace, 0, len(result.Corpus.Batches)),
	}
	for _, b := range result.Corpus.Batches {
		padded, err := b.PadRunners(maxRunners)
		if err != nil {
			return errors.Wrapf(err, "race %s", b.Meta[0].RaceID)
		}
		out.Races = append(out.Races, padded)
	}
	return enc.Encode(out)
}
