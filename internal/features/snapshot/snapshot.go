// Package snapshot holds the versioned training artifacts that inference must
// reuse verbatim: identity maps, imputation means and the feature layout they
// were built for.
package snapshot

import (
	"context"
	"time"

	"github.com/google/uuid"

	"totoforecast/internal/features/identity"
	"totoforecast/internal/features/imputation"
	"totoforecast/internal/features/parse"
	"totoforecast/internal/features/vector"
	"totoforecast/pkg/errors"
)

// Snapshot is immutable once saved
type Snapshot struct {
	Version   uuid.UUID `json:"version"`
	CreatedAt time.Time `json:"created_at"`

	HistoryCap          int     `json:"history_cap"`
	StaticFeatureCount  int     `json:"static_feature_count"`
	HistoryFeatureCount int     `json:"history_feature_count"`
	KmTimeDivisor       float64 `json:"km_time_divisor"`

	Identity   identity.Maps    `json:"identity"`
	Imputation imputation.Stats `json:"imputation"`
	Corpus     CorpusMeta       `json:"corpus"`
}

// CorpusMeta describes the training data behind a snapshot
type CorpusMeta struct {
	TotalRaces    int    `json:"total_races"`
	TotalRunners  int    `json:"total_runners"`
	DataStartDate string `json:"data_start_date"`
	DataEndDate   string `json:"data_end_date"`
}

// New stamps a fresh version on the artifacts of a training run
func New(maps identity.Maps, stats imputation.Stats, historyCap int, corpus CorpusMeta) *Snapshot {
	return &Snapshot{
		Version:             uuid.New(),
		CreatedAt:           time.Now().UTC(),
		HistoryCap:          historyCap,
		StaticFeatureCount:  vector.StaticFeatureCount,
		HistoryFeatureCount: vector.HistoryFeatureCount,
		KmTimeDivisor:       parse.KmTimeDistanceDivisor,
		Identity:            maps,
		Imputation:          stats,
		Corpus:              corpus,
	}
}

// Validate checks the snapshot is complete and matches the compiled feature
// layout. Any failure is an invariant violation.
func (s *Snapshot) Validate() error {
	if s.Version == uuid.Nil {
		return errors.Wrap(errors.ErrInvariantViolation, "snapshot has no version")
	}
	if s.HistoryCap < 1 {
		return errors.Wrapf(errors.ErrSnapshotMismatch, "history cap %d", s.HistoryCap)
	}
	if s.StaticFeatureCount != vector.StaticFeatureCount || s.HistoryFeatureCount != vector.HistoryFeatureCount {
		return errors.Wrapf(errors.ErrSnapshotMismatch, "feature layout %d/%d, compiled %d/%d",
			s.StaticFeatureCount, s.HistoryFeatureCount, vector.StaticFeatureCount, vector.HistoryFeatureCount)
	}
	if s.KmTimeDivisor != parse.KmTimeDistanceDivisor {
		return errors.Wrapf(errors.ErrSnapshotMismatch, "km-time divisor %v, compiled %v",
			s.KmTimeDivisor, parse.KmTimeDistanceDivisor)
	}
	if err := s.Identity.Validate(); err != nil {
		return errors.Wrapf(err, "snapshot %s identity", s.Version)
	}
	if err := s.Imputation.Validate(); err != nil {
		return errors.Wrapf(err, "snapshot %s imputation", s.Version)
	}
	return nil
}

// RequireHistoryCap rejects a snapshot built for a different history length
func (s *Snapshot) RequireHistoryCap(historyCap int) error {
	if s.HistoryCap != historyCap {
		return errors.Wrapf(errors.ErrSnapshotMismatch, "snapshot %s has history cap %d, configured %d",
			s.Version, s.HistoryCap, historyCap)
	}
	return nil
}

// Repository stores snapshots
type Repository interface {
	// Save persists s and makes it the current snapshot
	Save(ctx context.Context, s *Snapshot) error
	// Load returns a specific version
	Load(ctx context.Context, version uuid.UUID) (*Snapshot, error)
	// Current returns the most recently saved snapshot
	Current(ctx context.Context) (*Snapshot, error)
}
