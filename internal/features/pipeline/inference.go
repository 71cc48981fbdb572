package pipeline

import (
	"time"

	"totoforecast/internal/domain/race"
	"totoforecast/internal/features/identity"
	"totoforecast/internal/features/snapshot"
	"totoforecast/internal/features/tensor"
	"totoforecast/internal/features/vector"
	"totoforecast/internal/metrics"
	"totoforecast/pkg/errors"
	"totoforecast/pkg/logger"
)

// Inference builds features for unseen races from a saved snapshot. It never
// modifies the snapshot and is safe for concurrent use.
type Inference struct {
	snap    *snapshot.Snapshot
	builder *vector.Builder
	log     *logger.Logger
}

// NewInference validates snap against the configured history cap
func NewInference(snap *snapshot.Snapshot, historyCap int, log *logger.Logger) (*Inference, error) {
	if snap == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "snapshot is required")
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	if err := snap.RequireHistoryCap(historyCap); err != nil {
		return nil, err
	}

	resolver, err := identity.NewResolver(snap.Identity)
	if err != nil {
		return nil, err
	}

	builder, err := vector.NewBuilder(resolver, snap.Imputation, snap.HistoryCap)
	if err != nil {
		return nil, err
	}

	return &Inference{
		snap:    snap,
		builder: builder,
		log:     log.Named("inference"),
	}, nil
}

// Snapshot returns the snapshot features are built from
func (p *Inference) Snapshot() *snapshot.Snapshot {
	return p.snap
}

// BuildRace returns the unlabelled tensors of r's starters in race order.
// ErrNoData means there is nothing to predict; ErrInvariantViolation means
// the tensors came out malformed.
func (p *Inference) BuildRace(r *race.Race) (*tensor.Batch, error) {
	started := time.Now()
	batch, err := buildRace(p.builder, r, false)
	observe(p.log, metrics.ModeInference, r, batch, started, err)
	if err != nil {
		return nil, err
	}
	return batch, nil
}
