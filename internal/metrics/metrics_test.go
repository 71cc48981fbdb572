package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"totoforecast/internal/features/identity"
	"totoforecast/internal/features/imputation"
	"totoforecast/internal/features/snapshot"
	"totoforecast/pkg/errors"
	"totoforecast/pkg/logger"
)

func TestBuildStatus(t *testing.T) {
	assert.Equal(t, "success", BuildStatus(nil))
	assert.Equal(t, "no_data", BuildStatus(errors.Wrap(errors.ErrNoData, "race r1")))
	assert.Equal(t, "invariant", BuildStatus(errors.ErrShapeMismatch))
	assert.Equal(t, "error", BuildStatus(errors.ErrUnavailable))
}

func TestInvariantKind(t *testing.T) {
	assert.Equal(t, "shape", InvariantKind(errors.Wrap(errors.ErrShapeMismatch, "x")))
	assert.Equal(t, "namespace", InvariantKind(errors.ErrNamespaceMissing))
	assert.Equal(t, "snapshot", InvariantKind(errors.ErrSnapshotMismatch))
	assert.Equal(t, "other", InvariantKind(errors.ErrInvariantViolation))
}

func TestRecordRaceBuild(t *testing.T) {
	races := testutil.ToFloat64(RacesBuilt.WithLabelValues(ModeTraining, "success"))
	runners := testutil.ToFloat64(RunnersBuilt.WithLabelValues(ModeTraining))
	shape := testutil.ToFloat64(InvariantViolations.WithLabelValues("shape"))

	RecordRaceBuild(ModeTraining, 8, time.Millisecond, nil)
	RecordRaceBuild(ModeTraining, 0, time.Millisecond, errors.ErrShapeMismatch)

	assert.Equal(t, races+1, testutil.ToFloat64(RacesBuilt.WithLabelValues(ModeTraining, "success")))
	assert.Equal(t, runners+8, testutil.ToFloat64(RunnersBuilt.WithLabelValues(ModeTraining)))
	assert.Equal(t, shape+1, testutil.ToFloat64(InvariantViolations.WithLabelValues("shape")))
}

func TestRecordPrediction(t *testing.T) {
	bets := testutil.ToFloat64(Predictions.WithLabelValues("BET"))
	failed := testutil.ToFloat64(PredictionRequests.WithLabelValues("error"))

	RecordPrediction(time.Millisecond, []string{"BET", "SKIP", "BET"}, nil)
	RecordPrediction(time.Millisecond, nil, errors.ErrShapeMismatch)

	assert.Equal(t, bets+2, testutil.ToFloat64(Predictions.WithLabelValues("BET")))
	assert.Equal(t, failed+1, testutil.ToFloat64(PredictionRequests.WithLabelValues("error")))
}

type staticRepo struct {
	snap *snapshot.Snapshot
}

func (r staticRepo) Save(context.Context, *snapshot.Snapshot) error { return nil }

func (r staticRepo) Load(context.Context, uuid.UUID) (*snapshot.Snapshot, error) {
	return r.snap, nil
}

func (r staticRepo) Current(context.Context) (*snapshot.Snapshot, error) {
	if r.snap == nil {
		return nil, errors.ErrNotFound
	}
	return r.snap, nil
}

func TestSnapshotCollector(t *testing.T) {
	b := identity.NewBuilder()
	b.ID(identity.Driver, "Juhani Makinen")
	snap := snapshot.New(b.Maps(), imputation.DefaultStats(), 8, snapshot.CorpusMeta{TotalRaces: 4, TotalRunners: 30})

	collector := NewSnapshotCollector(logger.NewNop(), staticRepo{snap: snap})
	assert.Equal(t, len(identity.Namespaces)+3, testutil.CollectAndCount(collector))

	empty := NewSnapshotCollector(logger.NewNop(), staticRepo{})
	assert.Equal(t, 0, testutil.CollectAndCount(empty))
}
