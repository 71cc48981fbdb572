package prediction

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"totoforecast/internal/domain/race"
	"totoforecast/internal/features/ingest"
	"totoforecast/internal/features/pipeline"
	"totoforecast/internal/features/tensor"
	"totoforecast/internal/features/vector"
	"totoforecast/internal/testsupport"
	"totoforecast/pkg/errors"
	"totoforecast/pkg/logger"
)

const rawRace = `{
	"raceId": 42,
	"meetDate": "2026-03-08",
	"distance": 2100,
	"breed": "L",
	"startType": "CAR_START",
	"runners": [
		{"startNumber": 1, "horseName": "Alpha", "driverName": "Driver Surname1", "coachName": "Coach 1"},
		{"startNumber": 2, "horseName": "Bravo", "driverName": "Driver Surname2", "coachName": "Coach 2"},
		{"startNumber": 3, "horseName": "Charlie", "driverName": "Driver Surname3", "scratched": true},
		{"startNumber": 4, "horseName": "Delta", "driverName": "Nobody Known"}
	]
}`

type fakeScorer struct {
	scores []float64
	err    error
	seen   *tensor.Batch
}

func (f *fakeScorer) Score(batch *tensor.Batch) ([]float64, error) {
	f.seen = batch
	return f.scores, f.err
}

func newInference(t *testing.T) *pipeline.Inference {
	t.Helper()

	trainer, err := pipeline.NewTrainer(vector.DefaultHistoryCap, logger.NewNop())
	require.NoError(t, err)

	races := []race.Race{testsupport.NewRaceFixture().WithRunners(8, 3).Build()}
	_, snap, err := trainer.Build(context.Background(), races)
	require.NoError(t, err)

	inf, err := pipeline.NewInference(snap, vector.DefaultHistoryCap, logger.NewNop())
	require.NoError(t, err)
	return inf
}

func decodeRace(t *testing.T, data string) ingest.RawRace {
	t.Helper()
	var raw ingest.RawRace
	require.NoError(t, json.Unmarshal([]byte(data), &raw))
	return raw
}

func TestPredictRace(t *testing.T) {
	scorer := &fakeScorer{scores: []float64{0.2, 0.8, 0.5}}
	svc := NewService(newInference(t), scorer, 0.5, logger.NewNop())

	preds, err := svc.PredictRace(context.Background(), decodeRace(t, rawRace))
	require.NoError(t, err)
	require.Len(t, preds, 3)

	// scratched runner never reaches the model
	require.NotNil(t, scorer.seen)
	assert.Equal(t, 3, scorer.seen.Len())

	assert.Equal(t, []int{2, 4, 1}, []int{preds[0].Number, preds[1].Number, preds[2].Number})
	assert.Equal(t, "Bravo", preds[0].Name)
	assert.Equal(t, "Driver Surname2", preds[0].Driver)

	assert.Equal(t, SignalBet, preds[0].Signal)
	assert.Equal(t, SignalBet, preds[1].Signal)
	assert.Equal(t, SignalSkip, preds[2].Signal)

	assert.Equal(t, 1.25, preds[0].ImpliedOdds)
	assert.Equal(t, 2.0, preds[1].ImpliedOdds)
	assert.Equal(t, 5.0, preds[2].ImpliedOdds)
}

func TestPredictRaceNoStarters(t *testing.T) {
	svc := NewService(newInference(t), &fakeScorer{}, 0.5, logger.NewNop())

	raw := decodeRace(t, `{"raceId": 1, "runners": [{"startNumber": 1, "scratched": true}]}`)
	_, err := svc.PredictRace(context.Background(), raw)
	assert.True(t, errors.Is(err, errors.ErrNoData))
}

func TestPredictRaceScorerFailure(t *testing.T) {
	svc := NewService(newInference(t), &fakeScorer{err: errors.ErrUnavailable}, 0.5, logger.NewNop())

	_, err := svc.PredictRace(context.Background(), decodeRace(t, rawRace))
	assert.True(t, errors.Is(err, errors.ErrUnavailable))
}

func TestPredictRaceScoreCountMismatch(t *testing.T) {
	svc := NewService(newInference(t), &fakeScorer{scores: []float64{0.1}}, 0.5, logger.NewNop())

	_, err := svc.PredictRace(context.Background(), decodeRace(t, rawRace))
	assert.True(t, errors.Is(err, errors.ErrShapeMismatch))
}

func TestPredictRaceCancelled(t *testing.T) {
	svc := NewService(newInference(t), &fakeScorer{}, 0.5, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.PredictRace(ctx, decodeRace(t, rawRace))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestImpliedOdds(t *testing.T) {
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 0},
		{1, 1},
		{0.3, 3.33},
		{0.07, 14.29},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, impliedOdds(tt.p), "p=%v", tt.p)
	}
}

func TestNewServiceDefaultsCutoff(t *testing.T) {
	svc := NewService(newInference(t), &fakeScorer{}, 0, logger.NewNop())
	assert.Equal(t, DefaultSignalCutoff, svc.cutoff)
}
