// Package prediction turns a published race into ranked top-3 probabilities.
package prediction

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"totoforecast/internal/features/ingest"
	"totoforecast/internal/features/pipeline"
	"totoforecast/internal/features/tensor"
	"totoforecast/internal/metrics"
	"totoforecast/pkg/errors"
	"totoforecast/pkg/logger"
)

// Signals attached to each prediction
const (
	SignalBet  = "BET"
	SignalSkip = "SKIP"
)

// DefaultSignalCutoff is the probability at which a runner is marked BET
const DefaultSignalCutoff = 0.5

// Scorer returns one top-3 probability per batch row
type Scorer interface {
	Score(batch *tensor.Batch) ([]float64, error)
}

// Prediction is the model output for one runner
type Prediction struct {
	Number      int     `json:"number"`
	Name        string  `json:"name"`
	Driver      string  `json:"driver"`
	Probability float64 `json:"probability"`
	ImpliedOdds float64 `json:"implied_odds"` // 1/p rounded to cents, 0 when p is 0
	Signal      string  `json:"signal"`
}

// Service runs the inference pipeline and the model for single races
type Service struct {
	pipeline *pipeline.Inference
	scorer   Scorer
	cutoff   float64
	log      *logger.Logger
}

// NewService creates a new prediction service
func NewService(p *pipeline.Inference, scorer Scorer, cutoff float64, log *logger.Logger) *Service {
	if cutoff <= 0 || cutoff >= 1 {
		cutoff = DefaultSignalCutoff
	}
	return &Service{
		pipeline: p,
		scorer:   scorer,
		cutoff:   cutoff,
		log:      log.Named("prediction"),
	}
}

// PredictRace scores every starter of raw, highest probability first.
// A race without starters returns ErrNoData.
func (s *Service) PredictRace(ctx context.Context, raw ingest.RawRace) (preds []Prediction, err error) {
	started := time.Now()
	defer func() {
		metrics.RecordPrediction(time.Since(started), signals(preds), err)
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := ingest.NormalizeRace(raw)

	batch, err := s.pipeline.BuildRace(&r)
	if err != nil {
		return nil, errors.Wrapf(err, "race %s", r.ID)
	}

	scores, err := s.scorer.Score(batch)
	if err != nil {
		return nil, errors.Wrapf(err, "score race %s", r.ID)
	}
	if len(scores) != batch.Len() {
		return nil, errors.Wrapf(errors.ErrShapeMismatch, "race %s: %d scores for %d runners",
			r.ID, len(scores), batch.Len())
	}

	preds = make([]Prediction, 0, batch.Len())
	for i, meta := range batch.Meta {
		preds = append(preds, s.prediction(meta, scores[i]))
	}

	sort.SliceStable(preds, func(i, j int) bool {
		return preds[i].Probability > preds[j].Probability
	})

	s.log.Debugw("Race predicted",
		"race_id", r.ID,
		"runners", len(preds),
		"bets", countBets(preds),
		"duration", time.Since(started),
	)

	return preds, nil
}

func (s *Service) prediction(meta tensor.Meta, p float64) Prediction {
	signal := SignalSkip
	if p >= s.cutoff {
		signal = SignalBet
	}
	return Prediction{
		Number:      meta.Number,
		Name:        meta.Name,
		Driver:      meta.Driver,
		Probability: p,
		ImpliedOdds: impliedOdds(p),
		Signal:      signal,
	}
}

func impliedOdds(p float64) float64 {
	if p <= 0 {
		return 0
	}
	odds, _ := decimal.NewFromInt(1).Div(decimal.NewFromFloat(p)).Round(2).Float64()
	return odds
}

func signals(preds []Prediction) []string {
	out := make([]string, len(preds))
	for i, p := range preds {
		out[i] = p.Signal
	}
	return out
}

func countBets(preds []Prediction) int {
	n := 0
	for _, p := range preds {
		if p.Signal == SignalBet {
			n++
		}
	}
	return n
}
