// Package top3 scores runners with the exported top-3 finish model
package top3

import (
	"math"

	"totoforecast/internal/features/tensor"
	"totoforecast/internal/ml"
	"totoforecast/pkg/errors"
)

// Model tensor names
const (
	HistoryInput = "history_input"
	StaticInput  = "static_input"
	Output       = "output"
)

type session interface {
	Run(inputs []ml.Input, outputShape []int64) ([]float32, error)
	Destroy()
}

// Classifier predicts the probability that each runner finishes in the top 3
type Classifier struct {
	model session
}

// NewClassifier loads the model. libraryPath locates the ONNX Runtime shared
// library; empty uses the platform default.
func NewClassifier(modelPath, libraryPath string) (*Classifier, error) {
	model, err := ml.LoadONNXModel(modelPath, libraryPath,
		[]string{HistoryInput, StaticInput}, []string{Output})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load top-3 model")
	}

	return &Classifier{model: model}, nil
}

// Score returns one probability per batch row, in row order
func (c *Classifier) Score(batch *tensor.Batch) ([]float64, error) {
	if c.model == nil {
		return nil, errors.New("classifier model is not loaded")
	}
	if err := batch.Validate(); err != nil {
		return nil, err
	}
	if batch.Len() == 0 {
		return nil, errors.Wrap(errors.ErrNoData, "empty batch")
	}

	inputs := []ml.Input{
		{Name: HistoryInput, Shape: batch.HistoryShape(), Data: batch.HistoryFlat()},
		{Name: StaticInput, Shape: batch.StaticShape(), Data: batch.StaticFlat()},
	}

	raw, err := c.model.Run(inputs, []int64{int64(batch.Len()), 1})
	if err != nil {
		return nil, errors.Wrap(err, "scoring failed")
	}
	if len(raw) != batch.Len() {
		return nil, errors.Wrapf(errors.ErrShapeMismatch, "model returned %d scores for %d runners", len(raw), batch.Len())
	}

	scores := make([]float64, len(raw))
	for i, v := range raw {
		p := float64(v)
		if math.IsNaN(p) {
			return nil, errors.Wrapf(errors.ErrInvariantViolation, "NaN score for runner %d", i)
		}
		scores[i] = math.Min(1, math.Max(0, p))
	}
	return scores, nil
}

// Close cleans up the classifier resources
func (c *Classifier) Close() {
	if c.model != nil {
		c.model.Destroy()
		c.model = nil
	}
}
