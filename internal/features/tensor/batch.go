// Package tensor assembles per-runner vectors into the shaped arrays consumed
// by the model runtime.
package tensor

import (
	"gonum.org/v1/gonum/mat"

	"totoforecast/internal/features/vector"
	"totoforecast/pkg/errors"
)

// Meta identifies the runner behind a row
type Meta struct {
	RaceID string `json:"race_id"`
	Number int    `json:"number"`
	Name   string `json:"name"`
	Driver string `json:"driver"`
}

// Batch holds one race (or corpus slice) in row order. Labels are only set in
// training.
type Batch struct {
	Static     [][]float64
	History    [][][]float64
	Meta       []Meta
	Labels     []float64
	HistoryCap int
}

// NewBatch allocates an empty batch for n runners
func NewBatch(n, historyCap int) *Batch {
	return &Batch{
		Static:     make([][]float64, 0, n),
		History:    make([][][]float64, 0, n),
		Meta:       make([]Meta, 0, n),
		HistoryCap: historyCap,
	}
}

// Append adds one runner
func (b *Batch) Append(static []float64, history [][]float64, meta Meta) {
	b.Static = append(b.Static, static)
	b.History = append(b.History, history)
	b.Meta = append(b.Meta, meta)
}

// Len returns the number of runners
func (b *Batch) Len() int {
	return len(b.Static)
}

// Validate checks that every array agrees on the runner count and every row
// has its contracted width.
func (b *Batch) Validate() error {
	n := len(b.Static)
	if len(b.History) != n || len(b.Meta) != n {
		return errors.Wrapf(errors.ErrShapeMismatch, "static=%d history=%d meta=%d",
			n, len(b.History), len(b.Meta))
	}
	if b.Labels != nil && len(b.Labels) != n {
		return errors.Wrapf(errors.ErrShapeMismatch, "labels=%d runners=%d", len(b.Labels), n)
	}

	for i, row := range b.Static {
		if len(row) != vector.StaticFeatureCount {
			return errors.Wrapf(errors.ErrShapeMismatch, "runner %d: static width %d, want %d",
				i, len(row), vector.StaticFeatureCount)
		}
	}

	for i, matrix := range b.History {
		if len(matrix) != b.HistoryCap {
			return errors.Wrapf(errors.ErrShapeMismatch, "runner %d: history rows %d, want %d",
				i, len(matrix), b.HistoryCap)
		}
		for j, row := range matrix {
			if len(row) != vector.HistoryFeatureCount {
				return errors.Wrapf(errors.ErrShapeMismatch, "runner %d row %d: history width %d, want %d",
					i, j, len(row), vector.HistoryFeatureCount)
			}
		}
	}
	return nil
}

// Merge appends other to b. Both must share the history cap.
func (b *Batch) Merge(other *Batch) error {
	if other.HistoryCap != b.HistoryCap {
		return errors.Wrapf(errors.ErrShapeMismatch, "history cap %d vs %d", other.HistoryCap, b.HistoryCap)
	}
	if (b.Labels == nil) != (other.Labels == nil) && b.Len() > 0 {
		return errors.Wrap(errors.ErrShapeMismatch, "cannot merge labelled and unlabelled batches")
	}

	b.Static = append(b.Static, other.Static...)
	b.History = append(b.History, other.History...)
	b.Meta = append(b.Meta, other.Meta...)
	if other.Labels != nil {
		b.Labels = append(b.Labels, other.Labels...)
	}
	return nil
}

// StaticFlat returns the static matrix as row-major float32, shape [n, 27]
func (b *Batch) StaticFlat() []float32 {
	out := make([]float32, 0, len(b.Static)*vector.StaticFeatureCount)
	for _, row := range b.Static {
		for _, v := range row {
			out = append(out, float32(v))
		}
	}
	return out
}

// HistoryFlat returns the history tensor as row-major float32, shape [n, cap, 25]
func (b *Batch) HistoryFlat() []float32 {
	out := make([]float32, 0, len(b.History)*b.HistoryCap*vector.HistoryFeatureCount)
	for _, matrix := range b.History {
		for _, row := range matrix {
			for _, v := range row {
				out = append(out, float32(v))
			}
		}
	}
	return out
}

// StaticShape returns the static tensor dimensions
func (b *Batch) StaticShape() []int64 {
	return []int64{int64(b.Len()), vector.StaticFeatureCount}
}

// HistoryShape returns the history tensor dimensions
func (b *Batch) HistoryShape() []int64 {
	return []int64{int64(b.Len()), int64(b.HistoryCap), vector.HistoryFeatureCount}
}

// StaticMatrix copies the static rows into a dense matrix
func (b *Batch) StaticMatrix() *mat.Dense {
	if b.Len() == 0 {
		return nil
	}
	data := make([]float64, 0, b.Len()*vector.StaticFeatureCount)
	for _, row := range b.Static {
		data = append(data, row...)
	}
	return mat.NewDense(b.Len(), vector.StaticFeatureCount, data)
}

// FlatDataset is a batch in the layout the model runtime consumes: row-major
// float32 tensors with their shapes
type FlatDataset struct {
	StaticShape  []int64   `json:"static_shape"`
	Static       []float32 `json:"static"`
	HistoryShape []int64   `json:"history_shape"`
	History      []float32 `json:"history"`
	Labels       []float64 `json:"labels,omitempty"`
	Meta         []Meta    `json:"meta"`
}

// Flat validates the batch and flattens it
func (b *Batch) Flat() (*FlatDataset, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &FlatDataset{
		StaticShape:  b.StaticShape(),
		Static:       b.StaticFlat(),
		HistoryShape: b.HistoryShape(),
		History:      b.HistoryFlat(),
		Labels:       b.Labels,
		Meta:         b.Meta,
	}, nil
}
