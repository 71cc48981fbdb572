package tensor

import (
	"totoforecast/internal/features/vector"
	"totoforecast/pkg/errors"
)

// PaddedRace is one race laid out for race-level models: a fixed runner
// dimension filled with sentinel rows and a mask marking the real runners.
type PaddedRace struct {
	Static  [][]float64   `json:"static"`
	History [][][]float64 `json:"history"`
	Mask    []float64     `json:"mask"`
	Labels  []float64     `json:"labels,omitempty"`
	Meta    []Meta        `json:"meta"`
}

// PadRunners pads the batch to maxRunners. The batch must hold a single race.
func (b *Batch) PadRunners(maxRunners int) (*PaddedRace, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if b.Len() > maxRunners {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "race has %d runners, max %d", b.Len(), maxRunners)
	}

	p := &PaddedRace{
		Static:  make([][]float64, maxRunners),
		History: make([][][]float64, maxRunners),
		Mask:    make([]float64, maxRunners),
		Meta:    make([]Meta, b.Len()),
	}
	copy(p.Meta, b.Meta)
	if b.Labels != nil {
		p.Labels = make([]float64, maxRunners)
	}

	for i := 0; i < maxRunners; i++ {
		if i < b.Len() {
			p.Static[i] = b.Static[i]
			p.History[i] = b.History[i]
			p.Mask[i] = 1
			if b.Labels != nil {
				p.Labels[i] = b.Labels[i]
			}
			continue
		}

		p.Static[i] = filled(vector.StaticFeatureCount, vector.Sentinel)
		p.History[i] = make([][]float64, b.HistoryCap)
		for j := range p.History[i] {
			p.History[i][j] = filled(vector.HistoryFeatureCount, vector.Sentinel)
		}
	}
	return p, nil
}

func filled(n int, v float64) []float64 {
	row := make([]float64, n)
	for i := range row {
		row[i] = v
	}
	return row
}
