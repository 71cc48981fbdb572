package tensor

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ColumnProfile summarises one static column over a batch
type ColumnProfile struct {
	Column int     `json:"column"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Constant reports a column that carries no signal in the batch
func (p ColumnProfile) Constant() bool {
	return p.Min == p.Max
}

// Profile summarises every static column, nil for an empty batch
func (b *Batch) Profile() []ColumnProfile {
	m := b.StaticMatrix()
	if m == nil {
		return nil
	}

	rows, cols := m.Dims()
	col := make([]float64, rows)
	out := make([]ColumnProfile, cols)

	for j := 0; j < cols; j++ {
		mat.Col(col, j, m)
		p := ColumnProfile{
			Column: j,
			Mean:   stat.Mean(col, nil),
			Min:    floats.Min(col),
			Max:    floats.Max(col),
		}
		if rows > 1 {
			p.StdDev = stat.StdDev(col, nil)
		}
		out[j] = p
	}
	return out
}
