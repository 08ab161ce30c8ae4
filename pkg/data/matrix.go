package data

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// FeatureMatrix is a numeric design matrix with named columns.
type FeatureMatrix struct {
	Names []string
	X     *mat.Dense
}

// FromColumns assembles a matrix from column-major values. All columns must share a length.
func FromColumns(names []string, cols [][]float64) FeatureMatrix {
	r, c := len(cols[0]), len(cols)
	x := mat.NewDense(r, c, nil)
	for j, col := range cols {
		x.SetCol(j, col)
	}
	return FeatureMatrix{Names: append([]string(nil), names...), X: x}
}

// FromRows assembles a matrix from row-major values.
func FromRows(names []string, rows [][]float64) (FeatureMatrix, error) {
	if len(rows) == 0 || len(names) == 0 {
		return FeatureMatrix{}, errors.New("matrix: empty input")
	}
	x := mat.NewDense(len(rows), len(names), nil)
	for i, row := range rows {
		if len(row) != len(names) {
			return FeatureMatrix{}, fmt.Errorf("matrix: row %d has %d values, want %d", i, len(row), len(names))
		}
		x.SetRow(i, row)
	}
	return FeatureMatrix{Names: append([]string(nil), names...), X: x}, nil
}

// Dims returns the number of rows and columns.
func (m FeatureMatrix) Dims() (int, int) {
	if m.X == nil {
		return 0, 0
	}
	return m.X.Dims()
}

// Col returns a copy of column j.
func (m FeatureMatrix) Col(j int) []float64 { return mat.Col(nil, j, m.X) }

// Rows returns a new matrix holding the given rows in order.
func (m FeatureMatrix) Rows(idx []int) (FeatureMatrix, error) {
	if len(idx) == 0 {
		return FeatureMatrix{}, errors.New("matrix: empty row selection")
	}
	r, c := m.Dims()
	x := mat.NewDense(len(idx), c, nil)
	for i, src := range idx {
		if src < 0 || src >= r {
			return FeatureMatrix{}, fmt.Errorf("matrix: row %d out of range [0,%d)", src, r)
		}
		x.SetRow(i, m.X.RawRowView(src))
	}
	return FeatureMatrix{Names: append([]string(nil), m.Names...), X: x}, nil
}

// Clone returns a deep copy.
func (m FeatureMatrix) Clone() FeatureMatrix {
	return FeatureMatrix{Names: append([]string(nil), m.Names...), X: mat.DenseCopyOf(m.X)}
}

// SameColumns reports whether both matrices have the same column names in the same order.
func (m FeatureMatrix) SameColumns(other FeatureMatrix) bool {
	return slices.Equal(m.Names, other.Names)
}

// Validate returns a DomainError for the first missing or infinite cell.
func (m FeatureMatrix) Validate(op string) error {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.X.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return &DomainError{Op: op, Column: m.Names[j], Row: i, Value: fmt.Sprint(v), Reason: "is not a finite number"}
			}
		}
	}
	return nil
}

// SelectLabels returns the labels at the given rows.
func SelectLabels(y []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, src := range idx {
		out[i] = y[src]
	}
	return out
}
