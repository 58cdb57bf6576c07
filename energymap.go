package seamcarve

import (
	"gonum.org/v1/gonum/mat"
)

// EnergyMap holds one non-negative importance value per pixel.
// Rows of the map are the rows of the raster it was computed from.
type EnergyMap struct {
	m *mat.Dense
}

func newEnergyMap(rows, cols int) *EnergyMap {
	return &EnergyMap{m: mat.NewDense(rows, cols, nil)}
}

// NewEnergyMap builds an energy map from row literals.
// All rows must be non-empty and of equal length.
func NewEnergyMap(rows [][]float64) (*EnergyMap, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, newError(InvalidParameter, "empty energy map")
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, newError(InvalidParameter, "energy map row %d has %d values, want %d", i, len(row), cols)
		}
		data = append(data, row...)
	}
	return &EnergyMap{m: mat.NewDense(len(rows), cols, data)}, nil
}

func (em *EnergyMap) clone() *EnergyMap {
	return &EnergyMap{m: mat.DenseCopyOf(em.m)}
}

// Dims returns the number of rows and columns of the map.
func (em *EnergyMap) Dims() (rows, cols int) {
	return em.m.Dims()
}

// At returns the energy at the given row and column.
func (em *EnergyMap) At(row, col int) float64 {
	return em.m.At(row, col)
}

// Row returns a view of a single row. Writes go through to the map.
func (em *EnergyMap) Row(r int) []float64 {
	raw := em.m.RawMatrix()
	return raw.Data[r*raw.Stride : r*raw.Stride+raw.Cols]
}

// Matrix exposes the map as a read only gonum matrix.
func (em *EnergyMap) Matrix() mat.Matrix {
	return em.m
}

// Max returns the largest energy of the map.
func (em *EnergyMap) Max() float64 {
	return mat.Max(em.m)
}
