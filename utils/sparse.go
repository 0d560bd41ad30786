package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// DOK wraps a dictionary-of-keys sparse matrix used during assembly. Entries
// are accumulated with Add and the result converted to CSR for application.
type DOK struct {
	M    *sparse.DOK
	name string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		sparse.NewDOK(nr, nc),
		"unnamed",
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return m.M.T() }

func (m DOK) Set(i, j int, val float64) {
	m.M.Set(i, j, val)
}

// Add accumulates val into entry (i,j).
func (m DOK) Add(i, j int, val float64) {
	m.M.Set(i, j, m.M.At(i, j)+val)
}

func (m DOK) ToCSR() CSR {
	return CSR{
		M:    m.M.ToCSR(),
		name: m.name,
	}
}

// CSR wraps a compressed-sparse-row matrix for repeated application.
type CSR struct {
	M    *sparse.CSR
	name string
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m CSR) Dims() (r, c int)    { return m.M.Dims() }
func (m CSR) At(i, j int) float64 { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix       { return m.M.T() }
func (m CSR) NNZ() int            { return m.M.NNZ() }

func (m CSR) DoNonZero(fn func(i, j int, v float64)) {
	m.M.DoNonZero(fn)
}

// MulVec computes y = m * x.
func (m CSR) MulVec(x Vector) (y Vector) {
	var (
		nr, nc = m.Dims()
		dataX  = x.Data()
	)
	if x.Len() != nc {
		panic(fmt.Errorf("MulVec dimension mismatch: matrix is %dx%d, vector is %d", nr, nc, x.Len()))
	}
	y = NewVector(nr)
	dataY := y.Data()
	m.M.DoNonZero(func(i, j int, v float64) {
		dataY[i] += v * dataX[j]
	})
	return
}

// MulTransposeVec computes y = transpose(m) * x without forming the
// transpose, so the reverse map is exactly the algebraic dual of the forward
// map.
func (m CSR) MulTransposeVec(x Vector) (y Vector) {
	var (
		nr, nc = m.Dims()
		dataX  = x.Data()
	)
	if x.Len() != nr {
		panic(fmt.Errorf("MulTransposeVec dimension mismatch: matrix is %dx%d, vector is %d", nr, nc, x.Len()))
	}
	y = NewVector(nc)
	dataY := y.Data()
	m.M.DoNonZero(func(i, j int, v float64) {
		dataY[j] += v * dataX[i]
	})
	return
}

// Transpose materializes the transpose as a new CSR.
func (m CSR) Transpose() (R CSR) {
	var (
		nr, nc = m.Dims()
	)
	dok := NewDOK(nc, nr)
	m.M.DoNonZero(func(i, j int, v float64) {
		dok.Set(j, i, v)
	})
	R = dok.ToCSR()
	return
}

// ToDense expands the sparse matrix into a dense Matrix.
func (m CSR) ToDense() (R Matrix) {
	var (
		nr, nc = m.Dims()
	)
	R = NewMatrix(nr, nc)
	m.M.DoNonZero(func(i, j int, v float64) {
		R.M.Set(i, j, v)
	})
	return
}
