package utils

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

type Vector struct {
	V *mat.VecDense
}

func NewVector(n int, dataO ...[]float64) (V Vector) {
	if len(dataO) != 0 {
		if len(dataO[0]) != n {
			err := fmt.Errorf("mismatch in allocation: NewVector n = %v, len(data[0]) = %v", n, len(dataO[0]))
			panic(err)
		}
		V = Vector{mat.NewVecDense(n, dataO[0])}
	} else {
		V = Vector{mat.NewVecDense(n, make([]float64, n))}
	}
	return
}

// Dims, AtVec and T minimally satisfy the mat.Vector interface.
func (v Vector) Dims() (r, c int)    { return v.V.Dims() }
func (v Vector) AtVec(i int) float64 { return v.V.AtVec(i) }
func (v Vector) At(i, j int) float64 { return v.V.At(i, j) }
func (v Vector) T() mat.Matrix       { return v.V.T() }
func (v Vector) Len() int            { return v.V.Len() }
func (v Vector) Data() []float64     { return v.V.RawVector().Data }

func (v Vector) Copy() (R Vector) {
	var (
		data = make([]float64, v.Len())
	)
	copy(data, v.Data())
	R = NewVector(v.Len(), data)
	return
}

func (v Vector) Set(val float64) Vector { // Changes receiver
	var (
		data = v.Data()
	)
	for i := range data {
		data[i] = val
	}
	return v
}

func (v Vector) SetVec(i int, val float64) Vector { // Changes receiver
	v.V.SetVec(i, val)
	return v
}

func (v Vector) Add(a Vector) Vector { // Changes receiver
	var (
		data  = v.Data()
		dataA = a.Data()
	)
	for i, val := range dataA {
		data[i] += val
	}
	return v
}

func (v Vector) Subtract(a Vector) Vector { // Changes receiver
	var (
		data  = v.Data()
		dataA = a.Data()
	)
	for i, val := range dataA {
		data[i] -= val
	}
	return v
}

func (v Vector) Scale(a float64) Vector { // Changes receiver
	var (
		data = v.Data()
	)
	for i := range data {
		data[i] *= a
	}
	return v
}

// AXPY computes v += alpha * a in place.
func (v Vector) AXPY(alpha float64, a Vector) Vector { // Changes receiver
	var (
		data  = v.Data()
		dataA = a.Data()
	)
	for i, val := range dataA {
		data[i] += alpha * val
	}
	return v
}

func (v Vector) Dot(a Vector) (d float64) {
	var (
		data  = v.Data()
		dataA = a.Data()
	)
	for i, val := range data {
		d += val * dataA[i]
	}
	return
}

func (v Vector) Norm() (n float64) {
	n = math.Sqrt(v.Dot(v))
	return
}

// Subset gathers the entries of v at the indices in I into a new vector.
func (v Vector) Subset(I Index) (R Vector) {
	var (
		data  = v.Data()
		dataR = make([]float64, len(I))
	)
	for i, ind := range I {
		dataR[i] = data[ind]
	}
	R = NewVector(len(I), dataR)
	return
}

func ConstArray(val float64, n int) (a []float64) {
	a = make([]float64, n)
	for i := range a {
		a[i] = val
	}
	return
}
