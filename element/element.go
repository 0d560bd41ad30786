package element

import (
	"fmt"

	"github.com/notargets/schwarz/utils"
)

// Element is a nodal Lagrange reference element. The nodal basis is expressed
// through an orthonormal modal basis and a generalized Vandermonde matrix,
// since no closed form exists for Lagrange polynomials through an arbitrary
// simplex point set.
type Element interface {
	Dim() int    // spatial dimension of the reference cell
	Degree() int // polynomial degree
	Np() int     // number of nodes (basis dimension)
	// Nodes returns the reference coordinates of the nodal points. For 1-D
	// elements S is identically zero.
	Nodes() (R, S utils.Vector)
	// EvalBasis evaluates every nodal basis function at the given reference
	// points: result is (len(R) x Np), row per point, column per basis
	// function.
	EvalBasis(R, S utils.Vector) utils.Matrix
	// MassMatrix is the exact reference mass matrix of the nodal basis.
	MassMatrix() utils.Matrix
	// DMatrices returns the nodal derivative matrices, one per reference
	// direction.
	DMatrices() []utils.Matrix
	// Coarse returns the degree-1 element on the same cell shape.
	Coarse() Element
}

// Interval is the 1-D Lagrange element of degree N on [-1,1] with
// Gauss-Lobatto nodes. Node 0 is the left vertex, node N the right vertex.
type Interval struct {
	N       int
	NpE     int
	R       utils.Vector
	V, Vinv utils.Matrix
	Dr      utils.Matrix
	Mass    utils.Matrix
}

func NewInterval(N int) (el *Interval) {
	if N < 1 {
		panic(fmt.Errorf("interval element degree must be >= 1, have %d", N))
	}
	el = &Interval{
		N:   N,
		NpE: N + 1,
	}
	el.R = JacobiGL(0, 0, N)
	el.V = Vandermonde1D(N, el.R)
	var err error
	if el.Vinv, err = el.V.Inverse(); err != nil {
		panic(err)
	}
	Vr := GradVandermonde1D(N, el.R)
	el.Dr = Vr.Mul(el.Vinv)
	el.Mass = el.Vinv.Transpose().Mul(el.Vinv)
	el.Dr.SetReadOnly("Dr")
	el.Mass.SetReadOnly("Mass")
	return
}

func (el *Interval) Dim() int    { return 1 }
func (el *Interval) Degree() int { return el.N }
func (el *Interval) Np() int     { return el.NpE }

func (el *Interval) Nodes() (R, S utils.Vector) {
	R = el.R.Copy()
	S = utils.NewVector(el.NpE)
	return
}

func (el *Interval) EvalBasis(R, S utils.Vector) (B utils.Matrix) {
	B = Vandermonde1D(el.N, R).Mul(el.Vinv)
	return
}

func (el *Interval) MassMatrix() utils.Matrix  { return el.Mass }
func (el *Interval) DMatrices() []utils.Matrix { return []utils.Matrix{el.Dr} }
func (el *Interval) Coarse() Element           { return NewInterval(1) }

func (el *Interval) StiffnessRef() utils.Matrix {
	return el.Dr.Transpose().Mul(el.Mass).Mul(el.Dr)
}
