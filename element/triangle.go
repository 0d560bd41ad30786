package element

import (
	"fmt"
	"math"

	"github.com/notargets/schwarz/utils"
)

// Triangle is the 2-D Lagrange element of degree N on the reference triangle
// {(r,s): r,s >= -1, r+s <= 0} with equispaced nodes enumerated by entity:
// the three vertices first, then the interior nodes of each edge (ordered
// from the edge's first vertex to its second), then cell-interior nodes.
// The entity-aware ordering is what the global dof numbering keys off.
type Triangle struct {
	N       int
	NpE     int
	R, S    utils.Vector
	V, Vinv utils.Matrix
	Dr, Ds  utils.Matrix
	Mass    utils.Matrix

	VertexNodes   [3]int   // local node id of each vertex
	EdgeNodes     [3][]int // interior nodes per edge, first->second vertex order
	InteriorNodes []int
}

// EdgeVertices lists the local vertex pair of each triangle edge, in the
// orientation the edge-interior nodes follow.
var EdgeVertices = [3][2]int{{0, 1}, {1, 2}, {2, 0}}

func NewTriangle(N int) (el *Triangle) {
	if N < 1 {
		panic(fmt.Errorf("triangle element degree must be >= 1, have %d", N))
	}
	el = &Triangle{
		N:   N,
		NpE: (N + 1) * (N + 2) / 2,
	}
	el.buildNodes()
	el.V = Vandermonde2D(N, el.R, el.S)
	var err error
	if el.Vinv, err = el.V.Inverse(); err != nil {
		panic(err)
	}
	Vr, Vs := GradVandermonde2D(N, el.R, el.S)
	el.Dr, el.Ds = Vr.Mul(el.Vinv), Vs.Mul(el.Vinv)
	el.Mass = el.Vinv.Transpose().Mul(el.Vinv)
	el.Dr.SetReadOnly("Dr")
	el.Ds.SetReadOnly("Ds")
	el.Mass.SetReadOnly("Mass")
	return
}

func (el *Triangle) buildNodes() {
	var (
		N      = el.N
		verts  = [3][2]float64{{-1, -1}, {1, -1}, {-1, 1}}
		rd, sd []float64
	)
	rd = make([]float64, 0, el.NpE)
	sd = make([]float64, 0, el.NpE)
	for v := 0; v < 3; v++ {
		el.VertexNodes[v] = len(rd)
		rd = append(rd, verts[v][0])
		sd = append(sd, verts[v][1])
	}
	for e := 0; e < 3; e++ {
		a, b := verts[EdgeVertices[e][0]], verts[EdgeVertices[e][1]]
		for i := 1; i < N; i++ {
			t := float64(i) / float64(N)
			el.EdgeNodes[e] = append(el.EdgeNodes[e], len(rd))
			rd = append(rd, a[0]+t*(b[0]-a[0]))
			sd = append(sd, a[1]+t*(b[1]-a[1]))
		}
	}
	for i := 1; i < N; i++ {
		for j := 1; j < N-i; j++ {
			el.InteriorNodes = append(el.InteriorNodes, len(rd))
			rd = append(rd, -1+2*float64(i)/float64(N))
			sd = append(sd, -1+2*float64(j)/float64(N))
		}
	}
	if len(rd) != el.NpE {
		panic(fmt.Errorf("node enumeration mismatch: have %d, want %d", len(rd), el.NpE))
	}
	el.R = utils.NewVector(el.NpE, rd)
	el.S = utils.NewVector(el.NpE, sd)
}

func (el *Triangle) Dim() int    { return 2 }
func (el *Triangle) Degree() int { return el.N }
func (el *Triangle) Np() int     { return el.NpE }

func (el *Triangle) Nodes() (R, S utils.Vector) {
	R, S = el.R.Copy(), el.S.Copy()
	return
}

func (el *Triangle) EvalBasis(R, S utils.Vector) (B utils.Matrix) {
	B = Vandermonde2D(el.N, R, S).Mul(el.Vinv)
	return
}

func (el *Triangle) MassMatrix() utils.Matrix  { return el.Mass }
func (el *Triangle) DMatrices() []utils.Matrix { return []utils.Matrix{el.Dr, el.Ds} }
func (el *Triangle) Coarse() Element           { return NewTriangle(1) }

// Vandermonde2D computes the generalized Vandermonde matrix of the 2-D
// orthonormal simplex basis at the points (R,S).
func Vandermonde2D(N int, R, S utils.Vector) (V2D utils.Matrix) {
	V2D = utils.NewMatrix(R.Len(), (N+1)*(N+2)/2)
	var sk int
	for i := 0; i <= N; i++ {
		for j := 0; j <= (N - i); j++ {
			V2D.SetCol(sk, Simplex2DP(R, S, i, j))
			sk++
		}
	}
	return
}

// GradVandermonde2D computes the derivative Vandermonde matrices at the
// points (R,S).
func GradVandermonde2D(N int, R, S utils.Vector) (V2Dr, V2Ds utils.Matrix) {
	var (
		Np = (N + 1) * (N + 2) / 2
		Nr = R.Len()
	)
	V2Dr, V2Ds = utils.NewMatrix(Nr, Np), utils.NewMatrix(Nr, Np)
	var sk int
	for i := 0; i <= N; i++ {
		for j := 0; j <= (N - i); j++ {
			ddr, dds := GradSimplex2DP(R, S, i, j)
			V2Dr.M.SetCol(sk, ddr)
			V2Ds.M.SetCol(sk, dds)
			sk++
		}
	}
	return
}

// Simplex2DP evaluates the orthonormal (i,j) simplex polynomial at (R,S).
func Simplex2DP(R, S utils.Vector, i, j int) (P []float64) {
	var (
		A, B = RStoAB(R, S)
		Np   = A.Len()
		bd   = B.Data()
	)
	h1 := JacobiP(A, 0, 0, i)
	h2 := JacobiP(B, float64(2*i+1), 0, j)
	P = make([]float64, Np)
	sq2 := math.Sqrt(2)
	for ii := range h1 {
		tv1 := sq2 * h1[ii] * h2[ii]
		tv2 := pow(1-bd[ii], i)
		P[ii] = tv1 * tv2
	}
	return
}

// GradSimplex2DP evaluates the (r,s) derivatives of the orthonormal (id,jd)
// simplex polynomial at (R,S).
func GradSimplex2DP(R, S utils.Vector, id, jd int) (ddr, dds []float64) {
	var (
		A, B   = RStoAB(R, S)
		ad, bd = A.Data(), B.Data()
	)
	fa := JacobiP(A, 0, 0, id)
	dfa := GradJacobiP(A, 0, 0, id)
	gb := JacobiP(B, 2*float64(id)+1, 0, jd)
	dgb := GradJacobiP(B, 2*float64(id)+1, 0, jd)
	// r-derivative
	// d/dr = da/dr d/da + db/dr d/db = (2/(1-s)) d/da = (2/(1-B)) d/da
	ddr = make([]float64, len(gb))
	for i := range ddr {
		ddr[i] = dfa[i] * gb[i]
		if id > 0 {
			ddr[i] *= pow(0.5*(1-bd[i]), id-1)
		}
		// Normalize
		ddr[i] *= math.Pow(2, float64(id)+0.5)
	}
	// s-derivative
	// d/ds = ((1+A)/2)/((1-B)/2) d/da + d/db
	dds = make([]float64, len(gb))
	for i := range dds {
		dds[i] = 0.5 * dfa[i] * gb[i] * (1 + ad[i])
		if id > 0 {
			dds[i] *= pow(0.5*(1-bd[i]), id-1)
		}
		tmp := dgb[i] * pow(0.5*(1-bd[i]), id)
		if id > 0 {
			tmp -= 0.5 * float64(id) * gb[i] * pow(0.5*(1-bd[i]), id-1)
		}
		dds[i] += fa[i] * tmp
		// Normalize
		dds[i] *= math.Pow(2, float64(id)+0.5)
	}
	return
}

// RStoAB maps the (r,s) simplex coordinates to the (a,b) tensor coordinates
// used by the simplex basis.
func RStoAB(R, S utils.Vector) (a, b utils.Vector) {
	var (
		Np     = R.Len()
		rd, sd = R.Data(), S.Data()
	)
	ad, bd := make([]float64, Np), make([]float64, Np)
	for n, sval := range sd {
		if sval != 1 {
			ad[n] = 2*(1+rd[n])/(1-sval) - 1
		} else {
			ad[n] = -1
		}
		bd[n] = sval
	}
	a, b = utils.NewVector(Np, ad), utils.NewVector(Np, bd)
	return
}

func pow(x float64, p int) (r float64) {
	r = 1
	for i := 0; i < p; i++ {
		r *= x
	}
	return
}
