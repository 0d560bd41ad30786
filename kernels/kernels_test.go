package kernels

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/schwarz/element"
	"github.com/notargets/schwarz/mesh"
	"github.com/notargets/schwarz/space"
	"github.com/notargets/schwarz/types"
	"github.com/notargets/schwarz/utils"
)

func TestFormClassification(t *testing.T) {
	var (
		m      = mesh.NewMesh1D(0, 1, 4)
		el     = element.NewInterval(2)
		fs, _  = space.NewFunctionSpace(m, el, types.ScalarShape())
		fs2, _ = space.NewFunctionSpace(m, el, types.ScalarShape())
	)
	{ // The default form compiles
		_, err := Compile(NewForm(Laplace, fs))
		assert.NoError(t, err)
	}
	{ // Mixed spaces are rejected with a distinct error
		f := NewForm(Laplace, fs)
		f.Trial = fs2
		_, err := Compile(f)
		assert.Equal(t, ErrMixedSpaces, err)
	}
	{ // Facet integrals are rejected
		f := NewForm(Laplace, fs)
		f.Integral = InteriorFacetIntegral
		_, err := Compile(f)
		assert.Equal(t, ErrNonCellIntegral, err)
	}
	{ // Oriented facets are rejected
		f := NewForm(Laplace, fs)
		f.Oriented = true
		_, err := Compile(f)
		assert.Equal(t, ErrOrientedFacets, err)
	}
	{ // External coefficients are rejected
		f := NewForm(Laplace, fs)
		f.NumCoefficients = 1
		_, err := Compile(f)
		assert.Equal(t, ErrExternalCoefficients, err)
	}
}

// denseSink accumulates kernel output into a dense matrix for inspection.
type denseSink struct {
	M utils.Matrix
}

func (s denseSink) Add(i, j int, v float64) { s.M.M.Set(i, j, s.M.At(i, j)+v) }

func assembleDense(t *testing.T, op OperatorKind, fs *space.FunctionSpace) utils.Matrix {
	k, err := Compile(NewForm(op, fs))
	assert.NoError(t, err)
	var (
		m      = fs.Mesh
		np     = fs.Element.Np()
		n      = fs.Size()
		sink   = denseSink{utils.NewMatrix(n, n)}
		cells  = make([]int, m.NumCells)
		dofMap = make([]int, m.NumCells*np)
	)
	for c := range cells {
		cells[c] = c
		copy(dofMap[c*np:(c+1)*np], fs.CellDofs[c])
	}
	k(0, m.NumCells, cells, sink, dofMap, dofMap, fs.Coords, fs.CoordMap)
	return sink.M
}

func TestKernel1D(t *testing.T) {
	var (
		m     = mesh.NewMesh1D(0, 2, 5)
		el    = element.NewInterval(3)
		fs, _ = space.NewFunctionSpace(m, el, types.ScalarShape())
	)
	{ // Laplace rows sum to zero (constants in the kernel of the operator)
		A := assembleDense(t, Laplace, fs)
		n, _ := A.Dims()
		for i := 0; i < n; i++ {
			var sum float64
			for j := 0; j < n; j++ {
				sum += A.At(i, j)
			}
			assert.True(t, math.Abs(sum) < 1.e-10)
		}
		assert.True(t, A.IsSymmetric(1.e-10))
	}
	{ // Mass matrix entries total the domain measure
		M := assembleDense(t, Mass, fs)
		var sum float64
		for _, v := range M.Data() {
			sum += v
		}
		assert.InDelta(t, 2, sum, 1.e-10)
	}
}

func TestKernel2D(t *testing.T) {
	var (
		m     = mesh.NewUnitSquare(3)
		el    = element.NewTriangle(2)
		fs, _ = space.NewFunctionSpace(m, el, types.ScalarShape())
	)
	{
		A := assembleDense(t, Laplace, fs)
		n, _ := A.Dims()
		for i := 0; i < n; i++ {
			var sum float64
			for j := 0; j < n; j++ {
				sum += A.At(i, j)
			}
			assert.True(t, math.Abs(sum) < 1.e-9)
		}
		assert.True(t, A.IsSymmetric(1.e-9))
	}
	{ // Unit square has unit measure
		M := assembleDense(t, Mass, fs)
		var sum float64
		for _, v := range M.Data() {
			sum += v
		}
		assert.InDelta(t, 1, sum, 1.e-9)
	}
}

func TestKernelBlockExpansion(t *testing.T) {
	var (
		m     = mesh.NewMesh1D(0, 1, 2)
		el    = element.NewInterval(1)
		fs, _ = space.NewFunctionSpace(m, el, types.VectorShape(2))
	)
	A := assembleDense(t, Laplace, fs)
	n, _ := A.Dims()
	assert.Equal(t, 2*fs.NumDofs, n)
	// Components do not couple: entries with mismatched component parity are zero
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if (i-j)%2 != 0 {
				assert.True(t, math.Abs(A.At(i, j)) < 1.e-14)
			}
		}
	}
	// Both component blocks carry the same scalar pattern
	for i := 0; i < fs.NumDofs; i++ {
		for j := 0; j < fs.NumDofs; j++ {
			assert.InDelta(t, A.At(2*i, 2*j), A.At(2*i+1, 2*j+1), 1.e-14)
		}
	}
}
