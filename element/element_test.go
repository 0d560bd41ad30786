package element

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/schwarz/utils"
)

func TestJacobi(t *testing.T) {
	{ // Gauss-Lobatto nodes include the endpoints and are symmetric
		X := JacobiGL(0, 0, 4)
		assert.True(t, near(X.AtVec(0), -1))
		assert.True(t, near(X.AtVec(4), 1))
		assert.True(t, nearZero(X.AtVec(2)))
		assert.True(t, near(X.AtVec(1), -X.AtVec(3)))
	}
	{ // Orthonormality of the Jacobi basis under Gauss quadrature
		X, W := JacobiGQ(0, 0, 6)
		for i := 0; i <= 3; i++ {
			for j := 0; j <= 3; j++ {
				var (
					pi  = JacobiP(X, 0, 0, i)
					pj  = JacobiP(X, 0, 0, j)
					sum float64
				)
				for q := 0; q < X.Len(); q++ {
					sum += W.AtVec(q) * pi[q] * pj[q]
				}
				if i == j {
					assert.True(t, near(sum, 1))
				} else {
					assert.True(t, nearZero(sum))
				}
			}
		}
	}
}

func TestInterval(t *testing.T) {
	var (
		el = NewInterval(3)
	)
	assert.Equal(t, 4, el.Np())
	{ // Mass matrix is SPD and integrates constants to the cell measure
		M := el.MassMatrix()
		assert.True(t, M.IsSymmetric(1.e-12))
		var sum float64
		for _, v := range M.Data() {
			sum += v
		}
		assert.True(t, near(sum, 2)) // reference cell is [-1,1]
	}
	{ // Derivative of a constant vanishes, of x is one
		ones := utils.NewVector(el.Np()).Set(1)
		d := el.Dr.MulVec(ones)
		for i := 0; i < el.Np(); i++ {
			assert.True(t, nearZero(d.AtVec(i)))
		}
		d = el.Dr.MulVec(el.R)
		for i := 0; i < el.Np(); i++ {
			assert.True(t, near(d.AtVec(i), 1))
		}
	}
	{ // Basis evaluation is a partition of unity anywhere in the cell
		pts := utils.NewVector(3, []float64{-0.7, 0.1, 0.99})
		B := el.EvalBasis(pts, utils.Vector{})
		for i := 0; i < 3; i++ {
			var sum float64
			for j := 0; j < el.Np(); j++ {
				sum += B.At(i, j)
			}
			assert.True(t, near(sum, 1))
		}
	}
}

func TestTriangle(t *testing.T) {
	var (
		el = NewTriangle(3)
	)
	assert.Equal(t, 10, el.Np())
	assert.Equal(t, 2, len(el.EdgeNodes[0]))
	assert.Equal(t, 1, len(el.InteriorNodes))
	{ // Vertex nodes sit at the reference corners
		R, S := el.Nodes()
		assert.True(t, near(R.AtVec(el.VertexNodes[0]), -1))
		assert.True(t, near(S.AtVec(el.VertexNodes[0]), -1))
		assert.True(t, near(R.AtVec(el.VertexNodes[1]), 1))
		assert.True(t, near(S.AtVec(el.VertexNodes[2]), 1))
	}
	{ // Mass matrix integrates constants to the reference area
		M := el.MassMatrix()
		assert.True(t, M.IsSymmetric(1.e-10))
		var sum float64
		for _, v := range M.Data() {
			sum += v
		}
		assert.True(t, near(sum, 2)) // reference triangle area
	}
	{ // Dr and Ds differentiate linears exactly
		R, S := el.Nodes()
		dr := el.Dr.MulVec(R)
		ds := el.Ds.MulVec(S)
		for i := 0; i < el.Np(); i++ {
			assert.True(t, near(dr.AtVec(i), 1))
			assert.True(t, near(ds.AtVec(i), 1))
		}
	}
}

func TestTransferWeights(t *testing.T) {
	{ // 1-D: rows are barycentric weights, each row sums to one
		W := TransferWeights(NewInterval(3))
		nr, nc := W.Dims()
		assert.Equal(t, 4, nr)
		assert.Equal(t, 2, nc)
		for i := 0; i < nr; i++ {
			var sum float64
			for j := 0; j < nc; j++ {
				sum += W.At(i, j)
			}
			assert.True(t, near(sum, 1))
		}
		// Endpoint fine nodes coincide with coarse nodes
		assert.True(t, near(W.At(0, 0), 1))
		assert.True(t, near(W.At(3, 1), 1))
	}
	{ // 2-D rows sum to one as well
		W := TransferWeights(NewTriangle(4))
		nr, nc := W.Dims()
		assert.Equal(t, 15, nr)
		assert.Equal(t, 3, nc)
		for i := 0; i < nr; i++ {
			var sum float64
			for j := 0; j < nc; j++ {
				sum += W.At(i, j)
			}
			assert.True(t, near(sum, 1))
		}
	}
}

func near(a, b float64) (l bool) {
	if math.Abs(a-b) < 1.e-08*math.Max(math.Abs(a), 1) {
		l = true
	}
	return
}

func nearZero(a float64) bool { return math.Abs(a) < 1.e-09 }
