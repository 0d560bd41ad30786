package kernels

import (
	"github.com/notargets/schwarz/element"
	"github.com/notargets/schwarz/utils"
)

// kernel1D builds the interval cell kernel. The affine map to a cell of
// length h has Jacobian h/2, so the stiffness pulls back with 2/h and the
// mass with h/2.
func kernel1D(op OperatorKind, el element.Element, bs int) Kernel {
	var (
		np    = el.Np()
		mass  = el.MassMatrix()
		dr    = el.DMatrices()[0]
		stiff = dr.Transpose().Mul(mass).Mul(dr)
	)
	stiff.SetReadOnly("stiffRef")
	return func(cellStart, cellEnd int, cells []int, out MatrixHandle,
		rowMap, colMap []int, coords []float64, coordMap [][]int) {
		for c := cellStart; c < cellEnd; c++ {
			var (
				k  = cells[c]
				v  = coordMap[k]
				h  = coords[v[1]] - coords[v[0]]
				Ke utils.Matrix
			)
			switch op {
			case Laplace:
				Ke = stiff.Copy().Scale(2 / h)
			case Mass:
				Ke = mass.Copy().Scale(h / 2)
			}
			off := c * np
			scatter(out, Ke, rowMap[off:off+np], colMap[off:off+np], bs)
		}
	}
}

// kernel2D builds the triangle cell kernel for affine cells. Geometric
// factors are constant per cell, so the physical derivative matrices are
// constant combinations of Dr and Ds and the reference mass matrix
// integrates the products exactly.
func kernel2D(op OperatorKind, el element.Element, bs int) Kernel {
	var (
		np   = el.Np()
		mass = el.MassMatrix()
		ds   = el.DMatrices()
		Dr   = ds[0]
		Ds   = ds[1]
	)
	return func(cellStart, cellEnd int, cells []int, out MatrixHandle,
		rowMap, colMap []int, coords []float64, coordMap [][]int) {
		for c := cellStart; c < cellEnd; c++ {
			var (
				k  = cells[c]
				v  = coordMap[k]
				Ke utils.Matrix
			)
			x0, y0 := coords[2*v[0]], coords[2*v[0]+1]
			x1, y1 := coords[2*v[1]], coords[2*v[1]+1]
			x2, y2 := coords[2*v[2]], coords[2*v[2]+1]
			// x(r,s) = x0 + (r+1)/2*(x1-x0) + (s+1)/2*(x2-x0)
			xr, xs := (x1-x0)/2, (x2-x0)/2
			yr, ys := (y1-y0)/2, (y2-y0)/2
			detJ := xr*ys - xs*yr
			switch op {
			case Laplace:
				rx, ry := ys/detJ, -xs/detJ
				sx, sy := -yr/detJ, xr/detJ
				Dx := Dr.Copy().Scale(rx).Add(Ds.Copy().Scale(sx))
				Dy := Dr.Copy().Scale(ry).Add(Ds.Copy().Scale(sy))
				Ke = Dx.Transpose().Mul(mass).Mul(Dx).
					Add(Dy.Transpose().Mul(mass).Mul(Dy)).Scale(detJ)
			case Mass:
				Ke = mass.Copy().Scale(detJ)
			}
			off := c * np
			scatter(out, Ke, rowMap[off:off+np], colMap[off:off+np], bs)
		}
	}
}
