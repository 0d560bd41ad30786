package kernels

import (
	"github.com/notargets/schwarz/space"
	"github.com/notargets/schwarz/types"
	"github.com/notargets/schwarz/utils"
)

// MatrixHandle is the accumulation target of an element kernel. Dense patch
// matrices and global sparse matrices both satisfy it.
type MatrixHandle interface {
	Add(i, j int, v float64)
}

// Kernel accumulates dense local element contributions over the cell range
// cells[cellStart:cellEnd]. The scalar dofs of the c-th cell in the range
// occupy rowMap[c*Np:(c+1)*Np] (likewise colMap); entries are scattered at
// those offsets expanded by the field block size. coords and coordMap are
// the vertex coordinate buffer and cell->vertex map of the mesh.
type Kernel func(cellStart, cellEnd int, cells []int, out MatrixHandle,
	rowMap, colMap []int, coords []float64, coordMap [][]int)

// OperatorKind selects the bilinear form's integrand.
type OperatorKind int

const (
	Laplace OperatorKind = iota // grad(u) . grad(v)
	Mass                        // u * v
)

// IntegralType classifies where a form's integral lives.
type IntegralType string

const (
	CellIntegral          IntegralType = "cell"
	ExteriorFacetIntegral IntegralType = "exterior_facet"
	InteriorFacetIntegral IntegralType = "interior_facet"
)

// Form is the bilinear-form specification handed to the kernel provider.
type Form struct {
	Operator        OperatorKind
	Integral        IntegralType
	Oriented        bool
	NumCoefficients int
	Test, Trial     *space.FunctionSpace
}

// NewForm builds the default cell-integral form a(u,v) on a single space.
func NewForm(op OperatorKind, V *space.FunctionSpace) Form {
	return Form{
		Operator: op,
		Integral: CellIntegral,
		Test:     V,
		Trial:    V,
	}
}

// Distinct classification errors for rejected form structures.
var (
	ErrMixedSpaces          = &types.ConfigurationError{What: "form has mixed function spaces"}
	ErrNonCellIntegral      = &types.ConfigurationError{What: "form has non-cell integrals"}
	ErrOrientedFacets       = &types.ConfigurationError{What: "form requires oriented facets"}
	ErrExternalCoefficients = &types.ConfigurationError{What: "form has external coefficients"}
)

// Compile validates the form structure and returns the element kernel. All
// rejections happen here, at construction; the returned kernel never fails.
func Compile(f Form) (k Kernel, err error) {
	switch {
	case f.Test != f.Trial:
		err = ErrMixedSpaces
	case f.Integral != CellIntegral:
		err = ErrNonCellIntegral
	case f.Oriented:
		err = ErrOrientedFacets
	case f.NumCoefficients != 0:
		err = ErrExternalCoefficients
	}
	if err != nil {
		return
	}
	if err = f.Test.Shape.Validate(); err != nil {
		return
	}
	var (
		el = f.Test.Element
		bs = f.Test.BlockSize()
	)
	switch el.Dim() {
	case 1:
		k = kernel1D(f.Operator, el, bs)
	case 2:
		k = kernel2D(f.Operator, el, bs)
	default:
		err = types.ConfigErrorf("unsupported element dimension %d", el.Dim())
	}
	return
}

// scatter adds the dense cell matrix Ke into out through the scalar index
// maps, expanded by block size. Vector fields get one uncoupled block per
// component.
func scatter(out MatrixHandle, Ke utils.Matrix, rowMap, colMap []int, bs int) {
	var (
		np, _ = Ke.Dims()
	)
	for i := 0; i < np; i++ {
		for j := 0; j < np; j++ {
			v := Ke.At(i, j)
			if v == 0 {
				continue
			}
			for c := 0; c < bs; c++ {
				out.Add(rowMap[i]*bs+c, colMap[j]*bs+c, v)
			}
		}
	}
	return
}
