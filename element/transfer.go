package element

import (
	"fmt"

	"github.com/notargets/schwarz/utils"
)

// TransferWeights computes the per-cell weight tensor W relating the coarse
// (degree-1) nodal basis to the fine element's dual basis. For a nodal fine
// element the dual functionals are point evaluations at the fine nodes, so W
// is the coarse nodal basis evaluated there composed with the coarse
// element's coefficient matrix (its inverse Vandermonde, applied inside
// EvalBasis). This is a change-of-basis projection, not nodal injection: the
// coarse and fine node sets do not nest.
//
// W has one row per fine basis function and one column per coarse basis
// function. Rows sum to one since the coarse basis is a partition of unity,
// which is what makes prolongation reproduce constants exactly.
func TransferWeights(fine Element) (W utils.Matrix) {
	var (
		coarse = fine.Coarse()
		Rf, Sf = fine.Nodes()
	)
	if coarse.Np() > fine.Np() {
		panic(fmt.Errorf("coarse element dimension %d exceeds fine element dimension %d",
			coarse.Np(), fine.Np()))
	}
	W = coarse.EvalBasis(Rf, Sf)
	return
}
