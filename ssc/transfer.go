package ssc

import (
	"math"

	"github.com/notargets/schwarz/element"
	"github.com/notargets/schwarz/space"
	"github.com/notargets/schwarz/types"
	"github.com/notargets/schwarz/utils"
)

// Transfer holds the global sparse prolongation from the low-order coarse
// space into the high-order fine space. Restriction is the algebraic
// transpose applied to the same matrix, never a separately assembled
// operator, so the two maps are exact duals by construction.
type Transfer struct {
	T            utils.CSR // NumDofs(fine) x NumDofs(coarse), scalar pattern
	fine, coarse *space.FunctionSpace
	bs           int
}

// NewTransfer assembles the prolongation by scattering the reference-element
// interpolation weights over every cell's fine/coarse dof pair. Overlapping
// cells write identical values for shared dofs because both spaces are
// continuous, so assembly uses insertion rather than accumulation.
func NewTransfer(fine, coarse *space.FunctionSpace) (tr *Transfer, err error) {
	if fine.Shape != coarse.Shape {
		err = &types.ConfigurationError{What: "fine and coarse spaces have different field shapes"}
		return
	}
	if fine.Mesh != coarse.Mesh {
		err = &types.ConfigurationError{What: "fine and coarse spaces live on different meshes"}
		return
	}
	if err = fine.Shape.Validate(); err != nil {
		return
	}
	var (
		W   = element.TransferWeights(fine.Element)
		dok = utils.NewDOK(fine.NumDofs, coarse.NumDofs)
		npf = fine.Element.Np()
		npc = coarse.Element.Np()
	)
	for k := 0; k < fine.Mesh.NumCells; k++ {
		var (
			fd = fine.CellDofs[k]
			cd = coarse.CellDofs[k]
		)
		for i := 0; i < npf; i++ {
			for j := 0; j < npc; j++ {
				w := W.At(i, j)
				if w == 0 {
					continue
				}
				dok.Set(fd[i], cd[j], w)
			}
		}
	}
	tr = &Transfer{
		T:      dok.ToCSR(),
		fine:   fine,
		coarse: coarse,
		bs:     fine.BlockSize(),
	}
	if err = tr.checkConstantReproduction(); err != nil {
		tr = nil
	}
	return
}

// Prolong maps a coarse vector into the fine space, xf = T * xc, applied
// component-wise for block (vector-valued) fields.
func (tr *Transfer) Prolong(xc utils.Vector) (xf utils.Vector) {
	xf = utils.NewVector(tr.fine.Size())
	var (
		df = xf.Data()
		dc = xc.Data()
	)
	tr.T.DoNonZero(func(i, j int, w float64) {
		for c := 0; c < tr.bs; c++ {
			df[i*tr.bs+c] += w * dc[j*tr.bs+c]
		}
	})
	return
}

// Restrict maps a fine residual into the coarse space, rc = transpose(T) * rf.
func (tr *Transfer) Restrict(rf utils.Vector) (rc utils.Vector) {
	rc = utils.NewVector(tr.coarse.Size())
	var (
		df = rf.Data()
		dc = rc.Data()
	)
	tr.T.DoNonZero(func(i, j int, w float64) {
		for c := 0; c < tr.bs; c++ {
			dc[j*tr.bs+c] += w * df[i*tr.bs+c]
		}
	})
	return
}

// checkConstantReproduction verifies that prolongation of the constant-one
// coarse field is exactly one at every fine dof, which a nodal interpolant
// between nested Lagrange spaces must satisfy to rounding.
func (tr *Transfer) checkConstantReproduction() (err error) {
	ones := utils.NewVector(tr.coarse.Size()).Set(1)
	xf := tr.Prolong(ones)
	for _, v := range xf.Data() {
		if math.Abs(v-1) > 1.e-12 {
			err = &types.TransferConsistencyError{
				What: "prolongation does not reproduce constants",
			}
			return
		}
	}
	return
}
