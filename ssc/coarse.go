package ssc

import (
	"fmt"
	"io"

	"github.com/notargets/schwarz/kernels"
	"github.com/notargets/schwarz/linsolve"
	"github.com/notargets/schwarz/space"
	"github.com/notargets/schwarz/types"
	"github.com/notargets/schwarz/utils"
)

// CoarseCorrection is the low-order half of the preconditioner: restrict the
// fine residual to the degree-1 space on the same mesh, solve the directly
// assembled coarse operator with a delegated backend, and prolong the
// correction back. The backend carries its own options namespace so the
// coarse solve is configured independently of the outer solver.
type CoarseCorrection struct {
	fine, coarse *space.FunctionSpace
	form         kernels.Form
	bcs          []*space.DirichletBC
	transfer     *Transfer
	backend      linsolve.Backend
	coarseBCDofs []bool // per coarse unknown

	builtVersion int64
	state        State
}

// NewCoarseCorrection builds the coarse space, the transfer operator and the
// delegated backend. The coarse operator itself is assembled lazily in SetUp.
func NewCoarseCorrection(f kernels.Form, bcs []*space.DirichletBC,
	ns *linsolve.Namespace) (cc *CoarseCorrection, err error) {
	cc = &CoarseCorrection{
		fine: f.Test,
		form: f,
		bcs:  bcs,
	}
	if cc.coarse, err = cc.fine.Coarse(); err != nil {
		cc = nil
		return
	}
	if cc.transfer, err = NewTransfer(cc.fine, cc.coarse); err != nil {
		cc = nil
		return
	}
	if cc.backend, err = linsolve.Create(ns); err != nil {
		cc = nil
	}
	return
}

// SetUp assembles the coarse operator directly on the degree-1 space (same
// bilinear form, boundary conditions projected onto the coarse space) and
// binds it to the backend. Reruns with an unchanged operator version are
// no-ops.
func (cc *CoarseCorrection) SetUp(op *Operator) (err error) {
	if op.Space != cc.fine {
		err = &types.ConfigurationError{What: "operator was assembled on a different function space"}
		return
	}
	if cc.state == Ready && cc.builtVersion == op.Version {
		return
	}
	var (
		coarseBCs = make([]*space.DirichletBC, len(cc.bcs))
		coarseOp  *Operator
	)
	for i, bc := range cc.bcs {
		coarseBCs[i] = space.NewDirichletBC(cc.coarse, bc.Value, bc.SubDomain)
	}
	cForm := cc.form
	cForm.Test, cForm.Trial = cc.coarse, cc.coarse
	if coarseOp, err = AssembleOperator(cForm, coarseBCs); err != nil {
		return
	}
	cc.coarseBCDofs = make([]bool, cc.coarse.Size())
	bs := cc.coarse.BlockSize()
	for _, d := range space.GatherBCDofs(coarseBCs) {
		for c := 0; c < bs; c++ {
			cc.coarseBCDofs[d*bs+c] = true
		}
	}
	cc.backend.SetOperator(coarseOp.A)
	cc.builtVersion = op.Version
	cc.state = Ready
	return
}

// Apply restricts, solves and prolongs. The restricted residual is zeroed at
// coarse boundary dofs so the identity rows of the coarse operator produce a
// zero correction there. Backend failures surface as SolverBackendFailure;
// nothing is partially applied.
func (cc *CoarseCorrection) Apply(x utils.Vector) (y utils.Vector, err error) {
	if cc.state != Ready {
		err = &types.ConfigurationError{What: "coarse correction applied before setup"}
		return
	}
	rc := cc.transfer.Restrict(x)
	data := rc.Data()
	for i, fixed := range cc.coarseBCDofs {
		if fixed {
			data[i] = 0
		}
	}
	yc, status := cc.backend.Solve(rc)
	if !status.Converged {
		err = &types.SolverBackendFailure{
			Namespace: cc.backend.Namespace(),
			Status:    status.Reason,
		}
		return
	}
	y = cc.transfer.Prolong(yc)
	return
}

// Transfer exposes the prolongation for testing and diagnostics.
func (cc *CoarseCorrection) Transfer() *Transfer { return cc.transfer }

// CoarseSpace exposes the degree-1 space the correction solves on.
func (cc *CoarseCorrection) CoarseSpace() *space.FunctionSpace { return cc.coarse }

// View writes a one-screen summary of the coarse level.
func (cc *CoarseCorrection) View(w io.Writer) {
	fmt.Fprintf(w, "CoarseCorrection: state %s, operator version %d, backend %q\n",
		cc.state, cc.builtVersion, cc.backend.Namespace())
	fmt.Fprintf(w, "  coarse %s\n", cc.coarse)
	return
}
