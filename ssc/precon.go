package ssc

import (
	"fmt"
	"io"
	"strconv"

	"github.com/notargets/schwarz/kernels"
	"github.com/notargets/schwarz/linsolve"
	"github.com/notargets/schwarz/space"
	"github.com/notargets/schwarz/types"
	"github.com/notargets/schwarz/utils"
)

// SubspaceCorrection is the assembled two-level preconditioner: a vertex
// patch smoother composed with a degree-1 coarse correction. Options under
// the given namespace configure it:
//
//	composite_type       additive (default) | multiplicative
//	sub_tolerate_failures  skip patches whose factorization fails
//	sub_parallel_degree    worker count for the patch sweep
//	lo_type, lo_rtol, ...  forwarded to the coarse-level backend
//
// It satisfies both the component Applier contract and the outer solver's
// Preconditioner contract.
type SubspaceCorrection struct {
	composite Applier
	smoother  *PatchSmoother
	coarse    *CoarseCorrection
	ns        *linsolve.Namespace
}

// New builds the preconditioner from the bilinear form, its boundary
// conditions and an options namespace. All structural validation happens
// here; numeric setup is deferred until SetUp sees an operator.
func New(f kernels.Form, bcs []*space.DirichletBC,
	ns *linsolve.Namespace) (pc *SubspaceCorrection, err error) {
	pc = &SubspaceCorrection{ns: ns}
	if pc.smoother, err = NewPatchSmoother(f, bcs); err != nil {
		pc = nil
		return
	}
	sub := ns.Sub("sub_")
	if tol, perr := strconv.ParseBool(sub.GetString("tolerate_failures", "false")); perr == nil {
		pc.smoother.TolerateFailures = tol
	}
	if pd := sub.GetInt("parallel_degree", 0); pd > 0 {
		pc.smoother.ParallelDegree = pd
	}
	if pc.coarse, err = NewCoarseCorrection(f, bcs, ns.Sub("lo_")); err != nil {
		pc = nil
		return
	}
	switch ct := ns.GetString("composite_type", "additive"); ct {
	case "additive":
		pc.composite = NewAdditive(pc.smoother, pc.coarse)
	case "multiplicative":
		pc.composite = NewMultiplicative(pc.smoother, pc.coarse)
	default:
		err = types.ConfigErrorf("unknown composite_type %q", ct)
		pc = nil
	}
	return
}

// NewDefault builds the preconditioner with an empty options namespace.
func NewDefault(f kernels.Form, bcs []*space.DirichletBC) (*SubspaceCorrection, error) {
	return New(f, bcs, linsolve.NewOptionsDB().Sub("scp_"))
}

func (pc *SubspaceCorrection) SetUp(op *Operator) error {
	return pc.composite.SetUp(op)
}

func (pc *SubspaceCorrection) Apply(x utils.Vector) (utils.Vector, error) {
	return pc.composite.Apply(x)
}

// Smoother and Coarse expose the two levels for inspection.
func (pc *SubspaceCorrection) Smoother() *PatchSmoother  { return pc.smoother }
func (pc *SubspaceCorrection) Coarse() *CoarseCorrection { return pc.coarse }

func (pc *SubspaceCorrection) View(w io.Writer) {
	fmt.Fprintf(w, "SubspaceCorrection preconditioner, options prefix %q\n", pc.ns.Prefix())
	pc.composite.View(w)
	return
}

var _ linsolve.Preconditioner = (*SubspaceCorrection)(nil)
var _ Applier = (*SubspaceCorrection)(nil)
