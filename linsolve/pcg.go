package linsolve

import (
	"fmt"
	"io"

	"github.com/notargets/schwarz/utils"
)

// Preconditioner is the operator contract the outer Krylov solver needs: a
// single application y = M^-1 * x. The subspace-correction preconditioner
// and its components all satisfy it.
type Preconditioner interface {
	Apply(x utils.Vector) (y utils.Vector, err error)
}

// PCG solves the SPD system A*x = b by preconditioned conjugate gradients.
// Convergence is declared on the true residual 2-norm relative to ||b||.
// The returned history holds one residual norm per iteration for
// mesh-independence studies.
func PCG(A utils.CSR, b utils.Vector, pc Preconditioner, rtol float64,
	maxIt int) (x utils.Vector, status Status, history []float64, err error) {
	var (
		n, _  = A.Dims()
		bnorm = b.Norm()
	)
	x = utils.NewVector(n)
	if bnorm == 0 {
		status.Converged = true
		return
	}
	var (
		r = b.Copy()
		z utils.Vector
		p utils.Vector
	)
	if z, err = pc.Apply(r); err != nil {
		return
	}
	p = z.Copy()
	rz := r.Dot(z)
	for it := 0; it < maxIt; it++ {
		var (
			Ap    = A.MulVec(p)
			alpha = rz / p.Dot(Ap)
		)
		x.AXPY(alpha, p)
		r.AXPY(-alpha, Ap)
		res := r.Norm()
		history = append(history, res)
		status.Iterations = it + 1
		status.Residual = res
		if res <= rtol*bnorm {
			status.Converged = true
			return
		}
		if z, err = pc.Apply(r); err != nil {
			return
		}
		rzNew := r.Dot(z)
		p = p.Copy().Scale(rzNew / rz).Add(z)
		rz = rzNew
	}
	status.Reason = fmt.Sprintf("pcg did not converge in %d iterations, residual %g", maxIt, status.Residual)
	return
}

// Identity is the no-op preconditioner, useful as a baseline.
type Identity struct{}

func (Identity) Apply(x utils.Vector) (utils.Vector, error) { return x.Copy(), nil }

// ReportHistory prints the per-iteration residual norms the way solver logs
// read: one line per iteration.
func ReportHistory(w io.Writer, history []float64) {
	for it, res := range history {
		fmt.Fprintf(w, "%4d KSP Residual norm %.12e\n", it, res)
	}
	return
}
