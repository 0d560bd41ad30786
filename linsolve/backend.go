package linsolve

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/schwarz/types"
	"github.com/notargets/schwarz/utils"
)

// Status reports the outcome of a delegated solve. A failed backend never
// panics and never returns a partial answer silently: callers inspect
// Converged and translate failures into typed errors.
type Status struct {
	Converged  bool
	Iterations int
	Residual   float64
	Reason     string
}

// Backend is the contract of a delegated linear solver: bind an operator,
// solve against right-hand sides, and release factorization state on Reset.
// SetOperator invalidates any cached factorization.
type Backend interface {
	SetOperator(A utils.CSR)
	Solve(b utils.Vector) (x utils.Vector, status Status)
	Reset()
	Namespace() string
}

// Create builds the backend selected by the namespace's "type" option:
// "cholesky" (default) for a dense direct solve, "cg" for unpreconditioned
// conjugate gradients.
func Create(ns *Namespace) (b Backend, err error) {
	switch t := ns.GetString("type", "cholesky"); t {
	case "cholesky":
		b = &DenseCholesky{ns: ns}
	case "cg":
		b = &CG{
			ns:    ns,
			rtol:  ns.GetFloat("rtol", 1.e-10),
			maxIt: ns.GetInt("max_it", 1000),
		}
	default:
		err = types.ConfigErrorf("unknown solver type %q in namespace %q", t, ns.Prefix())
	}
	return
}

// DenseCholesky densifies the operator and solves by Cholesky factorization.
// Intended for the coarse level, whose dimension is the vertex count. The
// factorization is computed on first Solve and reused until SetOperator or
// Reset.
type DenseCholesky struct {
	ns   *Namespace
	A    utils.CSR
	chol *mat.Cholesky
	n    int
}

func (s *DenseCholesky) Namespace() string { return s.ns.Prefix() }

func (s *DenseCholesky) SetOperator(A utils.CSR) {
	s.A = A
	s.n, _ = A.Dims()
	s.chol = nil
}

func (s *DenseCholesky) Reset() { s.chol = nil }

func (s *DenseCholesky) Solve(b utils.Vector) (x utils.Vector, status Status) {
	if s.n == 0 {
		status.Reason = "no operator bound"
		return
	}
	if s.chol == nil {
		var (
			D   = s.A.ToDense()
			sym = mat.NewSymDense(s.n, nil)
		)
		for i := 0; i < s.n; i++ {
			for j := i; j < s.n; j++ {
				sym.SetSym(i, j, D.At(i, j))
			}
		}
		chol := &mat.Cholesky{}
		if ok := chol.Factorize(sym); !ok {
			status.Reason = "operator is not positive definite"
			return
		}
		s.chol = chol
	}
	var z mat.VecDense
	if err := s.chol.SolveVecTo(&z, b.V); err != nil {
		status.Reason = fmt.Sprintf("triangular solve failed: %v", err)
		return
	}
	x = utils.NewVector(s.n, z.RawVector().Data)
	status.Converged = true
	status.Iterations = 1
	return
}

// CG solves SPD systems by unpreconditioned conjugate gradients.
type CG struct {
	ns    *Namespace
	A     utils.CSR
	rtol  float64
	maxIt int
	n     int
}

func (s *CG) Namespace() string { return s.ns.Prefix() }

func (s *CG) SetOperator(A utils.CSR) {
	s.A = A
	s.n, _ = A.Dims()
}

func (s *CG) Reset() {}

func (s *CG) Solve(b utils.Vector) (x utils.Vector, status Status) {
	if s.n == 0 {
		status.Reason = "no operator bound"
		return
	}
	x = utils.NewVector(s.n)
	var (
		r     = b.Copy()
		p     = r.Copy()
		rr    = r.Dot(r)
		bnorm = b.Norm()
	)
	if bnorm == 0 {
		status.Converged = true
		return
	}
	for it := 0; it < s.maxIt; it++ {
		var (
			Ap    = s.A.MulVec(p)
			alpha = rr / p.Dot(Ap)
		)
		x.AXPY(alpha, p)
		r.AXPY(-alpha, Ap)
		rrNew := r.Dot(r)
		status.Iterations = it + 1
		status.Residual = r.Norm()
		if status.Residual <= s.rtol*bnorm {
			status.Converged = true
			return
		}
		p = p.Copy().Scale(rrNew / rr).Add(r)
		rr = rrNew
	}
	status.Reason = fmt.Sprintf("cg did not converge in %d iterations, residual %g", s.maxIt, status.Residual)
	return
}
