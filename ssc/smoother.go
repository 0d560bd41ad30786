package ssc

import (
	"fmt"
	"io"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/schwarz/kernels"
	"github.com/notargets/schwarz/space"
	"github.com/notargets/schwarz/transport"
	"github.com/notargets/schwarz/types"
	"github.com/notargets/schwarz/utils"
)

// State tracks the smoother lifecycle. Apply is only legal in Ready; SetUp
// moves Uninitialized (or stale) smoothers to Ready.
type State int

const (
	Uninitialized State = iota
	Ready
	Applying
)

func (s State) String() string {
	switch s {
	case Ready:
		return "Ready"
	case Applying:
		return "Applying"
	}
	return "Uninitialized"
}

// PatchSmoother is the fine-level half of the preconditioner: one small
// dense Cholesky solve per vertex patch, applied additively. Factorizations
// are cached against the operator version and rebuilt lazily when the
// operator is reassembled.
type PatchSmoother struct {
	fs      *space.FunctionSpace
	kernel  kernels.Kernel
	patches []DofPatch
	ops     []PatchOperator
	chols   []*mat.Cholesky

	builtVersion int64
	state        State
	mu           sync.Mutex

	// TolerateFailures keeps going when a patch factorization fails: the
	// offending patch is skipped and the failure recorded. When false, the
	// first failure aborts SetUp.
	TolerateFailures bool
	ParallelDegree   int

	exch     transport.Exchanger
	failures []error
}

// NewPatchSmoother compiles the form's element kernel and builds the patch
// dof bookkeeping. All structural rejections (mixed spaces, facet integrals,
// unsupported field ranks, degenerate topology) surface here; numeric work
// is deferred to SetUp.
func NewPatchSmoother(f kernels.Form, bcs []*space.DirichletBC) (sm *PatchSmoother, err error) {
	var (
		fs = f.Test
		k  kernels.Kernel
	)
	if k, err = kernels.Compile(f); err != nil {
		return
	}
	sm = &PatchSmoother{
		fs:             fs,
		kernel:         k,
		ParallelDegree: runtime.NumCPU(),
		exch:           transport.NewSequential(fs.Size(), fs.BlockSize()),
	}
	if sm.patches, err = BuildDofPatches(fs, space.GatherBCDofs(bcs)); err != nil {
		sm = nil
	}
	return
}

// SetUp assembles and factorizes the patch operators for the given global
// operator. Calling it again with the same operator version is a no-op;
// a bumped version triggers a full rebuild.
func (sm *PatchSmoother) SetUp(op *Operator) (err error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if op.Space != sm.fs {
		err = &types.ConfigurationError{What: "operator was assembled on a different function space"}
		return
	}
	if sm.state == Ready && sm.builtVersion == op.Version {
		return
	}
	if sm.ops, err = BuildPatchOperators(sm.patches, sm.kernel, sm.fs); err != nil {
		return
	}
	sm.chols = make([]*mat.Cholesky, len(sm.ops))
	sm.failures = sm.failures[:0]
	for pi := range sm.ops {
		if sm.ops[pi].Skip {
			continue
		}
		var (
			A     = sm.ops[pi].Mat
			n, _  = A.Dims()
			chol  = &mat.Cholesky{}
			local = mat.NewSymDense(n, nil)
		)
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				local.SetSym(i, j, A.At(i, j))
			}
		}
		if ok := chol.Factorize(local); !ok {
			perr := &types.SingularPatchError{
				Patch: sm.patches[pi].Vertex,
				What:  "local operator is not positive definite",
			}
			if !sm.TolerateFailures {
				err = perr
				sm.state = Uninitialized
				return
			}
			sm.failures = append(sm.failures, perr)
			sm.ops[pi].Skip = true
			continue
		}
		sm.chols[pi] = chol
	}
	sm.builtVersion = op.Version
	sm.state = Ready
	return
}

// Apply computes the additive patch correction y = sum_p R_p^T A_p^-1 R_p x.
// Patches are processed by a pool of workers over contiguous patch buckets,
// each accumulating into a private vector; the private vectors are reduced
// and handed to the exchanger as the single synchronization point.
func (sm *PatchSmoother) Apply(x utils.Vector) (y utils.Vector, err error) {
	sm.mu.Lock()
	if sm.state != Ready {
		sm.mu.Unlock()
		err = &types.ConfigurationError{What: "smoother applied in state " + sm.state.String()}
		return
	}
	sm.state = Applying
	sm.mu.Unlock()
	defer func() {
		sm.mu.Lock()
		sm.state = Ready
		sm.mu.Unlock()
	}()

	var (
		n  = sm.fs.Size()
		bs = sm.fs.BlockSize()
		pm = utils.NewPartitionMap(sm.ParallelDegree, len(sm.patches))
		wg = sync.WaitGroup{}
	)
	y = utils.NewVector(n)
	acc := make([]utils.Vector, pm.ParallelDegree)
	for np := 0; np < pm.ParallelDegree; np++ {
		acc[np] = utils.NewVector(n)
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			pMin, pMax := pm.GetBucketRange(np)
			for pi := pMin; pi < pMax; pi++ {
				sm.applyPatch(pi, bs, x, acc[np])
			}
		}(np)
	}
	wg.Wait()
	dataY := y.Data()
	for np := 0; np < pm.ParallelDegree; np++ {
		for i, v := range acc[np].Data() {
			dataY[i] += v
		}
	}
	err = sm.exch.Accumulate(y)
	return
}

// applyPatch gathers the patch-local residual with boundary-fixed entries
// forced to zero, solves against the cached factorization and scatter-adds
// the free entries into acc.
func (sm *PatchSmoother) applyPatch(pi, bs int, x, acc utils.Vector) {
	if sm.ops[pi].Skip {
		return
	}
	var (
		p     = &sm.patches[pi]
		nl    = len(p.GlobalDofs) * bs
		b     = mat.NewVecDense(nl, nil)
		z     = mat.NewVecDense(nl, nil)
		dataX = x.Data()
		dataA = acc.Data()
	)
	for ld, gd := range p.GlobalDofs {
		if p.Boundary[ld] {
			continue
		}
		for c := 0; c < bs; c++ {
			b.SetVec(ld*bs+c, dataX[gd*bs+c])
		}
	}
	if err := sm.chols[pi].SolveVecTo(z, b); err != nil {
		// Factorization succeeded in SetUp, so the triangular solve cannot
		// fail; guard anyway.
		return
	}
	for ld, gd := range p.GlobalDofs {
		if p.Boundary[ld] {
			continue
		}
		for c := 0; c < bs; c++ {
			dataA[gd*bs+c] += z.AtVec(ld*bs + c)
		}
	}
	return
}

// Failures reports the patches skipped during the last SetUp when failure
// tolerance is on.
func (sm *PatchSmoother) Failures() []error { return sm.failures }

// View writes a one-screen summary of the smoother configuration.
func (sm *PatchSmoother) View(w io.Writer) {
	var skipped int
	for _, op := range sm.ops {
		if op.Skip {
			skipped++
		}
	}
	fmt.Fprintf(w, "PatchSmoother: %d vertex patches (%d skipped), state %s, operator version %d\n",
		len(sm.patches), skipped, sm.state, sm.builtVersion)
	fmt.Fprintf(w, "  space: %s\n", sm.fs)
	return
}
