package ssc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/schwarz/linsolve"
	"github.com/notargets/schwarz/types"
	"github.com/notargets/schwarz/utils"
)

func TestSmootherFailureTolerance(t *testing.T) {
	// Inverting one cell makes the local operators of the two patches
	// touching it indefinite, so their Cholesky factorizations fail while
	// every other patch stays healthy
	var (
		fs, bcs, form, op = poissonSetup1D(t, 4, 2)
	)
	fs.Mesh.VX[2] = 0.1 // cell 1 now has negative length
	{ // Without tolerance the first failure aborts setup, tagged with the
		// patch id
		sm, err := NewPatchSmoother(form, bcs)
		assert.NoError(t, err)
		err = sm.SetUp(op)
		assert.Error(t, err)
		var patchErr *types.SingularPatchError
		assert.ErrorAs(t, err, &patchErr)
		assert.Equal(t, 1, patchErr.Patch)
		// The aborted smoother is left unusable
		_, err = sm.Apply(utils.NewVector(fs.Size()))
		assert.Error(t, err)
	}
	{ // With tolerance the failing patches are recorded and skipped, and the
		// apply proceeds on the healthy ones
		sm, err := NewPatchSmoother(form, bcs)
		assert.NoError(t, err)
		sm.TolerateFailures = true
		assert.NoError(t, sm.SetUp(op))
		assert.Equal(t, 2, len(sm.Failures()))
		var ids []int
		for _, ferr := range sm.Failures() {
			var patchErr *types.SingularPatchError
			assert.ErrorAs(t, ferr, &patchErr)
			ids = append(ids, patchErr.Patch)
		}
		assert.Equal(t, []int{1, 2}, ids)
		assert.True(t, sm.ops[1].Skip)
		assert.True(t, sm.ops[2].Skip)
		y, err := sm.Apply(utils.NewVector(fs.Size()).Set(1))
		assert.NoError(t, err)
		assert.True(t, y.Norm() > 0)
	}
}

func TestMultiplicativeComposition(t *testing.T) {
	var (
		fs, bcs, form, op = poissonSetup1D(t, 10, 3)
	)
	sm, err := NewPatchSmoother(form, bcs)
	assert.NoError(t, err)
	sm.ParallelDegree = 2
	cc, err := NewCoarseCorrection(form, bcs, linsolve.NewOptionsDB().Sub("lo_"))
	assert.NoError(t, err)
	mult := NewMultiplicative(sm, cc)
	{ // Apply before SetUp is rejected by the operator guard
		_, err = mult.Apply(utils.NewVector(fs.Size()))
		assert.Error(t, err)
	}
	assert.NoError(t, mult.SetUp(op))

	x := utils.NewVector(fs.Size())
	for i := 0; i < fs.Size(); i++ {
		x.SetVec(i, math.Sin(float64(i+1)))
	}
	// The second stage sees the residual updated by the first: the result is
	// exactly the smoother correction plus the coarse correction of x - A*z
	z1, err := sm.Apply(x)
	assert.NoError(t, err)
	r := x.Copy().Subtract(op.A.MulVec(z1))
	z2, err := cc.Apply(r)
	assert.NoError(t, err)
	want := z1.Copy().Add(z2)
	got, err := mult.Apply(x)
	assert.NoError(t, err)
	for i := 0; i < fs.Size(); i++ {
		assert.Equal(t, want.AtVec(i), got.AtVec(i))
	}
}

func TestCompositeTypeSelection(t *testing.T) {
	var (
		fs, bcs, form, op = poissonSetup1D(t, 10, 3)
		db                = linsolve.NewOptionsDB().
					Set("scp_composite_type", "multiplicative")
	)
	pc, err := New(form, bcs, db.Sub("scp_"))
	assert.NoError(t, err)
	assert.NoError(t, pc.SetUp(op))
	_, ok := pc.composite.(*Multiplicative)
	assert.True(t, ok)
	// The multiplicatively composed preconditioner still solves the model
	// problem; the quadratic solution is exact in a cubic space
	b := unitLoad(t, fs, bcs)
	x, status, _, err := linsolve.PCG(op.A, b, pc, 1.e-10, 100)
	assert.NoError(t, err)
	assert.True(t, status.Converged)
	X, _ := fs.NodeCoordinates()
	for i := 0; i < fs.Size(); i++ {
		assert.InDelta(t, X[i]*(1-X[i])/2, x.AtVec(i), 1.e-7)
	}
	// Unknown composition names are rejected at construction
	bad := linsolve.NewOptionsDB().Set("scp_composite_type", "jacobi")
	_, err = New(form, bcs, bad.Sub("scp_"))
	assert.Error(t, err)
	var cfgErr *types.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}
