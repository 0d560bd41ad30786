package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/schwarz/element"
	"github.com/notargets/schwarz/kernels"
	"github.com/notargets/schwarz/linsolve"
	"github.com/notargets/schwarz/mesh"
	"github.com/notargets/schwarz/space"
	"github.com/notargets/schwarz/ssc"
	"github.com/notargets/schwarz/types"
)

func TestUnitLoadVectorImposesBCValue(t *testing.T) {
	var (
		m       = mesh.NewMesh1D(0, 1, 4)
		el      = element.NewInterval(2)
		fs, err = space.NewFunctionSpace(m, el, types.ScalarShape())
	)
	assert.NoError(t, err)
	var (
		bcs  = []*space.DirichletBC{space.NewDirichletBC(fs, 2.5, 0)}
		form = kernels.NewForm(kernels.Laplace, fs)
	)
	op, err := ssc.AssembleOperator(form, bcs)
	assert.NoError(t, err)
	b, err := unitLoadVector(fs, bcs)
	assert.NoError(t, err)
	// Constrained entries carry the prescribed value, not zero
	for _, d := range bcs[0].Dofs {
		assert.Equal(t, 2.5, b.AtVec(d))
	}
	// Against the identity rows, the solve reproduces the boundary value
	x, status, _, err := linsolve.PCG(op.A, b, linsolve.Identity{}, 1.e-12, 100)
	assert.NoError(t, err)
	assert.True(t, status.Converged)
	for _, d := range bcs[0].Dofs {
		assert.InDelta(t, 2.5, x.AtVec(d), 1.e-10)
	}
	// Interior entries still see the unit source load
	assert.True(t, b.AtVec(1) > 0)
}

func TestRunSolveDefaults(t *testing.T) {
	sp := processSolveInput("")
	sp.Dimension = 1
	sp.MeshSize = 4
	sp.PolynomialOrder = 2
	assert.NoError(t, RunSolve(sp))
}
