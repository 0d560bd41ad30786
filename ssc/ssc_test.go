package ssc

import (
	"bytes"
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/schwarz/element"
	"github.com/notargets/schwarz/kernels"
	"github.com/notargets/schwarz/linsolve"
	"github.com/notargets/schwarz/mesh"
	"github.com/notargets/schwarz/space"
	"github.com/notargets/schwarz/types"
	"github.com/notargets/schwarz/utils"
)

func poissonSetup1D(t *testing.T, K, N int) (fs *space.FunctionSpace,
	bcs []*space.DirichletBC, form kernels.Form, op *Operator) {
	var (
		m   = mesh.NewMesh1D(0, 1, K)
		el  = element.NewInterval(N)
		err error
	)
	fs, err = space.NewFunctionSpace(m, el, types.ScalarShape())
	assert.NoError(t, err)
	bcs = []*space.DirichletBC{space.NewDirichletBC(fs, 0, 0)}
	form = kernels.NewForm(kernels.Laplace, fs)
	op, err = AssembleOperator(form, bcs)
	assert.NoError(t, err)
	return
}

func TestDofPatches1D(t *testing.T) {
	var (
		K, N          = 10, 3
		fs, bcs, _, _ = poissonSetup1D(t, K, N)
	)
	patches, err := BuildDofPatches(fs, space.GatherBCDofs(bcs))
	assert.NoError(t, err)
	assert.Equal(t, K+1, len(patches))
	{ // An interior patch unions the dofs of its two cells: 2*(N+1)-1 = 7,
		// with the two far endpoints eliminated, leaving 5 free
		p := patches[5]
		assert.Equal(t, []int{4, 5}, p.Cells)
		assert.Equal(t, 2*(N+1)-1, len(p.GlobalDofs))
		assert.Equal(t, 5, p.NumFree)
		// The eliminated dofs are the patch endpoints 4*N and 6*N
		for i, d := range p.GlobalDofs {
			if d == 4*N || d == 6*N {
				assert.True(t, p.Boundary[i])
			} else {
				assert.False(t, p.Boundary[i])
			}
		}
	}
	{ // A boundary patch has one cell; the global Dirichlet dof and the far
		// endpoint are both eliminated
		p := patches[0]
		assert.Equal(t, []int{0}, p.Cells)
		assert.Equal(t, N+1, len(p.GlobalDofs))
		assert.Equal(t, N-1, p.NumFree)
	}
	{ // The union of free dofs across patches is exactly the global free set
		free := make(map[int]bool)
		for _, p := range patches {
			for _, d := range p.FreeDofs() {
				free[d] = true
			}
		}
		var freeList []int
		for d := range free {
			freeList = append(freeList, d)
		}
		sort.Ints(freeList)
		var want []int
		for d := 1; d < K*N; d++ {
			want = append(want, d)
		}
		assert.Equal(t, want, freeList)
	}
}

func TestDofPatchesIsolatedVertex(t *testing.T) {
	var (
		fs, bcs, _, _ = poissonSetup1D(t, 2, 2)
	)
	// Graft an extra vertex with no incident cells onto the mesh
	fs.Mesh.NumVerts++
	_, err := BuildDofPatches(fs, space.GatherBCDofs(bcs))
	assert.Error(t, err)
	var topoErr *types.TopologyError
	assert.ErrorAs(t, err, &topoErr)
	assert.Equal(t, fs.Mesh.NumVerts-1, topoErr.Vertex)
}

func TestPatchOperators(t *testing.T) {
	var (
		fs, bcs, form, _ = poissonSetup1D(t, 10, 3)
	)
	k, err := kernels.Compile(form)
	assert.NoError(t, err)
	patches, err := BuildDofPatches(fs, space.GatherBCDofs(bcs))
	assert.NoError(t, err)
	ops, err := BuildPatchOperators(patches, k, fs)
	assert.NoError(t, err)
	for pi, po := range ops {
		assert.False(t, po.Skip)
		assert.True(t, po.Mat.IsSymmetric(1.e-10))
		// Eliminated rows carry exactly the unit diagonal
		n, _ := po.Mat.Dims()
		for ld, fixed := range patches[pi].Boundary {
			if !fixed {
				continue
			}
			for j := 0; j < n; j++ {
				want := 0.0
				if j == ld {
					want = 1.0
				}
				assert.InDelta(t, want, po.Mat.At(ld, j), 1.e-14)
				assert.InDelta(t, want, po.Mat.At(j, ld), 1.e-14)
			}
		}
	}
}

func TestDegeneratePatchSkipped(t *testing.T) {
	// Degree 1: a boundary vertex patch loses its only dofs to elimination
	// (the global Dirichlet dof plus the far endpoint), so it must be skipped
	// without an error
	var (
		fs, bcs, form, op = poissonSetup1D(t, 4, 1)
	)
	sm, err := NewPatchSmoother(form, bcs)
	assert.NoError(t, err)
	assert.Equal(t, 0, sm.patches[0].NumFree)
	assert.NoError(t, sm.SetUp(op))
	assert.True(t, sm.ops[0].Skip)
	assert.Nil(t, sm.chols[0])
	x := utils.NewVector(fs.Size()).Set(1)
	y, err := sm.Apply(x)
	assert.NoError(t, err)
	// The skipped patch contributed nothing at the Dirichlet dof
	assert.Equal(t, 0.0, y.AtVec(0))
}

func TestGlobalOperator(t *testing.T) {
	var (
		fs, bcs, _, op = poissonSetup1D(t, 10, 3)
	)
	{ // Constrained rows are identity rows
		for _, d := range space.GatherBCDofs(bcs) {
			for j := 0; j < fs.Size(); j++ {
				want := 0.0
				if j == d {
					want = 1.0
				}
				assert.InDelta(t, want, op.A.At(d, j), 1.e-14)
				assert.InDelta(t, want, op.A.At(j, d), 1.e-14)
			}
		}
	}
	{ // SPD on the free set: x'Ax > 0 for a generic nonzero free vector
		x := utils.NewVector(fs.Size())
		for i := 1; i < fs.Size()-1; i++ {
			x.SetVec(i, math.Sin(float64(3*i)))
		}
		assert.True(t, x.Dot(op.A.MulVec(x)) > 0)
	}
}

func TestTransfer1D(t *testing.T) {
	var (
		fs, _, _, _ = poissonSetup1D(t, 10, 3)
	)
	coarse, err := fs.Coarse()
	assert.NoError(t, err)
	tr, err := NewTransfer(fs, coarse)
	assert.NoError(t, err)
	{ // Prolongation of the coarse linear x reproduces fine node coordinates
		Xc, _ := coarse.NodeCoordinates()
		Xf, _ := fs.NodeCoordinates()
		xf := tr.Prolong(utils.NewVector(coarse.Size(), Xc))
		for i := 0; i < fs.Size(); i++ {
			assert.InDelta(t, Xf[i], xf.AtVec(i), 1.e-12)
		}
	}
	{ // Restriction is the transpose of prolongation, entry for entry
		x := utils.NewVector(fs.Size())
		for i := 0; i < fs.Size(); i++ {
			x.SetVec(i, math.Cos(float64(i)))
		}
		r1 := tr.Restrict(x)
		r2 := tr.T.MulTransposeVec(x)
		for j := 0; j < coarse.Size(); j++ {
			assert.Equal(t, r2.AtVec(j), r1.AtVec(j))
		}
	}
}

func TestTransferRejectsMismatch(t *testing.T) {
	var (
		fs, _, _, _ = poissonSetup1D(t, 4, 2)
	)
	other, err := space.NewFunctionSpace(mesh.NewMesh1D(0, 1, 4),
		element.NewInterval(1), types.VectorShape(2))
	assert.NoError(t, err)
	_, err = NewTransfer(fs, other)
	assert.Error(t, err)
	var cfgErr *types.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestSmootherStateMachine(t *testing.T) {
	var (
		_, bcs, form, op = poissonSetup1D(t, 6, 2)
	)
	sm, err := NewPatchSmoother(form, bcs)
	assert.NoError(t, err)
	{ // Apply before SetUp is rejected
		_, err = sm.Apply(utils.NewVector(op.Space.Size()))
		assert.Error(t, err)
	}
	assert.NoError(t, sm.SetUp(op))
	assert.Equal(t, Ready, sm.state)
	{ // Re-setup with the same version is a cheap no-op
		assert.NoError(t, sm.SetUp(op))
	}
	{ // A bumped operator version forces a rebuild
		op.Bump()
		assert.NoError(t, sm.SetUp(op))
		assert.Equal(t, op.Version, sm.builtVersion)
	}
	{ // A foreign space is rejected
		_, _, _, op2 := poissonSetup1D(t, 6, 2)
		assert.Error(t, sm.SetUp(op2))
	}
}

func TestAdditiveComposition(t *testing.T) {
	var (
		fs, bcs, form, op = poissonSetup1D(t, 10, 3)
		ns                = linsolve.NewOptionsDB().Sub("scp_")
	)
	sm, err := NewPatchSmoother(form, bcs)
	assert.NoError(t, err)
	sm.ParallelDegree = 2
	cc, err := NewCoarseCorrection(form, bcs, ns.Sub("lo_"))
	assert.NoError(t, err)
	add := NewAdditive(sm, cc)
	assert.NoError(t, add.SetUp(op))

	x := utils.NewVector(fs.Size())
	for i := 0; i < fs.Size(); i++ {
		x.SetVec(i, math.Sin(float64(i+1)))
	}
	// The additive result is exactly the sum of the component applications
	z1, err := sm.Apply(x)
	assert.NoError(t, err)
	z2, err := cc.Apply(x)
	assert.NoError(t, err)
	want := z1.Copy().Add(z2)
	got, err := add.Apply(x)
	assert.NoError(t, err)
	for i := 0; i < fs.Size(); i++ {
		assert.Equal(t, want.AtVec(i), got.AtVec(i))
	}
}

func TestPreconditionerSymmetry(t *testing.T) {
	var (
		fs, bcs, form, op = poissonSetup1D(t, 8, 3)
	)
	pc, err := NewDefault(form, bcs)
	assert.NoError(t, err)
	assert.NoError(t, pc.SetUp(op))
	var (
		r1 = utils.NewVector(fs.Size())
		r2 = utils.NewVector(fs.Size())
	)
	for i := 0; i < fs.Size(); i++ {
		r1.SetVec(i, math.Sin(float64(i+1)))
		r2.SetVec(i, math.Cos(float64(2*i+1)))
	}
	z1, err := pc.Apply(r2)
	assert.NoError(t, err)
	z2, err := pc.Apply(r1)
	assert.NoError(t, err)
	// r1' M r2 == r2' M r1 for a symmetric preconditioner
	assert.InDelta(t, r1.Dot(z1), r2.Dot(z2), 1.e-10*math.Abs(r1.Dot(z1)))
}

func TestCoarseBackendFailure(t *testing.T) {
	var (
		_, bcs, form, op = poissonSetup1D(t, 6, 2)
		db               = linsolve.NewOptionsDB().
					Set("lo_type", "cg").
					Set("lo_max_it", "0")
	)
	cc, err := NewCoarseCorrection(form, bcs, db.Sub("lo_"))
	assert.NoError(t, err)
	assert.NoError(t, cc.SetUp(op))
	_, err = cc.Apply(utils.NewVector(op.Space.Size()).Set(1))
	assert.Error(t, err)
	var backendErr *types.SolverBackendFailure
	assert.ErrorAs(t, err, &backendErr)
	assert.Equal(t, "lo_", backendErr.Namespace)
}

func TestView(t *testing.T) {
	var (
		_, bcs, form, op = poissonSetup1D(t, 6, 2)
	)
	pc, err := NewDefault(form, bcs)
	assert.NoError(t, err)
	assert.NoError(t, pc.SetUp(op))
	var buf bytes.Buffer
	pc.View(&buf)
	assert.Contains(t, buf.String(), "PatchSmoother")
	assert.Contains(t, buf.String(), "CoarseCorrection")
}
