package ssc

import (
	"github.com/notargets/schwarz/kernels"
	"github.com/notargets/schwarz/space"
	"github.com/notargets/schwarz/types"
	"github.com/notargets/schwarz/utils"
)

// Operator is an assembled global system matrix together with the space and
// boundary conditions it was built from. Version increments on every
// reassembly so derived setups (patch factorizations, coarse operators) can
// detect staleness and rebuild lazily.
type Operator struct {
	A       utils.CSR
	Space   *space.FunctionSpace
	BCs     []*space.DirichletBC
	Version int64
}

// bcFilter drops contributions touching constrained unknowns during
// assembly, the sparse equivalent of zeroing rows and columns afterwards.
type bcFilter struct {
	out  kernels.MatrixHandle
	isBC []bool // per scalar dof
	bs   int
}

func (h bcFilter) Add(i, j int, v float64) {
	if h.isBC[i/h.bs] || h.isBC[j/h.bs] {
		return
	}
	h.out.Add(i, j, v)
}

// AssembleOperator builds the global sparse operator of the form over the
// whole mesh, with Dirichlet rows and columns eliminated and replaced by the
// identity. The returned operator carries version 1; reassemble with Bump to
// invalidate caches.
func AssembleOperator(f kernels.Form, bcs []*space.DirichletBC) (op *Operator, err error) {
	var (
		fs = f.Test
		k  kernels.Kernel
	)
	if k, err = kernels.Compile(f); err != nil {
		return
	}
	var (
		n      = fs.Size()
		bs     = fs.BlockSize()
		m      = fs.Mesh
		np     = fs.Element.Np()
		dok    = utils.NewDOK(n, n)
		isBC   = make([]bool, fs.NumDofs)
		cells  = make([]int, m.NumCells)
		dofMap = make([]int, m.NumCells*np)
	)
	for _, d := range space.GatherBCDofs(bcs) {
		isBC[d] = true
	}
	for c := range cells {
		cells[c] = c
		copy(dofMap[c*np:(c+1)*np], fs.CellDofs[c])
	}
	k(0, m.NumCells, cells, bcFilter{dok, isBC, bs}, dofMap, dofMap,
		fs.Coords, fs.CoordMap)
	for d, fixed := range isBC {
		if fixed {
			for c := 0; c < bs; c++ {
				dok.Set(d*bs+c, d*bs+c, 1)
			}
		}
	}
	op = &Operator{
		A:       dok.ToCSR(),
		Space:   fs,
		BCs:     bcs,
		Version: 1,
	}
	return
}

// Bump marks the operator as reassembled, invalidating all version-stamped
// caches built from it.
func (op *Operator) Bump() { op.Version++ }

// PatchOperator is the dense local matrix of one patch after boundary
// elimination. Skip marks a degenerate patch with no free unknowns; it
// contributes zero in the smoother and is never factorized.
type PatchOperator struct {
	Mat  utils.Matrix
	Skip bool
}

// denseHandle adapts a writable dense matrix to the kernel accumulation
// interface.
type denseHandle struct {
	M utils.Matrix
}

func (h denseHandle) Add(i, j int, v float64) {
	h.M.M.Set(i, j, h.M.At(i, j)+v)
}

// BuildPatchOperators assembles the dense local operator of every patch by
// running the element kernel over the patch's cells with patch-local index
// maps, then eliminates boundary-fixed dofs by zeroing their rows and
// columns and placing a unit diagonal. Elimination keeps local and global
// indexing aligned without compaction.
func BuildPatchOperators(patches []DofPatch, k kernels.Kernel,
	fs *space.FunctionSpace) (ops []PatchOperator, err error) {
	var (
		bs = fs.BlockSize()
		np = fs.Element.Np()
	)
	ops = make([]PatchOperator, len(patches))
	for pi := range patches {
		var (
			p  = &patches[pi]
			nl = len(p.GlobalDofs) * bs
			A  = utils.NewMatrix(nl, nl)
		)
		if len(p.LocalDofs) != len(p.Cells)*np {
			err = &types.TopologyError{Vertex: p.Vertex,
				What: "patch local dof map is inconsistent with its cell list"}
			return
		}
		k(0, len(p.Cells), p.Cells, denseHandle{A}, p.LocalDofs, p.LocalDofs,
			fs.Coords, fs.CoordMap)
		for ld, fixed := range p.Boundary {
			if !fixed {
				continue
			}
			for c := 0; c < bs; c++ {
				r := ld*bs + c
				for j := 0; j < nl; j++ {
					A.M.Set(r, j, 0)
					A.M.Set(j, r, 0)
				}
				A.M.Set(r, r, 1)
			}
		}
		ops[pi] = PatchOperator{Mat: A, Skip: p.NumFree == 0}
	}
	return
}
