// Package ssc implements a two-level additive Schwarz (subspace correction)
// preconditioner for high-order Lagrange discretizations: small dense solves
// on per-vertex patches plus a global low-order coarse correction, exposed
// to an outer Krylov solver as a single Apply operator.
package ssc

import (
	"github.com/notargets/schwarz/space"
	"github.com/notargets/schwarz/types"
	"github.com/notargets/schwarz/utils"
)

// DofPatch is the dof bookkeeping of one vertex patch: the ordered global
// scalar dofs participating in the patch, a parallel marker array flagging
// boundary-fixed dofs (global Dirichlet or patch-boundary), and the
// per-cell-node local index map the element kernel scatters through.
type DofPatch struct {
	Vertex     int
	Cells      []int
	GlobalDofs utils.Index // patch-local -> global scalar dof
	Boundary   []bool      // parallel to GlobalDofs
	LocalDofs  []int       // cell-node -> patch-local dof, Np entries per cell
	NumFree    int
}

// BuildDofPatches converts the mesh's vertex-patch topology, the space's
// cell->dof connectivity and the global boundary-dof set into per-patch
// local numberings. Patches overlap; the union of all patches' free dofs
// covers the global free-dof set, and every globally constrained dof is
// marked boundary-fixed in every patch containing it.
func BuildDofPatches(fs *space.FunctionSpace, bcDofs utils.Index) (patches []DofPatch, err error) {
	if err = fs.Shape.Validate(); err != nil {
		return
	}
	var (
		pt   = fs.Mesh.VertexPatches()
		np   = fs.Element.Np()
		isBC = make([]bool, fs.NumDofs)
	)
	for _, d := range bcDofs {
		isBC[d] = true
	}
	patches = make([]DofPatch, 0, fs.Mesh.NumVerts)
	for v := 0; v < fs.Mesh.NumVerts; v++ {
		var (
			cells = pt.Cells.Slice(v)
			p     = DofPatch{Vertex: v}
			local = make(map[int]int)
		)
		if len(cells) == 0 {
			err = &types.TopologyError{Vertex: v, What: "patch has zero incident cells"}
			return
		}
		p.Cells = cells
		p.LocalDofs = make([]int, 0, len(cells)*np)
		for _, k := range cells {
			for _, d := range fs.CellDofs[k] {
				ld, seen := local[d]
				if !seen {
					ld = len(p.GlobalDofs)
					local[d] = ld
					p.GlobalDofs = append(p.GlobalDofs, d)
					p.Boundary = append(p.Boundary, isBC[d])
				}
				p.LocalDofs = append(p.LocalDofs, ld)
			}
		}
		// Dofs on the patch boundary couple to neighboring cells and are
		// eliminated to keep the local solve decoupled and well posed.
		for _, f := range pt.Facets.Slice(v) {
			for _, d := range fs.FacetDofs(f) {
				if ld, seen := local[d]; seen {
					p.Boundary[ld] = true
				}
			}
		}
		for _, fixed := range p.Boundary {
			if !fixed {
				p.NumFree++
			}
		}
		patches = append(patches, p)
	}
	return
}

// FreeDofs lists the global scalar dofs of the patch that are not
// boundary-fixed.
func (p *DofPatch) FreeDofs() (I utils.Index) {
	for i, d := range p.GlobalDofs {
		if !p.Boundary[i] {
			I = append(I, d)
		}
	}
	return
}
