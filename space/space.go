package space

import (
	"fmt"
	"sort"

	"github.com/notargets/schwarz/element"
	"github.com/notargets/schwarz/mesh"
	"github.com/notargets/schwarz/types"
	"github.com/notargets/schwarz/utils"
)

// FunctionSpace is a continuous Lagrange function space over a mesh: a
// reference element, a global scalar dof numbering with a cell->dof
// connectivity table, and a field shape giving the block size. Vector-valued
// unknowns are stored interleaved: component c of scalar dof d lives at
// d*BlockSize+c.
type FunctionSpace struct {
	Mesh    *mesh.Mesh
	Element element.Element
	Shape   types.FieldShape

	NumDofs  int     // scalar dofs; total unknowns = NumDofs*BlockSize()
	CellDofs [][]int // cell -> global scalar dof ids in element node order

	// Coordinate data handed to element kernels.
	Coords   []float64 // vertex coordinates, dim-interleaved
	CoordMap [][]int   // cell -> vertex ids

	facetDofs [][]int // facet -> scalar dofs located on the facet closure
}

// NewFunctionSpace numbers the dofs of a degree-k Lagrange space on the
// mesh. Dof entities are numbered vertices first, then facet (edge)
// interiors, then cell interiors; shared-edge dofs are ordered along the
// edge from its lower-numbered global vertex so neighboring cells agree.
func NewFunctionSpace(m *mesh.Mesh, el element.Element, shape types.FieldShape) (fs *FunctionSpace, err error) {
	if err = shape.Validate(); err != nil {
		return
	}
	if m.Dim != el.Dim() {
		err = types.ConfigErrorf("mesh dimension %d does not match element dimension %d", m.Dim, el.Dim())
		return
	}
	fs = &FunctionSpace{
		Mesh:    m,
		Element: el,
		Shape:   shape,
	}
	switch m.Dim {
	case 1:
		fs.number1D()
	case 2:
		fs.number2D()
	default:
		err = types.ConfigErrorf("unsupported mesh dimension %d", m.Dim)
		return
	}
	fs.buildCoords()
	fs.buildFacetDofs()
	return
}

// BlockSize is the number of unknowns per scalar dof.
func (fs *FunctionSpace) BlockSize() int { return fs.Shape.BlockSize() }

// Size is the total number of unknowns.
func (fs *FunctionSpace) Size() int { return fs.NumDofs * fs.BlockSize() }

// Coarse builds the degree-1 space over the same mesh and field shape. Its
// scalar dof ids coincide with mesh vertex ids.
func (fs *FunctionSpace) Coarse() (cs *FunctionSpace, err error) {
	cs, err = NewFunctionSpace(fs.Mesh, fs.Element.Coarse(), fs.Shape)
	return
}

func (fs *FunctionSpace) number1D() {
	var (
		N = fs.Element.Degree()
		K = fs.Mesh.NumCells
	)
	fs.NumDofs = K*N + 1
	fs.CellDofs = make([][]int, K)
	for k := 0; k < K; k++ {
		dofs := make([]int, N+1)
		for i := 0; i <= N; i++ {
			dofs[i] = k*N + i
		}
		fs.CellDofs[k] = dofs
	}
	return
}

func (fs *FunctionSpace) number2D() {
	var (
		tri    = fs.Element.(*element.Triangle)
		m      = fs.Mesh
		N      = tri.Degree()
		perEdg = N - 1
		perInt = len(tri.InteriorNodes)
		vBase  = 0
		eBase  = m.NumVerts
		iBase  = m.NumVerts + m.NumFacets*perEdg
	)
	fs.NumDofs = iBase + m.NumCells*perInt
	fs.CellDofs = make([][]int, m.NumCells)
	for k := 0; k < m.NumCells; k++ {
		dofs := make([]int, tri.Np())
		for v := 0; v < 3; v++ {
			dofs[tri.VertexNodes[v]] = vBase + m.EToV[k][v]
		}
		for e := 0; e < 3; e++ {
			var (
				f        = m.EToF[k][e]
				ga       = m.EToV[k][element.EdgeVertices[e][0]]
				edgeBase = eBase + f*perEdg
				forward  = m.FToV[f][0] == ga // FToV is stored low-vertex first
			)
			for t, node := range tri.EdgeNodes[e] {
				if forward {
					dofs[node] = edgeBase + t
				} else {
					dofs[node] = edgeBase + perEdg - 1 - t
				}
			}
		}
		for t, node := range tri.InteriorNodes {
			dofs[node] = iBase + k*perInt + t
		}
		fs.CellDofs[k] = dofs
	}
	return
}

func (fs *FunctionSpace) buildCoords() {
	var (
		m = fs.Mesh
	)
	fs.CoordMap = m.EToV
	if m.Dim == 1 {
		fs.Coords = m.VX
		return
	}
	fs.Coords = make([]float64, 2*m.NumVerts)
	for v := 0; v < m.NumVerts; v++ {
		fs.Coords[2*v] = m.VX[v]
		fs.Coords[2*v+1] = m.VY[v]
	}
	return
}

// buildFacetDofs records, per facet, the scalar dofs on the facet's closure
// (its vertices plus its interior dofs). Used for boundary-condition and
// patch-boundary dof extraction.
func (fs *FunctionSpace) buildFacetDofs() {
	var (
		m = fs.Mesh
		N = fs.Element.Degree()
	)
	fs.facetDofs = make([][]int, m.NumFacets)
	switch m.Dim {
	case 1:
		// Facets are vertices, the facet dof is the vertex dof k*N.
		for f := 0; f < m.NumFacets; f++ {
			fs.facetDofs[f] = []int{f * N}
		}
	case 2:
		perEdg := N - 1
		for f := 0; f < m.NumFacets; f++ {
			dofs := []int{m.FToV[f][0], m.FToV[f][1]}
			for t := 0; t < perEdg; t++ {
				dofs = append(dofs, m.NumVerts+f*perEdg+t)
			}
			fs.facetDofs[f] = dofs
		}
	}
	return
}

// FacetDofs returns the scalar dofs on the closure of facet f.
func (fs *FunctionSpace) FacetDofs(f int) []int { return fs.facetDofs[f] }

// BoundaryDofs gathers the sorted, unique scalar dofs on the mesh boundary.
func (fs *FunctionSpace) BoundaryDofs() (I utils.Index) {
	var (
		seen = make(map[int]bool)
	)
	for _, f := range fs.Mesh.BoundaryFacets {
		for _, d := range fs.facetDofs[f] {
			if !seen[d] {
				seen[d] = true
				I = append(I, d)
			}
		}
	}
	sort.Ints(I)
	return
}

// NodeCoordinates evaluates the physical coordinates of every dof node via
// the affine map of each cell. Vector spaces share node coordinates across
// components. Used to interpolate boundary data and manufactured solutions.
func (fs *FunctionSpace) NodeCoordinates() (X, Y []float64) {
	var (
		m    = fs.Mesh
		R, S = fs.Element.Nodes()
	)
	X = make([]float64, fs.NumDofs)
	Y = make([]float64, fs.NumDofs)
	for k := 0; k < m.NumCells; k++ {
		for i, d := range fs.CellDofs[k] {
			r, s := R.AtVec(i), S.AtVec(i)
			switch m.Dim {
			case 1:
				x0 := m.VX[m.EToV[k][0]]
				x1 := m.VX[m.EToV[k][1]]
				X[d] = x0 + (r+1)/2*(x1-x0)
			case 2:
				v := m.EToV[k]
				l0 := -(r + s) / 2
				l1 := (r + 1) / 2
				l2 := (s + 1) / 2
				X[d] = l0*m.VX[v[0]] + l1*m.VX[v[1]] + l2*m.VX[v[2]]
				Y[d] = l0*m.VY[v[0]] + l1*m.VY[v[1]] + l2*m.VY[v[2]]
			}
		}
	}
	return
}

func (fs *FunctionSpace) String() string {
	return fmt.Sprintf("Lagrange space: dim=%d degree=%d dofs=%d block=%d",
		fs.Mesh.Dim, fs.Element.Degree(), fs.NumDofs, fs.BlockSize())
}
