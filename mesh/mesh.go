package mesh

import (
	"fmt"
	"sort"
)

// Mesh is a conforming simplex mesh: interval cells in 1-D, triangles in
// 2-D. Facets are vertices in 1-D and edges in 2-D. Topology is immutable
// once built.
type Mesh struct {
	Dim       int
	NumCells  int
	NumVerts  int
	NumFacets int

	VX, VY []float64 // vertex coordinates, VY is nil in 1-D

	EToV [][]int  // cell -> vertex ids
	EToF [][]int  // cell -> facet ids
	FToV [][]int  // facet -> vertex ids
	FToE [][2]int // facet -> adjacent cells, -1 marks the exterior

	BoundaryFacets []int

	// FacetTags optionally labels boundary facets with sub-domain ids for
	// boundary-condition selection. Untagged facets default to tag 1.
	FacetTags map[int]int
}

// NewMesh1D builds a uniform interval mesh of K cells on [xmin,xmax].
func NewMesh1D(xmin, xmax float64, K int) (m *Mesh) {
	if K < 1 {
		panic(fmt.Errorf("mesh must have at least one cell, have %d", K))
	}
	m = &Mesh{
		Dim:       1,
		NumCells:  K,
		NumVerts:  K + 1,
		NumFacets: K + 1,
	}
	m.VX = make([]float64, K+1)
	h := (xmax - xmin) / float64(K)
	for i := range m.VX {
		m.VX[i] = xmin + float64(i)*h
	}
	m.EToV = make([][]int, K)
	m.EToF = make([][]int, K)
	m.FToV = make([][]int, K+1)
	m.FToE = make([][2]int, K+1)
	for f := range m.FToE {
		m.FToE[f] = [2]int{-1, -1}
	}
	for k := 0; k < K; k++ {
		m.EToV[k] = []int{k, k + 1}
		m.EToF[k] = []int{k, k + 1} // facets coincide with vertices in 1-D
	}
	for v := 0; v < K+1; v++ {
		m.FToV[v] = []int{v}
		if v > 0 {
			m.FToE[v][0] = v - 1
		}
		if v < K {
			m.FToE[v][1] = v
		}
	}
	m.BoundaryFacets = []int{0, K}
	return
}

// NewUnitSquare builds a structured triangulation of the unit square with n
// quads per side, each split into two triangles: 2*n*n cells.
func NewUnitSquare(n int) (m *Mesh) {
	if n < 1 {
		panic(fmt.Errorf("mesh must have at least one quad per side, have %d", n))
	}
	var (
		nv  = (n + 1) * (n + 1)
		vid = func(i, j int) int { return j*(n+1) + i }
	)
	m = &Mesh{
		Dim:      2,
		NumCells: 2 * n * n,
		NumVerts: nv,
	}
	m.VX = make([]float64, nv)
	m.VY = make([]float64, nv)
	for j := 0; j <= n; j++ {
		for i := 0; i <= n; i++ {
			m.VX[vid(i, j)] = float64(i) / float64(n)
			m.VY[vid(i, j)] = float64(j) / float64(n)
		}
	}
	m.EToV = make([][]int, 0, m.NumCells)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			v00, v10 := vid(i, j), vid(i+1, j)
			v01, v11 := vid(i, j+1), vid(i+1, j+1)
			m.EToV = append(m.EToV, []int{v00, v10, v11})
			m.EToV = append(m.EToV, []int{v00, v11, v01})
		}
	}
	m.buildFacets2D()
	return
}

// buildFacets2D numbers the edges of a triangle mesh and fills EToF, FToV,
// FToE and the boundary facet list. Cell-local edge e connects local
// vertices (e, (e+1)%3).
func (m *Mesh) buildFacets2D() {
	type edgeKey [2]int
	var (
		edgeIDs = make(map[edgeKey]int)
		key     = func(a, b int) edgeKey {
			if a > b {
				a, b = b, a
			}
			return edgeKey{a, b}
		}
	)
	m.EToF = make([][]int, m.NumCells)
	for k := 0; k < m.NumCells; k++ {
		m.EToF[k] = make([]int, 3)
		for e := 0; e < 3; e++ {
			a, b := m.EToV[k][e], m.EToV[k][(e+1)%3]
			ek := key(a, b)
			f, exists := edgeIDs[ek]
			if !exists {
				f = len(edgeIDs)
				edgeIDs[ek] = f
				m.FToV = append(m.FToV, []int{ek[0], ek[1]})
				m.FToE = append(m.FToE, [2]int{-1, -1})
			}
			m.EToF[k][e] = f
			if m.FToE[f][0] == -1 {
				m.FToE[f][0] = k
			} else {
				m.FToE[f][1] = k
			}
		}
	}
	m.NumFacets = len(m.FToV)
	for f := 0; f < m.NumFacets; f++ {
		if m.FToE[f][1] == -1 {
			m.BoundaryFacets = append(m.BoundaryFacets, f)
		}
	}
	sort.Ints(m.BoundaryFacets)
	return
}

// CellSize returns a characteristic size of cell k (length in 1-D, twice the
// area in 2-D, which is the affine Jacobian determinant magnitude relative
// to the reference cell).
func (m *Mesh) CellSize(k int) (h float64) {
	switch m.Dim {
	case 1:
		h = m.VX[m.EToV[k][1]] - m.VX[m.EToV[k][0]]
	case 2:
		v := m.EToV[k]
		x0, y0 := m.VX[v[0]], m.VY[v[0]]
		x1, y1 := m.VX[v[1]], m.VY[v[1]]
		x2, y2 := m.VX[v[2]], m.VY[v[2]]
		h = (x1-x0)*(y2-y0) - (x2-x0)*(y1-y0)
	}
	return
}
