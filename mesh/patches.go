package mesh

import "sort"

// OffsetList is a CSR-style offset+value array pair: entity i owns
// Values[Offsets[i]:Offsets[i+1]].
type OffsetList struct {
	Offsets []int
	Values  []int
}

// Count returns the number of entities in the list.
func (o OffsetList) Count() int { return len(o.Offsets) - 1 }

// Slice returns the value range of entity i.
func (o OffsetList) Slice(i int) []int { return o.Values[o.Offsets[i]:o.Offsets[i+1]] }

// PatchTopology holds, per mesh vertex, the incident cells of its star and
// the facets on the star's boundary (facets of patch cells not containing
// the vertex). One vertex equals one patch.
type PatchTopology struct {
	Cells  OffsetList // vertex -> cells incident to the vertex
	Facets OffsetList // vertex -> facets on the patch boundary
}

// VertexPatches extracts the per-vertex patch topology. Every vertex gets a
// patch, including boundary vertices; degenerate vertices (no incident
// cells) surface as empty cell ranges for the caller to reject.
func (m *Mesh) VertexPatches() (pt PatchTopology) {
	var (
		cellsOf = make([][]int, m.NumVerts)
	)
	for k := 0; k < m.NumCells; k++ {
		for _, v := range m.EToV[k] {
			cellsOf[v] = append(cellsOf[v], k)
		}
	}
	pt.Cells.Offsets = make([]int, m.NumVerts+1)
	pt.Facets.Offsets = make([]int, m.NumVerts+1)
	for v := 0; v < m.NumVerts; v++ {
		pt.Cells.Offsets[v+1] = pt.Cells.Offsets[v] + len(cellsOf[v])
		pt.Cells.Values = append(pt.Cells.Values, cellsOf[v]...)

		boundary := m.patchBoundaryFacets(v, cellsOf[v])
		pt.Facets.Offsets[v+1] = pt.Facets.Offsets[v] + len(boundary)
		pt.Facets.Values = append(pt.Facets.Values, boundary...)
	}
	return
}

// patchBoundaryFacets lists the facets of the star of vertex v that do not
// contain v. Those facets separate the patch interior from neighboring
// cells (or the mesh exterior).
func (m *Mesh) patchBoundaryFacets(v int, cells []int) (facets []int) {
	var (
		seen = make(map[int]bool)
	)
	for _, k := range cells {
		for _, f := range m.EToF[k] {
			containsV := false
			for _, fv := range m.FToV[f] {
				if fv == v {
					containsV = true
					break
				}
			}
			if !containsV && !seen[f] {
				seen[f] = true
				facets = append(facets, f)
			}
		}
	}
	sort.Ints(facets)
	return
}
