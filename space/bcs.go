package space

import (
	"sort"

	"github.com/notargets/schwarz/utils"
)

// DirichletBC is one strongly enforced boundary condition: a set of global
// scalar dofs, the prescribed value, and an optional sub-domain tag (0 means
// the whole boundary).
type DirichletBC struct {
	Dofs      utils.Index
	Value     float64
	SubDomain int
}

// NewDirichletBC gathers the dofs on boundary facets carrying the given
// sub-domain tag. Tag 0 selects the entire boundary; untagged meshes treat
// every boundary facet as tag 1.
func NewDirichletBC(fs *FunctionSpace, value float64, subDomain int) (bc *DirichletBC) {
	var (
		m    = fs.Mesh
		seen = make(map[int]bool)
		dofs utils.Index
	)
	for _, f := range m.BoundaryFacets {
		if subDomain != 0 && facetTag(m.FacetTags, f) != subDomain {
			continue
		}
		for _, d := range fs.FacetDofs(f) {
			if !seen[d] {
				seen[d] = true
				dofs = append(dofs, d)
			}
		}
	}
	sort.Ints(dofs)
	bc = &DirichletBC{
		Dofs:      dofs,
		Value:     value,
		SubDomain: subDomain,
	}
	return
}

func facetTag(tags map[int]int, f int) int {
	if tags == nil {
		return 1
	}
	if t, exists := tags[f]; exists {
		return t
	}
	return 1
}

// GatherBCDofs merges the dof sets of an ordered collection of boundary
// conditions into one sorted, unique index set.
func GatherBCDofs(bcs []*DirichletBC) (I utils.Index) {
	var (
		seen = make(map[int]bool)
	)
	for _, bc := range bcs {
		for _, d := range bc.Dofs {
			if !seen[d] {
				seen[d] = true
				I = append(I, d)
			}
		}
	}
	sort.Ints(I)
	return
}
