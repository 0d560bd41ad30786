package types

// FieldShape is the closed set of supported unknown-field shapes: scalar
// (rank 0) and vector (rank 1). Tensor-valued fields (rank >= 2) are
// unsupported and rejected at construction.
type FieldShape struct {
	Rank int
	Dim  int // number of components for rank 1, ignored for rank 0
}

func ScalarShape() FieldShape { return FieldShape{Rank: 0, Dim: 1} }

func VectorShape(dim int) FieldShape { return FieldShape{Rank: 1, Dim: dim} }

// BlockSize is the number of unknowns per scalar degree of freedom.
func (s FieldShape) BlockSize() int {
	if s.Rank == 0 {
		return 1
	}
	return s.Dim
}

// Validate rejects shapes outside the supported closed set.
func (s FieldShape) Validate() error {
	switch {
	case s.Rank < 0 || s.Rank > 1:
		return ConfigErrorf("unsupported field rank %d: only scalar (rank 0) and vector (rank 1) fields are supported", s.Rank)
	case s.Rank == 1 && s.Dim < 1:
		return ConfigErrorf("vector field must have at least one component, have %d", s.Dim)
	}
	return nil
}
