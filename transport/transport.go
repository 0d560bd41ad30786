// Package transport handles the movement of dof values between owners:
// accumulation of overlapping contributions and global-to-local index
// translation. The sequential exchanger covers single-process runs; the
// interface leaves room for a distributed implementation with the same
// contract.
package transport

import (
	"fmt"

	"github.com/notargets/schwarz/utils"
)

// Exchanger finalizes additive contributions to shared dofs and translates
// global dof numbers to the local numbering of this process. Accumulate is
// the single blocking point of a smoother application.
type Exchanger interface {
	Accumulate(v utils.Vector) error
	GlobalToLocal(global int) (local int, ok bool)
	Close()
}

// DatatypeKey identifies a derived exchange datatype by element scalar type
// and field block size. Two fields with the same key share one registered
// datatype.
type DatatypeKey struct {
	Scalar    string
	BlockSize int
}

// Datatype is the registered layout of one exchange unit: BlockSize scalars
// moved contiguously per shared dof.
type Datatype struct {
	Key    DatatypeKey
	Stride int // scalars per dof
}

// Sequential is the single-process exchanger. Every dof is locally owned, so
// GlobalToLocal is the identity and Accumulate only has to fold replica
// groups: sets of unknown indices that alias one logical dof (as arise when
// a caller works with duplicated storage).
type Sequential struct {
	numUnknowns int
	blockSize   int
	datatypes   map[DatatypeKey]Datatype
	replicas    [][]int
}

// NewSequential builds the exchanger for a field of numUnknowns total
// unknowns with the given block size, registering its datatype up front.
func NewSequential(numUnknowns, blockSize int) (s *Sequential) {
	s = &Sequential{
		numUnknowns: numUnknowns,
		blockSize:   blockSize,
		datatypes:   make(map[DatatypeKey]Datatype),
	}
	s.datatype(blockSize)
	return
}

// datatype returns the registered datatype for the block size, registering
// it on first use. The registry lives exactly as long as the exchanger;
// Close empties it.
func (s *Sequential) datatype(bs int) Datatype {
	key := DatatypeKey{Scalar: "float64", BlockSize: bs}
	dt, exists := s.datatypes[key]
	if !exists {
		dt = Datatype{Key: key, Stride: bs}
		s.datatypes[key] = dt
	}
	return dt
}

// AddReplicaGroup declares that the given unknown indices alias one logical
// dof and must agree after every Accumulate.
func (s *Sequential) AddReplicaGroup(indices []int) error {
	for _, i := range indices {
		if i < 0 || i >= s.numUnknowns {
			return fmt.Errorf("replica index %d out of range [0,%d)", i, s.numUnknowns)
		}
	}
	s.replicas = append(s.replicas, indices)
	return nil
}

// Accumulate sums the members of every replica group and writes the sum back
// to each member, leaving all aliases of a dof consistent.
func (s *Sequential) Accumulate(v utils.Vector) (err error) {
	if v.Len() != s.numUnknowns {
		err = fmt.Errorf("accumulate length %d does not match field size %d", v.Len(), s.numUnknowns)
		return
	}
	var (
		dt   = s.datatype(s.blockSize)
		data = v.Data()
	)
	for _, group := range s.replicas {
		for c := 0; c < dt.Stride; c++ {
			var sum float64
			for _, i := range group {
				sum += data[i+c]
			}
			for _, i := range group {
				data[i+c] = sum
			}
		}
	}
	return
}

// GlobalToLocal is the identity on a single process.
func (s *Sequential) GlobalToLocal(global int) (local int, ok bool) {
	if global < 0 || global >= s.numUnknowns {
		return -1, false
	}
	return global, true
}

// Close releases the datatype registry.
func (s *Sequential) Close() {
	s.datatypes = nil
	s.replicas = nil
}
