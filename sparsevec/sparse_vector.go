// Package sparsevec defines the sparse vector representations consumed and
// produced by the inverted index: the externally-addressed SparseVector and
// the RemappedSparseVector whose dimensions have been renumbered into the
// dense contiguous range of a specific index.
package sparsevec

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rpcpool/yellowstone-sparse/sparsetypes"
)

var (
	ErrLengthMismatch   = errors.New("sparse vector indices and values have different lengths")
	ErrUnsortedIndices  = errors.New("sparse vector indices are not strictly ascending")
	ErrDuplicateIndices = errors.New("sparse vector has duplicate indices")
)

// SparseVector is a sparse vector addressed by external dimension ids:
// two parallel sequences of strictly ascending dimension ids and their
// weights. Stored weights must never be NaN.
type SparseVector[W sparsetypes.Weight[W]] struct {
	Indices []sparsetypes.DimID
	Values  []W
}

// New validates and returns a sparse vector. The input must already be
// sorted; use FromPairs for unsorted input.
func New[W sparsetypes.Weight[W]](indices []sparsetypes.DimID, values []W) (SparseVector[W], error) {
	v := SparseVector[W]{Indices: indices, Values: values}
	if err := v.Validate(); err != nil {
		return SparseVector[W]{}, err
	}
	return v, nil
}

// Pair is one (dimension, weight) entry of a sparse vector.
type Pair[W sparsetypes.Weight[W]] struct {
	Dim    sparsetypes.DimID
	Weight W
}

// FromPairs builds a sparse vector from pairs in any order.
func FromPairs[W sparsetypes.Weight[W]](pairs []Pair[W]) (SparseVector[W], error) {
	indices := make([]sparsetypes.DimID, 0, len(pairs))
	values := make([]W, 0, len(pairs))
	for _, p := range pairs {
		indices = append(indices, p.Dim)
		values = append(values, p.Weight)
	}
	v := SparseVector[W]{Indices: indices, Values: values}
	v.Sort()
	if err := v.Validate(); err != nil {
		return SparseVector[W]{}, err
	}
	return v, nil
}

// Len returns the number of populated dimensions.
func (v SparseVector[W]) Len() int {
	return len(v.Indices)
}

func (v SparseVector[W]) IsEmpty() bool {
	return len(v.Indices) == 0
}

// Validate checks the structural invariants: parallel lengths and strictly
// ascending indices.
func (v SparseVector[W]) Validate() error {
	if len(v.Indices) != len(v.Values) {
		return fmt.Errorf("%w: %d indices, %d values", ErrLengthMismatch, len(v.Indices), len(v.Values))
	}
	for i := 1; i < len(v.Indices); i++ {
		if v.Indices[i] == v.Indices[i-1] {
			return fmt.Errorf("%w: %d", ErrDuplicateIndices, v.Indices[i])
		}
		if v.Indices[i] < v.Indices[i-1] {
			return ErrUnsortedIndices
		}
	}
	return nil
}

// Sort reorders both sequences by ascending dimension id.
func (v SparseVector[W]) Sort() {
	sort.Sort(byIndex[W]{v})
}

type byIndex[W sparsetypes.Weight[W]] struct {
	v SparseVector[W]
}

func (s byIndex[W]) Len() int           { return len(s.v.Indices) }
func (s byIndex[W]) Less(i, j int) bool { return s.v.Indices[i] < s.v.Indices[j] }
func (s byIndex[W]) Swap(i, j int) {
	s.v.Indices[i], s.v.Indices[j] = s.v.Indices[j], s.v.Indices[i]
	s.v.Values[i], s.v.Values[j] = s.v.Values[j], s.v.Values[i]
}

// RemappedSparseVector is a sparse vector whose dimension ids have been
// renumbered into the dense contiguous range used by one index instance.
type RemappedSparseVector[W sparsetypes.Weight[W]] struct {
	Indices []sparsetypes.DimOffset
	Values  []W
}

// Len returns the number of populated dimensions.
func (v RemappedSparseVector[W]) Len() int {
	return len(v.Indices)
}

func (v RemappedSparseVector[W]) IsEmpty() bool {
	return len(v.Indices) == 0
}

// Sort reorders both sequences by ascending remapped dimension.
func (v RemappedSparseVector[W]) Sort() {
	sort.Sort(byIndex[W]{SparseVector[W]{Indices: v.Indices, Values: v.Values}})
}

// Validate checks the structural invariants of the remapped form.
func (v RemappedSparseVector[W]) Validate() error {
	return SparseVector[W]{Indices: v.Indices, Values: v.Values}.Validate()
}
