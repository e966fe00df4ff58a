package invidx

import (
	"github.com/tidwall/hashmap"

	"github.com/rpcpool/yellowstone-sparse/sparsetypes"
	"github.com/rpcpool/yellowstone-sparse/sparsevec"
)

// DimMapper renumbers external dimension ids into the dense contiguous range
// of one index instance. Dimensions get dense ids in first-seen order during
// indexing; query remapping drops dimensions the index has never seen.
type DimMapper struct {
	toInternal hashmap.Map[sparsetypes.DimID, sparsetypes.DimOffset]
	toExternal []sparsetypes.DimID
}

func NewDimMapper() *DimMapper {
	return &DimMapper{}
}

// Assign returns the dense id of dim, allocating the next one on first
// sight.
func (m *DimMapper) Assign(dim sparsetypes.DimID) sparsetypes.DimOffset {
	if off, ok := m.toInternal.Get(dim); ok {
		return off
	}
	off := sparsetypes.DimOffset(len(m.toExternal))
	m.toInternal.Set(dim, off)
	m.toExternal = append(m.toExternal, dim)
	return off
}

// Lookup returns the dense id of dim if it was ever assigned.
func (m *DimMapper) Lookup(dim sparsetypes.DimID) (sparsetypes.DimOffset, bool) {
	return m.toInternal.Get(dim)
}

// External returns the external dimension id of a dense id.
func (m *DimMapper) External(off sparsetypes.DimOffset) (sparsetypes.DimID, bool) {
	if int(off) >= len(m.toExternal) {
		return 0, false
	}
	return m.toExternal[off], true
}

// Len returns the number of assigned dimensions.
func (m *DimMapper) Len() int {
	return len(m.toExternal)
}

// RemapForIndexing renumbers a vector for insertion, assigning dense ids to
// dimensions not seen before. The result is sorted by dense id.
func RemapForIndexing[W sparsetypes.Weight[W]](m *DimMapper, v sparsevec.SparseVector[W]) sparsevec.RemappedSparseVector[W] {
	remapped := sparsevec.RemappedSparseVector[W]{
		Indices: make([]sparsetypes.DimOffset, len(v.Indices)),
		Values:  make([]W, len(v.Values)),
	}
	for i, dim := range v.Indices {
		remapped.Indices[i] = m.Assign(dim)
		remapped.Values[i] = v.Values[i]
	}
	remapped.Sort()
	return remapped
}

// RemapQuery renumbers a query vector, dropping dimensions the index does
// not contain. The result is sorted by dense id.
func RemapQuery[W sparsetypes.Weight[W]](m *DimMapper, v sparsevec.SparseVector[W]) sparsevec.RemappedSparseVector[W] {
	var remapped sparsevec.RemappedSparseVector[W]
	for i, dim := range v.Indices {
		off, ok := m.Lookup(dim)
		if !ok {
			continue
		}
		remapped.Indices = append(remapped.Indices, off)
		remapped.Values = append(remapped.Values, v.Values[i])
	}
	remapped.Sort()
	return remapped
}
