package invidx

import (
	"iter"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rpcpool/yellowstone-sparse/sparsetypes"
	"github.com/rpcpool/yellowstone-sparse/sparsevec"
)

func vec(t *testing.T, pairs ...sparsevec.Pair[sparsetypes.Float32Weight]) sparsevec.RemappedSparseVector[sparsetypes.Float32Weight] {
	t.Helper()
	v, err := sparsevec.FromPairs(pairs)
	require.NoError(t, err)
	return sparsevec.RemappedSparseVector[sparsetypes.Float32Weight]{Indices: v.Indices, Values: v.Values}
}

func TestBuilder(t *testing.T) {
	b := NewBuilder[sparsetypes.Float32Weight]()
	b.Add(1, vec(t,
		sparsevec.Pair[sparsetypes.Float32Weight]{Dim: 0, Weight: 10},
		sparsevec.Pair[sparsetypes.Float32Weight]{Dim: 2, Weight: 30},
	))
	b.Add(2, vec(t,
		sparsevec.Pair[sparsetypes.Float32Weight]{Dim: 2, Weight: 60},
	))
	b.Add(3, vec(t,
		sparsevec.Pair[sparsetypes.Float32Weight]{Dim: 0, Weight: 40},
		sparsevec.Pair[sparsetypes.Float32Weight]{Dim: 1, Weight: 50},
	))
	require.Equal(t, 3, b.VectorCount())

	idx, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, 3, idx.VectorCount())
	// One plus the highest dimension ever added.
	require.Equal(t, 3, idx.DimCount())

	dim0, ok := idx.Get(0)
	require.True(t, ok)
	require.Equal(t, 2, dim0.Len())

	dim1, ok := idx.Get(1)
	require.True(t, ok)
	require.Equal(t, 1, dim1.Len())
	e, ok := dim1.Iter().Peek()
	require.True(t, ok)
	require.Equal(t, uint32(3), e.RecordID)
	require.Equal(t, sparsetypes.Float32Weight(50), e.Weight)

	dim2, ok := idx.Get(2)
	require.True(t, ok)
	last, ok := dim2.LastID()
	require.True(t, ok)
	require.Equal(t, uint32(2), last)

	_, ok = idx.Get(3)
	require.False(t, ok)
}

func TestBuilderGapDimensions(t *testing.T) {
	b := NewBuilder[sparsetypes.Float32Weight]()
	b.Add(7, vec(t, sparsevec.Pair[sparsetypes.Float32Weight]{Dim: 5, Weight: 1}))
	idx, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, 6, idx.DimCount())

	// Dimensions never added within range are empty posting lists.
	for dim := uint32(0); dim < 5; dim++ {
		list, ok := idx.Get(dim)
		require.True(t, ok)
		require.True(t, list.IsEmpty())
	}
}

func TestBuildFromPairs(t *testing.T) {
	pairs := func(yield func(sparsetypes.PointOffset, sparsevec.RemappedSparseVector[sparsetypes.Float32Weight]) bool) {
		for id := uint32(0); id < 300; id++ {
			pairs := []sparsevec.Pair[sparsetypes.Float32Weight]{
				{Dim: 0, Weight: sparsetypes.Float32Weight(id)},
			}
			if id%4 != 0 {
				pairs = append(pairs, sparsevec.Pair[sparsetypes.Float32Weight]{Dim: id % 4, Weight: 1})
			}
			if !yield(id, vec(t, pairs...)) {
				return
			}
		}
	}
	idx, err := BuildFromPairs(iter.Seq2[sparsetypes.PointOffset, sparsevec.RemappedSparseVector[sparsetypes.Float32Weight]](pairs))
	require.NoError(t, err)
	require.Equal(t, 300, idx.VectorCount())
	require.Equal(t, 4, idx.DimCount())

	// Dimension 0 contains all 300 points: two full chunks and a remainder.
	dim0, ok := idx.Get(0)
	require.True(t, ok)
	require.Equal(t, 300, dim0.Len())
}

func TestDimMapper(t *testing.T) {
	m := NewDimMapper()
	require.Equal(t, sparsetypes.DimOffset(0), m.Assign(1000))
	require.Equal(t, sparsetypes.DimOffset(1), m.Assign(5))
	require.Equal(t, sparsetypes.DimOffset(0), m.Assign(1000))
	require.Equal(t, 2, m.Len())

	off, ok := m.Lookup(5)
	require.True(t, ok)
	require.Equal(t, sparsetypes.DimOffset(1), off)
	_, ok = m.Lookup(6)
	require.False(t, ok)

	ext, ok := m.External(0)
	require.True(t, ok)
	require.Equal(t, sparsetypes.DimID(1000), ext)
	_, ok = m.External(2)
	require.False(t, ok)
}

func TestRemap(t *testing.T) {
	m := NewDimMapper()
	v, err := sparsevec.New(
		[]sparsetypes.DimID{100, 200, 300},
		[]sparsetypes.Float32Weight{1, 2, 3},
	)
	require.NoError(t, err)

	remapped := RemapForIndexing(m, v)
	require.Equal(t, []sparsetypes.DimOffset{0, 1, 2}, remapped.Indices)
	require.NoError(t, remapped.Validate())

	// A query touching known and unknown dimensions keeps only the known
	// ones, renumbered.
	q, err := sparsevec.New(
		[]sparsetypes.DimID{50, 200, 999},
		[]sparsetypes.Float32Weight{9, 8, 7},
	)
	require.NoError(t, err)
	remappedQ := RemapQuery(m, q)
	require.Equal(t, []sparsetypes.DimOffset{1}, remappedQ.Indices)
	require.Equal(t, []sparsetypes.Float32Weight{8}, remappedQ.Values)
}
