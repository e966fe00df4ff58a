package invidx

import (
	"fmt"
	"iter"

	"github.com/dustin/go-humanize"

	"github.com/rpcpool/yellowstone-sparse/metrics"
	"github.com/rpcpool/yellowstone-sparse/posting"
	"github.com/rpcpool/yellowstone-sparse/sparsetypes"
	"github.com/rpcpool/yellowstone-sparse/sparsevec"
)

// Builder accumulates remapped sparse vectors and emits an InvertedIndexRAM.
// It is owned by one caller and consumed by Build.
type Builder[W sparsetypes.Weight[W]] struct {
	postingBuilders []*posting.Builder[W]
	vectorCount     int
}

func NewBuilder[W sparsetypes.Weight[W]]() *Builder[W] {
	return &Builder[W]{}
}

// Add records one vector under the given point offset. The per-dimension
// posting builders grow on demand.
func (b *Builder[W]) Add(id sparsetypes.PointOffset, vector sparsevec.RemappedSparseVector[W]) {
	for i, dim := range vector.Indices {
		for int(dim) >= len(b.postingBuilders) {
			b.postingBuilders = append(b.postingBuilders, posting.NewBuilder[W]())
		}
		b.postingBuilders[dim].Add(id, vector.Values[i])
	}
	b.vectorCount++
	metrics.VectorsIndexed.Inc()
}

// VectorCount returns the number of vectors added so far.
func (b *Builder[W]) VectorCount() int {
	return b.vectorCount
}

// Build consumes the builder and returns the immutable index.
func (b *Builder[W]) Build() (*InvertedIndexRAM[W], error) {
	postings := make([]*posting.CompressedList[W], 0, len(b.postingBuilders))
	for dim, postingBuilder := range b.postingBuilders {
		list, err := postingBuilder.Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build posting list for dimension %d: %w", dim, err)
		}
		postings = append(postings, list)
	}
	b.postingBuilders = nil

	idx := New(postings, b.vectorCount)
	metrics.IndexesBuilt.Inc()
	metrics.IndexSizeBytes.Set(float64(idx.StoreSize()))
	log.Debugw("built inverted index",
		"dims", idx.DimCount(),
		"vectors", idx.VectorCount(),
		"size", humanize.Bytes(uint64(idx.StoreSize())),
	)
	return idx, nil
}

// BuildFromPairs creates an index from a stream of (point offset, vector)
// pairs.
func BuildFromPairs[W sparsetypes.Weight[W]](pairs iter.Seq2[sparsetypes.PointOffset, sparsevec.RemappedSparseVector[W]]) (*InvertedIndexRAM[W], error) {
	builder := NewBuilder[W]()
	for id, vector := range pairs {
		builder.Add(id, vector)
	}
	return builder.Build()
}
