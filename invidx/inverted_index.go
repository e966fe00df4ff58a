// Package invidx implements the in-memory inverted index over compressed
// posting lists: one posting list per remapped dimension, built once and then
// queried by any number of concurrent readers.
package invidx

import (
	logging "github.com/ipfs/go-log/v2"

	"github.com/rpcpool/yellowstone-sparse/posting"
	"github.com/rpcpool/yellowstone-sparse/sparsetypes"
)

var log = logging.Logger("sparse/invidx")

// InvertedIndexRAM maps dimension offsets to compressed posting lists.
// Missing dimensions within range are empty posting lists. Once built the
// index is immutable for the life of its queries.
type InvertedIndexRAM[W sparsetypes.Weight[W]] struct {
	postings    []*posting.CompressedList[W]
	vectorCount int
}

// New wraps already-built posting lists into an index. postings[d] is the
// posting list of dimension d.
func New[W sparsetypes.Weight[W]](postings []*posting.CompressedList[W], vectorCount int) *InvertedIndexRAM[W] {
	return &InvertedIndexRAM[W]{postings: postings, vectorCount: vectorCount}
}

// Get returns the posting list of a dimension. Dimensions beyond the index
// range report false.
func (idx *InvertedIndexRAM[W]) Get(dim sparsetypes.DimOffset) (*posting.CompressedList[W], bool) {
	if int(dim) >= len(idx.postings) {
		return nil, false
	}
	return idx.postings[dim], true
}

// DimCount returns one plus the highest dimension ever added, zero when the
// index is empty.
func (idx *InvertedIndexRAM[W]) DimCount() int {
	return len(idx.postings)
}

// VectorCount returns the number of vectors contained in the index.
func (idx *InvertedIndexRAM[W]) VectorCount() int {
	return idx.vectorCount
}

// Postings exposes the per-dimension lists for serialization.
func (idx *InvertedIndexRAM[W]) Postings() []*posting.CompressedList[W] {
	return idx.postings
}

// StoreSize returns the summed memory footprint of all posting lists.
func (idx *InvertedIndexRAM[W]) StoreSize() int {
	total := 0
	for _, list := range idx.postings {
		total += list.StoreSize().Total()
	}
	return total
}
