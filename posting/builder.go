package posting

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rpcpool/yellowstone-sparse/bitpack"
	"github.com/rpcpool/yellowstone-sparse/sparsetypes"
)

// ErrDuplicateRecordID is returned by Build when the same record id was added
// more than once. Ids must be unique within a posting list.
var ErrDuplicateRecordID = errors.New("duplicate record id in posting list")

// Builder accumulates (record id, weight) pairs and emits a CompressedList.
// Additions may arrive in any order; Build sorts by record id.
type Builder[W sparsetypes.Weight[W]] struct {
	elements []Element[W]
}

func NewBuilder[W sparsetypes.Weight[W]]() *Builder[W] {
	return &Builder[W]{}
}

// Add appends a new record to the posting list.
func (b *Builder[W]) Add(recordID sparsetypes.PointOffset, weight W) {
	b.elements = append(b.elements, Element[W]{RecordID: recordID, Weight: weight})
}

// Len returns the number of records added so far.
func (b *Builder[W]) Len() int {
	return len(b.elements)
}

// Build consumes the builder and returns the compressed posting list.
// Returns ErrDuplicateRecordID when a record id was added twice.
func (b *Builder[W]) Build() (*CompressedList[W], error) {
	elements := b.elements
	b.elements = nil

	// Ids are unique, so any sort keyed on the record id alone works.
	sort.Slice(elements, func(i, j int) bool {
		return elements[i].RecordID < elements[j].RecordID
	})

	for i := 1; i < len(elements); i++ {
		if elements[i].RecordID == elements[i-1].RecordID {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateRecordID, elements[i].RecordID)
		}
	}

	numChunks := len(elements) / BlockLen

	// First pass: chunk descriptors and the total packed size.
	blockIDs := make([]uint32, 0, BlockLen)
	chunks := make([]Chunk[W], 0, numChunks)
	dataSize := 0
	for c := 0; c < numChunks; c++ {
		block := elements[c*BlockLen : (c+1)*BlockLen]

		blockIDs = blockIDs[:0]
		for _, e := range block {
			blockIDs = append(blockIDs, e.RecordID)
		}

		initial := blockIDs[0]
		width := bitpack.NumBitsStrictlySorted(seedFor(initial), blockIDs)

		chunk := Chunk[W]{
			Initial: initial,
			Offset:  uint32(dataSize),
		}
		for i, e := range block {
			chunk.Weights[i] = e.Weight
		}
		chunks = append(chunks, chunk)
		dataSize += bitpack.CompressedBlockSize(width)
	}

	var remainders []Element[W]
	if tail := elements[numChunks*BlockLen:]; len(tail) > 0 {
		remainders = make([]Element[W], len(tail))
		copy(remainders, tail)
	}

	// Second pass: pack each block into its reserved slice.
	idData := make([]byte, dataSize)
	for c := 0; c < numChunks; c++ {
		block := elements[c*BlockLen : (c+1)*BlockLen]

		blockIDs = blockIDs[:0]
		for _, e := range block {
			blockIDs = append(blockIDs, e.RecordID)
		}

		chunk := &chunks[c]
		var size int
		if c+1 < len(chunks) {
			size = int(chunks[c+1].Offset) - int(chunk.Offset)
		} else {
			size = dataSize - int(chunk.Offset)
		}
		width := uint8(size * 8 / BlockLen)
		bitpack.CompressStrictlySorted(
			seedFor(chunk.Initial),
			blockIDs,
			idData[chunk.Offset:int(chunk.Offset)+size],
			width,
		)
	}

	list := &CompressedList[W]{
		idData:     idData,
		chunks:     chunks,
		remainders: remainders,
	}
	if len(elements) > 0 {
		list.lastID = elements[len(elements)-1].RecordID
		list.hasLastID = true
	}
	return list, nil
}

// ListFrom builds a compressed posting list from records, in one call.
func ListFrom[W sparsetypes.Weight[W]](records []Element[W]) (*CompressedList[W], error) {
	b := NewBuilder[W]()
	for _, r := range records {
		b.Add(r.RecordID, r.Weight)
	}
	return b.Build()
}
