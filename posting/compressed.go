package posting

import (
	"github.com/rpcpool/yellowstone-sparse/bitpack"
	"github.com/rpcpool/yellowstone-sparse/sparsetypes"
)

// BlockLen is the number of posting entries encoded together in one chunk.
const BlockLen = bitpack.BlockLen

// Chunk is the descriptor of one complete bit-packed block: the first record
// id of the block (the decompression seed is one below it), the byte offset of the packed
// payload within the list's id data, and the block's weights.
type Chunk[W sparsetypes.Weight[W]] struct {
	Initial sparsetypes.PointOffset
	Offset  uint32
	Weights [BlockLen]W
}

// CompressedList is an immutable posting list: record ids strictly ascending
// across chunks and remainders. Once built it never mutates and may be shared
// by concurrent readers, each holding its own Iterator.
type CompressedList[W sparsetypes.Weight[W]] struct {
	// Packed ids. Chunks refer to subslices of this data.
	idData []byte

	// Descriptors of the complete fixed-size blocks.
	chunks []Chunk[W]

	// Tail elements that did not fill a complete block.
	remainders []Element[W]

	// Id of the last element, cached to avoid unpacking the last chunk.
	lastID    sparsetypes.PointOffset
	hasLastID bool
}

// FromParts reassembles a list from its stored components, e.g. when loading
// a serialized index. The caller is responsible for the format invariants:
// ids strictly ascending, chunk offsets within idData.
func FromParts[W sparsetypes.Weight[W]](
	idData []byte,
	chunks []Chunk[W],
	remainders []Element[W],
	lastID sparsetypes.PointOffset,
	hasLastID bool,
) *CompressedList[W] {
	return &CompressedList[W]{
		idData:     idData,
		chunks:     chunks,
		remainders: remainders,
		lastID:     lastID,
		hasLastID:  hasLastID,
	}
}

// Parts exposes the stored components for serialization.
func (l *CompressedList[W]) Parts() (idData []byte, chunks []Chunk[W], remainders []Element[W]) {
	return l.idData, l.chunks, l.remainders
}

// LastID returns the id of the last element, false when the list is empty.
func (l *CompressedList[W]) LastID() (sparsetypes.PointOffset, bool) {
	return l.lastID, l.hasLastID
}

// Len returns the logical number of elements.
func (l *CompressedList[W]) Len() int {
	return len(l.chunks)*BlockLen + len(l.remainders)
}

func (l *CompressedList[W]) IsEmpty() bool {
	return len(l.chunks) == 0 && len(l.remainders) == 0
}

// StoreSize describes the memory footprint of a compressed posting list.
type StoreSize struct {
	IDDataBytes     int
	ChunksCount     int
	RemaindersCount int

	SizeofChunk     int
	SizeofRemainder int
}

func (s StoreSize) Total() int {
	return s.IDDataBytes + s.ChunksCount*s.SizeofChunk + s.RemaindersCount*s.SizeofRemainder
}

func (s StoreSize) ChunksBytes() int {
	return s.ChunksCount * s.SizeofChunk
}

// StoreSize returns the memory footprint of the list.
func (l *CompressedList[W]) StoreSize() StoreSize {
	var w W
	return StoreSize{
		IDDataBytes:     len(l.idData),
		ChunksCount:     len(l.chunks),
		RemaindersCount: len(l.remainders),

		SizeofChunk:     8 + BlockLen*w.Width(),
		SizeofRemainder: 4 + w.Width(),
	}
}

// chunkSize returns the packed payload length in bytes of chunk i.
func (l *CompressedList[W]) chunkSize(i int) int {
	if i+1 < len(l.chunks) {
		return int(l.chunks[i+1].Offset) - int(l.chunks[i].Offset)
	}
	return len(l.idData) - int(l.chunks[i].Offset)
}

// decompressChunk unpacks chunk i into dst.
func (l *CompressedList[W]) decompressChunk(i int, dst *[BlockLen]uint32) {
	chunk := &l.chunks[i]
	size := l.chunkSize(i)
	width := uint8(size * 8 / BlockLen)
	bitpack.DecompressStrictlySorted(
		seedFor(chunk.Initial),
		l.idData[chunk.Offset:int(chunk.Offset)+size],
		dst[:],
		width,
	)
}

// seedFor returns the bit-packing seed for a block whose first id is initial.
func seedFor(initial sparsetypes.PointOffset) int64 {
	return int64(initial) - 1
}

// Iter returns a cursor positioned at the first element.
func (l *CompressedList[W]) Iter() *Iterator[W] {
	return newIterator(l)
}
