// Package bitpack encodes blocks of strictly increasing 32-bit integers as
// fixed-width deltas against a seed value. A block is always BlockLen
// integers; the packed payload of a block is BlockLen*width bits, so it is
// always a whole number of bytes.
//
// The "strictly sorted" scheme stores, for each value, the gap to its
// predecessor minus one. A run of consecutive integers therefore packs to
// width zero and occupies no payload bytes at all.
package bitpack

import "math/bits"

// BlockLen is the number of integers encoded together in one block.
const BlockLen = 128

// NoSeed is the seed to use when the first value of a block has no
// predecessor, i.e. the block starts at id 0.
const NoSeed int64 = -1

// NumBitsStrictlySorted returns the minimal bit width able to encode ids as
// strictly sorted deltas against seed. seed is the value preceding ids[0]
// (NoSeed when there is none). ids must be strictly increasing and, when a
// seed is given, ids[0] must be greater than it.
func NumBitsStrictlySorted(seed int64, ids []uint32) uint8 {
	prev := seed
	var width uint8
	for _, id := range ids {
		delta := uint32(int64(id) - prev - 1)
		if w := uint8(bits.Len32(delta)); w > width {
			width = w
		}
		prev = int64(id)
	}
	return width
}

// CompressedBlockSize returns the packed payload size in bytes of one block
// at the given bit width.
func CompressedBlockSize(width uint8) int {
	return int(width) * BlockLen / 8
}

// CompressStrictlySorted packs exactly BlockLen ids into dst using the given
// bit width. dst must be at least CompressedBlockSize(width) bytes. The width
// must have been obtained from NumBitsStrictlySorted for the same seed and
// ids, or be larger.
func CompressStrictlySorted(seed int64, ids []uint32, dst []byte, width uint8) {
	if len(ids) != BlockLen {
		panic("bitpack: compress block must be exactly BlockLen ids")
	}
	if width == 0 {
		return
	}
	prev := seed
	var acc uint64
	var filled uint
	j := 0
	for _, id := range ids {
		delta := uint64(uint32(int64(id) - prev - 1))
		prev = int64(id)

		acc |= delta << filled
		filled += uint(width)
		for filled >= 8 {
			dst[j] = byte(acc)
			acc >>= 8
			filled -= 8
			j++
		}
	}
	// BlockLen*width is a multiple of 8, the accumulator always drains.
	if filled != 0 {
		panic("bitpack: accumulator not drained")
	}
}

// DecompressStrictlySorted unpacks exactly BlockLen ids from src into dst,
// reversing CompressStrictlySorted with the same seed and width.
func DecompressStrictlySorted(seed int64, src []byte, dst []uint32, width uint8) {
	if len(dst) != BlockLen {
		panic("bitpack: decompress block must be exactly BlockLen ids")
	}
	prev := seed
	if width == 0 {
		for i := range dst {
			prev++
			dst[i] = uint32(prev)
		}
		return
	}
	mask := uint64(1)<<width - 1
	var acc uint64
	var filled uint
	j := 0
	for i := range dst {
		for filled < uint(width) {
			acc |= uint64(src[j]) << filled
			filled += 8
			j++
		}
		delta := acc & mask
		acc >>= width
		filled -= uint(width)

		prev += 1 + int64(delta)
		dst[i] = uint32(prev)
	}
}
