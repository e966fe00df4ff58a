package posting

import (
	"iter"

	"github.com/rpcpool/yellowstone-sparse/sparsetypes"
)

// Iterator is a cursor over a CompressedList. It keeps one decoded block so
// that sequential access amortizes the unpacking cost over BlockLen elements.
type Iterator[W sparsetypes.Weight[W]] struct {
	list *CompressedList[W]

	// decompressed holds the unpacked chunk for the current position when
	// unpacked is true.
	unpacked     bool
	decompressed [BlockLen]uint32

	pos int
}

var _ ListIterator[sparsetypes.Float32Weight] = (*Iterator[sparsetypes.Float32Weight])(nil)

func newIterator[W sparsetypes.Weight[W]](list *CompressedList[W]) *Iterator[W] {
	return &Iterator[W]{list: list}
}

// Peek returns the element at the current position without advancing. The
// max-next-weight hint is not maintained by this representation and is
// always reported as negative infinity.
func (it *Iterator[W]) Peek() (ElementEx[W], bool) {
	pos := it.pos
	if pos/BlockLen < len(it.list.chunks) {
		if !it.unpacked {
			it.list.decompressChunk(pos/BlockLen, &it.decompressed)
			it.unpacked = true
		}
		chunk := &it.list.chunks[pos/BlockLen]
		var w W
		return ElementEx[W]{
			RecordID:      it.decompressed[pos%BlockLen],
			Weight:        chunk.Weights[pos%BlockLen],
			MaxNextWeight: w.NegInfinity(),
		}, true
	}

	rem := pos - len(it.list.chunks)*BlockLen
	if rem < len(it.list.remainders) {
		e := it.list.remainders[rem]
		var w W
		return ElementEx[W]{
			RecordID:      e.RecordID,
			Weight:        e.Weight,
			MaxNextWeight: w.NegInfinity(),
		}, true
	}
	return ElementEx[W]{}, false
}

// Next returns the element at the current position and advances past it.
func (it *Iterator[W]) Next() (Element[W], bool) {
	result, ok := it.Peek()
	if !ok {
		return Element[W]{}, false
	}

	if it.pos/BlockLen < len(it.list.chunks) {
		it.pos++
		if it.pos%BlockLen == 0 {
			it.unpacked = false
		}
	} else {
		it.pos++
	}

	return result.Element(), true
}

// LastID returns the id of the last element of the list, false when empty.
func (it *Iterator[W]) LastID() (sparsetypes.PointOffset, bool) {
	return it.list.lastID, it.list.hasLastID
}

// SkipTo advances until the current element's id is >= recordID, returning
// it iff it is exactly recordID.
func (it *Iterator[W]) SkipTo(recordID sparsetypes.PointOffset) (ElementEx[W], bool) {
	for {
		e, ok := it.Peek()
		if !ok {
			return ElementEx[W]{}, false
		}
		switch {
		case e.RecordID == recordID:
			return e, true
		case e.RecordID > recordID:
			return ElementEx[W]{}, false
		default:
			it.Next()
		}
	}
}

// SkipToEnd positions the iterator past the last element.
func (it *Iterator[W]) SkipToEnd() {
	it.pos = len(it.list.chunks)*BlockLen + len(it.list.remainders)
	it.unpacked = false
}

// LenToEnd returns the number of elements remaining.
func (it *Iterator[W]) LenToEnd() int {
	return it.list.Len() - it.pos
}

// CurrentIndex returns the current logical position.
func (it *Iterator[W]) CurrentIndex() int {
	return it.pos
}

// ForEachTillID calls f for every element with id <= id, in ascending order,
// starting at the current position, and leaves the iterator at the first
// element with a larger id (or at the end).
//
// When a whole block lies at or below id, the block is emitted without
// per-element comparisons, so lockstep traversals that advance past a far
// pivot pay the comparison cost only in the block that straddles it.
func (it *Iterator[W]) ForEachTillID(id sparsetypes.PointOffset, f func(id sparsetypes.PointOffset, weight W)) {
	pos := it.pos
	if pos/BlockLen < len(it.list.chunks) {
		// 1. Drain the chunk that is already decoded.
		if it.unpacked {
			chunk := &it.list.chunks[pos/BlockLen]
			for i := pos % BlockLen; i < BlockLen; i++ {
				if it.decompressed[i] > id {
					it.pos = pos
					return
				}
				f(it.decompressed[i], chunk.Weights[i])
				pos++
			}
		}

		// 2. Walk the remaining chunks.
		for pos/BlockLen < len(it.list.chunks) {
			it.list.decompressChunk(pos/BlockLen, &it.decompressed)
			chunk := &it.list.chunks[pos/BlockLen]

			if it.decompressed[BlockLen-1] <= id {
				// The whole block qualifies, skip the id comparison.
				for i := 0; i < BlockLen; i++ {
					f(it.decompressed[i], chunk.Weights[i])
				}
				pos += BlockLen
			} else {
				for i := 0; i < BlockLen; i++ {
					if it.decompressed[i] > id {
						it.pos = pos
						it.unpacked = true
						return
					}
					pos++
					f(it.decompressed[i], chunk.Weights[i])
				}
			}
		}
		it.unpacked = false
	}

	// 3. Drain the remainder tail.
	for _, e := range it.list.remainders[pos-len(it.list.chunks)*BlockLen:] {
		if e.RecordID > id {
			it.pos = pos
			return
		}
		f(e.RecordID, e.Weight)
		pos++
	}
	it.pos = pos
}

// ReliableMaxNextWeight reports false: this representation does not maintain
// the max-next-weight hint.
func (it *Iterator[W]) ReliableMaxNextWeight() bool {
	return false
}

// All adapts the remaining elements to a standard forward iterator.
func (it *Iterator[W]) All() iter.Seq[Element[W]] {
	return func(yield func(Element[W]) bool) {
		for {
			e, ok := it.Next()
			if !ok {
				return
			}
			if !yield(e) {
				return
			}
		}
	}
}
