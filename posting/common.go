// Package posting implements posting lists for the sparse inverted index: the
// per-dimension sequences of (record id, weight) pairs, stored as bit-packed
// blocks of delta-encoded ids with per-block weight arrays.
package posting

import (
	"iter"

	"github.com/rpcpool/yellowstone-sparse/sparsetypes"
)

// Element is a single posting entry.
type Element[W sparsetypes.Weight[W]] struct {
	RecordID sparsetypes.PointOffset
	Weight   W
}

// ElementEx is an Element extended with the maximum weight appearing at any
// position strictly after it in the posting list. Pruning query algorithms
// use the hint to stop scanning early. Iterators that do not maintain the
// hint report negative infinity and answer false from
// ReliableMaxNextWeight.
type ElementEx[W sparsetypes.Weight[W]] struct {
	RecordID      sparsetypes.PointOffset
	Weight        W
	MaxNextWeight W
}

// Element strips the max-next-weight hint.
func (e ElementEx[W]) Element() Element[W] {
	return Element[W]{RecordID: e.RecordID, Weight: e.Weight}
}

// ListIterator is the capability set a posting list cursor provides to query
// algorithms. Iteration yields elements in strictly ascending record-id
// order. A ListIterator is owned by a single caller; it borrows the list it
// was created from and must not outlive it.
type ListIterator[W sparsetypes.Weight[W]] interface {
	// Peek returns the element at the current position without advancing.
	Peek() (ElementEx[W], bool)

	// LastID returns the id of the last element of the underlying list,
	// false when the list is empty.
	LastID() (sparsetypes.PointOffset, bool)

	// SkipTo advances until the current element's id is >= recordID and
	// returns it iff it is exactly recordID.
	SkipTo(recordID sparsetypes.PointOffset) (ElementEx[W], bool)

	// SkipToEnd positions the iterator past the last element.
	SkipToEnd()

	// LenToEnd returns the number of elements remaining.
	LenToEnd() int

	// CurrentIndex returns the current logical position.
	CurrentIndex() int

	// ForEachTillID calls f for every element with id <= id, in ascending
	// order, starting at the current position. It leaves the iterator at
	// the first element with a larger id, or at the end.
	ForEachTillID(id sparsetypes.PointOffset, f func(id sparsetypes.PointOffset, weight W))

	// ReliableMaxNextWeight reports whether the MaxNextWeight hints
	// produced by this iterator are maintained.
	ReliableMaxNextWeight() bool

	// All adapts the remaining elements to a standard forward iterator.
	All() iter.Seq[Element[W]]
}
