// Package topk keeps the k highest-scoring point offsets seen in a stream of
// candidates, using the median algorithm described in
// https://quickwit.io/blog/top-k-complexity
//
// The buffer holds up to 2k elements; when it fills, a selection pass finds
// the k-th largest element, raises the acceptance threshold to its score and
// drops the lower half. Each selection is O(k) and happens once per k pushes,
// so the amortized cost per candidate is constant — cheaper than a binary
// heap when k is much smaller than the candidate count.
package topk

import (
	"slices"

	"github.com/rpcpool/yellowstone-sparse/sparsetypes"
)

// TopK is a bounded bag of scored point offsets. It is created per query,
// pushed into, then drained once with IntoSorted.
type TopK struct {
	k         int
	elements  []sparsetypes.ScoredPointOffset
	threshold sparsetypes.ScoreType
}

// New returns a collector retaining the k highest-scoring elements. The
// buffer is allocated once at 2k capacity and never grows.
func New(k int) *TopK {
	return &TopK{
		k:         k,
		elements:  make([]sparsetypes.ScoredPointOffset, 0, 2*k),
		threshold: sparsetypes.ScoreMin,
	}
}

func (t *TopK) Len() int {
	return len(t.elements)
}

func (t *TopK) IsEmpty() bool {
	return len(t.elements) == 0
}

// Threshold returns the score below which no new element can enter the
// retained top k. It starts at ScoreMin and is raised each time the full
// buffer is pruned.
func (t *TopK) Threshold() sparsetypes.ScoreType {
	return t.threshold
}

// Push offers an element to the collector. It reports whether the element is
// still a candidate for the final top k after any pruning.
func (t *TopK) Push(element sparsetypes.ScoredPointOffset) bool {
	if element.Score >= t.threshold {
		t.elements = append(t.elements, element)
		// Prune half the elements when full.
		if len(t.elements) == t.k*2 {
			t.prune()
		}
		return element.Score >= t.threshold
	}
	return false
}

// prune partitions the buffer so that index k-1 holds the k-th largest
// element, raises the threshold to its score and truncates to k.
func (t *TopK) prune() {
	n := min(t.k, len(t.elements))
	selectNth(t.elements, n-1)
	t.threshold = t.elements[n-1].Score
	t.elements = t.elements[:n]
}

func (t *TopK) sortElements() {
	slices.SortFunc(t.elements, func(a, b sparsetypes.ScoredPointOffset) int {
		return b.Compare(a)
	})
	t.elements = t.elements[:min(t.k, len(t.elements))]
}

// IntoSorted drains the collector, returning at most k elements ordered by
// descending score, ties broken by descending offset. The sort runs even if
// no prune ever did: the buffer may hold up to 2k-1 unpruned elements.
func (t *TopK) IntoSorted() []sparsetypes.ScoredPointOffset {
	t.sortElements()
	return t.elements
}

// Elements returns the current buffer without draining, in no particular
// order.
func (t *TopK) Elements() []sparsetypes.ScoredPointOffset {
	return t.elements
}

// selectNth partially orders elements by descending rank so that index n
// holds the element a full descending sort would put there, everything before
// it ranking higher and everything after it ranking lower. Quickselect with
// median-of-three pivoting.
func selectNth(elements []sparsetypes.ScoredPointOffset, n int) {
	lo, hi := 0, len(elements)-1
	for lo < hi {
		p := partition(elements, lo, hi)
		switch {
		case p == n:
			return
		case p < n:
			lo = p + 1
		default:
			hi = p - 1
		}
	}
}

// partition picks a pivot within [lo, hi], moves the elements ranking above
// it before it, and returns its final index.
func partition(elements []sparsetypes.ScoredPointOffset, lo, hi int) int {
	mid := lo + (hi-lo)/2
	if elements[mid].Greater(elements[lo]) {
		elements[lo], elements[mid] = elements[mid], elements[lo]
	}
	if elements[hi].Greater(elements[lo]) {
		elements[lo], elements[hi] = elements[hi], elements[lo]
	}
	if elements[hi].Greater(elements[mid]) {
		elements[mid], elements[hi] = elements[hi], elements[mid]
	}
	// elements[mid] is now the median of the three.
	elements[mid], elements[hi] = elements[hi], elements[mid]
	pivot := elements[hi]

	i := lo
	for j := lo; j < hi; j++ {
		if elements[j].Greater(pivot) {
			elements[i], elements[j] = elements[j], elements[i]
			i++
		}
	}
	elements[i], elements[hi] = elements[hi], elements[i]
	return i
}
