// Package search scores sparse queries against an inverted index by inner
// product and collects the k best point offsets.
package search

import (
	"math"

	"github.com/rpcpool/yellowstone-sparse/invidx"
	"github.com/rpcpool/yellowstone-sparse/metrics"
	"github.com/rpcpool/yellowstone-sparse/posting"
	"github.com/rpcpool/yellowstone-sparse/sparsetypes"
	"github.com/rpcpool/yellowstone-sparse/sparsevec"
	"github.com/rpcpool/yellowstone-sparse/topk"
)

// batchLen is the width of the candidate id window scored at once. One
// window's accumulators fit comfortably in cache, and the posting iterators
// advance through each window with the whole-block fast path.
const batchLen = 2048

type postingScorer[W sparsetypes.Weight[W]] struct {
	iter        *posting.Iterator[W]
	queryWeight W
}

// Search returns the k points of the index scoring highest against the
// remapped query vector, ordered by descending score with ties broken by
// descending offset. A query matching nothing returns an empty result.
func Search[W sparsetypes.Weight[W]](
	index *invidx.InvertedIndexRAM[W],
	query sparsevec.RemappedSparseVector[W],
	k int,
) []sparsetypes.ScoredPointOffset {
	metrics.Searches.Inc()

	scorers := make([]postingScorer[W], 0, query.Len())
	for i, dim := range query.Indices {
		list, ok := index.Get(dim)
		if !ok || list.IsEmpty() {
			continue
		}
		scorers = append(scorers, postingScorer[W]{
			iter:        list.Iter(),
			queryWeight: query.Values[i],
		})
	}

	collector := topk.New(k)
	var scores [batchLen]sparsetypes.ScoreType
	var touched [batchLen]bool

	for len(scorers) > 0 {
		// The next window starts at the smallest id any iterator still
		// has to offer.
		base := uint32(math.MaxUint32)
		found := false
		for i := range scorers {
			if e, ok := scorers[i].iter.Peek(); ok {
				found = true
				if e.RecordID < base {
					base = e.RecordID
				}
			}
		}
		if !found {
			break
		}
		batchEnd := base + batchLen - 1
		if batchEnd < base {
			// The window would wrap past the id domain.
			batchEnd = math.MaxUint32
		}

		for i := range touched {
			scores[i] = 0
			touched[i] = false
		}

		live := scorers[:0]
		for i := range scorers {
			s := &scorers[i]
			queryWeight := s.queryWeight
			s.iter.ForEachTillID(batchEnd, func(id sparsetypes.PointOffset, weight W) {
				slot := id - base
				scores[slot] += queryWeight.Score(weight)
				touched[slot] = true
			})
			if s.iter.LenToEnd() > 0 {
				live = append(live, *s)
			}
		}
		scorers = live

		for i := range touched {
			if touched[i] {
				collector.Push(sparsetypes.ScoredPointOffset{
					Score: scores[i],
					Idx:   base + uint32(i),
				})
			}
		}
	}

	results := collector.IntoSorted()
	metrics.SearchResults.Add(float64(len(results)))
	return results
}
