package sparsevec

import (
	"math/rand"

	"github.com/rpcpool/yellowstone-sparse/sparsetypes"
)

// Fixture generators for tests and benchmarks.

const (
	valueRangeLo = -100.0
	valueRangeHi = 100.0

	// Realistic sizing based on experiences with SPLADE.
	maxValuesPerVector = 300
)

func randomValue[W sparsetypes.Weight[W]](rnd *rand.Rand) W {
	var w W
	return w.FromFloat64(valueRangeLo + rnd.Float64()*(valueRangeHi-valueRangeLo))
}

// RandomSparseVector generates a non-empty sparse vector with dimensions
// below maxDimSize. Most dimensions are skipped to keep the vector sparse.
func RandomSparseVector[W sparsetypes.Weight[W]](rnd *rand.Rand, maxDimSize int) SparseVector[W] {
	size := 1 + rnd.Intn(maxDimSize-1)
	var pairs []Pair[W]

	for i := 1; i <= size; i++ {
		// Keep the vector small for performance reasons.
		if len(pairs) == maxValuesPerVector {
			break
		}
		// High probability of skipping a dimension to make the vector
		// more sparse.
		if rnd.Float64() < 0.98 {
			continue
		}
		pairs = append(pairs, Pair[W]{Dim: sparsetypes.DimID(i), Weight: randomValue[W](rnd)})
	}

	// Make sure there is at least one dimension.
	if len(pairs) == 0 {
		pairs = append(pairs, Pair[W]{
			Dim:    sparsetypes.DimID(1 + rnd.Intn(maxDimSize-1)),
			Weight: randomValue[W](rnd),
		})
	}

	v, err := FromPairs(pairs)
	if err != nil {
		panic(err)
	}
	return v
}

// RandomFullSparseVector generates a sparse vector with all dimensions in
// [1, maxSize] populated.
func RandomFullSparseVector[W sparsetypes.Weight[W]](rnd *rand.Rand, maxSize int) SparseVector[W] {
	pairs := make([]Pair[W], 0, maxSize)
	for i := 1; i <= maxSize; i++ {
		pairs = append(pairs, Pair[W]{Dim: sparsetypes.DimID(i), Weight: randomValue[W](rnd)})
	}
	v, err := FromPairs(pairs)
	if err != nil {
		panic(err)
	}
	return v
}

// RandomPositiveSparseVector generates a sparse vector with only positive
// values.
func RandomPositiveSparseVector[W sparsetypes.Weight[W]](rnd *rand.Rand, maxDimSize int) SparseVector[W] {
	v := RandomSparseVector[W](rnd, maxDimSize)
	for i, value := range v.Values {
		v.Values[i] = value.Abs()
	}
	return v
}
