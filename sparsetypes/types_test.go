package sparsetypes

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestScoredPointOffsetOrdering(t *testing.T) {
	a := ScoredPointOffset{Score: 2.0, Idx: 1}
	b := ScoredPointOffset{Score: 1.0, Idx: 2}
	require.Positive(t, a.Compare(b))
	require.Negative(t, b.Compare(a))
	require.True(t, a.Greater(b))

	// Equal scores: the larger offset ranks higher.
	c := ScoredPointOffset{Score: 1.0, Idx: 7}
	require.Positive(t, c.Compare(b))
	require.False(t, b.Greater(c))

	require.Zero(t, c.Compare(c))
	require.False(t, c.Greater(c))
}

func TestFloat32WeightContract(t *testing.T) {
	a := Float32Weight(2.5)
	b := Float32Weight(-4)

	require.Equal(t, ScoreType(-10), a.Score(b))
	require.Equal(t, a.Score(b), b.Score(a))

	require.True(t, b.Less(a))
	require.False(t, a.Less(b))

	// Max picks one of its operands and is >= both.
	m := a.Max(b)
	require.Equal(t, a, m)
	require.Equal(t, m, b.Max(a))
	require.False(t, m.Less(a))
	require.False(t, m.Less(b))

	var zero Float32Weight
	ni := zero.NegInfinity()
	require.True(t, math.IsInf(float64(ni), -1))
	require.True(t, ni.Less(b))

	require.Equal(t, Float32Weight(4), b.Abs())
	require.Equal(t, Float32Weight(0.5), zero.FromFloat64(0.5))
}

func TestFloat16WeightContract(t *testing.T) {
	var zero Float16Weight
	a := zero.FromFloat64(2.5)
	b := zero.FromFloat64(-4)

	// Score widens to single precision before multiplying.
	require.Equal(t, ScoreType(-10), a.Score(b))
	require.Equal(t, a.Score(b), b.Score(a))

	require.True(t, b.Less(a))
	m := a.Max(b)
	require.Equal(t, a, m)
	require.False(t, m.Less(a))
	require.False(t, m.Less(b))

	ni := zero.NegInfinity()
	require.True(t, float16.Float16(ni).IsInf(-1))
	require.True(t, ni.Less(b))

	require.Equal(t, zero.FromFloat64(4), b.Abs())
}

func TestFloat16ScorePrecision(t *testing.T) {
	var zero Float16Weight
	// 0.1 is not representable in half precision; the score must be the
	// product of the widened stored values, not a half-precision product.
	a := zero.FromFloat64(0.1)
	score := a.Score(a)
	widened := float16.Float16(a).Float32()
	require.Equal(t, widened*widened, score)
}

func TestWeightSerialization(t *testing.T) {
	buf := make([]byte, 4)

	w32 := Float32Weight(1.5)
	require.Equal(t, 4, w32.Width())
	w32.Put(buf)
	require.Equal(t, w32, w32.Load(buf))

	var zero Float16Weight
	w16 := zero.FromFloat64(-0.375)
	require.Equal(t, 2, w16.Width())
	w16.Put(buf[:2])
	require.Equal(t, w16, zero.Load(buf[:2]))
}

func TestScoreMin(t *testing.T) {
	require.Equal(t, ScoreType(-math.MaxFloat32), ScoreMin)
	require.Greater(t, ScoreMin, ScoreType(math.Inf(-1)))
}
