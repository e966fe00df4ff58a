package sparsetypes

import (
	"encoding/binary"
	"math"

	"github.com/x448/float16"
)

// Weight is the contract for the numeric type stored in posting lists.
//
// A weight is a small copyable scalar with a total order over the values
// actually stored (NaN must never be stored), an inner-product style Score
// that always produces a single-precision result, and a negative-infinity
// sentinel used as the default max-next-weight hint.
//
// The constraint is self-referential so that posting lists, iterators and
// indexes instantiate once per concrete precision; scoring and byte-level
// storage stay monomorphic.
type Weight[W comparable] interface {
	comparable

	// Score computes the inner-product contribution of two weights as a
	// single-precision value, regardless of the stored precision.
	Score(other W) ScoreType

	Less(other W) bool

	// Max returns the larger of the two weights.
	Max(other W) W

	// NegInfinity returns the sentinel used as the default max_next_weight.
	// It may be called on the zero value.
	NegInfinity() W

	Abs() W

	// FromFloat64 converts v to this precision. It may be called on the
	// zero value.
	FromFloat64(v float64) W

	// Width is the serialized size of a weight in bytes.
	Width() int

	// Put writes the weight to the first Width bytes of dst.
	Put(dst []byte)

	// Load reads a weight from the first Width bytes of src. It may be
	// called on the zero value.
	Load(src []byte) W
}

// Float32Weight is the single-precision weight implementation.
type Float32Weight float32

func (w Float32Weight) Score(other Float32Weight) ScoreType {
	return ScoreType(w) * ScoreType(other)
}

func (w Float32Weight) Less(other Float32Weight) bool {
	return w < other
}

func (w Float32Weight) Max(other Float32Weight) Float32Weight {
	if w > other {
		return w
	}
	return other
}

func (Float32Weight) NegInfinity() Float32Weight {
	return Float32Weight(math.Inf(-1))
}

func (w Float32Weight) Abs() Float32Weight {
	return Float32Weight(math.Abs(float64(w)))
}

func (Float32Weight) FromFloat64(v float64) Float32Weight {
	return Float32Weight(v)
}

func (Float32Weight) Width() int { return 4 }

func (w Float32Weight) Put(dst []byte) {
	binary.LittleEndian.PutUint32(dst, math.Float32bits(float32(w)))
}

func (Float32Weight) Load(src []byte) Float32Weight {
	return Float32Weight(math.Float32frombits(binary.LittleEndian.Uint32(src)))
}

// Float16Weight is the half-precision weight implementation. Scoring widens
// to single precision first so that accumulation does not lose precision.
type Float16Weight float16.Float16

func (w Float16Weight) f32() float32 {
	return float16.Float16(w).Float32()
}

func (w Float16Weight) Score(other Float16Weight) ScoreType {
	return ScoreType(w.f32()) * ScoreType(other.f32())
}

func (w Float16Weight) Less(other Float16Weight) bool {
	return w.f32() < other.f32()
}

func (w Float16Weight) Max(other Float16Weight) Float16Weight {
	if w.f32() > other.f32() {
		return w
	}
	return other
}

func (Float16Weight) NegInfinity() Float16Weight {
	return Float16Weight(float16.Inf(-1))
}

func (w Float16Weight) Abs() Float16Weight {
	return Float16Weight(float16.Fromfloat32(float32(math.Abs(float64(w.f32())))))
}

func (Float16Weight) FromFloat64(v float64) Float16Weight {
	return Float16Weight(float16.Fromfloat32(float32(v)))
}

func (Float16Weight) Width() int { return 2 }

func (w Float16Weight) Put(dst []byte) {
	binary.LittleEndian.PutUint16(dst, float16.Float16(w).Bits())
}

func (Float16Weight) Load(src []byte) Float16Weight {
	return Float16Weight(float16.Frombits(binary.LittleEndian.Uint16(src)))
}
