package indexmeta_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rpcpool/yellowstone-sparse/indexmeta"
)

func TestMeta(t *testing.T) {
	require.Equal(t, (255), indexmeta.MaxKeySize)
	require.Equal(t, (255), indexmeta.MaxValueSize)
	require.Equal(t, (255), indexmeta.MaxNumKVs)

	var meta indexmeta.Meta
	require.NoError(t, meta.Add([]byte("foo"), []byte("bar")))
	require.NoError(t, meta.Add([]byte("foo"), []byte("baz")))

	require.Equal(t, 2, meta.Count([]byte("foo")))

	got, ok := meta.Get([]byte("foo"))
	require.True(t, ok)
	require.Equal(t, []byte("bar"), got)

	got, ok = meta.Get([]byte("bar"))
	require.False(t, ok)
	require.Equal(t, []byte(nil), got)
	require.Equal(t, 0, meta.Count([]byte("bar")))

	encoded, err := meta.MarshalBinary()
	require.NoError(t, err)
	{
		mustBeEncoded := concatBytes(
			[]byte{2}, // number of key-value pairs

			[]byte{3},     // length of key
			[]byte("foo"), // key

			[]byte{3},     // length of value
			[]byte("bar"), // value

			[]byte{3},     // length of key
			[]byte("foo"), // key

			[]byte{3},     // length of value
			[]byte("baz"), // value
		)
		require.Equal(t, mustBeEncoded, encoded)
	}

	var decoded indexmeta.Meta
	require.NoError(t, decoded.UnmarshalBinary(encoded))
	require.Equal(t, meta, decoded)
}

func TestMetaSet(t *testing.T) {
	var meta indexmeta.Meta
	require.NoError(t, meta.Add(indexmeta.KeyKind, []byte("a")))
	require.NoError(t, meta.Add(indexmeta.KeyKind, []byte("b")))
	require.NoError(t, meta.Set(indexmeta.KeyKind, []byte("c")))
	require.Equal(t, 1, meta.Count(indexmeta.KeyKind))
	got, ok := meta.Get(indexmeta.KeyKind)
	require.True(t, ok)
	require.Equal(t, []byte("c"), got)
}

func TestMetaTypedValues(t *testing.T) {
	var meta indexmeta.Meta
	require.NoError(t, meta.AddString(indexmeta.KeyWeight, "float32"))
	require.NoError(t, meta.AddUint64(indexmeta.KeyVectorCount, 12345))

	s, ok := meta.GetString(indexmeta.KeyWeight)
	require.True(t, ok)
	require.Equal(t, "float32", s)

	n, ok := meta.GetUint64(indexmeta.KeyVectorCount)
	require.True(t, ok)
	require.Equal(t, uint64(12345), n)

	_, ok = meta.GetUint64(indexmeta.KeyWeight)
	require.False(t, ok)
}

func concatBytes(bs ...[]byte) []byte {
	var out []byte
	for _, b := range bs {
		out = append(out, b...)
	}
	return out
}
