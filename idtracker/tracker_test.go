package idtracker

import (
	"testing"

	"github.com/bits-and-blooms/bitset"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testIDs(t *testing.T) []PointID {
	t.Helper()
	u1 := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	u2 := uuid.MustParse("ffffffff-0000-0000-0000-000000000000")
	// Deliberately interleaved: numeric and UUID ids in insertion order.
	return []PointID{
		UUIDID(u2),
		NumID(7),
		NumID(3),
		UUIDID(u1),
		NumID(100),
	}
}

func TestPointIDOrdering(t *testing.T) {
	require.Negative(t, NumID(5).Compare(NumID(6)))
	require.Positive(t, NumID(6).Compare(NumID(5)))
	require.Zero(t, NumID(5).Compare(NumID(5)))

	// Every numeric id orders before every UUID id.
	huge := NumID(^uint64(0))
	small := UUIDID(uuid.MustParse("00000000-0000-0000-0000-000000000000"))
	require.Negative(t, huge.Compare(small))
	require.Positive(t, small.Compare(huge))
}

func TestLookups(t *testing.T) {
	ids := testIDs(t)
	tracker, err := New(ids, []SeqNumber{10, 11, 12, 13, 14}, nil)
	require.NoError(t, err)

	require.Equal(t, 5, tracker.Len())
	require.Equal(t, 5, tracker.AvailableCount())

	for internal, external := range ids {
		got, ok := tracker.InternalID(external)
		require.True(t, ok)
		require.Equal(t, uint32(internal), got)

		gotExternal, ok := tracker.ExternalID(uint32(internal))
		require.True(t, ok)
		require.Zero(t, external.Compare(gotExternal))

		version, ok := tracker.InternalVersion(uint32(internal))
		require.True(t, ok)
		require.Equal(t, SeqNumber(10+internal), version)
	}

	_, ok := tracker.InternalID(NumID(12345))
	require.False(t, ok)
	_, ok = tracker.ExternalID(99)
	require.False(t, ok)
}

func TestDuplicateExternalID(t *testing.T) {
	_, err := New([]PointID{NumID(1), NumID(1)}, []SeqNumber{0, 0}, nil)
	require.Error(t, err)
}

func TestIterExternalNumericFirst(t *testing.T) {
	tracker, err := New(testIDs(t), make([]SeqNumber, 5), nil)
	require.NoError(t, err)

	var got []PointID
	for id := range tracker.IterExternal() {
		got = append(got, id)
	}
	require.Len(t, got, 5)
	// Numeric ids first, ascending; then UUIDs in byte order.
	require.Equal(t, NumID(3), got[0])
	require.Equal(t, NumID(7), got[1])
	require.Equal(t, NumID(100), got[2])
	require.True(t, got[3].IsUUID())
	require.True(t, got[4].IsUUID())
	require.Negative(t, got[3].Compare(got[4]))
}

func TestDeleted(t *testing.T) {
	deleted := bitset.New(5)
	deleted.Set(1) // NumID(7)
	tracker, err := New(testIDs(t), make([]SeqNumber, 5), deleted)
	require.NoError(t, err)

	require.Equal(t, 4, tracker.AvailableCount())
	require.True(t, tracker.IsDeleted(1))

	_, ok := tracker.ExternalID(1)
	require.False(t, ok)

	var internal []uint32
	for off := range tracker.IterInternal() {
		internal = append(internal, off)
	}
	require.Equal(t, []uint32{0, 2, 3, 4}, internal)
}

func TestIterFrom(t *testing.T) {
	tracker, err := New(testIDs(t), make([]SeqNumber, 5), nil)
	require.NoError(t, err)

	// From a numeric id: numeric ids >= 7, then all UUIDs.
	var got []PointID
	for id := range tracker.IterFrom(NumID(7)) {
		got = append(got, id)
	}
	require.Len(t, got, 4)
	require.Equal(t, NumID(7), got[0])
	require.Equal(t, NumID(100), got[1])
	require.True(t, got[2].IsUUID())

	// From a UUID: UUIDs only.
	got = got[:0]
	for id := range tracker.IterFrom(UUIDID(uuid.MustParse("00000000-0000-0000-0000-000000000000"))) {
		got = append(got, id)
	}
	require.Len(t, got, 2)
	require.True(t, got[0].IsUUID())
	require.True(t, got[1].IsUUID())
}

func TestMutationPanics(t *testing.T) {
	tracker, err := New(testIDs(t), make([]SeqNumber, 5), nil)
	require.NoError(t, err)

	require.Panics(t, func() { tracker.SetLink(NumID(1), 0) })
	require.Panics(t, func() { tracker.SetInternalVersion(0, 1) })
	require.Panics(t, func() { tracker.Drop(NumID(1)) })
}

func TestSaveOpenRoundTrip(t *testing.T) {
	dir := t.TempDir()

	deleted := bitset.New(5)
	deleted.Set(2)
	tracker, err := New(testIDs(t), []SeqNumber{1, 2, 3, 4, 5}, deleted)
	require.NoError(t, err)
	require.NoError(t, tracker.Save(dir))

	loaded, err := Open(dir)
	require.NoError(t, err)
	require.Equal(t, tracker.Len(), loaded.Len())
	require.Equal(t, tracker.AvailableCount(), loaded.AvailableCount())
	require.True(t, loaded.IsDeleted(2))

	for internal, external := range testIDs(t) {
		got, ok := loaded.InternalID(external)
		require.True(t, ok)
		require.Equal(t, uint32(internal), got)
	}
	version, ok := loaded.InternalVersion(4)
	require.True(t, ok)
	require.Equal(t, SeqNumber(5), version)
}
