package idtracker

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"sort"

	"github.com/bits-and-blooms/bitset"
	jsoniter "github.com/json-iterator/go"

	"github.com/rpcpool/yellowstone-sparse/sparsetypes"
)

const (
	deletedFileName  = "id_tracker_deleted"
	mappingsFileName = "id_tracker_mappings"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SeqNumber is the version of a stored point.
type SeqNumber = uint64

type mapping struct {
	External PointID
	Internal sparsetypes.PointOffset
}

// ImmutableIDTracker is the read-only mapping between internal point offsets
// and external point ids for one built segment. Mutating calls terminate the
// process: the tracker is immutable once constructed.
type ImmutableIDTracker struct {
	path string

	internalToVersion  []SeqNumber
	internalToExternal []PointID
	// Sorted by external id: numeric ids first, then UUIDs.
	externalToInternal []mapping

	deleted *bitset.BitSet
}

// New builds a tracker from the internal-to-external table. versions[i] is
// the stored version of offset i; deleted marks offsets that must not
// resolve. deleted may be nil.
func New(externalIDs []PointID, versions []SeqNumber, deleted *bitset.BitSet) (*ImmutableIDTracker, error) {
	if len(externalIDs) != len(versions) {
		return nil, fmt.Errorf("id tracker has %d external ids but %d versions", len(externalIDs), len(versions))
	}
	if deleted == nil {
		deleted = bitset.New(uint(len(externalIDs)))
	}

	externalToInternal := make([]mapping, 0, len(externalIDs))
	for i, external := range externalIDs {
		externalToInternal = append(externalToInternal, mapping{
			External: external,
			Internal: sparsetypes.PointOffset(i),
		})
	}
	sort.Slice(externalToInternal, func(i, j int) bool {
		return externalToInternal[i].External.Compare(externalToInternal[j].External) < 0
	})
	for i := 1; i < len(externalToInternal); i++ {
		if externalToInternal[i].External.Compare(externalToInternal[i-1].External) == 0 {
			return nil, fmt.Errorf("duplicate external point id %s", externalToInternal[i].External)
		}
	}

	return &ImmutableIDTracker{
		internalToVersion:  versions,
		internalToExternal: externalIDs,
		externalToInternal: externalToInternal,
		deleted:            deleted,
	}, nil
}

// InternalVersion returns the version of an internal offset.
func (t *ImmutableIDTracker) InternalVersion(internal sparsetypes.PointOffset) (SeqNumber, bool) {
	if int(internal) >= len(t.internalToVersion) {
		return 0, false
	}
	return t.internalToVersion[internal], true
}

// InternalID resolves an external id to its internal offset.
func (t *ImmutableIDTracker) InternalID(external PointID) (sparsetypes.PointOffset, bool) {
	i := sort.Search(len(t.externalToInternal), func(i int) bool {
		return t.externalToInternal[i].External.Compare(external) >= 0
	})
	if i < len(t.externalToInternal) && t.externalToInternal[i].External.Compare(external) == 0 {
		return t.externalToInternal[i].Internal, true
	}
	return 0, false
}

// ExternalID resolves an internal offset to its external id. Deleted offsets
// do not resolve.
func (t *ImmutableIDTracker) ExternalID(internal sparsetypes.PointOffset) (PointID, bool) {
	if int(internal) >= len(t.internalToExternal) || t.deleted.Test(uint(internal)) {
		return PointID{}, false
	}
	return t.internalToExternal[internal], true
}

// IsDeleted reports whether an internal offset is marked deleted.
func (t *ImmutableIDTracker) IsDeleted(internal sparsetypes.PointOffset) bool {
	return t.deleted.Test(uint(internal))
}

// Len returns the total number of tracked offsets, deleted included.
func (t *ImmutableIDTracker) Len() int {
	return len(t.internalToExternal)
}

// AvailableCount returns the number of offsets not marked deleted.
func (t *ImmutableIDTracker) AvailableCount() int {
	return len(t.internalToExternal) - int(t.deleted.Count())
}

// SetLink terminates the process: the tracker is immutable.
func (t *ImmutableIDTracker) SetLink(PointID, sparsetypes.PointOffset) {
	panic("trying to call a mutating function (`SetLink`) of an immutable id tracker")
}

// SetInternalVersion terminates the process: the tracker is immutable.
func (t *ImmutableIDTracker) SetInternalVersion(sparsetypes.PointOffset, SeqNumber) {
	panic("trying to call a mutating function (`SetInternalVersion`) of an immutable id tracker")
}

// Drop terminates the process: the tracker is immutable.
func (t *ImmutableIDTracker) Drop(PointID) {
	panic("trying to call a mutating function (`Drop`) of an immutable id tracker")
}

// IterExternal yields all external ids in order: numeric ids first, then
// UUIDs.
func (t *ImmutableIDTracker) IterExternal() iter.Seq[PointID] {
	return func(yield func(PointID) bool) {
		for _, m := range t.externalToInternal {
			if !yield(m.External) {
				return
			}
		}
	}
}

// IterInternal yields all non-deleted internal offsets in ascending order.
func (t *ImmutableIDTracker) IterInternal() iter.Seq[sparsetypes.PointOffset] {
	return func(yield func(sparsetypes.PointOffset) bool) {
		for i := range t.internalToExternal {
			if t.deleted.Test(uint(i)) {
				continue
			}
			if !yield(sparsetypes.PointOffset(i)) {
				return
			}
		}
	}
}

// IterFrom yields (external, internal) pairs in external-id order, starting
// at the first id >= from. Starting from a numeric id also yields every UUID
// id; starting from a UUID yields UUIDs only.
func (t *ImmutableIDTracker) IterFrom(from PointID) iter.Seq2[PointID, sparsetypes.PointOffset] {
	start := sort.Search(len(t.externalToInternal), func(i int) bool {
		return t.externalToInternal[i].External.Compare(from) >= 0
	})
	return t.iterMappings(start)
}

// Iter yields all (external, internal) pairs in external-id order.
func (t *ImmutableIDTracker) Iter() iter.Seq2[PointID, sparsetypes.PointOffset] {
	return t.iterMappings(0)
}

func (t *ImmutableIDTracker) iterMappings(start int) iter.Seq2[PointID, sparsetypes.PointOffset] {
	return func(yield func(PointID, sparsetypes.PointOffset) bool) {
		for _, m := range t.externalToInternal[start:] {
			if !yield(m.External, m.Internal) {
				return
			}
		}
	}
}

type mappingsFile struct {
	InternalToVersion  []SeqNumber `json:"internal_to_version"`
	InternalToExternal []PointID   `json:"internal_to_external"`
}

// Open loads a tracker persisted by Save.
func Open(segmentPath string) (*ImmutableIDTracker, error) {
	var mappings mappingsFile
	if err := readJSONFile(filepath.Join(segmentPath, mappingsFileName), &mappings); err != nil {
		return nil, fmt.Errorf("failed to read id tracker mappings: %w", err)
	}
	deleted := bitset.New(uint(len(mappings.InternalToExternal)))
	if err := readJSONFile(filepath.Join(segmentPath, deletedFileName), deleted); err != nil {
		return nil, fmt.Errorf("failed to read id tracker deleted bitmap: %w", err)
	}

	tracker, err := New(mappings.InternalToExternal, mappings.InternalToVersion, deleted)
	if err != nil {
		return nil, err
	}
	tracker.path = segmentPath
	return tracker, nil
}

// Save persists the tracker under segmentPath.
func (t *ImmutableIDTracker) Save(segmentPath string) error {
	mappings := mappingsFile{
		InternalToVersion:  t.internalToVersion,
		InternalToExternal: t.internalToExternal,
	}
	if err := writeJSONFile(filepath.Join(segmentPath, mappingsFileName), mappings); err != nil {
		return fmt.Errorf("failed to write id tracker mappings: %w", err)
	}
	if err := writeJSONFile(filepath.Join(segmentPath, deletedFileName), t.deleted); err != nil {
		return fmt.Errorf("failed to write id tracker deleted bitmap: %w", err)
	}
	return nil
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func writeJSONFile(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o666)
}
