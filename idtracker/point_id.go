// Package idtracker maps index-internal point offsets to the external point
// ids callers address vectors by. External ids are either numeric or UUIDs;
// every ordered traversal yields all numeric ids before any UUID id.
package idtracker

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// PointID is an external point identifier: a numeric id or a UUID.
type PointID struct {
	num    uint64
	uid    uuid.UUID
	isUUID bool
}

// NumID returns a numeric point id.
func NumID(n uint64) PointID {
	return PointID{num: n}
}

// UUIDID returns a UUID point id.
func UUIDID(u uuid.UUID) PointID {
	return PointID{uid: u, isUUID: true}
}

func (p PointID) IsNum() bool  { return !p.isUUID }
func (p PointID) IsUUID() bool { return p.isUUID }

// Num returns the numeric value, false for UUID ids.
func (p PointID) Num() (uint64, bool) {
	if p.isUUID {
		return 0, false
	}
	return p.num, true
}

// UUID returns the UUID value, false for numeric ids.
func (p PointID) UUID() (uuid.UUID, bool) {
	if !p.isUUID {
		return uuid.UUID{}, false
	}
	return p.uid, true
}

// Compare orders point ids: all numeric ids before all UUID ids, numeric by
// value, UUIDs by byte order.
func (p PointID) Compare(other PointID) int {
	if p.isUUID != other.isUUID {
		if p.isUUID {
			return 1
		}
		return -1
	}
	if p.isUUID {
		return bytes.Compare(p.uid[:], other.uid[:])
	}
	switch {
	case p.num < other.num:
		return -1
	case p.num > other.num:
		return 1
	}
	return 0
}

func (p PointID) String() string {
	if p.isUUID {
		return p.uid.String()
	}
	return strconv.FormatUint(p.num, 10)
}

// MarshalJSON encodes numeric ids as JSON numbers and UUID ids as strings.
func (p PointID) MarshalJSON() ([]byte, error) {
	if p.isUUID {
		return []byte(`"` + p.uid.String() + `"`), nil
	}
	return []byte(strconv.FormatUint(p.num, 10)), nil
}

func (p *PointID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty point id")
	}
	if data[0] == '"' {
		u, err := uuid.ParseBytes(bytes.Trim(data, `"`))
		if err != nil {
			return fmt.Errorf("failed to parse uuid point id: %w", err)
		}
		*p = UUIDID(u)
		return nil
	}
	n, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("failed to parse numeric point id: %w", err)
	}
	*p = NumID(n)
	return nil
}
