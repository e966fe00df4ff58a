// Package indexfile persists built inverted indexes as single immutable flat
// files.
//
// # Layout
//
// An index file is the concatenation of
//
//	magic [8]byte
//	headerLen uint32 (length of the rest of the header)
//	version byte
//	metadata (indexmeta key-value section: kind, weight precision, counts)
//	body:
//	  numDims uint32
//	  per dimension, the posting list components:
//	    idData     (uint32 length + packed bytes)
//	    chunks     (uint32 count + {initial uint32, offset uint32, weights})
//	    remainders (uint32 count + {id uint32, weight})
//	    lastID     (presence byte + uint32)
//	checksum uint64 (xxHash64 of the body)
//
// All integers are little-endian. Weights are stored at their native width.
// Round-tripping preserves the posting list invariants; the layout itself is
// not promised to stay stable across releases.
package indexfile

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Magic are the first eight bytes of an index file.
var Magic = [8]byte{'s', 'p', 'r', 's', 'i', 'd', 'x', '1'}

const Version = uint8(1)

// KindInvertedIndex is the metadata kind of inverted index files.
var KindInvertedIndex = []byte("sparse-inverted-index")

var (
	ErrNotIndexFile     = errors.New("not a sparse index file")
	ErrChecksumMismatch = errors.New("index file checksum mismatch")
	ErrWeightMismatch   = errors.New("index file stores a different weight precision")
)

// headerPrefixLen is the length of the magic plus the header length field.
const headerPrefixLen = 12

func checkVersion(got uint8) error {
	if got != Version {
		return fmt.Errorf("unsupported index file version: want %d, got %d", Version, got)
	}
	return nil
}

func putUint32(dst []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return append(dst, buf[:]...)
}
