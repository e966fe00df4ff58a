package indexfile

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	bin "github.com/gagliardetto/binary"
	"golang.org/x/exp/mmap"

	"github.com/rpcpool/yellowstone-sparse/indexmeta"
	"github.com/rpcpool/yellowstone-sparse/invidx"
	"github.com/rpcpool/yellowstone-sparse/posting"
	"github.com/rpcpool/yellowstone-sparse/sparsetypes"
)

// Open reads an index file from disk.
func Open[W sparsetypes.Weight[W]](path string) (*invidx.InvertedIndexRAM[W], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read index file: %w", err)
	}
	return Load[W](data)
}

// OpenMmap reads an index file through a memory mapping. The mapping is
// released before returning; the loaded index owns its memory.
func OpenMmap[W sparsetypes.Weight[W]](path string) (*invidx.InvertedIndexRAM[W], error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to mmap index file: %w", err)
	}
	defer reader.Close()

	data := make([]byte, reader.Len())
	if _, err := reader.ReadAt(data, 0); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read mapped index file: %w", err)
	}
	return Load[W](data)
}

// Load parses a serialized index.
func Load[W sparsetypes.Weight[W]](data []byte) (*invidx.InvertedIndexRAM[W], error) {
	if len(data) < headerPrefixLen {
		return nil, ErrNotIndexFile
	}
	if !bytes.Equal(data[:8], Magic[:]) {
		return nil, ErrNotIndexFile
	}

	decoder := bin.NewBorshDecoder(data)
	if _, err := decoder.ReadNBytes(8); err != nil {
		return nil, err
	}
	headerLen, err := decoder.ReadUint32(bin.LE)
	if err != nil {
		return nil, fmt.Errorf("failed to read header length: %w", err)
	}
	if int(headerLen) > len(data)-headerPrefixLen {
		return nil, fmt.Errorf("invalid header length %d", headerLen)
	}

	version, err := decoder.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("failed to read version: %w", err)
	}
	if err := checkVersion(version); err != nil {
		return nil, err
	}

	var meta indexmeta.Meta
	if err := meta.UnmarshalWithDecoder(decoder); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	if kind, ok := meta.Get(indexmeta.KeyKind); !ok || !bytes.Equal(kind, KindInvertedIndex) {
		return nil, fmt.Errorf("%w: unexpected kind %q", ErrNotIndexFile, kind)
	}
	if name, ok := meta.GetString(indexmeta.KeyWeight); !ok || name != weightName[W]() {
		return nil, fmt.Errorf("%w: file has %q, want %q", ErrWeightMismatch, name, weightName[W]())
	}
	vectorCount, ok := meta.GetUint64(indexmeta.KeyVectorCount)
	if !ok {
		return nil, fmt.Errorf("index file metadata is missing the vector count")
	}

	// The body spans from the end of the header to the checksum trailer.
	bodyStart := headerPrefixLen + int(headerLen)
	if len(data) < bodyStart+8 {
		return nil, ErrNotIndexFile
	}
	body := data[bodyStart : len(data)-8]

	if err := decoder.SetPosition(uint(len(data) - 8)); err != nil {
		return nil, err
	}
	wantChecksum, err := decoder.ReadUint64(bin.LE)
	if err != nil {
		return nil, fmt.Errorf("failed to read checksum: %w", err)
	}
	if got := xxhash.Sum64(body); got != wantChecksum {
		return nil, fmt.Errorf("%w: got %x, want %x", ErrChecksumMismatch, got, wantChecksum)
	}

	if err := decoder.SetPosition(uint(bodyStart)); err != nil {
		return nil, err
	}
	numDims, err := decoder.ReadUint32(bin.LE)
	if err != nil {
		return nil, fmt.Errorf("failed to read dimension count: %w", err)
	}

	postings := make([]*posting.CompressedList[W], 0, numDims)
	for dim := uint32(0); dim < numDims; dim++ {
		list, err := readPostingList[W](decoder)
		if err != nil {
			return nil, fmt.Errorf("failed to read posting list for dimension %d: %w", dim, err)
		}
		postings = append(postings, list)
	}

	return invidx.New(postings, int(vectorCount)), nil
}

func readPostingList[W sparsetypes.Weight[W]](decoder *bin.Decoder) (*posting.CompressedList[W], error) {
	var zero W
	width := zero.Width()

	idDataLen, err := decoder.ReadUint32(bin.LE)
	if err != nil {
		return nil, fmt.Errorf("failed to read id data length: %w", err)
	}
	idData, err := decoder.ReadNBytes(int(idDataLen))
	if err != nil {
		return nil, fmt.Errorf("failed to read id data: %w", err)
	}

	numChunks, err := decoder.ReadUint32(bin.LE)
	if err != nil {
		return nil, fmt.Errorf("failed to read chunk count: %w", err)
	}
	chunks := make([]posting.Chunk[W], numChunks)
	for i := range chunks {
		chunk := &chunks[i]
		if chunk.Initial, err = decoder.ReadUint32(bin.LE); err != nil {
			return nil, fmt.Errorf("failed to read chunk %d initial: %w", i, err)
		}
		if chunk.Offset, err = decoder.ReadUint32(bin.LE); err != nil {
			return nil, fmt.Errorf("failed to read chunk %d offset: %w", i, err)
		}
		weightsData, err := decoder.ReadNBytes(posting.BlockLen * width)
		if err != nil {
			return nil, fmt.Errorf("failed to read chunk %d weights: %w", i, err)
		}
		for j := range chunk.Weights {
			chunk.Weights[j] = zero.Load(weightsData[j*width:])
		}
	}

	numRemainders, err := decoder.ReadUint32(bin.LE)
	if err != nil {
		return nil, fmt.Errorf("failed to read remainder count: %w", err)
	}
	var remainders []posting.Element[W]
	if numRemainders > 0 {
		remainders = make([]posting.Element[W], numRemainders)
		for i := range remainders {
			if remainders[i].RecordID, err = decoder.ReadUint32(bin.LE); err != nil {
				return nil, fmt.Errorf("failed to read remainder %d id: %w", i, err)
			}
			weightData, err := decoder.ReadNBytes(width)
			if err != nil {
				return nil, fmt.Errorf("failed to read remainder %d weight: %w", i, err)
			}
			remainders[i].Weight = zero.Load(weightData)
		}
	}

	hasLastID, err := decoder.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("failed to read last id presence: %w", err)
	}
	lastID, err := decoder.ReadUint32(bin.LE)
	if err != nil {
		return nil, fmt.Errorf("failed to read last id: %w", err)
	}

	return posting.FromParts(idData, chunks, remainders, lastID, hasLastID == 1), nil
}
