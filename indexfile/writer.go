package indexfile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
	logging "github.com/ipfs/go-log/v2"

	"github.com/rpcpool/yellowstone-sparse/indexmeta"
	"github.com/rpcpool/yellowstone-sparse/invidx"
	"github.com/rpcpool/yellowstone-sparse/metrics"
	"github.com/rpcpool/yellowstone-sparse/posting"
	"github.com/rpcpool/yellowstone-sparse/sparsetypes"
)

var log = logging.Logger("sparse/indexfile")

// weightName returns the metadata tag of the weight precision.
func weightName[W sparsetypes.Weight[W]]() string {
	var w W
	switch w.Width() {
	case 4:
		return "float32"
	case 2:
		return "float16"
	default:
		return fmt.Sprintf("w%d", w.Width())
	}
}

// Seal writes the index to path. The file is assembled under a temporary
// name and renamed into place once fully written and synced.
func Seal[W sparsetypes.Weight[W]](path string, index *invidx.InvertedIndexRAM[W]) (err error) {
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		metrics.IndexFilesSealed.WithLabelValues(outcome).Inc()
	}()

	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create index file: %w", err)
	}
	defer file.Close()

	buffered := bufio.NewWriterSize(file, 1024*64)

	meta := indexmeta.Meta{}
	if err := meta.Add(indexmeta.KeyKind, KindInvertedIndex); err != nil {
		return err
	}
	if err := meta.AddString(indexmeta.KeyWeight, weightName[W]()); err != nil {
		return err
	}
	if err := meta.AddUint64(indexmeta.KeyVectorCount, uint64(index.VectorCount())); err != nil {
		return err
	}
	if err := meta.AddUint64(indexmeta.KeyDimCount, uint64(index.DimCount())); err != nil {
		return err
	}

	if err := writeHeader(buffered, meta); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	// The body streams through the hasher on its way to the file.
	hasher := xxhash.New()
	body := io.MultiWriter(buffered, hasher)
	if err := writeBody(body, index); err != nil {
		return fmt.Errorf("failed to write body: %w", err)
	}

	var checksum [8]byte
	binary.LittleEndian.PutUint64(checksum[:], hasher.Sum64())
	if _, err := buffered.Write(checksum[:]); err != nil {
		return fmt.Errorf("failed to write checksum: %w", err)
	}

	if err := buffered.Flush(); err != nil {
		return fmt.Errorf("failed to flush index file: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync index file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close index file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename index file into place: %w", err)
	}

	if info, statErr := os.Stat(path); statErr == nil {
		log.Infow("sealed sparse index file",
			"path", path,
			"size", humanize.Bytes(uint64(info.Size())),
			"dims", index.DimCount(),
			"vectors", index.VectorCount(),
		)
	}
	return nil
}

func writeHeader(w io.Writer, meta indexmeta.Meta) error {
	rest := make([]byte, 0, 64)
	rest = append(rest, Version)
	rest = append(rest, meta.Bytes()...)

	if _, err := w.Write(Magic[:]); err != nil {
		return err
	}
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(rest)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(rest)
	return err
}

func writeBody[W sparsetypes.Weight[W]](w io.Writer, index *invidx.InvertedIndexRAM[W]) error {
	postings := index.Postings()

	var scratch []byte
	scratch = putUint32(scratch, uint32(len(postings)))
	if _, err := w.Write(scratch); err != nil {
		return err
	}

	for dim, list := range postings {
		if err := writePostingList(w, list); err != nil {
			return fmt.Errorf("failed to write posting list for dimension %d: %w", dim, err)
		}
	}
	return nil
}

func writePostingList[W sparsetypes.Weight[W]](w io.Writer, list *posting.CompressedList[W]) error {
	idData, chunks, remainders := list.Parts()
	var zero W
	width := zero.Width()

	buf := make([]byte, 0, 16+len(idData)+len(chunks)*(8+posting.BlockLen*width)+len(remainders)*(4+width))

	buf = putUint32(buf, uint32(len(idData)))
	buf = append(buf, idData...)

	buf = putUint32(buf, uint32(len(chunks)))
	weightBuf := make([]byte, width)
	for i := range chunks {
		chunk := &chunks[i]
		buf = putUint32(buf, chunk.Initial)
		buf = putUint32(buf, chunk.Offset)
		for _, weight := range chunk.Weights {
			weight.Put(weightBuf)
			buf = append(buf, weightBuf...)
		}
	}

	buf = putUint32(buf, uint32(len(remainders)))
	for _, e := range remainders {
		buf = putUint32(buf, e.RecordID)
		e.Weight.Put(weightBuf)
		buf = append(buf, weightBuf...)
	}

	if lastID, ok := list.LastID(); ok {
		buf = append(buf, 1)
		buf = putUint32(buf, lastID)
	} else {
		buf = append(buf, 0)
		buf = putUint32(buf, 0)
	}

	_, err := w.Write(buf)
	return err
}
