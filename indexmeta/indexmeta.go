// Package indexmeta is the byte-bounded key-value metadata section embedded
// in the header of sparse index files: small typed attributes (index kind,
// weight precision, vector count) with a compact binary encoding.
package indexmeta

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	bin "github.com/gagliardetto/binary"
)

const (
	MaxNumKVs    = 255
	MaxKeySize   = 255
	MaxValueSize = 255
)

// Well-known metadata keys.
var (
	KeyKind        = []byte("kind")
	KeyWeight      = []byte("weight")
	KeyVectorCount = []byte("vector-count")
	KeyDimCount    = []byte("dim-count")
)

type KV struct {
	Key   []byte
	Value []byte
}

// Meta is an ordered list of key-value pairs. Keys may repeat.
type Meta struct {
	KeyVals []KV
}

// Bytes returns the serialized metadata.
func (m Meta) Bytes() []byte {
	b, err := m.MarshalBinary()
	if err != nil {
		panic(err)
	}
	return b
}

func (m Meta) MarshalBinary() ([]byte, error) {
	if len(m.KeyVals) > MaxNumKVs {
		return nil, fmt.Errorf("number of key-value pairs %d exceeds max %d", len(m.KeyVals), MaxNumKVs)
	}
	var buf bytes.Buffer
	buf.WriteByte(byte(len(m.KeyVals)))
	for i, kv := range m.KeyVals {
		if len(kv.Key) > MaxKeySize {
			return nil, fmt.Errorf("key %d size %d exceeds max %d", i, len(kv.Key), MaxKeySize)
		}
		buf.WriteByte(byte(len(kv.Key)))
		buf.Write(kv.Key)

		if len(kv.Value) > MaxValueSize {
			return nil, fmt.Errorf("value %d size %d exceeds max %d", i, len(kv.Value), MaxValueSize)
		}
		buf.WriteByte(byte(len(kv.Value)))
		buf.Write(kv.Value)
	}
	return buf.Bytes(), nil
}

// Decoder is the reader subset needed to parse metadata.
type Decoder interface {
	io.ByteReader
	io.Reader
}

func (m *Meta) UnmarshalWithDecoder(decoder Decoder) error {
	numKVs, err := decoder.ReadByte()
	if err != nil {
		return fmt.Errorf("failed to read number of key-value pairs: %w", err)
	}
	for i := 0; i < int(numKVs); i++ {
		var kv KV
		keyLen, err := decoder.ReadByte()
		if err != nil {
			return fmt.Errorf("failed to read key length %d: %w", i, err)
		}
		kv.Key = make([]byte, keyLen)
		if _, err := io.ReadFull(decoder, kv.Key); err != nil {
			return fmt.Errorf("failed to read key %d: %w", i, err)
		}

		valueLen, err := decoder.ReadByte()
		if err != nil {
			return fmt.Errorf("failed to read value length %d: %w", i, err)
		}
		kv.Value = make([]byte, valueLen)
		if _, err := io.ReadFull(decoder, kv.Value); err != nil {
			return fmt.Errorf("failed to read value %d: %w", i, err)
		}
		m.KeyVals = append(m.KeyVals, kv)
	}
	return nil
}

func (m *Meta) UnmarshalBinary(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return m.UnmarshalWithDecoder(bin.NewBorshDecoder(b))
}

// Add appends a key-value pair.
func (m *Meta) Add(key, value []byte) error {
	if len(m.KeyVals) >= MaxNumKVs {
		return fmt.Errorf("number of key-value pairs %d exceeds max %d", len(m.KeyVals), MaxNumKVs)
	}
	if len(key) > MaxKeySize {
		return fmt.Errorf("key size %d exceeds max %d", len(key), MaxKeySize)
	}
	if len(value) > MaxValueSize {
		return fmt.Errorf("value size %d exceeds max %d", len(value), MaxValueSize)
	}
	m.KeyVals = append(m.KeyVals, KV{Key: cloneBytes(key), Value: cloneBytes(value)})
	return nil
}

// Set replaces all values for the given key with a single value.
func (m *Meta) Set(key, value []byte) error {
	m.Remove(key)
	return m.Add(key, value)
}

func (m *Meta) AddString(key []byte, value string) error {
	return m.Add(key, []byte(value))
}

func (m Meta) GetString(key []byte) (string, bool) {
	value, ok := m.Get(key)
	if !ok {
		return "", false
	}
	return string(value), true
}

func (m *Meta) AddUint64(key []byte, value uint64) error {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, value)
	return m.Add(key, buf)
}

func (m Meta) GetUint64(key []byte) (uint64, bool) {
	value, ok := m.Get(key)
	if !ok || len(value) != 8 {
		return 0, false
	}
	return binary.LittleEndian.Uint64(value), true
}

// Get returns the first value for the given key.
func (m Meta) Get(key []byte) ([]byte, bool) {
	for _, kv := range m.KeyVals {
		if bytes.Equal(kv.Key, key) {
			return kv.Value, true
		}
	}
	return nil, false
}

// Count returns the number of values for the given key.
func (m Meta) Count(key []byte) int {
	count := 0
	for _, kv := range m.KeyVals {
		if bytes.Equal(kv.Key, key) {
			count++
		}
	}
	return count
}

func (m *Meta) Remove(key []byte) {
	kept := m.KeyVals[:0]
	for _, kv := range m.KeyVals {
		if !bytes.Equal(kv.Key, key) {
			kept = append(kept, kv)
		}
	}
	m.KeyVals = kept
}

func cloneBytes(b []byte) []byte {
	return append([]byte(nil), b...)
}
