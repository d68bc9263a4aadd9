// Package schemadesc encodes a stable little-endian byte fingerprint of a
// schema/partition-schema pair, for debug logging and for correlating log
// lines across a scan with the exact partitioning scheme that produced
// them. It is not consulted by any pruning decision.
package schemadesc

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

// KV is one descriptor entry: typically a column name mapped to its kind
// name, or a partitioning property (a bucket count, the range columns)
// mapped to its value.
type KV struct {
	Key   []byte
	Value []byte
}

func NewKV(key, value []byte) KV {
	return KV{Key: key, Value: value}
}

// Fingerprint is an ordered, small key-value list with a compact binary
// encoding — small enough to log or hash whole.
type Fingerprint struct {
	KeyVals []KV
}

// Bytes returns the serialized fingerprint, panicking on a size-limit
// violation (the caller controls every entry, so this indicates a bug).
func (f *Fingerprint) Bytes() []byte {
	b, err := f.MarshalBinary()
	if err != nil {
		panic(err)
	}
	return b
}

func (f Fingerprint) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if len(f.KeyVals) > MaxNumKVs {
		return nil, fmt.Errorf("schemadesc: %d entries exceeds max %d", len(f.KeyVals), MaxNumKVs)
	}
	buf.WriteByte(byte(len(f.KeyVals)))
	for i, kv := range f.KeyVals {
		if len(kv.Key) > MaxKeySize {
			return nil, fmt.Errorf("schemadesc: entry %d key size %d exceeds max %d", i, len(kv.Key), MaxKeySize)
		}
		if len(kv.Value) > MaxValueSize {
			return nil, fmt.Errorf("schemadesc: entry %d value size %d exceeds max %d", i, len(kv.Value), MaxValueSize)
		}
		buf.WriteByte(byte(len(kv.Key)))
		buf.Write(kv.Key)
		buf.WriteByte(byte(len(kv.Value)))
		buf.Write(kv.Value)
	}
	return buf.Bytes(), nil
}

func (f *Fingerprint) UnmarshalBinary(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	decoder := bin.NewBorshDecoder(b)
	numKVs, err := decoder.ReadByte()
	if err != nil {
		return fmt.Errorf("schemadesc: read entry count: %w", err)
	}
	for i := 0; i < int(numKVs); i++ {
		var kv KV
		keyLen, err := decoder.ReadByte()
		if err != nil {
			return fmt.Errorf("schemadesc: read key length %d: %w", i, err)
		}
		kv.Key = make([]byte, keyLen)
		if _, err := io.ReadFull(decoder, kv.Key); err != nil {
			return fmt.Errorf("schemadesc: read key %d: %w", i, err)
		}
		valLen, err := decoder.ReadByte()
		if err != nil {
			return fmt.Errorf("schemadesc: read value length %d: %w", i, err)
		}
		kv.Value = make([]byte, valLen)
		if _, err := io.ReadFull(decoder, kv.Value); err != nil {
			return fmt.Errorf("schemadesc: read value %d: %w", i, err)
		}
		f.KeyVals = append(f.KeyVals, kv)
	}
	return nil
}

// Add appends a key-value entry.
func (f *Fingerprint) Add(key, value []byte) error {
	if len(f.KeyVals) >= MaxNumKVs {
		return fmt.Errorf("schemadesc: %d entries exceeds max %d", len(f.KeyVals), MaxNumKVs)
	}
	if len(key) > MaxKeySize {
		return fmt.Errorf("schemadesc: key size %d exceeds max %d", len(key), MaxKeySize)
	}
	if len(value) > MaxValueSize {
		return fmt.Errorf("schemadesc: value size %d exceeds max %d", len(value), MaxValueSize)
	}
	f.KeyVals = append(f.KeyVals, KV{Key: cloneBytes(key), Value: cloneBytes(value)})
	return nil
}

// AddUint32 appends a little-endian uint32 value entry.
func (f *Fingerprint) AddUint32(key []byte, value uint32) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, value)
	return f.Add(key, buf)
}

// Get returns the first value for the given key.
func (f Fingerprint) Get(key []byte) ([]byte, bool) {
	for _, kv := range f.KeyVals {
		if bytes.Equal(kv.Key, key) {
			return kv.Value, true
		}
	}
	return nil, false
}

// HasDuplicateKeys reports whether any key appears more than once.
func (f Fingerprint) HasDuplicateKeys() bool {
	seen := make(map[string]struct{}, len(f.KeyVals))
	for _, kv := range f.KeyVals {
		k := string(kv.Key)
		if _, ok := seen[k]; ok {
			return true
		}
		seen[k] = struct{}{}
	}
	return false
}

func cloneBytes(b []byte) []byte {
	return append([]byte(nil), b...)
}
