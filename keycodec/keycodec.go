// Package keycodec implements the partition pruner's byte-level key
// encoding: turning native column values into a lexicographically
// ordered byte sequence, and bumping a multi-column key to its
// lexicographic successor.
//
// Column values are represented in their native, pre-encoding byte
// form: big-endian two's-complement for signed integers, big-endian
// for unsigned integers and booleans, big-endian IEEE-754 for floats,
// and raw (unescaped) bytes for variable-length strings. EncodeColumn
// performs the §3 transform (sign-bit flip, float sign-magnitude
// adjustment, string escaping) that makes the byte order match value
// order.
package keycodec

import (
	"bytes"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/valyala/bytebufferpool"

	"github.com/rpcpool/partition-pruner/columntype"
)

var scratchPool bytebufferpool.Pool

// EncodeColumn appends the §3 encoding of raw (the column's native byte
// representation) to buf. isLast controls string termination: only the
// final range-schema column is emitted unescaped.
func EncodeColumn(buf *bytes.Buffer, kind columntype.Kind, raw []byte, isLast bool) error {
	switch {
	case kind == columntype.Bytes:
		encodeVarlen(buf, raw, isLast)
		return nil
	case kind.Signed():
		if len(raw) != kind.Width() {
			return fmt.Errorf("keycodec: %s value has width %d, want %d", kind, len(raw), kind.Width())
		}
		encodeSignedInt(buf, raw)
		return nil
	case kind.Float():
		if len(raw) != kind.Width() {
			return fmt.Errorf("keycodec: %s value has width %d, want %d", kind, len(raw), kind.Width())
		}
		encodeFloat(buf, raw)
		return nil
	default: // unsigned integers, bool
		if len(raw) != kind.Width() {
			return fmt.Errorf("keycodec: %s value has width %d, want %d", kind, len(raw), kind.Width())
		}
		buf.Write(raw)
		return nil
	}
}

// encodeSignedInt flips the sign bit so two's-complement ordering becomes
// unsigned byte ordering.
func encodeSignedInt(buf *bytes.Buffer, raw []byte) {
	out := scratchPool.Get()
	defer scratchPool.Put(out)
	out.B = append(out.B[:0], raw...)
	flipSignBit(out.B)
	buf.Write(out.B)
}

// encodeFloat adjusts IEEE-754 big-endian bits so natural byte order
// matches numeric order: for non-negative numbers, set the sign bit; for
// negative numbers, flip every bit.
func encodeFloat(buf *bytes.Buffer, raw []byte) {
	out := scratchPool.Get()
	defer scratchPool.Put(out)
	out.B = append(out.B[:0], raw...)
	floatNativeToOrdered(out.B)
	buf.Write(out.B)
}

// flipSignBit toggles the top bit of the first byte. It is its own
// inverse, so it serves both the native-to-ordered and ordered-to-native
// direction for signed integers.
func flipSignBit(b []byte) {
	b[0] ^= 0x80
}

// floatNativeToOrdered converts native IEEE-754 big-endian bits to the
// order-preserving encoding: for non-negative numbers, set the sign bit;
// for negative numbers, flip every bit.
func floatNativeToOrdered(b []byte) {
	if b[0]&0x80 != 0 {
		for i := range b {
			b[i] = ^b[i]
		}
	} else {
		b[0] |= 0x80
	}
}

// floatOrderedToNative is floatNativeToOrdered's inverse: it branches on
// the ORDERED representation's sign bit rather than the native one.
func floatOrderedToNative(b []byte) {
	if b[0]&0x80 == 0 {
		for i := range b {
			b[i] = ^b[i]
		}
	} else {
		b[0] &^= 0x80
	}
}

// encodeVarlen escapes 0x00 bytes as 0x00 0x01 and terminates with 0x00 0x00,
// unless isLast, in which case raw is emitted unescaped.
func encodeVarlen(buf *bytes.Buffer, raw []byte, isLast bool) {
	if isLast {
		buf.Write(raw)
		return
	}
	for _, b := range raw {
		if b == 0x00 {
			buf.WriteByte(0x00)
			buf.WriteByte(0x01)
		} else {
			buf.WriteByte(b)
		}
	}
	buf.WriteByte(0x00)
	buf.WriteByte(0x00)
}

// EncodeHashBucket appends bucket as 4 big-endian bytes.
func EncodeHashBucket(buf *bytes.Buffer, bucket uint32) {
	buf.WriteByte(byte(bucket >> 24))
	buf.WriteByte(byte(bucket >> 16))
	buf.WriteByte(byte(bucket >> 8))
	buf.WriteByte(byte(bucket))
}

// EncodeRangeKeyColumns encodes values (native byte form, one per entry of
// kinds, same order) as a range key: the final column is encoded with
// isLast=true, every other column with isLast=false.
func EncodeRangeKeyColumns(kinds []columntype.Kind, values [][]byte) ([]byte, error) {
	if len(kinds) != len(values) {
		return nil, fmt.Errorf("keycodec: %d kinds but %d values", len(kinds), len(values))
	}
	if len(kinds) == 0 {
		return nil, nil
	}
	buf := scratchPool.Get()
	defer scratchPool.Put(buf)
	buf.Reset()
	bb := bytes.NewBuffer(buf.B[:0])
	for i, kind := range kinds {
		isLast := i == len(kinds)-1
		if err := EncodeColumn(bb, kind, values[i], isLast); err != nil {
			return nil, err
		}
	}
	out := make([]byte, bb.Len())
	copy(out, bb.Bytes())
	return out, nil
}

// IncrementKey bumps the key formed by values[columnIndexes] by one
// lexicographic unit, starting at the last entry of columnIndexes and
// carrying leftward into earlier entries on overflow. kinds and values are
// indexed by the row's column index (not by position within
// columnIndexes); entries are mutated in place.
//
// It returns false iff the carry propagated past columnIndexes[0] (i.e. the
// prefix overflowed and the resulting key is no longer a valid upper
// bound — the caller should treat the bound as unbounded).
func IncrementKey(kinds []columntype.Kind, values [][]byte, columnIndexes []int) bool {
	for i := len(columnIndexes) - 1; i >= 0; i-- {
		idx := columnIndexes[i]
		overflowed := incrementColumn(kinds[idx], &values[idx])
		if !overflowed {
			return true
		}
		if i == 0 {
			return false
		}
	}
	return true
}

// incrementColumn increments a single column's native raw bytes in place
// and reports whether the increment wrapped around (overflowed).
//
// The native two's-complement and IEEE-754 bit patterns do not sort the
// way their values do (e.g. native -1, 0xFFFFFFFF, sorts above native 0,
// 0x00000000, as plain unsigned bytes). So incrementing must happen in
// the same order-preserving representation EncodeColumn produces: convert
// to ordered bytes, increment those as a plain unsigned counter (wrapping
// from all-ones back to all-zeros), then convert back. Bytes columns have
// no such transform; they simply grow by one terminator-escaping byte and
// never overflow.
func incrementColumn(kind columntype.Kind, raw *[]byte) bool {
	if kind == columntype.Bytes {
		*raw = append(*raw, 0x00)
		return false
	}
	b := *raw
	toOrdered(kind, b)
	overflowed := incrementUnsigned(b)
	fromOrdered(kind, b)
	return overflowed
}

func toOrdered(kind columntype.Kind, b []byte) {
	switch {
	case kind.Signed():
		flipSignBit(b)
	case kind.Float():
		floatNativeToOrdered(b)
	}
}

func fromOrdered(kind columntype.Kind, b []byte) {
	switch {
	case kind.Signed():
		flipSignBit(b)
	case kind.Float():
		floatOrderedToNative(b)
	}
}

// incrementUnsigned adds one to b, a big-endian unsigned counter, in
// place. It returns true iff every byte wrapped (b was all 0xFF and is
// now all 0x00).
func incrementUnsigned(b []byte) bool {
	for i := len(b) - 1; i >= 0; i-- {
		b[i]++
		if b[i] != 0 {
			return false
		}
		// b[i] wrapped to 0; carry into the previous byte.
	}
	return true
}

// Dump renders a row's native column values for debugging.
func Dump(kinds []columntype.Kind, values [][]byte) string {
	return spew.Sdump(struct {
		Kinds  []columntype.Kind
		Values [][]byte
	}{kinds, values})
}
