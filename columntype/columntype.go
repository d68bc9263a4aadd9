// Package columntype describes the primitive column types a partition
// schema can range- or hash-partition on: fixed-width signed and
// unsigned integers, booleans, IEEE-754 floats, and variable-length
// byte strings.
package columntype

import "fmt"

// Kind identifies a column's physical representation.
type Kind int

const (
	Int8 Kind = iota
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Bool
	Float32
	Float64
	Bytes // variable-length byte string
)

func (k Kind) String() string {
	switch k {
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Bool:
		return "bool"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Bytes:
		return "bytes"
	default:
		return fmt.Sprintf("columntype.Kind(%d)", int(k))
	}
}

// Varlen reports whether values of this kind have no fixed byte width.
func (k Kind) Varlen() bool {
	return k == Bytes
}

// Signed reports whether k is a signed fixed-width integer.
func (k Kind) Signed() bool {
	switch k {
	case Int8, Int16, Int32, Int64:
		return true
	default:
		return false
	}
}

// Float reports whether k is an IEEE-754 floating point type.
func (k Kind) Float() bool {
	return k == Float32 || k == Float64
}

// Width returns the fixed native-encoding width in bytes, or 0 for Bytes.
func (k Kind) Width() int {
	switch k {
	case Int8, Uint8, Bool:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	case Bytes:
		return 0
	default:
		panic(fmt.Sprintf("columntype: unknown kind %d", int(k)))
	}
}

// MinBytes returns the native-encoding (pre-sign-flip) representation of
// the smallest value representable by k. For Bytes it is the empty string,
// which sorts before every other string.
func MinBytes(k Kind) []byte {
	w := k.Width()
	buf := make([]byte, w)
	switch {
	case k == Bytes:
		return buf[:0]
	case k.Signed():
		// Native two's-complement minimum is 0x80 00 ... 00.
		buf[0] = 0x80
	case k.Float():
		// All bits set (a negative NaN pattern, below negative infinity):
		// its order-preserving encoding is all zeros, the lowest encoded
		// value, and it is what MaxBytes wraps to when incremented.
		for i := range buf {
			buf[i] = 0xFF
		}
		buf[0] = 0xFF
	default:
		// Unsigned / bool minimum is all-zero.
	}
	return buf
}

// MaxBytes returns the native-encoding (pre-sign-flip) representation of
// the largest value representable by k.
func MaxBytes(k Kind) []byte {
	w := k.Width()
	buf := make([]byte, w)
	switch {
	case k == Bytes:
		panic("columntype: Bytes has no maximum value")
	case k.Signed():
		buf[0] = 0x7F
		for i := 1; i < w; i++ {
			buf[i] = 0xFF
		}
	case k.Float():
		buf[0] = 0x7F
		for i := 1; i < w; i++ {
			buf[i] = 0xFF
		}
	default:
		for i := range buf {
			buf[i] = 0xFF
		}
	}
	return buf
}
