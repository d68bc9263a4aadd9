package keycodec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rpcpool/partition-pruner/columntype"
)

func encodeOne(t *testing.T, kind columntype.Kind, raw []byte, isLast bool) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, EncodeColumn(&buf, kind, raw, isLast))
	return buf.Bytes()
}

func TestEncodeColumnSignedIntFlipsSignBit(t *testing.T) {
	// -1 (0xFFFFFFFF) must sort before 0 (0x00000000) once encoded.
	negOne := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	zero := []byte{0x00, 0x00, 0x00, 0x00}
	encNegOne := encodeOne(t, columntype.Int32, negOne, true)
	encZero := encodeOne(t, columntype.Int32, zero, true)
	require.Equal(t, 1, bytes.Compare(encZero, encNegOne))
}

func TestEncodeColumnSignedOrderingMatchesValueOrdering(t *testing.T) {
	// int32 values -2, -1, 0, 1 in ascending order.
	values := [][]byte{
		{0xFF, 0xFF, 0xFF, 0xFE}, // -2
		{0xFF, 0xFF, 0xFF, 0xFF}, // -1
		{0x00, 0x00, 0x00, 0x00}, // 0
		{0x00, 0x00, 0x00, 0x01}, // 1
	}
	var encoded [][]byte
	for _, v := range values {
		encoded = append(encoded, encodeOne(t, columntype.Int32, v, true))
	}
	for i := 1; i < len(encoded); i++ {
		require.True(t, bytes.Compare(encoded[i-1], encoded[i]) < 0)
	}
}

func TestEncodeColumnFloatOrderingMatchesValueOrdering(t *testing.T) {
	// float64 bit patterns for -1.0, 0.0, 1.0 in ascending numeric order.
	negOne := []byte{0xBF, 0xF0, 0, 0, 0, 0, 0, 0}
	posZero := []byte{0, 0, 0, 0, 0, 0, 0, 0}
	posOne := []byte{0x3F, 0xF0, 0, 0, 0, 0, 0, 0}

	encNegOne := encodeOne(t, columntype.Float64, negOne, true)
	encZero := encodeOne(t, columntype.Float64, posZero, true)
	encOne := encodeOne(t, columntype.Float64, posOne, true)

	require.True(t, bytes.Compare(encNegOne, encZero) < 0)
	require.True(t, bytes.Compare(encZero, encOne) < 0)
}

func TestEncodeColumnUnsignedPassesThrough(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x03, 0x04}
	require.Equal(t, raw, encodeOne(t, columntype.Uint32, raw, true))
}

func TestEncodeColumnVarlenEscapesZeroByteAndTerminates(t *testing.T) {
	raw := []byte{'a', 0x00, 'b'}
	got := encodeOne(t, columntype.Bytes, raw, false)
	want := []byte{'a', 0x00, 0x01, 'b', 0x00, 0x00}
	require.Equal(t, want, got)
}

func TestEncodeColumnVarlenLastColumnIsUnescaped(t *testing.T) {
	raw := []byte{'a', 0x00, 'b'}
	got := encodeOne(t, columntype.Bytes, raw, true)
	require.Equal(t, raw, got)
}

func TestEncodeColumnWidthMismatchErrors(t *testing.T) {
	var buf bytes.Buffer
	err := EncodeColumn(&buf, columntype.Int32, []byte{0x01, 0x02}, true)
	require.Error(t, err)
}

func TestEncodeHashBucketBigEndian(t *testing.T) {
	var buf bytes.Buffer
	EncodeHashBucket(&buf, 0x01020304)
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, buf.Bytes())
}

func TestEncodeRangeKeyColumnsOnlyLastColumnUnescaped(t *testing.T) {
	kinds := []columntype.Kind{columntype.Bytes, columntype.Bytes}
	values := [][]byte{{'a', 0x00}, {'b'}}
	got, err := EncodeRangeKeyColumns(kinds, values)
	require.NoError(t, err)
	want := []byte{'a', 0x00, 0x01, 0x00, 0x00, 'b'}
	require.Equal(t, want, got)
}

func TestEncodeRangeKeyColumnsEmptyIsEmpty(t *testing.T) {
	got, err := EncodeRangeKeyColumns(nil, nil)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestEncodeRangeKeyColumnsMismatchedLengthsError(t *testing.T) {
	_, err := EncodeRangeKeyColumns([]columntype.Kind{columntype.Int32}, nil)
	require.Error(t, err)
}

func TestIncrementKeySingleColumnNoOverflow(t *testing.T) {
	kinds := []columntype.Kind{columntype.Uint32}
	values := [][]byte{{0x00, 0x00, 0x00, 0x01}}
	ok := IncrementKey(kinds, values, []int{0})
	require.True(t, ok)
	require.Equal(t, []byte{0x00, 0x00, 0x00, 0x02}, values[0])
}

func TestIncrementKeySingleColumnOverflowResetsToZero(t *testing.T) {
	kinds := []columntype.Kind{columntype.Uint32}
	values := [][]byte{{0xFF, 0xFF, 0xFF, 0xFF}}
	ok := IncrementKey(kinds, values, []int{0})
	require.False(t, ok)
	require.Equal(t, []byte{0x00, 0x00, 0x00, 0x00}, values[0])
}

func TestIncrementKeyCarriesIntoPrecedingPrefixColumn(t *testing.T) {
	kinds := []columntype.Kind{columntype.Uint8, columntype.Uint8}
	values := [][]byte{{0x05}, {0xFF}}
	ok := IncrementKey(kinds, values, []int{0, 1})
	require.True(t, ok)
	require.Equal(t, []byte{0x06}, values[0])
	require.Equal(t, []byte{0x00}, values[1])
}

func TestIncrementKeyCarryPastPrefixStartOverflows(t *testing.T) {
	kinds := []columntype.Kind{columntype.Uint8, columntype.Uint8}
	values := [][]byte{{0xFF}, {0xFF}}
	ok := IncrementKey(kinds, values, []int{0, 1})
	require.False(t, ok)
	require.Equal(t, []byte{0x00}, values[0])
	require.Equal(t, []byte{0x00}, values[1])
}

func TestIncrementKeySignedMaxOverflowsToSignedMin(t *testing.T) {
	kinds := []columntype.Kind{columntype.Int32}
	values := [][]byte{columntype.MaxBytes(columntype.Int32)}
	ok := IncrementKey(kinds, values, []int{0})
	require.False(t, ok, "incrementing a signed column at its maximum value must report overflow")
	require.Equal(t, columntype.MinBytes(columntype.Int32), values[0])
}

func TestIncrementKeySignedNegativeOneIsNotOverflow(t *testing.T) {
	kinds := []columntype.Kind{columntype.Int32}
	values := [][]byte{{0xFF, 0xFF, 0xFF, 0xFF}} // -1
	ok := IncrementKey(kinds, values, []int{0})
	require.True(t, ok, "-1 is not the column maximum, so incrementing it must not overflow")
	require.Equal(t, []byte{0x00, 0x00, 0x00, 0x00}, values[0]) // -1 + 1 = 0
}

func TestIncrementKeyFloatMaxOverflowsToFloatMin(t *testing.T) {
	kinds := []columntype.Kind{columntype.Float64}
	values := [][]byte{columntype.MaxBytes(columntype.Float64)}
	ok := IncrementKey(kinds, values, []int{0})
	require.False(t, ok)
	require.Equal(t, columntype.MinBytes(columntype.Float64), values[0])
}

func TestIncrementKeyBytesColumnNeverOverflows(t *testing.T) {
	kinds := []columntype.Kind{columntype.Bytes}
	values := [][]byte{{'a', 'b'}}
	ok := IncrementKey(kinds, values, []int{0})
	require.True(t, ok)
	require.Equal(t, []byte{'a', 'b', 0x00}, values[0])
}
