package predicate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEquality(t *testing.T) {
	p := NewEquality([]byte{0x01})
	require.Equal(t, Equality, p.Kind())
	require.Equal(t, []byte{0x01}, p.LowerBytes())
	require.Nil(t, p.UpperBytes())
}

func TestRangeBothBoundsOptional(t *testing.T) {
	p := NewRange(nil, []byte{0x10})
	require.Equal(t, Range, p.Kind())
	require.Nil(t, p.LowerBytes())
	require.Equal(t, []byte{0x10}, p.UpperBytes())
}

func TestIsNotNullCarriesNoBounds(t *testing.T) {
	p := NewIsNotNull()
	require.Equal(t, IsNotNull, p.Kind())
	require.Nil(t, p.LowerBytes())
	require.Nil(t, p.UpperBytes())
}

func TestInListIgnoresContents(t *testing.T) {
	p := NewInList([][]byte{{0x01}, {0x02}})
	require.Equal(t, InList, p.Kind())
}

func TestNone(t *testing.T) {
	require.Equal(t, None, NewNone().Kind())
}

func TestKindString(t *testing.T) {
	require.Equal(t, "equality", Equality.String())
	require.Equal(t, "unknown", Kind(99).String())
}

func TestMapHasNone(t *testing.T) {
	m := Map{1: NewEquality([]byte{0x01})}
	require.False(t, m.HasNone())
	m[2] = NewNone()
	require.True(t, m.HasNone())
}
