package rwasm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryGrowBounds(t *testing.T) {
	m := NewMemory(1, 2)
	require.Equal(t, uint32(1), m.Pages())
	prev, ok := m.Grow(1)
	require.True(t, ok)
	require.Equal(t, uint32(1), prev)
	require.Equal(t, uint32(2), m.Pages())

	_, ok = m.Grow(1)
	require.False(t, ok, "growth beyond max must fail")
	require.Equal(t, uint32(2), m.Pages(), "failed growth must not mutate size")
}

func TestMemoryReadWrite(t *testing.T) {
	m := NewMemory(1, 1)
	m.Bytes()[65535] = 0xAA
	require.Equal(t, byte(0xAA), m.Bytes()[65535])
}

func TestTableGrowAndFill(t *testing.T) {
	tbl := NewTable(ElemTypeFuncref, 1, 4)
	require.Equal(t, uint32(1), tbl.Size())
	prev, ok := tbl.Grow(2, 0)
	require.True(t, ok)
	require.Equal(t, uint32(1), prev)
	require.Equal(t, uint32(3), tbl.Size())

	_, ok = tbl.Grow(2, 0)
	require.False(t, ok)
}

func TestTableGetSetOutOfBounds(t *testing.T) {
	tbl := NewTable(ElemTypeFuncref, 1, 1)
	_, ok := tbl.Get(5)
	require.False(t, ok)
	require.False(t, tbl.Set(5, 1))
	require.True(t, tbl.Set(0, 7))
	v, ok := tbl.Get(0)
	require.True(t, ok)
	require.EqualValues(t, 7, v)
}
