package rwasm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDataSegmentDropReadsEmpty(t *testing.T) {
	d := NewDataSegment([]byte{1, 2, 3})
	require.Equal(t, []byte{1, 2, 3}, d.Read())
	d.Drop()
	require.True(t, d.Dropped())
	require.Empty(t, d.Read())
}

func TestElementSegmentDropReadsEmpty(t *testing.T) {
	e := NewElementSegment(nil)
	e.Drop()
	require.Empty(t, e.Read())
}

func TestModuleFunctionOffsets(t *testing.T) {
	m := &Module{FunctionLengths: []uint32{3, 5, 2}}
	require.Equal(t, []uint32{0, 3, 8}, m.FunctionOffsets())
	require.EqualValues(t, 2, m.EntrypointFunc())
}

func TestStoreGlobalsAutoExtend(t *testing.T) {
	m := &Module{DataSegments: [][]byte{{}}, ElementSegments: [][]uint32{{}}}
	s := NewStore(m, 4096, 1024)
	s.SetGlobal(2, 99)
	require.EqualValues(t, 99, s.Global(2))
	require.EqualValues(t, 0, s.Global(0))
	require.Len(t, s.Globals, 3)
}
