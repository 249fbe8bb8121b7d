package sourcewasm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFuncIndexSpace(t *testing.T) {
	m := &Module{
		Types:             []FunctionType{{}, {}},
		ImportedFunctions: []uint32{0, 1},
		Functions:         []Function{{TypeIndex: 1}, {TypeIndex: 0}},
	}
	require.Equal(t, uint32(4), m.FuncCount())

	require.True(t, m.IsImportedFunc(0))
	require.True(t, m.IsImportedFunc(1))
	require.False(t, m.IsImportedFunc(2))
	require.False(t, m.IsImportedFunc(3))

	require.Equal(t, uint32(0), m.LocalFuncIndex(2))
	require.Equal(t, uint32(1), m.LocalFuncIndex(3))

	require.Equal(t, m.Types[0], m.TypeOf(0))
	require.Equal(t, m.Types[1], m.TypeOf(1))
	require.Equal(t, m.Types[1], m.TypeOf(2))
	require.Equal(t, m.Types[0], m.TypeOf(3))
}
