package translator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fluentlabs-xyz/rwasm/api"
	"github.com/fluentlabs-xyz/rwasm/internal/rwasm"
	"github.com/fluentlabs-xyz/rwasm/internal/sourcewasm"
)

func leaf(op rwasm.Opcode) sourcewasm.Instr {
	return sourcewasm.Instr{Kind: sourcewasm.KindPlain, Leaf: rwasm.Instruction{Op: op}}
}

func leafI32Const(v int32) sourcewasm.Instr {
	return sourcewasm.Instr{Kind: sourcewasm.KindPlain, Leaf: rwasm.I32(rwasm.OpI32Const, v)}
}

// constFunc returns a module with a single no-arg function that pushes two
// i32 constants and adds them, then returns.
func constFunc() *sourcewasm.Module {
	return &sourcewasm.Module{
		Types: []sourcewasm.FunctionType{{Results: []api.ValueType{api.ValueTypeI32}}},
		Functions: []sourcewasm.Function{{
			TypeIndex: 0,
			Body: []sourcewasm.Instr{
				leafI32Const(2),
				leafI32Const(3),
				leaf(rwasm.OpI32Add),
				{Kind: sourcewasm.KindEnd},
			},
		}},
		EntryFuncIndex: 0,
	}
}

func TestTranslateConstFold(t *testing.T) {
	m, err := Translate(constFunc(), Options{})
	require.NoError(t, err)
	// entrypoint is always the last function.
	require.Equal(t, m.EntrypointFunc(), uint32(len(m.FunctionLengths)-1))
	require.Greater(t, len(m.Instructions), 0)
	require.Equal(t, rwasm.OpSignatureCheck, m.Instructions[0].Op)
}

func TestTranslateIfElse(t *testing.T) {
	src := &sourcewasm.Module{
		Types: []sourcewasm.FunctionType{{Params: []api.ValueType{api.ValueTypeI32}, Results: []api.ValueType{api.ValueTypeI32}}},
		Functions: []sourcewasm.Function{{
			TypeIndex: 0,
			Body: []sourcewasm.Instr{
				leaf(rwasm.OpLocalGet), // condition
				{Kind: sourcewasm.KindIf, Block: sourcewasm.BlockType{HasResult: true, Result: api.ValueTypeI32}},
				leafI32Const(1),
				{Kind: sourcewasm.KindElse},
				leafI32Const(0),
				{Kind: sourcewasm.KindEnd},
				{Kind: sourcewasm.KindEnd},
			},
		}},
		EntryFuncIndex: 0,
	}
	m, err := Translate(src, Options{})
	require.NoError(t, err)
	require.NotEmpty(t, m.Instructions)
}

func TestTranslateLoopBranch(t *testing.T) {
	src := &sourcewasm.Module{
		Types: []sourcewasm.FunctionType{{}},
		Functions: []sourcewasm.Function{{
			TypeIndex: 0,
			Body: []sourcewasm.Instr{
				{Kind: sourcewasm.KindLoop, Block: sourcewasm.BlockType{}},
				leaf(rwasm.OpLocalGet),
				{Kind: sourcewasm.KindBrIf, Depth: 0},
				{Kind: sourcewasm.KindEnd},
				{Kind: sourcewasm.KindEnd},
			},
		}},
		EntryFuncIndex: 0,
	}
	m, err := Translate(src, Options{})
	require.NoError(t, err)
	// the br_if should have resolved to a negative (backward) offset
	found := false
	for _, i := range m.Instructions {
		if i.Op == rwasm.OpBrIfNez || i.Op == rwasm.OpBrAdjustIfNez {
			require.Less(t, i.BranchOffset(), int32(0))
			found = true
		}
	}
	require.True(t, found)
}

func TestTranslateCallInternalResolvesOffset(t *testing.T) {
	src := &sourcewasm.Module{
		Types: []sourcewasm.FunctionType{{}},
		Functions: []sourcewasm.Function{
			{TypeIndex: 0, Body: []sourcewasm.Instr{
				{Kind: sourcewasm.KindCall, FuncIdx: 1},
				{Kind: sourcewasm.KindEnd},
			}},
			{TypeIndex: 0, Body: []sourcewasm.Instr{
				{Kind: sourcewasm.KindEnd},
			}},
		},
		EntryFuncIndex: 0,
	}
	m, err := Translate(src, Options{})
	require.NoError(t, err)
	var call *rwasm.Instruction
	for i := range m.Instructions {
		if m.Instructions[i].Op == rwasm.OpCallInternal {
			call = &m.Instructions[i]
			break
		}
	}
	require.NotNil(t, call)
	// function 1 starts right after function 0's instructions.
	require.Equal(t, m.FunctionOffsets()[1], call.U32Operand())
}

func TestTranslateFuelMarksEmitted(t *testing.T) {
	m, err := Translate(constFunc(), Options{TrackFuel: true})
	require.NoError(t, err)
	found := false
	for _, i := range m.Instructions {
		if i.Op == rwasm.OpConsumeFuel {
			found = true
			require.Greater(t, i.U32Operand(), uint32(0))
		}
	}
	require.True(t, found)
}

func TestTranslateRejectsImportedEntry(t *testing.T) {
	src := &sourcewasm.Module{
		Types:             []sourcewasm.FunctionType{{}},
		ImportedFunctions: []uint32{0},
		EntryFuncIndex:    0,
	}
	_, err := Translate(src, Options{})
	require.Error(t, err)
}
