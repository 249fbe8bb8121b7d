package interpreter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fluentlabs-xyz/rwasm/api"
	"github.com/fluentlabs-xyz/rwasm/internal/rwasm"
	"github.com/fluentlabs-xyz/rwasm/internal/sourcewasm"
	"github.com/fluentlabs-xyz/rwasm/internal/translator"
	"github.com/fluentlabs-xyz/rwasm/internal/trap"
)

func leaf(op rwasm.Opcode) sourcewasm.Instr {
	return sourcewasm.Instr{Kind: sourcewasm.KindPlain, Leaf: rwasm.Instruction{Op: op}}
}

func leafU32(op rwasm.Opcode, v uint32) sourcewasm.Instr {
	return sourcewasm.Instr{Kind: sourcewasm.KindPlain, Leaf: rwasm.U32(op, v)}
}

func leafI32Const(v int32) sourcewasm.Instr {
	return sourcewasm.Instr{Kind: sourcewasm.KindPlain, Leaf: rwasm.I32(rwasm.OpI32Const, v)}
}

func translate(t *testing.T, src *sourcewasm.Module, opts translator.Options) *rwasm.Module {
	t.Helper()
	m, err := translator.Translate(src, opts)
	require.NoError(t, err)
	return m
}

func requireTrap(t *testing.T, err error, kind trap.Kind) {
	t.Helper()
	require.Error(t, err)
	te, ok := trap.AsTrap(err)
	require.True(t, ok, "expected a trap.Error, got %v", err)
	require.Equal(t, kind, te.Kind)
}

// TestScenarioS1ConstFold drives a straight-line const-and-add function
// under fuel metering, reading the emitted ConsumeFuel cost back from the
// translated module rather than hardcoding it: the exact span-length fuel
// model is an implementation detail of the translator, not something a
// caller should need to predict.
func TestScenarioS1ConstFold(t *testing.T) {
	src := &sourcewasm.Module{
		Types: []sourcewasm.FunctionType{{Results: []api.ValueType{api.ValueTypeI32}}},
		Functions: []sourcewasm.Function{{
			TypeIndex: 0,
			Body: []sourcewasm.Instr{
				leafI32Const(100),
				leafI32Const(20),
				leaf(rwasm.OpI32Add),
				{Kind: sourcewasm.KindEnd},
			},
		}},
		EntryFuncIndex: 0,
	}
	m := translate(t, src, translator.Options{TrackFuel: true})

	var cost uint32
	for _, instr := range m.Instructions {
		if instr.Op == rwasm.OpConsumeFuel {
			cost = instr.U32Operand()
			break
		}
	}
	require.Greater(t, cost, uint32(0))

	it := NewInterpreter(m, nil, Config{FuelEnabled: true, MaxFuel: uint64(cost)})
	results, snap, err := it.Invoke(context.Background())
	require.NoError(t, err)
	require.Nil(t, snap)
	require.Equal(t, []uint64{120}, results)

	it = NewInterpreter(m, nil, Config{FuelEnabled: true, MaxFuel: uint64(cost) - 1})
	_, _, err = it.Invoke(context.Background())
	requireTrap(t, err, trap.OutOfFuel)
}

// TestScenarioS2MemoryStoreLoad stores a byte at the last address of a
// single-page memory and reads it back, exercising boundary-address
// load/store together with the entrypoint's automatic grow-to-declared-
// minimum.
func TestScenarioS2MemoryStoreLoad(t *testing.T) {
	src := &sourcewasm.Module{
		Types:  []sourcewasm.FunctionType{{Results: []api.ValueType{api.ValueTypeI32}}},
		Memory: &sourcewasm.Memory{Min: 1, Max: 2},
		Functions: []sourcewasm.Function{{
			TypeIndex: 0,
			Body: []sourcewasm.Instr{
				leafI32Const(65535),
				leafI32Const(0xAA),
				leaf(rwasm.OpI32Store8),
				leafI32Const(65535),
				leaf(rwasm.OpI32Load8U),
				{Kind: sourcewasm.KindEnd},
			},
		}},
		EntryFuncIndex: 0,
	}
	m := translate(t, src, translator.Options{})

	it := NewInterpreter(m, nil, Config{MaxMemoryPages: 2})
	results, snap, err := it.Invoke(context.Background())
	require.NoError(t, err)
	require.Nil(t, snap)
	require.Equal(t, []uint64{0xAA}, results)
}

// TestScenarioS2MemoryGrowExceedsMax grows past the runtime Config's page
// ceiling rather than the source module's own declared maximum, the
// ceiling NewStore actually enforces.
func TestScenarioS2MemoryGrowExceedsMax(t *testing.T) {
	src := &sourcewasm.Module{
		Types:  []sourcewasm.FunctionType{{Results: []api.ValueType{api.ValueTypeI32}}},
		Memory: &sourcewasm.Memory{Min: 1, Max: 2},
		Functions: []sourcewasm.Function{{
			TypeIndex: 0,
			Body: []sourcewasm.Instr{
				leafI32Const(2),
				leaf(rwasm.OpMemoryGrow),
				{Kind: sourcewasm.KindEnd},
			},
		}},
		EntryFuncIndex: 0,
	}
	m := translate(t, src, translator.Options{})

	it := NewInterpreter(m, nil, Config{MaxMemoryPages: 2})
	results, snap, err := it.Invoke(context.Background())
	require.NoError(t, err)
	require.Nil(t, snap)
	require.Equal(t, []uint64{rwasm.GrowFailed}, results)
}

// TestScenarioS3IndirectCallSignatureMismatch calls through a table entry
// whose actual signature disagrees, in parameter count, with the call
// site's expected type. ArityMatches compares packed parameter/result
// counts only, so this uses a genuine arity mismatch rather than a
// same-arity different-value-type one, which this implementation has no
// way to observe at a CallIndirect site.
func TestScenarioS3IndirectCallSignatureMismatch(t *testing.T) {
	src := &sourcewasm.Module{
		Types: []sourcewasm.FunctionType{
			{Results: []api.ValueType{api.ValueTypeI32}},                                        // callee's actual type: 0 params
			{Params: []api.ValueType{api.ValueTypeI32}, Results: []api.ValueType{api.ValueTypeI32}}, // call site's expected type: 1 param
		},
		Table: &sourcewasm.Table{Min: 1, Max: 1},
		ElementSegments: []sourcewasm.ElementSegment{
			{Active: true, TableOffset: 0, FuncIndices: []uint32{0}},
		},
		Functions: []sourcewasm.Function{
			{
				TypeIndex: 0,
				Body: []sourcewasm.Instr{
					leafI32Const(5),
					{Kind: sourcewasm.KindEnd},
				},
			},
			{
				TypeIndex: 0,
				Body: []sourcewasm.Instr{
					leafI32Const(99), // bogus argument for the mismatched call
					leafI32Const(0),  // table index
					{Kind: sourcewasm.KindCallIndirect, TypeIdx: 1},
					{Kind: sourcewasm.KindEnd},
				},
			},
		},
		EntryFuncIndex: 1,
	}
	m := translate(t, src, translator.Options{})

	it := NewInterpreter(m, nil, Config{})
	_, _, err := it.Invoke(context.Background())
	requireTrap(t, err, trap.BadSignature)
}

// TestScenarioS4DivisionTrap exercises i32.div_s by zero.
func TestScenarioS4DivisionTrap(t *testing.T) {
	src := &sourcewasm.Module{
		Types: []sourcewasm.FunctionType{{Results: []api.ValueType{api.ValueTypeI32}}},
		Functions: []sourcewasm.Function{{
			TypeIndex: 0,
			Body: []sourcewasm.Instr{
				leafI32Const(1),
				leafI32Const(0),
				leaf(rwasm.OpI32DivS),
				{Kind: sourcewasm.KindEnd},
			},
		}},
		EntryFuncIndex: 0,
	}
	m := translate(t, src, translator.Options{})

	it := NewInterpreter(m, nil, Config{})
	_, _, err := it.Invoke(context.Background())
	requireTrap(t, err, trap.IntegerDivisionByZero)
}

// TestScenarioS5OutOfFuel runs a loop that only ever branches back to
// itself, under a zero fuel budget: the function body's own ConsumeFuel
// marker fires before the loop is even entered, so this traps
// deterministically regardless of the exact span-length cost charged to
// any one marker.
func TestScenarioS5OutOfFuel(t *testing.T) {
	src := &sourcewasm.Module{
		Types: []sourcewasm.FunctionType{{}},
		Functions: []sourcewasm.Function{{
			TypeIndex: 0,
			Body: []sourcewasm.Instr{
				{Kind: sourcewasm.KindLoop},
				{Kind: sourcewasm.KindBr, Depth: 0},
				{Kind: sourcewasm.KindEnd},
				{Kind: sourcewasm.KindEnd},
			},
		}},
		EntryFuncIndex: 0,
	}
	m := translate(t, src, translator.Options{TrackFuel: true})

	it := NewInterpreter(m, nil, Config{FuelEnabled: true, MaxFuel: 0})
	_, _, err := it.Invoke(context.Background())
	requireTrap(t, err, trap.OutOfFuel)
}

// TestScenarioS6BrTableDefault uses two nested blocks and a br_table whose
// every explicit target lands on the inner block while its default lands
// on the outer one, so the result value alone distinguishes "an explicit
// target fired" (111) from "the out-of-range selector fell through to the
// default" (222).
func TestScenarioS6BrTableDefault(t *testing.T) {
	src := &sourcewasm.Module{
		Types: []sourcewasm.FunctionType{{
			Params:  []api.ValueType{api.ValueTypeI32},
			Results: []api.ValueType{api.ValueTypeI32},
		}},
		Functions: []sourcewasm.Function{{
			TypeIndex: 0,
			Body: []sourcewasm.Instr{
				{Kind: sourcewasm.KindBlock}, // b1 (outer)
				{Kind: sourcewasm.KindBlock}, // b0 (inner)
				leaf(rwasm.OpLocalGet),       // selector (param 0)
				{Kind: sourcewasm.KindBrTable, Targets: []uint32{0, 0, 0}, Default: 1},
				{Kind: sourcewasm.KindEnd}, // closes b0
				leafI32Const(111),
				{Kind: sourcewasm.KindReturn},
				{Kind: sourcewasm.KindEnd}, // closes b1
				leafI32Const(222),
				{Kind: sourcewasm.KindEnd}, // closes the function body
			},
		}},
		EntryFuncIndex: 0,
	}
	m := translate(t, src, translator.Options{})
	it := NewInterpreter(m, nil, Config{})

	results, snap, err := it.Invoke(context.Background(), 1)
	require.NoError(t, err)
	require.Nil(t, snap)
	require.Equal(t, []uint64{111}, results)

	results, snap, err = it.Invoke(context.Background(), 99)
	require.NoError(t, err)
	require.Nil(t, snap)
	require.Equal(t, []uint64{222}, results)
}

// TestStoreIsolationAcrossInvocations confirms each Invoke gets its own
// Store: a global mutated during one invocation must not leak into the
// next, even against the same Interpreter.
func TestStoreIsolationAcrossInvocations(t *testing.T) {
	src := &sourcewasm.Module{
		Types:   []sourcewasm.FunctionType{{Results: []api.ValueType{api.ValueTypeI32}}},
		Globals: []sourcewasm.Global{{Type: api.ValueTypeI32, Mutable: true, Init: 0}},
		Functions: []sourcewasm.Function{{
			TypeIndex: 0,
			Body: []sourcewasm.Instr{
				leaf(rwasm.OpGlobalGet),
				leafI32Const(1),
				leaf(rwasm.OpI32Add),
				leafU32(rwasm.OpGlobalSet, 0),
				leaf(rwasm.OpGlobalGet),
				{Kind: sourcewasm.KindEnd},
			},
		}},
		EntryFuncIndex: 0,
	}
	m := translate(t, src, translator.Options{})
	it := NewInterpreter(m, nil, Config{})

	first, _, err := it.Invoke(context.Background())
	require.NoError(t, err)
	second, _, err := it.Invoke(context.Background())
	require.NoError(t, err)
	require.Equal(t, first, second)
}

// TestBoundsSafety traps on out-of-range memory and table accesses rather
// than reading/writing past the allocated region.
func TestBoundsSafety(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		src := &sourcewasm.Module{
			Types: []sourcewasm.FunctionType{{Results: []api.ValueType{api.ValueTypeI32}}},
			Functions: []sourcewasm.Function{{
				TypeIndex: 0,
				Body: []sourcewasm.Instr{
					leafI32Const(100),
					leaf(rwasm.OpI32Load),
					{Kind: sourcewasm.KindEnd},
				},
			}},
			EntryFuncIndex: 0,
		}
		m := translate(t, src, translator.Options{})
		it := NewInterpreter(m, nil, Config{})
		_, _, err := it.Invoke(context.Background())
		requireTrap(t, err, trap.MemoryOutOfBounds)
	})

	t.Run("table", func(t *testing.T) {
		src := &sourcewasm.Module{
			Types: []sourcewasm.FunctionType{{Results: []api.ValueType{api.ValueTypeI32}}},
			Functions: []sourcewasm.Function{{
				TypeIndex: 0,
				Body: []sourcewasm.Instr{
					leafI32Const(5),
					leaf(rwasm.OpTableGet),
					{Kind: sourcewasm.KindEnd},
				},
			}},
			EntryFuncIndex: 0,
		}
		m := translate(t, src, translator.Options{})
		it := NewInterpreter(m, nil, Config{})
		_, _, err := it.Invoke(context.Background())
		requireTrap(t, err, trap.TableOutOfBounds)
	})
}

// TestSegmentDropIdempotence drops a passive data segment and confirms a
// subsequent zero-length memory.init against it is a harmless no-op while
// a non-zero one still traps, matching DataSegment.Read's "dropped reads
// empty" policy rather than a use-after-drop trap.
func TestSegmentDropIdempotence(t *testing.T) {
	base := func() *sourcewasm.Module {
		return &sourcewasm.Module{
			Types:        []sourcewasm.FunctionType{{Results: []api.ValueType{api.ValueTypeI32}}},
			DataSegments: []sourcewasm.DataSegment{{Active: false, Init: []byte{0xAA}}},
		}
	}

	t.Run("zero length after drop succeeds", func(t *testing.T) {
		src := base()
		src.Functions = []sourcewasm.Function{{
			TypeIndex: 0,
			Body: []sourcewasm.Instr{
				leafU32(rwasm.OpDataDrop, 1),
				leafI32Const(0), // dest
				leafI32Const(0), // src
				leafI32Const(0), // n
				leafU32(rwasm.OpMemoryInit, 1),
				leafI32Const(7),
				{Kind: sourcewasm.KindEnd},
			},
		}}
		src.EntryFuncIndex = 0
		m := translate(t, src, translator.Options{})
		it := NewInterpreter(m, nil, Config{})
		results, snap, err := it.Invoke(context.Background())
		require.NoError(t, err)
		require.Nil(t, snap)
		require.Equal(t, []uint64{7}, results)
	})

	t.Run("non-zero length after drop traps", func(t *testing.T) {
		src := base()
		src.Functions = []sourcewasm.Function{{
			TypeIndex: 0,
			Body: []sourcewasm.Instr{
				leafU32(rwasm.OpDataDrop, 1),
				leafI32Const(0), // dest
				leafI32Const(0), // src
				leafI32Const(1), // n
				leafU32(rwasm.OpMemoryInit, 1),
				leafI32Const(7),
				{Kind: sourcewasm.KindEnd},
			},
		}}
		src.EntryFuncIndex = 0
		m := translate(t, src, translator.Options{})
		it := NewInterpreter(m, nil, Config{})
		_, _, err := it.Invoke(context.Background())
		requireTrap(t, err, trap.MemoryOutOfBounds)
	})
}
