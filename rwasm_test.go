package rwasm

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fluentlabs-xyz/rwasm/api"
	"github.com/fluentlabs-xyz/rwasm/internal/host"
	"github.com/fluentlabs-xyz/rwasm/internal/logging"
	"github.com/fluentlabs-xyz/rwasm/internal/rwasm"
	"github.com/fluentlabs-xyz/rwasm/internal/sourcewasm"
)

func leaf(op rwasm.Opcode) sourcewasm.Instr {
	return sourcewasm.Instr{Kind: sourcewasm.KindPlain, Leaf: rwasm.Instruction{Op: op}}
}

func leafI32Const(v int32) sourcewasm.Instr {
	return sourcewasm.Instr{Kind: sourcewasm.KindPlain, Leaf: rwasm.I32(rwasm.OpI32Const, v)}
}

// addModule returns a source module with a single no-arg function that
// pushes two i32 constants, adds them, and returns the sum.
func addModule() *sourcewasm.Module {
	return &sourcewasm.Module{
		Types: []sourcewasm.FunctionType{{Results: []api.ValueType{api.ValueTypeI32}}},
		Functions: []sourcewasm.Function{{
			TypeIndex: 0,
			Body: []sourcewasm.Instr{
				leafI32Const(40),
				leafI32Const(2),
				leaf(rwasm.OpI32Add),
				{Kind: sourcewasm.KindEnd},
			},
		}},
		EntryFuncIndex: 0,
	}
}

// TestPipelineEndToEnd drives translate -> encode -> decode -> execute, the
// whole reason this package exists.
func TestPipelineEndToEnd(t *testing.T) {
	translated, err := Translate(addModule(), nil)
	require.NoError(t, err)

	encoded := Encode(translated)
	decoded, err := Decode(encoded)
	require.NoError(t, err)

	it := NewInterpreter(decoded, nil, nil)
	results, snap, err := it.Invoke(context.Background())
	require.NoError(t, err)
	require.Nil(t, snap)
	require.Equal(t, []uint64{42}, results)
}

// TestPipelineWithHostCallAndTracing exercises a module that calls into a
// registered host function, with tracing enabled so NewInterpreter's
// logging.Tracer wiring is reached too.
func TestPipelineWithHostCallAndTracing(t *testing.T) {
	src := &sourcewasm.Module{
		Types: []sourcewasm.FunctionType{
			{Results: []api.ValueType{api.ValueTypeI32}},
			{Params: []api.ValueType{api.ValueTypeI32}, Results: []api.ValueType{api.ValueTypeI32}},
		},
		ImportedFunctions: []uint32{1},
		Functions: []sourcewasm.Function{{
			TypeIndex: 0,
			Body: []sourcewasm.Instr{
				leafI32Const(7),
				{Kind: sourcewasm.KindCall, FuncIdx: 0},
				{Kind: sourcewasm.KindEnd},
			},
		}},
		EntryFuncIndex: 1,
	}

	translated, err := Translate(src, NewConfig())
	require.NoError(t, err)

	registry := NewRegistry()
	registry.Register(0, func(ctx context.Context, args []uint64) ([]uint64, error) {
		return []uint64{args[0] * 2}, nil
	})

	var out strings.Builder
	cfg := NewConfig().WithTracing(&out, logging.LogScopeAll)
	it := NewInterpreter(translated, registry, cfg)

	results, snap, err := it.Invoke(context.Background())
	require.NoError(t, err)
	require.Nil(t, snap)
	require.Equal(t, []uint64{14}, results)
	require.NotEmpty(t, out.String())
}

// TestPipelineSuspendResume exercises (*Interpreter).Resume: a host call
// that returns host.ErrSuspend pauses the invocation, and the results
// supplied to Resume stand in for that call's return values.
func TestPipelineSuspendResume(t *testing.T) {
	src := &sourcewasm.Module{
		Types: []sourcewasm.FunctionType{
			{Results: []api.ValueType{api.ValueTypeI32}},
			{Results: []api.ValueType{api.ValueTypeI32}},
		},
		ImportedFunctions: []uint32{1},
		Functions: []sourcewasm.Function{{
			TypeIndex: 0,
			Body: []sourcewasm.Instr{
				{Kind: sourcewasm.KindCall, FuncIdx: 0},
				{Kind: sourcewasm.KindEnd},
			},
		}},
		EntryFuncIndex: 1,
	}

	translated, err := Translate(src, nil)
	require.NoError(t, err)

	registry := NewRegistry()
	registry.Register(0, func(ctx context.Context, args []uint64) ([]uint64, error) {
		return nil, host.ErrSuspend
	})

	it := NewInterpreter(translated, registry, nil)
	results, snap, err := it.Invoke(context.Background())
	require.NoError(t, err)
	require.Nil(t, results)
	require.NotNil(t, snap)

	results, snap, err = it.Resume(context.Background(), snap, []uint64{99})
	require.NoError(t, err)
	require.Nil(t, snap)
	require.Equal(t, []uint64{99}, results)
}
