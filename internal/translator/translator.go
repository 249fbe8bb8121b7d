// Package translator lowers a validated sourcewasm.Module into a flat
// rwasm.Module: structured control flow (block/loop/if/br/br_table) is
// flattened into a control-frame stack with forward-branch fixup lists,
// backpatched when each frame closes, mirroring how a one-pass structured
// bytecode compiler lowers nested control flow without an intermediate
// tree.
package translator

import (
	"fmt"

	"github.com/fluentlabs-xyz/rwasm/internal/rwasm"
	"github.com/fluentlabs-xyz/rwasm/internal/sourcewasm"
	"github.com/fluentlabs-xyz/rwasm/internal/value"
)

// ErrorKind classifies a translation failure. Translate assumes its input
// already passed WebAssembly validation; these kinds cover shapes the
// translator itself refuses to lower rather than validation proper.
type ErrorKind int

const (
	InvalidOpcode ErrorKind = iota
	UnsupportedFeature
	StackUnderflow
	TypeMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidOpcode:
		return "invalid opcode"
	case UnsupportedFeature:
		return "unsupported feature"
	case StackUnderflow:
		return "stack underflow"
	case TypeMismatch:
		return "type mismatch"
	default:
		return "unknown"
	}
}

// Error is a translation failure with enough context to locate its cause.
type Error struct {
	Kind     ErrorKind
	FuncIdx  uint32
	Message  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("rwasm: translate func %d: %s: %s", e.FuncIdx, e.Kind, e.Message)
}

func newError(kind ErrorKind, funcIdx uint32, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, FuncIdx: funcIdx, Message: fmt.Sprintf(format, args...)}
}

// Options configures translation-time choices that affect the emitted
// bytecode (as opposed to runtime Config choices that only affect how the
// interpreter executes it).
type Options struct {
	// TrackFuel, when true, emits ConsumeFuel instructions at every basic
	// block entry so an Interpreter configured with fuel metering can
	// charge for execution without re-deriving block boundaries.
	TrackFuel bool
}

// callFixup records a CallInternal or RefFunc emission whose operand
// holds a provisional local-function index and must be rewritten
// to an absolute instruction offset once every function's length is known.
type callFixup struct {
	funcOut  int // index into the per-function output slice being patched
	instrIdx int // index within that slice
}

// Translate lowers src into a flat rwasm.Module. The returned module's last
// function is the synthesized entrypoint (Module.EntrypointFunc).
func Translate(src *sourcewasm.Module, opts Options) (*rwasm.Module, error) {
	funcOut := make([][]rwasm.Instruction, len(src.Functions))
	var fixups []callFixup

	for i := range src.Functions {
		fn := &src.Functions[i]
		fnType := src.Types[fn.TypeIndex]
		out, localFixups, err := flattenFunction(src, uint32(i), fn, fnType, opts)
		if err != nil {
			return nil, err
		}
		funcOut[i] = out
		for _, f := range localFixups {
			fixups = append(fixups, callFixup{funcOut: i, instrIdx: f.instrIdx})
		}
	}

	entry, entryFixups, err := synthesizeEntrypoint(src, opts)
	if err != nil {
		return nil, err
	}
	entryFuncOut := len(funcOut)
	funcOut = append(funcOut, entry)
	for _, f := range entryFixups {
		fixups = append(fixups, callFixup{funcOut: entryFuncOut, instrIdx: f.instrIdx})
	}

	// Pass 2: compute each local function's absolute start offset in the
	// concatenated stream, then rewrite every CallInternal/RefFunc operand
	// that currently holds a provisional local function index.
	offsets := make([]uint32, len(funcOut))
	var cursor uint32
	for i, out := range funcOut {
		offsets[i] = cursor
		cursor += uint32(len(out))
	}

	for _, f := range fixups {
		instr := &funcOut[f.funcOut][f.instrIdx]
		targetLocalIdx := instr.U32Operand()
		instr.Operand = value.U32(offsets[targetLocalIdx])
	}

	m := &rwasm.Module{
		FunctionLengths: make([]uint32, len(funcOut)),
	}
	for i, out := range funcOut {
		m.FunctionLengths[i] = uint32(len(out))
		m.Instructions = append(m.Instructions, out...)
	}
	// Index 0 is reserved as the always-dropped sentinel; declared segments
	// occupy indices 1..N so a dropped read and an out-of-range read both
	// resolve the same way.
	m.DataSegments = make([][]byte, len(src.DataSegments)+1)
	for i, d := range src.DataSegments {
		m.DataSegments[i+1] = d.Init
	}
	m.ElementSegments = make([][]uint32, len(src.ElementSegments)+1)
	for i, e := range src.ElementSegments {
		resolved := make([]uint32, len(e.FuncIndices))
		for j, fi := range e.FuncIndices {
			if src.IsImportedFunc(fi) {
				return nil, newError(UnsupportedFeature, fi, "imported function used as table element")
			}
			resolved[j] = offsets[src.LocalFuncIndex(fi)]
		}
		m.ElementSegments[i+1] = resolved
	}

	return m, nil
}
