package sourcewasm

import (
	"github.com/fluentlabs-xyz/rwasm/api"
	"github.com/fluentlabs-xyz/rwasm/internal/rwasm"
)

// InstrKind distinguishes the structured control-flow instructions the
// Translator must flatten from everything else, which it mostly carries
// through unchanged.
type InstrKind byte

const (
	// KindPlain instructions carry identical semantics in source and
	// target form — arithmetic, comparison, conversion, memory and table
	// accessors, local/global get/set, constants, drop/select, and
	// unreachable. Leaf holds the rwasm.Opcode/operand pair directly, so
	// the translator copies these straight into the flattened stream.
	KindPlain InstrKind = iota
	KindBlock
	KindLoop
	KindIf
	KindElse
	KindEnd
	KindBr
	KindBrIf
	KindBrTable
	KindReturn
	KindCall
	KindCallIndirect
)

// BlockType is the WebAssembly MVP block type: at most one result, no
// block-level parameters (multi-value blocks are a non-goal).
type BlockType struct {
	HasResult bool
	Result    api.ValueType
}

// Instr is one structured-source instruction.
type Instr struct {
	Kind InstrKind

	// Leaf is valid when Kind == KindPlain: the opcode/operand pair to
	// copy into the flattened stream as-is.
	Leaf rwasm.Instruction

	// Block is valid for KindBlock/KindLoop/KindIf.
	Block BlockType

	// Depth is the relative branch depth for KindBr/KindBrIf, counted
	// outward from the innermost enclosing block (0 = the instruction's
	// own nearest enclosing block).
	Depth uint32

	// BrTable fields: valid for KindBrTable.
	Targets []uint32
	Default uint32

	// Call fields.
	FuncIdx uint32 // KindCall: combined-space function index
	TypeIdx uint32 // KindCallIndirect: expected signature index
}
