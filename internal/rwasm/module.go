package rwasm

import "github.com/fluentlabs-xyz/rwasm/internal/value"

// Module is the executable rWASM IR produced by the translator (or by
// decoding a binary image). Functions are laid out contiguously in a
// single flat instruction stream; FunctionLengths records each function's
// instruction count in the same order, and the last entry is always the
// synthesized entrypoint (spec.md §3).
//
// A Module carries no memory/table maximums or global count of its own:
// those are runtime configuration (interpreter.Config.MaxMemoryPages / MaxTableSize),
// not part of the bit-exact binary contract (spec.md §4.2 only documents
// code/memory/function/element sections). Linear memory and the table both
// start empty; the synthesized entrypoint grows them to their declared
// minimums, and globals are populated by entrypoint-emitted GlobalSet
// instructions against a Globals store that grows on first write.
type Module struct {
	Instructions []Instruction
	// FunctionLengths[i] is the instruction count of CompiledFunc i.
	// sum(FunctionLengths) == len(Instructions).
	FunctionLengths []uint32

	// DataSegments[0] is always the zero-length sentinel; module-declared
	// segments occupy indices 1..N (spec.md §4.3, "Data/element segment
	// unification").
	DataSegments [][]byte
	// ElementSegments[0] is always empty; declared segments occupy 1..N.
	// Each entry holds CompiledFunc indices, already resolved to flat
	// offsets by the translator.
	ElementSegments [][]uint32
}

// EntrypointFunc is the CompiledFunc index of the synthesized entrypoint,
// always the last function in the module.
func (m *Module) EntrypointFunc() uint32 {
	return uint32(len(m.FunctionLengths) - 1)
}

// FunctionOffsets returns, for each CompiledFunc index, the instruction
// offset at which that function begins.
func (m *Module) FunctionOffsets() []uint32 {
	offsets := make([]uint32, len(m.FunctionLengths))
	var cur uint32
	for i, l := range m.FunctionLengths {
		offsets[i] = cur
		cur += l
	}
	return offsets
}

// TotalInstructions returns the instruction count, equal to
// sum(FunctionLengths) in any well-formed module.
func (m *Module) TotalInstructions() uint32 { return uint32(len(m.Instructions)) }

// Store holds the mutable, per-invocation state a Module addresses:
// linear memory, the funcref table, globals, and the drop flags for data
// and element segments. The Module itself is read-only and shareable
// across concurrently instantiated Stores (spec.md §5).
type Store struct {
	Memory  *Memory
	Table   *Table
	Globals []value.Value
	Data    []*DataSegment
	Elem    []*ElementSegment
}

// NewStore instantiates fresh, independent stores for one invocation of m.
// maxMemoryPages and maxTableSize come from the runtime Config in effect.
func NewStore(m *Module, maxMemoryPages, maxTableSize uint32) *Store {
	data := make([]*DataSegment, len(m.DataSegments))
	for i, b := range m.DataSegments {
		data[i] = NewDataSegment(b)
	}
	elem := make([]*ElementSegment, len(m.ElementSegments))
	for i, refs := range m.ElementSegments {
		vs := make([]value.Value, len(refs))
		for j, idx := range refs {
			vs[j] = value.FuncRef(idx)
		}
		elem[i] = NewElementSegment(vs)
	}
	return &Store{
		Memory: NewMemory(0, maxMemoryPages),
		Table:  NewTable(ElemTypeFuncref, 0, maxTableSize),
		Data:   data,
		Elem:   elem,
	}
}

// Global reads global slot i, returning zero without extending the store
// if it has not been written yet; SetGlobal is what grows the store (the
// entrypoint always writes globals 0..N-1 before any user code observes
// them).
func (s *Store) Global(i uint32) value.Value {
	if i >= uint32(len(s.Globals)) {
		return 0
	}
	return s.Globals[i]
}

// SetGlobal writes global slot i, growing the Globals store if needed.
func (s *Store) SetGlobal(i uint32, v value.Value) {
	if i >= uint32(len(s.Globals)) {
		grown := make([]value.Value, i+1)
		copy(grown, s.Globals)
		s.Globals = grown
	}
	s.Globals[i] = v
}
