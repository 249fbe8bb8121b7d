// Package sourcewasm defines the shape of an already-parsed, already-validated
// WebAssembly module: the input the Translator consumes. Producing this
// shape from raw WASM bytes (the parser/validator) is an external
// collaborator out of scope for this module (spec.md §1); this package only
// fixes the contract a real parser would need to satisfy.
package sourcewasm

import "github.com/fluentlabs-xyz/rwasm/api"

// FunctionType is a WebAssembly function signature.
type FunctionType struct {
	Params  []api.ValueType
	Results []api.ValueType
}

// Function is a single non-imported function body.
type Function struct {
	TypeIndex  uint32
	Locals     []api.ValueType // additional locals beyond the parameters, in declaration order
	Body       []Instr
}

// Global is a module-defined global variable. WebAssembly imports of
// globals are a non-goal (spec.md §1); every Global here is module-owned.
type Global struct {
	Type    api.ValueType
	Mutable bool
	// Init is the constant-expression initializer, already evaluated by
	// the parser into a raw 64-bit payload (reinterpreted per Type).
	Init uint64
}

// Memory declares the single linear memory's page bounds. The translator
// uses Min to size the memory in the entrypoint; it does not read Max and
// injects no grow-guard check before memory.grow. At run time memory.grow
// is bounded only by the interpreter's page ceiling.
type Memory struct {
	Min, Max uint32
}

// Table declares the single funcref table's element bounds.
type Table struct {
	Min, Max uint32
}

// DataSegment is a WebAssembly data segment before translation. Active
// segments carry a constant memory offset; passive segments are initialized
// only by an explicit memory.init.
type DataSegment struct {
	Active       bool
	MemoryOffset uint32 // meaningful only if Active
	Init         []byte
}

// ElementSegment is a WebAssembly element segment before translation,
// holding function indices (into the combined imported+local function
// index space) rather than raw expressions — again assuming a parser has
// already evaluated any constant expressions.
type ElementSegment struct {
	Active      bool
	TableOffset uint32 // meaningful only if Active
	FuncIndices []uint32
}

// Module is the full parsed-and-validated WebAssembly module view the
// Translator lowers. Function index space is imports-first: indices
// 0..len(ImportedFunctions)-1 address host imports, and
// len(ImportedFunctions)..len(ImportedFunctions)+len(Functions)-1 address
// Functions in order.
type Module struct {
	Types []FunctionType

	// ImportedFunctions holds the type index of each imported function, in
	// declaration order. Only function imports are supported; memory/table/
	// global imports are a non-goal (spec.md §1).
	ImportedFunctions []uint32

	Functions []Function
	Globals   []Global
	Memory    *Memory // nil if the module declares no memory
	Table     *Table  // nil if the module declares no table

	DataSegments    []DataSegment
	ElementSegments []ElementSegment

	// EntryFuncIndex is the function index (in the combined index space)
	// the synthesized entrypoint should dispatch to, i.e. this module's
	// main/start export.
	EntryFuncIndex uint32
}

// FuncCount returns the total size of the combined function index space.
func (m *Module) FuncCount() uint32 {
	return uint32(len(m.ImportedFunctions) + len(m.Functions))
}

// IsImportedFunc reports whether idx addresses a host import rather than a
// local Function.
func (m *Module) IsImportedFunc(idx uint32) bool {
	return idx < uint32(len(m.ImportedFunctions))
}

// LocalFuncIndex converts a combined function index into an index into
// m.Functions. Callers must have checked !IsImportedFunc(idx) first.
func (m *Module) LocalFuncIndex(idx uint32) uint32 {
	return idx - uint32(len(m.ImportedFunctions))
}

// TypeOf returns the FunctionType for a combined function index.
func (m *Module) TypeOf(idx uint32) FunctionType {
	if m.IsImportedFunc(idx) {
		return m.Types[m.ImportedFunctions[idx]]
	}
	return m.Types[m.Functions[m.LocalFuncIndex(idx)].TypeIndex]
}
