package interpreter

// callFrame is one activation record on the call stack. Locals and the
// operand stack for a frame share a single contiguous region of the value
// stack starting at base: indices base..base+numLocals-1 are locals
// (parameters followed by declared locals), and the operand stack grows
// above that within the same frame.
type callFrame struct {
	base         int    // index into the value stack where this frame's locals begin
	returnIP     uint32 // absolute instruction index to resume the caller at
	resultsCount uint32 // number of values this frame leaves behind on return
}
