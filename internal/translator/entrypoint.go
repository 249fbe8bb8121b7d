package translator

import (
	"github.com/fluentlabs-xyz/rwasm/api"
	"github.com/fluentlabs-xyz/rwasm/internal/rwasm"
	"github.com/fluentlabs-xyz/rwasm/internal/sourcewasm"
)

// synthesizeEntrypoint builds the function appended last to every
// translated module: it initializes globals, grows memory and the table to
// their declared minimums, copies active data/element segments in, and
// finally dispatches into the module's designated entry function. Active
// segments are copied via the same Init+Drop opcode pair passive segments
// use, so a segment reads as dropped afterward either way (spec.md §5's
// "dropped segment reads empty" invariant holds uniformly).
func synthesizeEntrypoint(src *sourcewasm.Module, opts Options) ([]rwasm.Instruction, []localCallFixup, error) {
	if src.IsImportedFunc(src.EntryFuncIndex) {
		return nil, nil, newError(UnsupportedFeature, src.EntryFuncIndex, "entry function cannot be a host import")
	}

	fl := &flattener{src: src, funcIdx: src.FuncCount(), opts: opts}
	fl.emit(rwasm.U32(rwasm.OpSignatureCheck, 0))

	for i, g := range src.Globals {
		fl.emitConst(g.Type, g.Init)
		fl.emit(rwasm.U32(rwasm.OpGlobalSet, uint32(i)))
	}

	if src.Memory != nil && src.Memory.Min > 0 {
		fl.emit(rwasm.I64(rwasm.OpI64Const, int64(src.Memory.Min)))
		fl.emit(rwasm.Instruction{Op: rwasm.OpMemoryGrow})
		fl.emit(rwasm.Instruction{Op: rwasm.OpDrop})
	}

	for i, seg := range src.DataSegments {
		if !seg.Active {
			continue
		}
		fl.emit(rwasm.I64(rwasm.OpI64Const, int64(seg.MemoryOffset)))
		fl.emit(rwasm.I64(rwasm.OpI64Const, 0))
		fl.emit(rwasm.I64(rwasm.OpI64Const, int64(len(seg.Init))))
		fl.emit(rwasm.U32(rwasm.OpMemoryInit, uint32(i+1)))
		fl.emit(rwasm.U32(rwasm.OpDataDrop, uint32(i+1)))
	}

	if src.Table != nil && src.Table.Min > 0 {
		fl.emit(rwasm.I64(rwasm.OpI64Const, 0)) // fill value: null funcref
		fl.emit(rwasm.I64(rwasm.OpI64Const, int64(src.Table.Min)))
		fl.emit(rwasm.Instruction{Op: rwasm.OpTableGrow})
		fl.emit(rwasm.Instruction{Op: rwasm.OpDrop})
	}

	for i, seg := range src.ElementSegments {
		if !seg.Active {
			continue
		}
		fl.emit(rwasm.I64(rwasm.OpI64Const, int64(seg.TableOffset)))
		fl.emit(rwasm.I64(rwasm.OpI64Const, 0))
		fl.emit(rwasm.I64(rwasm.OpI64Const, int64(len(seg.FuncIndices))))
		fl.emit(rwasm.U32(rwasm.OpTableInit, uint32(i+1)))
		fl.emit(rwasm.U32(rwasm.OpElemDrop, uint32(i+1)))
	}

	callIdx := fl.emit(rwasm.U32(rwasm.OpCallInternal, src.LocalFuncIndex(src.EntryFuncIndex)))
	fl.callFixes = append(fl.callFixes, callFixup{instrIdx: callIdx})

	results := uint32(len(src.TypeOf(src.EntryFuncIndex).Results))
	fl.emit(rwasm.WithDropKeep(rwasm.OpReturn, rwasm.DropKeep{Drop: 0, Keep: results}))

	var fixups []localCallFixup
	for _, f := range fl.callFixes {
		fixups = append(fixups, localCallFixup{instrIdx: f.instrIdx})
	}
	return fl.out, fixups, nil
}

// emitConst pushes a constant of the given type carrying the raw bit
// pattern val (already typed by the caller), used for global initializers
// whose constant value arrived as an evaluated 64-bit payload.
func (fl *flattener) emitConst(t api.ValueType, val uint64) {
	switch t {
	case api.ValueTypeI32:
		fl.emit(rwasm.I32(rwasm.OpI32Const, int32(val)))
	case api.ValueTypeF32:
		fl.emit(rwasm.U32(rwasm.OpF32Const, uint32(val)))
	case api.ValueTypeF64:
		fl.emit(rwasm.I64(rwasm.OpF64Const, int64(val)))
	default: // i64, funcref
		fl.emit(rwasm.I64(rwasm.OpI64Const, int64(val)))
	}
}
