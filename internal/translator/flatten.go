package translator

import (
	"github.com/fluentlabs-xyz/rwasm/internal/rwasm"
	"github.com/fluentlabs-xyz/rwasm/internal/sourcewasm"
	"github.com/fluentlabs-xyz/rwasm/internal/value"
)

// flattener holds the mutable state of one function body's flattening pass.
type flattener struct {
	src       *sourcewasm.Module
	funcIdx   uint32
	fnType    sourcewasm.FunctionType
	opts      Options
	out       []rwasm.Instruction
	frames    []*ctrlFrame
	stack     int
	callFixes []callFixup
}

type localCallFixup struct{ instrIdx int }

// flattenFunction lowers one function body into a flat instruction slice.
// CallInternal operands are left holding a provisional *local* function
// index (not yet an absolute offset); the caller collects these via the
// returned fixups and resolves them once every function's length is known.
func flattenFunction(src *sourcewasm.Module, funcIdx uint32, fn *sourcewasm.Function, fnType sourcewasm.FunctionType, opts Options) ([]rwasm.Instruction, []localCallFixup, error) {
	fl := &flattener{src: src, funcIdx: funcIdx, fnType: fnType, opts: opts}

	fl.emit(rwasm.U32(rwasm.OpSignatureCheck, rwasm.PackSignature(rwasm.Signature{
		NumParams:  uint32(len(fnType.Params)),
		NumResults: uint32(len(fnType.Results)),
		NumLocals:  uint32(len(fn.Locals)),
	})))

	body := &ctrlFrame{kind: frameBody, hasResult: len(fnType.Results) > 0, stackHeightAtEntry: 0, elseFixup: -1, fuelMarkIdx: -1}
	if opts.TrackFuel {
		body.fuelMarkIdx = fl.emitFuelMark()
	}
	fl.frames = append(fl.frames, body)

	for _, instr := range fn.Body {
		if err := fl.step(instr); err != nil {
			return nil, nil, err
		}
	}

	if len(fl.frames) != 0 {
		return nil, nil, newError(UnsupportedFeature, funcIdx, "unbalanced control structure")
	}

	var fixups []localCallFixup
	for _, f := range fl.callFixes {
		fixups = append(fixups, localCallFixup{instrIdx: f.instrIdx})
	}
	return fl.out, fixups, nil
}

func (fl *flattener) emit(i rwasm.Instruction) int {
	fl.out = append(fl.out, i)
	return len(fl.out) - 1
}

func (fl *flattener) emitFuelMark() int {
	return fl.emit(rwasm.U32(rwasm.OpConsumeFuel, 0))
}

func (fl *flattener) pop(n int) {
	fl.stack -= n
	if fl.stack < 0 {
		// Dead (post-unreachable) code can make the abstract stack height
		// ill-defined; clamp instead of tracking full polymorphism.
		fl.stack = 0
	}
}

func (fl *flattener) push(n int) { fl.stack += n }

func (fl *flattener) top() *ctrlFrame { return fl.frames[len(fl.frames)-1] }

func (fl *flattener) frameAt(depth uint32) *ctrlFrame {
	return fl.frames[len(fl.frames)-1-int(depth)]
}

// dropKeepTo computes the DropKeep a branch to target must carry given the
// current abstract stack height.
func (fl *flattener) dropKeepTo(target *ctrlFrame) rwasm.DropKeep {
	keep := target.labelKeep()
	drop := uint32(0)
	height := uint32(fl.stack)
	base := uint32(target.stackHeightAtEntry)
	if height > base+keep {
		drop = height - base - keep
	}
	return rwasm.DropKeep{Drop: drop, Keep: keep}
}

// emitBranch appends the branch instruction for a (possibly conditional)
// jump to target, choosing the plain or DropKeep-carrying opcode, and
// resolves it immediately for backward (loop) targets or registers a
// fixup for forward ones. It returns the emitted instruction's index.
func (fl *flattener) emitBranch(target *ctrlFrame, plainOp, adjustOp rwasm.Opcode) int {
	dk := fl.dropKeepTo(target)
	op := plainOp
	if dk.Drop != 0 {
		op = adjustOp
	}
	idx := fl.emit(rwasm.WithDropKeepAndOffset(op, dk, 0))
	if target.kind == frameLoop {
		fl.patchOffset(idx, target.loopHeadPC)
	} else {
		target.brFixups = append(target.brFixups, idx)
	}
	return idx
}

// patchOffset resolves the branch instruction at out[idx] to a
// PC-relative jump to target, preserving whatever DropKeep it already
// carries.
func (fl *flattener) patchOffset(idx, target int) {
	i := &fl.out[idx]
	dk := i.DropKeepOperand()
	*i = rwasm.WithDropKeepAndOffset(i.Op, dk, int32(target-idx))
}

func (fl *flattener) closeFrame(f *ctrlFrame) {
	end := len(fl.out)
	for _, idx := range f.brFixups {
		fl.patchOffset(idx, end)
	}
	if f.kind == frameIf && f.elseFixup >= 0 {
		fl.patchOffset(f.elseFixup, end)
	}
	if f.fuelMarkIdx >= 0 {
		fl.out[f.fuelMarkIdx].Operand = value.U32(uint32(end - f.fuelMarkIdx))
	}
}

func (fl *flattener) step(instr sourcewasm.Instr) error {
	switch instr.Kind {
	case sourcewasm.KindPlain:
		if instr.Leaf.Op == rwasm.OpRefFunc {
			fl.stepRefFunc(instr.Leaf.U32Operand())
			return nil
		}
		return fl.stepPlain(instr.Leaf)

	case sourcewasm.KindBlock:
		f := &ctrlFrame{kind: frameBlock, hasResult: instr.Block.HasResult, stackHeightAtEntry: fl.stack, elseFixup: -1, fuelMarkIdx: -1}
		if fl.opts.TrackFuel {
			f.fuelMarkIdx = fl.emitFuelMark()
		}
		fl.frames = append(fl.frames, f)

	case sourcewasm.KindLoop:
		f := &ctrlFrame{kind: frameLoop, hasResult: instr.Block.HasResult, stackHeightAtEntry: fl.stack, elseFixup: -1, fuelMarkIdx: -1}
		if fl.opts.TrackFuel {
			f.fuelMarkIdx = fl.emitFuelMark()
			f.loopHeadPC = f.fuelMarkIdx
		} else {
			f.loopHeadPC = len(fl.out)
		}
		fl.frames = append(fl.frames, f)

	case sourcewasm.KindIf:
		fl.pop(1) // condition
		elseIdx := fl.emit(rwasm.Instruction{Op: rwasm.OpBrIfEqz})
		f := &ctrlFrame{kind: frameIf, hasResult: instr.Block.HasResult, stackHeightAtEntry: fl.stack, elseFixup: elseIdx, fuelMarkIdx: -1}
		if fl.opts.TrackFuel {
			f.fuelMarkIdx = fl.emitFuelMark()
		}
		fl.frames = append(fl.frames, f)

	case sourcewasm.KindElse:
		f := fl.top()
		// Skip the else body when the if-branch falls through.
		skipIdx := fl.emit(rwasm.Instruction{Op: rwasm.OpBr})
		f.brFixups = append(f.brFixups, skipIdx)
		fl.patchOffset(f.elseFixup, len(fl.out))
		f.elseFixup = -1
		fl.stack = f.stackHeightAtEntry
		if fl.opts.TrackFuel {
			f.fuelMarkIdx = fl.emitFuelMark()
		}

	case sourcewasm.KindEnd:
		f := fl.frames[len(fl.frames)-1]
		fl.frames = fl.frames[:len(fl.frames)-1]
		fl.closeFrame(f)
		if len(fl.frames) == 0 {
			fl.emitReturn()
		}

	case sourcewasm.KindBr:
		fl.emitBranch(fl.frameAt(instr.Depth), rwasm.OpBr, rwasm.OpBrAdjust)

	case sourcewasm.KindBrIf:
		fl.pop(1) // condition
		fl.emitBranch(fl.frameAt(instr.Depth), rwasm.OpBrIfNez, rwasm.OpBrAdjustIfNez)

	case sourcewasm.KindBrTable:
		fl.pop(1) // index
		n := uint32(len(instr.Targets))
		fl.emit(rwasm.U32(rwasm.OpBrTable, n))
		for _, depth := range instr.Targets {
			fl.emitBranch(fl.frameAt(depth), rwasm.OpBr, rwasm.OpBrAdjust)
		}
		fl.emitBranch(fl.frameAt(instr.Default), rwasm.OpBr, rwasm.OpBrAdjust)

	case sourcewasm.KindReturn:
		fl.emitReturn()

	case sourcewasm.KindCall:
		fl.stepCall(instr.FuncIdx)

	case sourcewasm.KindCallIndirect:
		fl.stepCallIndirect(instr.TypeIdx)
	}
	return nil
}

func (fl *flattener) emitReturn() {
	results := uint32(len(fl.fnType.Results))
	height := uint32(fl.stack)
	drop := uint32(0)
	if height > results {
		drop = height - results
	}
	fl.emit(rwasm.WithDropKeep(rwasm.OpReturn, rwasm.DropKeep{Drop: drop, Keep: results}))
}

func (fl *flattener) stepCall(funcIdx uint32) {
	t := fl.src.TypeOf(funcIdx)
	fl.pop(len(t.Params))
	if fl.src.IsImportedFunc(funcIdx) {
		fl.emit(rwasm.Instruction{Op: rwasm.OpCall, Operand: rwasm.CallOperand(funcIdx, uint32(len(t.Params)))})
	} else {
		idx := fl.emit(rwasm.U32(rwasm.OpCallInternal, fl.src.LocalFuncIndex(funcIdx)))
		fl.callFixes = append(fl.callFixes, callFixup{instrIdx: idx})
	}
	fl.push(len(t.Results))
}

// stepRefFunc emits a placeholder RefFunc instruction holding funcIdx's
// local function index; Translate's pass 2 rewrites it to the referenced
// function's absolute offset, the same representation table elements use.
func (fl *flattener) stepRefFunc(funcIdx uint32) {
	idx := fl.emit(rwasm.U32(rwasm.OpRefFunc, fl.src.LocalFuncIndex(funcIdx)))
	fl.callFixes = append(fl.callFixes, callFixup{instrIdx: idx})
	fl.push(1)
}

func (fl *flattener) stepCallIndirect(typeIdx uint32) {
	t := fl.src.Types[typeIdx]
	fl.pop(len(t.Params) + 1) // + table index
	fl.emit(rwasm.U32(rwasm.OpCallIndirect, rwasm.PackSignature(rwasm.Signature{
		NumParams:  uint32(len(t.Params)),
		NumResults: uint32(len(t.Results)),
	})))
	fl.push(len(t.Results))
}

// stepPlain copies a leaf instruction through unchanged and tracks its
// stack effect so later branches can compute a correct DropKeep.
func (fl *flattener) stepPlain(leaf rwasm.Instruction) error {
	pop, push, ok := plainStackEffect(leaf.Op)
	if !ok {
		return newError(InvalidOpcode, fl.funcIdx, "opcode %s has no plain stack effect", leaf.Op.Name())
	}
	fl.pop(pop)
	fl.emit(leaf)
	fl.push(push)
	return nil
}

// plainStackEffect returns the (pop, push) operand-stack effect of every
// opcode the translator copies through unchanged (everything but the
// control-flow and call family, which compute their own effect from type
// information).
func plainStackEffect(op rwasm.Opcode) (pop, push int, ok bool) {
	switch op {
	case rwasm.OpUnreachable, rwasm.OpDataDrop, rwasm.OpElemDrop, rwasm.OpConsumeFuel:
		return 0, 0, true
	case rwasm.OpLocalGet, rwasm.OpGlobalGet, rwasm.OpMemorySize, rwasm.OpTableSize, rwasm.OpRefFunc,
		rwasm.OpI32Const, rwasm.OpI64Const, rwasm.OpF32Const, rwasm.OpF64Const:
		return 0, 1, true
	case rwasm.OpLocalSet, rwasm.OpGlobalSet, rwasm.OpDrop:
		return 1, 0, true
	case rwasm.OpLocalTee:
		return 1, 1, true
	case rwasm.OpSelect:
		return 3, 1, true
	case rwasm.OpI32Load, rwasm.OpI64Load, rwasm.OpF32Load, rwasm.OpF64Load,
		rwasm.OpI32Load8S, rwasm.OpI32Load8U, rwasm.OpI32Load16S, rwasm.OpI32Load16U,
		rwasm.OpI64Load8S, rwasm.OpI64Load8U, rwasm.OpI64Load16S, rwasm.OpI64Load16U,
		rwasm.OpI64Load32S, rwasm.OpI64Load32U,
		rwasm.OpMemoryGrow, rwasm.OpTableGet:
		return 1, 1, true
	case rwasm.OpI32Store, rwasm.OpI64Store, rwasm.OpF32Store, rwasm.OpF64Store,
		rwasm.OpI32Store8, rwasm.OpI32Store16, rwasm.OpI64Store8, rwasm.OpI64Store16, rwasm.OpI64Store32,
		rwasm.OpTableSet:
		return 2, 0, true
	case rwasm.OpTableGrow:
		return 2, 1, true
	case rwasm.OpMemoryFill, rwasm.OpMemoryCopy, rwasm.OpMemoryInit,
		rwasm.OpTableFill, rwasm.OpTableCopy, rwasm.OpTableInit:
		return 3, 0, true
	case rwasm.OpI32Eqz, rwasm.OpI64Eqz,
		rwasm.OpI32Clz, rwasm.OpI32Ctz, rwasm.OpI32Popcnt, rwasm.OpI64Clz, rwasm.OpI64Ctz, rwasm.OpI64Popcnt,
		rwasm.OpF32Abs, rwasm.OpF32Neg, rwasm.OpF32Ceil, rwasm.OpF32Floor, rwasm.OpF32Trunc, rwasm.OpF32Nearest, rwasm.OpF32Sqrt,
		rwasm.OpF64Abs, rwasm.OpF64Neg, rwasm.OpF64Ceil, rwasm.OpF64Floor, rwasm.OpF64Trunc, rwasm.OpF64Nearest, rwasm.OpF64Sqrt,
		rwasm.OpI32WrapI64, rwasm.OpI32TruncF32S, rwasm.OpI32TruncF32U, rwasm.OpI32TruncF64S, rwasm.OpI32TruncF64U,
		rwasm.OpI64ExtendI32S, rwasm.OpI64ExtendI32U, rwasm.OpI64TruncF32S, rwasm.OpI64TruncF32U,
		rwasm.OpI64TruncF64S, rwasm.OpI64TruncF64U,
		rwasm.OpF32ConvertI32S, rwasm.OpF32ConvertI32U, rwasm.OpF32ConvertI64S, rwasm.OpF32ConvertI64U, rwasm.OpF32DemoteF64,
		rwasm.OpF64ConvertI32S, rwasm.OpF64ConvertI32U, rwasm.OpF64ConvertI64S, rwasm.OpF64ConvertI64U, rwasm.OpF64PromoteF32,
		rwasm.OpI32Extend8S, rwasm.OpI32Extend16S, rwasm.OpI64Extend8S, rwasm.OpI64Extend16S, rwasm.OpI64Extend32S,
		rwasm.OpI32TruncSatF32S, rwasm.OpI32TruncSatF32U, rwasm.OpI32TruncSatF64S, rwasm.OpI32TruncSatF64U,
		rwasm.OpI64TruncSatF32S, rwasm.OpI64TruncSatF32U, rwasm.OpI64TruncSatF64S, rwasm.OpI64TruncSatF64U:
		return 1, 1, true
	case rwasm.OpI32Eq, rwasm.OpI32Ne, rwasm.OpI32LtS, rwasm.OpI32LtU, rwasm.OpI32GtS, rwasm.OpI32GtU,
		rwasm.OpI32LeS, rwasm.OpI32LeU, rwasm.OpI32GeS, rwasm.OpI32GeU,
		rwasm.OpI64Eq, rwasm.OpI64Ne, rwasm.OpI64LtS, rwasm.OpI64LtU, rwasm.OpI64GtS, rwasm.OpI64GtU,
		rwasm.OpI64LeS, rwasm.OpI64LeU, rwasm.OpI64GeS, rwasm.OpI64GeU,
		rwasm.OpF32Eq, rwasm.OpF32Ne, rwasm.OpF32Lt, rwasm.OpF32Gt, rwasm.OpF32Le, rwasm.OpF32Ge,
		rwasm.OpF64Eq, rwasm.OpF64Ne, rwasm.OpF64Lt, rwasm.OpF64Gt, rwasm.OpF64Le, rwasm.OpF64Ge,
		rwasm.OpI32Add, rwasm.OpI32Sub, rwasm.OpI32Mul, rwasm.OpI32DivS, rwasm.OpI32DivU, rwasm.OpI32RemS, rwasm.OpI32RemU,
		rwasm.OpI32And, rwasm.OpI32Or, rwasm.OpI32Xor, rwasm.OpI32Shl, rwasm.OpI32ShrS, rwasm.OpI32ShrU, rwasm.OpI32Rotl, rwasm.OpI32Rotr,
		rwasm.OpI64Add, rwasm.OpI64Sub, rwasm.OpI64Mul, rwasm.OpI64DivS, rwasm.OpI64DivU, rwasm.OpI64RemS, rwasm.OpI64RemU,
		rwasm.OpI64And, rwasm.OpI64Or, rwasm.OpI64Xor, rwasm.OpI64Shl, rwasm.OpI64ShrS, rwasm.OpI64ShrU, rwasm.OpI64Rotl, rwasm.OpI64Rotr,
		rwasm.OpF32Add, rwasm.OpF32Sub, rwasm.OpF32Mul, rwasm.OpF32Div, rwasm.OpF32Min, rwasm.OpF32Max, rwasm.OpF32Copysign,
		rwasm.OpF64Add, rwasm.OpF64Sub, rwasm.OpF64Mul, rwasm.OpF64Div, rwasm.OpF64Min, rwasm.OpF64Max, rwasm.OpF64Copysign:
		return 2, 1, true
	}
	return 0, 0, false
}
