package interpreter

import (
	"context"
	"errors"

	"github.com/fluentlabs-xyz/rwasm/internal/host"
	"github.com/fluentlabs-xyz/rwasm/internal/rwasm"
	"github.com/fluentlabs-xyz/rwasm/internal/trap"
	"github.com/fluentlabs-xyz/rwasm/internal/value"
)

type outcome int

const (
	outcomeContinue outcome = iota
	outcomeDone
	outcomeSuspended
)

func (it *Interpreter) top(st *execState) *callFrame { return &st.frames[len(st.frames)-1] }

func (it *Interpreter) push(st *execState, v value.Value) { st.values = append(st.values, v) }

func (it *Interpreter) pop(st *execState) value.Value {
	v := st.values[len(st.values)-1]
	st.values = st.values[:len(st.values)-1]
	return v
}

// step executes exactly one instruction, advancing st.ip unless the
// instruction itself redirected control flow.
func (it *Interpreter) step(ctx context.Context, st *execState, instr rwasm.Instruction) (outcome, error) {
	switch instr.Op {

	case rwasm.OpUnreachable:
		panic(trap.ErrUnreachableCodeReached)

	case rwasm.OpSignatureCheck:
		// Only ever dispatched into directly (ip = target+1 skips this
		// slot); reached as a plain fetch only for malformed bytecode.
		panic(trap.ErrBadSignature)

	case rwasm.OpConsumeFuel:
		if it.cfg.FuelEnabled {
			cost := uint64(instr.U32Operand())
			if st.fuel < cost {
				panic(trap.ErrOutOfFuel)
			}
			st.fuel -= cost
		}
		st.ip++

	case rwasm.OpDrop:
		it.pop(st)
		st.ip++

	case rwasm.OpSelect:
		c := it.pop(st)
		b := it.pop(st)
		a := it.pop(st)
		if c.I32() != 0 {
			it.push(st, a)
		} else {
			it.push(st, b)
		}
		st.ip++

	case rwasm.OpLocalGet:
		f := it.top(st)
		it.push(st, st.values[f.base+int(instr.U32Operand())])
		st.ip++

	case rwasm.OpLocalSet:
		f := it.top(st)
		st.values[f.base+int(instr.U32Operand())] = it.pop(st)
		st.ip++

	case rwasm.OpLocalTee:
		f := it.top(st)
		st.values[f.base+int(instr.U32Operand())] = st.values[len(st.values)-1]
		st.ip++

	case rwasm.OpGlobalGet:
		it.push(st, st.store.Global(instr.U32Operand()))
		st.ip++

	case rwasm.OpGlobalSet:
		st.store.SetGlobal(instr.U32Operand(), it.pop(st))
		st.ip++

	case rwasm.OpBr:
		st.ip = uint32(int32(st.ip) + instr.BranchOffset())

	case rwasm.OpBrAdjust:
		st.values = applyDropKeep(st.values, instr.DropKeepOperand())
		st.ip = uint32(int32(st.ip) + instr.BranchOffset())

	case rwasm.OpBrIfEqz:
		if it.pop(st).I32() == 0 {
			st.ip = uint32(int32(st.ip) + instr.BranchOffset())
		} else {
			st.ip++
		}

	case rwasm.OpBrIfNez:
		if it.pop(st).I32() != 0 {
			st.ip = uint32(int32(st.ip) + instr.BranchOffset())
		} else {
			st.ip++
		}

	case rwasm.OpBrAdjustIfNez:
		cond := it.pop(st).I32()
		if cond != 0 {
			st.values = applyDropKeep(st.values, instr.DropKeepOperand())
			st.ip = uint32(int32(st.ip) + instr.BranchOffset())
		} else {
			st.ip++
		}

	case rwasm.OpBrTable:
		n := instr.U32Operand()
		idx := uint32(it.pop(st).I32())
		if idx > n {
			idx = n
		}
		st.ip = st.ip + 1 + idx

	case rwasm.OpReturn:
		return it.doReturn(st, instr.DropKeepOperand()), nil

	case rwasm.OpReturnIfNez:
		if it.pop(st).I32() != 0 {
			return it.doReturn(st, instr.DropKeepOperand()), nil
		}
		st.ip++

	case rwasm.OpCallInternal:
		it.doCall(st, instr.U32Operand(), false)

	case rwasm.OpReturnCallInternal:
		it.doCall(st, instr.U32Operand(), true)

	case rwasm.OpCallIndirect:
		if err := it.doCallIndirect(st, instr.U32Operand(), false); err != nil {
			return outcomeContinue, err
		}

	case rwasm.OpReturnCallIndirect:
		if err := it.doCallIndirect(st, instr.U32Operand(), true); err != nil {
			return outcomeContinue, err
		}

	case rwasm.OpCall, rwasm.OpReturnCall:
		o, err := it.doHostCall(ctx, st, instr)
		if err != nil || o != outcomeContinue {
			return o, err
		}

	default:
		it.stepValue(st, instr)
		st.ip++
	}
	return it.checkHalt(st), nil
}

func (it *Interpreter) checkHalt(st *execState) outcome {
	if len(st.frames) == 0 {
		return outcomeDone
	}
	return outcomeContinue
}

// doReturn applies dk to the value stack, pops the current frame, and
// either resumes the caller or signals completion if this was the
// outermost frame.
func (it *Interpreter) doReturn(st *execState, dk rwasm.DropKeep) outcome {
	st.values = applyDropKeep(st.values, dk)
	frame := st.frames[len(st.frames)-1]
	st.frames = st.frames[:len(st.frames)-1]
	results := st.values[len(st.values)-int(dk.Keep):]
	if frame.returnIP == haltIP {
		st.final = results
		return outcomeDone
	}
	n := copy(st.values[frame.base:], results)
	st.values = st.values[:frame.base+n]
	st.ip = frame.returnIP
	return outcomeContinue
}

// doCall performs a CallInternal (tail=false) or ReturnCallInternal
// (tail=true, target replaces the current frame instead of pushing a new
// one). target is the callee's absolute SignatureCheck slot offset.
func (it *Interpreter) doCall(st *execState, target uint32, tail bool) {
	desc := rwasm.UnpackSignature(it.module.Instructions[target].U32Operand())
	numParams := int(desc.NumParams)
	numLocals := int(desc.NumLocals)

	if tail {
		cur := it.top(st)
		argsStart := len(st.values) - numParams
		copy(st.values[cur.base:], st.values[argsStart:])
		st.values = st.values[:cur.base+numParams]
		cur.resultsCount = desc.NumResults
		for i := 0; i < numLocals; i++ {
			it.push(st, value.Null)
		}
		st.ip = target + 1
		return
	}

	if len(st.frames) >= it.cfg.effectiveMaxRecursionDepth() {
		panic(trap.ErrStackOverflow)
	}
	base := len(st.values) - numParams
	st.frames = append(st.frames, callFrame{base: base, returnIP: st.ip + 1, resultsCount: desc.NumResults})
	for i := 0; i < numLocals; i++ {
		it.push(st, value.Null)
	}
	st.ip = target + 1
}

func (c Config) effectiveMaxRecursionDepth() int {
	if c.MaxRecursionDepth <= 0 {
		return 1024
	}
	return c.MaxRecursionDepth
}

// doCallIndirect resolves a table-indexed call, verifies the callee's
// embedded signature matches the call site's expected arity, and dispatches
// like doCall.
func (it *Interpreter) doCallIndirect(st *execState, expected uint32, tail bool) error {
	idx := it.pop(st).U32()
	ref, ok := st.store.Table.Get(idx)
	if !ok {
		panic(trap.ErrTableOutOfBounds)
	}
	if ref.IsNull() {
		panic(trap.ErrIndirectCallToNull)
	}
	target := ref.FuncRefIndex()
	actual := it.module.Instructions[target].U32Operand()
	if !rwasm.ArityMatches(expected, actual) {
		panic(trap.ErrBadSignature)
	}
	it.doCall(st, target, tail)
	return nil
}

// doHostCall dispatches OpCall/OpReturnCall to the host registry. instr's
// operand packs the callee's FuncIdx and the argument count the translator
// recorded from the source type, since the binary carries no type section
// for the interpreter to consult at runtime. A host function signaling
// suspension via host.ErrSuspend causes run to capture a Snapshot instead of
// continuing; Resume later supplies the suspended call's results directly.
func (it *Interpreter) doHostCall(ctx context.Context, st *execState, instr rwasm.Instruction) (outcome, error) {
	funcIdx := instr.FuncIdx()
	fn, ok := it.registry.Lookup(funcIdx)
	if !ok {
		panic(trap.NewHostFailure(funcIdx))
	}

	argsStart := len(st.values) - int(instr.NumArgs())
	args := valuesToUint64(st.values[argsStart:])
	st.values = st.values[:argsStart]

	results, err := fn(ctx, args)
	if err != nil {
		if errors.Is(err, host.ErrSuspend) {
			st.ip++
			return outcomeSuspended, nil
		}
		if herr, ok := err.(*host.Error); ok {
			panic(trap.NewHostFailure(herr.Code))
		}
		panic(trap.NewHostFailure(0))
	}
	for _, r := range results {
		it.push(st, value.Value(r))
	}
	st.ip++
	return outcomeContinue, nil
}

func valuesToUint64(vs []value.Value) []uint64 {
	out := make([]uint64, len(vs))
	for i, v := range vs {
		out[i] = uint64(v)
	}
	return out
}

// stepValue executes every opcode whose behavior doesn't touch control flow
// or calls: locals/globals are handled directly in step, so this covers
// memory, table, constants, and the arithmetic/comparison/conversion
// families, split across memory.go, table.go, and numeric.go by concern.
func (it *Interpreter) stepValue(st *execState, instr rwasm.Instruction) {
	switch {
	case instr.Op >= rwasm.OpI32Load && instr.Op <= rwasm.OpDataDrop:
		it.stepMemory(st, instr)
	case instr.Op >= rwasm.OpTableGet && instr.Op <= rwasm.OpRefFunc:
		it.stepTable(st, instr)
	default:
		it.stepNumeric(st, instr)
	}
}
