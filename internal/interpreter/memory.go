package interpreter

import (
	"encoding/binary"

	"github.com/fluentlabs-xyz/rwasm/internal/rwasm"
	"github.com/fluentlabs-xyz/rwasm/internal/trap"
	"github.com/fluentlabs-xyz/rwasm/internal/value"
)

// stepMemory handles every load/store, memory.size/grow, and the
// fill/copy/init/data.drop bulk family. Load/store instructions carry the
// static offset immediate in their operand, exactly as decoded from the
// source module; the effective address is that offset plus the popped
// base address.
func (it *Interpreter) stepMemory(st *execState, instr rwasm.Instruction) {
	mem := st.store.Memory

	switch instr.Op {
	case rwasm.OpI32Load:
		it.push(st, value.I32(int32(it.loadU32(st, mem, instr, 4))))
	case rwasm.OpI64Load:
		it.push(st, value.I64(int64(it.loadU64(st, mem, instr, 8))))
	case rwasm.OpF32Load:
		it.push(st, value.U32(it.loadU32(st, mem, instr, 4)))
	case rwasm.OpF64Load:
		it.push(st, value.U64(it.loadU64(st, mem, instr, 8)))
	case rwasm.OpI32Load8S:
		it.push(st, value.I32(int32(int8(it.loadU32(st, mem, instr, 1)))))
	case rwasm.OpI32Load8U:
		it.push(st, value.I32(int32(it.loadU32(st, mem, instr, 1))))
	case rwasm.OpI32Load16S:
		it.push(st, value.I32(int32(int16(it.loadU32(st, mem, instr, 2)))))
	case rwasm.OpI32Load16U:
		it.push(st, value.I32(int32(it.loadU32(st, mem, instr, 2))))
	case rwasm.OpI64Load8S:
		it.push(st, value.I64(int64(int8(it.loadU64(st, mem, instr, 1)))))
	case rwasm.OpI64Load8U:
		it.push(st, value.I64(int64(it.loadU64(st, mem, instr, 1))))
	case rwasm.OpI64Load16S:
		it.push(st, value.I64(int64(int16(it.loadU64(st, mem, instr, 2)))))
	case rwasm.OpI64Load16U:
		it.push(st, value.I64(int64(it.loadU64(st, mem, instr, 2))))
	case rwasm.OpI64Load32S:
		it.push(st, value.I64(int64(int32(it.loadU64(st, mem, instr, 4)))))
	case rwasm.OpI64Load32U:
		it.push(st, value.I64(int64(it.loadU64(st, mem, instr, 4))))

	case rwasm.OpI32Store, rwasm.OpF32Store:
		v := it.pop(st)
		it.storeU32(st, mem, instr, 4, v.U32())
	case rwasm.OpI64Store, rwasm.OpF64Store:
		v := it.pop(st)
		it.storeU64(st, mem, instr, 8, v.U64())
	case rwasm.OpI32Store8:
		v := it.pop(st)
		it.storeU32(st, mem, instr, 1, v.U32())
	case rwasm.OpI32Store16:
		v := it.pop(st)
		it.storeU32(st, mem, instr, 2, v.U32())
	case rwasm.OpI64Store8:
		v := it.pop(st)
		it.storeU64(st, mem, instr, 1, v.U64())
	case rwasm.OpI64Store16:
		v := it.pop(st)
		it.storeU64(st, mem, instr, 2, v.U64())
	case rwasm.OpI64Store32:
		v := it.pop(st)
		it.storeU64(st, mem, instr, 4, v.U64())

	case rwasm.OpMemorySize:
		it.push(st, value.U32(mem.Pages()))

	case rwasm.OpMemoryGrow:
		delta := it.pop(st).U32()
		prev, ok := mem.Grow(delta)
		if !ok {
			it.push(st, value.U32(rwasm.GrowFailed))
		} else {
			it.push(st, value.U32(prev))
		}

	case rwasm.OpMemoryFill:
		n := it.pop(st).U32()
		val := byte(it.pop(st).U32())
		dest := it.pop(st).U32()
		it.boundsCheck(mem.Size(), dest, n)
		region := mem.Bytes()[dest : dest+n]
		for i := range region {
			region[i] = val
		}

	case rwasm.OpMemoryCopy:
		n := it.pop(st).U32()
		src := it.pop(st).U32()
		dest := it.pop(st).U32()
		it.boundsCheck(mem.Size(), src, n)
		it.boundsCheck(mem.Size(), dest, n)
		copy(mem.Bytes()[dest:dest+n], mem.Bytes()[src:src+n])

	case rwasm.OpMemoryInit:
		n := it.pop(st).U32()
		src := it.pop(st).U32()
		dest := it.pop(st).U32()
		seg := st.store.Data[instr.U32Operand()].Read()
		if uint64(src)+uint64(n) > uint64(len(seg)) {
			panic(trap.ErrMemoryOutOfBounds)
		}
		it.boundsCheck(mem.Size(), dest, n)
		copy(mem.Bytes()[dest:dest+n], seg[src:src+n])

	case rwasm.OpDataDrop:
		st.store.Data[instr.U32Operand()].Drop()

	default:
		panic(trap.ErrMemoryOutOfBounds)
	}
}

func (it *Interpreter) boundsCheck(memSize, addr, length uint32) {
	if uint64(addr)+uint64(length) > uint64(memSize) {
		panic(trap.ErrMemoryOutOfBounds)
	}
}

func (it *Interpreter) loadU32(st *execState, mem *rwasm.Memory, instr rwasm.Instruction, width uint32) uint32 {
	addr := it.effectiveAddr(st, instr)
	it.boundsCheck(mem.Size(), addr, width)
	buf := mem.Bytes()[addr : addr+width]
	switch width {
	case 1:
		return uint32(buf[0])
	case 2:
		return uint32(binary.LittleEndian.Uint16(buf))
	default:
		return binary.LittleEndian.Uint32(buf)
	}
}

func (it *Interpreter) loadU64(st *execState, mem *rwasm.Memory, instr rwasm.Instruction, width uint32) uint64 {
	addr := it.effectiveAddr(st, instr)
	it.boundsCheck(mem.Size(), addr, width)
	buf := mem.Bytes()[addr : addr+width]
	switch width {
	case 1:
		return uint64(buf[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(buf))
	case 4:
		return uint64(binary.LittleEndian.Uint32(buf))
	default:
		return binary.LittleEndian.Uint64(buf)
	}
}

func (it *Interpreter) storeU32(st *execState, mem *rwasm.Memory, instr rwasm.Instruction, width uint32, v uint32) {
	addr := it.effectiveAddr(st, instr)
	it.boundsCheck(mem.Size(), addr, width)
	buf := mem.Bytes()[addr : addr+width]
	switch width {
	case 1:
		buf[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(buf, uint16(v))
	default:
		binary.LittleEndian.PutUint32(buf, v)
	}
}

func (it *Interpreter) storeU64(st *execState, mem *rwasm.Memory, instr rwasm.Instruction, width uint32, v uint64) {
	addr := it.effectiveAddr(st, instr)
	it.boundsCheck(mem.Size(), addr, width)
	buf := mem.Bytes()[addr : addr+width]
	switch width {
	case 1:
		buf[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(buf, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(buf, uint32(v))
	default:
		binary.LittleEndian.PutUint64(buf, v)
	}
}

// effectiveAddr pops the base address and adds the instruction's static
// offset immediate, trapping on u32 overflow rather than wrapping.
func (it *Interpreter) effectiveAddr(st *execState, instr rwasm.Instruction) uint32 {
	base := it.pop(st).U32()
	sum := uint64(base) + uint64(instr.U32Operand())
	if sum > uint64(^uint32(0)) {
		panic(trap.ErrMemoryOutOfBounds)
	}
	return uint32(sum)
}
