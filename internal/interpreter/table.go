package interpreter

import (
	"github.com/fluentlabs-xyz/rwasm/internal/rwasm"
	"github.com/fluentlabs-xyz/rwasm/internal/trap"
	"github.com/fluentlabs-xyz/rwasm/internal/value"
)

// stepTable handles table.get/set/size/grow/fill/copy/init, elem.drop, and
// ref.func. The module carries a single table, matching spec.md's
// reference-types scope (funcref only, no multi-table).
func (it *Interpreter) stepTable(st *execState, instr rwasm.Instruction) {
	tbl := st.store.Table

	switch instr.Op {
	case rwasm.OpTableGet:
		idx := it.pop(st).U32()
		v, ok := tbl.Get(idx)
		if !ok {
			panic(trap.ErrTableOutOfBounds)
		}
		it.push(st, v)

	case rwasm.OpTableSet:
		v := it.pop(st)
		idx := it.pop(st).U32()
		if !tbl.Set(idx, v) {
			panic(trap.ErrTableOutOfBounds)
		}

	case rwasm.OpTableSize:
		it.push(st, value.U32(tbl.Size()))

	case rwasm.OpTableGrow:
		delta := it.pop(st).U32()
		fill := it.pop(st)
		prev, ok := tbl.Grow(delta, fill)
		if !ok {
			it.push(st, value.U32(rwasm.GrowFailed))
		} else {
			it.push(st, value.U32(prev))
		}

	case rwasm.OpTableFill:
		n := it.pop(st).U32()
		v := it.pop(st)
		dest := it.pop(st).U32()
		it.tableBoundsCheck(tbl.Size(), dest, n)
		tbl.Fill(dest, n, v)

	case rwasm.OpTableCopy:
		n := it.pop(st).U32()
		src := it.pop(st).U32()
		dest := it.pop(st).U32()
		it.tableBoundsCheck(tbl.Size(), src, n)
		it.tableBoundsCheck(tbl.Size(), dest, n)
		// Overlapping ranges must behave like memmove; copy direction
		// depends on which side overlaps.
		if dest <= src {
			for i := uint32(0); i < n; i++ {
				v, _ := tbl.Get(src + i)
				tbl.Set(dest+i, v)
			}
		} else {
			for i := n; i > 0; i-- {
				v, _ := tbl.Get(src + i - 1)
				tbl.Set(dest+i-1, v)
			}
		}

	case rwasm.OpTableInit:
		n := it.pop(st).U32()
		src := it.pop(st).U32()
		dest := it.pop(st).U32()
		seg := st.store.Elem[instr.U32Operand()].Read()
		if uint64(src)+uint64(n) > uint64(len(seg)) {
			panic(trap.ErrTableOutOfBounds)
		}
		it.tableBoundsCheck(tbl.Size(), dest, n)
		for i := uint32(0); i < n; i++ {
			tbl.Set(dest+i, seg[src+i])
		}

	case rwasm.OpElemDrop:
		st.store.Elem[instr.U32Operand()].Drop()

	case rwasm.OpRefFunc:
		it.push(st, value.FuncRef(instr.U32Operand()))

	default:
		panic(trap.ErrTableOutOfBounds)
	}
}

func (it *Interpreter) tableBoundsCheck(size, addr, length uint32) {
	if uint64(addr)+uint64(length) > uint64(size) {
		panic(trap.ErrTableOutOfBounds)
	}
}
