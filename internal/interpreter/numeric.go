package interpreter

import (
	"math"
	"math/bits"

	"github.com/fluentlabs-xyz/rwasm/internal/rwasm"
	"github.com/fluentlabs-xyz/rwasm/internal/trap"
	"github.com/fluentlabs-xyz/rwasm/internal/value"
)

// stepNumeric handles constants, comparisons, and the unary/binary
// arithmetic and conversion families: everything left once control flow,
// calls, locals/globals, memory, and table have been dispatched elsewhere.
func (it *Interpreter) stepNumeric(st *execState, instr rwasm.Instruction) {
	switch instr.Op {
	case rwasm.OpI32Const:
		it.push(st, value.I32(instr.I32Operand()))
	case rwasm.OpI64Const:
		it.push(st, value.I64(int64(instr.Operand)))
	case rwasm.OpF32Const:
		it.push(st, value.Value(instr.Operand))
	case rwasm.OpF64Const:
		it.push(st, value.Value(instr.Operand))

	case rwasm.OpI32Eqz:
		it.push(st, boolVal(it.pop(st).I32() == 0))
	case rwasm.OpI64Eqz:
		it.push(st, boolVal(it.pop(st).I64() == 0))

	case rwasm.OpI32Eq:
		it.binI32(st, func(a, b int32) int32 { return boolI32(a == b) })
	case rwasm.OpI32Ne:
		it.binI32(st, func(a, b int32) int32 { return boolI32(a != b) })
	case rwasm.OpI32LtS:
		it.binI32(st, func(a, b int32) int32 { return boolI32(a < b) })
	case rwasm.OpI32LtU:
		it.binU32(st, func(a, b uint32) uint32 { return uint32(boolI32(a < b)) })
	case rwasm.OpI32GtS:
		it.binI32(st, func(a, b int32) int32 { return boolI32(a > b) })
	case rwasm.OpI32GtU:
		it.binU32(st, func(a, b uint32) uint32 { return uint32(boolI32(a > b)) })
	case rwasm.OpI32LeS:
		it.binI32(st, func(a, b int32) int32 { return boolI32(a <= b) })
	case rwasm.OpI32LeU:
		it.binU32(st, func(a, b uint32) uint32 { return uint32(boolI32(a <= b)) })
	case rwasm.OpI32GeS:
		it.binI32(st, func(a, b int32) int32 { return boolI32(a >= b) })
	case rwasm.OpI32GeU:
		it.binU32(st, func(a, b uint32) uint32 { return uint32(boolI32(a >= b)) })

	case rwasm.OpI64Eq:
		it.binI64Cmp(st, func(a, b int64) bool { return a == b })
	case rwasm.OpI64Ne:
		it.binI64Cmp(st, func(a, b int64) bool { return a != b })
	case rwasm.OpI64LtS:
		it.binI64Cmp(st, func(a, b int64) bool { return a < b })
	case rwasm.OpI64LtU:
		it.binU64Cmp(st, func(a, b uint64) bool { return a < b })
	case rwasm.OpI64GtS:
		it.binI64Cmp(st, func(a, b int64) bool { return a > b })
	case rwasm.OpI64GtU:
		it.binU64Cmp(st, func(a, b uint64) bool { return a > b })
	case rwasm.OpI64LeS:
		it.binI64Cmp(st, func(a, b int64) bool { return a <= b })
	case rwasm.OpI64LeU:
		it.binU64Cmp(st, func(a, b uint64) bool { return a <= b })
	case rwasm.OpI64GeS:
		it.binI64Cmp(st, func(a, b int64) bool { return a >= b })
	case rwasm.OpI64GeU:
		it.binU64Cmp(st, func(a, b uint64) bool { return a >= b })

	case rwasm.OpF32Eq:
		it.binF32Cmp(st, func(a, b float32) bool { return a == b })
	case rwasm.OpF32Ne:
		it.binF32Cmp(st, func(a, b float32) bool { return a != b })
	case rwasm.OpF32Lt:
		it.binF32Cmp(st, func(a, b float32) bool { return a < b })
	case rwasm.OpF32Gt:
		it.binF32Cmp(st, func(a, b float32) bool { return a > b })
	case rwasm.OpF32Le:
		it.binF32Cmp(st, func(a, b float32) bool { return a <= b })
	case rwasm.OpF32Ge:
		it.binF32Cmp(st, func(a, b float32) bool { return a >= b })
	case rwasm.OpF64Eq:
		it.binF64Cmp(st, func(a, b float64) bool { return a == b })
	case rwasm.OpF64Ne:
		it.binF64Cmp(st, func(a, b float64) bool { return a != b })
	case rwasm.OpF64Lt:
		it.binF64Cmp(st, func(a, b float64) bool { return a < b })
	case rwasm.OpF64Gt:
		it.binF64Cmp(st, func(a, b float64) bool { return a > b })
	case rwasm.OpF64Le:
		it.binF64Cmp(st, func(a, b float64) bool { return a <= b })
	case rwasm.OpF64Ge:
		it.binF64Cmp(st, func(a, b float64) bool { return a >= b })

	case rwasm.OpI32Clz:
		it.unI32(st, func(a int32) int32 { return int32(bits.LeadingZeros32(uint32(a))) })
	case rwasm.OpI32Ctz:
		it.unI32(st, func(a int32) int32 { return int32(bits.TrailingZeros32(uint32(a))) })
	case rwasm.OpI32Popcnt:
		it.unI32(st, func(a int32) int32 { return int32(bits.OnesCount32(uint32(a))) })
	case rwasm.OpI32Add:
		it.binI32(st, func(a, b int32) int32 { return a + b })
	case rwasm.OpI32Sub:
		it.binI32(st, func(a, b int32) int32 { return a - b })
	case rwasm.OpI32Mul:
		it.binI32(st, func(a, b int32) int32 { return a * b })
	case rwasm.OpI32DivS:
		it.binI32Trap(st, func(a, b int32) (int32, bool) {
			if b == 0 {
				panic(trap.ErrIntegerDivisionByZero)
			}
			if a == math.MinInt32 && b == -1 {
				panic(trap.ErrIntegerOverflow)
			}
			return a / b, true
		})
	case rwasm.OpI32DivU:
		it.binU32Trap(st, func(a, b uint32) uint32 {
			if b == 0 {
				panic(trap.ErrIntegerDivisionByZero)
			}
			return a / b
		})
	case rwasm.OpI32RemS:
		it.binI32Trap(st, func(a, b int32) (int32, bool) {
			if b == 0 {
				panic(trap.ErrIntegerDivisionByZero)
			}
			if a == math.MinInt32 && b == -1 {
				return 0, true
			}
			return a % b, true
		})
	case rwasm.OpI32RemU:
		it.binU32Trap(st, func(a, b uint32) uint32 {
			if b == 0 {
				panic(trap.ErrIntegerDivisionByZero)
			}
			return a % b
		})
	case rwasm.OpI32And:
		it.binI32(st, func(a, b int32) int32 { return a & b })
	case rwasm.OpI32Or:
		it.binI32(st, func(a, b int32) int32 { return a | b })
	case rwasm.OpI32Xor:
		it.binI32(st, func(a, b int32) int32 { return a ^ b })
	case rwasm.OpI32Shl:
		it.binU32(st, func(a, b uint32) uint32 { return a << (b & 31) })
	case rwasm.OpI32ShrS:
		it.binI32(st, func(a, b int32) int32 { return a >> (uint32(b) & 31) })
	case rwasm.OpI32ShrU:
		it.binU32(st, func(a, b uint32) uint32 { return a >> (b & 31) })
	case rwasm.OpI32Rotl:
		it.binU32(st, func(a, b uint32) uint32 { return bits.RotateLeft32(a, int(b&31)) })
	case rwasm.OpI32Rotr:
		it.binU32(st, func(a, b uint32) uint32 { return bits.RotateLeft32(a, -int(b&31)) })

	case rwasm.OpI64Clz:
		it.unI64(st, func(a int64) int64 { return int64(bits.LeadingZeros64(uint64(a))) })
	case rwasm.OpI64Ctz:
		it.unI64(st, func(a int64) int64 { return int64(bits.TrailingZeros64(uint64(a))) })
	case rwasm.OpI64Popcnt:
		it.unI64(st, func(a int64) int64 { return int64(bits.OnesCount64(uint64(a))) })
	case rwasm.OpI64Add:
		it.binI64(st, func(a, b int64) int64 { return a + b })
	case rwasm.OpI64Sub:
		it.binI64(st, func(a, b int64) int64 { return a - b })
	case rwasm.OpI64Mul:
		it.binI64(st, func(a, b int64) int64 { return a * b })
	case rwasm.OpI64DivS:
		it.binI64Trap(st, func(a, b int64) int64 {
			if b == 0 {
				panic(trap.ErrIntegerDivisionByZero)
			}
			if a == math.MinInt64 && b == -1 {
				panic(trap.ErrIntegerOverflow)
			}
			return a / b
		})
	case rwasm.OpI64DivU:
		it.binU64Trap(st, func(a, b uint64) uint64 {
			if b == 0 {
				panic(trap.ErrIntegerDivisionByZero)
			}
			return a / b
		})
	case rwasm.OpI64RemS:
		it.binI64Trap(st, func(a, b int64) int64 {
			if b == 0 {
				panic(trap.ErrIntegerDivisionByZero)
			}
			if a == math.MinInt64 && b == -1 {
				return 0
			}
			return a % b
		})
	case rwasm.OpI64RemU:
		it.binU64Trap(st, func(a, b uint64) uint64 {
			if b == 0 {
				panic(trap.ErrIntegerDivisionByZero)
			}
			return a % b
		})
	case rwasm.OpI64And:
		it.binI64(st, func(a, b int64) int64 { return a & b })
	case rwasm.OpI64Or:
		it.binI64(st, func(a, b int64) int64 { return a | b })
	case rwasm.OpI64Xor:
		it.binI64(st, func(a, b int64) int64 { return a ^ b })
	case rwasm.OpI64Shl:
		it.binU64(st, func(a, b uint64) uint64 { return a << (b & 63) })
	case rwasm.OpI64ShrS:
		it.binI64(st, func(a, b int64) int64 { return a >> (uint64(b) & 63) })
	case rwasm.OpI64ShrU:
		it.binU64(st, func(a, b uint64) uint64 { return a >> (b & 63) })
	case rwasm.OpI64Rotl:
		it.binU64(st, func(a, b uint64) uint64 { return bits.RotateLeft64(a, int(b&63)) })
	case rwasm.OpI64Rotr:
		it.binU64(st, func(a, b uint64) uint64 { return bits.RotateLeft64(a, -int(b&63)) })

	case rwasm.OpF32Abs:
		it.unF32(st, func(a float32) float32 { return float32(math.Abs(float64(a))) })
	case rwasm.OpF32Neg:
		it.unF32(st, func(a float32) float32 { return -a })
	case rwasm.OpF32Ceil:
		it.unF32(st, func(a float32) float32 { return float32(math.Ceil(float64(a))) })
	case rwasm.OpF32Floor:
		it.unF32(st, func(a float32) float32 { return float32(math.Floor(float64(a))) })
	case rwasm.OpF32Trunc:
		it.unF32(st, func(a float32) float32 { return float32(math.Trunc(float64(a))) })
	case rwasm.OpF32Nearest:
		it.unF32(st, func(a float32) float32 { return float32(math.RoundToEven(float64(a))) })
	case rwasm.OpF32Sqrt:
		it.unF32(st, func(a float32) float32 { return float32(math.Sqrt(float64(a))) })
	case rwasm.OpF32Add:
		it.binF32(st, func(a, b float32) float32 { return a + b })
	case rwasm.OpF32Sub:
		it.binF32(st, func(a, b float32) float32 { return a - b })
	case rwasm.OpF32Mul:
		it.binF32(st, func(a, b float32) float32 { return a * b })
	case rwasm.OpF32Div:
		it.binF32(st, func(a, b float32) float32 { return a / b })
	case rwasm.OpF32Min:
		it.binF32(st, func(a, b float32) float32 { return float32(value.WasmCompatMin(float64(a), float64(b))) })
	case rwasm.OpF32Max:
		it.binF32(st, func(a, b float32) float32 { return float32(value.WasmCompatMax(float64(a), float64(b))) })
	case rwasm.OpF32Copysign:
		it.binF32(st, func(a, b float32) float32 { return float32(math.Copysign(float64(a), float64(b))) })

	case rwasm.OpF64Abs:
		it.unF64(st, math.Abs)
	case rwasm.OpF64Neg:
		it.unF64(st, func(a float64) float64 { return -a })
	case rwasm.OpF64Ceil:
		it.unF64(st, math.Ceil)
	case rwasm.OpF64Floor:
		it.unF64(st, math.Floor)
	case rwasm.OpF64Trunc:
		it.unF64(st, math.Trunc)
	case rwasm.OpF64Nearest:
		it.unF64(st, math.RoundToEven)
	case rwasm.OpF64Sqrt:
		it.unF64(st, math.Sqrt)
	case rwasm.OpF64Add:
		it.binF64(st, func(a, b float64) float64 { return a + b })
	case rwasm.OpF64Sub:
		it.binF64(st, func(a, b float64) float64 { return a - b })
	case rwasm.OpF64Mul:
		it.binF64(st, func(a, b float64) float64 { return a * b })
	case rwasm.OpF64Div:
		it.binF64(st, func(a, b float64) float64 { return a / b })
	case rwasm.OpF64Min:
		it.binF64(st, value.WasmCompatMin)
	case rwasm.OpF64Max:
		it.binF64(st, value.WasmCompatMax)
	case rwasm.OpF64Copysign:
		it.binF64(st, math.Copysign)

	case rwasm.OpI32WrapI64:
		it.push(st, value.I32(int32(it.pop(st).I64())))
	case rwasm.OpI64ExtendI32S:
		it.push(st, value.I64(int64(it.pop(st).I32())))
	case rwasm.OpI64ExtendI32U:
		it.push(st, value.I64(int64(it.pop(st).U32())))
	case rwasm.OpI32Extend8S:
		it.push(st, value.I32(int32(int8(it.pop(st).I32()))))
	case rwasm.OpI32Extend16S:
		it.push(st, value.I32(int32(int16(it.pop(st).I32()))))
	case rwasm.OpI64Extend8S:
		it.push(st, value.I64(int64(int8(it.pop(st).I64()))))
	case rwasm.OpI64Extend16S:
		it.push(st, value.I64(int64(int16(it.pop(st).I64()))))
	case rwasm.OpI64Extend32S:
		it.push(st, value.I64(int64(int32(it.pop(st).I64()))))

	case rwasm.OpI32TruncF32S:
		v, ok := value.I32TruncF32S(it.pop(st).F32())
		it.pushTrunc32(st, v, ok)
	case rwasm.OpI32TruncF32U:
		v, ok := value.I32TruncF32U(it.pop(st).F32())
		it.pushTruncU32(st, v, ok)
	case rwasm.OpI32TruncF64S:
		v, ok := value.I32TruncF64S(it.pop(st).F64())
		it.pushTrunc32(st, v, ok)
	case rwasm.OpI32TruncF64U:
		v, ok := value.I32TruncF64U(it.pop(st).F64())
		it.pushTruncU32(st, v, ok)
	case rwasm.OpI64TruncF32S:
		v, ok := value.I64TruncF32S(it.pop(st).F32())
		it.pushTrunc64(st, v, ok)
	case rwasm.OpI64TruncF32U:
		v, ok := value.I64TruncF32U(it.pop(st).F32())
		it.pushTruncU64(st, v, ok)
	case rwasm.OpI64TruncF64S:
		v, ok := value.I64TruncF64S(it.pop(st).F64())
		it.pushTrunc64(st, v, ok)
	case rwasm.OpI64TruncF64U:
		v, ok := value.I64TruncF64U(it.pop(st).F64())
		it.pushTruncU64(st, v, ok)

	case rwasm.OpI32TruncSatF32S:
		it.push(st, value.I32(value.I32TruncSatF32S(it.pop(st).F32())))
	case rwasm.OpI32TruncSatF32U:
		it.push(st, value.U32(value.I32TruncSatF32U(it.pop(st).F32())))
	case rwasm.OpI32TruncSatF64S:
		it.push(st, value.I32(value.I32TruncSatF64S(it.pop(st).F64())))
	case rwasm.OpI32TruncSatF64U:
		it.push(st, value.U32(value.I32TruncSatF64U(it.pop(st).F64())))
	case rwasm.OpI64TruncSatF32S:
		it.push(st, value.I64(value.I64TruncSatF32S(it.pop(st).F32())))
	case rwasm.OpI64TruncSatF32U:
		it.push(st, value.U64(value.I64TruncSatF32U(it.pop(st).F32())))
	case rwasm.OpI64TruncSatF64S:
		it.push(st, value.I64(value.I64TruncSatF64S(it.pop(st).F64())))
	case rwasm.OpI64TruncSatF64U:
		it.push(st, value.U64(value.I64TruncSatF64U(it.pop(st).F64())))

	case rwasm.OpF32ConvertI32S:
		it.push(st, value.F32(float32(it.pop(st).I32())))
	case rwasm.OpF32ConvertI32U:
		it.push(st, value.F32(float32(it.pop(st).U32())))
	case rwasm.OpF32ConvertI64S:
		it.push(st, value.F32(float32(it.pop(st).I64())))
	case rwasm.OpF32ConvertI64U:
		it.push(st, value.F32(float32(it.pop(st).U64())))
	case rwasm.OpF32DemoteF64:
		it.push(st, value.F32(float32(it.pop(st).F64())))
	case rwasm.OpF64ConvertI32S:
		it.push(st, value.F64(float64(it.pop(st).I32())))
	case rwasm.OpF64ConvertI32U:
		it.push(st, value.F64(float64(it.pop(st).U32())))
	case rwasm.OpF64ConvertI64S:
		it.push(st, value.F64(float64(it.pop(st).I64())))
	case rwasm.OpF64ConvertI64U:
		it.push(st, value.F64(float64(it.pop(st).U64())))
	case rwasm.OpF64PromoteF32:
		it.push(st, value.F64(float64(it.pop(st).F32())))

	default:
		panic(trap.ErrBadSignature)
	}
}

func boolI32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func boolVal(b bool) value.Value {
	if b {
		return value.I32(1)
	}
	return value.I32(0)
}

func (it *Interpreter) pushTrunc32(st *execState, v int32, ok bool) {
	if !ok {
		panic(trap.ErrBadConversionToInteger)
	}
	it.push(st, value.I32(v))
}

func (it *Interpreter) pushTruncU32(st *execState, v uint32, ok bool) {
	if !ok {
		panic(trap.ErrBadConversionToInteger)
	}
	it.push(st, value.U32(v))
}

func (it *Interpreter) pushTrunc64(st *execState, v int64, ok bool) {
	if !ok {
		panic(trap.ErrBadConversionToInteger)
	}
	it.push(st, value.I64(v))
}

func (it *Interpreter) pushTruncU64(st *execState, v uint64, ok bool) {
	if !ok {
		panic(trap.ErrBadConversionToInteger)
	}
	it.push(st, value.U64(v))
}

func (it *Interpreter) unI32(st *execState, f func(int32) int32) {
	it.push(st, value.I32(f(it.pop(st).I32())))
}

func (it *Interpreter) unI64(st *execState, f func(int64) int64) {
	it.push(st, value.I64(f(it.pop(st).I64())))
}

func (it *Interpreter) unF32(st *execState, f func(float32) float32) {
	it.push(st, value.F32(f(it.pop(st).F32())))
}

func (it *Interpreter) unF64(st *execState, f func(float64) float64) {
	it.push(st, value.F64(f(it.pop(st).F64())))
}

func (it *Interpreter) binI32(st *execState, f func(a, b int32) int32) {
	b := it.pop(st).I32()
	a := it.pop(st).I32()
	it.push(st, value.I32(f(a, b)))
}

func (it *Interpreter) binI32Trap(st *execState, f func(a, b int32) (int32, bool)) {
	b := it.pop(st).I32()
	a := it.pop(st).I32()
	v, _ := f(a, b)
	it.push(st, value.I32(v))
}

func (it *Interpreter) binU32(st *execState, f func(a, b uint32) uint32) {
	b := it.pop(st).U32()
	a := it.pop(st).U32()
	it.push(st, value.U32(f(a, b)))
}

func (it *Interpreter) binU32Trap(st *execState, f func(a, b uint32) uint32) {
	it.binU32(st, f)
}

func (it *Interpreter) binI64(st *execState, f func(a, b int64) int64) {
	b := it.pop(st).I64()
	a := it.pop(st).I64()
	it.push(st, value.I64(f(a, b)))
}

func (it *Interpreter) binI64Trap(st *execState, f func(a, b int64) int64) {
	it.binI64(st, f)
}

func (it *Interpreter) binU64(st *execState, f func(a, b uint64) uint64) {
	b := it.pop(st).U64()
	a := it.pop(st).U64()
	it.push(st, value.U64(f(a, b)))
}

func (it *Interpreter) binU64Trap(st *execState, f func(a, b uint64) uint64) {
	it.binU64(st, f)
}

func (it *Interpreter) binF32(st *execState, f func(a, b float32) float32) {
	b := it.pop(st).F32()
	a := it.pop(st).F32()
	it.push(st, value.F32(f(a, b)))
}

func (it *Interpreter) binF64(st *execState, f func(a, b float64) float64) {
	b := it.pop(st).F64()
	a := it.pop(st).F64()
	it.push(st, value.F64(f(a, b)))
}

func (it *Interpreter) binI64Cmp(st *execState, f func(a, b int64) bool) {
	b := it.pop(st).I64()
	a := it.pop(st).I64()
	it.push(st, boolVal(f(a, b)))
}

func (it *Interpreter) binU64Cmp(st *execState, f func(a, b uint64) bool) {
	b := it.pop(st).U64()
	a := it.pop(st).U64()
	it.push(st, boolVal(f(a, b)))
}

func (it *Interpreter) binF32Cmp(st *execState, f func(a, b float32) bool) {
	b := it.pop(st).F32()
	a := it.pop(st).F32()
	it.push(st, boolVal(f(a, b)))
}

func (it *Interpreter) binF64Cmp(st *execState, f func(a, b float64) bool) {
	b := it.pop(st).F64()
	a := it.pop(st).F64()
	it.push(st, boolVal(f(a, b)))
}
