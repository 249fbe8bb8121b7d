// Package value implements UntypedValue, the 64-bit tagged scalar that
// every rWASM operand stack slot is made of. A Value carries no type tag of
// its own: opcodes know from their own encoding which interpretation
// (i32/i64/f32/f64/funcref) applies to the bits they pop or push.
package value

import "math"

// Value is a raw 64-bit container for one WebAssembly scalar. i32 and f32
// occupy the low 32 bits; the upper 32 bits are conventionally zero for
// those but are never inspected by opcodes that know they're handling a
// 32-bit type.
type Value uint64

// Null is the sentinel funcref value for an empty table slot or a null
// reference produced by ref.null.
const Null Value = 0

// I32 packs a signed 32-bit integer into a Value.
func I32(v int32) Value { return Value(uint32(v)) }

// U32 packs an unsigned 32-bit integer into a Value.
func U32(v uint32) Value { return Value(v) }

// I64 packs a signed 64-bit integer into a Value.
func I64(v int64) Value { return Value(v) }

// U64 packs an unsigned 64-bit integer into a Value.
func U64(v uint64) Value { return Value(v) }

// F32 packs a 32-bit float into a Value using its IEEE-754 bit pattern.
func F32(v float32) Value { return Value(math.Float32bits(v)) }

// F64 packs a 64-bit float into a Value using its IEEE-754 bit pattern.
func F64(v float64) Value { return Value(math.Float64bits(v)) }

// FuncRef packs a zero-based CompiledFunc index as a non-null funcref by
// storing it plus one, so that the raw value zero stays reserved for Null.
func FuncRef(compiledFuncIdx uint32) Value { return Value(uint64(compiledFuncIdx) + 1) }

// I32 unpacks the low 32 bits as a signed integer.
func (v Value) I32() int32 { return int32(uint32(v)) }

// U32 unpacks the low 32 bits as an unsigned integer.
func (v Value) U32() uint32 { return uint32(v) }

// I64 unpacks all 64 bits as a signed integer.
func (v Value) I64() int64 { return int64(v) }

// U64 unpacks all 64 bits as an unsigned integer.
func (v Value) U64() uint64 { return uint64(v) }

// F32 unpacks the low 32 bits as an IEEE-754 float.
func (v Value) F32() float32 { return math.Float32frombits(uint32(v)) }

// F64 unpacks all 64 bits as an IEEE-754 float.
func (v Value) F64() float64 { return math.Float64frombits(uint64(v)) }

// IsNull reports whether v is the null funcref sentinel.
func (v Value) IsNull() bool { return v == Null }

// FuncRefIndex returns the zero-based CompiledFunc index a non-null funcref
// refers to. Callers must check IsNull first.
func (v Value) FuncRefIndex() uint32 { return uint32(v) - 1 }

// WasmCompatMin mirrors f32.min/f64.min: unlike math.Min, either operand
// being NaN yields NaN, and -0 is considered less than +0.
func WasmCompatMin(x, y float64) float64 {
	switch {
	case math.IsNaN(x) || math.IsNaN(y):
		return math.NaN()
	case math.IsInf(x, -1) || math.IsInf(y, -1):
		return math.Inf(-1)
	case x == 0 && x == y:
		if math.Signbit(x) {
			return x
		}
		return y
	}
	if x < y {
		return x
	}
	return y
}

// WasmCompatMax mirrors f32.max/f64.max: unlike math.Max, either operand
// being NaN yields NaN, and +0 is considered greater than -0.
func WasmCompatMax(x, y float64) float64 {
	switch {
	case math.IsNaN(x) || math.IsNaN(y):
		return math.NaN()
	case math.IsInf(x, 1) || math.IsInf(y, 1):
		return math.Inf(1)
	case x == 0 && x == y:
		if math.Signbit(x) {
			return y
		}
		return x
	}
	if x > y {
		return x
	}
	return y
}

// trapping truncation bounds: a source float strictly within (lo, hi) truncates safely to the
// destination integer type; anything else (including NaN) traps in the non-saturating opcodes.
const (
	i32TruncF32Lo, i32TruncF32Hi   = -2147483904.0, 2147483648.0
	u32TruncF32Lo, u32TruncF32Hi   = -1.0, 4294967296.0
	i32TruncF64Lo, i32TruncF64Hi   = -2147483649.0, 2147483648.0
	u32TruncF64Lo, u32TruncF64Hi   = -1.0, 4294967296.0
	i64TruncF32Lo, i64TruncF32Hi   = -9223373136366403584.0, 9223372036854775808.0
	u64TruncF32Lo, u64TruncF32Hi   = -1.0, 18446744073709551616.0
	i64TruncF64Lo, i64TruncF64Hi   = -9223372036854777856.0, 9223372036854775808.0
	u64TruncF64Lo, u64TruncF64Hi   = -1.0, 18446744073709551616.0
)

// I32TruncF32S converts f32 to a signed i32, trapping (ok=false) on NaN or
// out-of-range input, matching i32.trunc_f32_s.
func I32TruncF32S(f float32) (v int32, ok bool) {
	x := float64(f)
	if math.IsNaN(x) || x <= i32TruncF32Lo || x >= i32TruncF32Hi {
		return 0, false
	}
	return int32(x), true
}

// I32TruncF32U converts f32 to an unsigned i32, trapping on NaN or out-of-range input.
func I32TruncF32U(f float32) (v uint32, ok bool) {
	x := float64(f)
	if math.IsNaN(x) || x <= u32TruncF32Lo || x >= u32TruncF32Hi {
		return 0, false
	}
	return uint32(x), true
}

// I32TruncF64S converts f64 to a signed i32, trapping on NaN or out-of-range input.
func I32TruncF64S(x float64) (v int32, ok bool) {
	if math.IsNaN(x) || x <= i32TruncF64Lo || x >= i32TruncF64Hi {
		return 0, false
	}
	return int32(x), true
}

// I32TruncF64U converts f64 to an unsigned i32, trapping on NaN or out-of-range input.
func I32TruncF64U(x float64) (v uint32, ok bool) {
	if math.IsNaN(x) || x <= u32TruncF64Lo || x >= u32TruncF64Hi {
		return 0, false
	}
	return uint32(x), true
}

// I64TruncF32S converts f32 to a signed i64, trapping on NaN or out-of-range input.
func I64TruncF32S(f float32) (v int64, ok bool) {
	x := float64(f)
	if math.IsNaN(x) || x <= i64TruncF32Lo || x >= i64TruncF32Hi {
		return 0, false
	}
	return int64(x), true
}

// I64TruncF32U converts f32 to an unsigned i64, trapping on NaN or out-of-range input.
func I64TruncF32U(f float32) (v uint64, ok bool) {
	x := float64(f)
	if math.IsNaN(x) || x <= u64TruncF32Lo || x >= u64TruncF32Hi {
		return 0, false
	}
	return uint64(x), true
}

// I64TruncF64S converts f64 to a signed i64, trapping on NaN or out-of-range input.
func I64TruncF64S(x float64) (v int64, ok bool) {
	if math.IsNaN(x) || x <= i64TruncF64Lo || x >= i64TruncF64Hi {
		return 0, false
	}
	return int64(x), true
}

// I64TruncF64U converts f64 to an unsigned i64, trapping on NaN or out-of-range input.
func I64TruncF64U(x float64) (v uint64, ok bool) {
	if math.IsNaN(x) || x <= u64TruncF64Lo || x >= u64TruncF64Hi {
		return 0, false
	}
	return uint64(x), true
}

// I32TruncSatF32S is the saturating variant of I32TruncF32S: NaN becomes 0,
// and out-of-range values clamp to the nearest representable bound.
func I32TruncSatF32S(f float32) int32 { return truncSatS32(float64(f)) }

// I32TruncSatF32U is the saturating variant of I32TruncF32U.
func I32TruncSatF32U(f float32) uint32 { return truncSatU32(float64(f)) }

// I32TruncSatF64S is the saturating variant of I32TruncF64S.
func I32TruncSatF64S(x float64) int32 { return truncSatS32(x) }

// I32TruncSatF64U is the saturating variant of I32TruncF64U.
func I32TruncSatF64U(x float64) uint32 { return truncSatU32(x) }

// I64TruncSatF32S is the saturating variant of I64TruncF32S.
func I64TruncSatF32S(f float32) int64 { return truncSatS64(float64(f)) }

// I64TruncSatF32U is the saturating variant of I64TruncF32U.
func I64TruncSatF32U(f float32) uint64 { return truncSatU64(float64(f)) }

// I64TruncSatF64S is the saturating variant of I64TruncF64S.
func I64TruncSatF64S(x float64) int64 { return truncSatS64(x) }

// I64TruncSatF64U is the saturating variant of I64TruncF64U.
func I64TruncSatF64U(x float64) uint64 { return truncSatU64(x) }

func truncSatS32(x float64) int32 {
	switch {
	case math.IsNaN(x):
		return 0
	case x <= i32TruncF64Lo:
		return math.MinInt32
	case x >= i32TruncF64Hi:
		return math.MaxInt32
	}
	return int32(x)
}

func truncSatU32(x float64) uint32 {
	switch {
	case math.IsNaN(x) || x <= u32TruncF64Lo:
		return 0
	case x >= u32TruncF64Hi:
		return math.MaxUint32
	}
	return uint32(x)
}

func truncSatS64(x float64) int64 {
	switch {
	case math.IsNaN(x):
		return 0
	case x <= i64TruncF64Lo:
		return math.MinInt64
	case x >= i64TruncF64Hi:
		return math.MaxInt64
	}
	return int64(x)
}

func truncSatU64(x float64) uint64 {
	switch {
	case math.IsNaN(x) || x <= u64TruncF64Lo:
		return 0
	case x >= u64TruncF64Hi:
		return math.MaxUint64
	}
	return uint64(x)
}
