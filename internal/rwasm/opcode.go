// Package rwasm defines the flat rWASM bytecode: its opcode table, the
// fixed-width Instruction encoding, and the executable Module plus the
// stores (linear memory, table, data/element segments) it addresses.
package rwasm

// Opcode is the one-byte tag of an Instruction. The numbering is
// contiguous by family and is part of the binary contract: a verifier
// accepts only these byte values in this layout.
type Opcode byte

const (
	OpUnreachable Opcode = 0x00

	OpLocalGet Opcode = 0x01
	OpLocalSet Opcode = 0x02
	OpLocalTee Opcode = 0x03

	OpBr            Opcode = 0x04
	OpBrIfEqz       Opcode = 0x05
	OpBrIfNez       Opcode = 0x06
	OpBrAdjust      Opcode = 0x07
	OpBrAdjustIfNez Opcode = 0x08
	OpBrTable       Opcode = 0x09

	OpConsumeFuel Opcode = 0x0A

	OpReturn             Opcode = 0x0B
	OpReturnIfNez        Opcode = 0x0C
	OpReturnCallInternal Opcode = 0x0D
	OpReturnCallIndirect Opcode = 0x0E
	OpReturnCall         Opcode = 0x0F

	OpCallInternal   Opcode = 0x10
	OpCall           Opcode = 0x11
	OpCallIndirect   Opcode = 0x12
	OpSignatureCheck Opcode = 0x13

	OpDrop       Opcode = 0x14
	OpSelect     Opcode = 0x15
	OpGlobalGet  Opcode = 0x16
	OpGlobalSet  Opcode = 0x17

	OpI32Load Opcode = 0x18
	OpI64Load Opcode = 0x19
	OpF32Load Opcode = 0x1A
	OpF64Load Opcode = 0x1B

	OpI32Load8S  Opcode = 0x1C
	OpI32Load8U  Opcode = 0x1D
	OpI32Load16S Opcode = 0x1E
	OpI32Load16U Opcode = 0x1F
	OpI64Load8S  Opcode = 0x20
	OpI64Load8U  Opcode = 0x21
	OpI64Load16S Opcode = 0x22
	OpI64Load16U Opcode = 0x23
	OpI64Load32S Opcode = 0x24
	OpI64Load32U Opcode = 0x25

	OpI32Store   Opcode = 0x26
	OpI64Store   Opcode = 0x27
	OpF32Store   Opcode = 0x28
	OpF64Store   Opcode = 0x29
	OpI32Store8  Opcode = 0x2A
	OpI32Store16 Opcode = 0x2B
	OpI64Store8  Opcode = 0x2C
	OpI64Store16 Opcode = 0x2D
	OpI64Store32 Opcode = 0x2E

	OpMemorySize Opcode = 0x2F
	OpMemoryGrow Opcode = 0x30
	OpMemoryFill Opcode = 0x31
	OpMemoryCopy Opcode = 0x32
	OpMemoryInit Opcode = 0x33
	OpDataDrop   Opcode = 0x34

	OpTableGet  Opcode = 0x35
	OpTableSet  Opcode = 0x36
	OpTableSize Opcode = 0x37
	OpTableGrow Opcode = 0x38
	OpTableFill Opcode = 0x39
	OpTableCopy Opcode = 0x3A
	OpTableInit Opcode = 0x3B
	OpElemDrop  Opcode = 0x3C
	OpRefFunc   Opcode = 0x3D

	OpI32Const Opcode = 0x3E
	OpI64Const Opcode = 0x3F
	OpF32Const Opcode = 0x40
	OpF64Const Opcode = 0x41

	// Integer comparisons: i32 family then i64 family, each in the same
	// eqz,eq,ne,lt_s,lt_u,gt_s,gt_u,le_s,le_u,ge_s,ge_u order (11 each).
	OpI32Eqz  Opcode = 0x42
	OpI32Eq   Opcode = 0x43
	OpI32Ne   Opcode = 0x44
	OpI32LtS  Opcode = 0x45
	OpI32LtU  Opcode = 0x46
	OpI32GtS  Opcode = 0x47
	OpI32GtU  Opcode = 0x48
	OpI32LeS  Opcode = 0x49
	OpI32LeU  Opcode = 0x4A
	OpI32GeS  Opcode = 0x4B
	OpI32GeU  Opcode = 0x4C
	OpI64Eqz  Opcode = 0x4D
	OpI64Eq   Opcode = 0x4E
	OpI64Ne   Opcode = 0x4F
	OpI64LtS  Opcode = 0x50
	OpI64LtU  Opcode = 0x51
	OpI64GtS  Opcode = 0x52
	OpI64GtU  Opcode = 0x53
	OpI64LeS  Opcode = 0x54
	OpI64LeU  Opcode = 0x55
	OpI64GeS  Opcode = 0x56
	OpI64GeU  Opcode = 0x57

	// Float comparisons: f32 then f64, each eq,ne,lt,gt,le,ge (6 each).
	OpF32Eq Opcode = 0x58
	OpF32Ne Opcode = 0x59
	OpF32Lt Opcode = 0x5A
	OpF32Gt Opcode = 0x5B
	OpF32Le Opcode = 0x5C
	OpF32Ge Opcode = 0x5D
	OpF64Eq Opcode = 0x5E
	OpF64Ne Opcode = 0x5F
	OpF64Lt Opcode = 0x60
	OpF64Gt Opcode = 0x61
	OpF64Le Opcode = 0x62
	OpF64Ge Opcode = 0x63

	// Integer unary/binary: i32 then i64, each clz,ctz,popcnt,add,sub,mul,
	// div_s,div_u,rem_s,rem_u,and,or,xor,shl,shr_s,shr_u,rotl,rotr (18 each).
	OpI32Clz    Opcode = 0x64
	OpI32Ctz    Opcode = 0x65
	OpI32Popcnt Opcode = 0x66
	OpI32Add    Opcode = 0x67
	OpI32Sub    Opcode = 0x68
	OpI32Mul    Opcode = 0x69
	OpI32DivS   Opcode = 0x6A
	OpI32DivU   Opcode = 0x6B
	OpI32RemS   Opcode = 0x6C
	OpI32RemU   Opcode = 0x6D
	OpI32And    Opcode = 0x6E
	OpI32Or     Opcode = 0x6F
	OpI32Xor    Opcode = 0x70
	OpI32Shl    Opcode = 0x71
	OpI32ShrS   Opcode = 0x72
	OpI32ShrU   Opcode = 0x73
	OpI32Rotl   Opcode = 0x74
	OpI32Rotr   Opcode = 0x75
	OpI64Clz    Opcode = 0x76
	OpI64Ctz    Opcode = 0x77
	OpI64Popcnt Opcode = 0x78
	OpI64Add    Opcode = 0x79
	OpI64Sub    Opcode = 0x7A
	OpI64Mul    Opcode = 0x7B
	OpI64DivS   Opcode = 0x7C
	OpI64DivU   Opcode = 0x7D
	OpI64RemS   Opcode = 0x7E
	OpI64RemU   Opcode = 0x7F
	OpI64And    Opcode = 0x80
	OpI64Or     Opcode = 0x81
	OpI64Xor    Opcode = 0x82
	OpI64Shl    Opcode = 0x83
	OpI64ShrS   Opcode = 0x84
	OpI64ShrU   Opcode = 0x85
	OpI64Rotl   Opcode = 0x86
	OpI64Rotr   Opcode = 0x87

	// Float unary/binary: f32 then f64, each abs,neg,ceil,floor,trunc,
	// nearest,sqrt,add,sub,mul,div,min,max,copysign (14 each).
	OpF32Abs      Opcode = 0x88
	OpF32Neg      Opcode = 0x89
	OpF32Ceil     Opcode = 0x8A
	OpF32Floor    Opcode = 0x8B
	OpF32Trunc    Opcode = 0x8C
	OpF32Nearest  Opcode = 0x8D
	OpF32Sqrt     Opcode = 0x8E
	OpF32Add      Opcode = 0x8F
	OpF32Sub      Opcode = 0x90
	OpF32Mul      Opcode = 0x91
	OpF32Div      Opcode = 0x92
	OpF32Min      Opcode = 0x93
	OpF32Max      Opcode = 0x94
	OpF32Copysign Opcode = 0x95
	OpF64Abs      Opcode = 0x96
	OpF64Neg      Opcode = 0x97
	OpF64Ceil     Opcode = 0x98
	OpF64Floor    Opcode = 0x99
	OpF64Trunc    Opcode = 0x9A
	OpF64Nearest  Opcode = 0x9B
	OpF64Sqrt     Opcode = 0x9C
	OpF64Add      Opcode = 0x9D
	OpF64Sub      Opcode = 0x9E
	OpF64Mul      Opcode = 0x9F
	OpF64Div      Opcode = 0xA0
	OpF64Min      Opcode = 0xA1
	OpF64Max      Opcode = 0xA2
	OpF64Copysign Opcode = 0xA3

	// Numeric conversions.
	OpI32WrapI64      Opcode = 0xA4
	OpI32TruncF32S    Opcode = 0xA5
	OpI32TruncF32U    Opcode = 0xA6
	OpI32TruncF64S    Opcode = 0xA7
	OpI32TruncF64U    Opcode = 0xA8
	OpI64ExtendI32S   Opcode = 0xA9
	OpI64ExtendI32U   Opcode = 0xAA
	OpI64TruncF32S    Opcode = 0xAB
	OpI64TruncF32U    Opcode = 0xAC
	OpI64TruncF64S    Opcode = 0xAD
	OpI64TruncF64U    Opcode = 0xAE
	OpF32ConvertI32S  Opcode = 0xAF
	OpF32ConvertI32U  Opcode = 0xB0
	OpF32ConvertI64S  Opcode = 0xB1
	OpF32ConvertI64U  Opcode = 0xB2
	OpF32DemoteF64    Opcode = 0xB3
	OpF64ConvertI32S  Opcode = 0xB4
	OpF64ConvertI32U  Opcode = 0xB5
	OpF64ConvertI64S  Opcode = 0xB6
	OpF64ConvertI64U  Opcode = 0xB7
	OpF64PromoteF32   Opcode = 0xB8

	// Sign-extension.
	OpI32Extend8S  Opcode = 0xB9
	OpI32Extend16S Opcode = 0xBA
	OpI64Extend8S  Opcode = 0xBB
	OpI64Extend16S Opcode = 0xBC
	OpI64Extend32S Opcode = 0xBD

	// Saturating float-to-int truncation.
	OpI32TruncSatF32S Opcode = 0xBE
	OpI32TruncSatF32U Opcode = 0xBF
	OpI32TruncSatF64S Opcode = 0xC0
	OpI32TruncSatF64U Opcode = 0xC1
	OpI64TruncSatF32S Opcode = 0xC2
	OpI64TruncSatF32U Opcode = 0xC3
	OpI64TruncSatF64S Opcode = 0xC4
	OpI64TruncSatF64U Opcode = 0xC5

	// OpcodeCount is one past the highest assigned opcode.
	OpcodeCount = 0xC6
)

var opcodeNames = [OpcodeCount]string{
	OpUnreachable: "unreachable", OpLocalGet: "local.get", OpLocalSet: "local.set", OpLocalTee: "local.tee",
	OpBr: "br", OpBrIfEqz: "br_if_eqz", OpBrIfNez: "br_if_nez", OpBrAdjust: "br_adjust",
	OpBrAdjustIfNez: "br_adjust_if_nez", OpBrTable: "br_table", OpConsumeFuel: "consume_fuel",
	OpReturn: "return", OpReturnIfNez: "return_if_nez", OpReturnCallInternal: "return_call_internal",
	OpReturnCallIndirect: "return_call_indirect", OpReturnCall: "return_call",
	OpCallInternal: "call_internal", OpCall: "call", OpCallIndirect: "call_indirect",
	OpSignatureCheck: "signature_check", OpDrop: "drop", OpSelect: "select",
	OpGlobalGet: "global.get", OpGlobalSet: "global.set",
	OpI32Load: "i32.load", OpI64Load: "i64.load", OpF32Load: "f32.load", OpF64Load: "f64.load",
	OpI32Load8S: "i32.load8_s", OpI32Load8U: "i32.load8_u", OpI32Load16S: "i32.load16_s", OpI32Load16U: "i32.load16_u",
	OpI64Load8S: "i64.load8_s", OpI64Load8U: "i64.load8_u", OpI64Load16S: "i64.load16_s", OpI64Load16U: "i64.load16_u",
	OpI64Load32S: "i64.load32_s", OpI64Load32U: "i64.load32_u",
	OpI32Store: "i32.store", OpI64Store: "i64.store", OpF32Store: "f32.store", OpF64Store: "f64.store",
	OpI32Store8: "i32.store8", OpI32Store16: "i32.store16", OpI64Store8: "i64.store8",
	OpI64Store16: "i64.store16", OpI64Store32: "i64.store32",
	OpMemorySize: "memory.size", OpMemoryGrow: "memory.grow", OpMemoryFill: "memory.fill",
	OpMemoryCopy: "memory.copy", OpMemoryInit: "memory.init", OpDataDrop: "data.drop",
	OpTableGet: "table.get", OpTableSet: "table.set", OpTableSize: "table.size", OpTableGrow: "table.grow",
	OpTableFill: "table.fill", OpTableCopy: "table.copy", OpTableInit: "table.init",
	OpElemDrop: "elem.drop", OpRefFunc: "ref.func",
	OpI32Const: "i32.const", OpI64Const: "i64.const", OpF32Const: "f32.const", OpF64Const: "f64.const",
}

// Name returns the opcode's mnemonic. Mnemonics exist only for opcodes up
// to OpF64Const; numeric opcodes (comparisons, arithmetic, conversions) and
// out-of-range bytes return "unknown".
func (op Opcode) Name() string {
	if int(op) < len(opcodeNames) {
		if n := opcodeNames[op]; n != "" {
			return n
		}
	}
	return "unknown"
}
