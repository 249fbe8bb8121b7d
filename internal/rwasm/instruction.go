package rwasm

import (
	"encoding/binary"

	"github.com/fluentlabs-xyz/rwasm/internal/value"
)

// InstructionSize is the fixed width of every encoded instruction: one
// opcode byte followed by an 8-byte little-endian operand, zero-padded
// when the opcode doesn't use the full width.
const InstructionSize = 9

// DropKeep is the stack-unwind spec carried by Return, ReturnIfNez, and the
// BrAdjust family: drop this many values from below the top Keep values,
// then continue. It packs into the low 32 bits of an operand as two
// little-endian u16 fields (drop, keep).
type DropKeep struct {
	Drop uint32
	Keep uint32
}

// Pack encodes a DropKeep into an instruction operand.
func (dk DropKeep) Pack() value.Value {
	return value.Value(uint64(uint16(dk.Drop)) | uint64(uint16(dk.Keep))<<16)
}

// UnpackDropKeep reads back a DropKeep packed by Pack.
func UnpackDropKeep(v value.Value) DropKeep {
	u := uint64(v)
	return DropKeep{Drop: uint32(uint16(u)), Keep: uint32(uint16(u >> 16))}
}

// Instruction is a single (opcode, operand) slot in the flat code stream.
// Operand is always present and always 8 bytes; which sub-field of it
// matters is entirely determined by Op.
type Instruction struct {
	Op      Opcode
	Operand value.Value
}

// U32 constructs an instruction whose operand is a plain u32 (local depth,
// global/table/data/element/function/signature index, block fuel amount,
// address offset, or branch-table target count).
func U32(op Opcode, v uint32) Instruction { return Instruction{Op: op, Operand: value.U32(v)} }

// I32 constructs an instruction whose operand is a signed i32 immediate
// (i32.const). Branch offsets are built with WithDropKeepAndOffset.
func I32(op Opcode, v int32) Instruction { return Instruction{Op: op, Operand: value.I32(v)} }

// I64 constructs an instruction whose operand is a signed i64 immediate.
func I64(op Opcode, v int64) Instruction { return Instruction{Op: op, Operand: value.I64(v)} }

// F32 constructs an instruction whose operand is an f32 immediate.
func F32(op Opcode, v float32) Instruction { return Instruction{Op: op, Operand: value.F32(v)} }

// F64 constructs an instruction whose operand is an f64 immediate.
func F64(op Opcode, v float64) Instruction { return Instruction{Op: op, Operand: value.F64(v)} }

// WithDropKeep constructs a Return-family instruction carrying a DropKeep.
func WithDropKeep(op Opcode, dk DropKeep) Instruction {
	return Instruction{Op: op, Operand: dk.Pack()}
}

// WithDropKeepAndOffset constructs a BrAdjust-family instruction: the low
// 32 bits of the operand pack DropKeep exactly as WithDropKeep does, and
// the high 32 bits carry the signed PC-relative branch offset, so a single
// 9-byte slot covers both a stack-unwind and a jump.
func WithDropKeepAndOffset(op Opcode, dk DropKeep, offset int32) Instruction {
	return Instruction{Op: op, Operand: dk.Pack() | value.Value(uint64(uint32(offset))<<32)}
}

// BranchOffset reads the high 32 bits of an operand as a signed
// PC-relative jump offset. Every branch opcode (Br/BrIfEqz/BrIfNez and the
// BrAdjust family) carries its offset in the high half, as written by
// WithDropKeepAndOffset; callers that also unwind use this alongside
// DropKeepOperand.
func (i Instruction) BranchOffset() int32 { return int32(uint32(uint64(i.Operand) >> 32)) }

// U32Operand reads the operand as a plain u32.
func (i Instruction) U32Operand() uint32 { return i.Operand.U32() }

// I32Operand reads the low 32 bits of the operand as a signed i32.
func (i Instruction) I32Operand() int32 { return i.Operand.I32() }

// DropKeepOperand reads the operand as a packed DropKeep.
func (i Instruction) DropKeepOperand() DropKeep { return UnpackDropKeep(i.Operand) }

// CallOperand packs a Call instruction's host FuncIdx (low 32 bits)
// alongside its argument count (high 32 bits): with no type section in the
// binary, the call site itself is the only place arity is recorded for the
// interpreter to hand the right number of values to the host ABI.
func CallOperand(funcIdx, numArgs uint32) value.Value {
	return value.Value(uint64(funcIdx) | uint64(numArgs)<<32)
}

// FuncIdx reads a Call instruction's host function index.
func (i Instruction) FuncIdx() uint32 { return uint32(uint64(i.Operand)) }

// NumArgs reads a Call instruction's argument count.
func (i Instruction) NumArgs() uint32 { return uint32(uint64(i.Operand) >> 32) }

// Encode writes the instruction's 9-byte wire form into dst, which must be
// at least InstructionSize bytes.
func (i Instruction) Encode(dst []byte) {
	dst[0] = byte(i.Op)
	binary.LittleEndian.PutUint64(dst[1:InstructionSize], uint64(i.Operand))
}

// DecodeInstruction reads a single 9-byte slot from src.
func DecodeInstruction(src []byte) Instruction {
	return Instruction{
		Op:      Opcode(src[0]),
		Operand: value.Value(binary.LittleEndian.Uint64(src[1:InstructionSize])),
	}
}
