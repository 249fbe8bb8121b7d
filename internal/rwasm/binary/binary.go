// Package binary implements the bit-exact EIP-3540-framed encoding of an
// rwasm.Module: a fixed magic/version header, a section table-of-contents,
// and four section bodies (code, memory, function, element) in canonical
// order (spec.md §4.2).
package binary

import (
	"encoding/binary"
	"fmt"

	"github.com/fluentlabs-xyz/rwasm/internal/rwasm"
)

// Magic and version bytes, EIP-3540 framed.
var Magic = [2]byte{0xEF, 0x52}

const Version = 0x01

// Section IDs, in the canonical order a decoder requires them: code,
// memory, function, element. This resolves the "Section-id collisions"
// Open Question from spec.md §9 in favor of the documented canonical
// ordering.
const (
	SectionCode     byte = 1
	SectionMemory   byte = 2
	SectionFunction byte = 3
	SectionElement  byte = 4
)

// headerEnd terminates the section table-of-contents.
const headerEnd = 0x00

var sectionOrder = [...]byte{SectionCode, SectionMemory, SectionFunction, SectionElement}

// InvalidFormatError reports a binary-encoding contract violation detected
// by Decode.
type InvalidFormatError struct {
	Reason string
}

func (e *InvalidFormatError) Error() string { return "rwasm: invalid format: " + e.Reason }

func invalidFormat(format string, args ...interface{}) error {
	return &InvalidFormatError{Reason: fmt.Sprintf(format, args...)}
}

// Encode serializes m into its bit-exact binary form. Encoding the same
// Module twice always yields byte-identical output (translator determinism,
// spec.md §8 property 3, carries through encoding since Encode performs no
// normalization of its own).
func Encode(m *rwasm.Module) []byte {
	codeBody := encodeCode(m.Instructions)
	memoryBody := encodeMemory(m.DataSegments)
	functionBody := encodeFunction(m.FunctionLengths)
	elementBody := encodeElement(m.ElementSegments)

	bodies := map[byte][]byte{
		SectionCode:     codeBody,
		SectionMemory:   memoryBody,
		SectionFunction: functionBody,
		SectionElement:  elementBody,
	}

	out := make([]byte, 0, len(codeBody)+len(memoryBody)+len(functionBody)+len(elementBody)+64)
	out = append(out, Magic[0], Magic[1], Version)

	for _, id := range sectionOrder {
		body := bodies[id]
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(body)))
		out = append(out, id)
		out = append(out, lenBuf[:]...)
	}
	out = append(out, headerEnd)

	for _, id := range sectionOrder {
		out = append(out, bodies[id]...)
	}
	return out
}

func encodeCode(instrs []rwasm.Instruction) []byte {
	out := make([]byte, len(instrs)*rwasm.InstructionSize)
	for i, instr := range instrs {
		instr.Encode(out[i*rwasm.InstructionSize:])
	}
	return out
}

// encodeMemory frames each data segment with a 4-byte little-endian length
// prefix so Decode can split the section back into the original segments
// (spec.md §8 property 1 requires decode(encode(M)) == M for any segment
// count, not just zero-or-one).
func encodeMemory(segments [][]byte) []byte {
	var out []byte
	var buf [4]byte
	for _, s := range segments {
		binary.LittleEndian.PutUint32(buf[:], uint32(len(s)))
		out = append(out, buf[:]...)
		out = append(out, s...)
	}
	return out
}

func encodeFunction(lengths []uint32) []byte {
	out := make([]byte, len(lengths)*4)
	for i, l := range lengths {
		binary.LittleEndian.PutUint32(out[i*4:], l)
	}
	return out
}

// encodeElement frames each element segment with a 4-byte little-endian
// element-count prefix, mirroring encodeMemory's per-segment framing.
func encodeElement(segments [][]uint32) []byte {
	var out []byte
	var buf [4]byte
	for _, s := range segments {
		binary.LittleEndian.PutUint32(buf[:], uint32(len(s)))
		out = append(out, buf[:]...)
		for _, idx := range s {
			binary.LittleEndian.PutUint32(buf[:], idx)
			out = append(out, buf[:]...)
		}
	}
	return out
}

type sectionHeader struct {
	id     byte
	length uint32
}

// Decode parses a binary image produced by Encode back into a Module. The
// memory and element sections are each a sequence of length-prefixed
// segments (see encodeMemory/encodeElement), so decoding recovers exactly
// as many segments as Encode was given, however many that was (spec.md §8
// property 1: decode(encode(M)) == M for any segment count).
func Decode(b []byte) (*rwasm.Module, error) {
	if len(b) < 3 || b[0] != Magic[0] || b[1] != Magic[1] {
		return nil, invalidFormat("bad magic")
	}
	if b[2] != Version {
		return nil, invalidFormat("unsupported version %d", b[2])
	}
	off := 3

	var headers []sectionHeader
	seen := map[byte]bool{}
	for {
		if off >= len(b) {
			return nil, invalidFormat("truncated section header")
		}
		id := b[off]
		off++
		if id == headerEnd {
			break
		}
		if id < SectionCode || id > SectionElement {
			return nil, invalidFormat("unknown section id %#x", id)
		}
		if seen[id] {
			return nil, invalidFormat("duplicate section id %#x", id)
		}
		seen[id] = true
		if off+4 > len(b) {
			return nil, invalidFormat("truncated section length")
		}
		length := binary.LittleEndian.Uint32(b[off : off+4])
		off += 4
		headers = append(headers, sectionHeader{id, length})
	}
	for _, want := range sectionOrder {
		if !seen[want] {
			return nil, invalidFormat("missing section %#x", want)
		}
	}

	bodies := map[byte][]byte{}
	for i, h := range headers {
		if h.id != sectionOrder[i] {
			return nil, invalidFormat("sections out of canonical order")
		}
		if uint64(off)+uint64(h.length) > uint64(len(b)) {
			return nil, invalidFormat("section %#x overruns input", h.id)
		}
		bodies[h.id] = b[off : off+int(h.length)]
		off += int(h.length)
	}
	if off != len(b) {
		return nil, invalidFormat("trailing bytes after final section")
	}

	codeBody := bodies[SectionCode]
	if len(codeBody)%rwasm.InstructionSize != 0 {
		return nil, invalidFormat("code section length %d not a multiple of %d", len(codeBody), rwasm.InstructionSize)
	}
	instrCount := len(codeBody) / rwasm.InstructionSize
	instrs := make([]rwasm.Instruction, instrCount)
	for i := 0; i < instrCount; i++ {
		instrs[i] = rwasm.DecodeInstruction(codeBody[i*rwasm.InstructionSize:])
	}

	functionBody := bodies[SectionFunction]
	if len(functionBody)%4 != 0 {
		return nil, invalidFormat("function section length %d not a multiple of 4", len(functionBody))
	}
	lengths := make([]uint32, len(functionBody)/4)
	var total uint32
	for i := range lengths {
		lengths[i] = binary.LittleEndian.Uint32(functionBody[i*4:])
		total += lengths[i]
	}
	if total != uint32(instrCount) {
		return nil, invalidFormat("function lengths sum to %d, code section has %d instructions", total, instrCount)
	}

	dataSegments, err := decodeMemorySegments(bodies[SectionMemory])
	if err != nil {
		return nil, err
	}

	elementSegments, err := decodeElementSegments(bodies[SectionElement])
	if err != nil {
		return nil, err
	}

	return &rwasm.Module{
		Instructions:    instrs,
		FunctionLengths: lengths,
		DataSegments:    dataSegments,
		ElementSegments: elementSegments,
	}, nil
}

// decodeMemorySegments splits a memory section body into the data segments
// encodeMemory framed it from: each segment is a 4-byte little-endian length
// followed by that many bytes.
func decodeMemorySegments(body []byte) ([][]byte, error) {
	var segments [][]byte
	off := 0
	for off < len(body) {
		if off+4 > len(body) {
			return nil, invalidFormat("truncated data segment length")
		}
		n := binary.LittleEndian.Uint32(body[off : off+4])
		off += 4
		if uint64(off)+uint64(n) > uint64(len(body)) {
			return nil, invalidFormat("data segment overruns memory section")
		}
		segments = append(segments, body[off:off+int(n)])
		off += int(n)
	}
	if len(segments) == 0 {
		segments = [][]byte{{}}
	}
	return segments, nil
}

// decodeElementSegments splits an element section body into the element
// segments encodeElement framed it from: each segment is a 4-byte
// little-endian element count followed by that many 4-byte function indices.
func decodeElementSegments(body []byte) ([][]uint32, error) {
	var segments [][]uint32
	off := 0
	for off < len(body) {
		if off+4 > len(body) {
			return nil, invalidFormat("truncated element segment count")
		}
		n := binary.LittleEndian.Uint32(body[off : off+4])
		off += 4
		need := uint64(n) * 4
		if uint64(off)+need > uint64(len(body)) {
			return nil, invalidFormat("element segment overruns element section")
		}
		refs := make([]uint32, n)
		for i := range refs {
			refs[i] = binary.LittleEndian.Uint32(body[off+i*4:])
		}
		segments = append(segments, refs)
		off += int(need)
	}
	if len(segments) == 0 {
		segments = [][]uint32{{}}
	}
	return segments, nil
}
