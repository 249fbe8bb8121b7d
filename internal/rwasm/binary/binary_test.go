package binary

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fluentlabs-xyz/rwasm/internal/rwasm"
)

func sample() *rwasm.Module {
	return &rwasm.Module{
		Instructions: []rwasm.Instruction{
			rwasm.I32(rwasm.OpI32Const, 100),
			rwasm.I32(rwasm.OpI32Const, 20),
			{Op: rwasm.OpI32Add},
			{Op: rwasm.OpReturn},
		},
		FunctionLengths: []uint32{4},
		DataSegments:    [][]byte{{}},
		ElementSegments: [][]uint32{{}},
	}
}

// multiSegmentSample builds a module with several data and element segments,
// each a different length, mirroring what the translator produces for a
// source module declaring more than one of either (translator.go's
// sentinel-at-index-0 convention).
func multiSegmentSample() *rwasm.Module {
	m := sample()
	m.DataSegments = [][]byte{
		{},
		{0x01, 0x02, 0x03},
		{},
		{0xff},
		{0x10, 0x20, 0x30, 0x40, 0x50},
	}
	m.ElementSegments = [][]uint32{
		{},
		{7, 8, 9},
		{},
		{42},
	}
	return m
}

func TestRoundTrip(t *testing.T) {
	m := sample()
	encoded := Encode(m)
	decoded, err := Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, m.Instructions, decoded.Instructions)
	require.Equal(t, m.FunctionLengths, decoded.FunctionLengths)
	require.Equal(t, m.DataSegments, decoded.DataSegments)
	require.Equal(t, m.ElementSegments, decoded.ElementSegments)
}

func TestRoundTripMultipleSegments(t *testing.T) {
	m := multiSegmentSample()
	encoded := Encode(m)
	decoded, err := Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, m.DataSegments, decoded.DataSegments)
	require.Equal(t, m.ElementSegments, decoded.ElementSegments)
}

func TestInstructionAlignment(t *testing.T) {
	m := sample()
	encoded := Encode(m)
	// Header: 3 magic/version bytes + 4*(1+4) TOC entries + 1 end marker.
	headerLen := 3 + 4*5 + 1
	codeLen := len(encoded) - headerLen - len(encodeMemory(m.DataSegments)) - len(encodeFunction(m.FunctionLengths)) - len(encodeElement(m.ElementSegments))
	require.Equal(t, rwasm.InstructionSize*len(m.Instructions), codeLen)
}

func TestDeterminism(t *testing.T) {
	m := sample()
	require.Equal(t, Encode(m), Encode(m))
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	_, err := Decode([]byte{0x00, 0x00, 0x01})
	require.Error(t, err)
	var fmtErr *InvalidFormatError
	require.ErrorAs(t, err, &fmtErr)
}

func TestDecodeRejectsUnknownSection(t *testing.T) {
	b := []byte{Magic[0], Magic[1], Version, 0x09, 0, 0, 0, 0, headerEnd}
	_, err := Decode(b)
	require.Error(t, err)
}

func TestDecodeRejectsTruncation(t *testing.T) {
	m := sample()
	encoded := Encode(m)
	_, err := Decode(encoded[:len(encoded)-1])
	require.Error(t, err)
}

func TestFunctionLengthConsistency(t *testing.T) {
	m := sample()
	var total uint32
	for _, l := range m.FunctionLengths {
		total += l
	}
	require.Equal(t, m.TotalInstructions(), total)
}
