package api

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValueTypeName(t *testing.T) {
	tests := []struct {
		name     string
		input    ValueType
		expected string
	}{
		{"i32", ValueTypeI32, "i32"},
		{"i64", ValueTypeI64, "i64"},
		{"f32", ValueTypeF32, "f32"},
		{"f64", ValueTypeF64, "f64"},
		{"funcref", ValueTypeFuncref, "funcref"},
		{"unknown", 0x00, "unknown"},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, ValueTypeName(tc.input))
		})
	}
}

func TestEncodeDecodeF32(t *testing.T) {
	for _, v := range []float32{0, 1.5, -1.5, float32(math.NaN()), float32(math.Inf(1))} {
		got := DecodeF32(EncodeF32(v))
		if math.IsNaN(float64(v)) {
			require.True(t, math.IsNaN(float64(got)))
			continue
		}
		require.Equal(t, v, got)
	}
}

func TestEncodeDecodeF64(t *testing.T) {
	for _, v := range []float64{0, 1.5, -1.5, math.NaN(), math.Inf(-1)} {
		got := DecodeF64(EncodeF64(v))
		if math.IsNaN(v) {
			require.True(t, math.IsNaN(got))
			continue
		}
		require.Equal(t, v, got)
	}
}

func TestEncodeI32I64(t *testing.T) {
	require.Equal(t, uint64(0xFFFFFFFF), EncodeI32(-1))
	require.Equal(t, uint64(0xFFFFFFFFFFFFFFFF), EncodeI64(-1))
}
