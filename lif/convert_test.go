package lif

import (
	"math"
	"testing"
)

func TestFloat16To32(t *testing.T) {
	cases := []struct {
		bits uint16
		want float32
	}{
		{0x0000, 0},
		{0x3C00, 1},
		{0xC000, -2},
		{0x3800, 0.5},
		{0x4170, 2.71875},
		{0x7BFF, 65504},              // largest finite half
		{0x0001, 1.0 / (1 << 24)},    // smallest subnormal
		{0x03FF, 1023.0 / (1 << 24)}, // largest subnormal
	}
	for _, tc := range cases {
		if got := float16To32(tc.bits); got != tc.want {
			t.Errorf("float16To32(%#04x) = %v, want %v", tc.bits, got, tc.want)
		}
	}

	if got := float16To32(0x8000); got != 0 || !math.Signbit(float64(got)) {
		t.Errorf("float16To32(0x8000) = %v, want negative zero", got)
	}
	if got := float16To32(0x7C00); !math.IsInf(float64(got), 1) {
		t.Errorf("float16To32(0x7C00) = %v, want +Inf", got)
	}
	if got := float16To32(0xFC00); !math.IsInf(float64(got), -1) {
		t.Errorf("float16To32(0xFC00) = %v, want -Inf", got)
	}
	if got := float16To32(0x7E00); !math.IsNaN(float64(got)) {
		t.Errorf("float16To32(0x7E00) = %v, want NaN", got)
	}
}

func TestMaterializeRejectsUnknown(t *testing.T) {
	if _, err := materialize([]byte{1, 2}, PixelUnknown); err == nil {
		t.Error("materialize accepted an unknown pixel type")
	}
}
