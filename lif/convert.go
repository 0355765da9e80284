package lif

import (
	"encoding/binary"
	"fmt"
	"math"
)

// materialize decodes little-endian sample bytes into the typed slice for
// the pixel type. Half floats are widened to float32.
func materialize(raw []byte, pixel PixelType) (any, error) {
	if pixel.Size() == 0 {
		return nil, fmt.Errorf("cannot materialize pixel type %s", pixel)
	}
	n := len(raw) / pixel.Size()
	switch pixel {
	case PixelUint8:
		out := make([]uint8, n)
		copy(out, raw)
		return out, nil
	case PixelUint16:
		out := make([]uint16, n)
		for i := range out {
			out[i] = binary.LittleEndian.Uint16(raw[2*i:])
		}
		return out, nil
	case PixelUint32:
		out := make([]uint32, n)
		for i := range out {
			out[i] = binary.LittleEndian.Uint32(raw[4*i:])
		}
		return out, nil
	case PixelUint64:
		out := make([]uint64, n)
		for i := range out {
			out[i] = binary.LittleEndian.Uint64(raw[8*i:])
		}
		return out, nil
	case PixelFloat16:
		out := make([]float32, n)
		for i := range out {
			out[i] = float16To32(binary.LittleEndian.Uint16(raw[2*i:]))
		}
		return out, nil
	case PixelFloat32:
		out := make([]float32, n)
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
		}
		return out, nil
	case PixelFloat64:
		out := make([]float64, n)
		for i := range out {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[8*i:]))
		}
		return out, nil
	}
	return nil, fmt.Errorf("cannot materialize pixel type %s", pixel)
}

// float16To32 widens an IEEE 754 binary16 bit pattern to float32,
// preserving subnormals, infinities, and NaN payload bits.
func float16To32(bits uint16) float32 {
	sign := uint32(bits>>15) & 1
	exp := uint32(bits>>10) & 0x1f
	frac := uint32(bits) & 0x3ff
	var out uint32
	switch {
	case exp == 0:
		if frac == 0 {
			out = sign << 31 // signed zero
		} else {
			e := uint32(113)
			for frac&0x400 == 0 {
				frac <<= 1
				e--
			}
			out = sign<<31 | e<<23 | (frac&0x3ff)<<13
		}
	case exp == 0x1f:
		out = sign<<31 | 0xff<<23 | frac<<13
	default:
		out = sign<<31 | (exp+112)<<23 | frac<<13
	}
	return math.Float32frombits(out)
}
