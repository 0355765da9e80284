package lif

import "fmt"

// PixelType identifies the storage type of one sample. The container is
// little-endian throughout; the type is declared per channel and applied
// when pixel bytes are materialized.
type PixelType uint8

const (
	PixelUnknown PixelType = iota
	PixelUint8
	PixelUint16
	PixelUint32
	PixelUint64
	PixelFloat16
	PixelFloat32
	PixelFloat64
)

// Size returns the sample width in bytes.
func (p PixelType) Size() int {
	switch p {
	case PixelUint8:
		return 1
	case PixelUint16, PixelFloat16:
		return 2
	case PixelUint32, PixelFloat32:
		return 4
	case PixelUint64, PixelFloat64:
		return 8
	default:
		return 0
	}
}

// Bits returns the sample width in bits.
func (p PixelType) Bits() int {
	return p.Size() * 8
}

// Float reports whether the samples are floating point.
func (p PixelType) Float() bool {
	switch p {
	case PixelFloat16, PixelFloat32, PixelFloat64:
		return true
	default:
		return false
	}
}

func (p PixelType) String() string {
	switch p {
	case PixelUint8:
		return "uint8"
	case PixelUint16:
		return "uint16"
	case PixelUint32:
		return "uint32"
	case PixelUint64:
		return "uint64"
	case PixelFloat16:
		return "float16"
	case PixelFloat32:
		return "float32"
	case PixelFloat64:
		return "float64"
	default:
		return "unknown"
	}
}

// pixelTypeFor maps a channel's declared DataType (0 unsigned integer,
// 1 float) and Resolution in significant bits to a storage type. Samples
// narrower than their storage width (12-bit counts in uint16, for example)
// keep the declared resolution on the channel.
func pixelTypeFor(dataType, resolution int) (PixelType, error) {
	if resolution <= 0 {
		resolution = 8
	}
	bytes := (resolution + 7) / 8
	switch {
	case bytes <= 1:
		bytes = 1
	case bytes <= 2:
		bytes = 2
	case bytes <= 4:
		bytes = 4
	case bytes <= 8:
		bytes = 8
	default:
		return PixelUnknown, fmt.Errorf("unsupported channel resolution %d", resolution)
	}

	switch dataType {
	case 0:
		switch bytes {
		case 1:
			return PixelUint8, nil
		case 2:
			return PixelUint16, nil
		case 4:
			return PixelUint32, nil
		default:
			return PixelUint64, nil
		}
	case 1:
		switch bytes {
		case 1, 2:
			return PixelFloat16, nil
		case 4:
			return PixelFloat32, nil
		default:
			return PixelFloat64, nil
		}
	default:
		return PixelUnknown, fmt.Errorf("unsupported channel data type %d", dataType)
	}
}
