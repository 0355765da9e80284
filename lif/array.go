package lif

import "fmt"

// Array holds pixel data materialized by Read. Data is packed row-major in
// the order of Dims, one slice element per sample.
//
// Samples are decoded into the matching Go type. Half-precision floats have
// no Go counterpart and are widened to float32; PixelType still reports
// PixelFloat16 for them.
type Array struct {
	pixel PixelType
	dims  []Dimension
	data  any
}

// PixelType returns the stored sample type.
func (a *Array) PixelType() PixelType { return a.pixel }

// Dims returns the array's axes. Strides are packed, counted in bytes of
// the materialized representation.
func (a *Array) Dims() []Dimension {
	out := make([]Dimension, len(a.dims))
	copy(out, a.dims)
	return out
}

// Shape returns the per-axis sizes.
func (a *Array) Shape() []int { return shapeOf(a.dims) }

// Axes returns the axis identities.
func (a *Array) Axes() []Axis { return axesOf(a.dims) }

// Len returns the number of samples.
func (a *Array) Len() int {
	return int(countElements(a.dims))
}

// Data returns the backing slice: []uint8, []uint16, []uint32, []uint64,
// []float32, or []float64 depending on the pixel type.
func (a *Array) Data() any { return a.data }

// Uint8s returns the backing slice of a PixelUint8 array.
func (a *Array) Uint8s() ([]uint8, bool) {
	v, ok := a.data.([]uint8)
	return v, ok
}

// Uint16s returns the backing slice of a PixelUint16 array.
func (a *Array) Uint16s() ([]uint16, bool) {
	v, ok := a.data.([]uint16)
	return v, ok
}

// Uint32s returns the backing slice of a PixelUint32 array.
func (a *Array) Uint32s() ([]uint32, bool) {
	v, ok := a.data.([]uint32)
	return v, ok
}

// Uint64s returns the backing slice of a PixelUint64 array.
func (a *Array) Uint64s() ([]uint64, bool) {
	v, ok := a.data.([]uint64)
	return v, ok
}

// Float32s returns the backing slice of a PixelFloat32 or PixelFloat16
// array.
func (a *Array) Float32s() ([]float32, bool) {
	v, ok := a.data.([]float32)
	return v, ok
}

// Float64s returns the samples widened to float64, converting whatever the
// backing type is.
func (a *Array) Float64s() []float64 {
	out := make([]float64, a.Len())
	switch v := a.data.(type) {
	case []uint8:
		for i, x := range v {
			out[i] = float64(x)
		}
	case []uint16:
		for i, x := range v {
			out[i] = float64(x)
		}
	case []uint32:
		for i, x := range v {
			out[i] = float64(x)
		}
	case []uint64:
		for i, x := range v {
			out[i] = float64(x)
		}
	case []float32:
		for i, x := range v {
			out[i] = float64(x)
		}
	case []float64:
		copy(out, v)
	}
	return out
}

// Value returns the sample at the given per-axis indices as a float64.
func (a *Array) Value(idx ...int) (float64, error) {
	if len(idx) != len(a.dims) {
		return 0, fmt.Errorf("got %d indices for %d axes", len(idx), len(a.dims))
	}
	flat := 0
	for i, d := range a.dims {
		if idx[i] < 0 || idx[i] >= d.Size {
			return 0, &IndexError{Axis: d.Axis, Start: idx[i], Count: 1, Size: d.Size}
		}
		flat = flat*d.Size + idx[i]
	}
	switch v := a.data.(type) {
	case []uint8:
		return float64(v[flat]), nil
	case []uint16:
		return float64(v[flat]), nil
	case []uint32:
		return float64(v[flat]), nil
	case []uint64:
		return float64(v[flat]), nil
	case []float32:
		return float64(v[flat]), nil
	case []float64:
		return v[flat], nil
	}
	return 0, fmt.Errorf("unsupported backing type %T", a.data)
}
