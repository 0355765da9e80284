package lif

import "gonum.org/v1/gonum/floats"

// Coords returns the physical sample positions along an axis, evenly spaced
// from the declared origin over the declared length. Axes without declared
// geometry yield positions in sample counts. Returns nil when the image has
// no such axis.
func (im *Image) Coords(axis Axis) []float64 {
	for _, d := range im.dims {
		if d.Axis != axis {
			continue
		}
		switch d.Size {
		case 0:
			return nil
		case 1:
			return []float64{d.Origin}
		}
		dst := make([]float64, d.Size)
		if d.Length == 0 {
			floats.Span(dst, 0, float64(d.Size-1))
			return dst
		}
		floats.Span(dst, d.Origin, d.Origin+d.Length)
		return dst
	}
	return nil
}
