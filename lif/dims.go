package lif

import "sort"

// Axis identifies one degree of freedom of an image. The set mirrors the
// dimension vocabulary of the container; axes with an unrecognized declared
// id map to AxisUnknown and keep their raw id on the Dimension.
type Axis rune

const (
	AxisX          Axis = 'X'
	AxisY          Axis = 'Y'
	AxisZ          Axis = 'Z'
	AxisTime       Axis = 'T'
	AxisChannel    Axis = 'C'
	AxisSample     Axis = 'S' // color samples of one channel (RGB)
	AxisMosaic     Axis = 'M'
	AxisLoop       Axis = 'L'
	AxisRotation   Axis = 'R'
	AxisEmission   Axis = 'λ'
	AxisExcitation Axis = 'Λ'
	AxisUnknown    Axis = 'N'
)

func (a Axis) String() string {
	return string(rune(a))
}

// axisForDimID maps a declared dimension id to its axis kind.
func axisForDimID(id int) Axis {
	switch id {
	case 1:
		return AxisX
	case 2:
		return AxisY
	case 3:
		return AxisZ
	case 4:
		return AxisTime
	case 5:
		return AxisEmission
	case 6:
		return AxisRotation
	case 7:
		return AxisExcitation
	case 9:
		return AxisLoop
	case 10:
		return AxisMosaic
	default:
		return AxisUnknown
	}
}

// Dimension describes one axis of an image's storage layout.
type Dimension struct {
	Axis   Axis
	Size   int
	Stride int64 // bytes between consecutive samples along this axis

	// Physical geometry as declared; zero values when not declared.
	Origin float64 // position of the first sample
	Length float64 // span from first to last sample
	Unit   string

	DimID int // declared dimension id; 0 for synthesized channel/sample axes
}

// orderDims sorts axes slowest to fastest, that is by descending byte
// stride, which is the storage order of a row-major layout. Singleton axes
// without a stride lead the shape; ties keep declared order.
func orderDims(dims []Dimension) []Dimension {
	var lead, rest []Dimension
	for _, d := range dims {
		if d.Size <= 1 && d.Stride == 0 {
			lead = append(lead, d)
		} else {
			rest = append(rest, d)
		}
	}
	sort.SliceStable(rest, func(i, j int) bool {
		return rest[i].Stride > rest[j].Stride
	})
	return append(lead, rest...)
}

// squeezeDims drops axes of size one.
func squeezeDims(dims []Dimension) []Dimension {
	out := make([]Dimension, 0, len(dims))
	for _, d := range dims {
		if d.Size != 1 {
			out = append(out, d)
		}
	}
	return out
}

func shapeOf(dims []Dimension) []int {
	shape := make([]int, len(dims))
	for i, d := range dims {
		shape[i] = d.Size
	}
	return shape
}

func axesOf(dims []Dimension) []Axis {
	axes := make([]Axis, len(dims))
	for i, d := range dims {
		axes[i] = d.Axis
	}
	return axes
}

func countElements(dims []Dimension) int64 {
	n := int64(1)
	for _, d := range dims {
		n *= int64(d.Size)
	}
	return n
}
