package lif

import (
	"fmt"
	"sort"
)

// ChannelTag classifies a channel's color role.
type ChannelTag int

const (
	TagGray  ChannelTag = 0
	TagRed   ChannelTag = 1
	TagGreen ChannelTag = 2
	TagBlue  ChannelTag = 3
)

func (t ChannelTag) String() string {
	switch t {
	case TagGray:
		return "gray"
	case TagRed:
		return "red"
	case TagGreen:
		return "green"
	case TagBlue:
		return "blue"
	default:
		return fmt.Sprintf("tag(%d)", int(t))
	}
}

// Channel describes one acquisition channel of an image.
type Channel struct {
	PixelType  PixelType
	Tag        ChannelTag
	Resolution int // significant bits per sample
	Name       string
	Min, Max   float64
	Unit       string
	LUTName    string
	Offset     int64 // byte offset of this channel's first sample in the block
}

// channelAxes derives the channel axes of an image from its channel list.
// A set of gray channels becomes one C axis; a set of red/green/blue
// channels becomes one S axis per gray channel position. All channels must
// share a pixel type; the C or S stride is the distance between adjacent
// channel offsets, which must be uniform.
func channelAxes(channels []Channel) ([]Dimension, error) {
	if len(channels) == 0 {
		return nil, nil
	}
	pixel := channels[0].PixelType
	rgb := false
	for i, c := range channels {
		if c.PixelType != pixel {
			return nil, fmt.Errorf("channel %d pixel type %s differs from %s", i, c.PixelType, pixel)
		}
		if c.Tag != TagGray {
			rgb = true
		}
	}
	if !rgb {
		if len(channels) == 1 {
			return []Dimension{{Axis: AxisChannel, Size: 1, Stride: 0}}, nil
		}
		stride, err := channelStride(channels)
		if err != nil {
			return nil, err
		}
		return []Dimension{{Axis: AxisChannel, Size: len(channels), Stride: stride}}, nil
	}

	// RGB image: samples come in groups of three, possibly repeated as
	// multiple RGB channels. Group by offset order.
	if len(channels)%3 != 0 {
		return nil, fmt.Errorf("%d color channels do not form RGB triples", len(channels))
	}
	for _, c := range channels {
		if c.Tag == TagGray {
			return nil, fmt.Errorf("gray channel mixed into RGB image")
		}
	}
	stride, err := channelStride(channels)
	if err != nil {
		return nil, err
	}
	groups := len(channels) / 3
	dims := []Dimension{{Axis: AxisSample, Size: 3, Stride: stride}}
	if groups > 1 {
		dims = append([]Dimension{{Axis: AxisChannel, Size: groups, Stride: stride * 3}}, dims...)
	}
	return dims, nil
}

// channelStride returns the uniform distance between adjacent channel
// offsets, checking that the spacing really is uniform.
func channelStride(channels []Channel) (int64, error) {
	offsets := make([]int64, len(channels))
	for i, c := range channels {
		offsets[i] = c.Offset
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })
	stride := offsets[1] - offsets[0]
	for i := 2; i < len(offsets); i++ {
		if offsets[i]-offsets[i-1] != stride {
			return 0, fmt.Errorf("channel offsets %v are not uniformly spaced", offsets)
		}
	}
	if stride <= 0 {
		return 0, fmt.Errorf("channel offsets %v are not strictly increasing", offsets)
	}
	return stride, nil
}

// samplePermutation returns, for RGB images, the order in which stored
// sample planes must be taken to present red, green, blue. Samples are
// stored blue first; the permutation is derived from the declared tags so
// unusual orders still come out right. Returns nil when the channels are
// not color-tagged.
func samplePermutation(channels []Channel) []int {
	if len(channels) < 3 {
		return nil
	}
	type tagged struct {
		index int
		tag   ChannelTag
	}
	group := make([]tagged, 0, 3)
	for i, c := range channels[:3] {
		if c.Tag == TagGray {
			return nil
		}
		group = append(group, tagged{i, c.Tag})
	}
	sort.SliceStable(group, func(i, j int) bool { return group[i].tag < group[j].tag })
	perm := make([]int, 3)
	for i, g := range group {
		perm[i] = g.index
	}
	return perm
}
