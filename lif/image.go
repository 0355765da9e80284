package lif

import (
	"fmt"
	"strings"
	"time"
)

// Image is one image catalogued by a container. Metadata is fully resolved
// at open time; pixel data is read on demand through Read.
//
// An image can be listed in the catalog without readable pixel data, for
// example when its memory block is absent or truncated. Such an image
// reports the defect through Err, advertises zero-length dimensions, and
// fails Read with the recorded error.
type Image struct {
	file     *File
	index    int
	name     string
	path     string
	guid     string
	dims     []Dimension // storage order, slowest first
	channels []Channel
	pixel    PixelType
	blockID  string
	memSize  uint64
	pieces   []piece
	tiles    *TileLayout
	stamps   []time.Time
	attrs    map[string]any
	err      error
}

// piece is one contiguous run of pixel storage; ordinary images have one,
// split mosaics one per tile.
type piece struct {
	block int // index into the container block list
}

// Name returns the image's element name.
func (im *Image) Name() string { return im.name }

// Path returns the slash-separated element path from the container root.
func (im *Image) Path() string { return im.path }

// Index returns the image's position in the catalog, counting in document
// order.
func (im *Image) Index() int { return im.index }

// GUID returns the image's unique id, empty when the writer declared none.
func (im *Image) GUID() string { return im.guid }

// Err returns the defect that makes the image unreadable, or nil.
func (im *Image) Err() error { return im.err }

// Dims returns the image's axes in storage order, slowest varying first.
// Axes of size one are dropped unless the file was opened with
// KeepSingletonAxes.
func (im *Image) Dims() []Dimension {
	dims := im.presentedDims()
	out := make([]Dimension, len(dims))
	copy(out, dims)
	return out
}

// Shape returns the per-axis sizes in storage order.
func (im *Image) Shape() []int { return shapeOf(im.presentedDims()) }

// Axes returns the axis identities in storage order.
func (im *Image) Axes() []Axis { return axesOf(im.presentedDims()) }

// PixelType returns the sample type shared by all channels.
func (im *Image) PixelType() PixelType { return im.pixel }

// Channels returns the declared acquisition channels.
func (im *Image) Channels() []Channel {
	out := make([]Channel, len(im.channels))
	copy(out, im.channels)
	return out
}

// Timestamps returns per-frame acquisition times, nil when not declared.
func (im *Image) Timestamps() []time.Time {
	out := make([]time.Time, len(im.stamps))
	copy(out, im.stamps)
	return out
}

// Attrs returns the image's attachment metadata keyed by attachment name.
func (im *Image) Attrs() map[string]any { return im.attrs }

// Tiles returns the mosaic layout, nil for untiled images.
func (im *Image) Tiles() *TileLayout { return im.tiles }

// MemoryBlock returns the declared memory block id.
func (im *Image) MemoryBlock() string { return im.blockID }

// MemorySize returns the declared memory block size in bytes.
func (im *Image) MemorySize() uint64 { return im.memSize }

// NBytes returns the size of the fully materialized image in bytes.
func (im *Image) NBytes() int64 {
	return countElements(im.dims) * int64(im.pixel.Size())
}

func (im *Image) String() string {
	shape := im.Shape()
	parts := make([]string, len(shape))
	axes := im.Axes()
	for i, n := range shape {
		parts[i] = fmt.Sprintf("%s:%d", axes[i], n)
	}
	return fmt.Sprintf("Image(%s %s %s)", im.path, strings.Join(parts, " "), im.pixel)
}

func (im *Image) presentedDims() []Dimension {
	if im.file != nil && im.file.opts.keepSingletons {
		return im.dims
	}
	return squeezeDims(im.dims)
}
