package lif

import (
	"fmt"
	"io"
)

// Read materializes the image's pixel data, or the hyperrectangle selected
// with WithRange, into a packed Array. Axes follow the image's reported
// dimension order; ranges are validated per axis before any data is read.
//
// Read issues positioned reads against the file's source and is safe for
// concurrent use, including concurrent reads of different images from the
// same file.
func (im *Image) Read(opts ...ReadOption) (*Array, error) {
	var o readOptions
	for _, opt := range opts {
		opt(&o)
	}
	if im.file == nil || im.file.closed {
		return nil, ErrClosed
	}
	if im.err != nil {
		return nil, im.err
	}

	presented := im.presentedDims()
	start, count := o.start, o.count
	if start == nil && count == nil {
		start = make([]int, len(presented))
		count = shapeOf(presented)
	}
	if len(start) != len(presented) || len(count) != len(presented) {
		return nil, fmt.Errorf("range has %d/%d axes, image has %d",
			len(start), len(count), len(presented))
	}
	for i, d := range presented {
		if start[i] < 0 || count[i] < 0 || start[i]+count[i] > d.Size {
			return nil, &IndexError{Axis: d.Axis, Start: start[i], Count: count[i], Size: d.Size}
		}
	}

	// Expand the selection over the full storage axes; squeezed singleton
	// axes read their only element.
	full := im.dims
	squeezed := !im.file.opts.keepSingletons
	fs := make([]int, len(full))
	fc := make([]int, len(full))
	j := 0
	for i, d := range full {
		if squeezed && d.Size == 1 {
			fs[i], fc[i] = 0, 1
			continue
		}
		fs[i], fc[i] = start[j], count[j]
		j++
	}

	pix := im.pixel.Size()
	total := 1
	for _, c := range fc {
		total *= c
	}
	raw := make([]byte, total*pix)

	if len(raw) > 0 {
		if err := im.gatherPieces(full, fs, fc, raw, pix); err != nil {
			return nil, err
		}
	}

	if o.rgbOrder {
		if err := im.reorderSamples(raw, presented, count, pix); err != nil {
			return nil, err
		}
	}

	data, err := materialize(raw, im.pixel)
	if err != nil {
		return nil, err
	}
	return &Array{
		pixel: im.pixel,
		dims:  resultDims(presented, count, im.pixel),
		data:  data,
	}, nil
}

// gatherPieces routes the selection to the image's pieces. Split mosaics
// store one tile per piece along the leading mosaic axis; everything else
// is a single piece.
func (im *Image) gatherPieces(dims []Dimension, start, count []int, dst []byte, pix int) error {
	base := minChannelOffset(im.channels)
	if im.tiles.split() {
		inner := pix
		for _, c := range count[1:] {
			inner *= c
		}
		for i := 0; i < count[0]; i++ {
			p := im.pieces[start[0]+i]
			b := im.file.index.Blocks[p.block]
			err := gatherSlab(im.file.src, b.PayloadOffset+base,
				dims[1:], start[1:], count[1:], dst[i*inner:(i+1)*inner], pix)
			if err != nil {
				return err
			}
		}
		return nil
	}
	b := im.file.index.Blocks[im.pieces[0].block]
	return gatherSlab(im.file.src, b.PayloadOffset+base, dims, start, count, dst, pix)
}

// gatherSlab copies one hyperrectangle from the source into dst, packed
// row-major, descending one axis per call. The innermost axis is read as a
// single run when its samples are adjacent in storage.
func gatherSlab(src io.ReaderAt, base int64, dims []Dimension, start, count []int, dst []byte, pix int) error {
	if len(dims) == 0 {
		return readFull(src, dst[:pix], base)
	}
	d := dims[0]
	if len(dims) == 1 && d.Stride == int64(pix) {
		off := base + int64(start[0])*d.Stride
		return readFull(src, dst[:count[0]*pix], off)
	}
	inner := pix
	for _, c := range count[1:] {
		inner *= c
	}
	for i := 0; i < count[0]; i++ {
		off := base + int64(start[0]+i)*d.Stride
		if err := gatherSlab(src, off, dims[1:], start[1:], count[1:],
			dst[i*inner:(i+1)*inner], pix); err != nil {
			return err
		}
	}
	return nil
}

// readFull reads exactly len(p) bytes at off, tolerating EOF on a complete
// read.
func readFull(src io.ReaderAt, p []byte, off int64) error {
	n, err := src.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("reading pixel data at offset %d: %w", off, err)
}

// reorderSamples permutes the sample axis of the packed selection so color
// samples run red, green, blue. Needs the full sample axis in the
// selection.
func (im *Image) reorderSamples(raw []byte, presented []Dimension, count []int, pix int) error {
	axis := -1
	for i, d := range presented {
		if d.Axis == AxisSample {
			axis = i
			break
		}
	}
	if axis < 0 {
		return nil
	}
	perm := samplePermutation(im.channels)
	if perm == nil {
		return nil
	}
	if count[axis] != len(perm) {
		return fmt.Errorf("RGB reordering needs the full sample axis, got %d of %d",
			count[axis], len(perm))
	}
	identity := true
	for i, p := range perm {
		if i != p {
			identity = false
		}
	}
	if identity {
		return nil
	}

	inner := pix
	for _, c := range count[axis+1:] {
		inner *= c
	}
	outer := 1
	for _, c := range count[:axis] {
		outer *= c
	}
	group := inner * len(perm)
	tmp := make([]byte, group)
	for o := 0; o < outer; o++ {
		block := raw[o*group : (o+1)*group]
		for s, p := range perm {
			copy(tmp[s*inner:(s+1)*inner], block[p*inner:(p+1)*inner])
		}
		copy(block, tmp)
	}
	return nil
}

// resultDims shapes the output: selected sizes with packed byte strides in
// the materialized representation.
func resultDims(presented []Dimension, count []int, pixel PixelType) []Dimension {
	elem := pixel.Size()
	if pixel == PixelFloat16 {
		elem = 4 // widened to float32
	}
	dims := make([]Dimension, len(presented))
	stride := int64(elem)
	for i := len(presented) - 1; i >= 0; i-- {
		d := presented[i]
		d.Size = count[i]
		d.Stride = stride
		dims[i] = d
		stride *= int64(count[i])
	}
	return dims
}

func minChannelOffset(channels []Channel) int64 {
	if len(channels) == 0 {
		return 0
	}
	min := channels[0].Offset
	for _, c := range channels[1:] {
		if c.Offset < min {
			min = c.Offset
		}
	}
	return min
}
