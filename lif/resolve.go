package lif

import (
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/lifio/lif/internal/binary"
	"github.com/lifio/lif/internal/container"
	"github.com/lifio/lif/xmlmeta"
)

// document is one decoded metadata block.
type document struct {
	block int // index into the container block list
	text  string
	root  *xmlmeta.Node
}

// decodeMetadata parses every metadata block into a document. A block that
// fails to decode is recorded as a MetadataError and skipped; documents
// from other blocks are unaffected.
func (f *File) decodeMetadata() {
	for i, b := range f.index.Blocks {
		if b.Kind != container.KindMetadata || !b.Valid {
			continue
		}
		if f.index.LOF && i == 0 {
			// Single-object marker, not XML.
			continue
		}
		payload, err := binary.NewReader(f.src).At(b.PayloadOffset).ReadBytes(int(b.PayloadLength))
		if err != nil {
			f.recordMetaErr(i, fmt.Errorf("reading metadata payload: %w", err))
			continue
		}
		root, err := xmlmeta.Parse(payload)
		if err != nil {
			f.recordMetaErr(i, err)
			continue
		}
		text, err := binary.DecodeUTF16(payload)
		if err != nil {
			f.recordMetaErr(i, err)
			continue
		}
		f.docs = append(f.docs, document{block: i, text: text, root: root})
	}
}

func (f *File) recordMetaErr(block int, err error) {
	f.metaErrs = append(f.metaErrs, &MetadataError{Block: block, Err: err})
	logger.Warn("skipping undecodable metadata block",
		zap.Int("block", block),
		zap.Error(err))
}

// indexPixelBlocks maps memory block ids to container block indices. The
// first block wins when an id repeats.
func (f *File) indexPixelBlocks() {
	f.blocks = make(map[string]int)
	for i, b := range f.index.Blocks {
		if b.Kind != container.KindPixel || b.ID == "" {
			continue
		}
		if prev, ok := f.blocks[b.ID]; ok {
			logger.Warn("duplicate memory block id",
				zap.String("id", b.ID),
				zap.Int("kept", prev),
				zap.Int("ignored", i))
			continue
		}
		f.blocks[b.ID] = i
	}
}

// buildCatalog resolves the decoded documents into the collection tree and
// the flat image list. The first document supplies the container name and
// version.
func (f *File) buildCatalog() {
	f.claimed = make(map[string]string)
	var roots []*Collection
	for _, doc := range f.docs {
		root := doc.root
		if root.Tag != "LMSDataContainerHeader" {
			f.recordMetaErr(doc.block, fmt.Errorf("unexpected root element %q", root.Tag))
			continue
		}
		if f.version == 0 {
			f.version = intAttr(root, "Version")
		}
		elem := root.Child("Element")
		if elem == nil {
			f.recordMetaErr(doc.block, errors.New("no XML image element found"))
			continue
		}
		if f.name == "" {
			if n, ok := elem.Attr("Name"); ok {
				f.name = n
			}
		}
		roots = append(roots, f.resolveElement(elem, ""))
	}
	switch len(roots) {
	case 0:
		f.root = &Collection{}
	case 1:
		f.root = roots[0]
	default:
		f.root = &Collection{name: f.name, collections: roots}
	}
}

// resolveElement maps one metadata element and its descendants onto a
// Collection, registering the images along the way. Child elements that
// carry an image and nothing else stay images of this collection; child
// elements with their own children become sub-collections.
func (f *File) resolveElement(elem *xmlmeta.Node, parent string) *Collection {
	name, _ := elem.Attr("Name")
	path := joinPath(parent, name)
	c := &Collection{name: name, path: path}
	if img := elem.Get("Data", "Image"); img != nil {
		im := f.resolveImage(elem, img, name, path)
		c.images = append(c.images, im)
		f.images = append(f.images, im)
	}
	ch := elem.Child("Children")
	if ch == nil {
		return c
	}
	for _, sub := range ch.Children {
		if sub.Tag != "Element" {
			continue
		}
		if img := sub.Get("Data", "Image"); img != nil && sub.Child("Children") == nil {
			subName, _ := sub.Attr("Name")
			im := f.resolveImage(sub, img, subName, joinPath(path, subName))
			c.images = append(c.images, im)
			f.images = append(f.images, im)
			continue
		}
		c.collections = append(c.collections, f.resolveElement(sub, path))
	}
	return c
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

// resolveImage builds an Image from its metadata element. Resolution never
// fails the open; a defect is recorded on the image, its dimension sizes
// are zeroed, and reading it returns the recorded error.
func (f *File) resolveImage(elem, img *xmlmeta.Node, name, path string) *Image {
	im := &Image{
		file:  f,
		index: len(f.images),
		name:  name,
		path:  path,
	}
	if id, ok := elem.Attr("UniqueID"); ok {
		im.guid = id
	}

	desc := img.Child("ImageDescription")
	if desc == nil {
		im.fail(&MetadataError{Block: -1, ID: path, Err: errors.New("no image description")})
		return im
	}

	spatial, err := parseDimensions(desc)
	if err != nil {
		im.fail(&MetadataError{Block: -1, ID: path, Err: err})
		return im
	}
	im.channels, err = parseChannels(desc)
	if err != nil {
		im.fail(&MetadataError{Block: -1, ID: path, Err: err})
		return im
	}
	im.pixel = im.channels[0].PixelType
	chDims, err := channelAxes(im.channels)
	if err != nil {
		im.fail(&MetadataError{Block: -1, ID: path, Err: err})
		return im
	}
	im.dims = orderDims(append(spatial, chDims...))

	im.tiles = parseTiles(elem)
	im.stamps = parseTimestamps(elem)
	im.attrs = attachmentAttrs(elem)

	mem := elem.Child("Memory")
	if mem == nil {
		im.fail(&MissingDataError{Path: path, Reason: "no memory block declared"})
		return im
	}
	im.blockID, _ = mem.Attr("MemoryBlockID")
	im.memSize = uint64(int64Attr(mem, "Size"))
	if im.blockID == "" {
		im.fail(&MissingDataError{Path: path, Reason: "no memory block declared"})
		return im
	}

	if im.tiles.split() {
		if err := f.resolveTilePieces(im); err != nil {
			im.fail(err)
			return im
		}
	} else {
		p, err := f.resolvePiece(im, im.blockID, pieceSpan(im.dims, im.pixel))
		if err != nil {
			im.fail(err)
			return im
		}
		im.pieces = p
	}
	return im
}

// resolveTilePieces binds each tile of a split mosaic to its own pixel
// block and synthesizes the mosaic axis, outermost by construction.
func (f *File) resolveTilePieces(im *Image) error {
	span := pieceSpan(im.dims, im.pixel)
	for _, t := range im.tiles.Tiles {
		p, err := f.resolvePiece(im, t.BlockID, span)
		if err != nil {
			return err
		}
		im.pieces = append(im.pieces, p[0])
	}
	mosaic := Dimension{
		Axis:   AxisMosaic,
		Size:   len(im.tiles.Tiles),
		Stride: span,
		DimID:  10,
	}
	im.dims = append([]Dimension{mosaic}, im.dims...)
	return nil
}

// resolvePiece validates one memory block claim and returns its piece.
func (f *File) resolvePiece(im *Image, blockID string, span int64) ([]piece, error) {
	if owner, ok := f.claimed[blockID]; ok {
		return nil, &MetadataError{
			Block: -1,
			ID:    blockID,
			Err:   fmt.Errorf("memory block already claimed by %s", owner),
		}
	}
	f.claimed[blockID] = im.path
	bi, ok := f.blocks[blockID]
	if !ok {
		return nil, &MissingDataError{
			Path:    im.path,
			BlockID: blockID,
			Reason:  "memory block not present in container",
		}
	}
	b := f.index.Blocks[bi]
	if !b.Valid {
		return nil, &MissingDataError{Path: im.path, BlockID: blockID, Reason: b.Reason}
	}
	if b.PayloadLength < span {
		return nil, &MissingDataError{
			Path:    im.path,
			BlockID: blockID,
			Reason: fmt.Sprintf("memory block holds %d bytes, layout needs %d",
				b.PayloadLength, span),
		}
	}
	return []piece{{block: bi}}, nil
}

// pieceSpan is the number of bytes one piece's layout reaches into its
// block, zero when any axis is empty.
func pieceSpan(dims []Dimension, pixel PixelType) int64 {
	span := int64(pixel.Size())
	for _, d := range dims {
		if d.Size == 0 {
			return 0
		}
		span += int64(d.Size-1) * d.Stride
	}
	return span
}

// fail records the image's defect and zeroes its dimension sizes so the
// shape advertises that no data is addressable.
func (im *Image) fail(err error) {
	im.err = err
	for i := range im.dims {
		im.dims[i].Size = 0
		im.dims[i].Stride = 0
	}
	im.pieces = nil
	logger.Warn("image has no readable pixel data",
		zap.String("path", im.path),
		zap.Error(err))
}

// parseDimensions reads the declared storage dimensions of an image.
func parseDimensions(desc *xmlmeta.Node) ([]Dimension, error) {
	dimsNode := desc.Child("Dimensions")
	if dimsNode == nil {
		return nil, nil
	}
	var dims []Dimension
	for _, dn := range dimsNode.FindAll("DimensionDescription") {
		if bits := intAttr(dn, "BitInc"); bits%8 != 0 {
			return nil, fmt.Errorf("bit-packed samples (BitInc=%d) not supported", bits)
		}
		id := intAttr(dn, "DimID")
		dims = append(dims, Dimension{
			Axis:   axisForDimID(id),
			Size:   intAttr(dn, "NumberOfElements"),
			Stride: int64Attr(dn, "BytesInc"),
			Origin: floatAttr(dn, "Origin"),
			Length: floatAttr(dn, "Length"),
			Unit:   strAttr(dn, "Unit"),
			DimID:  id,
		})
	}
	return dims, nil
}

// parseChannels reads the declared channels of an image.
func parseChannels(desc *xmlmeta.Node) ([]Channel, error) {
	chNode := desc.Child("Channels")
	if chNode == nil {
		return nil, errors.New("no channel descriptions")
	}
	var channels []Channel
	for _, cn := range chNode.FindAll("ChannelDescription") {
		pixel, err := pixelTypeFor(intAttr(cn, "DataType"), intAttr(cn, "Resolution"))
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", len(channels), err)
		}
		channels = append(channels, Channel{
			PixelType:  pixel,
			Tag:        ChannelTag(intAttr(cn, "ChannelTag")),
			Resolution: intAttr(cn, "Resolution"),
			Name:       strAttr(cn, "NameOfMeasuredQuantity"),
			Min:        floatAttr(cn, "Min"),
			Max:        floatAttr(cn, "Max"),
			Unit:       strAttr(cn, "Unit"),
			LUTName:    strAttr(cn, "LUTName"),
			Offset:     int64Attr(cn, "BytesInc"),
		})
	}
	if len(channels) == 0 {
		return nil, errors.New("no channel descriptions")
	}
	return channels, nil
}

func strAttr(n *xmlmeta.Node, name string) string {
	s, _ := n.Attr(name)
	return s
}

func int64Attr(n *xmlmeta.Node, name string) int64 {
	s, ok := n.Attr(name)
	if !ok {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
