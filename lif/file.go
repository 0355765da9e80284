package lif

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"go.uber.org/zap"
	"golang.org/x/exp/mmap"

	"github.com/lifio/lif/internal/container"
	"github.com/lifio/lif/xmlmeta"
)

// File is an open container. The catalog of collections and images is
// resolved once at open time; pixel data stays on the source until an
// image is read.
//
// A File is safe for concurrent reads. Close must not overlap with reads.
type File struct {
	src    io.ReaderAt
	size   int64
	closer io.Closer
	path   string
	opts   openOptions
	closed bool

	index    *container.Index
	docs     []document
	metaErrs []error
	blocks   map[string]int    // pixel block id to container block index
	claimed  map[string]string // pixel block id to claiming image path

	version int
	name    string
	root    *Collection
	images  []*Image
}

// Open reads a container from src, which must cover size bytes. The source
// is left open; the caller keeps ownership.
func Open(src io.ReaderAt, size int64, opts ...Option) (*File, error) {
	var o openOptions
	for _, opt := range opts {
		opt(&o)
	}
	f := &File{src: src, size: size, opts: o}
	if err := f.load(); err != nil {
		return nil, err
	}
	return f, nil
}

// OpenFile opens a container from the filesystem. With WithMemoryMapping
// the file is mapped instead of read through the descriptor.
func OpenFile(path string, opts ...Option) (*File, error) {
	var o openOptions
	for _, opt := range opts {
		opt(&o)
	}
	f := &File{path: path, opts: o}
	if o.mmap {
		r, err := mmap.Open(path)
		if err != nil {
			return nil, fmt.Errorf("mapping %s: %w", path, err)
		}
		f.src, f.size, f.closer = r, int64(r.Len()), r
	} else {
		fd, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		st, err := fd.Stat()
		if err != nil {
			fd.Close()
			return nil, err
		}
		f.src, f.size, f.closer = fd, st.Size(), fd
	}
	if err := f.load(); err != nil {
		f.closer.Close()
		return nil, err
	}
	return f, nil
}

func (f *File) load() error {
	idx, err := container.Scan(f.src, f.size)
	if err != nil {
		return &FormatError{Path: f.path, Err: err}
	}
	f.index = idx
	logger.Debug("scanned container",
		zap.Int("blocks", len(idx.Blocks)),
		zap.Bool("lof", idx.LOF))
	for i, b := range idx.Blocks {
		if !b.Valid {
			logger.Warn("unusable container block",
				zap.Int("block", i),
				zap.Stringer("kind", b.Kind),
				zap.String("reason", b.Reason))
		}
	}
	f.decodeMetadata()
	f.indexPixelBlocks()
	f.buildCatalog()
	return nil
}

// Close releases the source if this File opened it. Sources passed to Open
// are the caller's to close.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	if f.closer != nil {
		return f.closer.Close()
	}
	return nil
}

// Name returns the container's declared project name.
func (f *File) Name() string { return f.name }

// Path returns the filesystem path, empty for sources opened with Open.
func (f *File) Path() string { return f.path }

// Version returns the container format version declared by the metadata,
// zero when no metadata could be decoded.
func (f *File) Version() int { return f.version }

// IsLOF reports whether the container is a single-object file.
func (f *File) IsLOF() bool { return f.index.LOF }

// Size returns the container size in bytes.
func (f *File) Size() int64 { return f.size }

// Root returns the top of the collection tree.
func (f *File) Root() *Collection { return f.root }

// Images returns every catalogued image in document order, including
// images without readable pixel data.
func (f *File) Images() []*Image {
	out := make([]*Image, len(f.images))
	copy(out, f.images)
	return out
}

// Image returns the i'th catalogued image.
func (f *File) Image(i int) (*Image, error) {
	if i < 0 || i >= len(f.images) {
		return nil, fmt.Errorf("image %d out of range, file has %d", i, len(f.images))
	}
	return f.images[i], nil
}

// FindImages returns the images whose path matches the regular expression,
// in document order.
func (f *File) FindImages(pattern string) ([]*Image, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	var out []*Image
	for _, im := range f.images {
		if re.MatchString(im.path) {
			out = append(out, im)
		}
	}
	return out, nil
}

// lookupImage resolves an image by exact path, falling back to a unique
// name match.
func (f *File) lookupImage(key string) (*Image, error) {
	for _, im := range f.images {
		if im.path == key {
			return im, nil
		}
	}
	var found *Image
	for _, im := range f.images {
		if im.name != key {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("image name %q is ambiguous", key)
		}
		found = im
	}
	if found == nil {
		return nil, fmt.Errorf("no image %q", key)
	}
	return found, nil
}

// Metadata returns the root node of the primary metadata document, nil
// when no metadata block could be decoded.
func (f *File) Metadata() *xmlmeta.Node {
	if len(f.docs) == 0 {
		return nil
	}
	return f.docs[0].root
}

// XMLHeader returns the primary metadata document as text.
func (f *File) XMLHeader() string {
	if len(f.docs) == 0 {
		return ""
	}
	return f.docs[0].text
}

// BlockMetadata returns the root node of the i'th decoded metadata document
// in file order. Document 0 is the primary document: the catalog header of a
// LIF file, or the XML trailer of a LOF file.
func (f *File) BlockMetadata(i int) (*xmlmeta.Node, error) {
	if i < 0 || i >= len(f.docs) {
		return nil, fmt.Errorf("metadata document %d out of range, file has %d", i, len(f.docs))
	}
	return f.docs[i].root, nil
}

// MetadataErrors returns the defects recorded while decoding metadata
// blocks. A defective block never fails the open; its images are simply
// absent from the catalog.
func (f *File) MetadataErrors() []error {
	out := make([]error, len(f.metaErrs))
	copy(out, f.metaErrs)
	return out
}

// CreatedAt returns the earliest frame timestamp across all images, the
// zero time when none are declared.
func (f *File) CreatedAt() time.Time {
	var earliest time.Time
	for _, im := range f.images {
		for _, t := range im.stamps {
			if earliest.IsZero() || t.Before(earliest) {
				earliest = t
			}
		}
	}
	return earliest
}

// ReadImage opens the container at path, reads the image identified by its
// catalog path or unique name, and closes the file again.
func ReadImage(path, image string, opts ...ReadOption) (*Array, error) {
	f, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	im, err := f.lookupImage(image)
	if err != nil {
		return nil, err
	}
	return im.Read(opts...)
}
