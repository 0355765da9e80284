// Package liftest assembles synthetic LIF and LOF containers for tests.
//
// Builders delegate to the container chunk writer and add test conveniences:
// panicking error handling, temp-file fixtures, and corruption hooks that
// declare payload sizes disagreeing with the bytes actually present.
package liftest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/lifio/lif/internal/binary"
	"github.com/lifio/lif/internal/container"
)

// Builder accumulates chunks of a synthetic container.
type Builder struct {
	// Version selects the pixel header width: 1 writes uint32 payload
	// sizes, any other value the modern uint64 form.
	Version int

	buf bytes.Buffer
	w   *container.Writer
}

// New returns a Builder producing version 2 containers.
func New() *Builder {
	b := &Builder{Version: 2}
	b.w = container.NewWriter(&b.buf)
	return b
}

// Len returns the number of bytes assembled so far.
func (b *Builder) Len() int64 {
	return int64(b.buf.Len())
}

// Bytes returns the assembled container.
func (b *Builder) Bytes() []byte {
	out := make([]byte, b.buf.Len())
	copy(out, b.buf.Bytes())
	return out
}

// Metadata appends a metadata chunk carrying the given XML text and returns b.
func (b *Builder) Metadata(xml string) *Builder {
	if err := b.w.Metadata(xml); err != nil {
		panic("liftest: " + err.Error())
	}
	return b
}

// MetadataRaw appends a metadata chunk with a pre-encoded payload, bypassing
// UTF-16 encoding. Used to inject undecodable text.
func (b *Builder) MetadataRaw(payload []byte) *Builder {
	if err := b.w.MetadataRaw(payload); err != nil {
		panic("liftest: " + err.Error())
	}
	return b
}

// Pixel appends a pixel chunk and returns the payload's file offset.
func (b *Builder) Pixel(id string, data []byte) int64 {
	return b.PixelDeclaring(id, uint64(len(data)), data)
}

// PixelDeclaring appends a pixel chunk whose header declares the given
// payload size regardless of how many bytes follow. Declaring more than
// len(data) simulates a block truncated or corrupted on disk.
func (b *Builder) PixelDeclaring(id string, declared uint64, data []byte) int64 {
	b.w.Version = b.Version
	off, err := b.w.Pixel(id, declared, data)
	if err != nil {
		panic("liftest: " + err.Error())
	}
	return off
}

// Raw appends arbitrary bytes verbatim and returns b.
func (b *Builder) Raw(p []byte) *Builder {
	if err := b.w.Raw(p); err != nil {
		panic("liftest: " + err.Error())
	}
	return b
}

// WriteTemp writes the assembled container to a temporary file and returns
// its path. The file is removed with the test's temp directory.
func (b *Builder) WriteTemp(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "container.lif")
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

// LIF assembles a container whose first chunk is the catalog XML, followed
// by one pixel block per entry of blocks (iterated in the order given).
func LIF(xml string, ids []string, blocks map[string][]byte) []byte {
	b := New()
	b.Metadata(xml)
	for _, id := range ids {
		b.Pixel(id, blocks[id])
	}
	return b.Bytes()
}

// LOF assembles a single-object container: the object marker chunk, the
// pixel block, then the XML trailer.
func LOF(id string, data []byte, xml string) []byte {
	b := New()
	b.Metadata(container.LOFMarker)
	b.Pixel(id, data)
	b.Metadata(xml)
	return b.Bytes()
}

// UTF16 encodes s as UTF-16LE bytes without a byte order mark.
func UTF16(s string) []byte {
	enc, err := binary.EncodeUTF16(s)
	if err != nil {
		panic("liftest: " + err.Error())
	}
	return enc
}
