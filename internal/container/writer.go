package container

import (
	"fmt"
	"io"

	"github.com/lifio/lif/internal/binary"
)

// Writer emits the chunk grammar Scan consumes. Production containers come
// out of the acquisition software; this writer backs the synthetic
// containers assembled for tests and tools.
type Writer struct {
	// Version selects the pixel header shape: 1 writes uint32 payload
	// sizes, any other value the version 2 uint64 form.
	Version int

	w *binary.Writer
}

// NewWriter returns a writer emitting version 2 chunks to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{Version: 2, w: binary.NewWriter(w)}
}

// Pos returns the number of bytes emitted so far.
func (w *Writer) Pos() int64 {
	return w.w.Pos()
}

// Metadata emits a metadata chunk carrying text.
func (w *Writer) Metadata(text string) error {
	enc, err := binary.EncodeUTF16(text)
	if err != nil {
		return err
	}
	return w.MetadataRaw(enc)
}

// MetadataRaw emits a metadata chunk with a pre-encoded payload. The payload
// must span a whole number of UTF-16 code units.
func (w *Writer) MetadataRaw(payload []byte) error {
	if len(payload)%2 != 0 {
		return fmt.Errorf("metadata payload of %d bytes is not a whole number of code units", len(payload))
	}
	n := uint32(len(payload) / 2)

	w.w.WriteInt32(Marker)
	w.w.WriteInt32(int32(5 + 2*n))
	w.w.WriteUint8(TestByte)
	w.w.WriteUint32(n)
	w.w.WriteBytes(payload)
	return w.w.Err()
}

// Pixel emits a pixel chunk whose header declares declared payload bytes and
// returns the payload's file offset. data may hold fewer bytes than
// declared; the scanner reports such blocks as truncated.
func (w *Writer) Pixel(id string, declared uint64, data []byte) (int64, error) {
	enc, err := binary.EncodeUTF16(id)
	if err != nil {
		return 0, err
	}
	n := uint32(len(enc) / 2)

	fixed := int32(14)
	if w.Version == 1 {
		fixed = 10
	}

	w.w.WriteInt32(Marker)
	w.w.WriteInt32(fixed + int32(2*n))
	w.w.WriteUint8(TestByte)
	if w.Version == 1 {
		w.w.WriteUint32(uint32(declared))
	} else {
		w.w.WriteUint64(declared)
	}
	w.w.WriteUint8(TestByte)
	w.w.WriteUint32(n)
	w.w.WriteBytes(enc)

	off := w.w.Pos()
	w.w.WriteBytes(data)
	if err := w.w.Err(); err != nil {
		return 0, err
	}
	return off, nil
}

// Raw copies p through unchanged, outside any chunk structure.
func (w *Writer) Raw(p []byte) error {
	w.w.WriteBytes(p)
	return w.w.Err()
}
