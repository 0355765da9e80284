package binary

import (
	"encoding/binary"
	"io"

	"golang.org/x/text/encoding/unicode"
)

// Writer provides sequential writes of little-endian container fields.
// Unlike Reader it carries no random access position: chunks are emitted
// strictly in order and Pos reports the running offset. The first write
// error sticks; later writes become no-ops returning it.
type Writer struct {
	w   io.Writer
	pos int64
	err error
}

// NewWriter creates a writer emitting to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Pos returns the number of bytes written so far.
func (w *Writer) Pos() int64 {
	return w.pos
}

// Err returns the first write error, or nil.
func (w *Writer) Err() error {
	return w.err
}

// WriteBytes writes p verbatim.
func (w *Writer) WriteBytes(p []byte) error {
	if w.err != nil || len(p) == 0 {
		return w.err
	}
	n, err := w.w.Write(p)
	w.pos += int64(n)
	w.err = err
	return w.err
}

// WriteUint8 writes an unsigned 8-bit integer.
func (w *Writer) WriteUint8(v uint8) error {
	return w.WriteBytes([]byte{v})
}

// WriteUint16 writes an unsigned 16-bit integer.
func (w *Writer) WriteUint16(v uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	return w.WriteBytes(buf[:])
}

// WriteUint32 writes an unsigned 32-bit integer.
func (w *Writer) WriteUint32(v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return w.WriteBytes(buf[:])
}

// WriteInt32 writes a signed 32-bit integer.
func (w *Writer) WriteInt32(v int32) error {
	return w.WriteUint32(uint32(v))
}

// WriteUint64 writes an unsigned 64-bit integer.
func (w *Writer) WriteUint64(v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return w.WriteBytes(buf[:])
}

// WriteUTF16 writes s as UTF-16LE code units without a byte order mark.
func (w *Writer) WriteUTF16(s string) error {
	if w.err != nil {
		return w.err
	}
	enc, err := EncodeUTF16(s)
	if err != nil {
		w.err = err
		return w.err
	}
	return w.WriteBytes(enc)
}

// EncodeUTF16 encodes s as little-endian UTF-16 bytes without a byte order
// mark. The inverse of DecodeUTF16.
func EncodeUTF16(s string) ([]byte, error) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	return enc.Bytes([]byte(s))
}
