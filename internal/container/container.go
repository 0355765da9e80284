// Package container parses the chunk grammar shared by LIF and LOF files.
//
// A container is a flat sequence of chunks. Every chunk opens with a marker
// int and a test byte; metadata chunks carry UTF-16 XML text, pixel chunks
// carry a block id plus an opaque payload. The scanner builds an ordered
// block index without interpreting XML or pixel payloads.
package container

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/lifio/lif/internal/binary"
)

// Marker opens every chunk header.
const Marker = 0x70

// TestByte separates header fields.
const TestByte = 0x2A

// LOFMarker is the text payload of the chunk that opens a Leica Object File.
const LOFMarker = "LMS_Object_File"

// Errors
var (
	ErrNotLIF = errors.New("container marker not found")
)

// Kind classifies a block's payload.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindMetadata
	KindPixel
)

func (k Kind) String() string {
	switch k {
	case KindMetadata:
		return "metadata"
	case KindPixel:
		return "pixel"
	default:
		return "unknown"
	}
}

/*
Chunk layouts (integers little-endian; offsets relative to the chunk start):

	Metadata chunk (descriptor size S is odd, S = 5 + 2*N):
	  bytes 0-3    marker 0x70
	  bytes 4-7    descriptor size S
	  byte  8      test byte 0x2A
	  bytes 9-12   N, text length in UTF-16 code units
	  bytes 13-    text, 2*N bytes

	Pixel chunk, container version 2 (S = 14 + 2*N):
	  bytes 0-3    marker 0x70
	  bytes 4-7    descriptor size S
	  byte  8      test byte 0x2A
	  bytes 9-16   payload size in bytes, uint64
	  byte  17     test byte 0x2A
	  bytes 18-21  N, block id length in UTF-16 code units
	  bytes 22-    block id, 2*N bytes, then the payload

	Pixel chunk, container version 1 (S = 10 + 2*N):
	  bytes 0-3    marker 0x70
	  bytes 4-7    descriptor size S
	  byte  8      test byte 0x2A
	  bytes 9-12   payload size in bytes, uint32
	  byte  13     test byte 0x2A
	  bytes 14-17  N, block id length in UTF-16 code units
	  bytes 18-    block id, 2*N bytes, then the payload

The descriptor size parity separates metadata from pixel chunks; the version 2
shape is probed before version 1.
*/

// Block is one scanned chunk. Offsets are absolute; Length covers header and
// payload. Invalid blocks carry the reason and a length truncated to the
// region actually present.
type Block struct {
	Kind          Kind
	Offset        int64
	Length        int64
	ID            string // pixel block id, "" otherwise
	PayloadOffset int64
	PayloadLength int64
	Valid         bool
	Reason        string
}

// Index is the ordered result of a scan. Blocks appear in file order.
type Index struct {
	Blocks []Block
	LOF    bool
}

// Scan walks the chunk stream of a container of the given total size and
// returns the block index. The only fatal condition is a missing leading
// marker; every other anomaly degrades to an invalid or unknown block entry.
func Scan(src io.ReaderAt, size int64) (*Index, error) {
	r := binary.NewReader(src)

	magic, err := r.ReadInt32()
	if err != nil || magic != Marker {
		return nil, ErrNotLIF
	}

	idx := &Index{}
	pos := int64(0)
	for pos < size {
		blk, next, ok := parseChunk(r, pos, size)
		if ok {
			idx.Blocks = append(idx.Blocks, blk)
			pos = next
			continue
		}

		// Unparseable header: skip to the next plausible chunk start.
		resume := findMarker(src, pos+1, size)
		gap := Block{
			Kind:   KindUnknown,
			Offset: pos,
			Valid:  false,
			Reason: blk.Reason,
		}
		if resume < 0 {
			gap.Length = size - pos
			idx.Blocks = append(idx.Blocks, gap)
			break
		}
		gap.Length = resume - pos
		idx.Blocks = append(idx.Blocks, gap)
		pos = resume
	}

	idx.LOF = isLOF(src, idx.Blocks)
	return idx, nil
}

// parseChunk parses one chunk at pos. When the header itself is unreadable it
// returns ok=false with the reason in blk.Reason; the caller resynchronizes.
// A well-formed header whose payload overruns the file yields ok=true with an
// invalid, truncated block whose Length stops at the next plausible header.
func parseChunk(r *binary.Reader, pos, size int64) (blk Block, next int64, ok bool) {
	blk = Block{Offset: pos}

	cur := r.At(pos)
	magic, err := cur.ReadInt32()
	if err != nil {
		blk.Reason = "short read in chunk header"
		return blk, 0, false
	}
	if magic != Marker {
		blk.Reason = fmt.Sprintf("bad chunk marker 0x%x", magic)
		return blk, 0, false
	}
	descSize, err := cur.ReadInt32()
	if err != nil {
		blk.Reason = "short read in chunk header"
		return blk, 0, false
	}
	if descSize < 5 {
		blk.Reason = fmt.Sprintf("descriptor size %d too small", descSize)
		return blk, 0, false
	}
	test, err := cur.ReadUint8()
	if err != nil {
		blk.Reason = "short read in chunk header"
		return blk, 0, false
	}
	if test != TestByte {
		blk.Reason = fmt.Sprintf("bad test byte 0x%02x", test)
		return blk, 0, false
	}

	if descSize%2 == 1 {
		return parseMetadata(r, cur, blk, descSize, size)
	}
	return parsePixel(r, cur, blk, descSize, size)
}

func parseMetadata(r, cur *binary.Reader, blk Block, descSize int32, size int64) (Block, int64, bool) {
	nchar, err := cur.ReadUint32()
	if err != nil {
		blk.Reason = "short read in metadata header"
		return blk, 0, false
	}
	if int64(descSize) != 5+2*int64(nchar) {
		blk.Reason = fmt.Sprintf("metadata descriptor size %d does not match text length %d", descSize, nchar)
		return blk, 0, false
	}

	blk.Kind = KindMetadata
	blk.PayloadOffset = cur.Pos()
	blk.PayloadLength = 2 * int64(nchar)
	end := blk.PayloadOffset + blk.PayloadLength
	if end > size {
		return truncate(r, blk, size, "metadata text past end of file")
	}
	blk.Length = end - blk.Offset
	blk.Valid = true
	return blk, end, true
}

func parsePixel(r, cur *binary.Reader, blk Block, descSize int32, size int64) (Block, int64, bool) {
	// Version 2 shape first, then version 1.
	for _, wide := range []bool{true, false} {
		c := cur.At(cur.Pos())
		var memsize uint64
		var err error
		if wide {
			memsize, err = c.ReadUint64()
		} else {
			var v uint32
			v, err = c.ReadUint32()
			memsize = uint64(v)
		}
		if err != nil {
			continue
		}
		test, err := c.ReadUint8()
		if err != nil || test != TestByte {
			continue
		}
		nchar, err := c.ReadUint32()
		if err != nil {
			continue
		}
		fixed := int64(10)
		if wide {
			fixed = 14
		}
		if int64(descSize) != fixed+2*int64(nchar) {
			continue
		}
		id, err := c.ReadUTF16(int(nchar))
		if err != nil {
			blk.Reason = "short read in pixel block id"
			return blk, 0, false
		}

		blk.Kind = KindPixel
		blk.ID = id
		blk.PayloadOffset = c.Pos()
		blk.PayloadLength = int64(memsize)
		if blk.PayloadLength < 0 {
			blk.Reason = fmt.Sprintf("pixel block %q declares negative payload", id)
			return blk, 0, false
		}
		end := blk.PayloadOffset + blk.PayloadLength
		if end > size {
			return truncate(r, blk, size, fmt.Sprintf("pixel block %q payload past end of file", id))
		}
		blk.Length = end - blk.Offset
		blk.Valid = true
		return blk, end, true
	}

	blk.Reason = fmt.Sprintf("pixel descriptor size %d matches no known shape", descSize)
	return blk, 0, false
}

// truncate flags a block whose declared payload overruns the file. The block
// keeps the bytes up to the next plausible header (or end of file), so a
// corrupt length does not swallow later valid chunks.
func truncate(r *binary.Reader, blk Block, size int64, reason string) (Block, int64, bool) {
	blk.Valid = false
	blk.Reason = reason

	end := size
	if resume := findMarker(r.Source(), blk.PayloadOffset, size); resume >= 0 {
		end = resume
	}
	if end < blk.PayloadOffset {
		end = blk.PayloadOffset
	}
	blk.PayloadLength = end - blk.PayloadOffset
	blk.Length = end - blk.Offset
	return blk, end, true
}

// markerBytes is the little-endian encoding of Marker.
var markerBytes = []byte{Marker, 0x00, 0x00, 0x00}

// findMarker returns the offset of the next marker int at or after from,
// or -1 if none occurs before size.
func findMarker(src io.ReaderAt, from, size int64) int64 {
	const window = 64 * 1024
	buf := make([]byte, window+len(markerBytes)-1)

	for pos := from; pos < size; pos += window {
		n := int64(len(buf))
		if pos+n > size {
			n = size - pos
		}
		if n < int64(len(markerBytes)) {
			return -1
		}
		m, err := src.ReadAt(buf[:n], pos)
		if m < len(markerBytes) && err != nil {
			return -1
		}
		if i := bytes.Index(buf[:m], markerBytes); i >= 0 {
			return pos + int64(i)
		}
	}
	return -1
}

// isLOF reports whether the scanned blocks open with the LOF marker chunk.
func isLOF(src io.ReaderAt, blocks []Block) bool {
	if len(blocks) == 0 {
		return false
	}
	first := blocks[0]
	if first.Kind != KindMetadata || !first.Valid {
		return false
	}
	if first.PayloadLength != 2*int64(len(LOFMarker)) {
		return false
	}
	text, err := binary.NewReader(src).At(first.PayloadOffset).ReadUTF16(len(LOFMarker))
	if err != nil {
		return false
	}
	return text == LOFMarker
}
