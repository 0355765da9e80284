package container

import (
	"bytes"
	"testing"
)

func TestWriterScanRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	if err := w.Metadata("<LMSDataContainerHeader Version=\"2\"/>"); err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	payloadA := []byte{1, 2, 3, 4, 5, 6}
	offA, err := w.Pixel("MemBlock_A", uint64(len(payloadA)), payloadA)
	if err != nil {
		t.Fatalf("Pixel A: %v", err)
	}
	payloadB := bytes.Repeat([]byte{0xCD}, 17)
	offB, err := w.Pixel("MemBlock_B", uint64(len(payloadB)), payloadB)
	if err != nil {
		t.Fatalf("Pixel B: %v", err)
	}
	if w.Pos() != int64(buf.Len()) {
		t.Fatalf("Pos() = %d, buffer holds %d", w.Pos(), buf.Len())
	}

	idx := scan(t, buf.Bytes())
	if len(idx.Blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(idx.Blocks))
	}
	if idx.Blocks[0].Kind != KindMetadata || !idx.Blocks[0].Valid {
		t.Errorf("metadata block: %+v", idx.Blocks[0])
	}
	for i, want := range []struct {
		id      string
		off     int64
		payload []byte
	}{
		{"MemBlock_A", offA, payloadA},
		{"MemBlock_B", offB, payloadB},
	} {
		blk := idx.Blocks[i+1]
		if blk.Kind != KindPixel || !blk.Valid || blk.ID != want.id {
			t.Errorf("block %d: %+v", i+1, blk)
			continue
		}
		if blk.PayloadOffset != want.off {
			t.Errorf("block %d payload offset: writer said %d, scanner found %d",
				i+1, want.off, blk.PayloadOffset)
		}
		got := buf.Bytes()[blk.PayloadOffset : blk.PayloadOffset+blk.PayloadLength]
		if !bytes.Equal(got, want.payload) {
			t.Errorf("block %d payload bytes differ", i+1)
		}
	}
}

func TestWriterPixelHeaderShapes(t *testing.T) {
	// Fixed header bytes before the id: marker, size, test byte, payload
	// size (4 or 8), test byte, id length.
	for _, tc := range []struct {
		version int
		fixed   int64
	}{
		{1, 4 + 4 + 1 + 4 + 1 + 4},
		{2, 4 + 4 + 1 + 8 + 1 + 4},
	} {
		var buf bytes.Buffer
		w := NewWriter(&buf)
		w.Version = tc.version

		off, err := w.Pixel("MemBlock_0", 3, []byte{7, 8, 9})
		if err != nil {
			t.Fatalf("version %d Pixel: %v", tc.version, err)
		}
		wantOff := tc.fixed + 2*int64(len("MemBlock_0"))
		if off != wantOff {
			t.Errorf("version %d payload offset = %d, want %d", tc.version, off, wantOff)
		}

		idx := scan(t, buf.Bytes())
		if len(idx.Blocks) != 1 || !idx.Blocks[0].Valid || idx.Blocks[0].ID != "MemBlock_0" {
			t.Errorf("version %d scan: %+v", tc.version, idx.Blocks)
		}
	}
}

func TestWriterDeclaresMoreThanWritten(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Metadata("<LMSDataContainerHeader Version=\"2\"/>")
	if _, err := w.Pixel("MemBlock_short", 4096, []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("Pixel: %v", err)
	}

	idx := scan(t, buf.Bytes())
	blk := idx.Blocks[1]
	if blk.Valid {
		t.Error("overdeclared block scanned as valid")
	}
	if blk.ID != "MemBlock_short" || blk.PayloadLength != 4 {
		t.Errorf("truncated block: %+v", blk)
	}
}

func TestWriterMetadataRawOddLength(t *testing.T) {
	w := NewWriter(&bytes.Buffer{})
	if err := w.MetadataRaw([]byte{0x41}); err == nil {
		t.Error("odd payload length accepted")
	}
}

func TestWriterLOFLayout(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Metadata(LOFMarker)
	if _, err := w.Pixel("MemBlock_1", 2, []byte{1, 2}); err != nil {
		t.Fatalf("Pixel: %v", err)
	}
	w.Metadata("<LMSDataContainerHeader Version=\"2\"/>")

	idx := scan(t, buf.Bytes())
	if !idx.LOF {
		t.Error("LOF layout not detected")
	}
}
