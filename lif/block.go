package lif

import (
	"fmt"

	"github.com/lifio/lif/internal/binary"
	"github.com/lifio/lif/internal/container"
)

// MemoryBlock describes one pixel memory block of the container.
type MemoryBlock struct {
	ID     string
	Offset int64 // payload offset in the container
	Size   int64 // payload length in bytes
	Valid  bool
	Reason string // why the block is unusable, when not valid
}

// Blocks returns the container's pixel memory blocks in file order.
func (f *File) Blocks() []MemoryBlock {
	var out []MemoryBlock
	for _, b := range f.index.Blocks {
		if b.Kind != container.KindPixel {
			continue
		}
		out = append(out, MemoryBlock{
			ID:     b.ID,
			Offset: b.PayloadOffset,
			Size:   b.PayloadLength,
			Valid:  b.Valid,
			Reason: b.Reason,
		})
	}
	return out
}

// Block returns the pixel memory block with the given id.
func (f *File) Block(id string) (MemoryBlock, error) {
	bi, ok := f.blocks[id]
	if !ok {
		return MemoryBlock{}, fmt.Errorf("no memory block %q", id)
	}
	b := f.index.Blocks[bi]
	return MemoryBlock{
		ID:     b.ID,
		Offset: b.PayloadOffset,
		Size:   b.PayloadLength,
		Valid:  b.Valid,
		Reason: b.Reason,
	}, nil
}

// BlockData returns the raw payload of a pixel memory block.
func (f *File) BlockData(id string) ([]byte, error) {
	if f.closed {
		return nil, ErrClosed
	}
	bi, ok := f.blocks[id]
	if !ok {
		return nil, fmt.Errorf("no memory block %q", id)
	}
	b := f.index.Blocks[bi]
	data, err := binary.NewReader(f.src).At(b.PayloadOffset).ReadBytes(int(b.PayloadLength))
	if err != nil {
		return nil, fmt.Errorf("reading block %s: %w", id, err)
	}
	return data, nil
}
