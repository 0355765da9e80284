package lif

import (
	"strconv"

	"github.com/lifio/lif/xmlmeta"
)

// Tile is one field of a mosaic acquisition.
type Tile struct {
	FieldX, FieldY int     // grid position, zero-based
	PosX, PosY     float64 // stage position in meters
	BlockID        string  // pixel block holding this tile; empty when tiles share the image block
}

// TileLayout describes the mosaic grid of a tiled image. Tiles appear in
// acquisition order, which is also their order along the mosaic axis.
type TileLayout struct {
	Rows, Cols int
	Tiles      []Tile
}

// split reports whether the mosaic stores each tile in its own pixel block.
func (l *TileLayout) split() bool {
	return l != nil && len(l.Tiles) > 0 && l.Tiles[0].BlockID != ""
}

// parseTiles extracts the mosaic layout from an image element's TileScanInfo
// attachment. Returns nil when the image is not tiled.
func parseTiles(elem *xmlmeta.Node) *TileLayout {
	var info *xmlmeta.Node
	for _, n := range elem.FindAll("Attachment") {
		if name, ok := n.Attr("Name"); ok && name == "TileScanInfo" {
			info = n
			break
		}
	}
	if info == nil {
		return nil
	}
	layout := &TileLayout{}
	for _, t := range info.FindAll("Tile") {
		tile := Tile{
			FieldX: intAttr(t, "FieldX"),
			FieldY: intAttr(t, "FieldY"),
			PosX:   floatAttr(t, "PosX"),
			PosY:   floatAttr(t, "PosY"),
		}
		if id, ok := t.Attr("BlockID"); ok {
			tile.BlockID = id
		}
		layout.Tiles = append(layout.Tiles, tile)
		if tile.FieldY+1 > layout.Rows {
			layout.Rows = tile.FieldY + 1
		}
		if tile.FieldX+1 > layout.Cols {
			layout.Cols = tile.FieldX + 1
		}
	}
	if len(layout.Tiles) == 0 {
		return nil
	}
	return layout
}

func intAttr(n *xmlmeta.Node, name string) int {
	s, ok := n.Attr(name)
	if !ok {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

func floatAttr(n *xmlmeta.Node, name string) float64 {
	s, ok := n.Attr(name)
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
