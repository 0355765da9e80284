package lif

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/lifio/lif/xmlmeta"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Summary is a JSON-friendly view of a container's catalog.
type Summary struct {
	Name    string         `json:"name"`
	Path    string         `json:"path,omitempty"`
	Version int            `json:"version"`
	LOF     bool           `json:"lof,omitempty"`
	Size    int64          `json:"size"`
	Images  []ImageSummary `json:"images"`
}

// ImageSummary is a JSON-friendly view of one image.
type ImageSummary struct {
	Path      string `json:"path"`
	GUID      string `json:"guid,omitempty"`
	Axes      string `json:"axes"`
	Shape     []int  `json:"shape"`
	PixelType string `json:"pixelType"`
	Channels  int    `json:"channels"`
	Block     string `json:"block,omitempty"`
	Bytes     int64  `json:"bytes"`
	Tiles     int    `json:"tiles,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Summary collects the catalog into an exportable form.
func (f *File) Summary() Summary {
	s := Summary{
		Name:    f.name,
		Path:    f.path,
		Version: f.version,
		LOF:     f.index.LOF,
		Size:    f.size,
		Images:  make([]ImageSummary, 0, len(f.images)),
	}
	for _, im := range f.images {
		is := ImageSummary{
			Path:      im.path,
			GUID:      im.guid,
			Axes:      axesString(im.Axes()),
			Shape:     im.Shape(),
			PixelType: im.pixel.String(),
			Channels:  len(im.channels),
			Block:     im.blockID,
			Bytes:     im.NBytes(),
		}
		if im.tiles != nil {
			is.Tiles = len(im.tiles.Tiles)
		}
		if im.err != nil {
			is.Error = im.err.Error()
		}
		s.Images = append(s.Images, is)
	}
	return s
}

// SummaryJSON renders the catalog summary as indented JSON.
func (f *File) SummaryJSON() ([]byte, error) {
	return json.MarshalIndent(f.Summary(), "", "  ")
}

// MetadataJSON renders a metadata subtree as indented JSON, preserving
// tags, attributes, text, and child order.
func MetadataJSON(n *xmlmeta.Node) ([]byte, error) {
	if n == nil {
		return []byte("null"), nil
	}
	return json.MarshalIndent(metadataValue(n), "", "  ")
}

func metadataValue(n *xmlmeta.Node) map[string]any {
	m := map[string]any{"tag": n.Tag}
	if len(n.Attrs) > 0 {
		attrs := make(map[string]string, len(n.Attrs))
		for _, a := range n.Attrs {
			attrs[a.Name] = a.Value
		}
		m["attrs"] = attrs
	}
	if n.Text != "" {
		m["text"] = n.Text
	}
	if len(n.Children) > 0 {
		children := make([]any, len(n.Children))
		for i, c := range n.Children {
			children[i] = metadataValue(c)
		}
		m["children"] = children
	}
	return m
}

func axesString(axes []Axis) string {
	s := ""
	for _, a := range axes {
		s += a.String()
	}
	return s
}
