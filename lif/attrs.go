package lif

import (
	"strconv"

	"github.com/lifio/lif/xmlmeta"
)

// attachmentAttrs collects an image element's attachment nodes into a map
// keyed by attachment name. Values are nested maps of attributes and child
// elements with numeric strings coerced to numbers.
func attachmentAttrs(elem *xmlmeta.Node) map[string]any {
	var attrs map[string]any
	for _, n := range elem.FindAll("Attachment") {
		name, ok := n.Attr("Name")
		if !ok || name == "" {
			continue
		}
		if attrs == nil {
			attrs = make(map[string]any)
		}
		attrs[name] = nodeToAny(n)
	}
	return attrs
}

// nodeToAny converts a metadata node to a generic value. Leaf nodes become
// their coerced text; interior nodes become maps with repeated child tags
// collected into slices.
func nodeToAny(n *xmlmeta.Node) any {
	if len(n.Attrs) == 0 && len(n.Children) == 0 {
		return coerce(n.Text)
	}
	m := make(map[string]any, len(n.Attrs)+len(n.Children))
	for _, a := range n.Attrs {
		if a.Name == "Name" {
			continue
		}
		m[a.Name] = coerce(a.Value)
	}
	for _, c := range n.Children {
		v := nodeToAny(c)
		switch prev := m[c.Tag].(type) {
		case nil:
			m[c.Tag] = v
		case []any:
			m[c.Tag] = append(prev, v)
		default:
			m[c.Tag] = []any{prev, v}
		}
	}
	if n.Text != "" {
		m["Text"] = coerce(n.Text)
	}
	return m
}

// coerce turns a metadata string into an int64, float64, or string, in
// that order of preference.
func coerce(s string) any {
	if s == "" {
		return s
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return s
}
