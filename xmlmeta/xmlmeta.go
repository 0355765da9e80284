// Package xmlmeta decodes container metadata XML into a generic attributed tree.
//
// Metadata payloads arrive as UTF-16 text in LIF and LOF containers; the
// decoder normalizes the encoding, tokenizes with the standard XML decoder,
// and returns a plain tree of tags, ordered attributes and children. Values
// stay raw text; interpreting them is the caller's concern.
package xmlmeta

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// Attr is one attribute as written, name and raw value.
type Attr struct {
	Name  string
	Value string
}

// Node is one element of a metadata tree. Attributes and children keep
// document order. Nodes are built once and read-only afterward.
type Node struct {
	Tag      string
	Attrs    []Attr
	Children []*Node
	Text     string
}

// Attr returns the named attribute's value and whether it is present.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Child returns the first direct child with the given tag, or nil.
func (n *Node) Child(tag string) *Node {
	for _, c := range n.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// Get walks direct children along the given tag path and returns the node
// reached, or nil when any step is missing.
func (n *Node) Get(path ...string) *Node {
	cur := n
	for _, tag := range path {
		if cur = cur.Child(tag); cur == nil {
			return nil
		}
	}
	return cur
}

// Find returns the first node in the subtree (depth-first, document order,
// n included) with the given tag, or nil.
func (n *Node) Find(tag string) *Node {
	if n.Tag == tag {
		return n
	}
	for _, c := range n.Children {
		if hit := c.Find(tag); hit != nil {
			return hit
		}
	}
	return nil
}

// FindAll returns every node in the subtree (n included) with the given tag
// in document order.
func (n *Node) FindAll(tag string) []*Node {
	var out []*Node
	n.walk(func(c *Node) {
		if c.Tag == tag {
			out = append(out, c)
		}
	})
	return out
}

func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.walk(fn)
	}
}

// Parse decodes a raw metadata payload into its root node. UTF-16 payloads
// (byte order mark or zero-byte texture) are converted before tokenizing;
// anything else is treated as UTF-8.
func Parse(raw []byte) (*Node, error) {
	text, err := decodeText(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding metadata text: %w", err)
	}
	return ParseString(text)
}

// ParseString parses already-decoded XML text into its root node.
func ParseString(text string) (*Node, error) {
	d := xml.NewDecoder(strings.NewReader(text))
	// Payloads are normalized before tokenizing; accept whatever the
	// declaration claims.
	d.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var root *Node
	var stack []*Node
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed metadata: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Tag: t.Name.Local}
			if len(t.Attr) > 0 {
				n.Attrs = make([]Attr, 0, len(t.Attr))
				for _, a := range t.Attr {
					n.Attrs = append(n.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
				}
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("malformed metadata: multiple root elements")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)

		case xml.EndElement:
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			if s := strings.TrimSpace(string(t)); s != "" {
				cur := stack[len(stack)-1]
				if cur.Text != "" {
					cur.Text += " "
				}
				cur.Text += s
			}
		}
	}

	if root == nil {
		return nil, errors.New("malformed metadata: no root element")
	}
	return root, nil
}

// decodeText converts a metadata payload to a UTF-8 string.
func decodeText(raw []byte) (string, error) {
	if len(raw) < 2 {
		return string(raw), nil
	}

	var endian unicode.Endianness
	switch {
	case raw[0] == 0xFF && raw[1] == 0xFE:
		endian = unicode.LittleEndian
	case raw[0] == 0xFE && raw[1] == 0xFF:
		endian = unicode.BigEndian
	case raw[1] == 0x00:
		// No mark; ASCII-heavy UTF-16LE puts zeros in the high bytes.
		endian = unicode.LittleEndian
	case raw[0] == 0x00:
		endian = unicode.BigEndian
	default:
		return string(raw), nil
	}

	dec := unicode.UTF16(endian, unicode.UseBOM).NewDecoder()
	out, err := dec.Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
