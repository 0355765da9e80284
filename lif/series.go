package lif

// Collection is one folder of the container's catalog. Containers nest
// collections arbitrarily; images hang off the collection for the element
// that declares them.
type Collection struct {
	name        string
	path        string
	collections []*Collection
	images      []*Image
}

// Name returns the collection's element name.
func (c *Collection) Name() string { return c.name }

// Path returns the slash-separated element path from the container root.
func (c *Collection) Path() string { return c.path }

// Collections returns the child collections in document order.
func (c *Collection) Collections() []*Collection {
	out := make([]*Collection, len(c.collections))
	copy(out, c.collections)
	return out
}

// Collection returns the child collection with the given name, nil when
// there is none.
func (c *Collection) Collection(name string) *Collection {
	for _, sub := range c.collections {
		if sub.name == name {
			return sub
		}
	}
	return nil
}

// Images returns the images declared directly on this collection's
// element.
func (c *Collection) Images() []*Image {
	out := make([]*Image, len(c.images))
	copy(out, c.images)
	return out
}
