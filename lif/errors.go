// Package lif provides a pure Go reader for Leica LIF and LOF microscopy containers.
package lif

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrNotLIF reports that a source does not open with the container marker.
	ErrNotLIF = errors.New("not a LIF file")

	// ErrClosed reports an operation on a closed file.
	ErrClosed = errors.New("file is closed")

	// ErrStopWalk stops a Walk early without reporting an error.
	ErrStopWalk = errors.New("stop walking")
)

// FormatError reports an unreadable container: wrong signature or a header
// stream that cannot be parsed at all. Opening aborts with it; nothing of the
// catalog is available afterward.
type FormatError struct {
	Path string // source path, "" for handle-backed sources
	Err  error
}

func (e *FormatError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *FormatError) Unwrap() error { return e.Err }

// MetadataError reports undecodable or inconsistent metadata. It is scoped to
// one metadata block or one image; the rest of the catalog stays usable.
type MetadataError struct {
	Block int    // index of the metadata block, -1 when not block-scoped
	ID    string // image or memory block identifier, "" when the whole block failed
	Err   error
}

func (e *MetadataError) Error() string {
	switch {
	case e.ID != "":
		return fmt.Sprintf("metadata for %q: %v", e.ID, e.Err)
	case e.Block >= 0:
		return fmt.Sprintf("metadata block %d: %v", e.Block, e.Err)
	default:
		return fmt.Sprintf("metadata: %v", e.Err)
	}
}

func (e *MetadataError) Unwrap() error { return e.Err }

// MissingDataError reports an image whose metadata resolved but whose pixel
// bytes are absent, truncated, or too short for the declared layout. The
// image stays listed in the catalog; reading it fails with this error.
type MissingDataError struct {
	Path    string // image path within the catalog
	BlockID string // memory block id the metadata references, "" when none declared
	Reason  string
}

func (e *MissingDataError) Error() string {
	if e.BlockID == "" {
		return fmt.Sprintf("image %q: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("image %q (block %q): %s", e.Path, e.BlockID, e.Reason)
}

// IndexError reports a requested index range outside an image's declared
// bounds on one axis. Nothing is clamped; the read fails as a whole.
type IndexError struct {
	Axis  Axis
	Start int
	Count int
	Size  int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index out of range: axis %s, start=%d, count=%d, size=%d",
		e.Axis, e.Start, e.Count, e.Size)
}
