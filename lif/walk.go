package lif

import "errors"

// WalkFunc is called for every image visited by Walk. Returning ErrStopWalk
// ends the walk early without error; any other error aborts the walk and is
// returned to the caller.
type WalkFunc func(path string, im *Image) error

// Walk visits every catalogued image in document order, which follows the
// collection tree depth-first.
func (f *File) Walk(fn WalkFunc) error {
	for _, im := range f.images {
		if err := fn(im.path, im); err != nil {
			if errors.Is(err, ErrStopWalk) {
				return nil
			}
			return err
		}
	}
	return nil
}
