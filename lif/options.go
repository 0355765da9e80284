package lif

// Option configures how a file is opened.
type Option func(*openOptions)

type openOptions struct {
	mmap           bool
	keepSingletons bool
}

// WithMemoryMapping makes OpenFile map the file into memory instead of
// issuing positioned reads. Ignored by Open, which reads from the caller's
// source.
func WithMemoryMapping() Option {
	return func(o *openOptions) { o.mmap = true }
}

// KeepSingletonAxes keeps axes of size one in every image's reported shape.
// By default such axes are dropped.
func KeepSingletonAxes() Option {
	return func(o *openOptions) { o.keepSingletons = true }
}

// ReadOption configures one Read call.
type ReadOption func(*readOptions)

type readOptions struct {
	start, count []int
	rgbOrder     bool
}

// WithRange restricts the read to a hyperrectangle: start and count give
// the first index and extent along each reported axis, in axis order. Both
// must have one entry per axis.
func WithRange(start, count []int) ReadOption {
	return func(o *readOptions) {
		o.start = start
		o.count = count
	}
}

// InRGBOrder reorders color samples so the sample axis runs red, green,
// blue. Containers store samples blue first.
func InRGBOrder() ReadOption {
	return func(o *readOptions) { o.rgbOrder = true }
}
