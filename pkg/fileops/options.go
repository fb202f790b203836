package fileops

import "fsguard/internal/logging"

// Invalidator drops any cached, compiled form of the file at path, and of
// every file beneath path when it names a directory. Manager calls it after
// every successful Write, Move (with both paths) and Delete.
type Invalidator interface {
	Invalidate(path string)
}

// InvalidatorFunc adapts a plain function to Invalidator.
type InvalidatorFunc func(path string)

func (f InvalidatorFunc) Invalidate(path string) { f(path) }

func invalidate(inv Invalidator, paths ...string) {
	if inv == nil {
		return
	}
	for _, path := range paths {
		inv.Invalidate(path)
	}
}

// Option configures a Resolver or Manager.
type Option func(*options)

type options struct {
	maxPathLength int
	logger        *logging.AppLogger
	invalidator   Invalidator
}

func buildOptions(opts []Option) options {
	o := options{maxPathLength: DefaultMaxPathLength()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithMaxPathLength overrides the platform path length limit.
// Values <= 0 keep the platform default.
func WithMaxPathLength(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxPathLength = n
		}
	}
}

// WithLogger sets the logger used by Manager. Defaults to logging.GetDefault().
func WithLogger(logger *logging.AppLogger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithInvalidator installs a cache invalidation hook. A nil value disables it.
func WithInvalidator(inv Invalidator) Option {
	return func(o *options) {
		o.invalidator = inv
	}
}
