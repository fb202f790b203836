package fileops

import (
	"path/filepath"
	"runtime"
	"strings"
)

const separator = string(filepath.Separator)

// DefaultMaxPathLength returns the longest path the host platform accepts.
func DefaultMaxPathLength() int {
	switch runtime.GOOS {
	case "windows":
		return 260
	case "darwin", "ios":
		return 1024
	default:
		return 4096
	}
}

// Resolver confines caller-supplied relative paths to a root directory.
//
// Confinement is purely lexical: symlinks inside the root are not followed
// or inspected, so a link pointing outside the root is not detected.
type Resolver struct {
	root          string
	maxPathLength int
}

// NewResolver normalizes root and returns a resolver confined to it.
//
// Parent references in root are folded: "a/b/../c" becomes "a/c". A ".."
// with nothing left to pop fails with ErrParentAboveRoot. A relative root is
// made absolute against the working directory once folding succeeds.
func NewResolver(root string, opts ...Option) (*Resolver, error) {
	o := buildOptions(opts)

	segments, err := foldSegments(root)
	if err != nil {
		return nil, err
	}

	normalized := strings.Join(segments, separator)
	if isRooted(root) {
		normalized = separator + normalized
	}
	if !filepath.IsAbs(normalized) {
		abs, err := filepath.Abs(normalized)
		if err != nil {
			return nil, newError(KindCreateFailed, root, err)
		}
		normalized = abs
	}

	return &Resolver{
		root:          normalized,
		maxPathLength: o.maxPathLength,
	}, nil
}

// Root returns the normalized absolute root.
func (r *Resolver) Root() string {
	return r.root
}

// MaxPathLength returns the limit enforced on resolved paths.
func (r *Resolver) MaxPathLength() int {
	return r.maxPathLength
}

// Resolve joins path onto the root.
//
// Unlike the root, path is never folded: any ".." segment that survives
// normalization fails with ErrIllegalParent. Resolved paths longer than
// MaxPathLength fail with ErrTooLong.
func (r *Resolver) Resolve(path string) (string, error) {
	rel := strings.Join(splitSegments(path), separator)

	if strings.Contains(separator+rel+separator, separator+".."+separator) {
		return "", newError(KindIllegalParent, rel, nil)
	}

	full := r.root
	if rel != "" {
		full = filepath.Join(r.root, rel)
	}

	if err := r.checkLength(full); err != nil {
		return "", err
	}
	return full, nil
}

// checkLength fails with ErrTooLong when full exceeds MaxPathLength.
func (r *Resolver) checkLength(full string) error {
	if r.maxPathLength > 0 && len(full) > r.maxPathLength {
		e := newError(KindTooLong, full, nil)
		e.limit = r.maxPathLength
		return e
	}
	return nil
}

// splitSegments splits on both slash styles and drops empty and "." segments.
func splitSegments(path string) []string {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\'
	})

	segments := parts[:0]
	for _, part := range parts {
		if part == "." {
			continue
		}
		segments = append(segments, part)
	}
	return segments
}

// foldSegments resolves ".." against the segments seen so far.
func foldSegments(path string) ([]string, error) {
	var stack []string
	for _, segment := range splitSegments(path) {
		if segment != ".." {
			stack = append(stack, segment)
			continue
		}
		if len(stack) == 0 {
			return nil, newError(KindParentAboveRoot, path, nil)
		}
		stack = stack[:len(stack)-1]
	}
	return stack, nil
}

func isRooted(path string) bool {
	return strings.HasPrefix(path, "/") || strings.HasPrefix(path, "\\")
}
