package listing

import (
	"errors"
	"fmt"
	"strings"
)

// Separator splits path segments.
const Separator = "/"

// RootKey is the directory key of the top-level listing.
const RootKey = ""

// ErrInvalidPath indicates a path that cannot be watched.
var ErrInvalidPath = errors.New("invalid path")

// AncestorChain returns the directory keys that must be known to resolve
// path, from the root down to the directory holding its final segment.
//
//	AncestorChain("")            // [""]
//	AncestorChain("foo")         // [""]
//	AncestorChain("foo/bar/baz") // ["", "foo/", "foo/bar/"]
func AncestorChain(path string) []string {
	segments := strings.Split(path, Separator)
	chain := make([]string, len(segments))
	chain[0] = RootKey
	for i := 1; i < len(segments); i++ {
		chain[i] = chain[i-1] + segments[i-1] + Separator
	}
	return chain
}

// ParentKey returns the directory key whose listing holds path's entry.
func ParentKey(path string) string {
	idx := strings.LastIndex(path, Separator)
	if idx < 0 {
		return RootKey
	}
	return path[:idx+1]
}

// BaseName returns the final segment of path.
func BaseName(path string) string {
	return path[strings.LastIndex(path, Separator)+1:]
}

// HasSubdirectory reports whether any descriptor in entry marks the name as
// a directory.
func HasSubdirectory(entry Entry) bool {
	for _, descriptor := range entry {
		if descriptor.Behaviour() == BehaviourDirectory {
			return true
		}
	}
	return false
}

// HasSubdirectory reports whether name is listed in d as a directory.
func (d Directory) HasSubdirectory(name string) bool {
	return HasSubdirectory(d[name])
}

// ValidatePath rejects paths that do not name an entry below the root:
// the empty path, leading or trailing separators, and empty segments.
func ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: root path cannot be watched", ErrInvalidPath)
	}
	for _, segment := range strings.Split(path, Separator) {
		if segment == "" {
			return fmt.Errorf("%w: empty segment in %q", ErrInvalidPath, path)
		}
	}
	return nil
}
