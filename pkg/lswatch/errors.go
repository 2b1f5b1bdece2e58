package lswatch

import (
	"errors"

	"github.com/fyrsmithlabs/lswatch/pkg/listing"
)

// Usage errors.
var (
	// ErrInvalidPath is returned when watching the root or a malformed path.
	ErrInvalidPath = listing.ErrInvalidPath

	// ErrNilCallback is returned when Watch is called without a callback.
	ErrNilCallback = errors.New("callback is required")

	// ErrNotWatching is returned when unwatching a registration that is not active.
	ErrNotWatching = errors.New("not watching")

	// ErrClosed is returned by operations on a closed Registry.
	ErrClosed = errors.New("registry is closed")
)
