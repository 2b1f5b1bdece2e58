package lswatch

import "context"

// Handle identifies one registration made by Registry.Watch.
type Handle struct {
	registry *Registry
	path     string
	id       uint64
}

// Path returns the watched path.
func (h *Handle) Path() string {
	if h == nil {
		return ""
	}
	return h.path
}

// Close removes the registration. Closing a handle twice returns
// ErrNotWatching.
func (h *Handle) Close() error {
	if h == nil || h.registry == nil {
		return ErrNotWatching
	}
	return h.registry.Unwatch(context.Background(), h)
}
