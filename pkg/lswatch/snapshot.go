package lswatch

import (
	"sort"

	"github.com/fyrsmithlabs/lswatch/pkg/listing"
)

// Stats summarises registry state.
type Stats struct {
	WatchedPaths      int `json:"watched_paths"`
	Registrations     int `json:"registrations"`
	Subscriptions     int `json:"subscriptions"`
	CachedDirectories int `json:"cached_directories"`
}

// WatchState describes one watched path.
type WatchState struct {
	Path          string        `json:"path"`
	Registrations int           `json:"registrations"`
	Chain         []string      `json:"chain"`
	Value         listing.Entry `json:"value"`
}

// Snapshot is a point-in-time copy of registry state, sorted by path and key.
type Snapshot struct {
	Watches    []WatchState   `json:"watches"`
	RefCounts  map[string]int `json:"ref_counts"`
	Subscribed []string       `json:"subscribed"`
	Cached     []string       `json:"cached"`
}

// Stats returns current counts.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	registrations := 0
	for _, record := range r.watches {
		registrations += len(record.registrations)
	}
	return Stats{
		WatchedPaths:      len(r.watches),
		Registrations:     registrations,
		Subscriptions:     len(r.subscriptions),
		CachedDirectories: len(r.tree),
	}
}

// RefCount returns the number of watched paths that need key.
func (r *Registry) RefCount(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.dependents[key])
}

// Snapshot copies the registry's watches, reference counts and cache keys.
// Entries in the snapshot are shared with the registry and must be treated
// as read-only.
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := Snapshot{
		Watches:    make([]WatchState, 0, len(r.watches)),
		RefCounts:  make(map[string]int, len(r.dependents)),
		Subscribed: make([]string, 0, len(r.subscriptions)),
		Cached:     make([]string, 0, len(r.tree)),
	}

	for path, record := range r.watches {
		snapshot.Watches = append(snapshot.Watches, WatchState{
			Path:          path,
			Registrations: len(record.registrations),
			Chain:         append([]string(nil), record.chain...),
			Value:         record.last,
		})
	}
	sort.Slice(snapshot.Watches, func(i, j int) bool {
		return snapshot.Watches[i].Path < snapshot.Watches[j].Path
	})

	for key, dependents := range r.dependents {
		snapshot.RefCounts[key] = len(dependents)
	}
	for key := range r.subscriptions {
		snapshot.Subscribed = append(snapshot.Subscribed, key)
	}
	sort.Strings(snapshot.Subscribed)
	for key := range r.tree {
		snapshot.Cached = append(snapshot.Cached, key)
	}
	sort.Strings(snapshot.Cached)

	return snapshot
}
