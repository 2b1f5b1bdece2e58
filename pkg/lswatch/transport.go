package lswatch

import (
	"context"

	"github.com/fyrsmithlabs/lswatch/pkg/listing"
)

// ChangeHandler receives the full listing of a directory key. A nil dir means
// the listing no longer exists; an empty non-nil dir means the directory
// exists and has no children.
type ChangeHandler func(key string, dir listing.Directory)

// Transport subscribes to directory listing properties.
type Transport interface {
	// Subscribe starts delivering the current and future listings of key to
	// handler. Deliveries must happen on a goroutine other than the caller's.
	Subscribe(ctx context.Context, key string, handler ChangeHandler) (Subscription, error)
}

// Subscription is an active Transport subscription.
type Subscription interface {
	// Unsubscribe stops deliveries. It must not wait for an in-flight
	// delivery to finish.
	Unsubscribe() error
}

// Callback receives a watched path and its resolved entry, nil when the path
// does not exist.
type Callback func(path string, entry listing.Entry)
