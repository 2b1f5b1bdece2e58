// Package lswatch watches individual paths in an advertised directory tree.
//
// # Overview
//
// The tree is published as one listing property per directory (see package
// listing). A Registry lets callers watch a single path and be told its
// listing entry now and whenever it changes, without caring which directory
// listings are needed to answer the question.
//
// The Registry:
//   - subscribes to every directory on a watched path's ancestor chain,
//     sharing subscriptions between watches and dropping them when the last
//     watch that needs them goes away
//   - caches the last listing received for every subscribed directory
//   - re-resolves affected paths on every update and calls back only when
//     the resolved entry actually changed
//
// # Usage
//
//	registry := lswatch.New(transport, lswatch.WithLogger(logger))
//	defer registry.Close()
//
//	handle, err := registry.Watch(ctx, "lights/kitchen", func(path string, entry listing.Entry) {
//	    if entry == nil {
//	        fmt.Println(path, "is gone")
//	        return
//	    }
//	    fmt.Println(path, "is", entry[0].Behaviour())
//	})
//	if err != nil {
//	    return err
//	}
//	defer handle.Close()
//
// The callback runs once before Watch returns, with nil if the path does not
// (yet) resolve.
//
// # Concurrency
//
// All Registry methods are safe for concurrent use and are serialised by a
// single lock, held while transport subscriptions are issued and while
// callbacks run. Callbacks must therefore not call back into the same
// Registry synchronously; hand the work to another goroutine instead.
// Transports must deliver updates from their own goroutines and never from
// inside Subscribe or Unsubscribe.
package lswatch
