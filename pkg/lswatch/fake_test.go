package lswatch

import (
	"context"
	"sync"

	"github.com/fyrsmithlabs/lswatch/pkg/listing"
)

// fakeTransport records subscribe and unsubscribe calls in order.
type fakeTransport struct {
	mu             sync.Mutex
	handlers       map[string]ChangeHandler
	subscribes     []string
	unsubscribes   []string
	subscribeErr   map[string]error
	unsubscribeErr error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		handlers:     make(map[string]ChangeHandler),
		subscribeErr: make(map[string]error),
	}
}

func (f *fakeTransport) Subscribe(_ context.Context, key string, handler ChangeHandler) (Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.subscribeErr[key]; err != nil {
		return nil, err
	}
	f.subscribes = append(f.subscribes, key)
	f.handlers[key] = handler
	return &fakeSubscription{transport: f, key: key}, nil
}

// send delivers dir through the handler registered for key. Deliveries for
// keys without a handler go nowhere, as they would on a real transport.
func (f *fakeTransport) send(key string, dir listing.Directory) {
	f.mu.Lock()
	handler := f.handlers[key]
	f.mu.Unlock()
	if handler != nil {
		handler(key, dir)
	}
}

func (f *fakeTransport) subscribeCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.subscribes...)
}

func (f *fakeTransport) unsubscribeCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.unsubscribes...)
}

func (f *fakeTransport) active() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.handlers))
	for key := range f.handlers {
		keys = append(keys, key)
	}
	return keys
}

type fakeSubscription struct {
	transport *fakeTransport
	key       string
}

func (s *fakeSubscription) Unsubscribe() error {
	s.transport.mu.Lock()
	defer s.transport.mu.Unlock()

	s.transport.unsubscribes = append(s.transport.unsubscribes, s.key)
	delete(s.transport.handlers, s.key)
	return s.transport.unsubscribeErr
}

type call struct {
	path  string
	entry listing.Entry
}

// recorder collects callback invocations.
type recorder struct {
	mu    sync.Mutex
	calls []call
}

func (r *recorder) callback(path string, entry listing.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{path: path, entry: entry})
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *recorder) last() call {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return call{}
	}
	return r.calls[len(r.calls)-1]
}

func dir(behaviours map[string]string) listing.Directory {
	d := make(listing.Directory, len(behaviours))
	for name, behaviour := range behaviours {
		d[name] = listing.Entry{{"behaviour": behaviour}}
	}
	return d
}

func entry(behaviour string) listing.Entry {
	return listing.Entry{{"behaviour": behaviour}}
}
