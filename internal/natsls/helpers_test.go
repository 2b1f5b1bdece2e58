package natsls

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fyrsmithlabs/lswatch/pkg/listing"
	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"
)

const (
	deliveryTimeout = 5 * time.Second
	quietPeriod     = 250 * time.Millisecond
)

// startTestNATSServer starts an embedded NATS server with JetStream.
func startTestNATSServer(t *testing.T) *natsserver.Server {
	t.Helper()
	opts := &natsserver.Options{
		Host:      "127.0.0.1",
		Port:      -1, // Random port
		NoLog:     true,
		NoSigs:    true,
		JetStream: true,
		StoreDir:  t.TempDir(),
	}

	server, err := natsserver.NewServer(opts)
	require.NoError(t, err)

	go server.Start()

	if !server.ReadyForConnections(5 * time.Second) {
		t.Fatal("NATS server not ready")
	}

	t.Cleanup(func() {
		server.Shutdown()
		server.WaitForShutdown()
	})

	return server
}

// openTestBucket starts a server and returns a fresh listing bucket.
func openTestBucket(t *testing.T) jetstream.KeyValue {
	t.Helper()
	server := startTestNATSServer(t)

	nc, err := nats.Connect(server.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	kv, err := OpenBucket(ctx, nc, "lswatch_test", true)
	require.NoError(t, err)
	return kv
}

type update struct {
	key string
	dir listing.Directory
}

// updateSink collects transport deliveries.
type updateSink struct {
	ch chan update
}

func newUpdateSink() *updateSink {
	return &updateSink{ch: make(chan update, 64)}
}

func (s *updateSink) handle(key string, dir listing.Directory) {
	s.ch <- update{key: key, dir: dir}
}

func (s *updateSink) next(t *testing.T) update {
	t.Helper()
	select {
	case u := <-s.ch:
		return u
	case <-time.After(deliveryTimeout):
		t.Fatal("timed out waiting for listing update")
		return update{}
	}
}

func (s *updateSink) requireQuiet(t *testing.T) {
	t.Helper()
	select {
	case u := <-s.ch:
		t.Fatalf("unexpected update for %q: %v", u.key, u.dir)
	case <-time.After(quietPeriod):
	}
}

// recorder collects registry callbacks from the transport goroutines.
type recorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

type recordedCall struct {
	path  string
	entry listing.Entry
}

func (r *recorder) callback(path string, entry listing.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordedCall{path: path, entry: entry})
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *recorder) last() recordedCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[len(r.calls)-1]
}
