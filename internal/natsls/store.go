package natsls

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/fyrsmithlabs/lswatch/pkg/listing"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
)

// Store publishes and reads directory listings in a KV bucket.
type Store struct {
	kv      jetstream.KeyValue
	prefix  string
	logger  *zap.Logger
	metrics *Metrics
}

// NewStore creates a Store over kv.
func NewStore(kv jetstream.KeyValue, opts ...Option) *Store {
	o := newOptions(opts)
	return &Store{
		kv:      kv,
		prefix:  o.prefix,
		logger:  o.logger.With(zap.String("component", "natsls.store")),
		metrics: NewMetrics(),
	}
}

// PutListing stores dir as the listing of key and returns the new revision.
func (s *Store) PutListing(ctx context.Context, key string, dir listing.Directory) (uint64, error) {
	revision, err := s.putListing(ctx, key, dir)
	s.metrics.recordStore("put", err)
	return revision, err
}

func (s *Store) putListing(ctx context.Context, key string, dir listing.Directory) (uint64, error) {
	full, err := kvKey(s.prefix, key)
	if err != nil {
		return 0, err
	}
	data, err := EncodeDirectory(dir)
	if err != nil {
		return 0, err
	}

	revision, err := s.kv.Put(ctx, full, data)
	if err != nil {
		return 0, fmt.Errorf("put listing %q: %w", key, err)
	}
	s.logger.Debug("listing published",
		zap.String("key", key),
		zap.Int("entries", len(dir)),
		zap.Uint64("revision", revision),
	)
	return revision, nil
}

// DeleteListing removes the listing of key. Watchers see the listing
// disappear.
func (s *Store) DeleteListing(ctx context.Context, key string) error {
	err := s.deleteListing(ctx, key)
	s.metrics.recordStore("delete", err)
	return err
}

func (s *Store) deleteListing(ctx context.Context, key string) error {
	full, err := kvKey(s.prefix, key)
	if err != nil {
		return err
	}
	if err := s.kv.Delete(ctx, full); err != nil {
		return fmt.Errorf("delete listing %q: %w", key, err)
	}
	s.logger.Debug("listing deleted", zap.String("key", key))
	return nil
}

// GetListing returns the stored listing of key, or ErrListingNotFound.
func (s *Store) GetListing(ctx context.Context, key string) (listing.Directory, error) {
	dir, err := s.getListing(ctx, key)
	s.metrics.recordStore("get", err)
	return dir, err
}

func (s *Store) getListing(ctx context.Context, key string) (listing.Directory, error) {
	full, err := kvKey(s.prefix, key)
	if err != nil {
		return nil, err
	}

	entry, err := s.kv.Get(ctx, full)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrListingNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("get listing %q: %w", key, err)
	}

	dir, err := DecodeDirectory(entry.Value())
	if err != nil {
		return nil, fmt.Errorf("listing %q: %w", key, err)
	}
	if dir == nil {
		return nil, fmt.Errorf("%w: %q", ErrListingNotFound, key)
	}
	return dir, nil
}

// Keys returns the directory keys with a stored listing, sorted.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	keys, err := s.keys(ctx)
	s.metrics.recordStore("keys", err)
	return keys, err
}

func (s *Store) keys(ctx context.Context) ([]string, error) {
	lister, err := s.kv.ListKeys(ctx)
	if errors.Is(err, jetstream.ErrNoKeysFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer lister.Stop()

	keys := []string{}
	for full := range lister.Keys() {
		if key, ok := directoryKey(s.prefix, full); ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
