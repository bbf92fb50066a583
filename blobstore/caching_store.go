package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
)

// CachingStore layers a read-through cache over a remote Store. Archives
// are content-addressed and immutable, so a cache hit never needs
// revalidation; only the CURRENT pointer must bypass the cache.
type CachingStore struct {
	remote Store
	cache  Store
	// skip reports names that must never be served from cache, such as
	// mutable pointer objects.
	skip func(name string) bool
}

// NewCachingStore creates a read-through cache over remote backed by
// cache. skip may be nil.
func NewCachingStore(remote, cache Store, skip func(name string) bool) *CachingStore {
	return &CachingStore{remote: remote, cache: cache, skip: skip}
}

var _ Store = (*CachingStore)(nil)

func (s *CachingStore) cacheable(name string) bool {
	return s.skip == nil || !s.skip(name)
}

// Put writes through to the remote and refreshes the cache.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	if err := s.remote.Put(ctx, name, data); err != nil {
		return err
	}
	if s.cacheable(name) {
		// Cache population is best effort; the remote holds the truth.
		_ = s.cache.Put(ctx, name, data)
	} else {
		_ = s.cache.Delete(ctx, name)
	}
	return nil
}

// Open serves from the cache when possible and falls back to the remote,
// populating the cache on the way out.
func (s *CachingStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if s.cacheable(name) {
		rc, err := s.cache.Open(ctx, name)
		if err == nil {
			return rc, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	rc, err := s.remote.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	if s.cacheable(name) {
		_ = s.cache.Put(ctx, name, data)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// List always consults the remote; the cache may lag.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.remote.List(ctx, prefix)
}

// Delete removes the blob from both stores.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	if err := s.remote.Delete(ctx, name); err != nil {
		return err
	}
	return s.cache.Delete(ctx, name)
}
