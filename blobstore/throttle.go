package blobstore

import (
	"context"

	"golang.org/x/time/rate"
)

// Throttled wraps a BlobStore with a request rate limit. Useful when many
// sweep runs checkpoint against a shared remote store.
type Throttled struct {
	inner   BlobStore
	limiter *rate.Limiter
}

// NewThrottled limits operations on inner to the given rate.
func NewThrottled(inner BlobStore, limit rate.Limit, burst int) *Throttled {
	return &Throttled{
		inner:   inner,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Put implements BlobStore.
func (t *Throttled) Put(ctx context.Context, name string, data []byte) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	return t.inner.Put(ctx, name, data)
}

// Get implements BlobStore.
func (t *Throttled) Get(ctx context.Context, name string) ([]byte, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.inner.Get(ctx, name)
}

// Delete implements BlobStore.
func (t *Throttled) Delete(ctx context.Context, name string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	return t.inner.Delete(ctx, name)
}

// List implements BlobStore.
func (t *Throttled) List(ctx context.Context, prefix string) ([]string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.inner.List(ctx, prefix)
}
