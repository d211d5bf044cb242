package landmark

import (
	"context"
	"image"
	"sync"
)

// SerializedProvider guards a model instance that is not reentrant.
// Only one Detect call reaches the wrapped provider at a time.
type SerializedProvider struct {
	mu    sync.Mutex
	inner Provider
}

// NewSerializedProvider wraps inner
func NewSerializedProvider(inner Provider) *SerializedProvider {
	return &SerializedProvider{inner: inner}
}

// Detect implements Provider
func (s *SerializedProvider) Detect(ctx context.Context, img image.Image) (*Pose, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.inner.Detect(ctx, img)
}

// CheckHealth forwards to the wrapped provider when it supports health checks
func (s *SerializedProvider) CheckHealth(ctx context.Context) error {
	if hc, ok := s.inner.(interface {
		CheckHealth(ctx context.Context) error
	}); ok {
		return hc.CheckHealth(ctx)
	}
	return nil
}
