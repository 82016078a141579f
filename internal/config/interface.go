package config

import (
	"context"

	"github.com/vk/varflow/internal/transform"
)

// Loader is the interface for a format-specific transform loader.
type Loader interface {
	// Load reads every source and returns its transform descriptors in
	// source order.
	Load(ctx context.Context, sources ...string) ([]*transform.Descriptor, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, sources ...string) ([]*transform.Descriptor, error)

func (f LoaderFunc) Load(ctx context.Context, sources ...string) ([]*transform.Descriptor, error) {
	return f(ctx, sources...)
}
