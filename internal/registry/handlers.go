package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vk/varflow/internal/dataset"
	"github.com/vk/varflow/internal/transform"
)

// Handler is a Go column function that transform sources can name.
type Handler struct {
	Fn transform.Func
	// Arity is the number of inputs the handler expects. Zero means any.
	Arity int
	// RowLocal is true when each output row depends only on the same row
	// of the inputs, which makes the handler safe to run partitioned.
	RowLocal    bool
	Description string
}

// Register registers a handler under name. Registering a name twice is a
// programming error and panics.
func (r *Registry) Register(name string, h *Handler) {
	if _, exists := r.handlers[name]; exists {
		panic(fmt.Sprintf("handler with name '%s' already registered", name))
	}
	slog.Debug("Registering handler.", "name", name, "row_local", h.RowLocal)
	r.handlers[name] = h
}

// Unary adapts a single-column function to a transform.Func. The resulting
// function fails unless it receives exactly one input.
func Unary(fn func(ctx context.Context, col dataset.Column) (dataset.Column, error)) transform.Func {
	return func(ctx context.Context, rows int, args map[string]dataset.Column) (dataset.Column, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("expected exactly one input column, got %d", len(args))
		}
		var col dataset.Column
		for _, c := range args {
			col = c
		}
		return fn(ctx, col)
	}
}
