// Package numeric registers row-local numeric handlers.
package numeric

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/vk/varflow/internal/dataset"
	"github.com/vk/varflow/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the handlers with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("sqrt", rowHandler("Square root.", func(f float64) (float64, error) {
		if f < 0 {
			return 0, fmt.Errorf("square root of negative number %g", f)
		}
		return math.Sqrt(f), nil
	}))
	r.Register("exp", rowHandler("Natural exponential.", func(f float64) (float64, error) {
		return math.Exp(f), nil
	}))
	r.Register("clip01", rowHandler("Clamp into [0, 1].", func(f float64) (float64, error) {
		return math.Min(1, math.Max(0, f)), nil
	}))
	r.Register("negate", rowHandler("Arithmetic negation.", func(f float64) (float64, error) {
		return -f, nil
	}))
}

func rowHandler(description string, fn func(float64) (float64, error)) *registry.Handler {
	return &registry.Handler{
		Fn: registry.Unary(func(ctx context.Context, col dataset.Column) (dataset.Column, error) {
			return Map(col, fn)
		}),
		Arity:       1,
		RowLocal:    true,
		Description: description,
	}
}

// Map applies fn to every number in col. Nulls stay null.
func Map(col dataset.Column, fn func(float64) (float64, error)) (dataset.Column, error) {
	out := make(dataset.Column, len(col))
	for i, v := range col {
		if v.IsNull() {
			out[i] = cty.NullVal(cty.Number)
			continue
		}
		f, err := Float(v)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		r, err := fn(f)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if math.IsNaN(r) {
			return nil, fmt.Errorf("row %d: result is not a number", i)
		}
		out[i] = cty.NumberFloatVal(r)
	}
	return out, nil
}

// Float reads a known, non-null number value as float64.
func Float(v cty.Value) (float64, error) {
	if !v.Type().Equals(cty.Number) {
		return 0, fmt.Errorf("expected number, got %s", v.Type().FriendlyName())
	}
	if !v.IsKnown() {
		return 0, errors.New("value is unknown")
	}
	f, _ := v.AsBigFloat().Float64()
	return f, nil
}
