// Package stats registers column-wide statistical handlers. Their output
// rows depend on the whole column, so they are not row-local and give
// different results when the dataset is partitioned.
package stats

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/vk/varflow/internal/dataset"
	"github.com/vk/varflow/internal/registry"
	"github.com/vk/varflow/modules/numeric"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the handlers with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("cumsum", columnHandler("Running sum in row order; nulls are skipped.", CumSum))
	r.Register("zscore", columnHandler("Standard score against the column mean and population deviation.", ZScore))
	r.Register("decile", columnHandler("Decile bucket 0-9 from column quantiles; duplicate edges are dropped.", Decile))
	r.Register("rank", columnHandler("1-based rank in ascending order; ties share the lowest rank.", Rank))
}

func columnHandler(description string, fn func(values []float64, present []bool) []float64) *registry.Handler {
	return &registry.Handler{
		Fn: registry.Unary(func(ctx context.Context, col dataset.Column) (dataset.Column, error) {
			values, present, err := floats(col)
			if err != nil {
				return nil, err
			}
			return column(fn(values, present), present)
		}),
		Arity:       1,
		Description: description,
	}
}

// CumSum returns the running sum over present values.
func CumSum(values []float64, present []bool) []float64 {
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		if present[i] {
			sum += v
			out[i] = sum
		}
	}
	return out
}

// ZScore returns (v - mean) / stddev. A constant column scores zero.
func ZScore(values []float64, present []bool) []float64 {
	var sum, n float64
	for i, v := range values {
		if present[i] {
			sum += v
			n++
		}
	}
	out := make([]float64, len(values))
	if n == 0 {
		return out
	}
	mean := sum / n
	var sq float64
	for i, v := range values {
		if present[i] {
			sq += (v - mean) * (v - mean)
		}
	}
	std := math.Sqrt(sq / n)
	for i, v := range values {
		if present[i] && std > 0 {
			out[i] = (v - mean) / std
		}
	}
	return out
}

// Decile assigns each value the index of the quantile bin it falls in.
// Bin edges are the 0, 10, ..., 100th percentiles with linear
// interpolation; equal edges collapse, so a column with few distinct values
// uses fewer than ten bins.
func Decile(values []float64, present []bool) []float64 {
	sorted := presentSorted(values, present)
	out := make([]float64, len(values))
	if len(sorted) == 0 {
		return out
	}

	var edges []float64
	for q := 0; q <= 10; q++ {
		e := quantile(sorted, float64(q)/10)
		if len(edges) == 0 || e > edges[len(edges)-1] {
			edges = append(edges, e)
		}
	}
	if len(edges) == 1 {
		return out
	}

	upper := edges[1:]
	for i, v := range values {
		if !present[i] {
			continue
		}
		bin := sort.SearchFloat64s(upper, v)
		out[i] = float64(min(bin, len(upper)-1))
	}
	return out
}

// Rank returns the 1-based ascending rank; equal values share the lowest
// rank.
func Rank(values []float64, present []bool) []float64 {
	sorted := presentSorted(values, present)
	out := make([]float64, len(values))
	for i, v := range values {
		if present[i] {
			out[i] = float64(sort.SearchFloat64s(sorted, v) + 1)
		}
	}
	return out
}

func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

func presentSorted(values []float64, present []bool) []float64 {
	var out []float64
	for i, v := range values {
		if present[i] {
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}

func floats(col dataset.Column) ([]float64, []bool, error) {
	values := make([]float64, len(col))
	present := make([]bool, len(col))
	for i, v := range col {
		if v.IsNull() {
			continue
		}
		f, err := numeric.Float(v)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i, err)
		}
		values[i], present[i] = f, true
	}
	return values, present, nil
}

// column converts results back to cells. Overflowing inputs can yield NaN
// or Inf; both are rejected rather than stored.
func column(values []float64, present []bool) (dataset.Column, error) {
	out := make(dataset.Column, len(values))
	for i, v := range values {
		if !present[i] {
			out[i] = cty.NullVal(cty.Number)
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("row %d: result is not a finite number", i)
		}
		out[i] = cty.NumberFloatVal(v)
	}
	return out, nil
}
