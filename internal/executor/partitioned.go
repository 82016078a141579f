package executor

import (
	"context"
	"fmt"
	"runtime"

	"github.com/vk/varflow/internal/ctxlog"
	"github.com/vk/varflow/internal/dataset"
	"github.com/vk/varflow/internal/plan"
	"github.com/vk/varflow/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// PartitionOptions configures ApplyPartitioned.
type PartitionOptions struct {
	// Size is the maximum number of rows per partition. Must be positive.
	Size int
	// Workers bounds the number of partitions processed at once.
	// Default: runtime.NumCPU().
	Workers int
}

// ApplyPartitioned splits ds into contiguous partitions of at most
// opts.Size rows, applies p to each partition independently and returns the
// partitions concatenated in their original order. ds itself is never
// modified. Every step must be row-local for the result to match Apply.
//
// The first failing partition cancels the rest and its error is returned.
func (e *Executor) ApplyPartitioned(ctx context.Context, p *plan.Plan, ds *dataset.Dataset, opts PartitionOptions) (*dataset.Dataset, error) {
	if opts.Size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPartitionSize, opts.Size)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	if err := CheckMissing(p, ds); err != nil {
		return nil, err
	}

	logger := ctxlog.FromContext(ctx)
	if names := p.NonRowLocal(); len(names) > 0 {
		logger.Warn("Steps that are not row-local may produce different results when partitioned.", "variables", names)
	}

	parts, err := ds.Split(opts.Size)
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, tracing.SpanPartitioned, trace.WithAttributes(
		attribute.Int(tracing.AttrRows, ds.Len()),
		attribute.Int(tracing.AttrPartitions, len(parts)),
		attribute.Int(tracing.AttrWorkers, workers),
	))
	defer span.End()

	logger.Info("Applying plan in partitions.", "rows", ds.Len(), "partitions", len(parts), "partition_size", opts.Size, "workers", workers)

	results := make([]*dataset.Dataset, len(parts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, part := range parts {
		g.Go(func() error {
			pctx, pspan := tracer.Start(gctx, tracing.SpanPartition,
				trace.WithAttributes(attribute.Int(tracing.AttrPartition, i)))
			defer pspan.End()
			pctx = ctxlog.With(pctx, "partition", i)

			if err := pctx.Err(); err != nil {
				return err
			}
			out, err := e.Apply(pctx, p, part)
			if err != nil {
				recordError(pspan, err)
				return fmt.Errorf("partition %d: %w", i, err)
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		recordError(span, err)
		return nil, err
	}

	out, err := dataset.Concat(results...)
	if err != nil {
		return nil, fmt.Errorf("failed to reassemble partitions: %w", err)
	}
	logger.Debug("Partitions reassembled.", "rows", out.Len())
	return out, nil
}
