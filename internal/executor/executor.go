// Package executor applies an execution plan to a dataset, either as one
// unit or split into row partitions processed in parallel.
package executor

import (
	"context"
	"fmt"
	"slices"

	"github.com/vk/varflow/internal/ctxlog"
	"github.com/vk/varflow/internal/dataset"
	"github.com/vk/varflow/internal/plan"
	"github.com/vk/varflow/internal/tracing"
	"github.com/vk/varflow/internal/typecheck"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/vk/varflow/internal/executor")

// Executor runs plans. The zero value is not usable; call New.
type Executor struct {
	checker         typecheck.Checker
	allowUndeclared bool
	validateColumns bool
}

// Option configures an Executor.
type Option func(*Executor)

// WithChecker replaces the default type checker.
func WithChecker(c typecheck.Checker) Option {
	return func(e *Executor) { e.checker = c }
}

// WithAllowUndeclared controls whether dataset columns unknown to the plan
// are tolerated. Default: true.
func WithAllowUndeclared(allow bool) Option {
	return func(e *Executor) { e.allowUndeclared = allow }
}

// WithColumnValidation controls whether input columns are checked against
// their declared types before any step runs. Default: true.
func WithColumnValidation(enabled bool) Option {
	return func(e *Executor) { e.validateColumns = enabled }
}

// New creates an Executor.
func New(opts ...Option) *Executor {
	e := &Executor{
		checker:         typecheck.Default,
		allowUndeclared: true,
		validateColumns: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply runs every step of p against ds, writing each computed column into
// ds. It is not transactional: when a step fails, ds keeps the columns
// computed before it, and a result that fails its declared type stays
// written. The returned dataset is ds.
func (e *Executor) Apply(ctx context.Context, p *plan.Plan, ds *dataset.Dataset) (*dataset.Dataset, error) {
	ctx, span := tracer.Start(ctx, tracing.SpanApply, trace.WithAttributes(
		attribute.Int(tracing.AttrRows, ds.Len()),
		attribute.Int(tracing.AttrSteps, len(p.Steps)),
	))
	defer span.End()

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Applying plan.", "rows", ds.Len(), "columns", len(ds.Names()), "steps", len(p.Steps))

	if err := CheckMissing(p, ds); err != nil {
		recordError(span, err)
		return ds, err
	}
	if err := e.validate(ctx, p, ds); err != nil {
		recordError(span, err)
		return ds, err
	}

	for i := range p.Steps {
		if err := ctx.Err(); err != nil {
			recordError(span, err)
			return ds, err
		}
		if err := e.runStep(ctx, &p.Steps[i], ds); err != nil {
			recordError(span, err)
			return ds, err
		}
	}

	logger.Debug("Plan applied.", "rows", ds.Len(), "columns", len(ds.Names()))
	return ds, nil
}

// CheckMissing returns a *DataError naming every initial variable of p that
// ds does not supply.
func CheckMissing(p *plan.Plan, ds *dataset.Dataset) error {
	var missing []string
	for _, name := range p.Initial {
		if !ds.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return &DataError{Missing: missing}
}

func (e *Executor) validate(ctx context.Context, p *plan.Plan, ds *dataset.Dataset) error {
	if !e.validateColumns {
		return nil
	}
	logger := ctxlog.FromContext(ctx)

	var undeclared []string
	for _, name := range ds.Names() {
		t, known := p.TypeOf(name)
		if !known {
			undeclared = append(undeclared, name)
			continue
		}
		col, _ := ds.Column(name)
		if err := e.checker.Check(col, t); err != nil {
			return &DataError{Column: name, Err: err}
		}
	}
	if len(undeclared) > 0 {
		if !e.allowUndeclared {
			return &DataError{Undeclared: undeclared}
		}
		logger.Debug("Dataset has columns unknown to the plan.", "columns", undeclared)
	}
	return nil
}

func (e *Executor) runStep(ctx context.Context, step *plan.Step, ds *dataset.Dataset) error {
	ctx, span := tracer.Start(ctx, tracing.SpanStepPrefix+step.Name,
		trace.WithAttributes(attribute.String(tracing.AttrVariable, step.Name)))
	defer span.End()

	logger := ctxlog.FromContext(ctx).With("variable", step.Name)
	logger.Debug("Running step.", "inputs", step.Inputs)

	args := make(map[string]dataset.Column, len(step.Inputs))
	for _, in := range step.Inputs {
		col, ok := ds.Column(in)
		if !ok {
			// Every input is either initial or computed earlier in the plan.
			err := &TransformError{Variable: step.Name, Source: step.Source, Err: fmt.Errorf("input column %q not available", in)}
			recordError(span, err)
			return err
		}
		args[in] = col
	}

	out, err := callFunc(ctx, step, ds.Len(), args)
	if err != nil {
		err = &TransformError{Variable: step.Name, Source: step.Source, Err: err}
		recordError(span, err)
		return err
	}
	if err := ds.Set(step.Name, out); err != nil {
		err = &TransformError{Variable: step.Name, Source: step.Source, Err: err}
		recordError(span, err)
		return err
	}
	if err := e.checker.Check(out, step.Type); err != nil {
		logger.Warn("Computed column does not match its declared type.", "error", err)
		err = &TransformError{Variable: step.Name, Source: step.Source, Err: err}
		recordError(span, err)
		return err
	}

	logger.Debug("Step finished.")
	return nil
}

// callFunc runs a step body and reports a panic in it as an error.
func callFunc(ctx context.Context, step *plan.Step, rows int, args map[string]dataset.Column) (out dataset.Column, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrTransformPanicked, r)
		}
	}()
	return step.Func(ctx, rows, args)
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
