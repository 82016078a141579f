package hcl_adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/hcl/v2"
	"github.com/vk/varflow/internal/ctxlog"
	"github.com/vk/varflow/internal/transform"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// translateTransform turns a decoded transform block into a descriptor.
// src is the content of the file the block came from.
func (l *Loader) translateTransform(ctx context.Context, src []byte, t *Transform) (*transform.Descriptor, error) {
	logger := ctxlog.FromContext(ctx).With("transform", t.Name)
	where := fmt.Sprintf("%s:%d", t.DeclRange.Filename, t.DeclRange.Start.Line)

	outType, err := typeExprToCtyType(ctx, t.Type)
	if err != nil {
		return nil, fmt.Errorf("transform '%s' at %s: %w", t.Name, where, err)
	}

	d := &transform.Descriptor{
		Output:     t.Name,
		OutputType: outType,
		Source:     where,
	}
	for _, in := range t.Inputs {
		inType, err := typeExprToCtyType(ctx, in.Type)
		if err != nil {
			return nil, fmt.Errorf("transform '%s' at %s, input '%s': %w", t.Name, where, in.Name, err)
		}
		d.Inputs = append(d.Inputs, transform.Input{Name: in.Name, Type: inType})
	}

	hasExpr := isExprDefined(t.Expr)
	hasHandler := t.Handler != ""
	switch {
	case hasExpr && hasHandler:
		return nil, fmt.Errorf("transform '%s' at %s: set either expr or handler, not both", t.Name, where)
	case hasExpr:
		if err := l.bindExpr(d, t.Expr); err != nil {
			return nil, fmt.Errorf("transform '%s' at %s: %w", t.Name, where, err)
		}
	case hasHandler:
		if err := l.bindHandler(d, t.Handler); err != nil {
			return nil, fmt.Errorf("transform '%s' at %s: %w", t.Name, where, err)
		}
	default:
		return nil, fmt.Errorf("transform '%s' at %s: one of expr or handler is required", t.Name, where)
	}

	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", where, err)
	}
	d.Fingerprint = fingerprint(src, t)

	logger.Debug("Translated transform.", "inputs", d.InputNames(), "type", outType.FriendlyName(), "row_local", d.RowLocal)
	return d, nil
}

// bindExpr makes the expression the descriptor's body. Variables the
// expression references that are not declared inputs become untyped inputs.
func (l *Loader) bindExpr(d *transform.Descriptor, expr hcl.Expression) error {
	for _, name := range calledFunctions(expr) {
		if _, ok := l.functions[name]; !ok {
			return fmt.Errorf("expr calls unknown function %q", name)
		}
	}

	declared := make(map[string]struct{}, len(d.Inputs))
	for _, in := range d.Inputs {
		declared[in.Name] = struct{}{}
	}
	for _, name := range rootReferences(expr) {
		if _, ok := declared[name]; !ok {
			d.Inputs = append(d.Inputs, transform.Input{Name: name, Type: cty.DynamicPseudoType})
		}
	}

	d.Func = evalExpr(expr, l.functions)
	d.RowLocal = true
	return nil
}

func (l *Loader) bindHandler(d *transform.Descriptor, name string) error {
	if l.registry == nil {
		return fmt.Errorf("handler %q cannot be used: no handlers are registered", name)
	}
	h, ok := l.registry.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown handler %q", name)
	}
	if h.Arity > 0 && len(d.Inputs) != h.Arity {
		return fmt.Errorf("handler %q expects %d input(s), %d declared", name, h.Arity, len(d.Inputs))
	}
	d.Func = h.Fn
	d.RowLocal = h.RowLocal
	return nil
}

// evalExpr evaluates expr once per row with the row's input values as
// variables.
func evalExpr(expr hcl.Expression, functions map[string]function.Function) transform.Func {
	return transform.RowWise(func(row map[string]cty.Value) (cty.Value, error) {
		v, diags := expr.Value(&hcl.EvalContext{Variables: row, Functions: functions})
		if diags.HasErrors() {
			return cty.NilVal, diags
		}
		if !v.IsWhollyKnown() {
			return cty.NilVal, errors.New("expression result is unknown")
		}
		return v, nil
	})
}

// fingerprint hashes the source text of everything that defines the
// transform, so the same block loaded twice yields the same value.
func fingerprint(src []byte, t *Transform) uint64 {
	h := xxhash.New()
	write := func(s string) {
		_, _ = h.WriteString(s)
		_, _ = h.Write([]byte{0})
	}
	text := func(expr hcl.Expression) string {
		if expr == nil {
			return ""
		}
		r := expr.Range()
		if r.End.Byte <= r.Start.Byte || r.End.Byte > len(src) {
			return ""
		}
		return string(r.SliceBytes(src))
	}

	write(t.Name)
	write(text(t.Type))
	for _, in := range t.Inputs {
		write(in.Name)
		write(text(in.Type))
	}
	write(text(t.Expr))
	write(t.Handler)
	return h.Sum64()
}
