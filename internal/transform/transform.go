// Package transform defines the transform descriptor: the pre-extracted
// record a loader produces for every named computation and the graph builder
// consumes. The engine never looks inside Func; it only uses the output
// name, the declared types and the ordered input names.
package transform

import (
	"context"
	"fmt"

	"github.com/vk/varflow/internal/dataset"
	"github.com/zclconf/go-cty/cty"
)

// Func computes an output column from its input columns. args is keyed by
// input parameter name and rows is the number of rows in every column.
type Func func(ctx context.Context, rows int, args map[string]dataset.Column) (dataset.Column, error)

// Input is one parameter of a transform. Type is cty.DynamicPseudoType when
// the parameter is untyped.
type Input struct {
	Name string
	Type cty.Type
}

// Descriptor describes a single named transform.
type Descriptor struct {
	// Output is the name of the variable this transform produces.
	Output string
	// OutputType is the declared type of the output, or
	// cty.DynamicPseudoType when undeclared.
	OutputType cty.Type
	// Inputs lists the parameters in declaration order.
	Inputs []Input
	// Func is the body.
	Func Func

	// Source tells a human where the descriptor was defined.
	Source string
	// Fingerprint identifies the descriptor's content. Loaders set it so
	// that loading the same definition twice yields equivalent descriptors.
	// Zero means "compare by identity".
	Fingerprint uint64
	// RowLocal is true when every output row depends only on the same row
	// of the inputs.
	RowLocal bool
}

// New builds a descriptor whose inputs and output are untyped. Use the
// With* helpers to add types.
func New(output string, fn Func, inputs ...string) *Descriptor {
	d := &Descriptor{
		Output:     output,
		OutputType: cty.DynamicPseudoType,
		Func:       fn,
		Source:     "go:" + output,
	}
	for _, name := range inputs {
		d.Inputs = append(d.Inputs, Input{Name: name, Type: cty.DynamicPseudoType})
	}
	return d
}

// WithOutputType sets the declared output type and returns d.
func (d *Descriptor) WithOutputType(t cty.Type) *Descriptor {
	d.OutputType = t
	return d
}

// WithInputType sets the declared type of a named input and returns d. It
// panics when the input does not exist.
func (d *Descriptor) WithInputType(name string, t cty.Type) *Descriptor {
	for i := range d.Inputs {
		if d.Inputs[i].Name == name {
			d.Inputs[i].Type = t
			return d
		}
	}
	panic(fmt.Sprintf("transform %q has no input %q", d.Output, name))
}

// InputNames returns the parameter names in declaration order.
func (d *Descriptor) InputNames() []string {
	names := make([]string, len(d.Inputs))
	for i, in := range d.Inputs {
		names[i] = in.Name
	}
	return names
}

// SameProducer reports whether two descriptors define the same computation:
// either the same pointer or equal non-zero fingerprints.
func (d *Descriptor) SameProducer(other *Descriptor) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d == other {
		return true
	}
	return d.Fingerprint != 0 && d.Fingerprint == other.Fingerprint
}

// Validate checks the structural fields a graph builder relies on.
func (d *Descriptor) Validate() error {
	if d.Output == "" {
		return fmt.Errorf("transform from %s has no output name", d.Source)
	}
	if d.Func == nil {
		return fmt.Errorf("transform %q has no body", d.Output)
	}
	seen := make(map[string]struct{}, len(d.Inputs))
	for _, in := range d.Inputs {
		if in.Name == "" {
			return fmt.Errorf("transform %q has an unnamed input", d.Output)
		}
		if _, dup := seen[in.Name]; dup {
			return fmt.Errorf("transform %q lists input %q twice", d.Output, in.Name)
		}
		seen[in.Name] = struct{}{}
	}
	return nil
}

// RowWise lifts a per-row function into a Func. fn receives one value per
// input for a single row. The resulting descriptor body is row-local.
func RowWise(fn func(row map[string]cty.Value) (cty.Value, error)) Func {
	return func(ctx context.Context, rows int, args map[string]dataset.Column) (dataset.Column, error) {
		out := make(dataset.Column, rows)
		row := make(map[string]cty.Value, len(args))
		for i := 0; i < rows; i++ {
			if i%4096 == 0 && ctx.Err() != nil {
				return nil, ctx.Err()
			}
			for name, col := range args {
				row[name] = col[i]
			}
			v, err := fn(row)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			out[i] = v
		}
		return out, nil
	}
}
