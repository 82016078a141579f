// Package plan holds the frozen result of planning: which columns must be
// supplied and which steps compute the rest, in execution order.
package plan

import (
	"maps"

	"github.com/vk/varflow/internal/transform"
	"github.com/zclconf/go-cty/cty"
)

// Step computes one variable.
type Step struct {
	Name string
	Type cty.Type
	// Inputs are the dependency names in the order the producer declares them.
	Inputs []string
	Func   transform.Func
	// Source and RowLocal are copied from the producing descriptor.
	Source   string
	RowLocal bool
}

// Plan is an immutable execution plan.
type Plan struct {
	// Initial lists, sorted, the variables the input dataset must supply.
	Initial []string
	// Steps lists computed variables in dependency order.
	Steps []Step
	// Types maps every variable to its declared type.
	Types map[string]cty.Type
}

// TypeOf returns the declared type of a variable and whether the plan knows
// the variable at all.
func (p *Plan) TypeOf(name string) (cty.Type, bool) {
	t, ok := p.Types[name]
	return t, ok
}

// Empty reports whether the plan has nothing to do.
func (p *Plan) Empty() bool {
	return len(p.Initial) == 0 && len(p.Steps) == 0
}

// Schema returns the declared types of the initial variables that have one,
// suitable for reading an input dataset.
func (p *Plan) Schema() map[string]cty.Type {
	schema := make(map[string]cty.Type, len(p.Initial))
	for _, name := range p.Initial {
		if t := p.Types[name]; !t.Equals(cty.DynamicPseudoType) {
			schema[name] = t
		}
	}
	return schema
}

// Names returns the computed variable names in execution order.
func (p *Plan) Names() []string {
	names := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		names[i] = s.Name
	}
	return names
}

// NonRowLocal returns the steps whose body depends on rows other than its own.
func (p *Plan) NonRowLocal() []string {
	var names []string
	for _, s := range p.Steps {
		if !s.RowLocal {
			names = append(names, s.Name)
		}
	}
	return names
}

// TypesCopy returns a copy of the type table.
func (p *Plan) TypesCopy() map[string]cty.Type {
	return maps.Clone(p.Types)
}
