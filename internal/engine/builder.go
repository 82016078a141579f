package engine

import (
	"errors"

	"github.com/vk/varflow/internal/dag"
	"github.com/vk/varflow/internal/node"
	"github.com/vk/varflow/internal/transform"
)

// builder stages one Add call on private copies of the node table and the
// topology.
type builder struct {
	nodes map[string]*node.Node
	topo  *dag.Graph
}

func (b *builder) add(d *transform.Descriptor) error {
	if d == nil {
		return &GraphError{Reason: ReasonInvalidDescriptor, Err: errors.New("nil descriptor")}
	}
	if err := d.Validate(); err != nil {
		return &GraphError{Reason: ReasonInvalidDescriptor, Variable: d.Output, Err: err}
	}

	if err := b.merge(node.Produced(d)); err != nil {
		return err
	}
	for _, in := range d.Inputs {
		if err := b.merge(node.Incomplete(in.Name, in.Type)); err != nil {
			return err
		}
		if err := b.topo.AddEdge(in.Name, d.Output); err != nil {
			if errors.Is(err, dag.ErrCycle) {
				return &GraphError{Reason: ReasonCycle, Variable: d.Output, Err: err}
			}
			return &GraphError{Reason: ReasonInvalidDescriptor, Variable: d.Output, Err: err}
		}
	}
	return nil
}

func (b *builder) merge(incoming *node.Node) error {
	existing, ok := b.nodes[incoming.Name]
	if !ok {
		b.nodes[incoming.Name] = incoming
		b.topo.AddNode(incoming.Name)
		return nil
	}

	_, err := existing.Merge(incoming)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, node.ErrTypeConflict):
		return &GraphError{Reason: ReasonTypeConflict, Variable: incoming.Name, Err: err}
	case errors.Is(err, node.ErrDuplicateDefinition):
		return &GraphError{Reason: ReasonDuplicateDefinition, Variable: incoming.Name, Err: err}
	default:
		return &GraphError{Reason: ReasonInvalidDescriptor, Variable: incoming.Name, Err: err}
	}
}
