// Package node implements the variable node: one named column of the graph,
// its declared type and the transform that produces it, if any.
package node

import (
	"errors"
	"fmt"

	"github.com/vk/varflow/internal/transform"
	"github.com/zclconf/go-cty/cty"
)

var (
	// ErrTypeConflict means two occurrences of a name declare different types.
	ErrTypeConflict = errors.New("type conflict")
	// ErrDuplicateDefinition means two different transforms produce one name.
	ErrDuplicateDefinition = errors.New("duplicate definition")
	// ErrNameMismatch means Merge was called with a node of another name.
	ErrNameMismatch = errors.New("cannot merge nodes with different names")
)

// Node is a single variable in the dependency graph.
type Node struct {
	// Name is unique within a graph.
	Name string
	// Type is the declared type, or cty.DynamicPseudoType when undeclared.
	Type cty.Type
	// Producer is the transform that computes the variable. It is nil for
	// variables supplied by the input dataset.
	Producer *transform.Descriptor
}

// Incomplete returns a node for a name that is only consumed.
func Incomplete(name string, t cty.Type) *Node {
	return &Node{Name: name, Type: normalize(t)}
}

// Produced returns a complete node for the output of d.
func Produced(d *transform.Descriptor) *Node {
	return &Node{Name: d.Output, Type: normalize(d.OutputType), Producer: d}
}

// normalize maps the zero cty.Type to cty.DynamicPseudoType.
func normalize(t cty.Type) cty.Type {
	if t == cty.NilType {
		return cty.DynamicPseudoType
	}
	return t
}

// Complete reports whether the node has a producing transform.
func (n *Node) Complete() bool {
	return n.Producer != nil
}

// Typed reports whether the node carries a declared type.
func (n *Node) Typed() bool {
	return !n.Type.Equals(cty.DynamicPseudoType)
}

// SameName reports whether both nodes refer to the same variable.
func (n *Node) SameName(other *Node) bool {
	return n.Name == other.Name
}

// Equivalent reports whether both nodes have the same name, the same
// declared type and the same producer.
func (n *Node) Equivalent(other *Node) bool {
	if !n.SameName(other) || !n.Type.Equals(other.Type) {
		return false
	}
	if n.Complete() != other.Complete() {
		return false
	}
	return !n.Complete() || n.Producer.SameProducer(other.Producer)
}

// Merge folds a newly seen occurrence of the same variable into n. It
// returns true when n changed.
//
// An incomplete incoming node only contributes its type. A complete one also
// contributes its producer, unless n already has a different producer.
func (n *Node) Merge(incoming *Node) (bool, error) {
	if !n.SameName(incoming) {
		return false, fmt.Errorf("%w: %q and %q", ErrNameMismatch, n.Name, incoming.Name)
	}
	if n.Equivalent(incoming) {
		return false, nil
	}

	if n.Typed() && incoming.Typed() && !n.Type.Equals(incoming.Type) {
		return false, fmt.Errorf("%w: variable %q declared as %s and %s",
			ErrTypeConflict, n.Name, n.Type.FriendlyName(), incoming.Type.FriendlyName())
	}
	adoptType := !n.Typed() && incoming.Typed()

	if !incoming.Complete() {
		if adoptType {
			n.Type = incoming.Type
		}
		return adoptType, nil
	}
	if n.Complete() && !n.Producer.SameProducer(incoming.Producer) {
		return false, fmt.Errorf("%w: variable %q is produced by %s and by %s",
			ErrDuplicateDefinition, n.Name, n.Producer.Source, incoming.Producer.Source)
	}

	changed := adoptType
	if adoptType {
		n.Type = incoming.Type
	}
	if !n.Complete() {
		n.Producer = incoming.Producer
		changed = true
	}
	return changed, nil
}

// Clone returns a shallow copy. The producer is shared.
func (n *Node) Clone() *Node {
	c := *n
	return &c
}

func (n *Node) String() string {
	state := "incomplete"
	if n.Complete() {
		state = "complete"
	}
	return fmt.Sprintf("%s (%s, %s)", n.Name, n.Type.FriendlyName(), state)
}
