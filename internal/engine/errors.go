package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrGraphConstruction is matched by every *GraphError.
	ErrGraphConstruction = errors.New("graph construction failed")
	// ErrIllegalState is returned for Add after Plan and Apply before Plan.
	ErrIllegalState = errors.New("illegal state")
)

// Reason classifies a GraphError.
type Reason string

const (
	// ReasonDuplicateDefinition: two different transforms produce the same variable.
	ReasonDuplicateDefinition Reason = "duplicate definition"
	// ReasonTypeConflict: a variable is declared with two different types.
	ReasonTypeConflict Reason = "type conflict"
	// ReasonCycle: the new edges would make the graph cyclic.
	ReasonCycle Reason = "cycle"
	// ReasonInvalidDescriptor: a descriptor failed its own validation.
	ReasonInvalidDescriptor Reason = "invalid descriptor"
)

// GraphError reports why a batch of descriptors could not be added. The
// graph is left as it was before the call.
type GraphError struct {
	Reason   Reason
	Variable string
	Err      error
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("cannot add %q to graph (%s): %v", e.Variable, e.Reason, e.Err)
}

func (e *GraphError) Unwrap() error { return e.Err }

func (e *GraphError) Is(target error) bool { return target == ErrGraphConstruction }
