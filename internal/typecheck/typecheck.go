// Package typecheck validates columns against declared cty types.
package typecheck

import (
	"errors"
	"fmt"

	"github.com/vk/varflow/internal/dataset"
	"github.com/zclconf/go-cty/cty"
)

// ErrTypeMismatch is wrapped by every error a Checker returns for a column
// that does not conform.
var ErrTypeMismatch = errors.New("type mismatch")

// Checker decides whether a column conforms to a declared type.
type Checker interface {
	Check(col dataset.Column, t cty.Type) error
}

// Conformance accepts nulls and any value whose type conforms to the
// declared type. cty.DynamicPseudoType accepts everything.
type Conformance struct{}

// Default is the checker used when none is configured.
var Default Checker = Conformance{}

func (Conformance) Check(col dataset.Column, t cty.Type) error {
	if t == cty.NilType || t.Equals(cty.DynamicPseudoType) {
		return nil
	}
	for i, v := range col {
		if v.IsNull() {
			continue
		}
		if errs := v.Type().TestConformance(t); len(errs) > 0 {
			return fmt.Errorf("%w: row %d holds %s, expected %s",
				ErrTypeMismatch, i, v.Type().FriendlyName(), t.FriendlyName())
		}
	}
	return nil
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(col dataset.Column, t cty.Type) error

func (f CheckerFunc) Check(col dataset.Column, t cty.Type) error {
	return f(col, t)
}
