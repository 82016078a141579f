package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/varflow/internal/ctxlog"
)

// ValidateRegistry checks that every registered handler is usable.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []error
	for _, name := range r.Names() {
		h := r.handlers[name]
		if h.Fn == nil {
			errs = append(errs, fmt.Errorf("handler '%s': no function registered", name))
		}
		if h.Arity < 0 {
			errs = append(errs, fmt.Errorf("handler '%s': negative arity %d", name, h.Arity))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Registry validated.", "handlers", len(r.handlers))
	return nil
}
