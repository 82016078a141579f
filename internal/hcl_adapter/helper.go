package hcl_adapter

import (
	"github.com/hashicorp/hcl/v2"
)

// isExprDefined reports whether an optional attribute was written in the
// source. gohcl fills omitted attributes with a zero-width placeholder
// expression, so a nil check alone is not enough.
func isExprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	return r.End.Byte > r.Start.Byte
}
