// This file contains the logic for parsing HCL type expressions (e.g., `string`,
// `list(number)`) into their corresponding cty.Type objects.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/vk/varflow/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// typeExprToCtyType converts an HCL type expression into its cty.Type
// equivalent. An absent expression means `any`, which is
// cty.DynamicPseudoType.
func typeExprToCtyType(ctx context.Context, expr hcl.Expression) (cty.Type, error) {
	if !isExprDefined(expr) {
		return cty.DynamicPseudoType, nil
	}

	t, diags := typeexpr.TypeConstraint(expr)
	if diags.HasErrors() {
		return cty.DynamicPseudoType, fmt.Errorf("invalid type expression: %w", diags)
	}
	if (t.IsListType() || t.IsMapType() || t.IsSetType()) && t.ElementType().Equals(cty.DynamicPseudoType) {
		return cty.DynamicPseudoType, fmt.Errorf("collection types cannot contain type 'any'")
	}

	ctxlog.FromContext(ctx).Debug("Parsed type expression.", "type", t.FriendlyName())
	return t, nil
}
