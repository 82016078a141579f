package hcl_adapter

import (
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// rowFunctions returns the functions available to `expr` bodies. They are all
// pure functions of their arguments.
func rowFunctions() map[string]function.Function {
	return map[string]function.Function{
		"abs":       stdlib.AbsoluteFunction,
		"ceil":      stdlib.CeilFunction,
		"floor":     stdlib.FloorFunction,
		"log":       stdlib.LogFunction,
		"max":       stdlib.MaxFunction,
		"min":       stdlib.MinFunction,
		"pow":       stdlib.PowFunction,
		"signum":    stdlib.SignumFunction,
		"parseint":  stdlib.ParseIntFunction,
		"upper":     stdlib.UpperFunction,
		"lower":     stdlib.LowerFunction,
		"strlen":    stdlib.StrlenFunction,
		"substr":    stdlib.SubstrFunction,
		"trimspace": stdlib.TrimSpaceFunction,
		"format":    stdlib.FormatFunction,
		"join":      stdlib.JoinFunction,
		"split":     stdlib.SplitFunction,
		"coalesce":  stdlib.CoalesceFunction,
	}
}
