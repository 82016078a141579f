package dataset

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ParseCell converts a textual cell into a cty value. When t is a concrete
// type the text is converted to it and an empty cell becomes a typed null.
// When t is cty.DynamicPseudoType the type is inferred: numbers, then the
// literals true and false, then strings.
func ParseCell(s string, t cty.Type) (cty.Value, error) {
	if !t.Equals(cty.DynamicPseudoType) {
		if s == "" {
			return cty.NullVal(t), nil
		}
		v, err := convert.Convert(cty.StringVal(s), t)
		if err != nil {
			return cty.NilVal, fmt.Errorf("cannot read %q as %s: %w", s, t.FriendlyName(), err)
		}
		return v, nil
	}

	if s == "" {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	if n, err := cty.ParseNumberVal(strings.TrimSpace(s)); err == nil {
		return n, nil
	}
	switch s {
	case "true":
		return cty.True, nil
	case "false":
		return cty.False, nil
	}
	return cty.StringVal(s), nil
}

// FormatCell renders a value as text. Nulls render as the empty string,
// primitives use cty's string conversion and anything else is JSON.
func FormatCell(v cty.Value) (string, error) {
	if v.IsNull() {
		return "", nil
	}
	if v.Type().IsPrimitiveType() {
		s, err := convert.Convert(v, cty.String)
		if err != nil {
			return "", err
		}
		return s.AsString(), nil
	}
	buf, err := marshalCell(v)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// ToNative converts a value to plain Go data: nil, string, bool, int64 or
// float64, []any and map[string]any.
func ToNative(v cty.Value) any {
	if v.IsNull() || !v.IsKnown() {
		return nil
	}
	t := v.Type()
	switch {
	case t.Equals(cty.String):
		return v.AsString()
	case t.Equals(cty.Bool):
		return v.True()
	case t.Equals(cty.Number):
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i
			}
		}
		f, _ := bf.Float64()
		return f
	case t.IsListType() || t.IsSetType() || t.IsTupleType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			out = append(out, ToNative(ev))
		}
		return out
	case t.IsMapType() || t.IsObjectType():
		out := make(map[string]any)
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			out[k.AsString()] = ToNative(ev)
		}
		return out
	}
	return v.GoString()
}

// ColumnOf builds a column from Go values, implying each cell's type from
// its Go type. It is a convenience for programs that embed the engine.
func ColumnOf(values ...any) (Column, error) {
	col := make(Column, len(values))
	for i, gv := range values {
		if gv == nil {
			col[i] = cty.NullVal(cty.DynamicPseudoType)
			continue
		}
		ty, err := gocty.ImpliedType(gv)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		v, err := gocty.ToCtyValue(gv, ty)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		col[i] = v
	}
	return col, nil
}

// Numbers builds a number column.
func Numbers(values ...float64) Column {
	col := make(Column, len(values))
	for i, f := range values {
		col[i] = cty.NumberFloatVal(f)
	}
	return col
}
