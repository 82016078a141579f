package transform

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/varflow/internal/dataset"
	"github.com/zclconf/go-cty/cty"
)

func identity(ctx context.Context, rows int, args map[string]dataset.Column) (dataset.Column, error) {
	return args["x"], nil
}

func TestNew_DefaultsToUntyped(t *testing.T) {
	d := New("y", identity, "x")
	assert.True(t, d.OutputType.Equals(cty.DynamicPseudoType))
	require.Len(t, d.Inputs, 1)
	assert.True(t, d.Inputs[0].Type.Equals(cty.DynamicPseudoType))
	assert.Equal(t, []string{"x"}, d.InputNames())
}

func TestWithInputType_UnknownInputPanics(t *testing.T) {
	d := New("y", identity, "x")
	assert.Panics(t, func() { d.WithInputType("z", cty.Number) })
}

func TestSameProducer(t *testing.T) {
	a := New("y", identity, "x")
	b := New("y", identity, "x")

	assert.True(t, a.SameProducer(a))
	assert.False(t, a.SameProducer(b), "distinct descriptors without fingerprints differ")

	a.Fingerprint, b.Fingerprint = 42, 42
	assert.True(t, a.SameProducer(b))

	b.Fingerprint = 43
	assert.False(t, a.SameProducer(b))
	assert.False(t, a.SameProducer(nil))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		desc    *Descriptor
		wantErr string
	}{
		{"valid", New("y", identity, "x"), ""},
		{"no output", New("", identity), "no output name"},
		{"no body", New("y", nil, "x"), "has no body"},
		{"duplicate input", New("y", identity, "x", "x"), `lists input "x" twice`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.desc.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestRowWise(t *testing.T) {
	fn := RowWise(func(row map[string]cty.Value) (cty.Value, error) {
		if row["a"].IsNull() {
			return cty.NilVal, errors.New("null input")
		}
		return row["a"].Add(row["b"]), nil
	})

	out, err := fn(context.Background(), 2, map[string]dataset.Column{
		"a": dataset.Numbers(1, 2),
		"b": dataset.Numbers(10, 20),
	})
	require.NoError(t, err)
	assert.True(t, out[1].RawEquals(cty.NumberIntVal(22)))

	_, err = fn(context.Background(), 1, map[string]dataset.Column{
		"a": {cty.NullVal(cty.Number)},
		"b": dataset.Numbers(1),
	})
	assert.ErrorContains(t, err, "row 0: null input")
}
