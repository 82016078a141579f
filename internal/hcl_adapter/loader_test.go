package hcl_adapter

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/varflow/internal/dataset"
	"github.com/vk/varflow/internal/engine"
	"github.com/vk/varflow/internal/registry"
	"github.com/vk/varflow/internal/transform"
	"github.com/vk/varflow/modules/numeric"
	"github.com/zclconf/go-cty/cty"
)

const exampleHCL = `
transform "var1" {
  type = number
  input "a" {
    type = number
  }
  input "b" {
    type = number
  }
  expr = a + b
}

transform "var2" {
  type = number
  expr = var1 * c
}

transform "var3" {
  expr = var2 - a
}

transform "var0" {
  description = "Larger of var1 and var2."
  expr        = max(var1, var2)
}

transform "root" {
  handler = "sqrt"
  input "var3" {}
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestLoader() *Loader {
	return NewLoader(registry.New().Use(&numeric.Module{}))
}

func floats(t *testing.T, col dataset.Column) []float64 {
	t.Helper()
	out := make([]float64, len(col))
	for i, v := range col {
		f, err := numeric.Float(v)
		require.NoError(t, err)
		out[i] = f
	}
	return out
}

func byOutput(descs []*transform.Descriptor) map[string]*transform.Descriptor {
	m := make(map[string]*transform.Descriptor, len(descs))
	for _, d := range descs {
		m[d.Output] = d
	}
	return m
}

func TestLoad_EndToEnd(t *testing.T) {
	ctx := context.Background()
	path := writeFile(t, t.TempDir(), "example.hcl", exampleHCL)

	e := engine.New()
	require.NoError(t, e.AddSources(ctx, newTestLoader(), path))

	p, err := e.Plan(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, p.Initial)
	assert.Equal(t, []string{"var1", "var2", "var3", "var0", "root"}, p.Names())

	ds, err := dataset.FromColumns([]string{"a", "b", "c"}, map[string]dataset.Column{
		"a": dataset.Numbers(1, 2),
		"b": dataset.Numbers(2, 3),
		"c": dataset.Numbers(3, 4),
	})
	require.NoError(t, err)

	out, err := e.Apply(ctx, ds)
	require.NoError(t, err)

	col := func(name string) []float64 {
		c, ok := out.Column(name)
		require.True(t, ok, "column %s", name)
		return floats(t, c)
	}
	assert.Equal(t, []float64{3, 5}, col("var1"))
	assert.Equal(t, []float64{9, 20}, col("var2"))
	assert.Equal(t, []float64{8, 18}, col("var3"))
	assert.Equal(t, []float64{9, 20}, col("var0"))
	root := col("root")
	assert.InDelta(t, 2.8284, root[0], 1e-4)
	assert.InDelta(t, 4.2426, root[1], 1e-4)
}

func TestLoad_Descriptors(t *testing.T) {
	path := writeFile(t, t.TempDir(), "example.hcl", exampleHCL)

	descs, err := newTestLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, descs, 5)

	got := byOutput(descs)
	assert.Equal(t, []string{"a", "b"}, got["var1"].InputNames())
	assert.True(t, got["var1"].OutputType.Equals(cty.Number))
	assert.True(t, got["var1"].Inputs[0].Type.Equals(cty.Number))

	assert.Equal(t, []string{"var1", "c"}, got["var2"].InputNames())
	assert.True(t, got["var2"].Inputs[1].Type.Equals(cty.DynamicPseudoType))

	assert.True(t, got["var3"].OutputType.Equals(cty.DynamicPseudoType))
	assert.True(t, got["var3"].RowLocal)

	assert.Equal(t, []string{"var3"}, got["root"].InputNames())
	assert.True(t, got["root"].RowLocal)

	assert.Equal(t, path+":2", got["var1"].Source)
	for _, d := range descs {
		assert.NotZero(t, d.Fingerprint, d.Output)
	}
}

func TestLoad_SameFileTwiceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	first := writeFile(t, dir, "a/example.hcl", exampleHCL)
	second := writeFile(t, dir, "b/example.hcl", exampleHCL)

	e := engine.New()
	loader := newTestLoader()
	require.NoError(t, e.AddSources(ctx, loader, first))
	require.NoError(t, e.AddSources(ctx, loader, second))
	assert.Len(t, e.Variables(), 8)
}

func TestLoad_ConflictingDefinitions(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "one.hcl", "transform \"x\" {\n  expr = a + 1\n}\n")
	writeFile(t, dir, "two.hcl", "transform \"x\" {\n  expr = a + 2\n}\n")

	e := engine.New()
	err := e.AddSources(ctx, newTestLoader(), dir)
	require.Error(t, err)

	var graphErr *engine.GraphError
	require.True(t, errors.As(err, &graphErr))
	assert.Equal(t, engine.ReasonDuplicateDefinition, graphErr.Reason)
	assert.Equal(t, "x", graphErr.Variable)
}

func TestLoad_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.hcl", "transform \"second\" {\n  expr = first * 2\n}\n")
	writeFile(t, dir, "a.hcl", "transform \"first\" {\n  expr = x + 1\n}\n")
	writeFile(t, dir, "notes.txt", "not a transform file")

	descs, err := newTestLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, descs, 2)
	assert.Equal(t, "first", descs[0].Output)
	assert.Equal(t, "second", descs[1].Output)
}

func TestLoad_DottedIdentifier(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pkg/features.hcl", "transform \"y\" {\n  expr = x * 2\n}\n")
	t.Chdir(dir)

	descs, err := newTestLoader().Load(context.Background(), "pkg.features")
	require.NoError(t, err)
	require.Len(t, descs, 1)
	assert.Equal(t, "y", descs[0].Output)
}

func TestLoad_MissingSource(t *testing.T) {
	_, err := newTestLoader().Load(context.Background(), filepath.Join(t.TempDir(), "nope.hcl"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLoad_EmptyDirectory(t *testing.T) {
	descs, err := newTestLoader().Load(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, descs)
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "syntax error",
			content: "transform \"x\" {\n  expr = \n}\n",
			wantErr: "failed to parse HCL file",
		},
		{
			name:    "unknown attribute",
			content: "transform \"x\" {\n  expr = a\n  colour = 1\n}\n",
			wantErr: "failed to decode HCL file",
		},
		{
			name:    "expr and handler",
			content: "transform \"x\" {\n  expr = a\n  handler = \"sqrt\"\n}\n",
			wantErr: "not both",
		},
		{
			name:    "no body",
			content: "transform \"x\" {\n  type = number\n}\n",
			wantErr: "one of expr or handler is required",
		},
		{
			name:    "unknown function",
			content: "transform \"x\" {\n  expr = frobnicate(a)\n}\n",
			wantErr: "unknown function \"frobnicate\"",
		},
		{
			name:    "unknown handler",
			content: "transform \"x\" {\n  handler = \"nope\"\n  input \"a\" {}\n}\n",
			wantErr: "unknown handler \"nope\"",
		},
		{
			name:    "handler arity",
			content: "transform \"x\" {\n  handler = \"sqrt\"\n  input \"a\" {}\n  input \"b\" {}\n}\n",
			wantErr: "expects 1 input(s), 2 declared",
		},
		{
			name:    "invalid type",
			content: "transform \"x\" {\n  type = bogus\n  expr = a\n}\n",
			wantErr: "invalid type expression",
		},
		{
			name:    "collection of any",
			content: "transform \"x\" {\n  type = list(any)\n  expr = a\n}\n",
			wantErr: "cannot contain type 'any'",
		},
		{
			name:    "duplicate input",
			content: "transform \"x\" {\n  input \"a\" {}\n  input \"a\" {}\n  expr = a\n}\n",
			wantErr: "lists input \"a\" twice",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "bad.hcl", tc.content)
			_, err := newTestLoader().Load(context.Background(), path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoad_HandlerWithoutRegistry(t *testing.T) {
	path := writeFile(t, t.TempDir(), "h.hcl", "transform \"x\" {\n  handler = \"sqrt\"\n  input \"a\" {}\n}\n")
	_, err := NewLoader(nil).Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no handlers are registered")
}

func TestLoad_ExprRowErrorNamesRow(t *testing.T) {
	ctx := context.Background()
	path := writeFile(t, t.TempDir(), "s.hcl", "transform \"y\" {\n  expr = x + 1\n}\n")

	e := engine.New()
	require.NoError(t, e.AddSources(ctx, newTestLoader(), path))
	_, err := e.Plan(ctx)
	require.NoError(t, err)

	x, err := dataset.ColumnOf(1.0, "not a number")
	require.NoError(t, err)
	ds, err := dataset.FromColumns([]string{"x"}, map[string]dataset.Column{"x": x})
	require.NoError(t, err)

	_, err = e.Apply(ctx, ds)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "row 1"), err.Error())
}
