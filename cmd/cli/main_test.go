package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/varflow/internal/cli"
	"github.com/vk/varflow/internal/dataset"
	"github.com/vk/varflow/internal/engine"
	"github.com/vk/varflow/internal/formatting"
	"github.com/zclconf/go-cty/cty"
)

const exampleHCL = `
transform "var1" {
  input "a" {
    type = number
  }
  input "b" {
    type = number
  }
  expr = a + b
}

transform "var2" {
  expr = var1 * c
}

transform "var3" {
  expr = var2 - a
}

transform "var0" {
  expr = max(var1, var2)
}
`

func writeInputs(t *testing.T, hcl, csv string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "example.hcl")
	data := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(src, []byte(hcl), 0o600))
	require.NoError(t, os.WriteFile(data, []byte(csv), 0o600))
	return src, data
}

func TestRun_EndToEndToFile(t *testing.T) {
	// --- Arrange ---
	src, data := writeInputs(t, exampleHCL, "a,b,c\n1,2,3\n")
	outPath := filepath.Join(filepath.Dir(src), "out.json")
	var out, errOut bytes.Buffer

	// --- Act ---
	err := run(context.Background(), &out, &errOut, []string{"-d", data, "-o", outPath, src})

	// --- Assert ---
	require.NoError(t, err, errOut.String())
	ds, err := formatting.ReadFile(outPath, nil)
	require.NoError(t, err)

	want := map[string]int64{"a": 1, "b": 2, "c": 3, "var1": 3, "var2": 9, "var3": 8, "var0": 9}
	for name, v := range want {
		col, ok := ds.Column(name)
		require.True(t, ok, "column %s", name)
		assert.True(t, col[0].RawEquals(cty.NumberIntVal(v)), "%s = %s", name, col[0].GoString())
	}
}

func TestRun_PrintsTable(t *testing.T) {
	src, data := writeInputs(t, exampleHCL, "a,b,c\n1,2,3\n4,5,6\n")
	var out, errOut bytes.Buffer

	err := run(context.Background(), &out, &errOut, []string{"--data", data, "--log-level", "warn", src})
	require.NoError(t, err, errOut.String())

	assert.Contains(t, out.String(), "var0")
	assert.Contains(t, out.String(), "54")
	assert.Empty(t, errOut.String())
}

func TestRun_ShouldExit(t *testing.T) {
	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	var out, errOut bytes.Buffer

	// --- Act ---
	err := run(context.Background(), &out, &errOut, []string{"-h"})

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, errOut.String(), "Usage:", "Expected help text to be printed to the diagnostics writer")
	require.Empty(t, out.String())
}

func TestRun_ParseError(t *testing.T) {
	var out, errOut bytes.Buffer

	err := run(context.Background(), &out, &errOut, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err, "run() should return an error when argument parsing fails")
	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
}

func TestRun_GraphErrorIsNotAUsageError(t *testing.T) {
	cyclic := `
transform "x" {
  expr = y + 1
}

transform "y" {
  expr = x + 1
}
`
	src, data := writeInputs(t, cyclic, "a\n1\n")
	var out, errOut bytes.Buffer

	err := run(context.Background(), &out, &errOut, []string{"-d", data, src})

	require.Error(t, err)
	var exitErr *cli.ExitError
	assert.False(t, errors.As(err, &exitErr), "graph errors exit with code 1")
	assert.True(t, errors.Is(err, engine.ErrGraphConstruction))
}

func TestRun_MissingColumns(t *testing.T) {
	src, data := writeInputs(t, exampleHCL, "a,b\n1,2\n")
	var out, errOut bytes.Buffer

	err := run(context.Background(), &out, &errOut, []string{"-d", data, src})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required input columns: c")
	assert.Empty(t, out.String())
}

func TestRun_PartitionedMatchesSequential(t *testing.T) {
	var csv bytes.Buffer
	csv.WriteString("a,b,c\n")
	for i := 0; i < 20; i++ {
		csv.WriteString("1,2,3\n")
	}
	src, data := writeInputs(t, exampleHCL, csv.String())
	dir := filepath.Dir(src)

	seq := filepath.Join(dir, "seq.csv")
	par := filepath.Join(dir, "par.csv")
	var out, errOut bytes.Buffer
	require.NoError(t, run(context.Background(), &out, &errOut, []string{"-d", data, "-o", seq, src}))
	require.NoError(t, run(context.Background(), &out, &errOut, []string{"-d", data, "-o", par, "--partition-size", "3", "--workers", "2", src}))

	seqBytes, err := os.ReadFile(seq)
	require.NoError(t, err)
	parBytes, err := os.ReadFile(par)
	require.NoError(t, err)
	assert.Equal(t, string(seqBytes), string(parBytes))

	ds, err := formatting.ReadFile(par, dataset.Schema{})
	require.NoError(t, err)
	assert.Equal(t, 20, ds.Len())
}
