package module_contract_test

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/varflow/internal/app"
	"github.com/vk/varflow/internal/dataset"
	"github.com/vk/varflow/internal/formatting"
	"github.com/vk/varflow/internal/registry"
	"github.com/vk/varflow/internal/testutil"
	"github.com/zclconf/go-cty/cty"
)

// joinHandler concatenates any number of string inputs per row, in input
// name order.
func joinHandler() *registry.Handler {
	return &registry.Handler{
		Fn: func(ctx context.Context, rows int, args map[string]dataset.Column) (dataset.Column, error) {
			names := make([]string, 0, len(args))
			for name := range args {
				names = append(names, name)
			}
			if len(names) == 0 {
				return nil, fmt.Errorf("join needs at least one input")
			}
			sort.Strings(names)

			out := make(dataset.Column, rows)
			for i := 0; i < rows; i++ {
				s := ""
				for _, name := range names {
					s += args[name][i].AsString()
				}
				out[i] = cty.StringVal(s)
			}
			return out, nil
		},
		RowLocal:    true,
		Description: "Concatenates string inputs.",
	}
}

// Test for: a handler registered by a custom Go module is callable from HCL
// with any number of inputs.
func TestModuleContract_CustomHandler(t *testing.T) {
	// --- Arrange ---
	hcl := `
transform "code" {
  type    = string
  handler = "join"
  input "prefix" {
    type = string
  }
  input "suffix" {
    type = string
  }
}
`
	files := map[string]string{
		"transforms/main.hcl": hcl,
		"data.csv":            "prefix,suffix\nab,cd\nx,y\n",
	}
	module := &testutil.SimpleModule{Name: "join", Handler: joinHandler()}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, func(cfg *app.Config) {
		cfg.OutputPath = "out.csv"
	}, module)

	// --- Assert ---
	require.NoError(t, result.Err)
	testutil.AssertStepRan(t, result, "code")

	ds, err := formatting.ReadFile(result.Path("out.csv"), nil)
	require.NoError(t, err)
	code, _ := ds.Column("code")
	assert.Equal(t, "abcd", code[0].AsString())
	assert.Equal(t, "xy", code[1].AsString())
}

// Test for: a module that registers an unusable handler stops startup.
func TestModuleContract_UnusableHandlerPanicsAtStartup(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"transforms/main.hcl": "transform \"y\" {\n  expr = x\n}\n",
		"data.csv":            "x\n1\n",
	}
	module := &testutil.SimpleModule{Name: "broken", Handler: &registry.Handler{}}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, nil, module)

	// --- Assert ---
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "application startup panicked")
	assert.Contains(t, result.Err.Error(), "handler 'broken'")
}
