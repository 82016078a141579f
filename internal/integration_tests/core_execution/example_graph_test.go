package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/varflow/internal/app"
	"github.com/vk/varflow/internal/formatting"
	"github.com/vk/varflow/internal/testutil"
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
  expr = var1 * c
}

transform "var3" {
  expr = var2 - a
}

transform "var0" {
  expr = max(var1, var2)
}
`

// Test for: the four-transform example graph computes every column in
// dependency order.
func TestCoreExecution_ExampleGraph(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"transforms/example.hcl": exampleHCL,
		"data.csv":               "a,b,c\n1,2,3\n",
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, func(cfg *app.Config) {
		cfg.OutputPath = "out.json"
	})

	// --- Assert ---
	require.NoError(t, result.Err)
	for _, v := range []string{"var0", "var1", "var2", "var3"} {
		testutil.AssertStepRan(t, result, v)
	}
	testutil.AssertLogContains(t, result, "run_id=", "Results written.")

	ds, err := formatting.ReadFile(result.Path("out.json"), nil)
	require.NoError(t, err)
	want := map[string]int64{"a": 1, "b": 2, "c": 3, "var1": 3, "var2": 9, "var3": 8, "var0": 9}
	for name, v := range want {
		col, ok := ds.Column(name)
		require.True(t, ok, "column %s", name)
		assert.True(t, col[0].RawEquals(cty.NumberIntVal(v)), "%s = %s", name, col[0].GoString())
	}
}

// Test for: without an output file the head of the result is printed.
func TestCoreExecution_PrintsHead(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"transforms/example.hcl": exampleHCL,
		"data.csv":               "a,b,c\n1,2,3\n2,2,2\n3,2,1\n",
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, func(cfg *app.Config) {
		cfg.Head = 2
	})

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Contains(t, result.Output, "var0")
	assert.Contains(t, result.Output, "2 of 3 rows")
}
