package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/varflow/internal/app"
	"github.com/vk/varflow/internal/formatting"
	"github.com/vk/varflow/internal/testutil"
)

// Test for: dotted module identifiers, single files and directories can be
// mixed as sources.
func TestHCLFeatures_MixedSources(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"features/base.hcl":    "transform \"double\" {\n  expr = x * 2\n}\n",
		"extra/more.hcl":       "transform \"quad\" {\n  expr = double * 2\n}\n",
		"transforms/last.hcl":  "transform \"oct\" {\n  expr = quad * 2\n}\n",
		"transforms/notes.txt": "ignored",
		"data.csv":             "x\n1\n",
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, func(cfg *app.Config) {
		cfg.Sources = []string{"transforms", "extra/more.hcl"}
		cfg.OutputPath = "out.csv"
	})
	require.Error(t, result.Err, "double is produced by a source that was not given")

	withModule := testutil.RunIntegrationTest(t, files, func(cfg *app.Config) {
		cfg.Sources = []string{"transforms", "extra/more.hcl", "features/base.hcl"}
	})

	// --- Assert ---
	require.NoError(t, withModule.Err)
	for _, v := range []string{"double", "quad", "oct"} {
		testutil.AssertStepRan(t, withModule, v)
	}
	assert.Contains(t, withModule.Output, "8")
}

// Test for: variables an expression mentions become inputs even when not
// declared with an input block.
func TestHCLFeatures_ImplicitInputs(t *testing.T) {
	// --- Arrange ---
	hcl := `
transform "label" {
  input "name" {
    type = string
  }
  expr = "${upper(name)}-${id}"
}

transform "bucket" {
  expr = score >= 50 ? "high" : "low"
}
`
	files := map[string]string{
		"transforms/main.hcl": hcl,
		"data.csv":            "name,id,score\nada,7,90\nbob,8,10\n",
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, func(cfg *app.Config) {
		cfg.OutputPath = "out.csv"
	})

	// --- Assert ---
	require.NoError(t, result.Err)
	testutil.AssertLogContains(t, result, "inputs=\"[id name score]\"")

	ds, err := formatting.ReadFile(result.Path("out.csv"), nil)
	require.NoError(t, err)
	label, _ := ds.Column("label")
	bucket, _ := ds.Column("bucket")
	assert.Equal(t, "ADA-7", label[0].AsString())
	assert.Equal(t, "BOB-8", label[1].AsString())
	assert.Equal(t, "high", bucket[0].AsString())
	assert.Equal(t, "low", bucket[1].AsString())
}
