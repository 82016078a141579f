package integration_tests

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/varflow/internal/app"
	"github.com/vk/varflow/internal/executor"
	"github.com/vk/varflow/internal/testutil"
)

// Test for: every missing input column is reported and nothing is computed.
func TestErrorHandling_MissingColumns(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"transforms/main.hcl": "transform \"s\" {\n  expr = a + b + c\n}\n",
		"data.csv":            "b\n1\n",
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, nil)

	// --- Assert ---
	require.Error(t, result.Err)
	assert.True(t, errors.Is(result.Err, executor.ErrDataValidation))
	var dataErr *executor.DataError
	require.True(t, errors.As(result.Err, &dataErr))
	assert.Equal(t, []string{"a", "c"}, dataErr.Missing)
	assert.NotContains(t, result.LogOutput, `msg="Running step."`)
}

// Test for: extra columns are rejected when undeclared columns are disallowed.
func TestErrorHandling_UndeclaredColumns(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"transforms/main.hcl": "transform \"y\" {\n  expr = x * 2\n}\n",
		"data.csv":            "x,extra\n1,2\n",
	}

	// --- Act ---
	allowed := testutil.RunIntegrationTest(t, files, nil)
	strict := testutil.RunIntegrationTest(t, files, func(cfg *app.Config) {
		cfg.AllowUndeclared = false
	})

	// --- Assert ---
	require.NoError(t, allowed.Err)

	require.Error(t, strict.Err)
	var dataErr *executor.DataError
	require.True(t, errors.As(strict.Err, &dataErr))
	assert.Equal(t, []string{"extra"}, dataErr.Undeclared)
}

// Test for: a failing transform reports its variable and stops the run.
func TestErrorHandling_TransformFailure(t *testing.T) {
	// --- Arrange ---
	hcl := `
transform "root" {
  handler = "sqrt"
  input "x" {}
}

transform "after" {
  expr = root + 1
}
`
	files := map[string]string{
		"transforms/main.hcl": hcl,
		"data.csv":            "x\n4\n-1\n",
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, nil)

	// --- Assert ---
	require.Error(t, result.Err)
	assert.True(t, errors.Is(result.Err, executor.ErrTransformExecution))
	var transformErr *executor.TransformError
	require.True(t, errors.As(result.Err, &transformErr))
	assert.Equal(t, "root", transformErr.Variable)
	assert.Contains(t, transformErr.Error(), "row 1")
	assert.Contains(t, transformErr.Source, "main.hcl:2")
	testutil.AssertStepNotRan(t, result, "after")
}
