package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertStepRan checks the log output within a HarnessResult to confirm that
// the step computing variable has completed at least once.
func AssertStepRan(t *testing.T, result *HarnessResult, variable string) {
	t.Helper()
	require.True(t, stepFinished(result, variable),
		"expected a finished step for variable '%s' in the logs", variable)
}

// AssertStepNotRan is the inverse of AssertStepRan.
func AssertStepNotRan(t *testing.T, result *HarnessResult, variable string) {
	t.Helper()
	require.False(t, stepFinished(result, variable),
		"step for variable '%s' should not have run", variable)
}

func stepFinished(result *HarnessResult, variable string) bool {
	attr := fmt.Sprintf(" variable=%s", variable)
	for _, line := range strings.Split(result.LogOutput, "\n") {
		if strings.Contains(line, `msg="Step finished."`) &&
			(strings.Contains(line, attr+" ") || strings.HasSuffix(line, attr)) {
			return true
		}
	}
	return false
}

// AssertLogContains fails unless the log output contains every substring.
func AssertLogContains(t *testing.T, result *HarnessResult, substrings ...string) {
	t.Helper()
	for _, s := range substrings {
		require.Contains(t, result.LogOutput, s)
	}
}
