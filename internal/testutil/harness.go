// Package testutil provides the harness the integration tests use to run the
// application against HCL sources and datasets written to a temporary
// directory.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/varflow/internal/app"
	"github.com/vk/varflow/internal/registry"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	Dir       string // temporary root the files were written to
	LogOutput string
	Output    string // what the app wrote as results
	Err       error
	App       *app.App
}

// Path returns the absolute path of a file relative to the run's directory.
func (r *HarnessResult) Path(name string) string {
	return filepath.Join(r.Dir, name)
}

// RunIntegrationTest provides a standardized harness for running integration tests
// using a default background context.
func RunIntegrationTest(t *testing.T, files map[string]string, configure func(cfg *app.Config), modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, configure, modules...)
}

// RunIntegrationTestWithContext writes files (relative path to content) into
// a temporary directory and runs the app there. By default the sources are
// the "transforms" directory and the dataset is "data.csv"; configure may
// change any field, with relative paths resolved against the directory.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string, configure func(cfg *app.Config), modules ...registry.Module) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "transforms"), 0o755))
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	cfg := app.Config{
		Sources:         []string{"transforms"},
		DataPath:        "data.csv",
		Head:            5,
		AllowUndeclared: true,
		LogLevel:        "debug",
		LogFormat:       "text",
		Workers:         4,
	}
	if configure != nil {
		configure(&cfg)
	}
	for i, src := range cfg.Sources {
		cfg.Sources[i] = inDir(tmpDir, src)
	}
	cfg.DataPath = inDir(tmpDir, cfg.DataPath)
	if cfg.OutputPath != "" {
		cfg.OutputPath = inDir(tmpDir, cfg.OutputPath)
	}

	logBuffer := &SafeBuffer{}
	outBuffer := &SafeBuffer{}
	result := &HarnessResult{Dir: tmpDir}

	appConfig, err := app.NewConfig(cfg)
	if err != nil {
		result.Err = err
		return result
	}

	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		result.App = app.NewApp(outBuffer, logBuffer, appConfig, modules...)
	}()

	if panicErr != nil {
		result.Err = fmt.Errorf("application startup panicked | %v", panicErr)
	} else {
		result.Err = result.App.Run(ctx)
	}

	if os.Getenv("VARFLOW_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	result.LogOutput = logBuffer.String()
	result.Output = outBuffer.String()
	return result
}

func inDir(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
