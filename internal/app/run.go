package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vk/varflow/internal/ctxlog"
	"github.com/vk/varflow/internal/dataset"
	"github.com/vk/varflow/internal/engine"
	"github.com/vk/varflow/internal/executor"
	"github.com/vk/varflow/internal/formatting"
	"github.com/vk/varflow/internal/tracing"
)

// Run loads the transform sources, plans them, applies the plan to the input
// dataset and writes the result.
func (a *App) Run(ctx context.Context) error {
	logger := a.logger.With("run_id", uuid.NewString())
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("App.Run method started.")

	provider, err := tracing.NewProvider(ctx, a.config.Trace)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Tracer shutdown failed.", "error", err)
		}
	}()

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(ctx, a.config.HealthcheckPort)
		defer a.closeHealthcheckServer(ctx)
	}

	eng := engine.New(engine.WithExecutor(executor.New(
		executor.WithAllowUndeclared(a.config.AllowUndeclared),
	)))
	if err := eng.AddSources(ctx, a.loader, a.config.Sources...); err != nil {
		return fmt.Errorf("failed to build transform graph: %w", err)
	}
	p, err := eng.Plan(ctx)
	if err != nil {
		return fmt.Errorf("failed to plan transforms: %w", err)
	}
	logger.Info("📐 Transforms planned.", "inputs", p.Initial, "steps", p.Names())

	ds, err := formatting.ReadFile(a.config.DataPath, p.Schema())
	if err != nil {
		return err
	}
	logger.Debug("Dataset loaded.", "path", a.config.DataPath, "rows", ds.Len(), "columns", ds.Names())

	var out *dataset.Dataset
	if a.config.PartitionSize > 0 {
		out, err = eng.ApplyPartitioned(ctx, ds, executor.PartitionOptions{
			Size:    a.config.PartitionSize,
			Workers: a.config.Workers,
		})
	} else {
		out, err = eng.Apply(ctx, ds)
	}
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}

	if a.config.OutputPath == "" {
		if err := formatting.WriteTable(a.outW, out, a.config.Head); err != nil {
			return fmt.Errorf("failed to print results: %w", err)
		}
	} else {
		if err := formatting.WriteFile(a.config.OutputPath, out); err != nil {
			return fmt.Errorf("failed to write results: %w", err)
		}
		logger.Info("💾 Results written.", "path", a.config.OutputPath, "rows", out.Len())
	}

	logger.Debug("App.Run method finished.")
	return nil
}
