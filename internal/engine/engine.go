package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/vk/varflow/internal/config"
	"github.com/vk/varflow/internal/ctxlog"
	"github.com/vk/varflow/internal/dag"
	"github.com/vk/varflow/internal/dataset"
	"github.com/vk/varflow/internal/executor"
	"github.com/vk/varflow/internal/node"
	"github.com/vk/varflow/internal/plan"
	"github.com/vk/varflow/internal/transform"
	"github.com/zclconf/go-cty/cty"
)

// Engine owns one dependency graph and, once planned, its execution plan.
type Engine struct {
	mu    sync.RWMutex
	nodes map[string]*node.Node
	topo  *dag.Graph
	plan  *plan.Plan
	exec  *executor.Executor
}

// Option configures an Engine.
type Option func(*Engine)

// WithExecutor sets the executor used by Apply and ApplyPartitioned.
func WithExecutor(x *executor.Executor) Option {
	return func(e *Engine) { e.exec = x }
}

// New creates an empty engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		nodes: make(map[string]*node.Node),
		topo:  dag.New(),
		exec:  executor.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Add merges the descriptors into the graph. Either all of them are added
// or, on error, the graph is left exactly as it was.
func (e *Engine) Add(ctx context.Context, descs ...*transform.Descriptor) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.plan != nil {
		return fmt.Errorf("%w: cannot add transforms after the graph has been planned", ErrIllegalState)
	}

	logger := ctxlog.FromContext(ctx)
	b := &builder{nodes: cloneNodes(e.nodes), topo: e.topo.Clone()}
	for _, d := range descs {
		if err := b.add(d); err != nil {
			return err
		}
	}
	if err := b.topo.DetectCycles(); err != nil {
		return &GraphError{Reason: ReasonCycle, Variable: cycleStart(err), Err: err}
	}

	e.nodes, e.topo = b.nodes, b.topo
	for _, d := range descs {
		logger.Debug("Transform added to graph.", "variable", d.Output, "inputs", d.InputNames(), "source", d.Source)
	}
	return nil
}

// AddMap adds descriptors keyed by output name. Keys are processed in
// sorted order; a key that differs from its descriptor's output name is an
// error.
func (e *Engine) AddMap(ctx context.Context, descs map[string]*transform.Descriptor) error {
	keys := make([]string, 0, len(descs))
	for k := range descs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ordered := make([]*transform.Descriptor, 0, len(keys))
	for _, k := range keys {
		d := descs[k]
		if d == nil || d.Output != k {
			return &GraphError{Reason: ReasonInvalidDescriptor, Variable: k,
				Err: fmt.Errorf("descriptor registered under %q does not produce it", k)}
		}
		ordered = append(ordered, d)
	}
	return e.Add(ctx, ordered...)
}

// AddSources loads descriptors from sources with loader and adds them in a
// single batch.
func (e *Engine) AddSources(ctx context.Context, loader config.Loader, sources ...string) error {
	descs, err := loader.Load(ctx, sources...)
	if err != nil {
		return fmt.Errorf("failed to load transforms: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Loaded transforms.", "sources", sources, "count", len(descs))
	return e.Add(ctx, descs...)
}

// Plan computes the execution plan and freezes the graph. Calling it again
// returns the same plan.
func (e *Engine) Plan(ctx context.Context) (*plan.Plan, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	logger := ctxlog.FromContext(ctx)
	if e.plan != nil {
		logger.Info("Graph already planned, returning cached plan.")
		return e.plan, nil
	}

	order, err := e.topo.TopologicalSort()
	if err != nil {
		// Add keeps the graph acyclic, so this is a broken invariant.
		return nil, fmt.Errorf("failed to order graph: %w", err)
	}

	p := &plan.Plan{
		Initial: []string{},
		Steps:   []plan.Step{},
		Types:   make(map[string]cty.Type, len(order)),
	}
	for _, name := range order {
		n := e.nodes[name]
		p.Types[name] = n.Type
		if !n.Complete() {
			p.Initial = append(p.Initial, name)
			continue
		}
		p.Steps = append(p.Steps, plan.Step{
			Name:     name,
			Type:     n.Type,
			Inputs:   n.Producer.InputNames(),
			Func:     n.Producer.Func,
			Source:   n.Producer.Source,
			RowLocal: n.Producer.RowLocal,
		})
	}
	slices.Sort(p.Initial)

	if p.Empty() {
		logger.Warn("Planned an empty graph; applying it will not compute anything.")
	} else {
		logger.Debug("Graph planned.", "initial", p.Initial, "order", p.Names())
	}
	e.plan = p
	return p, nil
}

// Planned reports whether Plan has been called successfully.
func (e *Engine) Planned() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.plan != nil
}

// Apply runs the plan against ds, writing computed columns into it. See
// executor.Executor.Apply.
func (e *Engine) Apply(ctx context.Context, ds *dataset.Dataset) (*dataset.Dataset, error) {
	p, err := e.currentPlan()
	if err != nil {
		return nil, err
	}
	logger := ctxlog.FromContext(ctx)
	logger.Info("▶️ Applying transforms.", "rows", ds.Len(), "steps", len(p.Steps))
	out, err := e.exec.Apply(ctx, p, ds)
	if err != nil {
		return out, err
	}
	logger.Info("✅ Transforms applied.", "rows", out.Len(), "columns", len(out.Names()))
	return out, nil
}

// ApplyPartitioned runs the plan over row partitions of ds in parallel. See
// executor.Executor.ApplyPartitioned.
func (e *Engine) ApplyPartitioned(ctx context.Context, ds *dataset.Dataset, opts executor.PartitionOptions) (*dataset.Dataset, error) {
	p, err := e.currentPlan()
	if err != nil {
		return nil, err
	}
	logger := ctxlog.FromContext(ctx)
	logger.Info("▶️ Applying transforms in partitions.", "rows", ds.Len(), "steps", len(p.Steps), "partition_size", opts.Size)
	out, err := e.exec.ApplyPartitioned(ctx, p, ds, opts)
	if err != nil {
		return nil, err
	}
	logger.Info("✅ Transforms applied.", "rows", out.Len(), "columns", len(out.Names()))
	return out, nil
}

func (e *Engine) currentPlan() (*plan.Plan, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.plan == nil {
		return nil, fmt.Errorf("%w: apply called before plan", ErrIllegalState)
	}
	return e.plan, nil
}

// Node returns a copy of the named node.
func (e *Engine) Node(name string) (node.Node, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	n, ok := e.nodes[name]
	if !ok {
		return node.Node{}, false
	}
	return *n, true
}

// Variables returns every variable name in the order it was first seen.
func (e *Engine) Variables() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.topo.Nodes()
}

// Dependencies returns the variables the named variable is computed from.
func (e *Engine) Dependencies(name string) ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.topo.Dependencies(name)
}

func cloneNodes(nodes map[string]*node.Node) map[string]*node.Node {
	out := make(map[string]*node.Node, len(nodes))
	for k, n := range nodes {
		out[k] = n.Clone()
	}
	return out
}

func cycleStart(err error) string {
	var cycleErr *dag.CycleError
	if errors.As(err, &cycleErr) && len(cycleErr.Path) > 0 {
		return cycleErr.Path[0]
	}
	return ""
}
