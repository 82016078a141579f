package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/varflow/internal/ctxlog"
	"github.com/vk/varflow/internal/fsutil"
	"github.com/vk/varflow/internal/registry"
	"github.com/vk/varflow/internal/transform"
	"github.com/zclconf/go-cty/cty/function"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	registry  *registry.Registry
	functions map[string]function.Function
}

// NewLoader creates a new HCL transform loader. Transform blocks that name a
// handler are bound to the handlers in reg, which may be nil when only
// `expr` bodies are used.
func NewLoader(reg *registry.Registry) *Loader {
	return &Loader{
		registry:  reg,
		functions: rowFunctions(),
	}
}

// Load resolves every source, parses the transform files it names and
// returns their descriptors in file and block order. Sources may be file
// paths, directories or dotted module identifiers; see fsutil.ResolveSource.
func (l *Loader) Load(ctx context.Context, sources ...string) ([]*transform.Descriptor, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "source_count", len(sources))

	files, err := fsutil.ResolveSources(sources, true)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		logger.Warn("No transform files found.", "sources", sources)
		return nil, nil
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	var descs []*transform.Descriptor

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, t := range root.Transforms {
			d, err := l.translateTransform(ctx, hclFile.Bytes, t)
			if err != nil {
				return nil, err
			}
			descs = append(descs, d)
		}
		logger.Debug("Loaded transform file.", "path", file, "transforms", len(root.Transforms))
	}

	logger.Debug("HCL loading complete.", "transforms", len(descs))
	return descs, nil
}
