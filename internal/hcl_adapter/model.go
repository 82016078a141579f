package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all top-level blocks of a transform file.
type fileRoot struct {
	Transforms []*Transform `hcl:"transform,block"`
}

// Transform is the raw decoded `transform "<output>" { ... }` block.
type Transform struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type,optional"`
	Description string         `hcl:"description,optional"`
	Inputs      []*Input       `hcl:"input,block"`
	Expr        hcl.Expression `hcl:"expr,optional"`
	Handler     string         `hcl:"handler,optional"`
	DeclRange   hcl.Range      `hcl:",def_range"`
}

// Input is the raw decoded `input "<name>" { ... }` block.
type Input struct {
	Name string         `hcl:"name,label"`
	Type hcl.Expression `hcl:"type,optional"`
}
