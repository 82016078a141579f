// Package engine builds the variable dependency graph from transform
// descriptors, plans it and applies the plan to datasets.
//
// An Engine has two phases. While building, Add merges descriptors into the
// graph and rejects duplicates, type conflicts and cycles without changing
// the graph. Plan freezes the graph; from then on Apply and ApplyPartitioned
// may be called from several goroutines.
package engine
