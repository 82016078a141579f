// Package dag holds the topology of the variable graph: string-keyed nodes,
// directed dependency edges, cycle detection and a deterministic topological
// sort. It knows nothing about what the nodes mean; the engine keeps the
// node payloads and uses this package for the structure.
package dag
