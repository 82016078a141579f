// Package app contains the core application logic. It wires the transform
// loader, the engine and dataset I/O into a single run, decoupled from any
// specific entrypoint like a CLI.
package app
