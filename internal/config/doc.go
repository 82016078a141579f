// Package config defines the format-agnostic boundary between transform
// sources and the engine: a Loader turns sources into transform descriptors.
// Concrete implementations, such as for HCL, live in separate packages.
package config
