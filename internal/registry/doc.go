// Package registry maps handler names used in transform sources to Go
// column functions.
//
// Modules register their handlers at startup. A transform block that names
// a handler is bound to the registered function when its source is loaded,
// so an unknown handler is reported before any graph is built.
package registry
