/*
Package sourceid provides a structured, type-safe representation for module
identifiers, the dotted names that refer to transform files without spelling
out their path.

The format is a dot-separated sequence of segments, e.g. `features.base`,
which names the file `features/base.hcl` relative to the working directory.

This package enforces the identifier schema and centralizes all formatting
and parsing logic.
*/
package sourceid
