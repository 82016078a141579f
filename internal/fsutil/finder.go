// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vk/varflow/internal/sourceid"
)

// SourceExt is the file extension of transform sources.
const SourceExt = ".hcl"

// FindFilesByExtension recursively searches the given root path for all files ending
// with the specified extension. It returns a slice of their full paths in lexical order.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), extension) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// ResolveSource turns a source reference into an absolute path. A reference
// that ends in SourceExt or names an existing directory is a path. Anything
// else is a dotted module identifier: "pkg.sub.transforms" resolves to
// "pkg/sub/transforms.hcl". With check set, a path that does not exist is an
// error matching fs.ErrNotExist.
func ResolveSource(src string, check bool) (string, error) {
	path := src
	if !strings.HasSuffix(src, SourceExt) && !isDir(src) {
		id, err := sourceid.Parse(src)
		if err != nil {
			return "", fmt.Errorf("source %s is not a %s file, a directory or a module identifier: %w", src, SourceExt, err)
		}
		path = id.Path(SourceExt)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("error resolving source %s: %w", src, err)
	}
	if check {
		if _, err := os.Stat(abs); err != nil {
			return "", fmt.Errorf("transform source %s not found at %s: %w", src, abs, err)
		}
	}
	return abs, nil
}

// ResolveSources resolves every reference and expands directories into the
// SourceExt files below them. Files are returned once each, in the order
// their references were given.
func ResolveSources(srcs []string, check bool) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	add := func(path string) {
		if _, dup := seen[path]; !dup {
			seen[path] = struct{}{}
			files = append(files, path)
		}
	}

	for _, src := range srcs {
		path, err := ResolveSource(src, check)
		if err != nil {
			return nil, err
		}
		if !isDir(path) {
			add(path)
			continue
		}
		found, err := FindFilesByExtension(path, SourceExt)
		if err != nil {
			return nil, fmt.Errorf("error scanning %s: %w", path, err)
		}
		for _, f := range found {
			add(f)
		}
	}
	return files, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
