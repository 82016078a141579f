// Package formatting reads datasets from files and renders them for output:
// CSV, JSON and YAML files, or a table for the terminal.
package formatting

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/varflow/internal/dataset"
)

// Format represents a supported dataset encoding.
type Format string

const (
	// FormatCSV is comma separated values with a header row.
	FormatCSV Format = "csv"
	// FormatJSON is an array of row objects.
	FormatJSON Format = "json"
	// FormatYAML is a sequence of row mappings. Output only.
	FormatYAML Format = "yaml"
	// FormatTable is a human readable table. Output only.
	FormatTable Format = "table"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported file extension %q (valid: .csv, .json, .yaml)", filepath.Ext(path))
	}
}

// ReadFile reads a CSV or JSON dataset. Columns named in schema are parsed
// as their type; others are inferred.
func ReadFile(path string, schema dataset.Schema) (*dataset.Dataset, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	var ds *dataset.Dataset
	switch format {
	case FormatCSV:
		ds, err = dataset.ReadCSV(f, schema)
	case FormatJSON:
		ds, err = dataset.ReadJSON(f, schema)
	default:
		return nil, fmt.Errorf("%s datasets cannot be read, use .csv or .json", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}
	return ds, nil
}

// Write renders ds to w in the given format. head limits the number of rows
// for FormatTable; zero or less shows every row.
func Write(w io.Writer, format Format, ds *dataset.Dataset, head int) error {
	switch format {
	case FormatCSV:
		return dataset.WriteCSV(w, ds)
	case FormatJSON:
		return dataset.WriteJSON(w, ds)
	case FormatYAML:
		return WriteYAML(w, ds)
	case FormatTable:
		return WriteTable(w, ds, head)
	default:
		return fmt.Errorf("unsupported output format: %q (valid: csv, json, yaml, table)", format)
	}
}

// WriteFile writes ds to path in the format its extension names.
func WriteFile(path string, ds *dataset.Dataset) (err error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return Write(f, format, ds, 0)
}
