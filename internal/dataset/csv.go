package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/zclconf/go-cty/cty"
)

// Schema maps column names to the type their cells are read as. Columns not
// in the schema have their cell types inferred.
type Schema map[string]cty.Type

func (s Schema) typeOf(name string) cty.Type {
	if t, ok := s[name]; ok {
		return t
	}
	return cty.DynamicPseudoType
}

// ReadCSV reads a dataset from CSV with a header row.
func ReadCSV(r io.Reader, schema Schema) (*Dataset, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return New(0), nil
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	seen := make(map[string]struct{}, len(header))
	for _, name := range header {
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate CSV column %q", name)
		}
		seen[name] = struct{}{}
	}

	cols := make(map[string]Column, len(header))
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}
		for i, name := range header {
			v, err := ParseCell(record[i], schema.typeOf(name))
			if err != nil {
				return nil, fmt.Errorf("line %d, column %q: %w", line, name, err)
			}
			cols[name] = append(cols[name], v)
		}
	}

	for _, name := range header {
		if cols[name] == nil {
			cols[name] = Column{}
		}
	}
	return FromColumns(header, cols)
}

// WriteCSV writes the dataset as CSV with a header row.
func WriteCSV(w io.Writer, d *Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(d.names); err != nil {
		return err
	}
	record := make([]string, len(d.names))
	for i := 0; i < d.rows; i++ {
		for j, name := range d.names {
			s, err := FormatCell(d.cols[name][i])
			if err != nil {
				return fmt.Errorf("row %d, column %q: %w", i, name, err)
			}
			record[j] = s
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
