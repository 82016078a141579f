// Package dataset implements the columnar table the engine reads from and
// writes to. A Dataset is an ordered set of named columns of cty values that
// all share one row count.
package dataset

import (
	"fmt"
	"slices"

	"github.com/zclconf/go-cty/cty"
)

// Column is an ordered sequence of cell values.
type Column []cty.Value

// Dataset is a table of named columns. Column order is the order in which
// columns were first set.
type Dataset struct {
	names []string
	cols  map[string]Column
	rows  int
}

// New returns an empty dataset with the given row count. Columns added later
// must have exactly that many values.
func New(rows int) *Dataset {
	return &Dataset{
		cols: make(map[string]Column),
		rows: rows,
	}
}

// FromColumns builds a dataset from columns listed in names order. All
// columns must have the same length.
func FromColumns(names []string, cols map[string]Column) (*Dataset, error) {
	rows := 0
	if len(names) > 0 {
		rows = len(cols[names[0]])
	}
	ds := New(rows)
	for _, name := range names {
		col, ok := cols[name]
		if !ok {
			return nil, fmt.Errorf("column %q listed but not provided", name)
		}
		if err := ds.Set(name, col); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return d.rows
}

// Names returns the column names in order.
func (d *Dataset) Names() []string {
	return slices.Clone(d.names)
}

// Has reports whether a column with the given name exists.
func (d *Dataset) Has(name string) bool {
	_, ok := d.cols[name]
	return ok
}

// Column returns the named column. The returned slice is shared with the
// dataset and must not be modified.
func (d *Dataset) Column(name string) (Column, bool) {
	col, ok := d.cols[name]
	return col, ok
}

// Set writes a column, replacing any existing column of the same name while
// keeping its position.
func (d *Dataset) Set(name string, col Column) error {
	if len(col) != d.rows {
		return fmt.Errorf("column %q has %d values, dataset has %d rows", name, len(col), d.rows)
	}
	if _, exists := d.cols[name]; !exists {
		d.names = append(d.names, name)
	}
	d.cols[name] = col
	return nil
}

// Row returns the values of row i keyed by column name.
func (d *Dataset) Row(i int) map[string]cty.Value {
	row := make(map[string]cty.Value, len(d.names))
	for _, name := range d.names {
		row[name] = d.cols[name][i]
	}
	return row
}

// Slice returns a new dataset holding rows [start, end). Column slices are
// copied so the result shares no backing arrays with d.
func (d *Dataset) Slice(start, end int) *Dataset {
	out := New(end - start)
	for _, name := range d.names {
		out.names = append(out.names, name)
		out.cols[name] = slices.Clone(d.cols[name][start:end])
	}
	return out
}

// Clone returns a deep copy of the column structure. Cell values are
// immutable and are shared.
func (d *Dataset) Clone() *Dataset {
	return d.Slice(0, d.rows)
}

// Split cuts the dataset into contiguous partitions of at most size rows, in
// row order. A dataset without rows yields a single empty partition.
func (d *Dataset) Split(size int) ([]*Dataset, error) {
	if size <= 0 {
		return nil, fmt.Errorf("partition size must be positive, got %d", size)
	}
	if d.rows == 0 {
		return []*Dataset{d.Clone()}, nil
	}
	parts := make([]*Dataset, 0, (d.rows+size-1)/size)
	for start := 0; start < d.rows; start += size {
		parts = append(parts, d.Slice(start, min(start+size, d.rows)))
	}
	return parts, nil
}

// Concat appends partitions back together in the given order. Every
// partition must carry the same column names; the first one decides their
// order.
func Concat(parts ...*Dataset) (*Dataset, error) {
	if len(parts) == 0 {
		return New(0), nil
	}
	rows := 0
	for _, p := range parts {
		rows += p.rows
	}
	out := New(rows)
	for _, name := range parts[0].names {
		col := make(Column, 0, rows)
		for i, p := range parts {
			pc, ok := p.cols[name]
			if !ok {
				return nil, fmt.Errorf("partition %d is missing column %q", i, name)
			}
			col = append(col, pc...)
		}
		if err := out.Set(name, col); err != nil {
			return nil, err
		}
	}
	for i, p := range parts[1:] {
		if len(p.names) != len(out.names) {
			return nil, fmt.Errorf("partition %d has %d columns, expected %d", i+1, len(p.names), len(out.names))
		}
	}
	return out, nil
}
