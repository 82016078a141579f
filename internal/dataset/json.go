package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// ReadJSON reads a dataset from a JSON array of objects. Column order is the
// sorted key order of the first record followed by keys first seen later.
// A key absent from a record reads as null.
func ReadJSON(r io.Reader, schema Schema) (*Dataset, error) {
	var records []map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode JSON records: %w", err)
	}

	var names []string
	known := make(map[string]struct{})
	for _, rec := range records {
		var fresh []string
		for k := range rec {
			if _, ok := known[k]; !ok {
				known[k] = struct{}{}
				fresh = append(fresh, k)
			}
		}
		sort.Strings(fresh)
		names = append(names, fresh...)
	}

	cols := make(map[string]Column, len(names))
	for _, name := range names {
		cols[name] = make(Column, len(records))
	}
	for i, rec := range records {
		for _, name := range names {
			raw, ok := rec[name]
			t := schema.typeOf(name)
			if !ok {
				cols[name][i] = cty.NullVal(t)
				continue
			}
			v, err := decodeJSONCell(raw, t)
			if err != nil {
				return nil, fmt.Errorf("record %d, key %q: %w", i, name, err)
			}
			cols[name][i] = v
		}
	}
	return FromColumns(names, cols)
}

func decodeJSONCell(raw json.RawMessage, t cty.Type) (cty.Value, error) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return cty.NullVal(t), nil
	}
	if t.Equals(cty.DynamicPseudoType) {
		implied, err := ctyjson.ImpliedType(raw)
		if err != nil {
			return cty.NilVal, err
		}
		t = implied
	}
	return ctyjson.Unmarshal(raw, t)
}

// WriteJSON writes the dataset as a JSON array of objects whose keys follow
// column order.
func WriteJSON(w io.Writer, d *Dataset) error {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i := 0; i < d.rows; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString("\n  {")
		for j, name := range d.names {
			if j > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(name)
			if err != nil {
				return err
			}
			cell, err := marshalCell(d.cols[name][i])
			if err != nil {
				return fmt.Errorf("row %d, column %q: %w", i, name, err)
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(cell)
		}
		buf.WriteByte('}')
	}
	if d.rows > 0 {
		buf.WriteByte('\n')
	}
	buf.WriteString("]\n")
	_, err := w.Write(buf.Bytes())
	return err
}

func marshalCell(v cty.Value) ([]byte, error) {
	if v.IsNull() {
		return []byte("null"), nil
	}
	return ctyjson.SimpleJSONValue{Value: v}.MarshalJSON()
}
