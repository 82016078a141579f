package formatting

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/vk/varflow/internal/dataset"
)

// WriteTable renders the first head rows of ds as a table. A head of zero or
// less renders every row.
func WriteTable(w io.Writer, ds *dataset.Dataset, head int) error {
	names := ds.Names()
	if len(names) == 0 {
		_, err := fmt.Fprintf(w, "%s %s\n", text.FgYellow.Sprint("📋"), text.FgYellow.Sprint("Dataset has no columns"))
		return err
	}

	rows := ds.Len()
	if head > 0 && head < rows {
		rows = head
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	style := table.StyleRounded
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	t.SetStyle(style)

	header := make(table.Row, len(names))
	for i, name := range names {
		header[i] = name
	}
	t.AppendHeader(header)

	for i := 0; i < rows; i++ {
		row := make(table.Row, len(names))
		for j, name := range names {
			col, _ := ds.Column(name)
			s, err := dataset.FormatCell(col[i])
			if err != nil {
				return fmt.Errorf("row %d, column %q: %w", i, name, err)
			}
			row[j] = s
		}
		t.AppendRow(row)
	}

	if rows < ds.Len() {
		t.AppendFooter(table.Row{fmt.Sprintf("%d of %d rows", rows, ds.Len())})
	}
	t.Render()
	return nil
}
