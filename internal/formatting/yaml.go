package formatting

import (
	"fmt"
	"io"

	"github.com/vk/varflow/internal/dataset"
	"gopkg.in/yaml.v3"
)

// WriteYAML writes ds as a sequence of row mappings. Keys keep the dataset's
// column order.
func WriteYAML(w io.Writer, ds *dataset.Dataset) error {
	names := ds.Names()
	doc := &yaml.Node{Kind: yaml.SequenceNode}

	for i := 0; i < ds.Len(); i++ {
		row := &yaml.Node{Kind: yaml.MappingNode}
		for _, name := range names {
			col, _ := ds.Column(name)
			value := &yaml.Node{}
			if err := value.Encode(dataset.ToNative(col[i])); err != nil {
				return fmt.Errorf("row %d, column %q: %w", i, name, err)
			}
			row.Content = append(row.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name},
				value,
			)
		}
		doc.Content = append(doc.Content, row)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}
