package sourceid

import (
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

// segmentRegex matches a single segment of an identifier, e.g. `base` or
// `feature-set_2`.
var segmentRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Identifier is the structured representation of a module identifier.
type Identifier struct {
	Segments []string
}

// isValidSegmentName checks for undesirable but technically valid names.
func isValidSegmentName(name string) bool {
	return strings.Trim(name, "-") != ""
}

// Parse creates a new Identifier by parsing its canonical dotted form.
func Parse(raw string) (*Identifier, error) {
	if raw == "" {
		return nil, fmt.Errorf("identifier cannot be empty")
	}

	id := &Identifier{}
	for _, segment := range strings.Split(raw, ".") {
		if segment == "" {
			return nil, fmt.Errorf("identifier %q contains an empty segment", raw)
		}
		if !segmentRegex.MatchString(segment) {
			return nil, fmt.Errorf("invalid segment %q in identifier %q", segment, raw)
		}
		if !isValidSegmentName(segment) {
			return nil, fmt.Errorf("invalid segment name %q in identifier %q", segment, raw)
		}
		id.Segments = append(id.Segments, segment)
	}
	return id, nil
}

// String serializes the Identifier into its canonical dotted form.
func (id *Identifier) String() string {
	if id == nil {
		return ""
	}
	return strings.Join(id.Segments, ".")
}

// Path returns the relative file path the identifier names, with ext
// appended to the last segment.
func (id *Identifier) Path(ext string) string {
	return filepath.Join(id.Segments...) + ext
}

// Equal checks for equality between two Identifier pointers.
func (id *Identifier) Equal(other *Identifier) bool {
	if id == nil || other == nil {
		return id == other
	}
	return slices.Equal(id.Segments, other.Segments)
}
