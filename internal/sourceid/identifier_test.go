package sourceid

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expectErr bool
		expected  *Identifier
	}{
		{
			name:     "simple path",
			raw:      "a.b.c",
			expected: &Identifier{Segments: []string{"a", "b", "c"}},
		},
		{
			name:     "single segment",
			raw:      "features",
			expected: &Identifier{Segments: []string{"features"}},
		},
		{
			name:     "hyphens and underscores",
			raw:      "feature-set.base_2",
			expected: &Identifier{Segments: []string{"feature-set", "base_2"}},
		},
		{name: "error - empty path segment", raw: "a..b", expectErr: true},
		{name: "error - trailing dot", raw: "a.b.", expectErr: true},
		{name: "error - path separator", raw: "a/b.c", expectErr: true},
		{name: "error - empty string", raw: "", expectErr: true},
		{name: "error - just hyphen", raw: "a.-.c", expectErr: true},
		{name: "error - just dot", raw: ".", expectErr: true},
		{name: "error - just double dot", raw: "..", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := Parse(tc.raw)

			if tc.expectErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, id)
			assert.True(t, tc.expected.Equal(id), "parsed identifier does not match")
			assert.Equal(t, tc.raw, id.String())
		})
	}
}

func TestIdentifier_Path(t *testing.T) {
	id, err := Parse("pkg.sub.transforms")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("pkg", "sub", "transforms.hcl"), id.Path(".hcl"))
}

func TestIdentifier_EqualNil(t *testing.T) {
	var nilID *Identifier
	assert.True(t, nilID.Equal(nil))
	assert.False(t, nilID.Equal(&Identifier{}))
	assert.Equal(t, "", nilID.String())
}
