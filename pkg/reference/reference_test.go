package reference

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	t.Parallel()

	keys := Keys()

	assert.Equal(t, []string{"ambient", "dnb", "hiphop", "house", "techno"}, keys)
}

func TestLookup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		genre string
		found bool
	}{
		{name: "known genre", genre: "house", found: true},
		{name: "case insensitive", genre: "HOUSE", found: true},
		{name: "surrounding whitespace", genre: " techno ", found: true},
		{name: "unknown genre", genre: "polka", found: false},
		{name: "empty", genre: "", found: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			doc, ok := Lookup(tc.genre)

			assert.Equal(t, tc.found, ok)
			if tc.found {
				assert.NotEmpty(t, doc)
			} else {
				assert.Empty(t, doc)
			}
		})
	}
}

func TestLookupBounded(t *testing.T) {
	t.Parallel()

	const slack = 40 // room for the omission note or ellipsis

	for _, genre := range Keys() {
		doc, ok := Lookup(genre)
		require.True(t, ok)
		assert.LessOrEqual(t, len(doc), maxDocBytes+slack, "genre %s", genre)
	}
}

func TestTruncatePrefersSectionBoundary(t *testing.T) {
	t.Parallel()

	doc := "# Title\n\nintro\n\n## First\n\n" +
		strings.Repeat("a", maxDocBytes-40) +
		"\n## Second\n\n" +
		strings.Repeat("b", 500)

	got := truncate(doc)

	// The cut lands on the section boundary, not mid-word.
	assert.NotContains(t, got, "## Second")
	assert.Contains(t, got, "## First")
	assert.Contains(t, got, "(remaining sections omitted)")
}

func TestTruncateHardCutFallback(t *testing.T) {
	t.Parallel()

	doc := strings.Repeat("x", maxDocBytes+1000)

	got := truncate(doc)

	assert.True(t, strings.HasSuffix(got, "…"))
	assert.LessOrEqual(t, len(got), maxDocBytes+len("…"))
}

func TestTruncateShortDocUnchanged(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "# short", truncate("# short"))
}
