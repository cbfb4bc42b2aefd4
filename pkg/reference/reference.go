// Package reference ships curated genre guides for Strudel pattern writing.
// The guides are compiled into the binary so lookups never touch the
// filesystem and the set of genres is fixed at build time.
package reference

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed genres/*.md
var genreFS embed.FS

// maxDocBytes bounds how much of a guide a single lookup returns. Guides are
// fed into model context, so an oversized document is cut at a section
// boundary instead of being returned whole.
const maxDocBytes = 4000

var genres = loadGenres()

func loadGenres() map[string]string {
	entries, err := fs.ReadDir(genreFS, "genres")
	if err != nil {
		panic("reference: embedded genre directory missing: " + err.Error())
	}

	docs := make(map[string]string, len(entries))
	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), ".md")
		data, err := genreFS.ReadFile(path.Join("genres", entry.Name()))
		if err != nil {
			panic("reference: unreadable embedded guide " + entry.Name() + ": " + err.Error())
		}
		docs[name] = string(data)
	}
	return docs
}

// Keys returns the available genre names in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(genres))
	for k := range genres {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lookup returns the guide for the named genre, truncated to a bounded size.
// The second return is false when the genre is unknown.
func Lookup(genre string) (string, bool) {
	doc, ok := genres[strings.ToLower(strings.TrimSpace(genre))]
	if !ok {
		return "", false
	}
	return truncate(doc), true
}

// truncate cuts doc to maxDocBytes, preferring the last "## " section
// boundary before the limit so the result stays coherent markdown. When no
// boundary exists in range it hard-cuts and appends an ellipsis.
func truncate(doc string) string {
	if len(doc) <= maxDocBytes {
		return doc
	}

	head := doc[:maxDocBytes]
	if idx := strings.LastIndex(head, "\n## "); idx > 0 {
		return doc[:idx] + "\n\n(remaining sections omitted)\n"
	}
	return head + "…"
}
