// Package feed defines the core types and interfaces shared across the
// syndication pipeline.
package feed

// RawBlock is one opaque feed row as the page rendered it. Blocks arrive
// newest-first, in the order the renderer encountered them.
type RawBlock struct {
	Index int
	Text  string
}

// NewsItem is one structured disclosure extracted from a snapshot.
//
// ID is a pure function of (Codes, cleaned Content). Render-time noise such
// as timestamps or whitespace never feeds into it, so the same disclosure
// re-renders to the same ID across runs.
type NewsItem struct {
	ID      string
	Codes   []string
	Content string
	// Raw keeps the original block text so discarded or misparsed items can
	// be debugged offline without replaying the page.
	Raw string
}
