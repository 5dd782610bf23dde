// Package render implements the page renderers that snapshot the feed as
// ordered text blocks.
package render

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/kapwire/kapwire/internal/feed"
)

// Config captures everything a renderer needs to take one snapshot.
type Config struct {
	URL          string
	FilterTab    string
	RowSelector  string
	MarkerHint   string
	UserAgent    string
	Headless     bool
	NavTimeout   time.Duration
	Settle       time.Duration
	DebugFile    string
	SnapshotFile string
}

var wsRun = regexp.MustCompile(`\s+`)

// BlocksFromHTML splits a rendered document into feed rows, page order
// (newest-first on the source feed). Only rows containing the marker hint
// survive, and of nested matches only the innermost element is kept so one
// disclosure does not arrive wrapped in every ancestor container.
func BlocksFromHTML(html, rowSelector, markerHint string) ([]feed.RawBlock, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse snapshot html: %w", err)
	}

	var blocks []feed.RawBlock
	doc.Find(rowSelector).Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(wsRun.ReplaceAllString(sel.Text(), " "))
		if text == "" {
			return
		}
		if markerHint != "" && !strings.Contains(text, markerHint) {
			return
		}
		if hasMatchingDescendant(sel, rowSelector, markerHint) {
			return
		}
		blocks = append(blocks, feed.RawBlock{Index: len(blocks), Text: text})
	})
	return blocks, nil
}

func hasMatchingDescendant(sel *goquery.Selection, rowSelector, markerHint string) bool {
	found := false
	sel.Find(rowSelector).EachWithBreak(func(_ int, inner *goquery.Selection) bool {
		if markerHint == "" || strings.Contains(inner.Text(), markerHint) {
			found = true
			return false
		}
		return true
	})
	return found
}

// dumpDebug writes the raw HTML snapshot for offline inspection when a debug
// file is configured.
func dumpDebug(path, html string, logger *zap.Logger) {
	if path == "" {
		return
	}
	if err := os.WriteFile(path, []byte(html), 0o600); err != nil {
		logger.Warn("debug snapshot write failed", zap.String("path", path), zap.Error(err))
	}
}
