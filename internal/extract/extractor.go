package extract

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kapwire/kapwire/internal/feed"
)

// Extractor applies a Policy to raw page blocks.
type Extractor struct {
	policy Policy
	hasher feed.Hasher
	logger *zap.Logger
}

// New constructs an Extractor.
func New(policy Policy, hasher feed.Hasher, logger *zap.Logger) *Extractor {
	return &Extractor{
		policy: policy,
		hasher: hasher,
		logger: logger,
	}
}

// Extract turns a snapshot into news items: newest-first in, same relative
// order out, deduplicated by ID. One unparseable block never aborts the rest.
func (e *Extractor) Extract(blocks []feed.RawBlock) []feed.NewsItem {
	items := make([]feed.NewsItem, 0, len(blocks))
	seen := make(map[string]struct{}, len(blocks))

	for _, block := range blocks {
		item, ok := e.extractBlock(block)
		if !ok {
			continue
		}
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		items = append(items, item)
	}
	return items
}

func (e *Extractor) extractBlock(block feed.RawBlock) (item feed.NewsItem, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("block parse panic, block discarded",
				zap.Int("block", block.Index),
				zap.Any("panic", r),
				zap.String("raw", snippet(block.Text)),
			)
			item, ok = feed.NewsItem{}, false
		}
	}()

	text := strings.TrimSpace(wsRun.ReplaceAllString(block.Text, " "))
	loc := e.policy.markerIndex(text)
	if loc == nil {
		return feed.NewsItem{}, false
	}

	rest := text[loc[1]:]
	codes, contentStart := e.policy.leadingCodes(rest)
	if len(codes) == 0 {
		e.logger.Debug("no valid codes after marker",
			zap.Int("block", block.Index),
			zap.String("raw", snippet(text)),
		)
		return feed.NewsItem{}, false
	}

	content := e.policy.cleanContent(rest[contentStart:])
	if content == "" || e.policy.isNoise(content) {
		e.logger.Debug("content rejected as noise",
			zap.Int("block", block.Index),
			zap.Strings("codes", codes),
			zap.String("raw", snippet(text)),
		)
		return feed.NewsItem{}, false
	}

	id, err := e.fingerprint(codes, content)
	if err != nil {
		e.logger.Warn("fingerprint failed, block discarded",
			zap.Int("block", block.Index),
			zap.Error(err),
			zap.String("raw", snippet(text)),
		)
		return feed.NewsItem{}, false
	}

	return feed.NewsItem{
		ID:      id,
		Codes:   codes,
		Content: content,
		Raw:     text,
	}, true
}

// fingerprint derives the stable item ID from codes plus cleaned content.
// Nothing clock-derived goes in, so re-renders hash identically.
func (e *Extractor) fingerprint(codes []string, content string) (string, error) {
	id, err := e.hasher.Short([]byte(strings.Join(codes, ",") + "|" + content))
	if err != nil {
		return "", fmt.Errorf("hash item: %w", err)
	}
	return id, nil
}

const snippetLen = 160

func snippet(s string) string {
	if len(s) <= snippetLen {
		return s
	}
	return s[:snippetLen] + "…"
}
