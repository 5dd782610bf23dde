package state

import (
	"github.com/kapwire/kapwire/internal/feed"
)

// Delta computes which items from a newest-first snapshot are new relative to
// the cursor and the posted history, returned oldest-first (posting order).
//
// When the cursor id is set but no longer present in the snapshot the feed
// has rotated past it; the whole snapshot becomes candidate material instead
// of silently dropping history. The per-run cap downstream keeps that bounded.
func (s *Store) Delta(items []feed.NewsItem) []feed.NewsItem {
	cursor := s.state.LastID

	fresh := items
	if cursor != "" {
		for i, item := range items {
			if item.ID == cursor {
				fresh = items[:i]
				break
			}
		}
	}

	candidates := make([]feed.NewsItem, 0, len(fresh))
	for _, item := range fresh {
		// The same disclosure can match at several positions in one snapshot,
		// or resurface after the cursor already moved on.
		if s.IsPosted(item.ID) {
			continue
		}
		candidates = append(candidates, item)
	}

	for i, j := 0, len(candidates)-1; i < j; i, j = i+1, j-1 {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	}
	return candidates
}
