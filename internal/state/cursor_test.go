package state

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kapwire/kapwire/internal/feed"
)

func snapshotItems(ids ...string) []feed.NewsItem {
	items := make([]feed.NewsItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, feed.NewsItem{ID: id})
	}
	return items
}

func deltaIDs(items []feed.NewsItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func TestDelta_FirstRunTakesEverythingOldestFirst(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t, 100)
	require.NoError(t, s.Load())

	got := s.Delta(snapshotItems("n3", "n2", "n1"))
	require.Equal(t, []string{"n1", "n2", "n3"}, deltaIDs(got))
}

func TestDelta_StopsAtCursorExclusive(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t, 100)
	require.NoError(t, s.Load())
	s.SetLastID("n2")

	got := s.Delta(snapshotItems("n4", "n3", "n2", "n1"))
	require.Equal(t, []string{"n3", "n4"}, deltaIDs(got))
}

func TestDelta_CursorAtNewestYieldsNothing(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t, 100)
	require.NoError(t, s.Load())
	s.SetLastID("n4")

	require.Empty(t, s.Delta(snapshotItems("n4", "n3", "n2")))
}

func TestDelta_RotatedCursorTakesWholeSnapshot(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t, 100)
	require.NoError(t, s.Load())
	s.SetLastID("gone")

	got := s.Delta(snapshotItems("n3", "n2", "n1"))
	require.Equal(t, []string{"n1", "n2", "n3"}, deltaIDs(got))
}

func TestDelta_NeverIncludesAlreadyPosted(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t, 100)
	require.NoError(t, s.Load())
	s.MarkPosted("n2")

	got := s.Delta(snapshotItems("n3", "n2", "n1"))
	require.Equal(t, []string{"n1", "n3"}, deltaIDs(got))
}
