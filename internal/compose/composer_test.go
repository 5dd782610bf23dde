package compose

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestCompose_SimpleDisclosure(t *testing.T) {
	t.Parallel()

	c := New(280)
	text, ok := c.Compose([]string{"AAA"}, "Şirket X bir anlaşma imzaladı.")
	require.True(t, ok)
	require.Equal(t, "📰 #AAA | Şirket X bir anlaşma imzaladı.", text)
}

func TestCompose_TwoCodes(t *testing.T) {
	t.Parallel()

	c := New(280)
	text, ok := c.Compose([]string{"AAA", "BBB"}, "İki şirket ortak girişim kurdu. Detaylar sonra.")
	require.True(t, ok)
	require.True(t, strings.HasPrefix(text, "📰 #AAA #BBB | "), text)
}

func TestCompose_ShortFirstSentencePullsSecond(t *testing.T) {
	t.Parallel()

	c := New(280)
	text, ok := c.Compose([]string{"AAA"}, "Anlaşma imzalandı. Detaylar yarın kamuya açıklanacak.")
	require.True(t, ok)
	require.Equal(t, "📰 #AAA | Anlaşma imzalandı. Detaylar yarın kamuya açıklanacak.", text)
}

func TestCompose_LongFirstSentenceStandsAlone(t *testing.T) {
	t.Parallel()

	c := New(280)
	text, ok := c.Compose([]string{"AAA"},
		"Şirket yönetim kurulu bugünkü toplantısında sermaye artırımına karar verdi. İkinci cümle gelmemeli.")
	require.True(t, ok)
	require.Equal(t,
		"📰 #AAA | Şirket yönetim kurulu bugünkü toplantısında sermaye artırımına karar verdi.",
		text)
}

func TestCompose_TruncatesAtWhitespaceWithinLimit(t *testing.T) {
	t.Parallel()

	c := New(280)
	content := strings.TrimSpace(strings.Repeat("kelime ", 45))
	text, ok := c.Compose([]string{"AAAA"}, content)
	require.True(t, ok)
	require.LessOrEqual(t, utf8.RuneCountInString(text), 280)
	require.True(t, strings.HasSuffix(text, "..."), text)
	// The cut lands on a word boundary, not mid-word.
	trimmed := strings.TrimSuffix(text, "...")
	require.True(t, strings.HasSuffix(trimmed, "kelime"), trimmed)
}

func TestCompose_LengthBoundHoldsForTinyLimits(t *testing.T) {
	t.Parallel()

	for limit := 15; limit <= 60; limit += 5 {
		c := New(limit)
		text, ok := c.Compose([]string{"AAA"},
			"Uzun bir açıklama metni, platform sınırına sığmayacak kadar ayrıntılı.")
		if !ok {
			continue
		}
		require.LessOrEqual(t, utf8.RuneCountInString(text), limit, "limit %d", limit)
	}
}

func TestCompose_BlankContentSkipped(t *testing.T) {
	t.Parallel()

	c := New(280)
	_, ok := c.Compose([]string{"AAA"}, "   ")
	require.False(t, ok)
}

func TestCompose_NoCodesSkipped(t *testing.T) {
	t.Parallel()

	c := New(280)
	_, ok := c.Compose(nil, "Geçerli bir açıklama metni.")
	require.False(t, ok)
}
