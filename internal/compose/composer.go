// Package compose builds bounded-length post texts from news items.
package compose

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	markerEmoji = "📰"
	headSep     = " | "
	ellipsis    = "..."

	// A first sentence shorter than this pulls in the next one, so very
	// terse disclosures still read as a complete post.
	defaultMinFirstSentence = 40

	// When truncating, a whitespace boundary is only honored if it lies past
	// this share of the budget. Cutting much earlier wastes too much room.
	spaceCutNumerator   = 7
	spaceCutDenominator = 10
)

var sentenceEnd = regexp.MustCompile(`[.!?]+`)

// Composer turns (codes, content) into a final post text.
// Lengths are counted in runes: the platform limit is a character limit and
// the feed is Turkish.
type Composer struct {
	Limit            int
	MinFirstSentence int
}

// New returns a Composer bounded to the given platform limit.
func New(limit int) Composer {
	return Composer{
		Limit:            limit,
		MinFirstSentence: defaultMinFirstSentence,
	}
}

// Compose returns the post text and true, or "" and false when there is
// nothing postable. The returned text never exceeds the limit.
func (c Composer) Compose(codes []string, content string) (string, bool) {
	if len(codes) == 0 {
		return "", false
	}
	body := leadSentences(content, c.MinFirstSentence)
	if body == "" {
		return "", false
	}

	head := c.head(codes)
	text := head + body
	if utf8.RuneCountInString(text) <= c.Limit {
		return text, true
	}

	budget := c.Limit - utf8.RuneCountInString(head) - utf8.RuneCountInString(ellipsis)
	if budget <= 0 {
		return "", false
	}
	return head + truncateAtSpace(body, budget) + ellipsis, true
}

func (c Composer) head(codes []string) string {
	tags := make([]string, 0, len(codes))
	for _, code := range codes {
		tags = append(tags, "#"+code)
	}
	return markerEmoji + " " + strings.Join(tags, " ") + headSep
}

// leadSentences picks the first sentence of the content, appending the second
// when the first is too short to stand alone.
func leadSentences(content string, minFirst int) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}
	parts := sentenceEnd.Split(content, -1)
	first := strings.TrimSpace(parts[0])
	if first == "" {
		return content
	}
	if utf8.RuneCountInString(first) < minFirst && len(parts) > 1 {
		if second := strings.TrimSpace(parts[1]); second != "" {
			return ensureTerminated(first + ". " + second)
		}
	}
	return ensureTerminated(first)
}

func ensureTerminated(s string) string {
	if strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?") {
		return s
	}
	return s + "."
}

// truncateAtSpace cuts s down to at most budget runes, preferring the last
// whitespace boundary within the budget.
func truncateAtSpace(s string, budget int) string {
	runes := []rune(s)
	if len(runes) <= budget {
		return s
	}
	cut := runes[:budget]
	lastSpace := -1
	for i, r := range cut {
		if unicode.IsSpace(r) {
			lastSpace = i
		}
	}
	if lastSpace > budget*spaceCutNumerator/spaceCutDenominator {
		cut = cut[:lastSpace]
	}
	return strings.TrimRight(string(cut), " ")
}
