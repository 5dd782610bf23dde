// Package extract turns rendered feed blocks into structured news items.
package extract

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kapwire/kapwire/internal/config"
)

var (
	wsRun = regexp.MustCompile(`\s+`)
	// Relative-date noise the page appends or prepends to each row.
	relDateHead = regexp.MustCompile(`^(Dün|Bugün)\b\s*(\d{1,2}[:.]\d{2})?\s*`)
	relDateTail = regexp.MustCompile(`\b(Dün|Bugün)\b.*$`)
	clockTail   = regexp.MustCompile(`\b\d{1,2}:\d{2}\b.*$`)
)

// Policy bundles every extraction heuristic as data. Feed variants are
// expressed by building a different Policy, never by branching in the
// extractor itself.
type Policy struct {
	marker        *regexp.Regexp
	code          *regexp.Regexp
	banned        map[string]struct{}
	maxCodes      int
	minContentLen int
	boilerplate   []string
	nonNews       []*regexp.Regexp
}

// NewPolicy compiles a Policy from feed configuration.
func NewPolicy(cfg config.FeedConfig) (Policy, error) {
	marker, err := regexp.Compile(`\b` + regexp.QuoteMeta(cfg.Marker) + `\b\s*[•·\-–—.:|]*\s*`)
	if err != nil {
		return Policy{}, fmt.Errorf("compile marker pattern: %w", err)
	}
	code, err := regexp.Compile(fmt.Sprintf(`^[A-ZÇĞİÖŞÜ]{%d,%d}[0-9]{0,2}$`, cfg.CodeMinLen, cfg.CodeMaxLen))
	if err != nil {
		return Policy{}, fmt.Errorf("compile code pattern: %w", err)
	}

	banned := make(map[string]struct{}, len(cfg.BannedCodes))
	for _, tok := range cfg.BannedCodes {
		banned[strings.ToUpperSpecial(unicode.TurkishCase, tok)] = struct{}{}
	}

	boilerplate := make([]string, 0, len(cfg.BoilerplatePhrases))
	for _, phrase := range cfg.BoilerplatePhrases {
		boilerplate = append(boilerplate, strings.ToLowerSpecial(unicode.TurkishCase, phrase))
	}

	nonNews := make([]*regexp.Regexp, 0, len(cfg.NonNewsPatterns))
	for _, pattern := range cfg.NonNewsPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return Policy{}, fmt.Errorf("compile non-news pattern %q: %w", pattern, err)
		}
		nonNews = append(nonNews, re)
	}

	return Policy{
		marker:        marker,
		code:          code,
		banned:        banned,
		maxCodes:      cfg.MaxCodes,
		minContentLen: cfg.MinContentLen,
		boilerplate:   boilerplate,
		nonNews:       nonNews,
	}, nil
}

// markerIndex locates the disclosure marker in a block, or nil.
func (p Policy) markerIndex(text string) []int {
	return p.marker.FindStringIndex(text)
}

// leadingCodes consumes ticker codes from the front of the text that follows
// the marker. It returns the accepted codes plus the byte offset where the
// content begins. Scanning stops at the first token that is not a valid code.
func (p Policy) leadingCodes(rest string) ([]string, int) {
	var codes []string
	end := 0
	idx := 0

	for len(codes) < p.maxCodes {
		for idx < len(rest) {
			r, size := utf8.DecodeRuneInString(rest[idx:])
			if !unicode.IsSpace(r) && r != '/' && r != '•' && r != '·' {
				break
			}
			idx += size
		}
		start := idx
		for idx < len(rest) {
			r, size := utf8.DecodeRuneInString(rest[idx:])
			if unicode.IsSpace(r) || r == '/' {
				break
			}
			idx += size
		}
		if start == idx {
			break
		}
		// Codes render fully uppercase; validating the raw token keeps
		// capitalized ordinary words ("Şirket") from qualifying.
		token := strings.Trim(rest[start:idx], ":;,.|-–—•·")
		if !p.isCode(token) {
			break
		}
		codes = append(codes, token)
		end = idx
	}
	return codes, end
}

func (p Policy) isCode(token string) bool {
	if !p.code.MatchString(token) {
		return false
	}
	_, bad := p.banned[token]
	return !bad
}

// cleanContent strips leading punctuation and relative-date/clock noise and
// collapses whitespace. The result is render-noise free so it can feed the
// item fingerprint.
func (p Policy) cleanContent(s string) string {
	s = strings.TrimLeft(s, " \t:|.•·-–—")
	s = relDateHead.ReplaceAllString(s, "")
	if loc := relDateTail.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	if loc := clockTail.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	return strings.TrimSpace(wsRun.ReplaceAllString(s, " "))
}

// isNoise reports whether cleaned content should be discarded: too short,
// legal/disclaimer boilerplate, or a digest header rather than a disclosure.
func (p Policy) isNoise(content string) bool {
	if utf8.RuneCountInString(content) < p.minContentLen {
		return true
	}
	lower := strings.ToLowerSpecial(unicode.TurkishCase, content)
	for _, phrase := range p.boilerplate {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	for _, re := range p.nonNews {
		if re.MatchString(content) {
			return true
		}
	}
	return false
}
