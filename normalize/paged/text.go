package paged

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// normalizeSpacing collapses whitespace runs introduced by backend spacing
// artifacts, but only when the overall whitespace density of the span exceeds
// the configured threshold. It reports whether the text was adjusted.
func normalizeSpacing(s string, threshold float64) (string, bool) {
	runes := []rune(s)
	if len(runes) == 0 {
		return s, false
	}
	spaces := 0
	for _, r := range runes {
		if unicode.IsSpace(r) {
			spaces++
		}
	}
	if float64(spaces)/float64(len(runes)) <= threshold {
		return s, false
	}

	var b strings.Builder
	b.Grow(len(s))
	inRun := false
	for _, r := range runes {
		if unicode.IsSpace(r) {
			if !inRun {
				b.WriteByte(' ')
				inRun = true
			}
			continue
		}
		inRun = false
		b.WriteRune(r)
	}
	out := b.String()
	return out, out != s
}

// normalizeText produces the normalized form of a raw span: density-gated
// spacing collapse followed by Unicode NFC.
func normalizeText(raw string, threshold float64) (string, bool) {
	s, adjusted := normalizeSpacing(raw, threshold)
	return norm.NFC.String(s), adjusted
}
