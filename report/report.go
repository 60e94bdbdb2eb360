// Package report renders font validation and registration statistics as
// markdown, with HTML and plain-text derivations for embedding elsewhere.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/net/html"

	"github.com/wudi/idmkit/fonts"
)

// ValidationMarkdown renders a document font check as markdown.
func ValidationMarkdown(result fonts.ValidationResult) string {
	var b strings.Builder
	b.WriteString("# Font Validation\n\n")
	if result.Passed {
		b.WriteString("**Status:** passed\n\n")
	} else {
		b.WriteString("**Status:** failed\n\n")
	}
	fmt.Fprintf(&b, "Required fonts: %d, available: %d, missing: %d\n\n",
		len(result.Required), len(result.Available), len(result.Missing))

	if len(result.Missing) > 0 {
		b.WriteString("## Missing Fonts\n\n")
		for _, name := range result.Missing {
			fmt.Fprintf(&b, "- %s\n", name)
		}
		b.WriteString("\n")
	}
	if len(result.CoverageIssues) > 0 {
		b.WriteString("## Coverage Issues\n\n")
		for _, issue := range result.CoverageIssues {
			fmt.Fprintf(&b, "- element %d, font %s: %d missing glyph(s) (%s)\n",
				issue.ElementID, issue.Font, len(issue.Missing), runeList(issue.Missing))
		}
		b.WriteString("\n")
	}
	if len(result.Messages) > 0 {
		b.WriteString("## Notes\n\n")
		for _, msg := range result.Messages {
			fmt.Fprintf(&b, "- %s\n", msg)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// TrackerMarkdown renders registration statistics and the substitution log as
// markdown.
func TrackerMarkdown(stats fonts.Stats, substitutions []fonts.Substitution) string {
	var b strings.Builder
	b.WriteString("# Font Registration\n\n")
	fmt.Fprintf(&b, "Attempts: %d, success rate: %.0f%%, fallback rate: %.0f%%, critical failures: %d\n\n",
		stats.Attempts, stats.SuccessRate*100, stats.FallbackRate*100, stats.CriticalFailures)
	if len(substitutions) > 0 {
		b.WriteString("## Substitutions\n\n")
		for _, s := range substitutions {
			fmt.Fprintf(&b, "- element %d: %s -> %s (%s)\n", s.ElementID, s.Original, s.Fallback, s.Reason)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// HTML converts a markdown report to HTML.
func HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("convert report: %w", err)
	}
	return buf.String(), nil
}

// PlainText strips tags from an HTML report, one line per block element.
func PlainText(htmlSrc string) (string, error) {
	node, err := html.Parse(strings.NewReader(htmlSrc))
	if err != nil {
		return "", fmt.Errorf("parse report html: %w", err)
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if b.Len() > 0 {
					b.WriteByte('\n')
				}
				b.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return b.String(), nil
}

func runeList(runes []rune) string {
	parts := make([]string, len(runes))
	for i, r := range runes {
		parts[i] = fmt.Sprintf("%q", r)
	}
	return strings.Join(parts, ", ")
}
