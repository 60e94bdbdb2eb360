package report

import (
	"strings"
	"testing"

	"github.com/wudi/idmkit/fonts"
)

func TestValidationMarkdown(t *testing.T) {
	md := ValidationMarkdown(fonts.ValidationResult{
		Required:       []string{"Arial", "GhostSans"},
		Available:      []string{"Arial"},
		Missing:        []string{"GhostSans"},
		CoverageIssues: []fonts.CoverageIssue{{Font: "Arial", ElementID: 7, Missing: []rune{'€'}}},
		Messages:       []string{`coverage unknown for "Broken": parse font: bad magic`},
	})
	for _, want := range []string{"failed", "GhostSans", "element 7", "'€'", "coverage unknown"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestTrackerMarkdown(t *testing.T) {
	md := TrackerMarkdown(
		fonts.Stats{Attempts: 4, SuccessRate: 0.75, FallbackRate: 0.25, CriticalFailures: 1},
		[]fonts.Substitution{{Original: "Wanted", Fallback: "Helvetica", ElementID: 3, Reason: "unavailable"}},
	)
	for _, want := range []string{"75%", "25%", "Wanted -> Helvetica", "element 3"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestHTMLAndPlainText(t *testing.T) {
	md := ValidationMarkdown(fonts.ValidationResult{Passed: true, Required: []string{"Arial"}, Available: []string{"Arial"}})
	h, err := HTML(md)
	if err != nil {
		t.Fatalf("html: %v", err)
	}
	if !strings.Contains(h, "<h1>") {
		t.Errorf("heading not converted:\n%s", h)
	}
	plain, err := PlainText(h)
	if err != nil {
		t.Fatalf("plain text: %v", err)
	}
	if strings.Contains(plain, "<") {
		t.Errorf("tags leaked into plain text:\n%s", plain)
	}
	if !strings.Contains(plain, "Font Validation") {
		t.Errorf("text content lost:\n%s", plain)
	}
}
