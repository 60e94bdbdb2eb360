package batch

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestScriptFilterMatch(t *testing.T) {
	filter, err := NewScriptFilter(`function(el) { return el.font === "Arial" && el.text.includes("Total"); }`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	hit := textElement(1, "Total: 42", "Arial")
	miss := textElement(2, "Total: 42", "Courier")

	if ok, err := filter.Match(context.Background(), hit); err != nil || !ok {
		t.Errorf("match(hit) = (%v, %v), want true", ok, err)
	}
	if ok, err := filter.Match(context.Background(), miss); err != nil || ok {
		t.Errorf("match(miss) = (%v, %v), want false", ok, err)
	}
}

func TestScriptFilterRejectsNonFunction(t *testing.T) {
	if _, err := NewScriptFilter(`42`); err == nil {
		t.Error("a non-function source must fail to compile")
	}
}

func TestScriptFilterContextCancellation(t *testing.T) {
	filter, err := NewScriptFilter(`function(el) { while (true) {} }`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()
	if _, err := filter.Match(ctx, textElement(1, "x", "Arial")); err == nil || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context deadline error, got %v", err)
	}
}

func TestScriptFilterDrivesReplace(t *testing.T) {
	filter, err := NewScriptFilter(`function(el) { return el.id === 1; }`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	first := textElement(1, "mark", "Helvetica")
	second := textElement(2, "mark", "Helvetica")
	doc := oneLayerDoc(first, second)

	result := newModifier().ReplaceText(doc, []Mapping{{Old: "mark", New: "marked"}}, Options{
		ElementFilter: filter.Bind(context.Background(), nil),
	})
	if result.Modified != 1 || result.Skipped != 1 {
		t.Errorf("modified=%d skipped=%d, want 1/1", result.Modified, result.Skipped)
	}
	if first.NormalizedText != "marked" || second.NormalizedText != "mark" {
		t.Errorf("texts = %q, %q", first.NormalizedText, second.NormalizedText)
	}
}

func TestScriptFilterBindReportsErrors(t *testing.T) {
	filter, err := NewScriptFilter(`function(el) { throw new Error("boom"); }`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	var got error
	f := filter.Bind(context.Background(), func(err error) { got = err })
	if f(textElement(1, "x", "Arial")) {
		t.Error("erroring filter must exclude the element")
	}
	if got == nil {
		t.Error("error was not reported")
	}
}
