// Package batch applies bulk text modifications to a document in place:
// mapping-ordered substring replacement, variable substitution, and
// document-wide font/licensing checks.
package batch

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/wudi/idmkit/fonts"
	"github.com/wudi/idmkit/idm"
	"github.com/wudi/idmkit/observability"
)

// ElementFilter decides whether a text element participates in a batch
// operation.
type ElementFilter func(*idm.Text) bool

// UnitFilter decides whether a page or canvas participates; index is the
// unit's position in the document.
type UnitFilter func(index int, unit idm.Unit) bool

// Mapping is one ordered (old, new) substring replacement.
type Mapping struct {
	Old string
	New string
}

// Variable is one ${name} substitution.
type Variable struct {
	Name          string
	Value         string
	CaseSensitive bool
}

// FontWarning reports a coverage problem introduced by a modification. It is
// advisory: the modification itself is kept.
type FontWarning struct {
	ElementID int
	Font      string
	Missing   []rune
	Message   string
}

// Options narrow a batch operation and control font re-validation.
type Options struct {
	ElementFilter ElementFilter
	UnitFilter    UnitFilter
	ValidateFonts bool
}

// Result summarizes one batch operation. Skipped counts elements excluded by
// a filter or left unchanged; it is bookkeeping, never an error.
type Result struct {
	Modified     int
	Skipped      int
	FontWarnings []FontWarning
}

// Modifier mutates documents in place. It never renames element ids and never
// removes elements.
type Modifier struct {
	validator *fonts.Validator
	log       observability.Logger
}

// NewModifier builds a modifier; the validator backs font re-validation and
// licensing checks.
func NewModifier(validator *fonts.Validator, log observability.Logger) *Modifier {
	if log == nil {
		log = observability.NopLogger{}
	}
	return &Modifier{validator: validator, log: log}
}

// ReplaceText applies every mapping entry, in order, to each text element
// passing the filters. Replacement is plain substring replacement over both
// the raw and normalized text, kept in lock-step.
//
// Replacement is not idempotent: mapping "Hello" -> "[MODIFIED] Hello" applied
// twice yields "[MODIFIED] [MODIFIED] Hello". Callers that need idempotence
// must pre-check for their own markers.
func (m *Modifier) ReplaceText(doc *idm.Document, mapping []Mapping, opts Options) Result {
	return m.apply(doc, opts, func(s string) string {
		for _, entry := range mapping {
			s = strings.ReplaceAll(s, entry.Old, entry.New)
		}
		return s
	})
}

// SubstituteVariables replaces ${name} placeholders, case-sensitively or not
// per variable.
func (m *Modifier) SubstituteVariables(doc *idm.Document, vars []Variable, opts Options) Result {
	return m.apply(doc, opts, func(s string) string {
		for _, v := range vars {
			s = substitutePlaceholder(s, v)
		}
		return s
	})
}

func (m *Modifier) apply(doc *idm.Document, opts Options, transform func(string) string) Result {
	var result Result
	for i, unit := range doc.Units {
		if opts.UnitFilter != nil && !opts.UnitFilter(i, unit) {
			for _, layer := range unit.UnitLayers() {
				layer.EachText(func(*idm.Text) { result.Skipped++ })
			}
			continue
		}
		for _, layer := range unit.UnitLayers() {
			layer.EachText(func(txt *idm.Text) {
				if opts.ElementFilter != nil && !opts.ElementFilter(txt) {
					result.Skipped++
					return
				}
				newNormalized := transform(txt.NormalizedText)
				newRaw := transform(txt.RawText)
				if newNormalized == txt.NormalizedText && newRaw == txt.RawText {
					result.Skipped++
					return
				}
				txt.NormalizedText = newNormalized
				txt.RawText = newRaw
				result.Modified++
				if opts.ValidateFonts {
					if w, ok := m.checkCoverage(txt); ok {
						result.FontWarnings = append(result.FontWarnings, w)
					}
				}
			})
		}
	}
	m.log.Debug("batch modification",
		observability.Int("modified", result.Modified),
		observability.Int("skipped", result.Skipped),
		observability.Int("font_warnings", len(result.FontWarnings)))
	return result
}

// checkCoverage re-validates an element's font against its new text. Fonts
// that cannot be resolved or parsed produce an advisory message rather than a
// coverage failure.
func (m *Modifier) checkCoverage(txt *idm.Text) (FontWarning, bool) {
	if m.validator == nil || txt.Font.Name == "" {
		return FontWarning{}, false
	}
	path, ok := m.validator.Resolve(txt.Font.Name)
	if !ok {
		if m.validator.Available(txt.Font.Name) {
			return FontWarning{}, false
		}
		return FontWarning{
			ElementID: txt.ElementID,
			Font:      txt.Font.Name,
			Message:   fmt.Sprintf("font %q unavailable for modified text", txt.Font.Name),
		}, true
	}
	covered, missing, err := fonts.Covers(path, txt.NormalizedText)
	if err != nil {
		return FontWarning{
			ElementID: txt.ElementID,
			Font:      txt.Font.Name,
			Message:   fmt.Sprintf("coverage unknown: %v", err),
		}, true
	}
	if covered {
		return FontWarning{}, false
	}
	return FontWarning{
		ElementID: txt.ElementID,
		Font:      txt.Font.Name,
		Missing:   missing,
		Message:   fmt.Sprintf("font %q does not cover modified text", txt.Font.Name),
	}, true
}

// substitutePlaceholder replaces ${name} occurrences. The case-insensitive
// path matches the name only; the ${} delimiters are literal. Matching folds
// runes in place rather than lowercasing the whole string first: lowercasing
// can change UTF-8 byte lengths, so offsets into a lowered copy do not map
// back onto the original.
func substitutePlaceholder(s string, v Variable) string {
	placeholder := "${" + v.Name + "}"
	if v.CaseSensitive {
		return strings.ReplaceAll(s, placeholder, v.Value)
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		if end, ok := foldMatch(s, i, placeholder); ok {
			b.WriteString(v.Value)
			i = end
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		b.WriteString(s[i : i+size])
		i += size
	}
	return b.String()
}

// foldMatch reports whether target matches s at byte offset i under simple
// case folding, returning the offset just past the match.
func foldMatch(s string, i int, target string) (int, bool) {
	for _, tr := range target {
		r, size := utf8.DecodeRuneInString(s[i:])
		if size == 0 {
			return 0, false
		}
		if r != tr && unicode.ToLower(r) != unicode.ToLower(tr) {
			return 0, false
		}
		i += size
	}
	return i, true
}

// licensedFonts is the built-in allow-list consulted by ValidateDocumentFonts
// when licensing checks are requested. Keys are families; style variants like
// "Helvetica-Bold" are reduced to their family before lookup.
var licensedFonts = map[string]bool{
	"helvetica":       true,
	"times":           true,
	"times-roman":     true,
	"courier":         true,
	"symbol":          true,
	"zapfdingbats":    true,
	"arial":           true,
	"times new roman": true,
	"courier new":     true,
	"dejavu sans":     true,
	"liberation sans": true,
}

func fontLicensed(name string) bool {
	base := strings.ToLower(strings.TrimSpace(name))
	if licensedFonts[base] {
		return true
	}
	family, _, _ := strings.Cut(base, "-")
	return licensedFonts[family]
}

// LicenseReport extends a validation result with licensing flags.
type LicenseReport struct {
	Validation fonts.ValidationResult
	Unlicensed []string
}

// ValidateDocumentFonts delegates to the font validator and, when
// checkLicensing is set, flags every required font absent from the built-in
// allow-list.
func (m *Modifier) ValidateDocumentFonts(doc *idm.Document, checkLicensing bool) LicenseReport {
	report := LicenseReport{Validation: m.validator.ValidateDocument(doc)}
	if !checkLicensing {
		return report
	}
	for _, name := range report.Validation.Required {
		if !fontLicensed(name) {
			report.Unlicensed = append(report.Unlicensed, name)
		}
	}
	return report
}
