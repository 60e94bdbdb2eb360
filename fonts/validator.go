// Package fonts provides font availability and coverage validation plus the
// deterministic fallback policy used when a requested font cannot be
// registered.
package fonts

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode"

	gofont "github.com/go-text/typesetting/font"
	"golang.org/x/image/font/sfnt"

	"github.com/wudi/idmkit/idm"
	"github.com/wudi/idmkit/observability"
)

// builtinFonts are always considered available: the standard base fonts plus
// the aliases backends commonly emit for them.
var builtinFonts = map[string]string{
	"helvetica":             "Helvetica",
	"helvetica-bold":        "Helvetica-Bold",
	"helvetica-oblique":     "Helvetica-Oblique",
	"helvetica-boldoblique": "Helvetica-BoldOblique",
	"times-roman":           "Times-Roman",
	"times-bold":            "Times-Bold",
	"times-italic":          "Times-Italic",
	"times-bolditalic":      "Times-BoldItalic",
	"courier":               "Courier",
	"courier-bold":          "Courier-Bold",
	"courier-oblique":       "Courier-Oblique",
	"courier-boldoblique":   "Courier-BoldOblique",
	"symbol":                "Symbol",
	"zapfdingbats":          "ZapfDingbats",
	"arial":                 "Helvetica",
	"arial-bold":            "Helvetica-Bold",
	"times new roman":       "Times-Roman",
	"courier new":           "Courier",
}

// Validator answers font availability and coverage questions against one
// configured font directory. The directory scan is cached; concurrent readers
// are safe, but directory changes require an explicit Refresh.
type Validator struct {
	dir string
	log observability.Logger

	mu    sync.RWMutex
	index map[string]string
}

// NewValidator builds a validator over dir and performs the initial scan.
// Scan problems are logged, not fatal: an unreadable directory just means no
// file-backed fonts are available.
func NewValidator(dir string, log observability.Logger) *Validator {
	if log == nil {
		log = observability.NopLogger{}
	}
	v := &Validator{dir: dir, log: log, index: map[string]string{}}
	if err := v.Refresh(); err != nil {
		log.Warn("font directory scan failed",
			observability.String("dir", dir),
			observability.Error("err", err))
	}
	return v
}

// Refresh rescans the font directory, indexing every .ttf/.otf by its file
// stem and by the family and PostScript names read from the font itself.
func (v *Validator) Refresh() error {
	index := map[string]string{}
	if v.dir != "" {
		entries, err := os.ReadDir(v.dir)
		if err != nil {
			v.mu.Lock()
			v.index = index
			v.mu.Unlock()
			return fmt.Errorf("read font dir: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := strings.ToLower(filepath.Ext(entry.Name()))
			if ext != ".ttf" && ext != ".otf" {
				continue
			}
			path := filepath.Join(v.dir, entry.Name())
			stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
			index[strings.ToLower(stem)] = path
			for _, name := range faceNames(path) {
				index[strings.ToLower(name)] = path
			}
		}
	}
	v.mu.Lock()
	v.index = index
	v.mu.Unlock()
	return nil
}

// faceNames reads the family and PostScript names out of a font file. A file
// that cannot be parsed contributes only its file stem to the index.
func faceNames(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil
	}
	buf := &sfnt.Buffer{}
	var names []string
	if family, err := f.Name(buf, sfnt.NameIDFamily); err == nil && family != "" {
		names = append(names, family)
	}
	if ps, err := f.Name(buf, sfnt.NameIDPostScript); err == nil && ps != "" {
		names = append(names, ps)
	}
	return names
}

// Available reports whether name is a built-in font or resolves to a file in
// the scanned directory.
func (v *Validator) Available(name string) bool {
	if _, ok := builtinFonts[strings.ToLower(strings.TrimSpace(name))]; ok {
		return true
	}
	_, ok := v.Resolve(name)
	return ok
}

// Resolve maps a font name to a file path in the scanned directory.
func (v *Validator) Resolve(name string) (string, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	path, ok := v.index[strings.ToLower(strings.TrimSpace(name))]
	return path, ok
}

// Covers loads the font at path and reports every non-whitespace rune of text
// absent from its character map. An unparseable font returns an error so the
// caller can treat coverage as unknown rather than failed.
func Covers(path, text string) (bool, []rune, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, nil, fmt.Errorf("read font: %w", err)
	}
	face, err := gofont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return false, nil, fmt.Errorf("parse font: %w", err)
	}
	var missing []rune
	seen := map[rune]bool{}
	for _, r := range text {
		if unicode.IsSpace(r) || seen[r] {
			continue
		}
		seen[r] = true
		if _, ok := face.NominalGlyph(r); !ok {
			missing = append(missing, r)
		}
	}
	return len(missing) == 0, missing, nil
}

// CoverageIssue records the runes a specific element's font cannot render.
type CoverageIssue struct {
	Font      string
	ElementID int
	Missing   []rune
}

// ValidationResult aggregates a document-wide font check.
type ValidationResult struct {
	Required       []string
	Available      []string
	Missing        []string
	CoverageIssues []CoverageIssue
	Messages       []string
	Passed         bool
}

// ValidateDocument walks every text element in the document, collects the set
// of required fonts, and checks availability per font and coverage per
// element. Corrupt font files degrade to a logged message, not a failure.
func (v *Validator) ValidateDocument(doc *idm.Document) ValidationResult {
	result := ValidationResult{Passed: true}
	required := map[string]bool{}

	doc.EachText(func(txt *idm.Text) {
		name := txt.Font.Name
		if name == "" {
			return
		}
		if !required[name] {
			required[name] = true
			result.Required = append(result.Required, name)
			if v.Available(name) {
				result.Available = append(result.Available, name)
			} else {
				result.Missing = append(result.Missing, name)
				result.Passed = false
			}
		}

		path, ok := v.Resolve(name)
		if !ok {
			return
		}
		covered, missing, err := Covers(path, txt.NormalizedText)
		if err != nil {
			msg := fmt.Sprintf("coverage unknown for %q: %v", name, err)
			result.Messages = append(result.Messages, msg)
			v.log.Warn("font coverage unknown",
				observability.String("font", name),
				observability.Error("err", err))
			return
		}
		if !covered {
			result.CoverageIssues = append(result.CoverageIssues, CoverageIssue{
				Font:      name,
				ElementID: txt.ElementID,
				Missing:   missing,
			})
			result.Passed = false
		}
	})

	sort.Strings(result.Required)
	sort.Strings(result.Available)
	sort.Strings(result.Missing)
	return result
}
