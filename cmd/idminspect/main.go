package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/wudi/idmkit/fonts"
	"github.com/wudi/idmkit/idm"
	"github.com/wudi/idmkit/report"
)

type options struct {
	docPath       string
	fontDir       string
	validateFonts bool
	reportFormat  string
}

type unitSummary struct {
	Type     string     `json:"type"`
	Label    string     `json:"label"`
	Size     [2]float64 `json:"size"`
	Layers   int        `json:"layers"`
	Texts    int        `json:"texts"`
	Images   int        `json:"images"`
	Drawings int        `json:"drawings"`
}

type summary struct {
	Engine        string        `json:"engine"`
	EngineVersion string        `json:"engine_version"`
	Units         []unitSummary `json:"units"`
	Fonts         []string      `json:"fonts"`
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "idminspect: %v\n", err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "idminspect: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var opts options
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: idminspect [flags] <document.json>\n")
		flag.PrintDefaults()
	}
	fontDir := flag.String("fontdir", "", "Directory of .ttf/.otf files for font validation")
	validate := flag.Bool("validate-fonts", false, "Validate font availability and coverage")
	format := flag.String("report", "markdown", "Validation report format: markdown, html, or text")
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return options{}, fmt.Errorf("missing document path")
	}
	opts.docPath = flag.Arg(0)
	opts.fontDir = *fontDir
	opts.validateFonts = *validate
	opts.reportFormat = *format
	return opts, nil
}

func run(opts options) error {
	data, err := os.ReadFile(opts.docPath)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	doc, err := idm.DecodeDocument(data)
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}

	out, err := json.MarshalIndent(summarize(doc), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if !opts.validateFonts {
		return nil
	}
	validator := fonts.NewValidator(opts.fontDir, nil)
	result := validator.ValidateDocument(doc)
	md := report.ValidationMarkdown(result)
	switch opts.reportFormat {
	case "markdown":
		fmt.Print(md)
	case "html":
		h, err := report.HTML(md)
		if err != nil {
			return err
		}
		fmt.Print(h)
	case "text":
		h, err := report.HTML(md)
		if err != nil {
			return err
		}
		plain, err := report.PlainText(h)
		if err != nil {
			return err
		}
		fmt.Println(plain)
	default:
		return fmt.Errorf("unknown report format %q", opts.reportFormat)
	}
	if !result.Passed {
		return fmt.Errorf("font validation failed: %d missing, %d coverage issue(s)",
			len(result.Missing), len(result.CoverageIssues))
	}
	return nil
}

func summarize(doc *idm.Document) summary {
	s := summary{Engine: doc.Engine, EngineVersion: doc.EngineVersion}
	fontSet := map[string]bool{}
	for _, unit := range doc.Units {
		us := unitSummary{Type: unit.UnitType()}
		switch u := unit.(type) {
		case *idm.PageUnit:
			us.Label = fmt.Sprintf("page %d", u.Number)
			us.Size = [2]float64{u.Width, u.Height}
		case *idm.CanvasUnit:
			us.Label = u.Name
			us.Size = [2]float64{u.Width, u.Height}
		}
		for _, layer := range unit.UnitLayers() {
			layer.Walk(func(l *idm.Layer) {
				us.Layers++
				for _, el := range l.Content {
					switch el := el.(type) {
					case *idm.Text:
						us.Texts++
						if el.Font.Name != "" {
							fontSet[el.Font.Name] = true
						}
					case *idm.Image:
						us.Images++
					case *idm.Drawing:
						us.Drawings++
					}
				}
			})
		}
		s.Units = append(s.Units, us)
	}
	for name := range fontSet {
		s.Fonts = append(s.Fonts, name)
	}
	sort.Strings(s.Fonts)
	return s
}
