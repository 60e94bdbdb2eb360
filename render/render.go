// Package render defines the boundary to rasterization backends. The core
// hands a renderer one element at a time together with its unit context and
// resource map; rasterization and compositing belong entirely to the backend.
package render

import (
	"github.com/wudi/idmkit/idm"
)

// Status classifies a per-element rendering outcome.
type Status string

const (
	StatusSuccess     Status = "success"
	StatusUnsupported Status = "unsupported"
	StatusError       Status = "error"
)

// Outcome is the per-element result a renderer must return. Warnings are
// advisory; only StatusError marks the element as failed.
type Outcome struct {
	Status   Status
	Warnings []string
}

// ResourceMap resolves the file-backed resources an element references:
// content-addressed image refs and font names, both mapped to paths.
type ResourceMap struct {
	Images func(ref string) (string, bool)
	Fonts  func(name string) (string, bool)
}

// UnitContext identifies the page or canvas an element is painted into.
type UnitContext struct {
	Index  int
	Unit   idm.Unit
	Width  float64
	Height float64
}

// Renderer paints one element at a time. Implementations own all raster
// state; the core only sequences calls and aggregates outcomes.
type Renderer interface {
	RenderElement(ctx UnitContext, el idm.ContentElement, resources ResourceMap) Outcome
}

// Walk drives a renderer over every element of a document in unit and
// painter's order, returning one outcome per element in encounter order.
func Walk(doc *idm.Document, r Renderer, resources ResourceMap) []Outcome {
	var outcomes []Outcome
	for i, unit := range doc.Units {
		uc := UnitContext{Index: i, Unit: unit}
		switch u := unit.(type) {
		case *idm.PageUnit:
			uc.Width, uc.Height = u.Width, u.Height
		case *idm.CanvasUnit:
			uc.Width, uc.Height = u.Width, u.Height
		}
		for _, layer := range unit.UnitLayers() {
			layer.Walk(func(l *idm.Layer) {
				if !l.Visible {
					return
				}
				for _, el := range l.Content {
					outcomes = append(outcomes, r.RenderElement(uc, el, resources))
				}
			})
		}
	}
	return outcomes
}
