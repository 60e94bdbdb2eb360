package idm

import (
	"reflect"
	"strings"
	"testing"

	"github.com/wudi/idmkit/geo"
)

func sampleDocument() *Document {
	red := Color{1, 0, 0, 1}
	doc := NewDocument("pagedvec", "1.26", DocumentMetadata{
		Format: "pdf",
		Title:  "Quarterly Report",
		Author: "Finance",
	})

	text := &Text{
		ElementID:      1,
		BBox:           geo.NewBBox(10, 5, 90, 15),
		RawText:        "Hello  world",
		NormalizedText: "Hello world",
		Font: FontDescriptor{
			Name: "Arial", Size: 12, Color: Color{0, 0, 0, 1},
			Ascender: 0.9, Descender: -0.2, Bold: true,
		},
		WritingDirection: [2]float64{1, 0},
		Background:       &red,
		SpacingAdjusted:  true,
	}
	drawing := &Drawing{
		ElementID:   2,
		BBox:        geo.NewBBox(0, 0, 100, 20),
		FillColor:   &red,
		StrokeWidth: 1.5,
		Commands: []PathCmd{
			MoveTo{P: geo.Point{X: 0, Y: 0}},
			LineTo{P: geo.Point{X: 100, Y: 0}},
			CubicTo{P1: geo.Point{X: 1, Y: 1}, P2: geo.Point{X: 2, Y: 2}, P3: geo.Point{X: 3, Y: 3}, P4: geo.Point{X: 4, Y: 4}},
			ClosePath{},
			Rect{R: geo.NewBBox(0, 0, 100, 20)},
		},
	}
	img := &Image{
		ElementID:       3,
		BBox:            geo.NewBBox(20, 30, 50, 60),
		FileRef:         "ab12cd34.png",
		OriginalFormat:  "png",
		DPI:             96,
		ColorSpace:      "rgb",
		HasTransparency: true,
		ZIndex:          2,
	}

	base := &Layer{
		LayerID: 0, Name: "Base", Kind: LayerBase,
		BBox: geo.NewBBox(0, 0, 200, 50), Visible: true, Opacity: 1, Blend: BlendNormal,
		Content: []ContentElement{drawing, text},
	}
	doc.Units = append(doc.Units, &PageUnit{
		Number: 0, Width: 200, Height: 50, Background: &red, Layers: []*Layer{base},
	})

	child := &Layer{
		LayerID: 2, Name: "Shadowed", Kind: LayerPixel,
		BBox: geo.NewBBox(0, 0, 64, 64), Visible: true, Opacity: 0.5, Blend: BlendMultiply,
		Content: []ContentElement{img},
		Effects: []Effect{{Type: EffectDropShadow, Opacity: 0.75, Size: 5, Distance: 5, Angle: 120}},
	}
	group := &Layer{
		LayerID: 1, Name: "Group 1", Kind: LayerPixel,
		BBox: geo.NewBBox(0, 0, 64, 64), Visible: false, Opacity: 1, Blend: BlendNormal,
	}
	group.Attach(child)
	doc.Units = append(doc.Units, &CanvasUnit{
		Name: "frame-0", Width: 64, Height: 64, Layers: []*Layer{group},
	})
	return doc
}

func TestCanonicalRoundTrip(t *testing.T) {
	doc := sampleDocument()
	data, err := EncodeDocument(doc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := DecodeDocument(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(doc, back) {
		t.Errorf("round trip mismatch\n got: %#v\nwant: %#v", back, doc)
	}
}

func TestCanonicalFieldNames(t *testing.T) {
	data, err := EncodeDocument(sampleDocument())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	s := string(data)
	for _, field := range []string{
		`"version"`, `"engine"`, `"engine_version"`, `"document_structure"`,
		`"type": "page"`, `"page_number"`, `"page_background_color"`,
		`"type": "canvas"`, `"canvas_name"`,
		`"layer_id"`, `"layer_name"`, `"layer_type"`, `"visibility"`, `"blend_mode"`,
		`"type": "text"`, `"raw_text"`, `"font_details"`, `"background_color"`,
		`"type": "image"`, `"image_file"`, `"original_format"`, `"color_space"`, `"has_transparency"`, `"z_index"`,
		`"type": "drawing"`, `"drawing_commands"`, `"fill"`, `"width"`,
	} {
		if !strings.Contains(s, field) {
			t.Errorf("canonical output missing %s", field)
		}
	}
}

func TestDecodeRejectsUnknownTypes(t *testing.T) {
	_, err := DecodeDocument([]byte(`{"version":"1.0","document_structure":[{"type":"scroll"}]}`))
	if err == nil {
		t.Fatal("expected error for unknown unit type")
	}
}
