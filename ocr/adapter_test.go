package ocr

import (
	"context"
	"image"
	"image/color"
	"reflect"
	"testing"

	"github.com/wudi/idmkit/normalize/layered"
)

func TestInputFromImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.Black)
	region := Region{X: 0, Y: 0, Width: 1, Height: 1}
	meta := map[string]string{"psm": "6"}

	in, err := InputFromImage("layer-3", img,
		WithLanguages("eng", "spa"),
		WithRegion(region),
		WithDPI(300),
		WithMetadata(meta),
	)
	if err != nil {
		t.Fatalf("InputFromImage() error = %v", err)
	}
	if in.Format != ImageFormatPNG {
		t.Fatalf("unexpected format: %v", in.Format)
	}
	if in.ID != "layer-3" {
		t.Fatalf("unexpected id: %s", in.ID)
	}
	if len(in.Image) == 0 {
		t.Fatalf("expected encoded image data")
	}
	if !reflect.DeepEqual(in.Languages, []string{"eng", "spa"}) {
		t.Fatalf("unexpected languages: %+v", in.Languages)
	}
	if in.Region == nil || *in.Region != region {
		t.Fatalf("unexpected region: %#v", in.Region)
	}
	if in.DPI != 300 {
		t.Fatalf("unexpected dpi: %d", in.DPI)
	}
	meta["psm"] = "7"
	if in.Metadata["psm"] != "6" {
		t.Fatalf("metadata was not copied: %+v", in.Metadata)
	}
}

func TestWithRegionClearsEmpty(t *testing.T) {
	in := Input{Region: &Region{X: 1, Y: 1, Width: 2, Height: 2}}
	WithRegion(Region{})(&in)
	if in.Region != nil {
		t.Fatalf("expected nil region for empty input, got %#v", in.Region)
	}
}

type fixedEngine struct {
	result Result
}

func (e fixedEngine) Name() string { return "fixed" }

func (e fixedEngine) Recognize(ctx context.Context, in Input) (Result, error) {
	r := e.result
	r.InputID = in.ID
	return r, nil
}

func TestLayerRecognizerMapsLines(t *testing.T) {
	engine := fixedEngine{result: Result{
		PlainText: "HELLO WORLD",
		Blocks: []TextBlock{{
			Lines: []TextLine{
				{Text: "HELLO", Bounds: Region{X: 1, Y: 2, Width: 30, Height: 10}, Confidence: 0.9},
				{Text: "WORLD", Bounds: Region{X: 1, Y: 14, Width: 32, Height: 10}, Confidence: 0.8},
			},
		}},
	}}
	rec := NewLayerRecognizer(engine)
	regions, err := rec.Recognize(context.Background(), image.NewRGBA(image.Rect(0, 0, 40, 30)))
	if err != nil {
		t.Fatalf("recognize: %v", err)
	}
	want := []layered.TextRegion{
		{Text: "HELLO", BBox: [4]float64{1, 2, 31, 12}, Confidence: 0.9},
		{Text: "WORLD", BBox: [4]float64{1, 14, 33, 24}, Confidence: 0.8},
	}
	if !reflect.DeepEqual(regions, want) {
		t.Errorf("regions = %+v, want %+v", regions, want)
	}
}

func TestLayerRecognizerPlainTextFallback(t *testing.T) {
	engine := fixedEngine{result: Result{PlainText: "SALE"}}
	rec := NewLayerRecognizer(engine)
	regions, err := rec.Recognize(context.Background(), image.NewRGBA(image.Rect(0, 0, 40, 30)))
	if err != nil {
		t.Fatalf("recognize: %v", err)
	}
	if len(regions) != 1 || regions[0].Text != "SALE" {
		t.Fatalf("regions = %+v, want one whole-image region", regions)
	}
	if regions[0].BBox != [4]float64{0, 0, 40, 30} {
		t.Errorf("bbox = %v, want image bounds", regions[0].BBox)
	}
}
