package layered

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"testing"

	"github.com/wudi/idmkit/idm"
	"github.com/wudi/idmkit/imagestore"
	"github.com/wudi/idmkit/normalize"
)

func solidImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func newTestNormalizer(cfg Config) *Normalizer {
	return New(normalize.NewIDAllocator(), imagestore.New(""), cfg, normalize.Options{})
}

func TestNormalizeCanvasHierarchy(t *testing.T) {
	n := newTestNormalizer(Config{})
	unit, warnings, err := n.NormalizeCanvas(context.Background(), Source{
		Name:      "poster",
		Flattened: solidImage(100, 80, color.White),
		Layers: []RasterLayer{
			{Index: 0, Raster: solidImage(100, 80, color.White)},
			{Index: 1, Raster: solidImage(40, 20, color.Black)},
		},
		Properties: map[string]string{
			"layer:0:name":    "Group A",
			"layer:1:name":    "Heading",
			"layer:1:type":    "text",
			"layer:1:parent":  "0",
			"layer:1:opacity": "50%",
		},
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if unit.Width != 100 || unit.Height != 80 {
		t.Errorf("size = %gx%g", unit.Width, unit.Height)
	}
	if len(unit.Layers) != 1 {
		t.Fatalf("got %d roots, want 1", len(unit.Layers))
	}
	root := unit.Layers[0]
	// Gaining a child promotes the parent to a group.
	if root.Kind != idm.LayerGroup {
		t.Errorf("root kind = %q, want group", root.Kind)
	}
	if len(root.Children) != 1 {
		t.Fatalf("root has %d children, want 1", len(root.Children))
	}
	child := root.Children[0]
	if child.Kind != idm.LayerText {
		t.Errorf("child kind = %q, want text", child.Kind)
	}
	if child.Opacity != 0.5 {
		t.Errorf("child opacity = %g, want 0.5", child.Opacity)
	}
	if len(child.Content) != 1 {
		t.Fatalf("child has %d elements, want 1 raster image", len(child.Content))
	}
	if _, ok := child.Content[0].(*idm.Image); !ok {
		t.Errorf("child element is %T, want Image", child.Content[0])
	}
}

func TestCycleDemotedToRoot(t *testing.T) {
	n := newTestNormalizer(Config{})
	unit, warnings, err := n.NormalizeCanvas(context.Background(), Source{
		Name:      "cyclic",
		Flattened: solidImage(10, 10, color.White),
		Layers: []RasterLayer{
			{Index: 0, Raster: solidImage(10, 10, color.White)},
			{Index: 1, Raster: solidImage(10, 10, color.White)},
		},
		Properties: map[string]string{
			"layer:0:parent": "1",
			"layer:1:parent": "0",
		},
	})
	if err != nil {
		t.Fatalf("a parent cycle must not fail the canvas: %v", err)
	}
	if len(warnings) == 0 {
		t.Error("expected cycle warnings")
	}
	if len(unit.Layers) == 0 {
		t.Fatal("cycle left the canvas with no root layers")
	}
	seen := map[int]bool{}
	for _, root := range unit.Layers {
		root.Walk(func(l *idm.Layer) {
			if seen[l.LayerID] {
				t.Fatalf("layer %d reachable twice", l.LayerID)
			}
			seen[l.LayerID] = true
		})
	}
	if len(seen) != 2 {
		t.Errorf("reached %d layers, want 2", len(seen))
	}
}

func TestInvalidParentDemotedToRoot(t *testing.T) {
	n := newTestNormalizer(Config{})
	unit, warnings, err := n.NormalizeCanvas(context.Background(), Source{
		Name:      "orphan",
		Flattened: solidImage(10, 10, color.White),
		Layers:    []RasterLayer{{Index: 0, Raster: solidImage(10, 10, color.White)}},
		Properties: map[string]string{
			"layer:0:parent": "7",
		},
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(warnings) != 1 {
		t.Errorf("got %d warnings, want 1", len(warnings))
	}
	if len(unit.Layers) != 1 {
		t.Errorf("got %d roots, want 1", len(unit.Layers))
	}
}

func TestSynthesizedBaseLayer(t *testing.T) {
	n := newTestNormalizer(Config{})
	unit, _, err := n.NormalizeCanvas(context.Background(), Source{
		Name:      "flat",
		Flattened: solidImage(64, 64, color.White),
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(unit.Layers) != 1 {
		t.Fatalf("got %d layers, want 1 synthesized base", len(unit.Layers))
	}
	base := unit.Layers[0]
	if base.Kind != idm.LayerBase || base.Name != "Base" {
		t.Errorf("base layer = %q/%q", base.Name, base.Kind)
	}
	if len(base.Content) != 1 {
		t.Fatalf("base has %d elements, want 1", len(base.Content))
	}
}

func TestMissingRasterFallsBackToCrop(t *testing.T) {
	n := newTestNormalizer(Config{})
	unit, warnings, err := n.NormalizeCanvas(context.Background(), Source{
		Name:      "cropped",
		Flattened: solidImage(100, 100, color.White),
		Layers:    []RasterLayer{{Index: 0, Raster: nil}},
		Properties: map[string]string{
			"layer:0:name": "No Raster",
			"layer:0:bbox": "10,10,40,30",
		},
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("crop fallback should not warn: %v", warnings)
	}
	img := unit.Layers[0].Content[0].(*idm.Image)
	if img.BBox.Width() != 30 || img.BBox.Height() != 20 {
		t.Errorf("crop bounds = %gx%g, want 30x20", img.BBox.Width(), img.BBox.Height())
	}
}

type stubRecognizer struct {
	regions []TextRegion
}

func (s stubRecognizer) Recognize(ctx context.Context, img image.Image) ([]TextRegion, error) {
	return s.regions, nil
}

func TestTextLayerRecognition(t *testing.T) {
	rec := stubRecognizer{regions: []TextRegion{{Text: "SALE", BBox: [4]float64{2, 2, 30, 12}, Confidence: 0.95}}}
	n := newTestNormalizer(Config{Recognizer: rec})
	unit, _, err := n.NormalizeCanvas(context.Background(), Source{
		Name:      "banner",
		Flattened: solidImage(40, 20, color.White),
		Layers:    []RasterLayer{{Index: 0, Raster: solidImage(40, 20, color.White)}},
		Properties: map[string]string{
			"layer:0:name": "Headline Text",
		},
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	layer := unit.Layers[0]
	if layer.Kind != idm.LayerText {
		t.Fatalf("layer kind = %q, want text", layer.Kind)
	}
	var texts []*idm.Text
	layer.EachText(func(txt *idm.Text) { texts = append(texts, txt) })
	if len(texts) != 1 {
		t.Fatalf("got %d recognized texts, want 1", len(texts))
	}
	if texts[0].RawText != "SALE" {
		t.Errorf("text = %q", texts[0].RawText)
	}
}

func TestNormalizeContainerGIF(t *testing.T) {
	var buf bytes.Buffer
	frame := func(c color.Color) *image.Paletted {
		p := image.NewPaletted(image.Rect(0, 0, 8, 8), color.Palette{color.White, color.Black, c})
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				p.Set(x, y, c)
			}
		}
		return p
	}
	err := gif.EncodeAll(&buf, &gif.GIF{
		Image: []*image.Paletted{frame(color.White), frame(color.Black)},
		Delay: []int{10, 10},
	})
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	n := newTestNormalizer(Config{})
	units, warnings, err := n.NormalizeContainer(context.Background(), "anim.gif", &buf, "gif")
	if err != nil {
		t.Fatalf("normalize container: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if len(units) != 2 {
		t.Fatalf("got %d units, want one per frame", len(units))
	}
	if units[0].Name != "anim.gif#frame-0" || units[1].Name != "anim.gif#frame-1" {
		t.Errorf("frame names = %q, %q", units[0].Name, units[1].Name)
	}
	for i, unit := range units {
		if len(unit.Layers) != 1 || len(unit.Layers[0].Content) != 1 {
			t.Errorf("frame %d: want one base layer with one image", i)
		}
	}
}
