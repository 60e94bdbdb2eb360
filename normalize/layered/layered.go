// Package layered normalizes layered-raster backend output (a flattened
// canvas plus per-layer rasters and flat string metadata) into canonical
// CanvasUnits.
package layered

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"strings"

	"golang.org/x/image/tiff"

	"github.com/wudi/idmkit/geo"
	"github.com/wudi/idmkit/idm"
	"github.com/wudi/idmkit/imagestore"
	"github.com/wudi/idmkit/normalize"
	"github.com/wudi/idmkit/observability"
)

// RasterLayer is one backend layer: its raster content, if the backend could
// produce one, plus the metadata index it was announced under.
type RasterLayer struct {
	Index  int
	Raster image.Image
}

// Source is one backend canvas handed to the normalizer.
type Source struct {
	Name       string
	Flattened  image.Image
	Layers     []RasterLayer
	Properties map[string]string
}

// TextRegion is one recognized text run inside a layer raster.
type TextRegion struct {
	Text       string
	BBox       [4]float64
	Confidence float64
}

// Recognizer extracts text regions from a raster. Layers classified as text
// layers are run through it when one is configured.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) ([]TextRegion, error)
}

// Config tunes the canvas normalizer.
type Config struct {
	// OutputFormat is the encoding used for extracted layer rasters.
	// One of "png", "jpeg", "gif", "tiff"; defaults to "png".
	OutputFormat string
	// Recognizer, when set, runs on text-classified layers.
	Recognizer Recognizer
}

func (c Config) withDefaults() Config {
	if c.OutputFormat == "" {
		c.OutputFormat = "png"
	}
	return c
}

// Normalizer converts backend canvases into CanvasUnits, sharing the run's
// id allocator and image store with the other normalizers.
type Normalizer struct {
	ids   *normalize.IDAllocator
	store *imagestore.Store
	cfg   Config
	opts  normalize.Options
}

func New(ids *normalize.IDAllocator, store *imagestore.Store, cfg Config, opts normalize.Options) *Normalizer {
	return &Normalizer{ids: ids, store: store, cfg: cfg.withDefaults(), opts: opts}
}

// NormalizeCanvas produces one CanvasUnit from one backend canvas. Per-layer
// extraction failures degrade to cropping the flattened canvas; a canvas with
// no identifiable layers gets one synthesized Base layer so every unit holds
// at least one layer with at least one element.
func (n *Normalizer) NormalizeCanvas(ctx context.Context, src Source) (*idm.CanvasUnit, []normalize.Warning, error) {
	if src.Flattened == nil {
		return nil, nil, fmt.Errorf("canvas %q has no flattened image", src.Name)
	}
	bounds := src.Flattened.Bounds()
	width, height := float64(bounds.Dx()), float64(bounds.Dy())
	if width <= 0 || height <= 0 {
		return nil, nil, fmt.Errorf("canvas %q has non-positive size %gx%g", src.Name, width, height)
	}

	var warnings []normalize.Warning
	metadata := ParseLayerMetadata(src.Properties)

	if len(src.Layers) == 0 {
		base, err := n.synthesizeBase(src.Flattened, width, height)
		if err != nil {
			return nil, warnings, err
		}
		return &idm.CanvasUnit{Name: src.Name, Width: width, Height: height, Layers: []*idm.Layer{base}}, warnings, nil
	}

	// Arena assembly: every layer is built once, parents reference children
	// by arena position, and back-references are rejected rather than
	// recursed into.
	arena := make([]*idm.Layer, len(src.Layers))
	parents := make([]int, len(src.Layers))
	for pos, raster := range src.Layers {
		if err := ctx.Err(); err != nil {
			return nil, warnings, err
		}
		meta := metadata[raster.Index]
		layer, parent, layerWarnings := n.buildLayer(ctx, pos, raster, meta, src.Flattened, width, height)
		warnings = append(warnings, layerWarnings...)
		arena[pos] = layer
		parents[pos] = parent
	}

	roots := assembleHierarchy(arena, parents, &warnings)

	n.opts.Log().Debug("normalized canvas",
		observability.String("canvas", src.Name),
		observability.Int("layers", len(arena)),
		observability.Int("roots", len(roots)))

	return &idm.CanvasUnit{Name: src.Name, Width: width, Height: height, Layers: roots}, warnings, nil
}

// buildLayer derives one layer from its raster and metadata. The returned
// parent is the arena position of the layer's parent, or -1 for a root.
func (n *Normalizer) buildLayer(ctx context.Context, pos int, raster RasterLayer, meta *LayerMetadata, flattened image.Image, width, height float64) (*idm.Layer, int, []normalize.Warning) {
	var warnings []normalize.Warning

	name := ""
	if meta != nil {
		name = meta.Name
	}
	if name == "" {
		name = fmt.Sprintf("Layer %d", raster.Index+1)
	}

	bbox := geo.NewBBox(0, 0, width, height)
	if meta != nil && meta.BBox != nil {
		bbox = geo.NewBBox(meta.BBox[0], meta.BBox[1], meta.BBox[2], meta.BBox[3])
	} else if raster.Raster != nil {
		b := raster.Raster.Bounds()
		bbox = geo.NewBBox(float64(b.Min.X), float64(b.Min.Y), float64(b.Max.X), float64(b.Max.Y))
	}

	layer := &idm.Layer{
		LayerID: raster.Index,
		Name:    name,
		Kind:    classifyKind(name, meta),
		BBox:    bbox,
		Visible: true,
		Opacity: 1,
		Blend:   idm.BlendNormal,
	}
	parent := -1
	if meta != nil {
		if meta.Opacity != nil {
			layer.Opacity = *meta.Opacity
		}
		if meta.Visible != nil {
			layer.Visible = *meta.Visible
		}
		layer.Blend = normalizeBlend(meta.BlendMode)
		layer.Effects = parseEffects(meta)
		if meta.Parent != nil {
			parent = *meta.Parent
		}
	}

	img, err := n.extractRaster(raster.Raster, flattened, bbox)
	if err != nil {
		warnings = append(warnings, normalize.Warning{
			Component: "layered.raster",
			Message:   fmt.Sprintf("layer %d (%s): %v", raster.Index, name, err),
		})
	} else {
		img.ZIndex = pos
		layer.Content = append(layer.Content, img)
	}

	if layer.Kind == idm.LayerText && n.cfg.Recognizer != nil && raster.Raster != nil {
		regions, err := n.cfg.Recognizer.Recognize(ctx, raster.Raster)
		if err != nil {
			warnings = append(warnings, normalize.Warning{
				Component: "layered.ocr",
				Message:   fmt.Sprintf("layer %d (%s): %v", raster.Index, name, err),
			})
		}
		for _, region := range regions {
			layer.Content = append(layer.Content, &idm.Text{
				ElementID:      n.ids.Next(),
				BBox:           geo.NewBBox(region.BBox[0], region.BBox[1], region.BBox[2], region.BBox[3]),
				RawText:        region.Text,
				NormalizedText: region.Text,
				Font:           idm.FontDescriptor{Name: "recognized"},
			})
		}
	}

	return layer, parent, warnings
}

// extractRaster encodes the layer's own raster; when the backend could not
// produce one, or encoding fails, it falls back to cropping the flattened
// canvas to the layer's bounding box.
func (n *Normalizer) extractRaster(raster, flattened image.Image, bbox geo.BBox) (*idm.Image, error) {
	img := raster
	if img == nil {
		img = cropImage(flattened, bbox)
	}
	data, err := encodeImage(img, n.cfg.OutputFormat)
	if err != nil && raster != nil {
		img = cropImage(flattened, bbox)
		data, err = encodeImage(img, n.cfg.OutputFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", n.cfg.OutputFormat, err)
	}
	ref, err := n.store.Put(data, n.cfg.OutputFormat)
	if err != nil {
		return nil, fmt.Errorf("store raster: %w", err)
	}
	b := img.Bounds()
	return &idm.Image{
		ElementID:       n.ids.Next(),
		BBox:            geo.NewBBox(float64(b.Min.X), float64(b.Min.Y), float64(b.Max.X), float64(b.Max.Y)),
		FileRef:         ref,
		OriginalFormat:  n.cfg.OutputFormat,
		ColorSpace:      "rgb",
		HasTransparency: hasAlpha(img),
	}, nil
}

func (n *Normalizer) synthesizeBase(flattened image.Image, width, height float64) (*idm.Layer, error) {
	img, err := n.extractRaster(flattened, flattened, geo.NewBBox(0, 0, width, height))
	if err != nil {
		return nil, fmt.Errorf("synthesize base layer: %w", err)
	}
	return &idm.Layer{
		LayerID: 0,
		Name:    "Base",
		Kind:    idm.LayerBase,
		BBox:    geo.NewBBox(0, 0, width, height),
		Visible: true,
		Opacity: 1,
		Blend:   idm.BlendNormal,
		Content: []idm.ContentElement{img},
	}, nil
}

// assembleHierarchy links arena layers to their parents. A parent index that
// is out of range, self-referential, or closes a cycle demotes the layer to a
// root with a warning instead of recursing.
func assembleHierarchy(arena []*idm.Layer, parents []int, warnings *[]normalize.Warning) []*idm.Layer {
	isRoot := make([]bool, len(arena))
	for pos, parent := range parents {
		switch {
		case parent < 0:
			isRoot[pos] = true
		case parent >= len(arena) || parent == pos:
			*warnings = append(*warnings, normalize.Warning{
				Component: "layered.hierarchy",
				Message:   fmt.Sprintf("layer %d has invalid parent %d, treating as root", arena[pos].LayerID, parent),
			})
			isRoot[pos] = true
		case closesCycle(parents, pos):
			*warnings = append(*warnings, normalize.Warning{
				Component: "layered.hierarchy",
				Message:   fmt.Sprintf("layer %d closes a parent cycle, treating as root", arena[pos].LayerID),
			})
			isRoot[pos] = true
		default:
			arena[parent].Attach(arena[pos])
		}
	}
	var roots []*idm.Layer
	for pos, root := range isRoot {
		if root {
			roots = append(roots, arena[pos])
		}
	}
	// Cycles detach every participant, so with a non-empty arena there is
	// always at least one root.
	if len(roots) == 0 && len(arena) > 0 {
		roots = append(roots, arena[0])
	}
	return roots
}

// closesCycle reports whether following parent links from pos revisits pos.
func closesCycle(parents []int, pos int) bool {
	seen := map[int]bool{pos: true}
	cur := parents[pos]
	for cur >= 0 && cur < len(parents) {
		if seen[cur] {
			return true
		}
		seen[cur] = true
		cur = parents[cur]
	}
	return false
}

// classifyKind derives the layer kind from explicit metadata first, then from
// name keywords. Pixel is the default for anything unrecognized.
func classifyKind(name string, meta *LayerMetadata) idm.LayerKind {
	token := ""
	if meta != nil {
		token = meta.Kind
	}
	if token == "" {
		token = name
	}
	token = strings.ToLower(token)
	switch {
	case strings.Contains(token, "group"), strings.Contains(token, "folder"):
		return idm.LayerGroup
	case strings.Contains(token, "text"), strings.Contains(token, "type"), strings.Contains(token, "caption"):
		return idm.LayerText
	case strings.Contains(token, "shape"), strings.Contains(token, "vector"), strings.Contains(token, "path"):
		return idm.LayerShape
	}
	return idm.LayerPixel
}

func normalizeBlend(s string) idm.BlendMode {
	s = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
	switch mode := idm.BlendMode(s); mode {
	case idm.BlendMultiply, idm.BlendScreen, idm.BlendOverlay, idm.BlendDarken,
		idm.BlendLighten, idm.BlendColorDodge, idm.BlendColorBurn,
		idm.BlendHardLight, idm.BlendSoftLight, idm.BlendDifference,
		idm.BlendExclusion:
		return mode
	}
	return idm.BlendNormal
}

func cropImage(src image.Image, bbox geo.BBox) image.Image {
	rect := image.Rect(int(bbox.X0), int(bbox.Y0), int(bbox.X1), int(bbox.Y1)).Intersect(src.Bounds())
	if rect.Empty() {
		rect = src.Bounds()
	}
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), src, rect.Min, draw.Src)
	return dst
}

func encodeImage(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "jpeg", "jpg":
		err = jpeg.Encode(&buf, img, nil)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	case "tiff":
		err = tiff.Encode(&buf, img, nil)
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func hasAlpha(img image.Image) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a < 0xffff {
				return true
			}
		}
	}
	return false
}
