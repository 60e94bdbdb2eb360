// Package paged normalizes paginated-vector backend output (typed content
// blocks plus vector drawing descriptors) into canonical PageUnits.
package paged

import (
	"fmt"
	"strings"

	"github.com/wudi/idmkit/geo"
	"github.com/wudi/idmkit/idm"
	"github.com/wudi/idmkit/imagestore"
	"github.com/wudi/idmkit/normalize"
	"github.com/wudi/idmkit/observability"
	"github.com/wudi/idmkit/recovery"
)

// Config tunes the page-level heuristics.
type Config struct {
	// SpaceDensityThreshold is the whitespace fraction above which a span's
	// spacing is treated as a backend artifact and collapsed.
	SpaceDensityThreshold float64
	// BackgroundOverlap is the minimum fraction of a text bbox's area a
	// solid rectangle must cover to become its background.
	BackgroundOverlap float64
}

const (
	defaultSpaceDensity      = 0.3
	defaultBackgroundOverlap = 0.8
)

func (c Config) withDefaults() Config {
	if c.SpaceDensityThreshold <= 0 {
		c.SpaceDensityThreshold = defaultSpaceDensity
	}
	if c.BackgroundOverlap <= 0 {
		c.BackgroundOverlap = defaultBackgroundOverlap
	}
	return c
}

// Normalizer converts backend pages into PageUnits. Pages must be normalized
// strictly in source order: element ids come from one shared monotonic
// allocator and the background heuristic is scoped per page.
type Normalizer struct {
	ids   *normalize.IDAllocator
	store *imagestore.Store
	cfg   Config
	opts  normalize.Options
}

// New builds a page normalizer sharing the run's id allocator and image store.
func New(ids *normalize.IDAllocator, store *imagestore.Store, cfg Config, opts normalize.Options) *Normalizer {
	return &Normalizer{ids: ids, store: store, cfg: cfg.withDefaults(), opts: opts}
}

// NormalizePage produces one PageUnit from one backend page. Per-element
// failures are isolated according to the recovery strategy; warnings report
// everything that was dropped or approximated.
func (n *Normalizer) NormalizePage(src SourcePage) (*idm.PageUnit, []normalize.Warning, error) {
	if src.Width <= 0 || src.Height <= 0 {
		return nil, nil, fmt.Errorf("page %d has non-positive size %gx%g", src.Number, src.Width, src.Height)
	}

	var warnings []normalize.Warning
	var elements []idm.ContentElement
	var candidates []*backgroundCandidate

	for _, desc := range src.Drawings {
		d := n.convertDrawing(desc, &warnings)
		elements = append(elements, d)
		if rect, ok := isSolidRect(d); ok {
			candidates = append(candidates, &backgroundCandidate{rect: rect, fill: *d.FillColor})
		}
	}

	var texts []*idm.Text
	for _, block := range src.Blocks {
		if block.Kind != BlockText {
			continue
		}
		for _, line := range block.Lines {
			for _, span := range line.Spans {
				texts = append(texts, n.convertSpan(span, line))
			}
		}
	}
	for _, t := range texts {
		elements = append(elements, t)
	}

	background := attributeBackgrounds(texts, candidates, n.cfg.BackgroundOverlap)

	for bi, block := range src.Blocks {
		if block.Kind != BlockImage || block.Image == nil {
			continue
		}
		img, err := n.convertImage(block, bi)
		if err != nil {
			loc := recovery.Location{Unit: src.Number, Element: bi, Component: "paged.images"}
			switch n.opts.Strategy().OnError(err, loc) {
			case recovery.ActionFail:
				return nil, warnings, fmt.Errorf("page %d image block %d: %w", src.Number, bi, err)
			case recovery.ActionWarn:
				warnings = append(warnings, normalize.Warning{Component: "paged.images", Message: err.Error()})
			}
			continue
		}
		elements = append(elements, img)
	}

	base := &idm.Layer{
		LayerID: 0,
		Name:    "Base",
		Kind:    idm.LayerBase,
		BBox:    geo.NewBBox(0, 0, src.Width, src.Height),
		Visible: true,
		Opacity: 1,
		Blend:   idm.BlendNormal,
		Content: elements,
	}

	n.opts.Log().Debug("normalized page",
		observability.Int("page", src.Number),
		observability.Int("elements", len(elements)),
		observability.Bool("background", background != nil))

	return &idm.PageUnit{
		Number:     src.Number,
		Width:      src.Width,
		Height:     src.Height,
		Background: background,
		Layers:     []*idm.Layer{base},
	}, warnings, nil
}

func (n *Normalizer) convertSpan(span Span, line Line) *idm.Text {
	normalized, adjusted := normalizeText(span.Text, n.cfg.SpaceDensityThreshold)
	font := idm.FontDescriptor{
		Name:      span.Font,
		Size:      span.Size,
		Color:     idm.ColorFromPacked(span.Color),
		Ascender:  span.Ascender,
		Descender: span.Descender,
	}
	font.DecodeFontFlags(span.Flags)
	return &idm.Text{
		ElementID:        n.ids.Next(),
		BBox:             geo.NewBBox(span.BBox[0], span.BBox[1], span.BBox[2], span.BBox[3]),
		RawText:          span.Text,
		NormalizedText:   normalized,
		Font:             font,
		WritingMode:      line.WritingMode,
		WritingDirection: line.Direction,
		SpacingAdjusted:  adjusted,
	}
}

func (n *Normalizer) convertImage(block Block, zIndex int) (*idm.Image, error) {
	data := block.Image
	if len(data.Data) == 0 {
		return nil, fmt.Errorf("image block has no bytes")
	}
	format := strings.ToLower(data.Format)
	if format == "" {
		format = "png"
	}
	ref, err := n.store.Put(data.Data, format)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}
	colorSpace := data.ColorSpace
	if colorSpace == "" {
		colorSpace = "rgb"
	}
	return &idm.Image{
		ElementID:       n.ids.Next(),
		BBox:            geo.NewBBox(block.BBox[0], block.BBox[1], block.BBox[2], block.BBox[3]),
		FileRef:         ref,
		OriginalFormat:  format,
		DPI:             data.DPI,
		ColorSpace:      colorSpace,
		HasTransparency: data.HasAlpha,
		Transform:       data.Transform,
		ZIndex:          zIndex,
	}, nil
}
