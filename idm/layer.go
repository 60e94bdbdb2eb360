package idm

import "github.com/wudi/idmkit/geo"

// LayerKind classifies a layer's role in the composition.
type LayerKind string

const (
	LayerBase  LayerKind = "base"
	LayerPixel LayerKind = "pixel"
	LayerText  LayerKind = "text"
	LayerShape LayerKind = "shape"
	LayerGroup LayerKind = "group"
)

// BlendMode names the compositing operation applied when painting a layer.
type BlendMode string

const (
	BlendNormal     BlendMode = "normal"
	BlendMultiply   BlendMode = "multiply"
	BlendScreen     BlendMode = "screen"
	BlendOverlay    BlendMode = "overlay"
	BlendDarken     BlendMode = "darken"
	BlendLighten    BlendMode = "lighten"
	BlendColorDodge BlendMode = "color_dodge"
	BlendColorBurn  BlendMode = "color_burn"
	BlendHardLight  BlendMode = "hard_light"
	BlendSoftLight  BlendMode = "soft_light"
	BlendDifference BlendMode = "difference"
	BlendExclusion  BlendMode = "exclusion"
)

// Effect is a normalized layer effect with type-specific parameters. Missing
// raw payload values are filled with per-type defaults at parse time.
type Effect struct {
	Type     EffectType
	Color    *Color
	Opacity  float64
	Size     float64
	Distance float64
	Angle    float64
}

// EffectType enumerates the recognized layer effects.
type EffectType string

const (
	EffectDropShadow      EffectType = "drop_shadow"
	EffectInnerShadow     EffectType = "inner_shadow"
	EffectOuterGlow       EffectType = "outer_glow"
	EffectInnerGlow       EffectType = "inner_glow"
	EffectBevel           EffectType = "bevel"
	EffectStroke          EffectType = "stroke"
	EffectColorOverlay    EffectType = "color_overlay"
	EffectGradientOverlay EffectType = "gradient_overlay"
	EffectPatternOverlay  EffectType = "pattern_overlay"
)

// Layer is a named, ordered container of content elements and child layers.
// Layers form a strict tree: a layer is the child of at most one parent.
type Layer struct {
	LayerID  int
	Name     string
	Kind     LayerKind
	BBox     geo.BBox
	Visible  bool
	Opacity  float64
	Blend    BlendMode
	Content  []ContentElement
	Children []*Layer
	Effects  []Effect
}

// Attach appends a child layer. A layer with children is semantically a
// group, so the kind is promoted on first attachment regardless of how the
// layer was initially constructed.
func (l *Layer) Attach(child *Layer) {
	l.Children = append(l.Children, child)
	l.Kind = LayerGroup
}

// Walk visits the layer and every descendant in painter's order.
func (l *Layer) Walk(fn func(*Layer)) {
	fn(l)
	for _, child := range l.Children {
		child.Walk(fn)
	}
}

// EachText visits every Text element in the layer subtree.
func (l *Layer) EachText(fn func(*Text)) {
	l.Walk(func(layer *Layer) {
		for _, el := range layer.Content {
			if txt, ok := el.(*Text); ok {
				fn(txt)
			}
		}
	})
}
