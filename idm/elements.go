package idm

import "github.com/wudi/idmkit/geo"

// ContentElement is the sum type over everything a layer can hold. Elements
// carry a process-unique id assigned sequentially during extraction; ids are
// never reused or renumbered afterwards.
type ContentElement interface {
	element()
	Kind() string
	ID() int
	Bounds() geo.BBox
}

// Text is a single extracted text run.
type Text struct {
	ElementID        int
	BBox             geo.BBox
	RawText          string
	NormalizedText   string
	Font             FontDescriptor
	WritingMode      int
	WritingDirection [2]float64
	// Background is the fill color attributed from an underlying solid
	// rectangle, when the attribution heuristic matched.
	Background *Color
	// SpacingAdjusted records whether whitespace normalization changed the
	// raw backend text.
	SpacingAdjusted bool
}

func (t *Text) element()         {}
func (t *Text) Kind() string     { return "text" }
func (t *Text) ID() int          { return t.ElementID }
func (t *Text) Bounds() geo.BBox { return t.BBox }

// Image references raster content through a content-addressed file name so
// identical bytes across pages share storage.
type Image struct {
	ElementID       int
	BBox            geo.BBox
	FileRef         string
	OriginalFormat  string
	DPI             int
	ColorSpace      string
	HasTransparency bool
	Transform       []float64 // optional 6-value matrix
	ZIndex          int
}

func (i *Image) element()         {}
func (i *Image) Kind() string     { return "image" }
func (i *Image) ID() int          { return i.ElementID }
func (i *Image) Bounds() geo.BBox { return i.BBox }

// Drawing is a vector path with optional stroke and fill.
type Drawing struct {
	ElementID   int
	BBox        geo.BBox
	StrokeColor *Color
	FillColor   *Color
	StrokeWidth float64
	Commands    []PathCmd
}

func (d *Drawing) element()         {}
func (d *Drawing) Kind() string     { return "drawing" }
func (d *Drawing) ID() int          { return d.ElementID }
func (d *Drawing) Bounds() geo.BBox { return d.BBox }

// PathCmd is the sum type over canonical vector path commands. A Rect may
// exist standalone (a rectangle primitive) or as the sole fallback command
// when no path data could be reconstructed beyond a bounding rectangle.
type PathCmd interface {
	pathCmd()
	Op() string
}

type MoveTo struct{ P geo.Point }

func (MoveTo) pathCmd()   {}
func (MoveTo) Op() string { return "move" }

type LineTo struct{ P geo.Point }

func (LineTo) pathCmd()   {}
func (LineTo) Op() string { return "line" }

type CubicTo struct{ P1, P2, P3, P4 geo.Point }

func (CubicTo) pathCmd()   {}
func (CubicTo) Op() string { return "curve" }

type ClosePath struct{}

func (ClosePath) pathCmd()   {}
func (ClosePath) Op() string { return "close" }

type Rect struct{ R geo.BBox }

func (Rect) pathCmd()   {}
func (Rect) Op() string { return "rect" }
