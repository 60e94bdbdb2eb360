package paged

// The types below are the input contract a paginated-vector backend fulfills:
// one page object exposing a flat list of typed content blocks and a flat
// list of vector drawing descriptors. The backend owns byte-level parsing;
// the normalizer only sees these typed structures.

// SourcePage is one backend page.
type SourcePage struct {
	Number   int
	Width    float64
	Height   float64
	Blocks   []Block
	Drawings []DrawingDesc
}

// BlockKind discriminates the typed content blocks.
type BlockKind int

const (
	BlockText BlockKind = iota
	BlockImage
)

// Block is one typed content block.
type Block struct {
	Kind  BlockKind
	BBox  [4]float64
	Lines []Line     // text blocks
	Image *ImageData // image blocks
}

// Line groups spans that share a baseline.
type Line struct {
	WritingMode int
	Direction   [2]float64
	Spans       []Span
}

// Span is one backend text span; each span becomes one Text element.
type Span struct {
	Text      string
	BBox      [4]float64
	Font      string
	Size      float64
	Flags     uint32 // style-flag bitmask
	Color     int    // packed 24-bit 0xRRGGBB
	Ascender  float64
	Descender float64
}

// ImageData is the raw payload of an image block.
type ImageData struct {
	Data       []byte
	Format     string // e.g. "png", "jpeg"
	DPI        int
	ColorSpace string
	HasAlpha   bool
	Transform  []float64 // optional 6-value matrix
}

// DrawingDesc is one backend vector drawing descriptor.
type DrawingDesc struct {
	BBox        [4]float64
	Stroke      []float64 // rgb in [0,1], nil when not stroked
	Fill        []float64 // rgb in [0,1], nil when not filled
	StrokeWidth float64
	Items       []PathItem
}

// PathItem is one backend path opcode with its operands. Rect carries an
// already-resolved rectangle object when the backend produced one.
type PathItem struct {
	Op   string // "m", "l", "c", "h", "re"
	Args []float64
	Rect *[4]float64
}
