package idm

// Version identifies the canonical tree revision this model produces.
const Version = "1.0"

// Unit is one page (paginated-vector backends) or one canvas (layered-raster
// backends) inside a document.
type Unit interface {
	unit()
	UnitType() string
	UnitLayers() []*Layer
}

// PageUnit is a single page with physical size in points.
type PageUnit struct {
	Number     int
	Width      float64
	Height     float64
	Background *Color
	Layers     []*Layer
}

func (p *PageUnit) unit()                {}
func (p *PageUnit) UnitType() string     { return "page" }
func (p *PageUnit) UnitLayers() []*Layer { return p.Layers }

// CanvasUnit is a single raster canvas with physical size in pixels.
type CanvasUnit struct {
	Name       string
	Width      float64
	Height     float64
	Background *Color
	Layers     []*Layer
}

func (c *CanvasUnit) unit()                {}
func (c *CanvasUnit) UnitType() string     { return "canvas" }
func (c *CanvasUnit) UnitLayers() []*Layer { return c.Layers }

// DocumentMetadata mirrors backend /Info-style metadata.
type DocumentMetadata struct {
	Format           string
	Title            string
	Author           string
	Subject          string
	Keywords         string
	Creator          string
	Producer         string
	CreationDate     string
	ModificationDate string
}

// Document is the aggregate root. It owns every descendant exclusively: built
// once by a normalizer, optionally mutated in place by the batch modifier,
// then handed to a renderer or serializer and discarded.
type Document struct {
	Version       string
	Engine        string
	EngineVersion string
	Metadata      DocumentMetadata
	Units         []Unit
}

// NewDocument builds an empty document for the given source backend.
func NewDocument(engine, engineVersion string, meta DocumentMetadata) *Document {
	return &Document{
		Version:       Version,
		Engine:        engine,
		EngineVersion: engineVersion,
		Metadata:      meta,
	}
}

// EachText visits every Text element in the document, recursing into nested
// layers, in unit and painter's order.
func (d *Document) EachText(fn func(*Text)) {
	for _, u := range d.Units {
		for _, l := range u.UnitLayers() {
			l.EachText(fn)
		}
	}
}

// EachElement visits every content element in the document.
func (d *Document) EachElement(fn func(ContentElement)) {
	for _, u := range d.Units {
		for _, l := range u.UnitLayers() {
			l.Walk(func(layer *Layer) {
				for _, el := range layer.Content {
					fn(el)
				}
			})
		}
	}
}
