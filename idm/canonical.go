package idm

import (
	"encoding/json"
	"fmt"

	"github.com/wudi/idmkit/geo"
)

// Canonical tree codec. Field names and value encodings are the persisted
// contract; a serializer on the other side must reproduce them bit-for-bit.
//
// Colors are encoded as [r,g,b,a] arrays except unit background colors,
// which are [r,g,b] and decode back with full opacity.

type docDTO struct {
	Version       string            `json:"version"`
	Engine        string            `json:"engine"`
	EngineVersion string            `json:"engine_version"`
	Metadata      metadataDTO       `json:"metadata"`
	Units         []json.RawMessage `json:"document_structure"`
}

type metadataDTO struct {
	Format           string `json:"format"`
	Title            string `json:"title,omitempty"`
	Author           string `json:"author,omitempty"`
	Subject          string `json:"subject,omitempty"`
	Keywords         string `json:"keywords,omitempty"`
	Creator          string `json:"creator,omitempty"`
	Producer         string `json:"producer,omitempty"`
	CreationDate     string `json:"creation_date,omitempty"`
	ModificationDate string `json:"modification_date,omitempty"`
}

type pageDTO struct {
	Type       string     `json:"type"`
	PageNumber int        `json:"page_number"`
	Size       [2]float64 `json:"size"`
	Background []float64  `json:"page_background_color,omitempty"`
	Layers     []layerDTO `json:"layers"`
}

type canvasDTO struct {
	Type       string     `json:"type"`
	Size       [2]float64 `json:"size"`
	CanvasName string     `json:"canvas_name"`
	Background []float64  `json:"canvas_background_color,omitempty"`
	Layers     []layerDTO `json:"layers"`
}

type layerDTO struct {
	LayerID    int               `json:"layer_id"`
	LayerName  string            `json:"layer_name"`
	LayerType  string            `json:"layer_type"`
	BBox       [4]float64        `json:"bbox"`
	Visibility bool              `json:"visibility"`
	Opacity    float64           `json:"opacity"`
	BlendMode  string            `json:"blend_mode"`
	Children   []layerDTO        `json:"children"`
	Content    []json.RawMessage `json:"content"`
	Effects    []effectDTO       `json:"effects,omitempty"`
}

type effectDTO struct {
	Type     string    `json:"type"`
	Color    []float64 `json:"color,omitempty"`
	Opacity  float64   `json:"opacity"`
	Size     float64   `json:"size"`
	Distance float64   `json:"distance"`
	Angle    float64   `json:"angle"`
}

type fontDTO struct {
	Name        string    `json:"name"`
	Size        float64   `json:"size"`
	Color       []float64 `json:"color"`
	Ascender    float64   `json:"ascender"`
	Descender   float64   `json:"descender"`
	Bold        bool      `json:"bold"`
	Italic      bool      `json:"italic"`
	Serif       bool      `json:"serif"`
	Monospace   bool      `json:"monospace"`
	Superscript bool      `json:"superscript"`
}

type textDTO struct {
	Type             string     `json:"type"`
	ID               int        `json:"id"`
	BBox             [4]float64 `json:"bbox"`
	Text             string     `json:"text"`
	RawText          string     `json:"raw_text"`
	FontDetails      fontDTO    `json:"font_details"`
	Background       []float64  `json:"background_color,omitempty"`
	WritingMode      int        `json:"writing_mode,omitempty"`
	WritingDirection []float64  `json:"writing_direction,omitempty"`
	SpacingAdjusted  bool       `json:"spacing_adjusted,omitempty"`
}

type imageDTO struct {
	Type            string     `json:"type"`
	ID              int        `json:"id"`
	BBox            [4]float64 `json:"bbox"`
	ImageFile       string     `json:"image_file"`
	OriginalFormat  string     `json:"original_format"`
	DPI             int        `json:"dpi"`
	ColorSpace      string     `json:"color_space"`
	HasTransparency bool       `json:"has_transparency"`
	Transform       []float64  `json:"transform,omitempty"`
	ZIndex          int        `json:"z_index"`
}

type drawingDTO struct {
	Type     string     `json:"type"`
	ID       int        `json:"id"`
	BBox     [4]float64 `json:"bbox"`
	Color    []float64  `json:"color,omitempty"`
	Fill     []float64  `json:"fill,omitempty"`
	Width    float64    `json:"width"`
	Commands []cmdDTO   `json:"drawing_commands"`
}

type cmdDTO struct {
	Cmd  string       `json:"cmd"`
	Pts  [][2]float64 `json:"pts,omitempty"`
	BBox []float64    `json:"bbox,omitempty"`
}

// EncodeDocument serializes the document to the canonical tree.
func EncodeDocument(d *Document) ([]byte, error) {
	dto := docDTO{
		Version:       d.Version,
		Engine:        d.Engine,
		EngineVersion: d.EngineVersion,
		Metadata: metadataDTO{
			Format:           d.Metadata.Format,
			Title:            d.Metadata.Title,
			Author:           d.Metadata.Author,
			Subject:          d.Metadata.Subject,
			Keywords:         d.Metadata.Keywords,
			Creator:          d.Metadata.Creator,
			Producer:         d.Metadata.Producer,
			CreationDate:     d.Metadata.CreationDate,
			ModificationDate: d.Metadata.ModificationDate,
		},
		Units: make([]json.RawMessage, 0, len(d.Units)),
	}
	for i, u := range d.Units {
		raw, err := encodeUnit(u)
		if err != nil {
			return nil, fmt.Errorf("encode unit %d: %w", i, err)
		}
		dto.Units = append(dto.Units, raw)
	}
	return json.MarshalIndent(dto, "", "  ")
}

// DecodeDocument parses a canonical tree back into a Document.
func DecodeDocument(data []byte) (*Document, error) {
	var dto docDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("parse canonical tree: %w", err)
	}
	doc := &Document{
		Version:       dto.Version,
		Engine:        dto.Engine,
		EngineVersion: dto.EngineVersion,
		Metadata: DocumentMetadata{
			Format:           dto.Metadata.Format,
			Title:            dto.Metadata.Title,
			Author:           dto.Metadata.Author,
			Subject:          dto.Metadata.Subject,
			Keywords:         dto.Metadata.Keywords,
			Creator:          dto.Metadata.Creator,
			Producer:         dto.Metadata.Producer,
			CreationDate:     dto.Metadata.CreationDate,
			ModificationDate: dto.Metadata.ModificationDate,
		},
	}
	for i, raw := range dto.Units {
		u, err := decodeUnit(raw)
		if err != nil {
			return nil, fmt.Errorf("decode unit %d: %w", i, err)
		}
		doc.Units = append(doc.Units, u)
	}
	return doc, nil
}

func encodeUnit(u Unit) (json.RawMessage, error) {
	switch v := u.(type) {
	case *PageUnit:
		layers, err := encodeLayers(v.Layers)
		if err != nil {
			return nil, err
		}
		return json.Marshal(pageDTO{
			Type:       "page",
			PageNumber: v.Number,
			Size:       [2]float64{v.Width, v.Height},
			Background: rgbSlice(v.Background),
			Layers:     layers,
		})
	case *CanvasUnit:
		layers, err := encodeLayers(v.Layers)
		if err != nil {
			return nil, err
		}
		return json.Marshal(canvasDTO{
			Type:       "canvas",
			Size:       [2]float64{v.Width, v.Height},
			CanvasName: v.Name,
			Background: rgbSlice(v.Background),
			Layers:     layers,
		})
	default:
		return nil, fmt.Errorf("unknown unit type %T", u)
	}
}

func decodeUnit(raw json.RawMessage) (Unit, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}
	switch probe.Type {
	case "page":
		var dto pageDTO
		if err := json.Unmarshal(raw, &dto); err != nil {
			return nil, err
		}
		layers, err := decodeLayers(dto.Layers)
		if err != nil {
			return nil, err
		}
		return &PageUnit{
			Number:     dto.PageNumber,
			Width:      dto.Size[0],
			Height:     dto.Size[1],
			Background: rgbColor(dto.Background),
			Layers:     layers,
		}, nil
	case "canvas":
		var dto canvasDTO
		if err := json.Unmarshal(raw, &dto); err != nil {
			return nil, err
		}
		layers, err := decodeLayers(dto.Layers)
		if err != nil {
			return nil, err
		}
		return &CanvasUnit{
			Name:       dto.CanvasName,
			Width:      dto.Size[0],
			Height:     dto.Size[1],
			Background: rgbColor(dto.Background),
			Layers:     layers,
		}, nil
	default:
		return nil, fmt.Errorf("unknown unit type %q", probe.Type)
	}
}

func encodeLayers(layers []*Layer) ([]layerDTO, error) {
	out := make([]layerDTO, 0, len(layers))
	for _, l := range layers {
		dto, err := encodeLayer(l)
		if err != nil {
			return nil, err
		}
		out = append(out, dto)
	}
	return out, nil
}

func encodeLayer(l *Layer) (layerDTO, error) {
	dto := layerDTO{
		LayerID:    l.LayerID,
		LayerName:  l.Name,
		LayerType:  string(l.Kind),
		BBox:       [4]float64{l.BBox.X0, l.BBox.Y0, l.BBox.X1, l.BBox.Y1},
		Visibility: l.Visible,
		Opacity:    l.Opacity,
		BlendMode:  string(l.Blend),
		Children:   make([]layerDTO, 0, len(l.Children)),
		Content:    make([]json.RawMessage, 0, len(l.Content)),
	}
	for _, child := range l.Children {
		c, err := encodeLayer(child)
		if err != nil {
			return layerDTO{}, err
		}
		dto.Children = append(dto.Children, c)
	}
	for _, el := range l.Content {
		raw, err := encodeElement(el)
		if err != nil {
			return layerDTO{}, err
		}
		dto.Content = append(dto.Content, raw)
	}
	for _, e := range l.Effects {
		dto.Effects = append(dto.Effects, effectDTO{
			Type:     string(e.Type),
			Color:    rgbaSlice(e.Color),
			Opacity:  e.Opacity,
			Size:     e.Size,
			Distance: e.Distance,
			Angle:    e.Angle,
		})
	}
	return dto, nil
}

func decodeLayers(dtos []layerDTO) ([]*Layer, error) {
	if len(dtos) == 0 {
		return nil, nil
	}
	out := make([]*Layer, 0, len(dtos))
	for i := range dtos {
		l, err := decodeLayer(&dtos[i])
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func decodeLayer(dto *layerDTO) (*Layer, error) {
	l := &Layer{
		LayerID: dto.LayerID,
		Name:    dto.LayerName,
		Kind:    LayerKind(dto.LayerType),
		BBox:    geo.BBox{X0: dto.BBox[0], Y0: dto.BBox[1], X1: dto.BBox[2], Y1: dto.BBox[3]},
		Visible: dto.Visibility,
		Opacity: dto.Opacity,
		Blend:   BlendMode(dto.BlendMode),
	}
	children, err := decodeLayers(dto.Children)
	if err != nil {
		return nil, err
	}
	l.Children = children
	for _, raw := range dto.Content {
		el, err := decodeElement(raw)
		if err != nil {
			return nil, err
		}
		l.Content = append(l.Content, el)
	}
	for _, e := range dto.Effects {
		l.Effects = append(l.Effects, Effect{
			Type:     EffectType(e.Type),
			Color:    rgbaColor(e.Color),
			Opacity:  e.Opacity,
			Size:     e.Size,
			Distance: e.Distance,
			Angle:    e.Angle,
		})
	}
	return l, nil
}

func encodeElement(el ContentElement) (json.RawMessage, error) {
	switch v := el.(type) {
	case *Text:
		dto := textDTO{
			Type:            "text",
			ID:              v.ElementID,
			BBox:            bboxArray(v.BBox),
			Text:            v.NormalizedText,
			RawText:         v.RawText,
			Background:      rgbaSlice(v.Background),
			WritingMode:     v.WritingMode,
			SpacingAdjusted: v.SpacingAdjusted,
			FontDetails: fontDTO{
				Name:        v.Font.Name,
				Size:        v.Font.Size,
				Color:       []float64{v.Font.Color.R, v.Font.Color.G, v.Font.Color.B, v.Font.Color.A},
				Ascender:    v.Font.Ascender,
				Descender:   v.Font.Descender,
				Bold:        v.Font.Bold,
				Italic:      v.Font.Italic,
				Serif:       v.Font.Serif,
				Monospace:   v.Font.Monospace,
				Superscript: v.Font.Superscript,
			},
		}
		if v.WritingDirection != [2]float64{} {
			dto.WritingDirection = []float64{v.WritingDirection[0], v.WritingDirection[1]}
		}
		return json.Marshal(dto)
	case *Image:
		return json.Marshal(imageDTO{
			Type:            "image",
			ID:              v.ElementID,
			BBox:            bboxArray(v.BBox),
			ImageFile:       v.FileRef,
			OriginalFormat:  v.OriginalFormat,
			DPI:             v.DPI,
			ColorSpace:      v.ColorSpace,
			HasTransparency: v.HasTransparency,
			Transform:       v.Transform,
			ZIndex:          v.ZIndex,
		})
	case *Drawing:
		dto := drawingDTO{
			Type:     "drawing",
			ID:       v.ElementID,
			BBox:     bboxArray(v.BBox),
			Color:    rgbaSlice(v.StrokeColor),
			Fill:     rgbaSlice(v.FillColor),
			Width:    v.StrokeWidth,
			Commands: make([]cmdDTO, 0, len(v.Commands)),
		}
		for _, cmd := range v.Commands {
			dto.Commands = append(dto.Commands, encodeCmd(cmd))
		}
		return json.Marshal(dto)
	default:
		return nil, fmt.Errorf("unknown element type %T", el)
	}
}

func decodeElement(raw json.RawMessage) (ContentElement, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}
	switch probe.Type {
	case "text":
		var dto textDTO
		if err := json.Unmarshal(raw, &dto); err != nil {
			return nil, err
		}
		t := &Text{
			ElementID:       dto.ID,
			BBox:            bboxFromArray(dto.BBox),
			NormalizedText:  dto.Text,
			RawText:         dto.RawText,
			Background:      rgbaColor(dto.Background),
			WritingMode:     dto.WritingMode,
			SpacingAdjusted: dto.SpacingAdjusted,
			Font: FontDescriptor{
				Name:        dto.FontDetails.Name,
				Size:        dto.FontDetails.Size,
				Ascender:    dto.FontDetails.Ascender,
				Descender:   dto.FontDetails.Descender,
				Bold:        dto.FontDetails.Bold,
				Italic:      dto.FontDetails.Italic,
				Serif:       dto.FontDetails.Serif,
				Monospace:   dto.FontDetails.Monospace,
				Superscript: dto.FontDetails.Superscript,
			},
		}
		if c := rgbaColor(dto.FontDetails.Color); c != nil {
			t.Font.Color = *c
		}
		if len(dto.WritingDirection) == 2 {
			t.WritingDirection = [2]float64{dto.WritingDirection[0], dto.WritingDirection[1]}
		}
		return t, nil
	case "image":
		var dto imageDTO
		if err := json.Unmarshal(raw, &dto); err != nil {
			return nil, err
		}
		return &Image{
			ElementID:       dto.ID,
			BBox:            bboxFromArray(dto.BBox),
			FileRef:         dto.ImageFile,
			OriginalFormat:  dto.OriginalFormat,
			DPI:             dto.DPI,
			ColorSpace:      dto.ColorSpace,
			HasTransparency: dto.HasTransparency,
			Transform:       dto.Transform,
			ZIndex:          dto.ZIndex,
		}, nil
	case "drawing":
		var dto drawingDTO
		if err := json.Unmarshal(raw, &dto); err != nil {
			return nil, err
		}
		d := &Drawing{
			ElementID:   dto.ID,
			BBox:        bboxFromArray(dto.BBox),
			StrokeColor: rgbaColor(dto.Color),
			FillColor:   rgbaColor(dto.Fill),
			StrokeWidth: dto.Width,
		}
		for _, c := range dto.Commands {
			cmd, err := decodeCmd(c)
			if err != nil {
				return nil, err
			}
			d.Commands = append(d.Commands, cmd)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unknown element type %q", probe.Type)
	}
}

func encodeCmd(cmd PathCmd) cmdDTO {
	switch v := cmd.(type) {
	case MoveTo:
		return cmdDTO{Cmd: v.Op(), Pts: [][2]float64{{v.P.X, v.P.Y}}}
	case LineTo:
		return cmdDTO{Cmd: v.Op(), Pts: [][2]float64{{v.P.X, v.P.Y}}}
	case CubicTo:
		return cmdDTO{Cmd: v.Op(), Pts: [][2]float64{
			{v.P1.X, v.P1.Y}, {v.P2.X, v.P2.Y}, {v.P3.X, v.P3.Y}, {v.P4.X, v.P4.Y},
		}}
	case ClosePath:
		return cmdDTO{Cmd: v.Op()}
	case Rect:
		return cmdDTO{Cmd: v.Op(), BBox: []float64{v.R.X0, v.R.Y0, v.R.X1, v.R.Y1}}
	default:
		return cmdDTO{Cmd: "close"}
	}
}

func decodeCmd(dto cmdDTO) (PathCmd, error) {
	switch dto.Cmd {
	case "move":
		if len(dto.Pts) != 1 {
			return nil, fmt.Errorf("move command wants 1 point, got %d", len(dto.Pts))
		}
		return MoveTo{P: geo.Point{X: dto.Pts[0][0], Y: dto.Pts[0][1]}}, nil
	case "line":
		if len(dto.Pts) != 1 {
			return nil, fmt.Errorf("line command wants 1 point, got %d", len(dto.Pts))
		}
		return LineTo{P: geo.Point{X: dto.Pts[0][0], Y: dto.Pts[0][1]}}, nil
	case "curve":
		if len(dto.Pts) != 4 {
			return nil, fmt.Errorf("curve command wants 4 points, got %d", len(dto.Pts))
		}
		return CubicTo{
			P1: geo.Point{X: dto.Pts[0][0], Y: dto.Pts[0][1]},
			P2: geo.Point{X: dto.Pts[1][0], Y: dto.Pts[1][1]},
			P3: geo.Point{X: dto.Pts[2][0], Y: dto.Pts[2][1]},
			P4: geo.Point{X: dto.Pts[3][0], Y: dto.Pts[3][1]},
		}, nil
	case "close":
		return ClosePath{}, nil
	case "rect":
		if len(dto.BBox) != 4 {
			return nil, fmt.Errorf("rect command wants a 4-value bbox, got %d", len(dto.BBox))
		}
		return Rect{R: geo.NewBBox(dto.BBox[0], dto.BBox[1], dto.BBox[2], dto.BBox[3])}, nil
	default:
		return nil, fmt.Errorf("unknown drawing command %q", dto.Cmd)
	}
}

func bboxArray(b geo.BBox) [4]float64 {
	return [4]float64{b.X0, b.Y0, b.X1, b.Y1}
}

func bboxFromArray(a [4]float64) geo.BBox {
	return geo.BBox{X0: a[0], Y0: a[1], X1: a[2], Y1: a[3]}
}

func rgbaSlice(c *Color) []float64 {
	if c == nil {
		return nil
	}
	return []float64{c.R, c.G, c.B, c.A}
}

func rgbaColor(v []float64) *Color {
	if len(v) < 3 {
		return nil
	}
	c := Color{R: v[0], G: v[1], B: v[2], A: 1}
	if len(v) >= 4 {
		c.A = v[3]
	}
	return &c
}

// Unit backgrounds are uniform paints; alpha is dropped on the wire and
// restored as fully opaque.
func rgbSlice(c *Color) []float64 {
	if c == nil {
		return nil
	}
	return []float64{c.R, c.G, c.B}
}

func rgbColor(v []float64) *Color {
	if len(v) < 3 {
		return nil
	}
	return &Color{R: v[0], G: v[1], B: v[2], A: 1}
}
