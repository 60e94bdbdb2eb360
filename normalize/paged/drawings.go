package paged

import (
	"fmt"
	"math"

	"github.com/wudi/idmkit/geo"
	"github.com/wudi/idmkit/idm"
	"github.com/wudi/idmkit/normalize"
	"github.com/wudi/idmkit/observability"
)

// convertDrawing translates one backend drawing descriptor into a Drawing
// element. Malformed rectangle operands are dropped with a logged warning
// rather than failing the page; when nothing at all could be reconstructed
// the drawing falls back to a single Rect over its bounding rectangle.
func (n *Normalizer) convertDrawing(desc DrawingDesc, warnings *[]normalize.Warning) *idm.Drawing {
	bbox := geo.NewBBox(desc.BBox[0], desc.BBox[1], desc.BBox[2], desc.BBox[3])
	d := &idm.Drawing{
		ElementID:   n.ids.Next(),
		BBox:        bbox,
		StrokeColor: rgbColor(desc.Stroke),
		FillColor:   rgbColor(desc.Fill),
		StrokeWidth: desc.StrokeWidth,
	}

	for i, item := range desc.Items {
		cmds, err := canonicalizeItem(item)
		if err != nil {
			n.opts.Log().Warn("dropping malformed path item",
				observability.Int("item", i),
				observability.String("op", item.Op),
				observability.Error("err", err))
			*warnings = append(*warnings, normalize.Warning{
				Component: "paged.drawings",
				Message:   fmt.Sprintf("item %d (%s): %v", i, item.Op, err),
			})
			continue
		}
		d.Commands = append(d.Commands, cmds...)
	}

	if len(d.Commands) == 0 {
		d.Commands = []idm.PathCmd{idm.Rect{R: bbox}}
	}
	return d
}

func canonicalizeItem(item PathItem) ([]idm.PathCmd, error) {
	switch item.Op {
	case "m":
		if len(item.Args) < 2 {
			return nil, fmt.Errorf("move wants 2 operands, got %d", len(item.Args))
		}
		return []idm.PathCmd{idm.MoveTo{P: geo.Point{X: item.Args[0], Y: item.Args[1]}}}, nil
	case "l":
		switch len(item.Args) {
		case 2:
			return []idm.PathCmd{idm.LineTo{P: geo.Point{X: item.Args[0], Y: item.Args[1]}}}, nil
		case 4:
			// Some backends express lines as explicit from/to pairs.
			return []idm.PathCmd{
				idm.MoveTo{P: geo.Point{X: item.Args[0], Y: item.Args[1]}},
				idm.LineTo{P: geo.Point{X: item.Args[2], Y: item.Args[3]}},
			}, nil
		default:
			return nil, fmt.Errorf("line wants 2 or 4 operands, got %d", len(item.Args))
		}
	case "c":
		if len(item.Args) < 8 {
			return nil, fmt.Errorf("curve wants 8 operands, got %d", len(item.Args))
		}
		return []idm.PathCmd{idm.CubicTo{
			P1: geo.Point{X: item.Args[0], Y: item.Args[1]},
			P2: geo.Point{X: item.Args[2], Y: item.Args[3]},
			P3: geo.Point{X: item.Args[4], Y: item.Args[5]},
			P4: geo.Point{X: item.Args[6], Y: item.Args[7]},
		}}, nil
	case "h":
		return []idm.PathCmd{idm.ClosePath{}}, nil
	case "re":
		return canonicalizeRect(item)
	default:
		return nil, fmt.Errorf("unknown opcode %q", item.Op)
	}
}

// canonicalizeRect accepts either an already-resolved rectangle object or
// four numeric operands; both forms canonicalize to Rect.
func canonicalizeRect(item PathItem) ([]idm.PathCmd, error) {
	if item.Rect != nil {
		r := *item.Rect
		if !finite(r[:]...) {
			return nil, fmt.Errorf("non-finite rectangle %v", r)
		}
		return []idm.PathCmd{idm.Rect{R: geo.NewBBox(r[0], r[1], r[2], r[3])}}, nil
	}
	if len(item.Args) != 4 {
		return nil, fmt.Errorf("rect wants 4 operands, got %d", len(item.Args))
	}
	if !finite(item.Args...) {
		return nil, fmt.Errorf("non-finite rectangle operands %v", item.Args)
	}
	return []idm.PathCmd{idm.Rect{R: geo.NewBBox(item.Args[0], item.Args[1], item.Args[2], item.Args[3])}}, nil
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func rgbColor(v []float64) *idm.Color {
	if len(v) < 3 {
		return nil
	}
	c := idm.Color{R: v[0], G: v[1], B: v[2], A: 1}.Clamped()
	return &c
}

// isSolidRect reports whether the drawing is a filled rectangle primitive
// eligible for background attribution: a fill color and a single Rect command.
func isSolidRect(d *idm.Drawing) (geo.BBox, bool) {
	if d.FillColor == nil || len(d.Commands) != 1 {
		return geo.BBox{}, false
	}
	r, ok := d.Commands[0].(idm.Rect)
	if !ok {
		return geo.BBox{}, false
	}
	return r.R, true
}
