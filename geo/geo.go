package geo

import "math"

// Point is a 2D point in page/canvas coordinates.
type Point struct {
	X, Y float64
}

// Distance returns the Euclidean distance to another point.
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// BBox is an axis-aligned bounding box. Invariant: X0 <= X1 and Y0 <= Y1.
// Boxes are value types created at extraction time and replaced, never mutated.
type BBox struct {
	X0, Y0, X1, Y1 float64
}

// NewBBox builds a box from two corners, swapping coordinates as needed so
// the invariant holds regardless of the backend's corner ordering.
func NewBBox(x0, y0, x1, y1 float64) BBox {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	return BBox{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// FromCorners builds a box spanning two points.
func FromCorners(a, b Point) BBox {
	return NewBBox(a.X, a.Y, b.X, b.Y)
}

func (b BBox) Width() float64  { return b.X1 - b.X0 }
func (b BBox) Height() float64 { return b.Y1 - b.Y0 }

// Area returns the enclosed area; degenerate boxes have area zero.
func (b BBox) Area() float64 { return b.Width() * b.Height() }

// IsEmpty reports whether the box encloses no area.
func (b BBox) IsEmpty() bool { return b.Width() <= 0 || b.Height() <= 0 }

// Center returns the midpoint of the box.
func (b BBox) Center() Point {
	return Point{X: (b.X0 + b.X1) / 2, Y: (b.Y0 + b.Y1) / 2}
}

// ContainsPoint reports whether the point lies inside or on the boundary.
func (b BBox) ContainsPoint(p Point) bool {
	return p.X >= b.X0 && p.X <= b.X1 && p.Y >= b.Y0 && p.Y <= b.Y1
}

// Contains reports whether other lies entirely inside b (boundaries included).
func (b BBox) Contains(other BBox) bool {
	return other.X0 >= b.X0 && other.X1 <= b.X1 && other.Y0 >= b.Y0 && other.Y1 <= b.Y1
}

// Intersects reports whether the two boxes share any area or edge.
func (b BBox) Intersects(other BBox) bool {
	return b.X0 <= other.X1 && other.X0 <= b.X1 && b.Y0 <= other.Y1 && other.Y0 <= b.Y1
}

// Intersect returns the overlapping region, or a zero box when disjoint.
func (b BBox) Intersect(other BBox) BBox {
	x0 := math.Max(b.X0, other.X0)
	y0 := math.Max(b.Y0, other.Y0)
	x1 := math.Min(b.X1, other.X1)
	y1 := math.Min(b.Y1, other.Y1)
	if x1 < x0 || y1 < y0 {
		return BBox{}
	}
	return BBox{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// IntersectionArea returns the area shared by the two boxes.
func (b BBox) IntersectionArea(other BBox) float64 {
	return b.Intersect(other).Area()
}

// Union returns the smallest box enclosing both.
func (b BBox) Union(other BBox) BBox {
	if b.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return b
	}
	return BBox{
		X0: math.Min(b.X0, other.X0),
		Y0: math.Min(b.Y0, other.Y0),
		X1: math.Max(b.X1, other.X1),
		Y1: math.Max(b.Y1, other.Y1),
	}
}
