package geo

import "testing"

func TestNewBBoxNormalizesCorners(t *testing.T) {
	cases := []struct {
		in   [4]float64
		want BBox
	}{
		{[4]float64{0, 0, 10, 20}, BBox{0, 0, 10, 20}},
		{[4]float64{10, 20, 0, 0}, BBox{0, 0, 10, 20}},
		{[4]float64{10, 0, 0, 20}, BBox{0, 0, 10, 20}},
		{[4]float64{5, 5, 5, 5}, BBox{5, 5, 5, 5}},
	}
	for _, c := range cases {
		got := NewBBox(c.in[0], c.in[1], c.in[2], c.in[3])
		if got != c.want {
			t.Errorf("NewBBox(%v) = %v, want %v", c.in, got, c.want)
		}
		if got.X0 > got.X1 || got.Y0 > got.Y1 {
			t.Errorf("NewBBox(%v) violates ordering invariant: %v", c.in, got)
		}
	}
}

func TestContains(t *testing.T) {
	outer := NewBBox(0, 0, 100, 20)
	inner := NewBBox(10, 5, 90, 15)
	if !outer.Contains(inner) {
		t.Error("outer should contain inner")
	}
	if inner.Contains(outer) {
		t.Error("inner should not contain outer")
	}
	if !outer.Contains(outer) {
		t.Error("a box should contain itself")
	}
}

func TestIntersectionArea(t *testing.T) {
	a := NewBBox(0, 0, 10, 10)
	b := NewBBox(5, 5, 15, 15)
	if got := a.IntersectionArea(b); got != 25 {
		t.Errorf("IntersectionArea = %v, want 25", got)
	}
	c := NewBBox(20, 20, 30, 30)
	if got := a.IntersectionArea(c); got != 0 {
		t.Errorf("disjoint IntersectionArea = %v, want 0", got)
	}
	if !a.Intersect(c).IsEmpty() {
		t.Error("disjoint intersection should be empty")
	}
}

func TestUnion(t *testing.T) {
	a := NewBBox(0, 0, 10, 10)
	b := NewBBox(5, 5, 20, 30)
	got := a.Union(b)
	want := BBox{0, 0, 20, 30}
	if got != want {
		t.Errorf("Union = %v, want %v", got, want)
	}
	if got := a.Union(BBox{}); got != a {
		t.Errorf("union with empty = %v, want %v", got, a)
	}
}
