package layered

import "testing"

func TestParseLayerMetadataConventions(t *testing.T) {
	meta := ParseLayerMetadata(map[string]string{
		"layer:0:name":       "Background",
		"layer:0:opacity":    "85%",
		"layer:0:visible":    "yes",
		"layer:0:blend_mode": "Multiply",
		"layer[1]:name":      "Heading",
		"layer[1]:type":      "text",
		"layer[1]:parent":    "0",
		"psd:layer:2:name":   "Vendor Layer",
		"psd:layer:2:bbox":   "10, 20, 110, 220",
		"unrelated":          "ignored",
	})

	if len(meta) != 3 {
		t.Fatalf("parsed %d layers, want 3", len(meta))
	}
	bg := meta[0]
	if bg.Name != "Background" {
		t.Errorf("name = %q", bg.Name)
	}
	if bg.Opacity == nil || *bg.Opacity != 0.85 {
		t.Errorf("opacity = %v, want 0.85", bg.Opacity)
	}
	if bg.Visible == nil || !*bg.Visible {
		t.Errorf("visible = %v, want true", bg.Visible)
	}
	if bg.BlendMode != "Multiply" {
		t.Errorf("blend = %q", bg.BlendMode)
	}
	heading := meta[1]
	if heading.Kind != "text" {
		t.Errorf("kind = %q", heading.Kind)
	}
	if heading.Parent == nil || *heading.Parent != 0 {
		t.Errorf("parent = %v, want 0", heading.Parent)
	}
	vendor := meta[2]
	if vendor.Name != "Vendor Layer" {
		t.Errorf("vendor name = %q", vendor.Name)
	}
	if vendor.BBox == nil || *vendor.BBox != [4]float64{10, 20, 110, 220} {
		t.Errorf("vendor bbox = %v", vendor.BBox)
	}
}

func TestConventionPrecedence(t *testing.T) {
	// The colon convention outranks brackets, which outrank vendor prefixes,
	// no matter what order the map yields them in.
	meta := ParseLayerMetadata(map[string]string{
		"psd:layer:0:name": "vendor",
		"layer[0]:name":    "brackets",
		"layer:0:name":     "colon",
	})
	if got := meta[0].Name; got != "colon" {
		t.Errorf("name = %q, want the colon convention to win", got)
	}

	meta = ParseLayerMetadata(map[string]string{
		"psd:layer:0:opacity": "10",
		"layer[0]:opacity":    "50",
	})
	if meta[0].Opacity == nil || *meta[0].Opacity != 0.5 {
		t.Errorf("opacity = %v, want bracket convention (0.5)", meta[0].Opacity)
	}
}

func TestParseOpacityForms(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"85%", 0.85, true},
		{"0.4", 0.4, true},
		{"40", 0.4, true},
		{"1", 1, true},
		{"150%", 1, true},
		{"-3", 0, true},
		{"opaque", 0, false},
	}
	for _, c := range cases {
		got, ok := parseOpacity(c.in)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("parseOpacity(%q) = (%v, %v), want (%v, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestParseEffects(t *testing.T) {
	meta := &LayerMetadata{Extra: map[string]string{
		"effects":       "drop shadow; outer glow",
		"effect:stroke": "size=2 opacity=0.5 color=#ff0000",
	}}
	effects := parseEffects(meta)
	if len(effects) != 3 {
		t.Fatalf("got %d effects, want 3", len(effects))
	}
	byType := map[string]int{}
	for i, eff := range effects {
		byType[string(eff.Type)] = i
	}
	shadow := effects[byType["drop_shadow"]]
	if shadow.Distance != 5 || shadow.Angle != 120 {
		t.Errorf("drop shadow defaults not applied: %+v", shadow)
	}
	stroke := effects[byType["stroke"]]
	if stroke.Size != 2 || stroke.Opacity != 0.5 {
		t.Errorf("stroke params not parsed: %+v", stroke)
	}
	if stroke.Color == nil || stroke.Color.R != 1 || stroke.Color.G != 0 {
		t.Errorf("stroke color = %v, want red", stroke.Color)
	}
}
