package render

import (
	"testing"

	"github.com/wudi/idmkit/idm"
)

type countingRenderer struct {
	texts, images, drawings int
}

func (r *countingRenderer) RenderElement(ctx UnitContext, el idm.ContentElement, resources ResourceMap) Outcome {
	switch el.(type) {
	case *idm.Text:
		r.texts++
		return Outcome{Status: StatusSuccess}
	case *idm.Image:
		r.images++
		return Outcome{Status: StatusSuccess}
	case *idm.Drawing:
		r.drawings++
		return Outcome{Status: StatusUnsupported, Warnings: []string{"vector paths not implemented"}}
	}
	return Outcome{Status: StatusError}
}

func TestWalkVisitsVisibleContent(t *testing.T) {
	hidden := &idm.Layer{Kind: idm.LayerPixel, Visible: false, Opacity: 1, Blend: idm.BlendNormal,
		Content: []idm.ContentElement{&idm.Image{ElementID: 9}}}
	base := &idm.Layer{Kind: idm.LayerBase, Visible: true, Opacity: 1, Blend: idm.BlendNormal,
		Content: []idm.ContentElement{
			&idm.Text{ElementID: 1},
			&idm.Drawing{ElementID: 2},
		}}
	doc := idm.NewDocument("test", "0.0", idm.DocumentMetadata{})
	doc.Units = append(doc.Units, &idm.PageUnit{
		Number: 0, Width: 100, Height: 100,
		Layers: []*idm.Layer{base, hidden},
	})

	r := &countingRenderer{}
	outcomes := Walk(doc, r, ResourceMap{})

	if len(outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2 (hidden layer skipped)", len(outcomes))
	}
	if r.texts != 1 || r.drawings != 1 || r.images != 0 {
		t.Errorf("visited texts=%d drawings=%d images=%d", r.texts, r.drawings, r.images)
	}
	if outcomes[1].Status != StatusUnsupported || len(outcomes[1].Warnings) != 1 {
		t.Errorf("drawing outcome = %+v", outcomes[1])
	}
}
