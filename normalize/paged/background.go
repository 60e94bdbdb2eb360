package paged

import (
	"github.com/wudi/idmkit/geo"
	"github.com/wudi/idmkit/idm"
)

// backgroundCandidate is a solid-filled rectangle drawing that may be
// attributed as the background of a text element. Each candidate is consumed
// at most once.
type backgroundCandidate struct {
	rect     geo.BBox
	fill     idm.Color
	consumed bool
}

// attributeBackgrounds assigns candidate fill colors to text elements whose
// bbox is fully contained in the rectangle or overlaps it by more than the
// overlap fraction of the text's own area. Matching is first-match-wins in
// extraction order for both texts and candidates; the attribution order (and
// therefore tie-breaking between equally frequent fills) is deliberately
// extraction-order dependent and must not be "stabilized".
//
// The returned color is the most frequent attributed fill, which becomes the
// page background; nil when nothing was attributed.
func attributeBackgrounds(texts []*idm.Text, candidates []*backgroundCandidate, overlap float64) *idm.Color {
	freq := make(map[idm.Color]int)
	var seen []idm.Color

	for _, t := range texts {
		area := t.BBox.Area()
		for _, c := range candidates {
			if c.consumed {
				continue
			}
			contained := c.rect.Contains(t.BBox)
			covered := area > 0 && c.rect.IntersectionArea(t.BBox) > overlap*area
			if !contained && !covered {
				continue
			}
			fill := c.fill
			t.Background = &fill
			c.consumed = true
			if freq[fill] == 0 {
				seen = append(seen, fill)
			}
			freq[fill]++
			break
		}
	}

	var best *idm.Color
	bestCount := 0
	for _, col := range seen {
		if freq[col] > bestCount {
			c := col
			best = &c
			bestCount = freq[col]
		}
	}
	return best
}
