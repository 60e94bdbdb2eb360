package layered

import (
	"strconv"
	"strings"
)

// LayerMetadata is the typed result of parsing one layer's flat string
// properties. Optional fields stay nil when no convention supplied them;
// everything unrecognized is preserved in Extra for the effect parser.
type LayerMetadata struct {
	Index     int
	Name      string
	Opacity   *float64
	Visible   *bool
	BlendMode string
	Kind      string
	BBox      *[4]float64
	Parent    *int
	Extra     map[string]string
}

// Key conventions observed in the wild, strongest first. When the same
// property for the same layer appears under several conventions, the
// strongest convention wins regardless of map iteration order.
//
//	layer:<i>:<prop>            rank 2
//	layer[<i>]:<prop>           rank 1
//	<vendor>:layer:<i>:<prop>   rank 0
func matchLayerKey(key string) (index int, prop string, rank int, ok bool) {
	if rest, found := strings.CutPrefix(key, "layer:"); found {
		if i, p, split := splitIndexProp(rest, ":"); split {
			return i, p, 2, true
		}
	}
	if rest, found := strings.CutPrefix(key, "layer["); found {
		end := strings.Index(rest, "]:")
		if end > 0 {
			if i, err := strconv.Atoi(rest[:end]); err == nil && rest[end+2:] != "" {
				return i, rest[end+2:], 1, true
			}
		}
	}
	if at := strings.Index(key, ":layer:"); at > 0 {
		if i, p, split := splitIndexProp(key[at+len(":layer:"):], ":"); split {
			return i, p, 0, true
		}
	}
	return 0, "", 0, false
}

func splitIndexProp(s, sep string) (int, string, bool) {
	idx, prop, found := strings.Cut(s, sep)
	if !found || prop == "" {
		return 0, "", false
	}
	i, err := strconv.Atoi(idx)
	if err != nil || i < 0 {
		return 0, "", false
	}
	return i, prop, true
}

// ParseLayerMetadata turns flat backend properties into per-index typed
// metadata. Parsing is pure: no hierarchy or raster logic here.
func ParseLayerMetadata(props map[string]string) map[int]*LayerMetadata {
	type slot struct {
		value string
		rank  int
	}
	staged := make(map[int]map[string]slot)
	for key, value := range props {
		index, prop, rank, ok := matchLayerKey(key)
		if !ok {
			continue
		}
		byProp := staged[index]
		if byProp == nil {
			byProp = make(map[string]slot)
			staged[index] = byProp
		}
		prop = strings.ToLower(prop)
		if prev, exists := byProp[prop]; !exists || rank > prev.rank {
			byProp[prop] = slot{value: value, rank: rank}
		}
	}

	out := make(map[int]*LayerMetadata, len(staged))
	for index, byProp := range staged {
		meta := &LayerMetadata{Index: index, Extra: map[string]string{}}
		for prop, s := range byProp {
			switch prop {
			case "name":
				meta.Name = s.value
			case "opacity":
				if v, ok := parseOpacity(s.value); ok {
					meta.Opacity = &v
				}
			case "visible", "visibility":
				if v, ok := parseBoolish(s.value); ok {
					meta.Visible = &v
				}
			case "blend", "blendmode", "blend_mode":
				meta.BlendMode = s.value
			case "type", "kind":
				meta.Kind = s.value
			case "bbox", "bounds":
				if v, ok := parseBBox4(s.value); ok {
					meta.BBox = &v
				}
			case "parent":
				if p, err := strconv.Atoi(strings.TrimSpace(s.value)); err == nil {
					meta.Parent = &p
				}
			default:
				meta.Extra[prop] = s.value
			}
		}
		out[index] = meta
	}
	return out
}

// parseOpacity accepts both percentage forms ("85%", "85") and unit-interval
// forms ("0.85"); the result is clamped to [0,1].
func parseOpacity(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	percent := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	if percent || v > 1 {
		v /= 100
	}
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v, true
}

func parseBoolish(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "1", "visible":
		return true, true
	case "false", "no", "off", "0", "hidden", "invisible":
		return false, true
	}
	return false, false
}

// parseBBox4 reads "x0,y0,x1,y1".
func parseBBox4(s string) ([4]float64, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return [4]float64{}, false
	}
	var out [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return [4]float64{}, false
		}
		out[i] = v
	}
	return out, true
}
