package layered

import (
	"sort"
	"strconv"
	"strings"

	"github.com/wudi/idmkit/idm"
)

// effectDefaults carries the per-type parameters used when the raw payload
// leaves them out.
var effectDefaults = map[idm.EffectType]idm.Effect{
	idm.EffectDropShadow:      {Opacity: 0.75, Size: 5, Distance: 5, Angle: 120},
	idm.EffectInnerShadow:     {Opacity: 0.75, Size: 5, Distance: 5, Angle: 120},
	idm.EffectOuterGlow:       {Opacity: 0.75, Size: 5},
	idm.EffectInnerGlow:       {Opacity: 0.75, Size: 5},
	idm.EffectBevel:           {Opacity: 1, Size: 5, Angle: 120},
	idm.EffectStroke:          {Opacity: 1, Size: 3},
	idm.EffectColorOverlay:    {Opacity: 1},
	idm.EffectGradientOverlay: {Opacity: 1},
	idm.EffectPatternOverlay:  {Opacity: 1},
}

// classifyEffect maps a raw effect token to a normalized type. Ordering
// matters: "inner shadow" must not match the plain shadow case.
func classifyEffect(token string) (idm.EffectType, bool) {
	token = strings.ToLower(token)
	switch {
	case strings.Contains(token, "inner") && strings.Contains(token, "shadow"):
		return idm.EffectInnerShadow, true
	case strings.Contains(token, "shadow"):
		return idm.EffectDropShadow, true
	case strings.Contains(token, "inner") && strings.Contains(token, "glow"):
		return idm.EffectInnerGlow, true
	case strings.Contains(token, "glow"):
		return idm.EffectOuterGlow, true
	case strings.Contains(token, "bevel"), strings.Contains(token, "emboss"):
		return idm.EffectBevel, true
	case strings.Contains(token, "stroke"):
		return idm.EffectStroke, true
	case strings.Contains(token, "gradient"):
		return idm.EffectGradientOverlay, true
	case strings.Contains(token, "pattern"):
		return idm.EffectPatternOverlay, true
	case strings.Contains(token, "overlay"):
		return idm.EffectColorOverlay, true
	}
	return "", false
}

// parseEffects pattern-matches effect descriptions out of a layer's leftover
// properties. Two shapes are accepted: a list property ("effects": "drop
// shadow; outer glow") and per-effect properties ("effect:stroke":
// "size=2 opacity=0.5"). Parameters missing from the payload come from the
// per-type defaults.
func parseEffects(meta *LayerMetadata) []idm.Effect {
	if meta == nil {
		return nil
	}
	var effects []idm.Effect
	for _, kv := range sortedExtra(meta.Extra) {
		prop, value := kv[0], kv[1]
		switch {
		case prop == "effects" || prop == "effect":
			for _, token := range strings.FieldsFunc(value, func(r rune) bool { return r == ';' || r == ',' }) {
				if eff, ok := buildEffect(token, token); ok {
					effects = append(effects, eff)
				}
			}
		case strings.HasPrefix(prop, "effect:"), strings.HasPrefix(prop, "effect."):
			if eff, ok := buildEffect(prop[len("effect:"):], value); ok {
				effects = append(effects, eff)
			}
		}
	}
	return effects
}

// sortedExtra yields key/value pairs in key order so the effect list does not
// depend on map iteration.
func sortedExtra(extra map[string]string) [][2]string {
	out := make([][2]string, 0, len(extra))
	for k, v := range extra {
		out = append(out, [2]string{k, v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

func buildEffect(token, params string) (idm.Effect, bool) {
	typ, ok := classifyEffect(token)
	if !ok {
		return idm.Effect{}, false
	}
	eff := effectDefaults[typ]
	eff.Type = typ
	for _, field := range strings.Fields(params) {
		key, raw, found := strings.Cut(field, "=")
		if !found {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			if key == "color" {
				if c, ok := parseHexColor(raw); ok {
					eff.Color = &c
				}
			}
			continue
		}
		switch strings.ToLower(key) {
		case "opacity":
			eff.Opacity = v
		case "size", "blur", "radius":
			eff.Size = v
		case "distance":
			eff.Distance = v
		case "angle":
			eff.Angle = v
		}
	}
	return eff, true
}

func parseHexColor(s string) (idm.Color, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return idm.Color{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return idm.Color{}, false
	}
	return idm.ColorFromPacked(int(v)), true
}
