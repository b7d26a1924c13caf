package render

import "stg-renderer/internal/gfx"

// FogFromRange converts the legacy (start, end) fog call: equal values
// disable fog, start -1 selects exponential fog and -2 squared exponential
// fog with density end, anything else is linear fog from start to end.
func FogFromRange(start, end float32, color uint32) gfx.Fog {
	switch {
	case start == end:
		return gfx.Fog{Mode: gfx.FogDisable}
	case start == -1:
		return gfx.Fog{Mode: gfx.FogExp, Color: color, Near: end}
	case start == -2:
		return gfx.Fog{Mode: gfx.FogExp2, Color: color, Near: end}
	}
	return gfx.Fog{Mode: gfx.FogLinear, Color: color, Near: start, Far: end}
}
