package rldevice

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"stg-renderer/internal/gfx"
)

func toMatrix(m gfx.Matrix) rl.Matrix {
	return rl.Matrix{
		M0: m[0], M1: m[1], M2: m[2], M3: m[3],
		M4: m[4], M5: m[5], M6: m[6], M7: m[7],
		M8: m[8], M9: m[9], M10: m[10], M11: m[11],
		M12: m[12], M13: m[13], M14: m[14], M15: m[15],
	}
}

func toRGBA(argb uint32) color.RGBA {
	a, r, g, b := gfx.UnpackARGB(argb)
	return color.RGBA{R: r, G: g, B: b, A: a}
}

// normalized returns the color as r, g, b, a in [0, 1].
func normalized(argb uint32) []float32 {
	a, r, g, b := gfx.UnpackARGB(argb)
	return []float32{float32(r) / 255, float32(g) / 255, float32(b) / 255, float32(a) / 255}
}

// glViewport converts a top-left origin box into GL's bottom-left viewport
// for a framebuffer of the given height.
func glViewport(box gfx.Box, fbHeight int) (x, y, w, h int32) {
	x = int32(box.MinX)
	w = int32(box.Width())
	h = int32(box.Height())
	y = int32(fbHeight) - int32(box.MaxY)
	return
}

func scissorRect(r gfx.Rect) (x, y, w, h int32) {
	return int32(r.Left), int32(r.Top), int32(r.Width()), int32(r.Height())
}

func clamp01(v float32) float32 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// lightingTint folds ambient and directional light into the single tint the
// unlit model shader understands. The directional term uses an up-facing
// surface.
func lightingTint(l gfx.Lighting) color.RGBA {
	facing := clamp01(-l.LightDirection.Y)
	mix := func(ambient, light float32) uint8 {
		return uint8(clamp01(ambient*l.AmbientBrightness+light*l.LightBrightness*facing) * 255)
	}
	return color.RGBA{
		R: mix(l.AmbientColor.X, l.LightColor.X),
		G: mix(l.AmbientColor.Y, l.LightColor.Y),
		B: mix(l.AmbientColor.Z, l.LightColor.Z),
		A: 255,
	}
}
