package rldevice

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"stg-renderer/internal/gfx"
)

type blendFactors struct {
	src, dst, eq int32
}

// Hue has no fixed-function equivalent and renders as Alpha.
var blendTable = [...]blendFactors{
	gfx.BlendDisable: {rl.RlOne, rl.RlZero, rl.RlFuncAdd},
	gfx.BlendAlpha:   {rl.RlSrcAlpha, rl.RlOneMinusSrcAlpha, rl.RlFuncAdd},
	gfx.BlendOne:     {rl.RlOne, rl.RlZero, rl.RlFuncAdd},
	gfx.BlendMin:     {rl.RlOne, rl.RlOne, rl.RlMin},
	gfx.BlendMax:     {rl.RlOne, rl.RlOne, rl.RlMax},
	gfx.BlendMul:     {rl.RlDstColor, rl.RlZero, rl.RlFuncAdd},
	gfx.BlendScreen:  {rl.RlOne, rl.RlOneMinusSrcColor, rl.RlFuncAdd},
	gfx.BlendAdd:     {rl.RlSrcAlpha, rl.RlOne, rl.RlFuncAdd},
	gfx.BlendHue:     {rl.RlSrcAlpha, rl.RlOneMinusSrcAlpha, rl.RlFuncAdd},
	gfx.BlendSub:     {rl.RlSrcAlpha, rl.RlOne, rl.RlFuncReverseSubtract},
	gfx.BlendRevSub:  {rl.RlSrcAlpha, rl.RlOne, rl.RlFuncSubtract},
	gfx.BlendInv:     {rl.RlOneMinusDstColor, rl.RlOneMinusSrcColor, rl.RlFuncAdd},
}

func factorsFor(b gfx.BlendState) blendFactors {
	if !b.Valid() {
		return blendTable[gfx.BlendAlpha]
	}
	return blendTable[b]
}

// beginBlend switches rlgl to custom blending with the factors of b. rlgl
// flushes its own batch when the factors change.
func beginBlend(b gfx.BlendState) {
	f := factorsFor(b)
	rl.SetBlendFactors(f.src, f.dst, f.eq)
	rl.BeginBlendMode(rl.BlendCustom)
}

func endBlend() {
	rl.EndBlendMode()
}

// applySampler sets filter and wrap on a texture. Border addressing has no
// raylib wrap mode and falls back to clamp.
func applySampler(tex rl.Texture2D, s gfx.SamplerState) {
	if s.Linear() {
		rl.SetTextureFilter(tex, rl.FilterBilinear)
	} else {
		rl.SetTextureFilter(tex, rl.FilterPoint)
	}
	if s.Address() == 0 {
		rl.SetTextureWrap(tex, rl.WrapRepeat)
	} else {
		rl.SetTextureWrap(tex, rl.WrapClamp)
	}
}
