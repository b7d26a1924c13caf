package render

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stg-renderer/internal/gfx"
	"stg-renderer/internal/gfx/gfxtest"
)

func blurEffect() *gfxtest.Effect {
	return gfxtest.NewEffect("blur",
		gfx.ParameterDesc{Name: "strength", Kind: gfx.ParamFloat},
		gfx.ParameterDesc{Name: "tint", Kind: gfx.ParamFloat4},
		gfx.ParameterDesc{Name: "noise", Kind: gfx.ParamTexture},
	)
}

func TestApplyPostEffectFlushesFirst(t *testing.T) {
	r, dev := newTestRenderer(t)
	noise := gfxtest.NewTexture("noise", 32, 32)
	fx := blurEffect()

	require.NoError(t, r.Begin())
	require.NoError(t, r.SetBlend(gfx.BlendAlpha))
	require.NoError(t, r.DrawTriangle(tri(0)))
	before := r.DrawState()

	params := NewEffectParams().
		SetFloat("strength", 0.5).
		SetColor("tint", 0xFF8000FF).
		SetTexture("noise", noise, gfx.SamplerPointWrap)
	require.NoError(t, r.ApplyPostEffect(fx, gfx.BlendOne, params))
	assert.Equal(t, before, r.DrawState())

	require.NoError(t, r.DrawTriangle(tri(1)))
	require.NoError(t, r.End())

	submit := slices.Index(dev.Calls, "Submit")
	effect := slices.Index(dev.Calls, "SubmitEffect")
	require.GreaterOrEqual(t, submit, 0)
	assert.Less(t, submit, effect, "pending geometry is submitted before the effect")

	require.Len(t, dev.Effects, 1)
	call := dev.Effects[0]
	assert.Same(t, fx, call.Effect)
	assert.Equal(t, gfx.BlendOne, call.Blend)
	require.Len(t, call.Values, 3)
	assert.Equal(t, float32(0.5), call.Values[0].Floats[0])
	// 0xFF8000FF is a=255 r=128 g=0 b=255, stored as (r, g, b, a)
	assert.InDelta(t, 128.0/255, call.Values[1].Floats[0], 1e-6)
	assert.InDelta(t, 0, call.Values[1].Floats[1], 1e-6)
	assert.InDelta(t, 1.0, call.Values[1].Floats[2], 1e-6)
	assert.InDelta(t, 1.0, call.Values[1].Floats[3], 1e-6)
	assert.Same(t, noise, call.Values[2].Texture)

	require.Len(t, dev.Submissions, 2)
	assert.Equal(t, gfx.BlendAlpha, dev.Submissions[1].State.Blend)
	assert.Equal(t, 1, r.Stats().Effects)
}

func TestApplyPostEffectRejectsUnknownParameter(t *testing.T) {
	r, dev := newTestRenderer(t)
	fx := blurEffect()

	require.NoError(t, r.Begin())
	require.NoError(t, r.DrawTriangle(tri(0)))

	err := r.ApplyPostEffect(fx, gfx.BlendAlpha, NewEffectParams().SetFloat("radius", 2))
	assert.ErrorIs(t, err, ErrUnknownParameter)
	assert.Equal(t, KindUnknownResource, Classify(err))

	err = r.ApplyPostEffect(fx, gfx.BlendAlpha, NewEffectParams().SetFloat2("strength", 1, 2))
	assert.ErrorIs(t, err, ErrUnknownParameter, "kind mismatch")

	err = r.ApplyPostEffect(fx, gfx.BlendAlpha, NewEffectParams().SetTexture("noise", nil, gfx.SamplerPointWrap))
	assert.ErrorIs(t, err, ErrUnknownResource)

	assert.ErrorIs(t, r.ApplyPostEffect(nil, gfx.BlendAlpha, nil), ErrUnknownResource)
	assert.ErrorIs(t, r.ApplyPostEffect(fx, gfx.BlendState(50), nil), ErrInvalidArgument)

	assert.Empty(t, dev.Effects)
	assert.Empty(t, dev.Submissions, "rejected effects do not flush")
	require.NoError(t, r.End())
}

func TestApplyPostEffectOutsideScope(t *testing.T) {
	r, dev := newTestRenderer(t)
	require.NoError(t, r.ApplyPostEffect(blurEffect(), gfx.BlendAlpha, nil))
	assert.Len(t, dev.Effects, 1)
	assert.Empty(t, dev.Effects[0].Values)
}

func TestApplyPostEffectTargetInUse(t *testing.T) {
	r, dev := newTestRenderer(t)
	rt := gfxtest.NewRenderTarget("rt", 8, 8)
	require.NoError(t, r.PushRenderTargetFull(rt))

	err := r.ApplyPostEffect(blurEffect(), gfx.BlendAlpha,
		NewEffectParams().SetTexture("noise", rt.Texture(), gfx.SamplerLinearClamp))
	assert.ErrorIs(t, err, ErrTargetInUse)
	assert.Empty(t, dev.Effects)
}

func TestApplyScreenEffect(t *testing.T) {
	r, dev := newTestRenderer(t)
	src := gfxtest.NewRenderTarget("scene", 320, 240)
	fx := gfxtest.NewEffect("screen",
		gfx.ParameterDesc{Name: ParamScreenTexture, Kind: gfx.ParamTexture},
		gfx.ParameterDesc{Name: ParamScreenTextureSize, Kind: gfx.ParamFloat4},
		gfx.ParameterDesc{Name: ParamViewport, Kind: gfx.ParamFloat4},
		gfx.ParameterDesc{Name: "strength", Kind: gfx.ParamFloat},
	)

	require.NoError(t, r.ApplyScreenEffect(fx, src.Texture(), gfx.BlendAlpha, NewEffectParams().SetFloat("strength", 2)))
	require.Len(t, dev.Effects, 1)

	byName := map[string]gfx.EffectValue{}
	for _, v := range dev.Effects[0].Values {
		byName[v.Name] = v
	}
	require.Len(t, byName, 4)
	assert.Same(t, src, byName[ParamScreenTexture].Texture)
	assert.Equal(t, [4]float32{320, 240, 0, 0}, byName[ParamScreenTextureSize].Floats)
	assert.Equal(t, [4]float32{0, 0, 640, 480}, byName[ParamViewport].Floats)
	assert.Equal(t, float32(2), byName["strength"].Floats[0])

	require.NoError(t, r.PushRenderTargetFull(src))
	assert.ErrorIs(t, r.ApplyScreenEffect(fx, src.Texture(), gfx.BlendAlpha, nil), ErrTargetInUse)
}

func TestEffectParamsOverwrite(t *testing.T) {
	p := NewEffectParams().SetFloat("a", 1).SetFloat("b", 2).SetFloat("a", 3)
	require.Len(t, p.Values(), 2)
	assert.Equal(t, "a", p.Values()[0].Name)
	assert.Equal(t, float32(3), p.Values()[0].Floats[0])
	assert.True(t, p.Has("b"))
	assert.False(t, p.Has("c"))

	var nilParams *EffectParams
	assert.Nil(t, nilParams.Values())
}
