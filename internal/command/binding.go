package command

import (
	"fmt"
	"maps"
	"slices"

	"github.com/chewxy/math32"

	"stg-renderer/internal/gfx"
	"stg-renderer/internal/render"
)

const degToRad = math32.Pi / 180

// Binding implements Commands on a renderer and a resource set.
type Binding struct {
	R   *render.Renderer
	Res Resources
	// ImageScale multiplies every sprite scale.
	ImageScale float32
}

var _ Commands = (*Binding)(nil)

func NewBinding(r *render.Renderer, res Resources) *Binding {
	return &Binding{R: r, Res: res, ImageScale: 1}
}

func (b *Binding) BeginScene() error { return b.R.Begin() }
func (b *Binding) EndScene() error   { return b.R.End() }

func (b *Binding) Clear(color uint32) error   { return b.R.ClearRenderTarget(color) }
func (b *Binding) ClearDepth(z float32) error { return b.R.ClearDepthBuffer(z) }

func (b *Binding) SetOrtho(left, right, bottom, top float32) error {
	return b.R.SetOrtho(gfx.Box{MinX: left, MinY: bottom, MaxX: right, MaxY: top, MaxZ: 1})
}

func (b *Binding) SetPerspective(eye, lookat, up gfx.Vector3, fovy, aspect, znear, zfar float32) error {
	return b.R.SetPerspective(eye, lookat, up, fovy*degToRad, aspect, znear, zfar)
}

// SetViewport takes y-up coordinates and flips them against the current
// output height.
func (b *Binding) SetViewport(left, right, bottom, top float32) error {
	_, h := b.R.OutputSize()
	return b.R.SetViewport(gfx.Box{MinX: left, MinY: h - top, MaxX: right, MaxY: h - bottom, MaxZ: 1})
}

func (b *Binding) SetScissorRect(left, right, bottom, top float32) error {
	_, h := b.R.OutputSize()
	return b.R.SetScissorRect(gfx.Rect{Left: left, Top: h - top, Right: right, Bottom: h - bottom})
}

func (b *Binding) SetVertexColorBlend(v gfx.VertexColorBlend) error {
	return b.R.SetVertexColorBlend(v)
}

// SetFog uses the legacy range form, see render.FogFromRange.
func (b *Binding) SetFog(start, end float32, color uint32) error {
	return b.R.SetFog(render.FogFromRange(start, end, color))
}

func (b *Binding) SetDepth(d gfx.DepthState) error     { return b.R.SetDepth(d) }
func (b *Binding) SetBlend(s gfx.BlendState) error     { return b.R.SetBlend(s) }
func (b *Binding) SetSampler(s gfx.SamplerState) error { return b.R.SetSampler(s) }

func (b *Binding) SetBlendMode(mode string) error {
	vc, blend, err := ParseBlendMode(mode)
	if err != nil {
		return err
	}
	if err := b.R.SetVertexColorBlend(vc); err != nil {
		return err
	}
	return b.R.SetBlend(blend)
}

func (b *Binding) SetTexture(name string) error {
	tex, err := b.Res.Texture(name)
	if err != nil {
		return err
	}
	return b.R.SetTexture(tex)
}

func (b *Binding) DrawTriangle(v0, v1, v2 gfx.Vertex) error { return b.R.DrawTriangle(v0, v1, v2) }

func (b *Binding) DrawQuad(v0, v1, v2, v3 gfx.Vertex) error { return b.R.DrawQuad(v0, v1, v2, v3) }

// sprite checks the scope before the lookup so a missing sprite outside a
// batch reports the scope error.
func (b *Binding) sprite(op, name string) (*render.Sprite, error) {
	if !b.R.InScope() {
		return nil, fmt.Errorf("%w: %s outside Begin/End", render.ErrScope, op)
	}
	return b.Res.Sprite(name)
}

func (b *Binding) DrawSprite(name string, x, y, rot, hscale, vscale, z float32) error {
	s, err := b.sprite("DrawSprite", name)
	if err != nil {
		return err
	}
	return b.R.DrawSprite(s, x, y, rot*degToRad, hscale*b.ImageScale, vscale*b.ImageScale, z)
}

func (b *Binding) DrawSpriteRect(name string, left, right, bottom, top, z float32) error {
	s, err := b.sprite("DrawSpriteRect", name)
	if err != nil {
		return err
	}
	return b.R.DrawSpriteRect(s, left, right, bottom, top, z)
}

func (b *Binding) DrawSprite4V(name string, p1, p2, p3, p4 gfx.Vector3) error {
	s, err := b.sprite("DrawSprite4V", name)
	if err != nil {
		return err
	}
	return b.R.DrawSprite4V(s, p1, p2, p3, p4)
}

func (b *Binding) DrawSprite3D(name string, pos gfx.Vector3, roll, pitch, yaw, hscale, vscale float32) error {
	s, err := b.sprite("DrawSprite3D", name)
	if err != nil {
		return err
	}
	return b.R.DrawSprite3D(s, pos, roll*degToRad, pitch*degToRad, yaw*degToRad, hscale, vscale)
}

func (b *Binding) DrawSpriteSequence(name string, timer int, x, y, rot, hscale, vscale, z float32) error {
	if !b.R.InScope() {
		return fmt.Errorf("%w: DrawSpriteSequence outside Begin/End", render.ErrScope)
	}
	seq, err := b.Res.SpriteSequence(name)
	if err != nil {
		return err
	}
	return b.R.DrawSpriteSequence(seq, timer, x, y, rot*degToRad, hscale*b.ImageScale, vscale*b.ImageScale, z)
}

func (b *Binding) DrawTexture(name, mode string, vertices [4]gfx.Vertex) error {
	vc, blend, err := ParseBlendMode(mode)
	if err != nil {
		return err
	}
	tex, err := b.Res.Texture(name)
	if err != nil {
		return err
	}
	return b.R.DrawTexture(tex, vc, blend, vertices)
}

func (b *Binding) DrawModel(name string, pos gfx.Vector3, roll, pitch, yaw float32, scale gfx.Vector3) error {
	model, err := b.Res.Model(name)
	if err != nil {
		return err
	}
	t := render.NewTransform(pos)
	t.Roll, t.Pitch, t.Yaw = roll*degToRad, pitch*degToRad, yaw*degToRad
	t.Scale = scale
	return b.R.DrawModel(model, t)
}

// DrawParticles draws every live particle of a system offset by (x, y),
// with the system's blend mode or, when it has none, its sprite's.
func (b *Binding) DrawParticles(name string, x, y float32) error {
	if !b.R.InScope() {
		return fmt.Errorf("%w: DrawParticles outside Begin/End", render.ErrScope)
	}
	ps, err := b.Res.Particles(name)
	if err != nil {
		return err
	}
	vc, blend := gfx.VertexColorMul, gfx.BlendAlpha
	if ps.Sprite != nil {
		vc, blend = ps.Sprite.VertexColor, ps.Sprite.Blend
	}
	if ps.Config.Blend != "" {
		if vc, blend, err = ParseBlendMode(ps.Config.Blend); err != nil {
			return err
		}
	}
	return ps.Draw(b.R, x, y, vc, blend)
}

func (b *Binding) PushRenderTarget(name string) error {
	rt, err := b.Res.RenderTarget(name)
	if err != nil {
		return err
	}
	return b.R.PushRenderTargetFull(rt)
}

func (b *Binding) PopRenderTarget() error { return b.R.PopRenderTarget() }

func (b *Binding) effectParams(args map[string]EffectArg) (*render.EffectParams, error) {
	p := render.NewEffectParams()
	for _, name := range slices.Sorted(maps.Keys(args)) {
		arg := args[name]
		if arg.Texture != "" {
			tex, err := b.Res.Texture(arg.Texture)
			if err != nil {
				return nil, err
			}
			sampler := gfx.SamplerLinearClamp
			if arg.Sampler != "" {
				s, ok := gfx.ParseSamplerState(arg.Sampler)
				if !ok {
					return nil, fmt.Errorf("%w: sampler %q", render.ErrInvalidArgument, arg.Sampler)
				}
				sampler = s
			}
			p.SetTexture(name, tex, sampler)
			continue
		}
		f := arg.Floats
		switch len(f) {
		case 1:
			p.SetFloat(name, f[0])
		case 2:
			p.SetFloat2(name, f[0], f[1])
		case 3:
			p.SetFloat3(name, f[0], f[1], f[2])
		case 4:
			p.SetFloat4(name, f[0], f[1], f[2], f[3])
		default:
			return nil, fmt.Errorf("%w: parameter %q has %d components", render.ErrInvalidArgument, name, len(f))
		}
	}
	return p, nil
}

func (b *Binding) PostEffect(effect, mode string, params map[string]EffectArg) error {
	fx, err := b.Res.Effect(effect)
	if err != nil {
		return err
	}
	p, err := b.effectParams(params)
	if err != nil {
		return err
	}
	return b.R.ApplyPostEffect(fx, Blend3D(mode), p)
}

// ScreenEffect applies effect over the texture named source, filling in
// the screen_texture, screen_texture_size and viewport parameters.
func (b *Binding) ScreenEffect(source, effect, mode string, params map[string]EffectArg) error {
	src, err := b.Res.Texture(source)
	if err != nil {
		return err
	}
	fx, err := b.Res.Effect(effect)
	if err != nil {
		return err
	}
	p, err := b.effectParams(params)
	if err != nil {
		return err
	}
	return b.R.ApplyScreenEffect(fx, src, Blend3D(mode), p)
}
