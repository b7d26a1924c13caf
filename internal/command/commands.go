// Package command is the typed call surface scripts drive the renderer
// through. Resources are addressed by name and angles are in degrees.
package command

import (
	"stg-renderer/internal/gfx"
	"stg-renderer/internal/particle"
	"stg-renderer/internal/render"
)

// Resources resolves names to loaded resources. Lookups of unknown names
// return an error wrapping render.ErrUnknownResource.
type Resources interface {
	Texture(name string) (gfx.Texture, error)
	RenderTarget(name string) (gfx.RenderTarget, error)
	Sprite(name string) (*render.Sprite, error)
	SpriteSequence(name string) (*render.SpriteSequence, error)
	Effect(name string) (gfx.Effect, error)
	Model(name string) (render.Model, error)
	Particles(name string) (*particle.System, error)
}

// EffectArg is one named post effect parameter. Floats holds 1 to 4
// components; a non-empty Texture names a texture resource instead.
type EffectArg struct {
	Floats  []float32
	Texture string
	Sampler string
}

type Commands interface {
	BeginScene() error
	EndScene() error

	Clear(color uint32) error
	ClearDepth(z float32) error

	SetOrtho(left, right, bottom, top float32) error
	SetPerspective(eye, lookat, up gfx.Vector3, fovy, aspect, znear, zfar float32) error
	SetViewport(left, right, bottom, top float32) error
	SetScissorRect(left, right, bottom, top float32) error

	SetVertexColorBlend(v gfx.VertexColorBlend) error
	SetFog(start, end float32, color uint32) error
	SetDepth(d gfx.DepthState) error
	SetBlend(b gfx.BlendState) error
	SetBlendMode(mode string) error
	SetTexture(name string) error
	SetSampler(s gfx.SamplerState) error

	DrawTriangle(v0, v1, v2 gfx.Vertex) error
	DrawQuad(v0, v1, v2, v3 gfx.Vertex) error
	DrawSprite(name string, x, y, rot, hscale, vscale, z float32) error
	DrawSpriteRect(name string, left, right, bottom, top, z float32) error
	DrawSprite4V(name string, p1, p2, p3, p4 gfx.Vector3) error
	DrawSprite3D(name string, pos gfx.Vector3, roll, pitch, yaw, hscale, vscale float32) error
	DrawSpriteSequence(name string, timer int, x, y, rot, hscale, vscale, z float32) error
	DrawTexture(name, mode string, vertices [4]gfx.Vertex) error
	DrawModel(name string, pos gfx.Vector3, roll, pitch, yaw float32, scale gfx.Vector3) error
	DrawParticles(name string, x, y float32) error

	PushRenderTarget(name string) error
	PopRenderTarget() error
	PostEffect(effect, mode string, params map[string]EffectArg) error
	ScreenEffect(source, effect, mode string, params map[string]EffectArg) error
}
