package rldevice

import (
	"fmt"
	"image"

	rl "github.com/gen2brain/raylib-go/raylib"

	"stg-renderer/internal/gfx"
	"stg-renderer/internal/utils"
)

// Texture is a GPU texture owned by the device.
type Texture struct {
	Name string

	tex      rl.Texture2D
	sampler  gfx.SamplerState
	hasState bool
	owner    *RenderTarget
	released bool
}

func (t *Texture) Valid() bool {
	if t == nil || t.released || t.tex.ID == 0 {
		return false
	}
	return t.owner == nil || t.owner.Valid()
}

func (t *Texture) Size() (int, int) { return int(t.tex.Width), int(t.tex.Height) }

func (t *Texture) String() string { return t.Name }

// Release frees the texture. Textures that belong to a render target are
// released with the target.
func (t *Texture) Release() {
	if t.released || t.owner != nil {
		return
	}
	rl.UnloadTexture(t.tex)
	t.released = true
}

func (t *Texture) useSampler(s gfx.SamplerState) {
	if t.hasState && t.sampler == s {
		return
	}
	applySampler(t.tex, s)
	t.sampler, t.hasState = s, true
}

// RenderTarget is an offscreen color buffer with depth.
type RenderTarget struct {
	Name string

	rt       rl.RenderTexture2D
	color    *Texture
	released bool
}

func (t *RenderTarget) Valid() bool { return t != nil && !t.released && t.rt.ID != 0 }

func (t *RenderTarget) Size() (int, int) { return int(t.rt.Texture.Width), int(t.rt.Texture.Height) }

func (t *RenderTarget) Texture() gfx.Texture { return t.color }

func (t *RenderTarget) String() string { return t.Name }

func (t *RenderTarget) Release() {
	if t.released {
		return
	}
	rl.UnloadRenderTexture(t.rt)
	t.released = true
}

// Mesh is a model loaded through raylib with its materials.
type Mesh struct {
	Name string

	model    rl.Model
	released bool
}

func (m *Mesh) Valid() bool { return m != nil && !m.released && m.model.MeshCount > 0 }

func (m *Mesh) String() string { return m.Name }

func (m *Mesh) Release() {
	if m.released {
		return
	}
	rl.UnloadModel(m.model)
	m.released = true
}

// LoadTexture uploads an image. Images larger than the device limit are
// rejected; callers downscale first.
func (d *Device) LoadTexture(name string, img image.Image) (*Texture, error) {
	b := img.Bounds()
	if limit := d.caps.MaxTextureSize; b.Dx() > limit || b.Dy() > limit {
		return nil, fmt.Errorf("texture %s: %dx%d exceeds device limit %d", name, b.Dx(), b.Dy(), limit)
	}
	im := rl.NewImageFromImage(img)
	tex := rl.LoadTextureFromImage(im)
	rl.UnloadImage(im)
	if tex.ID == 0 {
		return nil, fmt.Errorf("texture %s: upload failed", name)
	}
	utils.Debug("Texture: %s - Loaded %dx%d (ID: %d)", name, tex.Width, tex.Height, tex.ID)
	return &Texture{Name: name, tex: tex}, nil
}

func (d *Device) LoadRenderTarget(name string, width, height int) (*RenderTarget, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("render target %s: invalid size %dx%d", name, width, height)
	}
	rt := rl.LoadRenderTexture(int32(width), int32(height))
	if rt.ID == 0 {
		return nil, fmt.Errorf("render target %s: framebuffer creation failed", name)
	}
	target := &RenderTarget{Name: name, rt: rt}
	target.color = &Texture{Name: name, tex: rt.Texture, owner: target}
	utils.Debug("RenderTarget: %s - Created %dx%d (ID: %d)", name, width, height, rt.ID)
	return target, nil
}

func (d *Device) LoadModel(name, path string) (*Mesh, error) {
	model := rl.LoadModel(path)
	if model.MeshCount == 0 {
		return nil, fmt.Errorf("model %s: no meshes in %s", name, path)
	}
	utils.Debug("Model: %s - Loaded %d meshes from %s", name, model.MeshCount, path)
	return &Mesh{Name: name, model: model}, nil
}

// texture resolves a bound handle to its raylib texture.
func (d *Device) texture(t gfx.Texture) (*Texture, error) {
	switch tex := t.(type) {
	case nil:
		return d.white, nil
	case *Texture:
		if tex == nil {
			return d.white, nil
		}
		if !tex.Valid() {
			return nil, fmt.Errorf("texture %s was released", tex.Name)
		}
		return tex, nil
	case *RenderTarget:
		if !tex.Valid() {
			return nil, fmt.Errorf("render target %s was released", tex.Name)
		}
		return tex.color, nil
	}
	return nil, fmt.Errorf("foreign texture handle %T", t)
}
