package render

import (
	"fmt"

	"stg-renderer/internal/gfx"
	"stg-renderer/internal/utils"
)

// Parameters bound automatically by ApplyScreenEffect when declared.
const (
	ParamScreenTexture     = "screen_texture"
	ParamScreenTextureSize = "screen_texture_size"
	ParamViewport          = "viewport"
)

// EffectParams collects named values for a post effect. Setting a name twice
// keeps the last value.
type EffectParams struct {
	values []gfx.EffectValue
}

func NewEffectParams() *EffectParams { return &EffectParams{} }

func (p *EffectParams) set(v gfx.EffectValue) *EffectParams {
	for i := range p.values {
		if p.values[i].Name == v.Name {
			p.values[i] = v
			return p
		}
	}
	p.values = append(p.values, v)
	return p
}

func (p *EffectParams) SetFloat(name string, x float32) *EffectParams {
	return p.set(gfx.EffectValue{Name: name, Kind: gfx.ParamFloat, Floats: [4]float32{x}})
}

func (p *EffectParams) SetFloat2(name string, x, y float32) *EffectParams {
	return p.set(gfx.EffectValue{Name: name, Kind: gfx.ParamFloat2, Floats: [4]float32{x, y}})
}

func (p *EffectParams) SetFloat3(name string, x, y, z float32) *EffectParams {
	return p.set(gfx.EffectValue{Name: name, Kind: gfx.ParamFloat3, Floats: [4]float32{x, y, z}})
}

func (p *EffectParams) SetFloat4(name string, x, y, z, w float32) *EffectParams {
	return p.set(gfx.EffectValue{Name: name, Kind: gfx.ParamFloat4, Floats: [4]float32{x, y, z, w}})
}

// SetColor stores an ARGB color as a normalized (r, g, b, a) float4.
func (p *EffectParams) SetColor(name string, color uint32) *EffectParams {
	a, r, g, b := gfx.UnpackARGB(color)
	return p.SetFloat4(name, float32(r)/255, float32(g)/255, float32(b)/255, float32(a)/255)
}

func (p *EffectParams) SetTexture(name string, tex gfx.Texture, sampler gfx.SamplerState) *EffectParams {
	return p.set(gfx.EffectValue{Name: name, Kind: gfx.ParamTexture, Texture: tex, Sampler: sampler})
}

// Has reports whether name has been set.
func (p *EffectParams) Has(name string) bool {
	for _, v := range p.values {
		if v.Name == name {
			return true
		}
	}
	return false
}

// Values returns the collected values in insertion order.
func (p *EffectParams) Values() []gfx.EffectValue {
	if p == nil {
		return nil
	}
	return p.values
}

func (r *Renderer) resolveEffect(effect gfx.Effect, blend gfx.BlendState, params *EffectParams) ([]gfx.EffectValue, error) {
	if effect == nil || !effect.Valid() {
		return nil, fmt.Errorf("%w: effect", ErrUnknownResource)
	}
	if !blend.Valid() {
		return nil, fmt.Errorf("%w: blend state %v", ErrInvalidArgument, blend)
	}

	declared := make(map[string]gfx.ParameterKind, len(effect.Parameters()))
	for _, d := range effect.Parameters() {
		declared[d.Name] = d.Kind
	}

	values := params.Values()
	for _, v := range values {
		kind, ok := declared[v.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownParameter, v.Name)
		}
		if kind != v.Kind {
			return nil, fmt.Errorf("%w: %q is %v, got %v", ErrUnknownParameter, v.Name, kind, v.Kind)
		}
		if v.Kind != gfx.ParamTexture {
			continue
		}
		if v.Texture == nil || !v.Texture.Valid() {
			return nil, fmt.Errorf("%w: texture for %q", ErrUnknownResource, v.Name)
		}
		if !v.Sampler.Valid() {
			return nil, fmt.Errorf("%w: sampler state %v for %q", ErrInvalidArgument, v.Sampler, v.Name)
		}
		if r.targets.Contains(v.Texture) {
			return nil, fmt.Errorf("%w: parameter %q", ErrTargetInUse, v.Name)
		}
	}
	return values, nil
}

// ApplyPostEffect flushes pending geometry, binds params by name and draws
// one full-screen quad with the effect. The pending state of an open batch is
// left as it was.
func (r *Renderer) ApplyPostEffect(effect gfx.Effect, blend gfx.BlendState, params *EffectParams) error {
	values, err := r.resolveEffect(effect, blend, params)
	if err != nil {
		utils.Warn("Effect: rejected: %v", err)
		return err
	}
	if err := r.flush("post effect"); err != nil {
		return err
	}
	if err := r.device.SubmitEffect(effect, blend, values); err != nil {
		return deviceError("SubmitEffect", err)
	}
	r.stats.Effects++
	utils.Debug("Effect: applied with %d parameters, blend %v", len(values), blend)
	return nil
}

// ApplyScreenEffect applies effect over source. screen_texture,
// screen_texture_size and viewport are filled in from source and the
// current frame when the effect declares them and params leaves them unset.
func (r *Renderer) ApplyScreenEffect(effect gfx.Effect, source gfx.Texture, blend gfx.BlendState, params *EffectParams) error {
	if effect == nil || !effect.Valid() {
		return fmt.Errorf("%w: effect", ErrUnknownResource)
	}
	if source == nil || !source.Valid() {
		return fmt.Errorf("%w: screen texture", ErrUnknownResource)
	}
	if r.targets.Contains(source) {
		return fmt.Errorf("%w: screen texture", ErrTargetInUse)
	}

	full := NewEffectParams()
	full.values = append(full.values, params.Values()...)
	w, h := source.Size()
	vp := r.targets.Top().Viewport
	for _, d := range effect.Parameters() {
		if full.Has(d.Name) {
			continue
		}
		switch {
		case d.Name == ParamScreenTexture && d.Kind == gfx.ParamTexture:
			full.SetTexture(d.Name, source, gfx.SamplerLinearClamp)
		case d.Name == ParamScreenTextureSize && d.Kind == gfx.ParamFloat4:
			full.SetFloat4(d.Name, float32(w), float32(h), 0, 0)
		case d.Name == ParamViewport && d.Kind == gfx.ParamFloat4:
			full.SetFloat4(d.Name, vp.MinX, vp.MinY, vp.MaxX, vp.MaxY)
		}
	}
	return r.ApplyPostEffect(effect, blend, full)
}
