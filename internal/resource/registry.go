package resource

import (
	"fmt"
	"maps"
	"slices"

	"stg-renderer/internal/command"
	"stg-renderer/internal/gfx"
	"stg-renderer/internal/particle"
	"stg-renderer/internal/render"
	"stg-renderer/internal/utils"
)

// Registry maps names to loaded resources. Render target textures are also
// reachable as textures under the target's name.
type Registry struct {
	textures  map[string]gfx.Texture
	targets   map[string]gfx.RenderTarget
	sprites   map[string]*render.Sprite
	sequences map[string]*render.SpriteSequence
	effects   map[string]gfx.Effect
	models    map[string]render.Model
	particles map[string]*particle.System
}

var _ command.Resources = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{
		textures:  map[string]gfx.Texture{},
		targets:   map[string]gfx.RenderTarget{},
		sprites:   map[string]*render.Sprite{},
		sequences: map[string]*render.SpriteSequence{},
		effects:   map[string]gfx.Effect{},
		models:    map[string]render.Model{},
		particles: map[string]*particle.System{},
	}
}

func unknown(kind, name string) error {
	return fmt.Errorf("%w: %s %q", render.ErrUnknownResource, kind, name)
}

func add[T any](m map[string]T, kind, name string, v T) error {
	if _, ok := m[name]; ok {
		return fmt.Errorf("duplicate %s %q", kind, name)
	}
	m[name] = v
	return nil
}

func (r *Registry) AddTexture(name string, t gfx.Texture) error {
	if _, ok := r.targets[name]; ok {
		return fmt.Errorf("texture %q shadows a render target", name)
	}
	return add(r.textures, "texture", name, t)
}

func (r *Registry) AddRenderTarget(name string, t gfx.RenderTarget) error {
	if _, ok := r.textures[name]; ok {
		return fmt.Errorf("render target %q shadows a texture", name)
	}
	return add(r.targets, "render target", name, t)
}

func (r *Registry) AddSprite(s *render.Sprite) error           { return add(r.sprites, "sprite", s.Name, s) }
func (r *Registry) AddEffect(name string, e gfx.Effect) error { return add(r.effects, "effect", name, e) }
func (r *Registry) AddModel(m render.Model) error             { return add(r.models, "model", m.Name, m) }

func (r *Registry) AddSpriteSequence(q *render.SpriteSequence) error {
	return add(r.sequences, "sprite sequence", q.Name, q)
}

func (r *Registry) AddParticles(s *particle.System) error {
	return add(r.particles, "particle system", s.Config.Name, s)
}

func (r *Registry) Texture(name string) (gfx.Texture, error) {
	if t, ok := r.textures[name]; ok {
		return t, nil
	}
	if rt, ok := r.targets[name]; ok {
		return rt.Texture(), nil
	}
	return nil, unknown("texture", name)
}

func (r *Registry) RenderTarget(name string) (gfx.RenderTarget, error) {
	if rt, ok := r.targets[name]; ok {
		return rt, nil
	}
	return nil, unknown("render target", name)
}

func (r *Registry) Sprite(name string) (*render.Sprite, error) {
	if s, ok := r.sprites[name]; ok {
		return s, nil
	}
	return nil, unknown("sprite", name)
}

func (r *Registry) SpriteSequence(name string) (*render.SpriteSequence, error) {
	if q, ok := r.sequences[name]; ok {
		return q, nil
	}
	return nil, unknown("sprite sequence", name)
}

func (r *Registry) Effect(name string) (gfx.Effect, error) {
	if e, ok := r.effects[name]; ok {
		return e, nil
	}
	return nil, unknown("effect", name)
}

func (r *Registry) Model(name string) (render.Model, error) {
	if m, ok := r.models[name]; ok {
		return m, nil
	}
	return render.Model{}, unknown("model", name)
}

func (r *Registry) Particles(name string) (*particle.System, error) {
	if s, ok := r.particles[name]; ok {
		return s, nil
	}
	return nil, unknown("particle system", name)
}

// ParticleSystems returns every particle system ordered by name.
func (r *Registry) ParticleSystems() []*particle.System {
	out := make([]*particle.System, 0, len(r.particles))
	for _, name := range slices.Sorted(maps.Keys(r.particles)) {
		out = append(out, r.particles[name])
	}
	return out
}

// Update advances every particle system by dt seconds.
func (r *Registry) Update(dt float32) {
	for _, s := range r.particles {
		s.Update(dt)
	}
}

func (r *Registry) String() string {
	return fmt.Sprintf("%d textures, %d targets, %d sprites, %d sequences, %d effects, %d models, %d particle systems",
		len(r.textures), len(r.targets), len(r.sprites), len(r.sequences), len(r.effects), len(r.models), len(r.particles))
}

type releaser interface{ Release() }

func release[T any](kind string, m map[string]T) {
	for _, name := range slices.Sorted(maps.Keys(m)) {
		if v, ok := any(m[name]).(releaser); ok {
			v.Release()
			utils.Debug("Resource: released %s %s", kind, name)
		}
		delete(m, name)
	}
}

// Release frees every device resource and empties the registry.
func (r *Registry) Release() {
	clear(r.sprites)
	clear(r.sequences)
	clear(r.particles)
	for name, m := range r.models {
		if v, ok := m.Mesh.(releaser); ok {
			v.Release()
			utils.Debug("Resource: released model %s", name)
		}
	}
	clear(r.models)
	release("effect", r.effects)
	release("texture", r.textures)
	release("render target", r.targets)
}
