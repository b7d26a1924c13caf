// Package resource loads the named resources scripts refer to and keeps
// them in a registry.
package resource

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"stg-renderer/internal/gfx"
	"stg-renderer/internal/particle"
	"stg-renderer/internal/utils"
)

// Manifest lists every resource to load. Names are unique per kind.
type Manifest struct {
	Textures  []TextureSpec     `yaml:"textures"`
	Targets   []TargetSpec      `yaml:"targets"`
	Sprites   []SpriteSpec      `yaml:"sprites"`
	Sequences []SequenceSpec    `yaml:"sequences"`
	Effects   []EffectSpec      `yaml:"effects"`
	Models    []ModelSpec       `yaml:"models"`
	Particles []particle.Config `yaml:"particles"`
}

type TextureSpec struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// TargetSpec sizes a render target; a zero dimension takes the screen's.
type TargetSpec struct {
	Name   string `yaml:"name"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// SpriteSpec cuts a sprite out of a texture or render target. Rect is
// x, y, width, height in pixels; Anchor defaults to the rect center.
type SpriteSpec struct {
	Name    string    `yaml:"name"`
	Texture string    `yaml:"texture"`
	Rect    []float32 `yaml:"rect"`
	Anchor  []float32 `yaml:"anchor,omitempty"`
	Blend   string    `yaml:"blend,omitempty"`
	Color   *uint32   `yaml:"color,omitempty"`
}

// SequenceSpec cuts Count frames laid out on a grid of Columns starting at
// Rect, advancing every Interval ticks.
type SequenceSpec struct {
	SpriteSpec `yaml:",inline"`
	Columns    int `yaml:"columns"`
	Count      int `yaml:"count"`
	Interval   int `yaml:"interval"`
}

type ParamSpec struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
}

// EffectSpec is a fragment shader body and the parameters it declares.
type EffectSpec struct {
	Name   string      `yaml:"name"`
	Path   string      `yaml:"path"`
	Params []ParamSpec `yaml:"params"`
}

type LightingSpec struct {
	AmbientColor      gfx.Vector3 `yaml:"ambient_color"`
	AmbientBrightness float32     `yaml:"ambient_brightness"`
	LightDirection    gfx.Vector3 `yaml:"light_direction"`
	LightColor        gfx.Vector3 `yaml:"light_color"`
	LightBrightness   float32     `yaml:"light_brightness"`
}

type ModelSpec struct {
	Name     string        `yaml:"name"`
	Path     string        `yaml:"path"`
	Lighting *LightingSpec `yaml:"lighting,omitempty"`
}

// ParseManifest decodes and checks a manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// ReadManifest resolves path against utils.AssetDirs and parses it.
func ReadManifest(path string) (*Manifest, error) {
	data, p, err := utils.ReadAsset(path, ".yaml", ".yml")
	if err != nil {
		return nil, err
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	utils.Debug("Resource: manifest %s lists %d entries", p, m.Len())
	return m, nil
}

func (s SpriteSpec) validate(kind string) error {
	if s.Name == "" {
		return fmt.Errorf("%s without name", kind)
	}
	if s.Texture == "" {
		return fmt.Errorf("%s %s: no texture", kind, s.Name)
	}
	if len(s.Rect) != 4 || s.Rect[2] <= 0 || s.Rect[3] <= 0 {
		return fmt.Errorf("%s %s: rect must be [x, y, width, height] with a positive size", kind, s.Name)
	}
	if s.Anchor != nil && len(s.Anchor) != 2 {
		return fmt.Errorf("%s %s: anchor must be [x, y]", kind, s.Name)
	}
	return nil
}

// Validate checks names and shapes; references between resources are
// checked while loading.
func (m *Manifest) Validate() error {
	seen := map[string]map[string]bool{}
	unique := func(kind, name string) error {
		if name == "" {
			return fmt.Errorf("%s without name", kind)
		}
		if seen[kind] == nil {
			seen[kind] = map[string]bool{}
		}
		if seen[kind][name] {
			return fmt.Errorf("duplicate %s %q", kind, name)
		}
		seen[kind][name] = true
		return nil
	}

	for _, t := range m.Textures {
		if err := unique("texture", t.Name); err != nil {
			return err
		}
		if t.Path == "" {
			return fmt.Errorf("texture %s: no path", t.Name)
		}
	}
	for _, t := range m.Targets {
		if err := unique("target", t.Name); err != nil {
			return err
		}
		if t.Width < 0 || t.Height < 0 {
			return fmt.Errorf("target %s: negative size", t.Name)
		}
	}
	for _, s := range m.Sprites {
		if err := unique("sprite", s.Name); err != nil {
			return err
		}
		if err := s.validate("sprite"); err != nil {
			return err
		}
	}
	for _, s := range m.Sequences {
		if err := unique("sequence", s.Name); err != nil {
			return err
		}
		if err := s.validate("sequence"); err != nil {
			return err
		}
		if s.Count <= 0 || s.Columns < 0 {
			return fmt.Errorf("sequence %s: count %d columns %d", s.Name, s.Count, s.Columns)
		}
	}
	for _, e := range m.Effects {
		if err := unique("effect", e.Name); err != nil {
			return err
		}
		if e.Path == "" {
			return fmt.Errorf("effect %s: no path", e.Name)
		}
		for _, p := range e.Params {
			if _, ok := gfx.ParseParameterKind(p.Kind); !ok || p.Name == "" {
				return fmt.Errorf("effect %s: parameter %q of kind %q", e.Name, p.Name, p.Kind)
			}
		}
	}
	for _, md := range m.Models {
		if err := unique("model", md.Name); err != nil {
			return err
		}
		if md.Path == "" {
			return fmt.Errorf("model %s: no path", md.Name)
		}
	}
	for _, p := range m.Particles {
		if err := unique("particle", p.Name); err != nil {
			return err
		}
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (l *LightingSpec) lighting() gfx.Lighting {
	if l == nil {
		return gfx.DefaultLighting()
	}
	return gfx.Lighting{
		AmbientColor:      l.AmbientColor,
		AmbientBrightness: l.AmbientBrightness,
		LightDirection:    l.LightDirection,
		LightColor:        l.LightColor,
		LightBrightness:   l.LightBrightness,
	}
}

// Len is the number of entries Load reports progress for.
func (m *Manifest) Len() int {
	return len(m.Textures) + len(m.Targets) + len(m.Sprites) + len(m.Sequences) +
		len(m.Effects) + len(m.Models) + len(m.Particles)
}
