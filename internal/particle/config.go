// Package particle simulates sprite particle emitters and draws them
// through the batching renderer.
package particle

import (
	"fmt"

	"stg-renderer/internal/gfx"
)

type Vec3 = gfx.Vector3

// Config describes an emitter as written in the resource manifest.
type Config struct {
	Name string `yaml:"name"`
	// Sprite names the sprite resource every particle is drawn with.
	Sprite string `yaml:"sprite"`
	// Blend is a legacy blend name; empty keeps the sprite's own blend.
	Blend        string        `yaml:"blend,omitempty"`
	MaxCount     int           `yaml:"max_count"`
	Seed         uint64        `yaml:"seed,omitempty"`
	Emitters     []Emitter     `yaml:"emitters"`
	Initializers []Initializer `yaml:"initializers"`
	Operators    []Operator    `yaml:"operators"`
}

// Emitter spawns Rate particles per second around Origin. Kind "box"
// spreads them within DistanceMin..DistanceMax per axis, "sphere" within a
// shell of radius DistanceMin.X..DistanceMax.X, "point" not at all.
type Emitter struct {
	Kind        string  `yaml:"kind"`
	Origin      Vec3    `yaml:"origin"`
	DistanceMin Vec3    `yaml:"distance_min"`
	DistanceMax Vec3    `yaml:"distance_max"`
	Rate        float32 `yaml:"rate"`
}

// Initializer randomizes one property of a new particle between Min and
// Max. Scalar kinds read the X component.
type Initializer struct {
	Kind     string  `yaml:"kind"`
	Min      Vec3    `yaml:"min"`
	Max      Vec3    `yaml:"max"`
	Exponent float32 `yaml:"exponent,omitempty"`
}

// Operator changes live particles every update.
type Operator struct {
	Kind string `yaml:"kind"`

	// movement
	Gravity Vec3    `yaml:"gravity"`
	Drag    float32 `yaml:"drag"`

	// alphafade, as fractions of the lifetime
	FadeIn  float32 `yaml:"fade_in"`
	FadeOut float32 `yaml:"fade_out"`

	// colorchange, sizechange
	StartTime  float32 `yaml:"start_time"`
	EndTime    float32 `yaml:"end_time"`
	StartValue Vec3    `yaml:"start_value"`
	EndValue   Vec3    `yaml:"end_value"`

	// oscillatealpha, oscillateposition, turbulence
	FrequencyMin float32 `yaml:"frequency_min"`
	FrequencyMax float32 `yaml:"frequency_max"`
	ScaleMin     float32 `yaml:"scale_min"`
	ScaleMax     float32 `yaml:"scale_max"`
	SpeedMin     float32 `yaml:"speed_min"`
	SpeedMax     float32 `yaml:"speed_max"`
	TimeScale    float32 `yaml:"time_scale"`

	// controlpointattract
	ControlPoint int     `yaml:"control_point"`
	Threshold    float32 `yaml:"threshold"`
	Strength     float32 `yaml:"strength"`
}

var (
	emitterKinds     = map[string]bool{"point": true, "box": true, "sphere": true}
	initializerKinds = map[string]bool{
		"lifetime": true, "size": true, "velocity": true, "rotation": true,
		"angularvelocity": true, "color": true, "alpha": true,
	}
	operatorKinds = map[string]bool{
		"movement": true, "alphafade": true, "turbulence": true, "controlpointattract": true,
		"colorchange": true, "sizechange": true, "oscillateposition": true, "oscillatealpha": true,
	}
)

// Validate rejects unknown kinds and impossible values.
func (c Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("particle: emitter without name")
	}
	if c.Sprite == "" {
		return fmt.Errorf("particle %s: no sprite", c.Name)
	}
	if c.MaxCount < 0 {
		return fmt.Errorf("particle %s: max_count %d", c.Name, c.MaxCount)
	}
	for _, e := range c.Emitters {
		if !emitterKinds[e.Kind] {
			return fmt.Errorf("particle %s: unknown emitter %q", c.Name, e.Kind)
		}
		if e.Rate < 0 {
			return fmt.Errorf("particle %s: negative rate %g", c.Name, e.Rate)
		}
	}
	for _, i := range c.Initializers {
		if !initializerKinds[i.Kind] {
			return fmt.Errorf("particle %s: unknown initializer %q", c.Name, i.Kind)
		}
	}
	for _, o := range c.Operators {
		if !operatorKinds[o.Kind] {
			return fmt.Errorf("particle %s: unknown operator %q", c.Name, o.Kind)
		}
		if o.Kind == "controlpointattract" && (o.ControlPoint < 0 || o.ControlPoint >= ControlPoints) {
			return fmt.Errorf("particle %s: control point %d", c.Name, o.ControlPoint)
		}
	}
	return nil
}
