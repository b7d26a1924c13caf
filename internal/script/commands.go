package script

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"stg-renderer/internal/command"
	"stg-renderer/internal/gfx"
	"stg-renderer/internal/render"
)

type handler struct {
	check func(args []byte) error
	run   func(c command.Commands, args []byte, tick int) error
}

// on binds a command to its argument type A.
func on[A any](fn func(c command.Commands, a A, tick int) error) handler {
	return handler{
		check: func(data []byte) error {
			var a A
			return decode(data, &a)
		},
		run: func(c command.Commands, data []byte, tick int) error {
			var a A
			if err := decode(data, &a); err != nil {
				return err
			}
			return fn(c, a, tick)
		},
	}
}

func or[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

type (
	none  struct{}
	named struct {
		Name string `yaml:"name"`
	}
	colorArgs struct {
		Color uint32 `yaml:"color"`
	}
	depthArgs struct {
		Z *float32 `yaml:"z"`
	}
	boxArgs struct {
		Left   float32 `yaml:"left"`
		Right  float32 `yaml:"right"`
		Bottom float32 `yaml:"bottom"`
		Top    float32 `yaml:"top"`
	}
	perspectiveArgs struct {
		Eye    gfx.Vector3  `yaml:"eye"`
		LookAt gfx.Vector3  `yaml:"lookat"`
		Up     *gfx.Vector3 `yaml:"up"`
		FovY   float32      `yaml:"fovy"`
		Aspect float32      `yaml:"aspect"`
		ZNear  float32      `yaml:"znear"`
		ZFar   float32      `yaml:"zfar"`
	}
	modeArgs struct {
		Mode string `yaml:"mode"`
	}
	fogArgs struct {
		Start float32 `yaml:"start"`
		End   float32 `yaml:"end"`
		Color *uint32 `yaml:"color"`
	}
	enableArgs struct {
		Enable bool `yaml:"enable"`
	}
	stateArgs struct {
		State string `yaml:"state"`
	}
	verticesArgs struct {
		Vertices []gfx.Vertex `yaml:"vertices"`
	}
	spriteArgs struct {
		Name   string   `yaml:"name"`
		X      float32  `yaml:"x"`
		Y      float32  `yaml:"y"`
		Rot    float32  `yaml:"rot"`
		HScale *float32 `yaml:"hscale"`
		VScale *float32 `yaml:"vscale"`
		Z      *float32 `yaml:"z"`
		Timer  *int     `yaml:"timer"`
	}
	spriteRectArgs struct {
		Name   string   `yaml:"name"`
		Left   float32  `yaml:"left"`
		Right  float32  `yaml:"right"`
		Bottom float32  `yaml:"bottom"`
		Top    float32  `yaml:"top"`
		Z      *float32 `yaml:"z"`
	}
	sprite4VArgs struct {
		Name   string        `yaml:"name"`
		Points []gfx.Vector3 `yaml:"points"`
	}
	sprite3DArgs struct {
		Name   string      `yaml:"name"`
		Pos    gfx.Vector3 `yaml:"pos"`
		Roll   float32     `yaml:"roll"`
		Pitch  float32     `yaml:"pitch"`
		Yaw    float32     `yaml:"yaw"`
		HScale *float32    `yaml:"hscale"`
		VScale *float32    `yaml:"vscale"`
	}
	textureArgs struct {
		Name     string       `yaml:"name"`
		Mode     string       `yaml:"mode"`
		Vertices []gfx.Vertex `yaml:"vertices"`
	}
	modelArgs struct {
		Name  string       `yaml:"name"`
		Pos   gfx.Vector3  `yaml:"pos"`
		Roll  float32      `yaml:"roll"`
		Pitch float32      `yaml:"pitch"`
		Yaw   float32      `yaml:"yaw"`
		Scale *gfx.Vector3 `yaml:"scale"`
	}
	particleArgs struct {
		Name string  `yaml:"name"`
		X    float32 `yaml:"x"`
		Y    float32 `yaml:"y"`
	}
	effectArgs struct {
		Source string              `yaml:"source"`
		Effect string              `yaml:"effect"`
		Mode   string              `yaml:"mode"`
		Params map[string]paramArg `yaml:"params"`
	}
)

// paramArg is an effect parameter: a number, a list of 1 to 4 numbers, or
// a mapping naming a texture and optionally its sampler.
type paramArg command.EffectArg

func (p *paramArg) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		var f float32
		if err := n.Decode(&f); err != nil {
			return err
		}
		p.Floats = []float32{f}
	case yaml.SequenceNode:
		return n.Decode(&p.Floats)
	case yaml.MappingNode:
		var t struct {
			Texture string `yaml:"texture"`
			Sampler string `yaml:"sampler"`
		}
		if err := n.Decode(&t); err != nil {
			return err
		}
		p.Texture, p.Sampler = t.Texture, t.Sampler
	default:
		return fmt.Errorf("line %d: effect parameter must be a number, a list or a texture", n.Line)
	}
	return nil
}

func (a effectArgs) params() map[string]command.EffectArg {
	if a.Params == nil {
		return nil
	}
	out := make(map[string]command.EffectArg, len(a.Params))
	for name, p := range a.Params {
		out[name] = command.EffectArg(p)
	}
	return out
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", render.ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func vertices[T any](v []T, n int) error {
	if len(v) != n {
		return invalid("want %d vertices, got %d", n, len(v))
	}
	return nil
}

var defaultUp = gfx.Vector3{Y: 1}

// sprites default to z 0.5 and a vscale equal to hscale.
func (a spriteArgs) scale() (float32, float32, float32) {
	h := or(a.HScale, 1)
	return h, or(a.VScale, h), or(a.Z, 0.5)
}

var handlers = map[string]handler{
	"BeginScene": on(func(c command.Commands, _ none, _ int) error { return c.BeginScene() }),
	"EndScene":   on(func(c command.Commands, _ none, _ int) error { return c.EndScene() }),
	"Clear":      on(func(c command.Commands, a colorArgs, _ int) error { return c.Clear(a.Color) }),
	"ClearDepth": on(func(c command.Commands, a depthArgs, _ int) error { return c.ClearDepth(or(a.Z, 1)) }),

	"SetOrtho": on(func(c command.Commands, a boxArgs, _ int) error {
		return c.SetOrtho(a.Left, a.Right, a.Bottom, a.Top)
	}),
	"SetPerspective": on(func(c command.Commands, a perspectiveArgs, _ int) error {
		return c.SetPerspective(a.Eye, a.LookAt, or(a.Up, defaultUp), a.FovY, a.Aspect, a.ZNear, a.ZFar)
	}),
	"SetViewport": on(func(c command.Commands, a boxArgs, _ int) error {
		return c.SetViewport(a.Left, a.Right, a.Bottom, a.Top)
	}),
	"SetScissorRect": on(func(c command.Commands, a boxArgs, _ int) error {
		return c.SetScissorRect(a.Left, a.Right, a.Bottom, a.Top)
	}),

	"SetVertexColorBlend": on(func(c command.Commands, a modeArgs, _ int) error {
		v, ok := gfx.ParseVertexColorBlend(a.Mode)
		if !ok {
			return invalid("vertex color blend %q", a.Mode)
		}
		return c.SetVertexColorBlend(v)
	}),
	"SetFog": on(func(c command.Commands, a fogArgs, _ int) error {
		return c.SetFog(a.Start, a.End, or(a.Color, gfx.White))
	}),
	"SetDepth": on(func(c command.Commands, a enableArgs, _ int) error {
		if a.Enable {
			return c.SetDepth(gfx.DepthEnable)
		}
		return c.SetDepth(gfx.DepthDisable)
	}),
	"SetBlend": on(func(c command.Commands, a stateArgs, _ int) error {
		b, ok := gfx.ParseBlendState(a.State)
		if !ok {
			return invalid("blend state %q", a.State)
		}
		return c.SetBlend(b)
	}),
	"SetBlendMode": on(func(c command.Commands, a modeArgs, _ int) error { return c.SetBlendMode(a.Mode) }),
	"SetTexture":   on(func(c command.Commands, a named, _ int) error { return c.SetTexture(a.Name) }),

	"SetSampler": on(func(c command.Commands, a stateArgs, _ int) error {
		s, ok := gfx.ParseSamplerState(a.State)
		if !ok {
			return invalid("sampler %q", a.State)
		}
		return c.SetSampler(s)
	}),

	"DrawTriangle": on(func(c command.Commands, a verticesArgs, _ int) error {
		if err := vertices(a.Vertices, 3); err != nil {
			return err
		}
		return c.DrawTriangle(a.Vertices[0], a.Vertices[1], a.Vertices[2])
	}),
	"DrawQuad": on(func(c command.Commands, a verticesArgs, _ int) error {
		if err := vertices(a.Vertices, 4); err != nil {
			return err
		}
		return c.DrawQuad(a.Vertices[0], a.Vertices[1], a.Vertices[2], a.Vertices[3])
	}),
	"DrawSprite": on(func(c command.Commands, a spriteArgs, _ int) error {
		h, v, z := a.scale()
		return c.DrawSprite(a.Name, a.X, a.Y, a.Rot, h, v, z)
	}),
	"DrawSpriteRect": on(func(c command.Commands, a spriteRectArgs, _ int) error {
		return c.DrawSpriteRect(a.Name, a.Left, a.Right, a.Bottom, a.Top, or(a.Z, 0.5))
	}),
	"DrawSprite4V": on(func(c command.Commands, a sprite4VArgs, _ int) error {
		if err := vertices(a.Points, 4); err != nil {
			return err
		}
		return c.DrawSprite4V(a.Name, a.Points[0], a.Points[1], a.Points[2], a.Points[3])
	}),
	"DrawSprite3D": on(func(c command.Commands, a sprite3DArgs, _ int) error {
		h := or(a.HScale, 1)
		return c.DrawSprite3D(a.Name, a.Pos, a.Roll, a.Pitch, a.Yaw, h, or(a.VScale, h))
	}),
	// DrawSpriteSequence animates from the script tick unless timer is given.
	"DrawSpriteSequence": on(func(c command.Commands, a spriteArgs, tick int) error {
		h, v, z := a.scale()
		return c.DrawSpriteSequence(a.Name, or(a.Timer, tick), a.X, a.Y, a.Rot, h, v, z)
	}),
	"DrawTexture": on(func(c command.Commands, a textureArgs, _ int) error {
		if err := vertices(a.Vertices, 4); err != nil {
			return err
		}
		return c.DrawTexture(a.Name, a.Mode, [4]gfx.Vertex(a.Vertices))
	}),
	"DrawModel": on(func(c command.Commands, a modelArgs, _ int) error {
		return c.DrawModel(a.Name, a.Pos, a.Roll, a.Pitch, a.Yaw, or(a.Scale, gfx.Vector3{X: 1, Y: 1, Z: 1}))
	}),
	"DrawParticles": on(func(c command.Commands, a particleArgs, _ int) error {
		return c.DrawParticles(a.Name, a.X, a.Y)
	}),

	"PushRenderTarget": on(func(c command.Commands, a named, _ int) error { return c.PushRenderTarget(a.Name) }),
	"PopRenderTarget":  on(func(c command.Commands, _ none, _ int) error { return c.PopRenderTarget() }),

	"PostEffect": on(func(c command.Commands, a effectArgs, _ int) error {
		if a.Source != "" {
			return invalid("PostEffect takes no source, use ScreenEffect")
		}
		return c.PostEffect(a.Effect, a.Mode, a.params())
	}),
	"ScreenEffect": on(func(c command.Commands, a effectArgs, _ int) error {
		return c.ScreenEffect(a.Source, a.Effect, a.Mode, a.params())
	}),
}
