package rldevice

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"stg-renderer/internal/gfx"
	"stg-renderer/internal/utils"
)

const vertexBody = `
ATTR vec3 vertexPosition;
ATTR vec2 vertexTexCoord;
ATTR vec4 vertexColor;
uniform mat4 mvp;
VARY vec2 fragTexCoord;
VARY vec4 fragColor;
VARY float fragDepth;
void main() {
    fragTexCoord = vertexTexCoord;
    fragColor = vertexColor;
    vec4 p = mvp * vec4(vertexPosition, 1.0);
    fragDepth = p.w;
    gl_Position = p;
}
`

// Modes are passed as floats: raylib uploads uniform values from []float32.
const builtinFragmentBody = `
VARY vec2 fragTexCoord;
VARY vec4 fragColor;
VARY float fragDepth;
uniform sampler2D texture0;
uniform float vertexColorMode;
uniform float fogMode;
uniform vec4 fogColor;
uniform vec2 fogRange;
void main() {
    vec4 texel = TEX(texture0, fragTexCoord);
    vec4 c = texel * fragColor;
    if (vertexColorMode < 0.5) {
        c = texel;
    } else if (vertexColorMode < 1.5) {
        c = fragColor;
    } else if (vertexColorMode < 2.5) {
        c = vec4(clamp(texel.rgb + fragColor.rgb, 0.0, 1.0), texel.a * fragColor.a);
    } else if (vertexColorMode < 3.5) {
        float luma = dot(texel.rgb, vec3(0.299, 0.587, 0.114));
        c = vec4(fragColor.rgb * luma, texel.a * fragColor.a);
    }
    if (fogMode > 0.5) {
        float d = abs(fragDepth);
        float f = 1.0;
        if (fogMode < 1.5) {
            f = clamp((fogRange.y - d) / max(fogRange.y - fogRange.x, 0.0001), 0.0, 1.0);
        } else if (fogMode < 2.5) {
            f = exp(-fogRange.x * d);
        } else {
            f = exp(-(fogRange.x * d) * (fogRange.x * d));
        }
        c.rgb = mix(fogColor.rgb, c.rgb, f);
    }
    FRAG = c;
}
`

// builtinShader draws batched geometry with the vertex color and fog axes
// of the pipeline state.
type builtinShader struct {
	shader      rl.Shader
	vertexColor int32
	fogMode     int32
	fogColor    int32
	fogRange    int32
}

func loadBuiltin(level gfx.Level) (builtinShader, error) {
	shader := rl.LoadShaderFromMemory(
		shaderHeader(level, false)+vertexBody,
		shaderHeader(level, true)+builtinFragmentBody,
	)
	b := builtinShader{
		shader:      shader,
		vertexColor: rl.GetShaderLocation(shader, "vertexColorMode"),
		fogMode:     rl.GetShaderLocation(shader, "fogMode"),
		fogColor:    rl.GetShaderLocation(shader, "fogColor"),
		fogRange:    rl.GetShaderLocation(shader, "fogRange"),
	}
	if shader.ID == 0 || b.vertexColor == -1 {
		return b, fmt.Errorf("builtin shader failed to compile for %s", level)
	}
	utils.Debug("Shader: builtin - Loaded for %s (ID: %d)", level, shader.ID)
	return b, nil
}

func (b *builtinShader) apply(state gfx.PipelineState) {
	rl.BeginShaderMode(b.shader)
	rl.SetShaderValue(b.shader, b.vertexColor, []float32{float32(state.VertexColor)}, rl.ShaderUniformFloat)
	fog := state.Fog
	if b.fogMode == -1 {
		return
	}
	rl.SetShaderValue(b.shader, b.fogMode, []float32{float32(fog.Mode)}, rl.ShaderUniformFloat)
	if fog.Mode == gfx.FogDisable {
		return
	}
	rl.SetShaderValue(b.shader, b.fogColor, normalized(fog.Color), rl.ShaderUniformVec4)
	rl.SetShaderValue(b.shader, b.fogRange, []float32{fog.Near, fog.Far}, rl.ShaderUniformVec2)
}

func (b *builtinShader) unload() {
	if b.shader.ID != 0 {
		rl.UnloadShader(b.shader)
	}
}

// Effect is a full-screen fragment shader with named parameters.
type Effect struct {
	Name string

	shader    rl.Shader
	params    []gfx.ParameterDesc
	locations map[string]int32
	released  bool
}

func (e *Effect) Valid() bool { return e != nil && !e.released && e.shader.ID != 0 }

func (e *Effect) Parameters() []gfx.ParameterDesc { return e.params }

func (e *Effect) String() string { return e.Name }

func (e *Effect) Release() {
	if e.released {
		return
	}
	rl.UnloadShader(e.shader)
	e.released = true
}

// LoadEffect compiles a fragment shader body. The body sees the same
// preamble as the builtin shader (VARY, TEX, FRAG) and receives fragTexCoord
// across the viewport.
func (d *Device) LoadEffect(name, fragment string, params []gfx.ParameterDesc) (*Effect, error) {
	shader := rl.LoadShaderFromMemory(
		shaderHeader(d.caps.Level, false)+vertexBody,
		shaderHeader(d.caps.Level, true)+fragment,
	)
	if shader.ID == 0 {
		return nil, fmt.Errorf("effect %s: shader failed to compile", name)
	}

	e := &Effect{
		Name:      name,
		shader:    shader,
		params:    params,
		locations: make(map[string]int32, len(params)),
	}
	found := 0
	for _, p := range params {
		loc := rl.GetShaderLocation(shader, p.Name)
		if loc == -1 {
			utils.Warn("Effect: %s - Parameter %q not found in shader", name, p.Name)
		} else {
			found++
		}
		e.locations[p.Name] = loc
	}
	if len(params) > 0 && found == 0 {
		rl.UnloadShader(shader)
		return nil, fmt.Errorf("effect %s: none of %d parameters resolved, shader probably failed to compile", name, len(params))
	}
	utils.Debug("Effect: %s - Loaded with %d/%d parameters (ID: %d)", name, found, len(params), shader.ID)
	return e, nil
}

func uniformType(k gfx.ParameterKind) rl.ShaderUniformDataType {
	switch k {
	case gfx.ParamFloat2:
		return rl.ShaderUniformVec2
	case gfx.ParamFloat3:
		return rl.ShaderUniformVec3
	case gfx.ParamFloat4:
		return rl.ShaderUniformVec4
	}
	return rl.ShaderUniformFloat
}

func (e *Effect) bind(d *Device, v gfx.EffectValue) error {
	loc, ok := e.locations[v.Name]
	if !ok {
		return fmt.Errorf("effect %s: unknown parameter %q", e.Name, v.Name)
	}
	if loc == -1 {
		return nil
	}
	if v.Kind != gfx.ParamTexture {
		rl.SetShaderValue(e.shader, loc, v.Floats[:v.Kind.Components()], uniformType(v.Kind))
		return nil
	}
	tex, err := d.texture(v.Texture)
	if err != nil {
		return err
	}
	tex.useSampler(v.Sampler)
	rl.SetShaderValueTexture(e.shader, loc, tex.tex)
	return nil
}
