package rldevice

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"stg-renderer/internal/gfx"
)

// levelFromVersion maps the rlgl backend version to a capability level.
func levelFromVersion(version int32) gfx.Level {
	switch version {
	case rl.Opengl11:
		return gfx.LevelGL11
	case rl.Opengl21:
		return gfx.LevelGL21
	case rl.Opengl33:
		return gfx.LevelGL33
	case rl.Opengl43:
		return gfx.LevelGL43
	case rl.OpenglEs20:
		return gfx.LevelGLES2
	}
	return gfx.LevelUnknown
}

func isES(l gfx.Level) bool { return l == gfx.LevelGLES2 || l == gfx.LevelGLES3 }

// supports reports whether a context created at probed can serve want.
// Desktop and ES levels never substitute for each other.
func supports(probed, want gfx.Level) bool {
	if probed == gfx.LevelUnknown || want == gfx.LevelUnknown {
		return false
	}
	if isES(probed) != isES(want) {
		return false
	}
	return want <= probed
}

// shaderHeader returns the preamble prepended to every shader source so the
// same body compiles on each level. Bodies use ATTR, VARY, TEX and FRAG.
func shaderHeader(level gfx.Level, fragment bool) string {
	switch level {
	case gfx.LevelGL33, gfx.LevelGL43, gfx.LevelGLES3:
		h := "#version 330\n"
		if level == gfx.LevelGLES3 {
			h = "#version 300 es\nprecision mediump float;\n"
		}
		if fragment {
			return h + "#define VARY in\n#define TEX texture\nout vec4 outColor;\n#define FRAG outColor\n"
		}
		return h + "#define ATTR in\n#define VARY out\n"
	case gfx.LevelGLES2:
		if fragment {
			return "#version 100\nprecision mediump float;\n#define VARY varying\n#define TEX texture2D\n#define FRAG gl_FragColor\n"
		}
		return "#version 100\n#define ATTR attribute\n#define VARY varying\n"
	}
	if fragment {
		return "#version 120\n#define VARY varying\n#define TEX texture2D\n#define FRAG gl_FragColor\n"
	}
	return "#version 120\n#define ATTR attribute\n#define VARY varying\n"
}
