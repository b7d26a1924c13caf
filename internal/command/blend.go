package command

import (
	"fmt"
	"strings"

	"stg-renderer/internal/gfx"
	"stg-renderer/internal/render"
)

// BlendMode is a legacy blend name such as "mul+alpha": the vertex color
// combine before the plus, the framebuffer equation after it.
type BlendMode string

const (
	MulAlpha  BlendMode = "mul+alpha"
	MulAdd    BlendMode = "mul+add"
	MulRev    BlendMode = "mul+rev"
	MulSub    BlendMode = "mul+sub"
	AddAlpha  BlendMode = "add+alpha"
	AddAdd    BlendMode = "add+add"
	AddRev    BlendMode = "add+rev"
	AddSub    BlendMode = "add+sub"
	AlphaBal  BlendMode = "alpha+bal"
	MulMin    BlendMode = "mul+min"
	MulMax    BlendMode = "mul+max"
	MulMul    BlendMode = "mul+mul"
	MulScreen BlendMode = "mul+screen"
	AddMin    BlendMode = "add+min"
	AddMax    BlendMode = "add+max"
	AddMul    BlendMode = "add+mul"
	AddScreen BlendMode = "add+screen"
	One       BlendMode = "one"
)

type blendPair struct {
	vc    gfx.VertexColorBlend
	blend gfx.BlendState
}

var blend2D = map[BlendMode]blendPair{
	MulAlpha:  {gfx.VertexColorMul, gfx.BlendAlpha},
	MulAdd:    {gfx.VertexColorMul, gfx.BlendAdd},
	MulRev:    {gfx.VertexColorMul, gfx.BlendRevSub},
	MulSub:    {gfx.VertexColorMul, gfx.BlendSub},
	AddAlpha:  {gfx.VertexColorAdd, gfx.BlendAlpha},
	AddAdd:    {gfx.VertexColorAdd, gfx.BlendAdd},
	AddRev:    {gfx.VertexColorAdd, gfx.BlendRevSub},
	AddSub:    {gfx.VertexColorAdd, gfx.BlendSub},
	AlphaBal:  {gfx.VertexColorMul, gfx.BlendInv},
	MulMin:    {gfx.VertexColorMul, gfx.BlendMin},
	MulMax:    {gfx.VertexColorMul, gfx.BlendMax},
	MulMul:    {gfx.VertexColorMul, gfx.BlendMul},
	MulScreen: {gfx.VertexColorMul, gfx.BlendScreen},
	AddMin:    {gfx.VertexColorAdd, gfx.BlendMin},
	AddMax:    {gfx.VertexColorAdd, gfx.BlendMax},
	AddMul:    {gfx.VertexColorAdd, gfx.BlendMul},
	AddScreen: {gfx.VertexColorAdd, gfx.BlendScreen},
	One:       {gfx.VertexColorMul, gfx.BlendOne},
}

// ParseBlendMode translates a legacy blend name into the vertex color
// combine and blend state used for 2D draws. The empty name is mul+alpha.
// "mul+mutiply" and "add+mutiply" are accepted as spelled by older scripts.
func ParseBlendMode(name string) (gfx.VertexColorBlend, gfx.BlendState, error) {
	mode := BlendMode(strings.ToLower(strings.TrimSpace(name)))
	switch mode {
	case "":
		mode = MulAlpha
	case "mul+mutiply":
		mode = MulMul
	case "add+mutiply":
		mode = AddMul
	}
	p, ok := blend2D[mode]
	if !ok {
		return 0, 0, fmt.Errorf("%w: blend mode %q", render.ErrInvalidArgument, name)
	}
	return p.vc, p.blend, nil
}

// Blend3D is the blend state a legacy name selects for effects and meshes,
// where there is no vertex color combine. Unknown names fall back to Alpha.
func Blend3D(name string) gfx.BlendState {
	_, b, err := ParseBlendMode(name)
	if err != nil {
		return gfx.BlendAlpha
	}
	return b
}
